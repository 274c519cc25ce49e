package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagValue_MarshalScalar(t *testing.T) {
	data, err := json.Marshal(StringValue("Welcome aboard"))
	require.NoError(t, err)
	assert.Equal(t, `"Welcome aboard"`, string(data))
}

func TestTagValue_MarshalList(t *testing.T) {
	data, err := json.Marshal(ListValue("onboarding", "welcome"))
	require.NoError(t, err)
	assert.Equal(t, `["onboarding","welcome"]`, string(data))
}

func TestTagValue_MarshalEmptyList(t *testing.T) {
	data, err := json.Marshal(ListValue())
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}

func TestTagValue_UnmarshalPreservesShape(t *testing.T) {
	var scalar TagValue
	require.NoError(t, json.Unmarshal([]byte(`"hello"`), &scalar))
	assert.True(t, scalar.Scalar)
	assert.Equal(t, []string{"hello"}, scalar.Items)

	var list TagValue
	require.NoError(t, json.Unmarshal([]byte(`["a","b"]`), &list))
	assert.False(t, list.Scalar)
	assert.Equal(t, []string{"a", "b"}, list.Items)
}

func TestTagValue_UnmarshalRejectsOtherShapes(t *testing.T) {
	var v TagValue
	err := json.Unmarshal([]byte(`{"nested":"object"}`), &v)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedTagValue)

	err = json.Unmarshal([]byte(`42`), &v)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedTagValue)
}

func TestParseTagSet_PlainJSON(t *testing.T) {
	ts, err := ParseTagSet(`{"subject": "Welcome", "topics": ["a", "b"]}`)
	require.NoError(t, err)
	require.Len(t, ts, 2)
	assert.Equal(t, StringValue("Welcome"), ts["subject"])
	assert.Equal(t, ListValue("a", "b"), ts["topics"])
}

func TestParseTagSet_StripsCodeFences(t *testing.T) {
	payload := "```json\n{\"subject\": \"Welcome\"}\n```"
	ts, err := ParseTagSet(payload)
	require.NoError(t, err)
	assert.Equal(t, StringValue("Welcome"), ts["subject"])
}

func TestParseTagSet_StripsBareFences(t *testing.T) {
	payload := "```\n{\"subject\": \"Welcome\"}\n```"
	ts, err := ParseTagSet(payload)
	require.NoError(t, err)
	assert.Equal(t, StringValue("Welcome"), ts["subject"])
}

func TestParseTagSet_RepairsMissingOpeningQuote(t *testing.T) {
	// The model occasionally drops the opening quote of a key.
	payload := `{subject": "Welcome", "sender": "news@example.com"}`
	ts, err := ParseTagSet(payload)
	require.NoError(t, err)
	assert.Equal(t, StringValue("Welcome"), ts["subject"])
	assert.Equal(t, StringValue("news@example.com"), ts["sender"])
}

func TestParseTagSet_EmptyPayload(t *testing.T) {
	for _, payload := range []string{"", "   ", "\n\t"} {
		_, err := ParseTagSet(payload)
		require.Error(t, err, "payload %q", payload)
		assert.ErrorIs(t, err, ErrEmptyPayload)
	}
}

func TestParseTagSet_MalformedPayload(t *testing.T) {
	_, err := ParseTagSet("this is not JSON at all")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestTagSet_JSONRoundTrip(t *testing.T) {
	original := TagSet{
		"subject": StringValue("Q3 results"),
		"topics":  ListValue("finance", "quarterly"),
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded TagSet
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}
