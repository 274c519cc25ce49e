// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MarshalJSON encodes a scalar value as a JSON string and a list value as a
// JSON array of strings.
func (v TagValue) MarshalJSON() ([]byte, error) {
	if v.Scalar {
		if len(v.Items) == 0 {
			return json.Marshal("")
		}
		return json.Marshal(v.Items[0])
	}
	if v.Items == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(v.Items)
}

// UnmarshalJSON accepts either a JSON string or an array of strings.
func (v *TagValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = StringValue(s)
		return nil
	}

	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		*v = ListValue(items...)
		return nil
	}

	return fmt.Errorf("%w: %s", ErrUnsupportedTagValue, string(data))
}

// ParseTagSet parses the textual payload returned by the extraction model
// into a TagSet. Markdown code fences are stripped and common JSON defects
// repaired before parsing; the model is not perfectly reliable about
// emitting clean JSON.
func ParseTagSet(payload string) (TagSet, error) {
	text := strings.TrimSpace(payload)
	if text == "" {
		return nil, ErrEmptyPayload
	}

	// Strip markdown code fences if present
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	text = repairJSON(text)

	var ts TagSet
	if err := json.Unmarshal([]byte(text), &ts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return ts, nil
}
