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

import "errors"

// Domain validation errors
var (
	// ErrEmptyPayload indicates a result item carried no textual payload.
	ErrEmptyPayload = errors.New("empty tag payload")

	// ErrMalformedPayload indicates a payload that is not valid JSON even
	// after repair.
	ErrMalformedPayload = errors.New("malformed tag payload")

	// ErrUnsupportedTagValue indicates a tag value that is neither a string
	// nor a list of strings.
	ErrUnsupportedTagValue = errors.New("tag value must be a string or a list of strings")

	// ErrEmptyTagName indicates a tag set with an empty key.
	ErrEmptyTagName = errors.New("tag name cannot be empty")

	// ErrEmptyItemID indicates a filename that derives to an empty item id.
	ErrEmptyItemID = errors.New("derived item id is empty")
)
