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


// Package ai provides abstractions for the inference services used by
// mailtag.
//
// This package defines interfaces for AI operations including single-image
// tag extraction, asynchronous batch tagging, and text/image embeddings. It
// follows the dependency inversion principle, allowing the pipeline and
// search logic to depend on abstractions rather than concrete
// implementations: clients are constructed explicitly and injected into
// their consumers, never shared through package-level state.
//
// # Design Principles
//
// The package is designed around four key interfaces:
//
//   - Tagger: extracts tags from one image synchronously
//   - BatchTagService: the asynchronous submit/poll/results job lifecycle
//   - Embedder: generates text embeddings for the tag index
//   - ImageEmbedder: embeds images and query text into a shared space
//
// # Implementation Packages
//
//   - ai/anthropic: production Tagger and BatchTagService
//   - ai/openai: production Embedder using OpenAI-compatible APIs
//   - ai/mock: test doubles for unit testing without external dependencies
package ai
