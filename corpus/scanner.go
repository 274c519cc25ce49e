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


package corpus

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/mailtag/core"
)

// TagFileExt is the extension of persisted tag-set files.
const TagFileExt = ".json"

// Scanner lists the images of a corpus that still need tagging.
type Scanner struct {
	logger *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScanner creates a corpus scanner.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan lists the filenames under imagesDir that are eligible for tagging:
// regular files, not hidden, and without an existing tag-set file under
// tagsDir for their derived id. Ordering follows the directory listing and
// matters only for batch grouping, not correctness. Scan is read-only.
//
// Derived-id collisions (two filenames mapping to the same id) are reported
// and the later filename is excluded, so one image's result can never
// overwrite another's tag file.
func (s *Scanner) Scan(imagesDir, tagsDir string) ([]string, error) {
	tagEntries, err := os.ReadDir(tagsDir)
	if err != nil {
		return nil, fmt.Errorf("reading tags directory: %w", err)
	}

	existing := make(map[string]bool, len(tagEntries))
	for _, entry := range tagEntries {
		existing[entry.Name()] = true
	}

	imageEntries, err := os.ReadDir(imagesDir)
	if err != nil {
		return nil, fmt.Errorf("reading images directory: %w", err)
	}

	seen := make(map[string]string)
	var eligible []string
	for _, entry := range imageEntries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !entry.Type().IsRegular() {
			continue
		}

		id := core.ItemID(name)
		if err := core.ValidateItemID(id); err != nil {
			s.logger.Warn("skipping image with unusable derived id", "filename", name, "err", err)
			continue
		}

		if first, ok := seen[id]; ok {
			s.logger.Warn("derived id collision, skipping image",
				"id", id, "filename", name, "collidesWith", first)
			continue
		}
		seen[id] = name

		if existing[id+TagFileExt] {
			continue
		}

		eligible = append(eligible, name)
	}

	return eligible, nil
}
