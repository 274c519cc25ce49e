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


// Package config resolves the environment-driven configuration: the data
// root directory layout and service credentials. Validation fails fast so a
// misconfigured run stops before any batch submission occurs.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvDataRoot       = "PROJECT_DATA_ROOT"
	EnvAPIKey         = "ANTHROPIC_API_KEY"
	EnvEmbeddingHost  = "EMBEDDING_HOST"
	EnvEmbeddingModel = "EMBEDDING_MODEL"
)

// Directory names under the data root.
const (
	imagesDirName  = "example_email_images"
	tagSetsDirName = "image_tag_sets"
	indexesDirName = "indexes"
)

// Config is the environment-resolved configuration.
type Config struct {
	// DataRoot is the project data directory holding images, tag sets, and
	// index snapshots.
	DataRoot string

	// APIKey is the credential for the tagging service.
	APIKey string

	// EmbeddingHost is the OpenAI-compatible embedding endpoint.
	EmbeddingHost string

	// EmbeddingModel is the embedding model identifier.
	EmbeddingModel string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present; a missing .env is not an
// error.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DataRoot:       os.Getenv(EnvDataRoot),
		APIKey:         os.Getenv(EnvAPIKey),
		EmbeddingHost:  os.Getenv(EnvEmbeddingHost),
		EmbeddingModel: os.Getenv(EnvEmbeddingModel),
	}
}

// Validate checks the fields every command needs. Commands with extra
// requirements (credentials, embedding settings) validate those separately.
func (c *Config) Validate() error {
	if c.DataRoot == "" {
		return fmt.Errorf("%s must be set", EnvDataRoot)
	}
	info, err := os.Stat(c.DataRoot)
	if err != nil {
		return fmt.Errorf("data root %s: %w", c.DataRoot, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data root %s is not a directory", c.DataRoot)
	}
	if _, err := os.Stat(c.ImagesDir()); err != nil {
		return fmt.Errorf("images directory: %w", err)
	}
	return nil
}

// ValidateTagging additionally requires the tagging credential.
func (c *Config) ValidateTagging() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return errors.New(EnvAPIKey + " must be set")
	}
	return nil
}

// ImagesDir is the source image corpus directory.
func (c *Config) ImagesDir() string {
	return filepath.Join(c.DataRoot, imagesDirName)
}

// TagSetsDir is the tag-set directory for one index name.
func (c *Config) TagSetsDir(indexName string) string {
	return filepath.Join(c.DataRoot, tagSetsDirName, indexName)
}

// IndexSnapshotPath is the vector index snapshot file for one index name.
func (c *Config) IndexSnapshotPath(indexName string) string {
	return filepath.Join(c.DataRoot, indexesDirName, indexName+".json")
}
