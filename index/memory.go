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


package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
)

// MemoryIndex is an in-process VectorIndex backed by a map, with optional
// JSON snapshot persistence. It keeps the repository runnable without a
// hosted vector service; corpora of email screenshots are small enough for
// exhaustive cosine search.
type MemoryIndex struct {
	mu      sync.RWMutex
	vectors map[string][]float32
}

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{vectors: make(map[string][]float32)}
}

// Upsert inserts or replaces records by id. Vectors are normalized on the
// way in so Query can score by inner product.
func (m *MemoryIndex) Upsert(ctx context.Context, records []Record) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		if r.ID == "" {
			return ErrEmptyRecordID
		}
		m.vectors[r.ID] = NormalizeVector(r.Vector)
	}
	return nil
}

// Query returns up to topK records most similar to the vector, ordered by
// descending cosine similarity.
func (m *MemoryIndex) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if topK <= 0 {
		return nil, nil
	}

	query := NormalizeVector(vector)

	m.mu.RLock()
	matches := make([]Match, 0, len(m.vectors))
	for id, v := range m.vectors {
		if len(v) != len(query) {
			continue
		}
		matches = append(matches, Match{ID: id, Score: dot(query, v)})
	}
	m.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score == matches[j].Score {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Len returns the number of stored records.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vectors)
}

// Save writes a JSON snapshot of the index.
func (m *MemoryIndex) Save(path string) error {
	m.mu.RLock()
	records := make([]Record, 0, len(m.vectors))
	for id, v := range m.vectors {
		records = append(records, Record{ID: id, Vector: v})
	}
	m.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("saving index snapshot: %w", err)
	}
	return nil
}

// LoadMemoryIndex reads a JSON snapshot written by Save.
func LoadMemoryIndex(path string) (*MemoryIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading index snapshot: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing index snapshot: %w", err)
	}

	m := NewMemoryIndex()
	for _, r := range records {
		m.vectors[r.ID] = r.Vector
	}
	return m, nil
}
