package memstore

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"contractqa/internal/port"
)

// VectorStore holds chunk vectors in memory and answers cosine-similarity
// queries by brute force. Entries keep insertion order so equal scores come
// back in document order.
type VectorStore struct {
	mu        sync.RWMutex
	dimension int
	entries   []port.VectorItem
	byID      map[string]int
}

// NewVectorStore creates an empty store. A dimension of 0 is fixed by the
// first upserted vector.
func NewVectorStore(dimension int) *VectorStore {
	return &VectorStore{
		dimension: dimension,
		byID:      make(map[string]int),
	}
}

// Upsert adds or replaces vectors, keyed by chunk ID.
func (s *VectorStore) Upsert(items []port.VectorItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		if s.dimension == 0 {
			s.dimension = len(item.Vector)
		}
		if len(item.Vector) != s.dimension {
			return fmt.Errorf("vector dimension mismatch: expected %d, got %d", s.dimension, len(item.Vector))
		}

		if i, ok := s.byID[item.Chunk.ID]; ok {
			s.entries[i] = item
			continue
		}
		s.byID[item.Chunk.ID] = len(s.entries)
		s.entries = append(s.entries, item)
	}

	return nil
}

// Search returns the k entries most similar to query, highest score first.
func (s *VectorStore) Search(query []float32, k int) ([]port.VectorResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 || k <= 0 {
		return nil, nil
	}

	if len(query) != s.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", s.dimension, len(query))
	}

	results := make([]port.VectorResult, len(s.entries))
	for i, entry := range s.entries {
		results[i] = port.VectorResult{
			Chunk: entry.Chunk,
			Score: cosineSimilarity(query, entry.Vector),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > len(results) {
		k = len(results)
	}

	return results[:k], nil
}

// Count returns the number of vectors in the store.
func (s *VectorStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Dimension returns the vector dimension, or 0 before the first upsert.
func (s *VectorStore) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
