package memory

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"docqa/internal/domain"
)

var (
	ErrNotBuilt          = errors.New("vector index not built")
	ErrAlreadyBuilt      = errors.New("vector index already built")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

const defaultTopK = 4

// Storage is an in-memory vector index using brute-force cosine similarity.
// It is built once and read-only afterwards.
type Storage struct {
	mu        sync.RWMutex
	built     bool
	dimension int
	vectors   [][]float32
	norms     []float64
	chunks    []domain.Chunk
}

func NewStorage() *Storage { return &Storage{} }

// Build stores chunks[i] with vectors[i]. All vectors must share one dimension.
func (s *Storage) Build(chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d != %d", len(chunks), len(vectors))
	}
	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	norms := make([]float64, len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("%w: vector %d has %d, want %d", ErrDimensionMismatch, i, len(v), dim)
		}
		norms[i] = norm(v)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.built {
		return ErrAlreadyBuilt
	}
	s.dimension = dim
	s.chunks = append([]domain.Chunk(nil), chunks...)
	s.vectors = append([][]float32(nil), vectors...)
	s.norms = norms
	s.built = true
	return nil
}

// Search returns up to topK chunks ordered by descending cosine similarity.
// Equal scores keep insertion order.
func (s *Storage) Search(vector []float32, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.built {
		return nil, ErrNotBuilt
	}
	if len(s.chunks) == 0 {
		return nil, nil
	}
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("%w: query has %d, index has %d", ErrDimensionMismatch, len(vector), s.dimension)
	}
	if topK <= 0 {
		topK = defaultTopK
	}
	qn := norm(vector)
	results := make([]domain.SearchResult, len(s.vectors))
	for i := range s.vectors {
		score := 0.0
		if qn > 0 && s.norms[i] > 0 {
			score = dot(s.vectors[i], vector) / (qn * s.norms[i])
		}
		results[i] = domain.SearchResult{Chunk: s.chunks[i], Score: score}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

// Len returns the number of indexed chunks.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Dimension returns the vector dimension fixed at Build.
func (s *Storage) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}

func dot(a, b []float32) float64 {
	sum := 0.0
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func norm(v []float32) float64 {
	return math.Sqrt(dot(v, v))
}
