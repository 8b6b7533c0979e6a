// Package retrieval implements semantic candidate retrieval: a flat,
// L2-normalized vector index over the corpus plus the query-time engine that
// embeds the user's inventory and searches it.
package retrieval

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
)

// Match is a single retrieval hit: a recipe id and its cosine similarity to
// the query, in [-1, 1].
type Match struct {
	ID    string  `json:"id"`
	Score float32 `json:"score"`
}

// Index is a flat in-memory vector index with a parallel id manifest.
// Vectors are L2-normalized on insertion so cosine similarity reduces to a
// dot product. The index is built offline and read-only at query time.
type Index struct {
	Dim     int         `json:"dim"`
	IDs     []string    `json:"ids"`
	Vectors [][]float32 `json:"vectors"`
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{}
}

// Add normalizes the vector and appends it under the given id. The first
// vector fixes the index dimensionality.
func (ix *Index) Add(id string, vec []float32) error {
	if len(vec) == 0 {
		return fmt.Errorf("empty vector for %s", id)
	}
	if ix.Dim == 0 {
		ix.Dim = len(vec)
	}
	if len(vec) != ix.Dim {
		return fmt.Errorf("vector for %s has dimension %d, index has %d", id, len(vec), ix.Dim)
	}
	ix.IDs = append(ix.IDs, id)
	ix.Vectors = append(ix.Vectors, normalize(vec))
	return nil
}

// Len returns the number of indexed vectors.
func (ix *Index) Len() int {
	return len(ix.IDs)
}

// Search returns the top-k entries by cosine similarity to the query,
// descending. Ties are broken by insertion order, so results are stable
// across identical queries.
func (ix *Index) Search(query []float32, k int) ([]Match, error) {
	if k <= 0 || ix.Len() == 0 {
		return nil, nil
	}
	if len(query) != ix.Dim {
		return nil, fmt.Errorf("query has dimension %d, index has %d", len(query), ix.Dim)
	}

	q := normalize(query)
	order := make([]int, ix.Len())
	scores := make([]float32, ix.Len())
	for i := range ix.Vectors {
		order[i] = i
		scores[i] = dot(q, ix.Vectors[i])
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if k > len(order) {
		k = len(order)
	}
	matches := make([]Match, k)
	for i := 0; i < k; i++ {
		pos := order[i]
		matches[i] = Match{ID: ix.IDs[pos], Score: scores[pos]}
	}
	return matches, nil
}

// Save persists the index (vectors and id manifest) as a single JSON
// artifact at path.
func (ix *Index) Save(path string) error {
	data, err := json.Marshal(ix)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	return nil
}

// LoadIndex reads a persisted index from path.
func LoadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	var ix Index
	if err := json.Unmarshal(data, &ix); err != nil {
		return nil, fmt.Errorf("failed to parse index: %w", err)
	}
	if len(ix.IDs) != len(ix.Vectors) {
		return nil, fmt.Errorf("index manifest has %d ids for %d vectors", len(ix.IDs), len(ix.Vectors))
	}
	return &ix, nil
}

func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return append([]float32(nil), vec...)
	}
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
