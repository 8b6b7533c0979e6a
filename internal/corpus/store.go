// Package corpus loads the recipe corpus from its JSON document and serves
// it as an in-memory, read-only store.
package corpus

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pantrysage/backend/internal/types"
)

// Store holds the full recipe corpus. It is loaded once and read-only for
// the lifetime of the process; requests never mutate it.
type Store struct {
	recipes []types.Recipe
	byID    map[string]int
}

// Load reads the corpus document (a JSON array of recipes) from path.
// Document order is preserved; it is the tie-break order for retrieval.
// Any malformed entry fails the whole load.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus document: %w", err)
	}
	return Parse(data)
}

// Parse builds a Store from the raw corpus document.
func Parse(data []byte) (*Store, error) {
	var recipes []types.Recipe
	if err := json.Unmarshal(data, &recipes); err != nil {
		return nil, fmt.Errorf("failed to parse corpus document: %w", err)
	}

	byID := make(map[string]int, len(recipes))
	for i := range recipes {
		if err := recipes[i].Validate(); err != nil {
			return nil, fmt.Errorf("invalid corpus entry %d: %w", i, err)
		}
		if _, dup := byID[recipes[i].ID]; dup {
			return nil, fmt.Errorf("duplicate recipe id %s", recipes[i].ID)
		}
		byID[recipes[i].ID] = i
	}

	return &Store{recipes: recipes, byID: byID}, nil
}

// Get returns the recipe with the given id, if present. Ids from a stale
// index may legitimately miss; the caller decides how to handle that.
func (s *Store) Get(id string) (types.Recipe, bool) {
	i, ok := s.byID[id]
	if !ok {
		return types.Recipe{}, false
	}
	return s.recipes[i], true
}

// All returns the recipes in document order.
func (s *Store) All() []types.Recipe {
	return s.recipes
}

// Len returns the number of recipes in the corpus.
func (s *Store) Len() int {
	return len(s.recipes)
}
