// Package store persists the recipe collection as a single JSON document:
// a top-level object mapping recipe name to recipe. The collection lives in
// memory during a session; persistence is explicit, there is no autosave.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/snaprec/snaprec/log"
	"github.com/snaprec/snaprec/recipe"
)

// CorruptStoreError reports a persisted document that fails schema
// validation. Callers decide whether to treat it as fatal or to start with
// an empty collection.
type CorruptStoreError struct {
	Path string
	Err  error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("corrupt recipe store %q: %v", e.Path, e.Err)
}

func (e *CorruptStoreError) Unwrap() error { return e.Err }

// Collection maps recipe name to recipe. It exclusively owns the recipes it
// holds.
type Collection map[string]*recipe.Recipe

// Names returns the recipe names in lexical order.
func (c Collection) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Store loads and saves a recipe collection at a fixed path. It is a pure
// load/save boundary; it holds no collection state of its own.
type Store struct {
	path      string
	persister FilePersister
	logger    *log.Logger
}

// New returns a store backed by the document at path.
func New(path string, logger *log.Logger) *Store {
	return &Store{
		path:      path,
		persister: &LocalFilePersister{},
		logger:    logger,
	}
}

// Load reads and validates the persisted document. A missing file yields an
// empty collection; an unreadable or schema-violating document yields a
// CorruptStoreError and no partial collection.
func (s *Store) Load() (Collection, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.logger.Debugf("store", "no recipes file at %q, starting empty", s.path)
		return Collection{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading recipe store %q: %w", s.path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &CorruptStoreError{Path: s.path, Err: err}
	}

	c := make(Collection, len(raw))
	for name, doc := range raw {
		var r recipe.Recipe
		if err := json.Unmarshal(doc, &r); err != nil {
			return nil, &CorruptStoreError{Path: s.path, Err: err}
		}
		if r.Name != name {
			return nil, &CorruptStoreError{
				Path: s.path,
				Err:  fmt.Errorf("recipe stored under %q declares name %q", name, r.Name),
			}
		}
		c[name] = &r
	}
	s.logger.Debugf("store", "loaded %d recipes from %q", len(c), s.path)

	return c, nil
}

// Save writes the full collection to the persisted document. Either the
// whole document is durably replaced or the prior state remains unchanged.
func (s *Store) Save(c Collection) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding recipe store: %w", err)
	}
	if err := s.persister.Persist(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("saving recipe store: %w", err)
	}
	s.logger.Debugf("store", "saved %d recipes to %q", len(c), s.path)

	return nil
}

// Upsert validates r, inserts it into c overwriting any recipe with the same
// name, and saves the collection. Last write wins; there is no merge.
func (s *Store) Upsert(c Collection, r *recipe.Recipe) error {
	if err := r.Validate(); err != nil {
		return err
	}
	c[r.Name] = r
	return s.Save(c)
}
