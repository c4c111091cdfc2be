// Package recipe defines the recipe data model: a named, ordered, reusable
// sequence of browser steps whose string fields may carry {name} placeholder
// tokens, resolved to concrete values at replay time.
package recipe

import (
	"encoding/json"
	"fmt"
	"time"
)

// Recipe is a named, ordered sequence of steps. Placeholders lists the
// placeholder names referenced anywhere in the steps; AddStep keeps it in
// sync, and Validate rejects a recipe whose steps reference an undeclared
// name.
type Recipe struct {
	Name         string
	Description  string
	Created      time.Time
	Steps        []Step
	Placeholders []string
}

// New returns an empty recipe. The creation timestamp is set once, here.
func New(name, description string) (*Recipe, error) {
	if name == "" {
		return nil, &ValidationError{Reason: "recipe name must not be empty"}
	}
	return &Recipe{
		Name:        name,
		Description: description,
		Created:     time.Now(),
	}, nil
}

// AddStep validates the step, appends it, and declares any placeholder names
// found in its string fields. Re-declaring an existing name is a no-op.
func (r *Recipe) AddStep(s Step) error {
	if err := s.Validate(); err != nil {
		return err
	}
	r.Steps = append(r.Steps, s)
	for _, name := range s.placeholders() {
		r.declare(name)
	}
	return nil
}

func (r *Recipe) declare(name string) {
	for _, p := range r.Placeholders {
		if p == name {
			return
		}
	}
	r.Placeholders = append(r.Placeholders, name)
}

// HasPlaceholder reports whether name is declared by the recipe.
func (r *Recipe) HasPlaceholder(name string) bool {
	for _, p := range r.Placeholders {
		if p == name {
			return true
		}
	}
	return false
}

// Validate checks the recipe invariants: non-empty name, well-formed steps,
// and every placeholder token used by a step declared in Placeholders.
func (r *Recipe) Validate() error {
	if r.Name == "" {
		return &ValidationError{Reason: "recipe name must not be empty"}
	}
	for i, s := range r.Steps {
		if err := s.Validate(); err != nil {
			return err
		}
		for _, name := range s.placeholders() {
			if !r.HasPlaceholder(name) {
				return &ValidationError{
					Reason: fmt.Sprintf("step %d references undeclared placeholder %q", i, name),
				}
			}
		}
	}
	return nil
}

// recipeJSON is the wire form of a Recipe (see the store package for the
// document layout). Steps and Placeholders are pointers so that a document
// omitting them entirely can be told apart from empty arrays.
type recipeJSON struct {
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Created      string    `json:"created"`
	Steps        *[]Step   `json:"steps"`
	Placeholders *[]string `json:"placeholders"`
}

// MarshalJSON writes the canonical document form of the recipe.
func (r *Recipe) MarshalJSON() ([]byte, error) {
	steps := r.Steps
	if steps == nil {
		steps = []Step{}
	}
	phs := r.Placeholders
	if phs == nil {
		phs = []string{}
	}
	return json.Marshal(recipeJSON{
		Name:         r.Name,
		Description:  r.Description,
		Created:      r.Created.Format(time.RFC3339Nano),
		Steps:        &steps,
		Placeholders: &phs,
	})
}

// UnmarshalJSON parses the canonical document form and validates the
// invariants, so a recipe that survives loading is known to be well-formed.
func (r *Recipe) UnmarshalJSON(data []byte) error {
	var in recipeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.Steps == nil {
		return &ValidationError{Reason: fmt.Sprintf("recipe %q has no steps field", in.Name)}
	}
	created, err := time.Parse(time.RFC3339Nano, in.Created)
	if err != nil {
		return &ValidationError{Reason: fmt.Sprintf("recipe %q has bad created timestamp %q", in.Name, in.Created)}
	}
	*r = Recipe{
		Name:        in.Name,
		Description: in.Description,
		Created:     created,
		Steps:       *in.Steps,
	}
	if in.Placeholders != nil {
		r.Placeholders = *in.Placeholders
	}
	return r.Validate()
}
