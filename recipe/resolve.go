package recipe

import "gopkg.in/guregu/null.v3"

// Resolve substitutes placeholder values into the recipe's steps and returns
// the executable sequence, preserving order and count exactly.
//
// Resolution is all-or-nothing: if any declared placeholder has no entry in
// values, a MissingPlaceholderError is returned and no steps are produced.
// Entries in values that the recipe does not declare are ignored, which
// keeps CLI-style input forgiving. The recipe itself is never mutated.
func Resolve(r *Recipe, values map[string]string) ([]Step, error) {
	for _, name := range r.Placeholders {
		if _, ok := values[name]; !ok {
			return nil, &MissingPlaceholderError{Name: name}
		}
	}

	steps := make([]Step, len(r.Steps))
	for i, s := range r.Steps {
		s.URL = substitute(s.URL, values)
		s.Selector = substitute(s.Selector, values)
		s.Value = substitute(s.Value, values)
		if s.Text.Valid {
			s.Text = null.StringFrom(substitute(s.Text.String, values))
		}
		steps[i] = s
	}
	return steps, nil
}
