package recipe

import "fmt"

// ValidationError reports a malformed recipe or step, detected at
// construction or deserialization time. It is never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid recipe: %s", e.Reason)
}

// MissingPlaceholderError reports a declared placeholder for which no value
// was supplied at resolution time. Resolution is all-or-nothing, so this is
// returned before any step is produced.
type MissingPlaceholderError struct {
	Name string
}

func (e *MissingPlaceholderError) Error() string {
	return fmt.Sprintf("missing value for placeholder %q", e.Name)
}
