package stage

import "fmt"

// MissingInputError means a stage ran before the stage producing its input.
type MissingInputError struct {
	What string
}

func (e MissingInputError) Error() string {
	return fmt.Sprintf("missing %s (run earlier stages first)", e.What)
}

func errMissing(what string) error { return MissingInputError{What: what} }
