package crunch

import "fmt"

// OptionError represents an invalid option value.
type OptionError struct {
	Field  string
	Reason string
}

func (e *OptionError) Error() string {
	return "crunch: invalid option " + e.Field + ": " + e.Reason
}

// OversizedError is returned when a single bitmap does not fit in an empty
// atlas of the configured maximum size.
type OversizedError struct {
	Name   string
	Width  int
	Height int
}

func (e *OversizedError) Error() string {
	return fmt.Sprintf("crunch: could not fit bitmap %q (%dx%d)", e.Name, e.Width, e.Height)
}
