package artifact

import (
	"errors"
	"fmt"
)

// LoadErrorKind classifies why an artifact could not be loaded
type LoadErrorKind string

const (
	LoadNotFound LoadErrorKind = "NotFound" // nothing published yet
	LoadCorrupt  LoadErrorKind = "Corrupt"  // bytes present but not a complete artifact
	LoadIO       LoadErrorKind = "IO"       // read failed or timed out
)

func (k LoadErrorKind) String() string {
	return string(k)
}

// ErrNotFound is returned by sources when no artifact exists at the location
var ErrNotFound = errors.New("artifact not found")

// LoadError is the only error type returned by Reader.Load
type LoadError struct {
	Kind     LoadErrorKind
	Location string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %s: %v", e.Location, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// KindOf returns the LoadErrorKind carried by err, or "" if err is not a LoadError
func KindOf(err error) LoadErrorKind {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}
