package trafficpush

import (
	"errors"
	"fmt"
)

// Error conditions.
var (
	ErrNoPatterns      = errors.New("traffic configuration has no patterns")
	ErrMissingName     = errors.New("Name is missing")
	ErrMissingInterval = errors.New("GenerationInterval is missing")
	ErrRegistration    = errors.New("all prefix registrations failed")
	ErrSigningPolicy   = errors.New("unrecognized SigningInfo policy")
)

// ConfigError indicates an invalid traffic configuration.
// The CLI maps this to exit status 2; every other error maps to exit status 1.
type ConfigError struct {
	File string
	Line int
	Err  error
}

func (e *ConfigError) Error() string {
	switch {
	case e.File == "":
		return e.Err.Error()
	case e.Line > 0:
		return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
