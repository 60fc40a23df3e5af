package rjs2

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when access to a resource is refused
	ErrForbidden = errors.New("forbidden")
	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidConfig is returned when a directory configuration cannot be parsed
	ErrInvalidConfig = errors.New("invalid directory config")
	// ErrUnsupportedModule is returned when an apps entry points at something
	// that cannot be loaded as an application
	ErrUnsupportedModule = errors.New("unsupported application module")
)

// MountError describes a failure while loading the route table. It carries
// the mount path and source path that were being processed.
type MountError struct {
	Op         string
	MountPath  string
	SourcePath string
	Err        error
}

func (e *MountError) Error() string {
	return fmt.Sprintf("%s %s (mount %s): %v", e.Op, e.SourcePath, e.MountPath, e.Err)
}

func (e *MountError) Unwrap() error {
	return e.Err
}
