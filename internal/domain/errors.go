package domain

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for broad classification.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidConfig = errors.New("invalid config")
	ErrExecution     = errors.New("execution error")
	ErrMesh          = errors.New("mesh generation failed")
	ErrSolver        = errors.New("solver failed")
)

// ErrorKind is a coarse-grained categorization for errors.
type ErrorKind string

const (
	KindNotFound      ErrorKind = "not_found"
	KindInvalidConfig ErrorKind = "invalid_config"
	KindExecution     ErrorKind = "execution"
	KindMesh          ErrorKind = "mesh"
	KindSolver        ErrorKind = "solver"
	KindCanceled      ErrorKind = "canceled"
)

// OpError wraps an underlying error with operation context and a kind.
type OpError struct {
	Op   string
	Kind ErrorKind
	Path string // Optional: relevant file path
	Err  error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind helps callers classify errors without depending on infra packages.
func IsKind(err error, kind ErrorKind) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	if kind == KindCanceled {
		return errors.Is(err, context.Canceled)
	}
	return false
}

// IsMeshError reports whether err is a recoverable mesher failure: the sweep
// records the item and continues with the next one.
func IsMeshError(err error) bool {
	return IsKind(err, KindMesh) || errors.Is(err, ErrMesh)
}

// NewMeshError builds the error a Mesher returns when the external tool
// reports a failure. msg is the tool's own error text.
func NewMeshError(op, path, msg string) error {
	return &OpError{
		Op:   op,
		Kind: KindMesh,
		Path: path,
		Err:  fmt.Errorf("%w: %s", ErrMesh, msg),
	}
}
