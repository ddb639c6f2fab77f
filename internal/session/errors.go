package session

import (
	"errors"
	"fmt"
)

var (
	// ErrExternal matches every failure reported by the viewer engine.
	ErrExternal = errors.New("external operation failed")
	// ErrNoViewer is returned by New without an engine.
	ErrNoViewer = errors.New("session: viewer is required")
	// ErrNoModel reports an operation that needs a loaded model.
	ErrNoModel = errors.New("session: no model loaded")
	// ErrUnknownCheck reports a check name with no definition.
	ErrUnknownCheck = errors.New("session: unknown check")
)

// OpError wraps a viewer failure with the session operation it interrupted.
// The session state is left as it was before the operation, so the caller
// may retry.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrExternal) hold for every OpError.
func (e *OpError) Is(target error) bool { return target == ErrExternal }

func external(op string, err error) error {
	if err == nil {
		return nil
	}
	var opErr *OpError
	if errors.As(err, &opErr) {
		return err
	}
	return &OpError{Op: op, Err: err}
}
