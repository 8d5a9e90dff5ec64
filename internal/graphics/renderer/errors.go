package renderer

import (
	"errors"
	"fmt"
)

var (
	ErrNotInitialized     = errors.New("frame graph not initialized")
	ErrAlreadyInitialized = errors.New("frame graph already initialized")
	ErrShutDown           = errors.New("frame graph shut down")
	ErrContextMismatch    = errors.New("render context does not belong to this frame graph")
	ErrInvalidSize        = errors.New("invalid render target size")
	ErrMissingOutput      = errors.New("pass did not publish a declared output")

	ErrUnresolvedRead  = errors.New("read has no earlier producer")
	ErrKindMismatch    = errors.New("resource kind mismatch")
	ErrDuplicateWriter = errors.New("resource already has a writer")
	ErrDuplicatePass   = errors.New("duplicate pass name")
)

// Phase names the lifecycle step a PassError occurred in.
type Phase string

const (
	PhaseRegister Phase = "register"
	PhaseInit     Phase = "init"
	PhaseExecute  Phase = "execute"
	PhaseShutdown Phase = "shutdown"
)

// PassError wraps a failure of a single pass.
type PassError struct {
	Pass  string
	Phase Phase
	Err   error
}

func (e *PassError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Phase, e.Pass, e.Err)
}

func (e *PassError) Unwrap() error { return e.Err }
