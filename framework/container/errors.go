package container

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrNoBinding          = errors.New("no matching binding")
	ErrAmbiguousBinding   = errors.New("ambiguous binding")
	ErrCircularDependency = errors.New("circular dependency")
	ErrMaxDepthExceeded   = errors.New("maximum resolution depth exceeded")
	ErrInvalidService     = errors.New("invalid service")
	ErrTypeMismatch       = errors.New("type mismatch")
)

// ActivationError reports a failed resolution together with the request
// chain that led to it.
type ActivationError struct {
	Service reflect.Type
	Chain   string
	Err     error
}

func newActivationError(req Request, err error) *ActivationError {
	return &ActivationError{Service: req.Service(), Chain: Chain(req), Err: err}
}

func (e *ActivationError) Error() string {
	return fmt.Sprintf("container: resolving %s (%s): %v", e.Service, e.Chain, e.Err)
}

func (e *ActivationError) Unwrap() error { return e.Err }
