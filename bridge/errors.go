package bridge

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported means the active host has no implementation for the capability.
	ErrUnsupported = errors.New("bridge: capability not supported by host")
	// ErrTimeout means a message-passing host never answered within the deadline.
	ErrTimeout = errors.New("bridge: host did not respond before timeout")
	// ErrRequestPending means another request for the same capability is in flight.
	// The bridge rejects instead of queueing so a stale host callback can never
	// resolve a newer request.
	ErrRequestPending = errors.New("bridge: a request for this capability is already pending")
	// ErrPermissionDenied means the host refused a permission request.
	ErrPermissionDenied = errors.New("bridge: permission denied by host")
)

// HostError wraps a failure the host itself signalled.
type HostError struct {
	Capability Capability
	Message    string
}

func (e *HostError) Error() string {
	return fmt.Sprintf("bridge: host error on %s: %s", e.Capability, e.Message)
}

// DecodeError wraps malformed host output where structured data was expected.
type DecodeError struct {
	Capability Capability
	Raw        string
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("bridge: cannot decode %s result: %v", e.Capability, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
