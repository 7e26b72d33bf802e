package backend

import "errors"

// Error taxonomy surfaced to the user by the coordinator. These are
// matched with errors.Is; lower layers wrap them with context.
var (
	// ErrRateLimited is returned when a save or load is attempted inside
	// the backend's cooldown window. Never retried automatically.
	ErrRateLimited = errors.New("operation attempted too frequently")

	// ErrNotAllowed is returned when online-play or hardcore-mode gating
	// forbids the operation.
	ErrNotAllowed = errors.New("operation not allowed in this session mode")

	// ErrIncompatible is returned when a save state's fingerprint does
	// not match the active core/device. Recoverable by re-issuing the
	// operation with force.
	ErrIncompatible = errors.New("save state incompatible with active core")

	// ErrResourceMissing indicates an absent ROM or BIOS file. Routed to
	// an acquisition flow rather than treated as a terminal failure.
	ErrResourceMissing = errors.New("required resource missing")

	// ErrBackendFailure wraps opaque I/O or internal core errors.
	ErrBackendFailure = errors.New("backend operation failed")
)
