// Package backend defines the capability contract shared by the three
// emulation backend variants, plus the error taxonomy surfaced by the
// session coordinator. The coordinator never reaches past this contract
// into a backend's internals.
package backend

import (
	"time"

	"github.com/rylanraj/manicemu/console"
)

// Kind identifies a backend variant.
type Kind int

const (
	KindNative Kind = iota
	KindThreeDS
	KindLibretro
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindNative:
		return "native"
	case KindThreeDS:
		return "3ds"
	case KindLibretro:
		return "libretro"
	}
	return "unknown"
}

// GameInfo locates the game a backend should run.
type GameInfo struct {
	ID      string
	Path    string
	Console console.Type
	Core    string // core name for consoles with selectable cores
}

// SessionOptions carries session-wide flags that backends may honor at
// start (e.g. disabling rewind-style features while online).
type SessionOptions struct {
	Online   bool
	Hardcore bool
}

// StateLocator addresses a save state in whichever scheme the backend
// variant understands: the native backend reads Path as a direct file
// location, the libretro bridge treats Path as an opaque string, and the
// 3DS bridge derives its integer slot from the Path's filename suffix.
type StateLocator struct {
	Path string
}

// Limits holds the backend-specific cooldown windows between save-state
// operations. The values differ per backend, reflecting underlying
// snapshot cost; they are tuning constants, not derived from a formula.
type Limits struct {
	SaveCooldown time.Duration
	LoadCooldown time.Duration
}

// Dialect tags the code format of a cheat.
type Dialect string

const (
	DialectGameGenie    Dialect = "GameGenie"
	DialectActionReplay Dialect = "ActionReplay"
	DialectCWCheat      Dialect = "CWCheat"
	DialectCheatFile    Dialect = "CheatFile"
)

// Cheat is one cheat entry handed to a backend. Enabled=false is an
// explicit deactivation, not an omission; backends must act on it.
type Cheat struct {
	ID      string
	Name    string
	Code    string
	Dialect Dialect
	Enabled bool
}

// RuntimeOptions are the live-session settings a backend applies
// immediately: emulation speed multiplier, output volume, haptic
// feedback, screen orientation/resolution and dual-screen swap.
type RuntimeOptions struct {
	Speed       float64
	Volume      float64
	Haptics     bool
	Orientation string
	Resolution  string
	SwapScreens bool
	Region      string
	Language    string
	AnalogMode  bool
}

// Backend is the capability contract implemented by the three variants.
// Backends are not thread-safe; all calls are issued from the main
// context, and save/load calls are never interleaved (the coordinator
// serializes them through its cooldown checks).
type Backend interface {
	Kind() Kind

	// Start boots the backend for the given game. Calling Start again
	// for the same game while started is a no-op.
	Start(game GameInfo, opts SessionOptions) error

	// Pause and Resume are idempotent: calling either while already in
	// that state is harmless.
	Pause()
	Resume()

	// Running reports whether emulation is currently advancing.
	Running() bool

	// Stop tears the session down and releases all backend resources.
	Stop() error

	ActivateInput(code console.Code, value float64, player int)
	DeactivateInput(code console.Code, player int)
	SetAxis(axis console.Axis, value float64, player int)

	// SaveState and LoadState address states via the variant's own
	// scheme (see StateLocator). A failed operation leaves the backend
	// in its prior state and must not partially apply.
	SaveState(loc StateLocator) error
	LoadState(loc StateLocator) error

	// ApplyCheat applies or explicitly removes one cheat. Each variant
	// speaks its own dialect protocol internally.
	ApplyCheat(c Cheat) error

	// ApplyOptions pushes runtime settings into the live session.
	ApplyOptions(opts RuntimeOptions)

	// SetStopHandler registers the callback invoked when the backend
	// halts on its own (core crash, device shutdown) rather than through
	// Stop. Registered once per session. The handler runs on the
	// backend's reporting goroutine and must not call back into the
	// backend directly.
	SetStopHandler(fn func(err error))

	// RouteDisplay re-routes the rendered surface to or from an external
	// display without stopping emulation.
	RouteDisplay(external bool)

	// Limits returns the save/load cooldown windows for this backend.
	Limits() Limits

	// CoreID identifies the concrete core currently running, for save
	// state fingerprinting.
	CoreID() string
}
