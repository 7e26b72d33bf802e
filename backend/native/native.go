// Package native drives the built-in per-console cores. Each console has
// its own core implementation wrapping one shared serialization/input/cheat
// interface; the backend addresses save states by direct file path.
package native

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/rylanraj/manicemu/backend"
	"github.com/rylanraj/manicemu/console"
	"github.com/rylanraj/manicemu/romloader"
)

// Core is the shared interface every native console core implements.
// The emulation internals behind it are opaque to the coordinator.
type Core interface {
	LoadROM(data []byte) error
	SetButton(code console.Code, pressed bool, player int)
	SetAxis(axis console.Axis, value float64, player int)
	Serialize() ([]byte, error)
	Deserialize(data []byte) error
	SetCheat(code string, dialect backend.Dialect, enabled bool) error
	ApplyOptions(opts backend.RuntimeOptions)
	Close()
}

// Factory creates core instances for one console.
type Factory interface {
	Console() console.Type
	CoreID() string
	New() (Core, error)
}

// Backend implements the capability contract on top of a native core.
type Backend struct {
	factory Factory
	fs      afero.Fs

	core     Core
	game     backend.GameInfo
	started  bool
	running  bool
	external bool
	onStop   func(error)
}

// Compile-time interface check.
var _ backend.Backend = (*Backend)(nil)

// New creates a native backend for the given core factory.
func New(factory Factory) *Backend {
	return NewWithFS(factory, afero.NewOsFs())
}

// NewWithFS creates a native backend writing state files through fs.
func NewWithFS(factory Factory, fs afero.Fs) *Backend {
	return &Backend{factory: factory, fs: fs}
}

// Kind implements backend.Backend.
func (b *Backend) Kind() backend.Kind { return backend.KindNative }

// CoreID implements backend.Backend.
func (b *Backend) CoreID() string { return b.factory.CoreID() }

// Limits returns the native cooldown windows. Native snapshots are cheap,
// so the windows are the shortest of the three backends.
func (b *Backend) Limits() backend.Limits {
	return backend.Limits{
		SaveCooldown: nativeSaveCooldown,
		LoadCooldown: nativeLoadCooldown,
	}
}

// Start boots the core with the game's ROM. Starting the already-running
// game again is a no-op.
func (b *Backend) Start(game backend.GameInfo, opts backend.SessionOptions) error {
	if b.started && b.game.ID == game.ID {
		return nil
	}
	if b.started {
		if err := b.Stop(); err != nil {
			return err
		}
	}

	rom, _, err := romloader.LoadROMFS(b.fs, game.Path, game.Console.Extensions())
	if err != nil {
		return fmt.Errorf("%w: load rom: %v", backend.ErrResourceMissing, err)
	}

	core, err := b.factory.New()
	if err != nil {
		return fmt.Errorf("%w: create core: %v", backend.ErrBackendFailure, err)
	}
	if err := core.LoadROM(rom); err != nil {
		core.Close()
		return fmt.Errorf("%w: load game: %v", backend.ErrBackendFailure, err)
	}

	b.core = core
	b.game = game
	b.started = true
	b.running = true
	return nil
}

// Pause implements backend.Backend. Safe to call while already paused.
func (b *Backend) Pause() {
	if b.started {
		b.running = false
	}
}

// Resume implements backend.Backend. Safe to call while already running.
func (b *Backend) Resume() {
	if b.started {
		b.running = true
	}
}

// Running implements backend.Backend.
func (b *Backend) Running() bool { return b.started && b.running }

// Stop releases the core and all session resources.
func (b *Backend) Stop() error {
	if !b.started {
		return nil
	}
	b.core.Close()
	b.core = nil
	b.started = false
	b.running = false
	b.game = backend.GameInfo{}
	b.onStop = nil
	return nil
}

// SetStopHandler implements backend.Backend.
func (b *Backend) SetStopHandler(fn func(err error)) { b.onStop = fn }

// ReportStop is called by the core driver when emulation halts outside a
// Stop call. The dead core is released and the registered handler told.
func (b *Backend) ReportStop(err error) {
	if !b.started {
		return
	}
	b.core.Close()
	b.core = nil
	b.started = false
	b.running = false
	b.game = backend.GameInfo{}
	if fn := b.onStop; fn != nil {
		b.onStop = nil
		fn(err)
	}
}

// ActivateInput implements backend.Backend.
func (b *Backend) ActivateInput(code console.Code, value float64, player int) {
	if b.started {
		b.core.SetButton(code, true, player)
	}
}

// DeactivateInput implements backend.Backend.
func (b *Backend) DeactivateInput(code console.Code, player int) {
	if b.started {
		b.core.SetButton(code, false, player)
	}
}

// SetAxis implements backend.Backend.
func (b *Backend) SetAxis(axis console.Axis, value float64, player int) {
	if b.started {
		b.core.SetAxis(axis, value, player)
	}
}

// SaveState serializes the core to the locator's file path. The write goes
// through a temp file and rename so a failed save leaves nothing behind.
func (b *Backend) SaveState(loc backend.StateLocator) error {
	if !b.started {
		return fmt.Errorf("%w: no game started", backend.ErrBackendFailure)
	}
	state, err := b.core.Serialize()
	if err != nil {
		return fmt.Errorf("%w: serialize: %v", backend.ErrBackendFailure, err)
	}

	tmp := loc.Path + ".tmp"
	if err := afero.WriteFile(b.fs, tmp, state, 0644); err != nil {
		return fmt.Errorf("%w: write state: %v", backend.ErrBackendFailure, err)
	}
	if err := b.fs.Rename(tmp, loc.Path); err != nil {
		b.fs.Remove(tmp)
		return fmt.Errorf("%w: write state: %v", backend.ErrBackendFailure, err)
	}
	return nil
}

// LoadState restores the core from the locator's file path.
func (b *Backend) LoadState(loc backend.StateLocator) error {
	if !b.started {
		return fmt.Errorf("%w: no game started", backend.ErrBackendFailure)
	}
	state, err := afero.ReadFile(b.fs, loc.Path)
	if err != nil {
		return fmt.Errorf("%w: read state: %v", backend.ErrBackendFailure, err)
	}
	if err := b.core.Deserialize(state); err != nil {
		return fmt.Errorf("%w: deserialize: %v", backend.ErrBackendFailure, err)
	}
	return nil
}

// ApplyCheat hands one code/type pair to the core. Enabled=false is an
// explicit removal.
func (b *Backend) ApplyCheat(c backend.Cheat) error {
	if !b.started {
		return fmt.Errorf("%w: no game started", backend.ErrBackendFailure)
	}
	if err := b.core.SetCheat(c.Code, c.Dialect, c.Enabled); err != nil {
		return fmt.Errorf("%w: cheat %q: %v", backend.ErrBackendFailure, c.Name, err)
	}
	return nil
}

// ApplyOptions implements backend.Backend.
func (b *Backend) ApplyOptions(opts backend.RuntimeOptions) {
	if b.started {
		b.core.ApplyOptions(opts)
	}
}

// RouteDisplay implements backend.Backend. The native cores render into a
// surface owned by the front-end; routing is a flag the surface owner reads.
func (b *Backend) RouteDisplay(external bool) {
	b.external = external
}

// ExternalDisplay reports whether rendering is routed to a remote display.
func (b *Backend) ExternalDisplay() bool { return b.external }
