// Package libretro hosts the shared libretro bridge. One bridge instance
// multiplexes every libretro-driven console, addressed by core name; the
// loaded core itself is opaque behind the Host interface.
package libretro

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/rylanraj/manicemu/backend"
	"github.com/rylanraj/manicemu/console"
)

// Cooldown windows for the shared libretro path.
const (
	saveCooldown = 3 * time.Second
	loadCooldown = 1 * time.Second
)

// picodriveCheatDelay is how long the first cheat replay for Picodrive
// cores is deferred after activation. The core misbehaves when cheats
// arrive during initialization; the guard applies once per session.
const picodriveCheatDelay = 1 * time.Second

// Host is the loaded-core surface. In a full build this fronts the
// dlopen'd libretro core; the coordinator only ever sees this contract.
type Host interface {
	LoadCore(path string) error
	UnloadCore()
	LoadGame(romPath string) error
	UnloadGame()
	SetRunning(running bool)
	Serialize() ([]byte, error)
	Unserialize(data []byte) error
	CheatReset()
	CheatSet(index int, enabled bool, code string) error
	SetButton(player int, code console.Code, pressed bool)
	SetAxis(player int, axis console.Axis, value float64)
	ApplyOptions(opts backend.RuntimeOptions)
	RouteDisplay(external bool)
}

// Bridge implements the capability contract over the shared host. The
// bridge is reentrancy-unsafe, like the cores it loads; the reserved
// channel forbids concurrent use of the host.
type Bridge struct {
	host    Host
	fs      afero.Fs
	coreDir string

	// reserved limits the host to one operation at a time.
	reserved chan struct{}

	coreName string
	game     backend.GameInfo
	started  bool
	running  bool

	// Index-addressed cheat composition, replayed in full on change.
	cheats []cheatEntry

	// Picodrive first-activation guard.
	picodriveDeferred bool
	delayFn           func(d time.Duration, f func())

	onStop func(error)
}

// Compile-time interface check.
var _ backend.Backend = (*Bridge)(nil)

var (
	shared     *Bridge
	sharedOnce sync.Once
)

// Init creates the single shared bridge. Later calls return the bridge
// created by the first one.
func Init(host Host, coreDir string) *Bridge {
	sharedOnce.Do(func() {
		shared = newBridge(host, coreDir, afero.NewOsFs())
	})
	return shared
}

// Shared returns the shared bridge, or nil before Init.
func Shared() *Bridge { return shared }

// newBridge is split out so tests can build non-singleton instances.
func newBridge(host Host, coreDir string, fs afero.Fs) *Bridge {
	b := &Bridge{
		host:     host,
		fs:       fs,
		coreDir:  coreDir,
		reserved: make(chan struct{}, 1),
		delayFn:  func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
	b.reserved <- struct{}{}
	return b
}

// acquire reserves the host for one operation.
func (b *Bridge) acquire() { <-b.reserved }

// release returns the host reservation.
func (b *Bridge) release() { b.reserved <- struct{}{} }

// Kind implements backend.Backend.
func (b *Bridge) Kind() backend.Kind { return backend.KindLibretro }

// CoreID implements backend.Backend.
func (b *Bridge) CoreID() string { return b.coreName }

// Limits implements backend.Backend.
func (b *Bridge) Limits() backend.Limits {
	return backend.Limits{SaveCooldown: saveCooldown, LoadCooldown: loadCooldown}
}

// corePath maps a core name to the loadable core file.
func (b *Bridge) corePath(name string) string {
	return filepath.Join(b.coreDir, name+"_libretro.so")
}

// coreFor picks the core that should run the game: an explicit selection
// wins, otherwise the console's preferred core.
func coreFor(game backend.GameInfo) (string, error) {
	if game.Core != "" {
		return game.Core, nil
	}
	cores := game.Console.Cores()
	if len(cores) == 0 {
		return "", fmt.Errorf("no core registered for %s", game.Console)
	}
	return cores[0], nil
}

// Start loads the right core for the game's console and boots the game.
// Starting the already-running game again is a no-op. Starting a
// different game swaps out the loaded core if needed.
func (b *Bridge) Start(game backend.GameInfo, opts backend.SessionOptions) error {
	if b.started && b.game.ID == game.ID {
		return nil
	}

	core, err := coreFor(game)
	if err != nil {
		return fmt.Errorf("%w: %v", backend.ErrBackendFailure, err)
	}

	b.acquire()
	defer b.release()

	if b.started {
		b.host.UnloadGame()
		b.started = false
		b.running = false
		b.cheats = nil
		b.picodriveDeferred = false
	}

	if core != b.coreName {
		if b.coreName != "" {
			b.host.UnloadCore()
			b.coreName = ""
		}
		if err := b.host.LoadCore(b.corePath(core)); err != nil {
			return fmt.Errorf("%w: load core %s: %v", backend.ErrBackendFailure, core, err)
		}
		b.coreName = core
	}

	if err := b.host.LoadGame(game.Path); err != nil {
		return fmt.Errorf("%w: load game: %v", backend.ErrBackendFailure, err)
	}

	b.game = game
	b.started = true
	b.running = true
	return nil
}

// Pause implements backend.Backend.
func (b *Bridge) Pause() {
	if b.started && b.running {
		b.host.SetRunning(false)
		b.running = false
	}
}

// Resume implements backend.Backend.
func (b *Bridge) Resume() {
	if b.started && !b.running {
		b.host.SetRunning(true)
		b.running = true
	}
}

// Running implements backend.Backend.
func (b *Bridge) Running() bool { return b.started && b.running }

// Stop unloads the game and clears session state. The core stays loaded
// for the next session on the same console family.
func (b *Bridge) Stop() error {
	if !b.started {
		return nil
	}
	b.acquire()
	defer b.release()

	b.host.UnloadGame()
	b.clearSession()
	b.onStop = nil
	return nil
}

func (b *Bridge) clearSession() {
	b.started = false
	b.running = false
	b.game = backend.GameInfo{}
	b.cheats = nil
	b.picodriveDeferred = false
}

// SetStopHandler implements backend.Backend.
func (b *Bridge) SetStopHandler(fn func(err error)) { b.onStop = fn }

// ReportStop is called by the host when the loaded core halts outside a
// Stop call. The core is left unloaded from the bridge's point of view.
func (b *Bridge) ReportStop(err error) {
	if !b.started {
		return
	}
	b.clearSession()
	if fn := b.onStop; fn != nil {
		b.onStop = nil
		fn(err)
	}
}

// ActivateInput implements backend.Backend.
func (b *Bridge) ActivateInput(code console.Code, value float64, player int) {
	if b.started {
		b.host.SetButton(player, code, true)
	}
}

// DeactivateInput implements backend.Backend.
func (b *Bridge) DeactivateInput(code console.Code, player int) {
	if b.started {
		b.host.SetButton(player, code, false)
	}
}

// SetAxis implements backend.Backend.
func (b *Bridge) SetAxis(axis console.Axis, value float64, player int) {
	if b.started {
		b.host.SetAxis(player, axis, value)
	}
}

// SaveState serializes the host to the locator's opaque path.
func (b *Bridge) SaveState(loc backend.StateLocator) error {
	if !b.started {
		return fmt.Errorf("%w: no game started", backend.ErrBackendFailure)
	}
	b.acquire()
	defer b.release()

	state, err := b.host.Serialize()
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

// LoadState restores the host from the locator's opaque path.
func (b *Bridge) LoadState(loc backend.StateLocator) error {
	if !b.started {
		return fmt.Errorf("%w: no game started", backend.ErrBackendFailure)
	}
	b.acquire()
	defer b.release()

	state, err := afero.ReadFile(b.fs, loc.Path)
	if err != nil {
		return fmt.Errorf("%w: read state: %v", backend.ErrBackendFailure, err)
	}
	if err := b.host.Unserialize(state); err != nil {
		return fmt.Errorf("%w: unserialize: %v", backend.ErrBackendFailure, err)
	}
	return nil
}

// ApplyOptions implements backend.Backend.
func (b *Bridge) ApplyOptions(opts backend.RuntimeOptions) {
	if b.started {
		b.host.ApplyOptions(opts)
	}
}

// RouteDisplay implements backend.Backend.
func (b *Bridge) RouteDisplay(external bool) {
	b.host.RouteDisplay(external)
}

func isPicodrive(core string) bool {
	return strings.Contains(core, "picodrive")
}
