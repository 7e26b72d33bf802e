// Package session owns the active game session: its state machine,
// dispatch to the right backend variant, reconciliation of external
// events into backend calls, and the single menu-action entry point
// used by all surrounding UI.
package session

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/rylanraj/manicemu/backend"
	"github.com/rylanraj/manicemu/bios"
	"github.com/rylanraj/manicemu/cheats"
	"github.com/rylanraj/manicemu/console"
	"github.com/rylanraj/manicemu/events"
	"github.com/rylanraj/manicemu/notify"
	"github.com/rylanraj/manicemu/savestate"
	"github.com/rylanraj/manicemu/storage"
)

var (
	// ErrSessionActive is returned by Launch while another session holds
	// the process-wide active handle.
	ErrSessionActive = errors.New("another session is already active")

	// ErrWarningNotAcknowledged is returned at pre-flight when the
	// console's one-time launch warnings were never accepted.
	ErrWarningNotAcknowledged = errors.New("console warnings not acknowledged")

	// ErrMembershipRequired gates fast-forward behind an active
	// membership.
	ErrMembershipRequired = errors.New("membership required")
)

// fastForwardSpeed is the emulation speed multiplier while fast-forward
// is engaged. Transient; never persisted into the runtime config.
const fastForwardSpeed = 2.0

// warningConsoles lists consoles whose first launch shows a one-time
// warning the user must acknowledge before a session can start.
var warningConsoles = map[console.Type]bool{
	console.ThreeDS: true,
	console.PSP:     true,
}

// The single shared active-session handle. Exactly one session may be
// active process-wide.
var (
	activeMu sync.Mutex
	active   *Controller
)

// Active returns the current session, or nil.
func Active() *Controller {
	activeMu.Lock()
	defer activeMu.Unlock()
	return active
}

// IsGaming reports whether a session currently owns a backend.
func IsGaming() bool {
	c := Active()
	return c != nil && c.State().Active()
}

// ActiveConsole returns the console of the active session.
func ActiveConsole() (console.Type, bool) {
	c := Active()
	if c == nil || !c.State().Active() {
		return console.TypeUnknown, false
	}
	return c.game.Console, true
}

// Options configures a session launch.
type Options struct {
	Game    storage.GameRecord
	Backend backend.Backend

	DB     *storage.Store
	States *savestate.Store
	Cheats *cheats.Store
	Config storage.Config
	FS     afero.Fs
	Paths  storage.Paths
	Bus    *events.Bus
	Notify *notify.Notification

	// Preload restores a save state right after boot.
	Preload      *storage.SaveStateRecord
	PreloadForce bool

	Hardcore   bool
	Membership bool

	// OnStateChange observes every state-machine transition. Registered
	// once per session; replaces property observation on backend state.
	OnStateChange func(State)

	// ResumeBlocked reports whether blocking UI currently has focus.
	// The session never resumes while it returns true.
	ResumeBlocked func() bool
}

// Controller drives one session from launch to teardown.
type Controller struct {
	mu sync.Mutex

	game    storage.GameRecord
	backend backend.Backend
	db      *storage.Store
	states  *savestate.Store
	cheats  *cheats.Store
	cfg     storage.Config
	fs      afero.Fs
	paths   storage.Paths
	bus     *events.Bus
	note    *notify.Notification

	state       State
	onState     func(State)
	online      bool
	hardcore    bool
	fastForward bool
	membership  bool
	controllers int
	runtime     storage.RuntimeConfig

	resumeBlocked func() bool
	input         *inputRouter

	busToken  int
	stopTick  chan struct{}
	tickDone  chan struct{}
	startedAt time.Time
	now       func() time.Time

	// pending hands work from background timers and backend callbacks to
	// the main context; backends are not reentrancy-safe.
	pending chan func()
}

// Launch runs the pre-flight checks, boots the backend and takes the
// active-session handle. Pre-flight failures leave no session behind.
func Launch(opts Options) (*Controller, error) {
	activeMu.Lock()
	if active != nil && active.State().Active() {
		activeMu.Unlock()
		return nil, ErrSessionActive
	}
	activeMu.Unlock()

	if opts.FS == nil {
		opts.FS = afero.NewOsFs()
	}
	if opts.ResumeBlocked == nil {
		opts.ResumeBlocked = func() bool { return false }
	}
	if opts.Notify == nil {
		opts.Notify = notify.NewNotification()
	}

	c := &Controller{
		game:          opts.Game,
		backend:       opts.Backend,
		db:            opts.DB,
		states:        opts.States,
		cheats:        opts.Cheats,
		cfg:           opts.Config,
		fs:            opts.FS,
		paths:         opts.Paths,
		bus:           opts.Bus,
		note:          opts.Notify,
		state:         Launching,
		onState:       opts.OnStateChange,
		hardcore:      opts.Hardcore || opts.Config.HardcoreMode,
		membership:    opts.Membership,
		resumeBlocked: opts.ResumeBlocked,
		input:         newInputRouter(opts.Game.Console),
		now:           time.Now,
		pending:       make(chan func(), 8),
	}

	if err := c.preflight(); err != nil {
		return nil, err
	}

	game := backend.GameInfo{
		ID:      c.game.ID,
		Path:    c.game.Path,
		Console: c.game.Console,
		Core:    c.game.Core,
	}
	if err := c.backend.Start(game, backend.SessionOptions{Hardcore: c.hardcore}); err != nil {
		return nil, fmt.Errorf("start backend: %w", err)
	}
	c.backend.SetStopHandler(func(err error) {
		c.enqueue(func() { c.abnormalStop(err) })
	})

	// Runtime settings and cheats are restored before play begins so
	// the session starts exactly where the last one left off.
	rc, err := c.db.GetRuntimeConfig(c.game.ID)
	if err != nil {
		c.backend.Stop()
		return nil, fmt.Errorf("load runtime config: %w", err)
	}
	c.runtime = rc
	c.backend.ApplyOptions(c.runtimeOptions())

	if !c.hardcore {
		if report, err := c.cheats.Apply(c.backend, c.game.ID); err != nil {
			log.Printf("session: cheat activation failed: %v", err)
		} else {
			c.notifyCheatReport(report)
		}
	}

	if opts.Preload != nil {
		_, err := c.states.Load(c.backend, savestate.LoadRequest{
			GameID:   c.game.ID,
			State:    opts.Preload,
			Force:    opts.PreloadForce,
			Hardcore: c.hardcore,
		})
		if err != nil {
			log.Printf("session: preload state: %v", err)
			c.note.ShowDefault("Could not load save state")
		}
	}

	c.startedAt = c.now()
	c.setState(Running)

	if c.bus != nil {
		c.busToken = c.bus.Subscribe(c.handleEvent)
	}
	c.stopTick = make(chan struct{})
	c.tickDone = make(chan struct{})
	go c.autoSaveLoop()

	activeMu.Lock()
	active = c
	activeMu.Unlock()
	return c, nil
}

// preflight verifies the ROM exists, required firmware is present and
// one-time warnings were acknowledged.
func (c *Controller) preflight() error {
	exists, err := afero.Exists(c.fs, c.game.Path)
	if err != nil {
		return fmt.Errorf("check rom: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: rom %s", backend.ErrResourceMissing, c.game.Path)
	}

	missing, err := bios.Missing(c.fs, c.paths.BIOSDir(), c.game.Console)
	if err != nil {
		return fmt.Errorf("check firmware: %w", err)
	}
	if len(missing) > 0 {
		names := make([]string, len(missing))
		for i, f := range missing {
			names[i] = f.FileName
		}
		return fmt.Errorf("%w: firmware %s", backend.ErrResourceMissing, strings.Join(names, ", "))
	}

	if warningConsoles[c.game.Console] && !c.game.WarningsAcknowledged {
		return ErrWarningNotAcknowledged
	}
	return nil
}

// State returns the current state-machine state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Game returns the session's game record.
func (c *Controller) Game() storage.GameRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.game
}

// setState transitions and fires the state-change callback. Callers
// must not hold c.mu.
func (c *Controller) setState(s State) {
	c.mu.Lock()
	if c.state == s {
		c.mu.Unlock()
		return
	}
	c.state = s
	cb := c.onState
	c.mu.Unlock()

	if cb != nil {
		cb(s)
	}
}

// runtimeOptions maps the persisted runtime config onto backend options.
func (c *Controller) runtimeOptions() backend.RuntimeOptions {
	speed := c.runtime.Speed
	if c.fastForward {
		speed = fastForwardSpeed
	}
	return backend.RuntimeOptions{
		Speed:       speed,
		Volume:      c.runtime.Volume,
		Haptics:     c.runtime.Haptics,
		Orientation: c.runtime.Orientation,
		Resolution:  c.runtime.Resolution,
		SwapScreens: c.runtime.SwapScreens,
		Region:      c.runtime.Region,
		Language:    c.runtime.Language,
		AnalogMode:  c.runtime.AnalogMode,
	}
}

// gate rejects actions forbidden by the session's orthogonal modes.
func (c *Controller) gate(a Action) error {
	c.mu.Lock()
	online, hardcore, membership := c.online, c.hardcore, c.membership
	c.mu.Unlock()

	if online {
		switch a {
		case ActionSaveState, ActionLoadState, ActionToggleFastForward, ActionApplyCheats:
			return backend.ErrNotAllowed
		}
	}
	if hardcore {
		switch a {
		case ActionSaveState, ActionLoadState, ActionApplyCheats:
			return backend.ErrNotAllowed
		}
	}
	if a == ActionToggleFastForward && !membership {
		return ErrMembershipRequired
	}
	return nil
}

// HandleAction is the single entry point for menu actions. The return
// value tells the caller whether the invoking menu should close.
func (c *Controller) HandleAction(req Request, fromMenu bool) bool {
	if !c.State().Active() {
		return false
	}

	if err := c.gate(req.Action); err != nil {
		c.notifyError(req.Action, err)
		return false
	}

	switch req.Action {
	case ActionSaveState:
		return c.doSave(req, fromMenu)
	case ActionLoadState:
		return c.doLoad(req, fromMenu)
	case ActionPause:
		c.pause()
		return false
	case ActionResume:
		return c.resume()
	case ActionToggleFastForward:
		c.toggleFastForward()
		return false
	case ActionApplyCheats:
		return c.doApplyCheats(fromMenu)
	case ActionQuit:
		c.Destroy()
		return true
	}
	return false
}

func (c *Controller) doSave(req Request, fromMenu bool) bool {
	c.mu.Lock()
	online, hardcore := c.online, c.hardcore
	c.mu.Unlock()

	_, err := c.states.Save(c.backend, savestate.SaveRequest{
		GameID:   c.game.ID,
		Kind:     storage.SaveManual,
		Preview:  req.Preview,
		Online:   online,
		Hardcore: hardcore,
	})
	if err != nil {
		c.notifyError(ActionSaveState, err)
		return false
	}
	c.note.ShowShort("State saved")
	return fromMenu
}

func (c *Controller) doLoad(req Request, fromMenu bool) bool {
	c.mu.Lock()
	online, hardcore := c.online, c.hardcore
	c.mu.Unlock()

	_, err := c.states.Load(c.backend, savestate.LoadRequest{
		GameID:   c.game.ID,
		State:    req.State,
		Force:    req.Force,
		Online:   online,
		Hardcore: hardcore,
	})
	if err != nil {
		c.notifyError(ActionLoadState, err)
		return false
	}
	c.note.ShowShort("State loaded")
	return fromMenu
}

func (c *Controller) doApplyCheats(fromMenu bool) bool {
	report, err := c.cheats.Apply(c.backend, c.game.ID)
	if err != nil {
		c.notifyError(ActionApplyCheats, err)
		return false
	}
	c.notifyCheatReport(report)
	return fromMenu && len(report.Failures) == 0
}

func (c *Controller) notifyCheatReport(report cheats.Report) {
	if len(report.Activated) > 0 {
		c.note.ShowDefault(fmt.Sprintf("Activated %d cheat(s)", len(report.Activated)))
	}
	for _, f := range report.Failures {
		c.note.ShowDefault(fmt.Sprintf("Cheat %q failed: %v", f.Name, f.Err))
		log.Printf("session: cheat %q rejected: %v", f.Name, f.Err)
	}
}

// notifyError converts the error taxonomy into user-facing messages.
func (c *Controller) notifyError(a Action, err error) {
	switch {
	case errors.Is(err, backend.ErrRateLimited):
		c.note.ShowShort("Too fast, try again in a moment")
	case errors.Is(err, backend.ErrNotAllowed):
		c.note.ShowDefault(fmt.Sprintf("Cannot %s in this mode", a))
	case errors.Is(err, backend.ErrIncompatible):
		c.note.ShowDefault("Save state was created by a different core")
	case errors.Is(err, savestate.ErrNoManualSave):
		c.note.ShowDefault("No save state to load")
	case errors.Is(err, ErrMembershipRequired):
		c.note.ShowDefault("Fast-forward requires a membership")
	default:
		c.note.ShowDefault(fmt.Sprintf("Failed to %s", a))
		log.Printf("session: %s: %v", a, err)
	}
}

// pause is idempotent; repeated calls are harmless.
func (c *Controller) pause() {
	if c.State() != Running {
		return
	}
	c.backend.Pause()
	c.setState(Paused)
}

// resume is gated by the blocking-UI predicate: the session must not
// resume under an open settings sheet or dialog. An explicit user
// resume also brings a background-suspended session back.
func (c *Controller) resume() bool {
	s := c.State()
	if s != Paused && s != BackgroundSuspended {
		return false
	}
	if c.resumeBlocked() {
		return false
	}
	c.backend.Resume()
	c.setState(Running)
	return true
}

func (c *Controller) toggleFastForward() {
	c.mu.Lock()
	c.fastForward = !c.fastForward
	engaged := c.fastForward
	opts := c.runtimeOptions()
	c.mu.Unlock()

	c.backend.ApplyOptions(opts)
	if engaged {
		c.note.ShowShort("Fast-forward on")
	} else {
		c.note.ShowShort("Fast-forward off")
	}
}

// UpdateRuntime applies new per-game settings to the live backend and
// persists them for future sessions.
func (c *Controller) UpdateRuntime(rc storage.RuntimeConfig) error {
	rc.GameID = c.game.ID
	c.mu.Lock()
	c.runtime = rc
	opts := c.runtimeOptions()
	c.mu.Unlock()

	c.backend.ApplyOptions(opts)
	if err := c.db.PutRuntimeConfig(rc); err != nil {
		return fmt.Errorf("persist runtime config: %w", err)
	}
	return nil
}

// Runtime returns the session's current runtime config.
func (c *Controller) Runtime() storage.RuntimeConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runtime
}

// handleEvent reconciles external events into backend calls.
func (c *Controller) handleEvent(e events.Event) {
	switch e.Type {
	case events.AppBackgrounded:
		c.suspend()

	case events.AppForegrounded:
		c.foreground()

	case events.ControllerConnected, events.ControllerDisconnected,
		events.KeyboardConnected, events.KeyboardDisconnected:
		c.mu.Lock()
		c.controllers = e.Count
		clearSkin := e.Count == 0 && c.runtime.ForcedFullSkin
		if clearSkin {
			c.runtime.ForcedFullSkin = false
		}
		rc := c.runtime
		c.mu.Unlock()
		if e.Count == 0 {
			c.ResetInput()
		}
		if clearSkin {
			if err := c.db.PutRuntimeConfig(rc); err != nil {
				log.Printf("session: persist runtime config: %v", err)
			}
		}

	case events.ExternalDisplayConnected:
		c.backend.RouteDisplay(true)

	case events.ExternalDisplayDisconnected:
		c.backend.RouteDisplay(false)

	case events.OnlineConnected:
		c.mu.Lock()
		c.online = true
		// Fast-forward cannot stay engaged once online.
		wasFF := c.fastForward
		c.fastForward = false
		opts := c.runtimeOptions()
		c.mu.Unlock()
		if wasFF {
			c.backend.ApplyOptions(opts)
		}

	case events.OnlineDisconnected:
		c.mu.Lock()
		c.online = false
		c.mu.Unlock()

	case events.MembershipChanged:
		c.mu.Lock()
		c.membership = e.Active
		wasFF := c.fastForward && !e.Active
		if wasFF {
			c.fastForward = false
		}
		opts := c.runtimeOptions()
		c.mu.Unlock()
		if wasFF {
			c.backend.ApplyOptions(opts)
		}
	}
}

// suspend parks the session when the app leaves the foreground. An
// automatic save is taken first so nothing is lost if the process dies
// in the background.
func (c *Controller) suspend() {
	if c.State() != Running {
		return
	}
	c.autoSave()
	c.backend.Pause()
	c.setState(BackgroundSuspended)
}

// foreground resumes only backends that tolerate unattended background
// execution poorly; native cores idle safely suspended and wait for an
// explicit user resume.
func (c *Controller) foreground() {
	if c.State() != BackgroundSuspended || c.resumeBlocked() {
		return
	}
	if !resumesOnForeground(c.backend.Kind()) {
		return
	}
	c.backend.Resume()
	c.setState(Running)
}

func resumesOnForeground(k backend.Kind) bool {
	return k == backend.KindThreeDS || k == backend.KindLibretro
}

// enqueue hands work to the main context. Backends are not
// reentrancy-safe, so background timers and backend callbacks never
// touch them directly; the front-end drains the queue from its main
// loop via RunQueued. A full queue drops the item, the next tick or
// report catches up.
func (c *Controller) enqueue(fn func()) {
	select {
	case c.pending <- fn:
	default:
	}
}

// RunQueued executes work handed over by background timers and backend
// callbacks. The front-end calls it from its main loop, keeping every
// backend call on that single context.
func (c *Controller) RunQueued() {
	for {
		select {
		case fn := <-c.pending:
			fn()
		default:
			return
		}
	}
}

// autoSaveLoop queues a scheduled snapshot while play is active. The
// timer goroutine never calls the backend itself; a save racing a
// main-context save or load would interleave two operations on a
// reentrancy-unsafe backend.
func (c *Controller) autoSaveLoop() {
	defer close(c.tickDone)

	interval := time.Duration(c.cfg.AutoSaveInterval) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.scheduleAutoSave()
		case <-c.stopTick:
			return
		}
	}
}

func (c *Controller) scheduleAutoSave() {
	if c.State() == Running {
		c.enqueue(c.autoSave)
	}
}

func (c *Controller) autoSave() {
	if !c.State().Active() {
		return
	}
	c.mu.Lock()
	online, hardcore := c.online, c.hardcore
	c.mu.Unlock()
	if online || hardcore {
		return
	}

	_, err := c.states.Save(c.backend, savestate.SaveRequest{
		GameID: c.game.ID,
		Kind:   storage.SaveAuto,
	})
	if err != nil && !errors.Is(err, backend.ErrRateLimited) {
		log.Printf("session: auto save: %v", err)
	}
}

// abnormalStop tears the session down after the backend reports a
// terminal halt of its own. Runs on the main context via the queue.
func (c *Controller) abnormalStop(err error) {
	if !c.State().Active() {
		return
	}
	if err != nil {
		log.Printf("session: backend stopped: %v", err)
	}
	c.note.ShowDefault("Emulation stopped unexpectedly")
	c.Destroy()
}

// Destroy tears the session down: cumulative play time is saved, the
// backend is stopped and the shared active handle released. Safe to
// call more than once.
func (c *Controller) Destroy() {
	c.mu.Lock()
	if !c.state.Active() {
		c.mu.Unlock()
		return
	}
	c.state = Quitting
	cb := c.onState
	c.mu.Unlock()
	if cb != nil {
		cb(Quitting)
	}

	close(c.stopTick)
	<-c.tickDone
	if c.bus != nil {
		c.bus.Unsubscribe(c.busToken)
	}

	if err := c.backend.Stop(); err != nil {
		log.Printf("session: stop backend: %v", err)
	}

	// Persist cumulative play time.
	elapsed := int64(c.now().Sub(c.startedAt).Seconds())
	if game, err := c.db.GetGame(c.game.ID); err == nil {
		game.PlayTimeSeconds += elapsed
		if err := c.db.PutGame(game); err != nil {
			log.Printf("session: persist play time: %v", err)
		}
	}

	c.setState(Terminated)

	activeMu.Lock()
	if active == c {
		active = nil
	}
	activeMu.Unlock()
}
