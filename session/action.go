package session

import "github.com/rylanraj/manicemu/storage"

// Action is a semantic menu request. All surrounding UI funnels through
// HandleAction with one of these.
type Action int

const (
	ActionSaveState Action = iota
	ActionLoadState
	ActionPause
	ActionResume
	ActionToggleFastForward
	ActionApplyCheats
	ActionQuit
)

func (a Action) String() string {
	switch a {
	case ActionSaveState:
		return "save state"
	case ActionLoadState:
		return "load state"
	case ActionPause:
		return "pause"
	case ActionResume:
		return "resume"
	case ActionToggleFastForward:
		return "toggle fast-forward"
	case ActionApplyCheats:
		return "apply cheats"
	case ActionQuit:
		return "quit"
	}
	return "unknown"
}

// Request carries one action plus its parameters.
type Request struct {
	Action Action

	// State selects an explicit save state for ActionLoadState; nil
	// resolves to the most recent manual save.
	State *storage.SaveStateRecord

	// Force proceeds past a save-state fingerprint mismatch.
	Force bool

	// Preview attaches a screenshot to ActionSaveState.
	Preview []byte
}
