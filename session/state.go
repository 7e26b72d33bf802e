package session

// State is the session's position in its lifecycle. Transitions are
// driven by menu actions, app lifecycle events and backend outcomes;
// online/hardcore/fullscreen modes are orthogonal flags, not states.
type State int

const (
	Launching State = iota
	Running
	Paused
	BackgroundSuspended
	Quitting
	Terminated
)

func (s State) String() string {
	switch s {
	case Launching:
		return "launching"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case BackgroundSuspended:
		return "background suspended"
	case Quitting:
		return "quitting"
	case Terminated:
		return "terminated"
	}
	return "unknown"
}

// Active reports whether the session still owns backend resources.
func (s State) Active() bool {
	return s != Quitting && s != Terminated
}
