package clip

// State is the externally visible lifecycle phase of a Clip.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateResetting
	StateDeleted
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateResetting:
		return "resetting"
	case StateDeleted:
		return "deleted"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
