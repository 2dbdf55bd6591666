package controller

// State is a controller state
type State int

const (
	StateIdle State = iota
	StateCalibrating
	StateLocating
	StateCapturing
	StateAwaitingContinuation
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateCalibrating:
		return "Calibrating"
	case StateLocating:
		return "Locating"
	case StateCapturing:
		return "Capturing"
	case StateAwaitingContinuation:
		return "AwaitingContinuation"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// StateListener is called after every transition
type StateListener func(prev, next State)
