package session

// State is the lifecycle position of a session.
type State int

const (
	Idle State = iota
	Active
	Finishing
	Completed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case Finishing:
		return "finishing"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}
