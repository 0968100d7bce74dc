package fill

// State is the lifecycle state of a Filler.
type State int

const (
	Idle State = iota
	Filling
	Complete
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Filling:
		return "filling"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}
