package registry

// Status tracks the lifecycle of a registered adapter.
//
// The progression is strictly forward with one failure branch:
// Registered to Loading to Active, with Loading to Failed on error. Reset returns
// Active or Failed back to Registered; nothing else leaves Failed.
type Status int

const (
	// StatusRegistered means metadata known, implementation not yet loaded.
	StatusRegistered Status = iota
	// StatusLoading means import and instantiation in progress.
	StatusLoading
	// StatusActive means instantiated and usable.
	StatusActive
	// StatusFailed means import or instantiation failed; sticky until reset.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusRegistered:
		return "registered"
	case StatusLoading:
		return "loading"
	case StatusActive:
		return "active"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}
