package domain

// LoadState tracks whether the current user of a session is final.
type LoadState int

const (
	// StateNotChecked is the state of a session that has not been restored yet.
	StateNotChecked LoadState = iota
	// StateChecking is held while an auth operation is in flight.
	StateChecking
	// StateResolved means the session user is final until the next operation.
	StateResolved
)

func (s LoadState) String() string {
	switch s {
	case StateNotChecked:
		return "not_checked"
	case StateChecking:
		return "checking"
	case StateResolved:
		return "resolved"
	default:
		return "unknown"
	}
}
