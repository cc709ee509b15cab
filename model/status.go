package model

import "fmt"

// Status is the lifecycle state of a contract
type Status string

// Contract status constants
const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusSigned   Status = "signed"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

// Statuses lists every valid status.
var Statuses = []Status{StatusPending, StatusVerified, StatusSigned, StatusRejected, StatusExpired}

// transitions holds the allowed edges. Expired is never produced by an
// exposed operation.
var transitions = map[Status][]Status{
	StatusPending:  {StatusVerified, StatusRejected, StatusSigned},
	StatusVerified: {StatusSigned},
}

// ParseStatus converts s into a Status, reporting whether it is valid.
func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	return st, st.Valid()
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Terminal reports whether no edge leaves s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// CanTransition reports whether a contract may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionError is returned when a requested edge is not allowed.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move contract from %s to %s", e.From, e.To)
}
