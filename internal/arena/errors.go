package arena

import "errors"

// Validation failures: the event itself is malformed or unauthorized.
var (
	ErrNotParticipant = errors.New("user is not a participant of this session")
	ErrUnknownProblem = errors.New("problem is not among the offered options")
)

// State conflicts: the event is well-formed but wrong for the current status.
var (
	ErrWrongState = errors.New("event not valid in current session state")
)

// Registry-level failures.
var (
	ErrSessionNotFound    = errors.New("no live session for this room")
	ErrSessionExists      = errors.New("room already has a live session")
	ErrTooFewParticipants = errors.New("a session needs at least two participants")
)

// IsValidation reports whether err is a rejection of the event itself rather
// than a state conflict. Handlers use it to pick the response shape.
func IsValidation(err error) bool {
	return errors.Is(err, ErrNotParticipant) || errors.Is(err, ErrUnknownProblem)
}
