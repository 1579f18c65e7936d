package arena

import (
	"time"

	"github.com/rickgao0917/quantrooms/internal/models"
)

// Outbound broadcast types, scoped to a room.
const (
	EventSessionStarted    = "session_started"
	EventReadyUpdate       = "ready_update"
	EventVotingStarted     = "voting_started"
	EventVoteTally         = "vote_tally"
	EventProblemSelected   = "problem_selected"
	EventParticipantSolved = "participant_solved"
	EventSessionFinished   = "session_finished"
	EventSessionAborted    = "session_aborted"
)

type SessionStartedEvent struct {
	SessionID    string            `json:"session_id"`
	RoomID       uint              `json:"room_id"`
	Participants []ParticipantView `json:"participants"`
}

type ReadyUpdateEvent struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Ready    bool   `json:"ready"`
	Verified bool   `json:"verified"`
	ReadyNum int    `json:"ready_num"`
	Total    int    `json:"total"`
}

type VotingStartedEvent struct {
	Options  []models.Problem `json:"options"`
	Deadline time.Time        `json:"deadline"`
}

type VoteTallyEvent struct {
	Tally map[uint]int `json:"tally"`
	Voted int          `json:"voted"`
	Total int          `json:"total"`
}

type ProblemSelectedEvent struct {
	Problem   models.Problem `json:"problem"`
	StartedAt time.Time      `json:"started_at"`
	EndsAt    time.Time      `json:"ends_at"`
}

type ParticipantSolvedEvent struct {
	UserID     uint   `json:"user_id"`
	Username   string `json:"username"`
	Rank       int    `json:"rank"`
	Points     int    `json:"points"`
	DurationMs int64  `json:"duration_ms"`
}

type SessionFinishedEvent struct {
	SessionID string            `json:"session_id"`
	Results   []ParticipantView `json:"results"`
}

// ParticipantView is the participant shape carried in broadcasts.
type ParticipantView struct {
	UserID        uint   `json:"user_id"`
	Username      string `json:"username"`
	Rating        int    `json:"rating"`
	Ready         bool   `json:"ready"`
	Verified      bool   `json:"verified"`
	Solved        bool   `json:"solved"`
	Rank          int    `json:"rank,omitempty"`
	Points        int    `json:"points"`
	RatingDelta   int    `json:"rating_delta"`
	SolveDuration int64  `json:"solve_duration_ms,omitempty"`
}
