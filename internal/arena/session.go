// Package arena runs the live competitive sessions. Each room has at most
// one session, driven through a fixed lifecycle by participant events and
// two wall-clock timers. All durable state lives elsewhere; a session is
// in-memory only and is torn down once finished.
package arena

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rickgao0917/quantrooms/internal/models"
	"github.com/rickgao0917/quantrooms/internal/rating"
)

type Status string

const (
	StatusAwaitingReady Status = "awaiting_ready"
	StatusVoting        Status = "voting"
	StatusInProgress    Status = "in_progress"
	StatusFinished      Status = "finished"
)

type Config struct {
	OptionCount   int
	VotingWindow  time.Duration
	MatchDuration time.Duration
}

func DefaultConfig() Config {
	return Config{
		OptionCount:   5,
		VotingWindow:  30 * time.Second,
		MatchDuration: 15 * time.Minute,
	}
}

// Broadcaster fans an event out to every connection in a room.
type Broadcaster interface {
	BroadcastToRoom(roomID uint, eventType string, data any)
}

// ProblemSource supplies candidate problems for the voting phase.
type ProblemSource interface {
	CandidateProblems(count int, difficulty string) ([]models.Problem, error)
}

// ResultStore persists the terminal record of a finished session.
type ResultStore interface {
	WriteFinishedMatch(rec *MatchRecord) error
}

type MatchRecord struct {
	SessionID    string
	RoomID       uint
	ProblemID    uint
	StartedAt    time.Time
	EndedAt      time.Time
	Participants []MatchParticipantRecord
}

type MatchParticipantRecord struct {
	UserID        uint
	Username      string
	RatingBefore  int
	RatingDelta   int
	Rank          int
	Points        int
	Solved        bool
	SolveDuration time.Duration
}

type Participant struct {
	UserID        uint
	Username      string
	RatingAtStart int
	Ready         bool
	Verified      bool
	Solved        bool
	SolveDuration time.Duration
	Rank          int
	Points        int
	RatingDelta   int
}

// Session is the per-room state machine. Every mutating entry point takes
// the session mutex, so events and timer callbacks apply one at a time in
// arrival order. Sessions in different rooms share nothing.
type Session struct {
	mu sync.Mutex

	id         string
	roomID     uint
	difficulty string
	status     Status

	participants []*Participant
	options      []models.Problem
	votes        map[uint]uint
	problem      *models.Problem

	votingDeadline time.Time
	startedAt      time.Time
	endsAt         time.Time
	nextRank       int

	cfg      Config
	problems ProblemSource
	store    ResultStore
	hub      Broadcaster
	rng      *rand.Rand
	log      zerolog.Logger

	// onFinished removes the session from its registry once the terminal
	// persistence attempt completes.
	onFinished func(roomID uint)
}

func newSession(id string, roomID uint, difficulty string, roster []RosterEntry, cfg Config,
	problems ProblemSource, store ResultStore, hub Broadcaster, log zerolog.Logger) *Session {

	participants := make([]*Participant, len(roster))
	for i, e := range roster {
		participants[i] = &Participant{
			UserID:        e.UserID,
			Username:      e.Username,
			RatingAtStart: e.Rating,
		}
	}
	return &Session{
		id:           id,
		roomID:       roomID,
		difficulty:   difficulty,
		status:       StatusAwaitingReady,
		participants: participants,
		votes:        make(map[uint]uint),
		cfg:          cfg,
		problems:     problems,
		store:        store,
		hub:          hub,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		log:          log.With().Str("session_id", id).Uint("room_id", roomID).Logger(),
	}
}

func (s *Session) ID() string   { return s.id }
func (s *Session) RoomID() uint { return s.roomID }

// SetReady records a participant's ready signal together with the external
// verification flag. Once every participant is ready and verified the
// session moves to the voting phase. Repeats are idempotent.
func (s *Session) SetReady(userID uint, verified bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.participantLocked(userID)
	if p == nil {
		return ErrNotParticipant
	}
	if s.status != StatusAwaitingReady {
		if p.Ready {
			return nil
		}
		return ErrWrongState
	}
	if p.Ready && p.Verified == verified {
		return nil
	}
	p.Ready = true
	p.Verified = verified

	ready := 0
	for _, q := range s.participants {
		if q.Ready && q.Verified {
			ready++
		}
	}
	s.hub.BroadcastToRoom(s.roomID, EventReadyUpdate, ReadyUpdateEvent{
		UserID:   p.UserID,
		Username: p.Username,
		Ready:    p.Ready,
		Verified: p.Verified,
		ReadyNum: ready,
		Total:    len(s.participants),
	})

	if ready == len(s.participants) && len(s.participants) >= 2 {
		s.beginVotingLocked()
	}
	return nil
}

// CastVote records one vote for an offered problem. A second vote from the
// same participant is a no-op; a vote for a problem outside the offered set
// is rejected without touching state. When the last participant votes the
// selection happens immediately instead of waiting for the deadline.
func (s *Session) CastVote(userID, problemID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.participantLocked(userID) == nil {
		return ErrNotParticipant
	}
	if s.status != StatusVoting {
		return ErrWrongState
	}
	if _, voted := s.votes[userID]; voted {
		return nil
	}
	if !s.offeredLocked(problemID) {
		return ErrUnknownProblem
	}
	s.votes[userID] = problemID

	tally := make(map[uint]int, len(s.options))
	for _, pid := range s.votes {
		tally[pid]++
	}
	s.hub.BroadcastToRoom(s.roomID, EventVoteTally, VoteTallyEvent{
		Tally: tally,
		Voted: len(s.votes),
		Total: len(s.participants),
	})

	if len(s.votes) == len(s.participants) {
		s.selectProblemLocked()
	}
	return nil
}

// SubmitSolve records a solve attempt. The first successful attempt per
// participant takes the next rank in arrival order; everything after that
// is a no-op. Failed attempts change nothing.
func (s *Session) SubmitSolve(userID uint, solved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.participantLocked(userID)
	if p == nil {
		return ErrNotParticipant
	}
	if s.status != StatusInProgress {
		if p.Solved {
			return nil
		}
		return ErrWrongState
	}
	if p.Solved || !solved {
		return nil
	}

	p.Solved = true
	p.SolveDuration = time.Since(s.startedAt)
	p.Rank = s.nextRank
	s.nextRank++
	p.Points = PointsForRank(p.Rank)

	s.hub.BroadcastToRoom(s.roomID, EventParticipantSolved, ParticipantSolvedEvent{
		UserID:     p.UserID,
		Username:   p.Username,
		Rank:       p.Rank,
		Points:     p.Points,
		DurationMs: p.SolveDuration.Milliseconds(),
	})

	for _, q := range s.participants {
		if !q.Solved {
			return nil
		}
	}
	s.finishLocked(time.Now())
	return nil
}

func (s *Session) beginVotingLocked() {
	opts, err := s.problems.CandidateProblems(s.cfg.OptionCount, s.difficulty)
	if err != nil || len(opts) == 0 {
		s.log.Error().Err(err).Msg("no candidate problems, aborting session")
		s.status = StatusFinished
		s.hub.BroadcastToRoom(s.roomID, EventSessionAborted, nil)
		if s.onFinished != nil {
			go s.onFinished(s.roomID)
		}
		return
	}

	s.status = StatusVoting
	s.options = opts
	s.votes = make(map[uint]uint, len(s.participants))
	s.votingDeadline = time.Now().Add(s.cfg.VotingWindow)

	s.hub.BroadcastToRoom(s.roomID, EventVotingStarted, VotingStartedEvent{
		Options:  opts,
		Deadline: s.votingDeadline,
	})

	time.AfterFunc(s.cfg.VotingWindow, s.votingDeadlineFired)
}

// votingDeadlineFired is the 30s timer callback. The status re-check makes
// a late firing (everyone already voted) a no-op.
func (s *Session) votingDeadlineFired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusVoting {
		return
	}
	s.selectProblemLocked()
}

// selectProblemLocked tallies votes and picks uniformly at random among the
// problems sharing the highest count. With zero votes every option ties at
// zero, so the draw covers the whole offered set.
func (s *Session) selectProblemLocked() {
	counts := make(map[uint]int, len(s.options))
	for _, pid := range s.votes {
		counts[pid]++
	}

	max := 0
	for _, opt := range s.options {
		if counts[opt.ID] > max {
			max = counts[opt.ID]
		}
	}
	var leaders []models.Problem
	for _, opt := range s.options {
		if counts[opt.ID] == max {
			leaders = append(leaders, opt)
		}
	}

	chosen := leaders[s.rng.Intn(len(leaders))]
	s.problem = &chosen
	s.beginMatchLocked()
}

func (s *Session) beginMatchLocked() {
	s.status = StatusInProgress
	s.startedAt = time.Now()
	s.endsAt = s.startedAt.Add(s.cfg.MatchDuration)
	s.nextRank = 1
	for _, p := range s.participants {
		p.Solved = false
		p.SolveDuration = 0
		p.Rank = 0
		p.Points = 0
	}

	s.log.Info().Str("problem", s.problem.Slug).Time("ends_at", s.endsAt).Msg("match started")
	s.hub.BroadcastToRoom(s.roomID, EventProblemSelected, ProblemSelectedEvent{
		Problem:   *s.problem,
		StartedAt: s.startedAt,
		EndsAt:    s.endsAt,
	})

	time.AfterFunc(s.cfg.MatchDuration, s.matchDeadlineFired)
}

// matchDeadlineFired is the 15min timer callback. Unsolved participants get
// the remaining ranks in original join order and zero points.
func (s *Session) matchDeadlineFired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusInProgress {
		return
	}
	for _, p := range s.participants {
		if !p.Solved {
			p.Rank = s.nextRank
			s.nextRank++
			p.Points = 0
		}
	}
	s.finishLocked(time.Now())
}

// finishLocked computes rating deltas, broadcasts the final standings and
// hands the terminal record to the store. The status guard makes a second
// trigger a no-op; the write is attempted exactly once and its failure only
// gets logged.
func (s *Session) finishLocked(endedAt time.Time) {
	if s.status == StatusFinished {
		return
	}
	s.status = StatusFinished

	standings := make([]rating.Standing, len(s.participants))
	for i, p := range s.participants {
		standings[i] = rating.Standing{UserID: p.UserID, Rating: p.RatingAtStart, Rank: p.Rank}
	}
	deltas := rating.Deltas(standings)
	for _, p := range s.participants {
		p.RatingDelta = deltas[p.UserID]
	}

	s.hub.BroadcastToRoom(s.roomID, EventSessionFinished, SessionFinishedEvent{
		SessionID: s.id,
		Results:   s.viewsLocked(),
	})

	rec := &MatchRecord{
		SessionID: s.id,
		RoomID:    s.roomID,
		ProblemID: s.problem.ID,
		StartedAt: s.startedAt,
		EndedAt:   endedAt,
	}
	for _, p := range s.participants {
		rec.Participants = append(rec.Participants, MatchParticipantRecord{
			UserID:        p.UserID,
			Username:      p.Username,
			RatingBefore:  p.RatingAtStart,
			RatingDelta:   p.RatingDelta,
			Rank:          p.Rank,
			Points:        p.Points,
			Solved:        p.Solved,
			SolveDuration: p.SolveDuration,
		})
	}

	store, log, onFinished, roomID := s.store, s.log, s.onFinished, s.roomID
	go func() {
		if err := store.WriteFinishedMatch(rec); err != nil {
			log.Error().Err(err).Msg("failed to persist finished match")
		}
		if onFinished != nil {
			onFinished(roomID)
		}
	}()
}

// abort tears down a session that never got going. Only valid before the
// ready check completes.
func (s *Session) abort() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusAwaitingReady {
		return ErrWrongState
	}
	s.status = StatusFinished
	s.hub.BroadcastToRoom(s.roomID, EventSessionAborted, nil)
	return nil
}

func (s *Session) participantLocked(userID uint) *Participant {
	for _, p := range s.participants {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

func (s *Session) offeredLocked(problemID uint) bool {
	for _, opt := range s.options {
		if opt.ID == problemID {
			return true
		}
	}
	return false
}

func (s *Session) viewsLocked() []ParticipantView {
	views := make([]ParticipantView, len(s.participants))
	for i, p := range s.participants {
		views[i] = ParticipantView{
			UserID:        p.UserID,
			Username:      p.Username,
			Rating:        p.RatingAtStart,
			Ready:         p.Ready,
			Verified:      p.Verified,
			Solved:        p.Solved,
			Rank:          p.Rank,
			Points:        p.Points,
			RatingDelta:   p.RatingDelta,
			SolveDuration: p.SolveDuration.Milliseconds(),
		}
	}
	return views
}

// SessionView is a point-in-time copy for state queries over HTTP.
type SessionView struct {
	ID             string            `json:"id"`
	RoomID         uint              `json:"room_id"`
	Status         Status            `json:"status"`
	Participants   []ParticipantView `json:"participants"`
	Options        []models.Problem  `json:"options,omitempty"`
	Problem        *models.Problem   `json:"problem,omitempty"`
	VotingDeadline time.Time         `json:"voting_deadline,omitempty"`
	StartedAt      time.Time         `json:"started_at,omitempty"`
	EndsAt         time.Time         `json:"ends_at,omitempty"`
}

func (s *Session) Snapshot() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := SessionView{
		ID:             s.id,
		RoomID:         s.roomID,
		Status:         s.status,
		Participants:   s.viewsLocked(),
		Options:        s.options,
		VotingDeadline: s.votingDeadline,
		StartedAt:      s.startedAt,
		EndsAt:         s.endsAt,
	}
	if s.problem != nil {
		problem := *s.problem
		view.Problem = &problem
	}
	return view
}
