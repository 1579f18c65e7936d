package arena

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RosterEntry is one room member at session creation time.
type RosterEntry struct {
	UserID   uint
	Username string
	Rating   int
}

// Registry holds the live sessions, one per room. The registry lock only
// guards the map; each session serializes its own events, so activity in
// one room never blocks another.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uint]*Session

	cfg      Config
	problems ProblemSource
	store    ResultStore
	hub      Broadcaster
	log      zerolog.Logger
}

func NewRegistry(cfg Config, problems ProblemSource, store ResultStore, hub Broadcaster, log zerolog.Logger) *Registry {
	return &Registry{
		sessions: make(map[uint]*Session),
		cfg:      cfg,
		problems: problems,
		store:    store,
		hub:      hub,
		log:      log,
	}
}

// StartSession creates a session for the room in the awaiting-ready state.
// A room can hold only one live session at a time.
func (r *Registry) StartSession(roomID uint, difficulty string, roster []RosterEntry) (*Session, error) {
	if len(roster) < 2 {
		return nil, ErrTooFewParticipants
	}

	r.mu.Lock()
	if _, exists := r.sessions[roomID]; exists {
		r.mu.Unlock()
		return nil, ErrSessionExists
	}
	s := newSession(uuid.NewString(), roomID, difficulty, roster, r.cfg, r.problems, r.store, r.hub, r.log)
	s.onFinished = r.remove
	r.sessions[roomID] = s
	r.mu.Unlock()

	r.log.Info().Str("session_id", s.id).Uint("room_id", roomID).Int("participants", len(roster)).
		Msg("session created")

	r.hub.BroadcastToRoom(roomID, EventSessionStarted, SessionStartedEvent{
		SessionID:    s.id,
		RoomID:       roomID,
		Participants: s.Snapshot().Participants,
	})
	return s, nil
}

func (r *Registry) Session(roomID uint) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[roomID]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Abort tears down an awaiting-ready session, e.g. when its room closes.
func (r *Registry) Abort(roomID uint) error {
	s, err := r.Session(roomID)
	if err != nil {
		return err
	}
	if err := s.abort(); err != nil {
		return err
	}
	r.remove(roomID)
	return nil
}

func (r *Registry) remove(roomID uint) {
	r.mu.Lock()
	delete(r.sessions, roomID)
	r.mu.Unlock()
}

// Event dispatch, addressed by (room, user). Each forwards to the room's
// session or reports that none is live.

func (r *Registry) SetReady(roomID, userID uint, verified bool) error {
	s, err := r.Session(roomID)
	if err != nil {
		return err
	}
	return s.SetReady(userID, verified)
}

func (r *Registry) CastVote(roomID, userID, problemID uint) error {
	s, err := r.Session(roomID)
	if err != nil {
		return err
	}
	return s.CastVote(userID, problemID)
}

func (r *Registry) SubmitSolve(roomID, userID uint, solved bool) error {
	s, err := r.Session(roomID)
	if err != nil {
		return err
	}
	return s.SubmitSolve(userID, solved)
}
