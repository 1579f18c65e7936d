// Package matchmaking holds the rating-bracketed waiting queue that seeds
// new sessions.
package matchmaking

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	BracketWidth = 200
	MinGroupSize = 2
	MaxGroupSize = 8
)

// Request is one user waiting for a match.
type Request struct {
	UserID     uint
	Username   string
	Rating     int
	EnqueuedAt time.Time
}

// BracketFor buckets a rating into a fixed-width bracket (floor semantics).
func BracketFor(rating int) int {
	b := rating / BracketWidth
	if rating < 0 && rating%BracketWidth != 0 {
		b--
	}
	return b * BracketWidth
}

// StartFunc receives a formed group. It runs outside the queue lock.
type StartFunc func(group []Request)

// Queue is safe for concurrent use. Formation removes the selected entries
// under the same lock that guards enqueue, so a user can never end up in
// two matches.
type Queue struct {
	mu       sync.Mutex
	brackets map[int][]Request
	maxGroup int
	start    StartFunc
	log      zerolog.Logger
}

func NewQueue(maxGroup int, start StartFunc, log zerolog.Logger) *Queue {
	if maxGroup < MinGroupSize {
		maxGroup = MaxGroupSize
	}
	return &Queue{
		brackets: make(map[int][]Request),
		maxGroup: maxGroup,
		start:    start,
		log:      log,
	}
}

// Enqueue replaces any existing entry for the user, then attempts to form a
// group from the user's bracket and its two neighbors. Returns true when a
// match formed.
func (q *Queue) Enqueue(userID uint, username string, ratingValue int) bool {
	req := Request{
		UserID:     userID,
		Username:   username,
		Rating:     ratingValue,
		EnqueuedAt: time.Now(),
	}
	bracket := BracketFor(ratingValue)

	q.mu.Lock()
	q.removeLocked(userID)
	q.brackets[bracket] = append(q.brackets[bracket], req)
	group := q.takeGroupLocked(bracket)
	q.mu.Unlock()

	if group == nil {
		q.log.Debug().Uint("user_id", userID).Int("bracket", bracket).Msg("queued for match")
		return false
	}

	q.log.Info().Int("bracket", bracket).Int("size", len(group)).Msg("match formed")
	if q.start != nil {
		q.start(group)
	}
	return true
}

// Dequeue removes the user's entry if present.
func (q *Queue) Dequeue(userID uint) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.removeLocked(userID)
}

// Waiting reports whether the user is currently queued.
func (q *Queue) Waiting(userID uint) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, reqs := range q.brackets {
		for _, r := range reqs {
			if r.UserID == userID {
				return true
			}
		}
	}
	return false
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, reqs := range q.brackets {
		n += len(reqs)
	}
	return n
}

func (q *Queue) removeLocked(userID uint) bool {
	for bracket, reqs := range q.brackets {
		for i, r := range reqs {
			if r.UserID == userID {
				q.brackets[bracket] = append(reqs[:i], reqs[i+1:]...)
				if len(q.brackets[bracket]) == 0 {
					delete(q.brackets, bracket)
				}
				return true
			}
		}
	}
	return false
}

// takeGroupLocked gathers candidates from the bracket and its neighbors,
// orders them oldest first and removes up to maxGroup of them atomically.
// With fewer than two candidates everyone stays queued.
func (q *Queue) takeGroupLocked(bracket int) []Request {
	var pool []Request
	for _, b := range []int{bracket - BracketWidth, bracket, bracket + BracketWidth} {
		pool = append(pool, q.brackets[b]...)
	}
	if len(pool) < MinGroupSize {
		return nil
	}

	sort.Slice(pool, func(i, j int) bool {
		return pool[i].EnqueuedAt.Before(pool[j].EnqueuedAt)
	})
	if len(pool) > q.maxGroup {
		pool = pool[:q.maxGroup]
	}
	for _, r := range pool {
		q.removeLocked(r.UserID)
	}
	return pool
}
