package matchmaking

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type groupCollector struct {
	mu     sync.Mutex
	groups [][]Request
}

func (g *groupCollector) start(group []Request) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.groups = append(g.groups, group)
}

func (g *groupCollector) all() [][]Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.groups
}

func newTestQueue(maxGroup int) (*Queue, *groupCollector) {
	c := &groupCollector{}
	return NewQueue(maxGroup, c.start, zerolog.Nop()), c
}

func TestBracketFor(t *testing.T) {
	cases := map[int]int{
		0:    0,
		199:  0,
		200:  200,
		1250: 1200,
		1399: 1200,
		1400: 1400,
		-50:  -200,
	}
	for ratingValue, want := range cases {
		assert.Equal(t, want, BracketFor(ratingValue), "rating %d", ratingValue)
	}
}

func TestSingleUserNeverMatches(t *testing.T) {
	q, c := newTestQueue(MaxGroupSize)

	assert.False(t, q.Enqueue(1, "alone", 1200))
	assert.Empty(t, c.all())
	assert.True(t, q.Waiting(1))
	assert.Equal(t, 1, q.Len())
}

func TestTwoSameBracketMatchImmediately(t *testing.T) {
	q, c := newTestQueue(MaxGroupSize)

	require.False(t, q.Enqueue(1, "a", 1210))
	require.True(t, q.Enqueue(2, "b", 1390))

	groups := c.all()
	require.Len(t, groups, 1)
	assert.Len(t, groups[0], 2)

	// Matched users leave the queue.
	assert.Equal(t, 0, q.Len())
	assert.False(t, q.Waiting(1))
	assert.False(t, q.Waiting(2))
}

func TestAdjacentBracketsMatch(t *testing.T) {
	q, c := newTestQueue(MaxGroupSize)

	require.False(t, q.Enqueue(1, "a", 1250)) // bracket 1200
	require.True(t, q.Enqueue(2, "b", 1450))  // bracket 1400, adjacent

	require.Len(t, c.all(), 1)
}

func TestDistantBracketsDoNotMatch(t *testing.T) {
	q, c := newTestQueue(MaxGroupSize)

	require.False(t, q.Enqueue(1, "a", 1250)) // bracket 1200
	require.False(t, q.Enqueue(2, "b", 1650)) // bracket 1600, two away

	assert.Empty(t, c.all())
	assert.Equal(t, 2, q.Len())
}

func TestFIFOWithinPool(t *testing.T) {
	q, c := newTestQueue(2)

	require.False(t, q.Enqueue(1, "first", 1250))  // bracket 1200
	require.False(t, q.Enqueue(2, "second", 1650)) // bracket 1600, two away

	// Bracket 1400 bridges both waiters; with a cap of 2 the two oldest
	// form the group and the newcomer stays queued.
	require.True(t, q.Enqueue(3, "third", 1450))

	groups := c.all()
	require.Len(t, groups, 1)
	require.Len(t, groups[0], 2)
	assert.Equal(t, uint(1), groups[0][0].UserID)
	assert.Equal(t, uint(2), groups[0][1].UserID)

	assert.Equal(t, 1, q.Len())
	assert.True(t, q.Waiting(3))
}

func TestBridgingFormsLargerGroup(t *testing.T) {
	q, c := newTestQueue(MaxGroupSize)

	require.False(t, q.Enqueue(1, "a", 1050)) // bracket 1000
	require.False(t, q.Enqueue(2, "b", 1450)) // bracket 1400
	require.True(t, q.Enqueue(3, "c", 1250))  // bracket 1200 sees both neighbors

	groups := c.all()
	require.Len(t, groups, 1)
	assert.Len(t, groups[0], 3)
	assert.Equal(t, 0, q.Len())
}

func TestReEnqueueReplacesEntry(t *testing.T) {
	q, c := newTestQueue(MaxGroupSize)

	require.False(t, q.Enqueue(1, "a", 1200))
	require.False(t, q.Enqueue(1, "a", 1650)) // rating changed brackets

	assert.Equal(t, 1, q.Len())

	// The stale 1200 entry is gone, so a 1200 arrival finds nobody.
	require.False(t, q.Enqueue(2, "b", 1200))
	assert.Empty(t, c.all())
}

func TestDequeue(t *testing.T) {
	q, c := newTestQueue(MaxGroupSize)

	require.False(t, q.Enqueue(1, "a", 1200))
	assert.True(t, q.Dequeue(1))
	assert.False(t, q.Dequeue(1))

	// The dequeued user cannot be drafted into a later match.
	require.False(t, q.Enqueue(2, "b", 1200))
	assert.Empty(t, c.all())
}

func TestMatchedUserCannotBeMatchedTwice(t *testing.T) {
	q, c := newTestQueue(2)

	require.False(t, q.Enqueue(1, "a", 1200))
	require.True(t, q.Enqueue(2, "b", 1200))
	require.False(t, q.Enqueue(3, "c", 1200))
	require.True(t, q.Enqueue(4, "d", 1200))

	seen := make(map[uint]int)
	for _, g := range c.all() {
		for _, r := range g {
			seen[r.UserID]++
		}
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "user %d matched %d times", id, n)
	}
}

func TestConcurrentEnqueueNoDoubleMatch(t *testing.T) {
	q, c := newTestQueue(2)

	const users = 64
	var wg sync.WaitGroup
	for i := 1; i <= users; i++ {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			q.Enqueue(id, "u", 1200)
		}(uint(i))
	}
	wg.Wait()

	seen := make(map[uint]int)
	matched := 0
	for _, g := range c.all() {
		assert.Len(t, g, 2)
		for _, r := range g {
			seen[r.UserID]++
			matched++
		}
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "user %d in %d matches", id, n)
	}
	assert.Equal(t, users, matched+q.Len(), "every user is either matched once or still queued")
}
