package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao0917/quantrooms/internal/arena"
	"github.com/rickgao0917/quantrooms/internal/models"
)

func testRecord(winner, loser *models.User) *arena.MatchRecord {
	now := time.Now()
	return &arena.MatchRecord{
		SessionID: "9f0c6a2e-0000-0000-0000-000000000001",
		RoomID:    1,
		ProblemID: 1,
		StartedAt: now.Add(-10 * time.Minute),
		EndedAt:   now,
		Participants: []arena.MatchParticipantRecord{
			{
				UserID:        winner.ID,
				Username:      winner.Username,
				RatingBefore:  winner.Rating,
				RatingDelta:   16,
				Rank:          1,
				Points:        1000,
				Solved:        true,
				SolveDuration: 4 * time.Minute,
			},
			{
				UserID:       loser.ID,
				Username:     loser.Username,
				RatingBefore: loser.Rating,
				RatingDelta:  -16,
				Rank:         2,
				Points:       0,
				Solved:       false,
			},
		},
	}
}

func TestWriteFinishedMatch(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMatchService(db)

	problem := models.Problem{Title: "Two Sum", Slug: "two-sum", URL: "https://example.com", Difficulty: models.DifficultyEasy}
	require.NoError(t, db.Create(&problem).Error)

	alice := createTestUser(t, db, "alice", 1200)
	bob := createTestUser(t, db, "bob", 1200)

	require.NoError(t, svc.WriteFinishedMatch(testRecord(alice, bob)))

	var match models.Match
	require.NoError(t, db.Preload("Participants").First(&match).Error)
	assert.Equal(t, uint(1), match.RoomID)
	require.Len(t, match.Participants, 2)
	assert.Equal(t, 1, match.Participants[0].Rank)
	assert.Equal(t, int64(240000), match.Participants[0].SolveDurationMs)

	// Stats increments applied in the same transaction.
	var updatedAlice, updatedBob models.User
	require.NoError(t, db.First(&updatedAlice, alice.ID).Error)
	require.NoError(t, db.First(&updatedBob, bob.ID).Error)
	assert.Equal(t, 1216, updatedAlice.Rating)
	assert.Equal(t, 1, updatedAlice.GamesPlayed)
	assert.Equal(t, 1, updatedAlice.Wins)
	assert.Equal(t, 1184, updatedBob.Rating)
	assert.Equal(t, 1, updatedBob.GamesPlayed)
	assert.Equal(t, 0, updatedBob.Wins)
}

func TestWriteFinishedMatchRejectsDuplicateSession(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMatchService(db)

	alice := createTestUser(t, db, "alice", 1200)
	bob := createTestUser(t, db, "bob", 1200)

	rec := testRecord(alice, bob)
	require.NoError(t, svc.WriteFinishedMatch(rec))

	// The unique session id makes an accidental replay fail instead of
	// double-counting stats.
	require.Error(t, svc.WriteFinishedMatch(rec))

	var updatedAlice models.User
	require.NoError(t, db.First(&updatedAlice, alice.ID).Error)
	assert.Equal(t, 1, updatedAlice.GamesPlayed)
}

func TestLeaderboardOrdering(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMatchService(db)

	createTestUser(t, db, "mid", 1300)
	createTestUser(t, db, "top", 1700)
	createTestUser(t, db, "low", 1100)

	users, err := svc.Leaderboard(2)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "top", users[0].Username)
	assert.Equal(t, "mid", users[1].Username)
}

func TestHistoryForUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMatchService(db)

	alice := createTestUser(t, db, "alice", 1200)
	bob := createTestUser(t, db, "bob", 1200)
	carol := createTestUser(t, db, "carol", 1200)

	rec1 := testRecord(alice, bob)
	require.NoError(t, svc.WriteFinishedMatch(rec1))

	rec2 := testRecord(bob, carol)
	rec2.SessionID = "9f0c6a2e-0000-0000-0000-000000000002"
	require.NoError(t, svc.WriteFinishedMatch(rec2))

	aliceMatches, err := svc.HistoryForUser(alice.ID, 10)
	require.NoError(t, err)
	assert.Len(t, aliceMatches, 1)

	bobMatches, err := svc.HistoryForUser(bob.ID, 10)
	require.NoError(t, err)
	assert.Len(t, bobMatches, 2)

	none, err := svc.HistoryForUser(999, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
