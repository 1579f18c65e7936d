package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao0917/quantrooms/internal/arena"
	"github.com/rickgao0917/quantrooms/internal/models"
)

func TestCreateAndJoinRoom(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoomService(db)

	owner := createTestUser(t, db, "owner", 1200)
	guest := createTestUser(t, db, "guest", 1300)

	room, err := svc.CreateRoom(owner.ID, "Friday duel", models.DifficultyMedium)
	require.NoError(t, err)
	assert.Len(t, room.Code, 6)
	assert.Equal(t, models.RoomStatusOpen, room.Status)

	_, err = svc.JoinRoom(room.Code, owner)
	require.NoError(t, err)
	room, err = svc.JoinRoom(room.Code, guest)
	require.NoError(t, err)
	assert.Len(t, room.Members, 2)

	// Joining twice is a no-op.
	room, err = svc.JoinRoom(room.Code, guest)
	require.NoError(t, err)
	fetched, err := svc.GetRoom(room.ID)
	require.NoError(t, err)
	assert.Len(t, fetched.Members, 2)

	assert.True(t, svc.IsMember(room.ID, guest.ID))
	assert.False(t, svc.IsMember(room.ID, 999))
}

func TestRosterCarriesCurrentRatings(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoomService(db)

	owner := createTestUser(t, db, "owner", 1200)
	guest := createTestUser(t, db, "guest", 1450)

	room, err := svc.CreateRoom(owner.ID, "", models.DifficultyAny)
	require.NoError(t, err)
	_, err = svc.JoinRoom(room.Code, owner)
	require.NoError(t, err)
	_, err = svc.JoinRoom(room.Code, guest)
	require.NoError(t, err)

	// Rating changed after joining; the roster reads the fresh value.
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", guest.ID).Update("rating", 1500).Error)

	roster, err := svc.Roster(room.ID)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, 1200, roster[0].Rating)
	assert.Equal(t, 1500, roster[1].Rating)
}

func TestCloseRoomOwnerOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoomService(db)

	owner := createTestUser(t, db, "owner", 1200)
	room, err := svc.CreateRoom(owner.ID, "", models.DifficultyAny)
	require.NoError(t, err)

	assert.Error(t, svc.CloseRoom(room.ID, 999))
	require.NoError(t, svc.CloseRoom(room.ID, owner.ID))

	_, err = svc.GetRoomByCode(room.Code)
	assert.Error(t, err, "closed rooms are not joinable")
}

func TestCreateMatchRoom(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoomService(db)

	a := createTestUser(t, db, "a", 1200)
	b := createTestUser(t, db, "b", 1250)

	room, err := svc.CreateMatchRoom([]arena.RosterEntry{
		{UserID: a.ID, Username: a.Username, Rating: a.Rating},
		{UserID: b.ID, Username: b.Username, Rating: b.Rating},
	}, models.DifficultyAny)
	require.NoError(t, err)

	assert.Equal(t, a.ID, room.OwnerID)
	assert.Len(t, room.Members, 2)
	assert.True(t, svc.IsMember(room.ID, a.ID))
	assert.True(t, svc.IsMember(room.ID, b.ID))

	found, err := svc.ActiveRoomForUser(b.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, room.ID, found.ID)
}
