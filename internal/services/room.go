package services

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"gorm.io/gorm"

	"github.com/rickgao0917/quantrooms/internal/arena"
	"github.com/rickgao0917/quantrooms/internal/models"
)

type RoomService struct {
	db *gorm.DB
}

func NewRoomService(db *gorm.DB) *RoomService {
	return &RoomService{db: db}
}

func validDifficulty(d string) bool {
	switch d {
	case models.DifficultyAny, models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
		return true
	}
	return false
}

func (s *RoomService) CreateRoom(ownerID uint, name, difficulty string) (*models.Room, error) {
	if !validDifficulty(difficulty) {
		difficulty = models.DifficultyAny
	}
	if name == "" {
		name = "Unnamed room"
	}
	room := models.Room{
		OwnerID:    ownerID,
		Code:       s.generateUniqueCode(),
		Name:       name,
		Difficulty: difficulty,
		Status:     models.RoomStatusOpen,
	}
	if err := s.db.Create(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *RoomService) GetRoom(roomID uint) (*models.Room, error) {
	var room models.Room
	if err := s.db.Preload("Members").First(&room, roomID).Error; err != nil {
		return nil, errors.New("room not found")
	}
	return &room, nil
}

func (s *RoomService) GetRoomByCode(code string) (*models.Room, error) {
	var room models.Room
	if err := s.db.Where("code = ? AND status = ?", code, models.RoomStatusOpen).
		Preload("Members").First(&room).Error; err != nil {
		return nil, errors.New("room not found or closed")
	}
	return &room, nil
}

func (s *RoomService) ListOpenRooms() ([]models.Room, error) {
	var rooms []models.Room
	if err := s.db.Where("status = ?", models.RoomStatusOpen).
		Preload("Members").
		Order("created_at DESC").
		Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

func (s *RoomService) JoinRoom(code string, user *models.User) (*models.Room, error) {
	room, err := s.GetRoomByCode(code)
	if err != nil {
		return nil, err
	}

	var existing models.RoomMember
	if err := s.db.Where("room_id = ? AND user_id = ?", room.ID, user.ID).
		First(&existing).Error; err == nil {
		return room, nil
	}

	member := models.RoomMember{
		RoomID:   room.ID,
		UserID:   user.ID,
		Username: user.Username,
		JoinedAt: time.Now(),
	}
	if err := s.db.Create(&member).Error; err != nil {
		return nil, fmt.Errorf("failed to join room: %w", err)
	}
	room.Members = append(room.Members, member)
	return room, nil
}

func (s *RoomService) LeaveRoom(roomID, userID uint) error {
	return s.db.Where("room_id = ? AND user_id = ?", roomID, userID).
		Delete(&models.RoomMember{}).Error
}

func (s *RoomService) CloseRoom(roomID, ownerID uint) error {
	var room models.Room
	if err := s.db.Where("id = ? AND owner_id = ?", roomID, ownerID).First(&room).Error; err != nil {
		return errors.New("room not found")
	}
	room.Status = models.RoomStatusClosed
	s.db.Save(&room)
	return nil
}

// ActiveRoomForUser finds the newest open room the user belongs to. Clients
// poll it after enqueueing for matchmaking to discover the formed room.
func (s *RoomService) ActiveRoomForUser(userID uint) (*models.Room, error) {
	var member models.RoomMember
	if err := s.db.Joins("JOIN rooms ON rooms.id = room_members.room_id").
		Where("room_members.user_id = ? AND rooms.status = ?", userID, models.RoomStatusOpen).
		Order("room_members.joined_at DESC").
		First(&member).Error; err != nil {
		return nil, nil
	}
	return s.GetRoom(member.RoomID)
}

// Roster resolves the room's members to session participants with current
// ratings.
func (s *RoomService) Roster(roomID uint) ([]arena.RosterEntry, error) {
	var members []models.RoomMember
	if err := s.db.Where("room_id = ?", roomID).Order("joined_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}

	roster := make([]arena.RosterEntry, 0, len(members))
	for _, m := range members {
		var user models.User
		if err := s.db.First(&user, m.UserID).Error; err != nil {
			continue
		}
		roster = append(roster, arena.RosterEntry{
			UserID:   user.ID,
			Username: user.Username,
			Rating:   user.Rating,
		})
	}
	return roster, nil
}

// CreateMatchRoom makes a room for a matchmade group and adds every matched
// user as a member. The room owner is the longest-waiting user.
func (s *RoomService) CreateMatchRoom(entries []arena.RosterEntry, difficulty string) (*models.Room, error) {
	if len(entries) == 0 {
		return nil, errors.New("empty match group")
	}
	room, err := s.CreateRoom(entries[0].UserID, fmt.Sprintf("Match %s", time.Now().Format("15:04:05")), difficulty)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		member := models.RoomMember{
			RoomID:   room.ID,
			UserID:   e.UserID,
			Username: e.Username,
			JoinedAt: time.Now(),
		}
		if err := s.db.Create(&member).Error; err != nil {
			return nil, fmt.Errorf("failed to add matched user: %w", err)
		}
		room.Members = append(room.Members, member)
	}
	return room, nil
}

func (s *RoomService) IsMember(roomID, userID uint) bool {
	var count int64
	s.db.Model(&models.RoomMember{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count)
	return count > 0
}

func (s *RoomService) generateUniqueCode() string {
	for {
		code := fmt.Sprintf("%06d", rand.Intn(1000000))
		var count int64
		s.db.Model(&models.Room{}).
			Where("code = ? AND status = ?", code, models.RoomStatusOpen).
			Count(&count)
		if count == 0 {
			return code
		}
	}
}
