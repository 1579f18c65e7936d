package models

import "time"

type Room struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	OwnerID    uint         `gorm:"not null;index" json:"owner_id"`
	Code       string       `gorm:"size:6;index" json:"code"`
	Name       string       `gorm:"size:100;not null" json:"name"`
	Difficulty string       `gorm:"size:10;not null;default:'any'" json:"difficulty"`
	Status     string       `gorm:"size:20;not null;default:'open'" json:"status"`
	Members    []RoomMember `gorm:"foreignKey:RoomID" json:"members,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

const (
	RoomStatusOpen   = "open"
	RoomStatusClosed = "closed"

	DifficultyAny    = "any"
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

type RoomMember struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	RoomID   uint      `gorm:"not null;uniqueIndex:idx_room_user" json:"room_id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_room_user" json:"user_id"`
	Username string    `gorm:"size:100;not null" json:"username"`
	JoinedAt time.Time `json:"joined_at"`
}
