package models

import "time"

const DefaultRating = 1200

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:100;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Rating       int       `gorm:"not null;default:1200" json:"rating"`
	GamesPlayed  int       `gorm:"not null;default:0" json:"games_played"`
	Wins         int       `gorm:"not null;default:0" json:"wins"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
