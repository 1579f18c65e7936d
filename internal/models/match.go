package models

import "time"

// Match is the durable record of one finished session.
type Match struct {
	ID           uint               `gorm:"primaryKey" json:"id"`
	SessionID    string             `gorm:"size:36;uniqueIndex;not null" json:"session_id"`
	RoomID       uint               `gorm:"not null;index" json:"room_id"`
	ProblemID    uint               `gorm:"not null" json:"problem_id"`
	Problem      Problem            `gorm:"foreignKey:ProblemID" json:"problem,omitempty"`
	StartedAt    time.Time          `json:"started_at"`
	EndedAt      time.Time          `json:"ended_at"`
	Participants []MatchParticipant `gorm:"foreignKey:MatchID" json:"participants,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

type MatchParticipant struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	MatchID         uint   `gorm:"not null;index" json:"match_id"`
	UserID          uint   `gorm:"not null;index" json:"user_id"`
	Username        string `gorm:"size:100;not null" json:"username"`
	RatingBefore    int    `gorm:"not null" json:"rating_before"`
	RatingDelta     int    `gorm:"not null" json:"rating_delta"`
	Rank            int    `gorm:"not null" json:"rank"`
	Points          int    `gorm:"not null;default:0" json:"points"`
	Solved          bool   `gorm:"not null;default:false" json:"solved"`
	SolveDurationMs int64  `gorm:"not null;default:0" json:"solve_duration_ms"`
}
