package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/rickgao0917/quantrooms/internal/arena"
	"github.com/rickgao0917/quantrooms/internal/models"
)

// MatchService is the arena's result store plus the read side for match
// history and the rating leaderboard.
type MatchService struct {
	db *gorm.DB
}

func NewMatchService(db *gorm.DB) *MatchService {
	return &MatchService{db: db}
}

// WriteFinishedMatch persists the terminal record of a session and applies
// the per-user statistics increments in one transaction. The arena calls it
// exactly once per session and only logs a failure.
func (s *MatchService) WriteFinishedMatch(rec *arena.MatchRecord) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		match := models.Match{
			SessionID: rec.SessionID,
			RoomID:    rec.RoomID,
			ProblemID: rec.ProblemID,
			StartedAt: rec.StartedAt,
			EndedAt:   rec.EndedAt,
		}
		if err := tx.Create(&match).Error; err != nil {
			return fmt.Errorf("create match: %w", err)
		}

		for _, p := range rec.Participants {
			mp := models.MatchParticipant{
				MatchID:         match.ID,
				UserID:          p.UserID,
				Username:        p.Username,
				RatingBefore:    p.RatingBefore,
				RatingDelta:     p.RatingDelta,
				Rank:            p.Rank,
				Points:          p.Points,
				Solved:          p.Solved,
				SolveDurationMs: p.SolveDuration.Milliseconds(),
			}
			if err := tx.Create(&mp).Error; err != nil {
				return fmt.Errorf("create match participant: %w", err)
			}

			updates := map[string]any{
				"rating":       gorm.Expr("rating + ?", p.RatingDelta),
				"games_played": gorm.Expr("games_played + 1"),
			}
			if p.Rank == 1 {
				updates["wins"] = gorm.Expr("wins + 1")
			}
			if err := tx.Model(&models.User{}).Where("id = ?", p.UserID).
				Updates(updates).Error; err != nil {
				return fmt.Errorf("update user stats: %w", err)
			}
		}
		return nil
	})
}

func (s *MatchService) HistoryForUser(userID uint, limit int) ([]models.Match, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var ids []uint
	if err := s.db.Model(&models.MatchParticipant{}).
		Where("user_id = ?", userID).
		Order("match_id DESC").
		Limit(limit).
		Pluck("match_id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Match{}, nil
	}

	var matches []models.Match
	if err := s.db.Where("id IN ?", ids).
		Preload("Problem").
		Preload("Participants").
		Order("created_at DESC").
		Find(&matches).Error; err != nil {
		return nil, err
	}
	return matches, nil
}

func (s *MatchService) Leaderboard(limit int) ([]models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var users []models.User
	if err := s.db.Order("rating DESC").Limit(limit).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
