package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/rickgao0917/quantrooms/internal/models"
)

// ProblemService is the arena's problem source, backed by the catalog table.
type ProblemService struct {
	db *gorm.DB
}

func NewProblemService(db *gorm.DB) *ProblemService {
	return &ProblemService{db: db}
}

// CandidateProblems draws a random set for a voting round. "any" disables
// the difficulty filter.
func (s *ProblemService) CandidateProblems(count int, difficulty string) ([]models.Problem, error) {
	q := s.db.Model(&models.Problem{})
	if difficulty != "" && difficulty != models.DifficultyAny {
		q = q.Where("difficulty = ?", difficulty)
	}

	var problems []models.Problem
	if err := q.Order("random()").Limit(count).Find(&problems).Error; err != nil {
		return nil, err
	}
	if len(problems) == 0 {
		return nil, errors.New("no problems available for this difficulty")
	}
	return problems, nil
}

func (s *ProblemService) List() ([]models.Problem, error) {
	var problems []models.Problem
	if err := s.db.Order("id ASC").Find(&problems).Error; err != nil {
		return nil, err
	}
	return problems, nil
}

// Import upserts problems by slug, returning how many were newly created.
func (s *ProblemService) Import(problems []models.Problem) (int, error) {
	created := 0
	for _, p := range problems {
		var existing models.Problem
		if err := s.db.Where("slug = ?", p.Slug).First(&existing).Error; err == nil {
			existing.Title = p.Title
			existing.URL = p.URL
			existing.Difficulty = p.Difficulty
			if err := s.db.Save(&existing).Error; err != nil {
				return created, err
			}
			continue
		}
		p.ID = 0
		if err := s.db.Create(&p).Error; err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// SeedDefaults loads a small starter catalog when the table is empty so a
// fresh install can run sessions immediately.
func (s *ProblemService) SeedDefaults() error {
	var count int64
	if err := s.db.Model(&models.Problem{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err := s.Import(defaultProblems)
	return err
}

var defaultProblems = []models.Problem{
	{Title: "Two Sum", Slug: "two-sum", URL: "https://leetcode.com/problems/two-sum/", Difficulty: models.DifficultyEasy},
	{Title: "Valid Parentheses", Slug: "valid-parentheses", URL: "https://leetcode.com/problems/valid-parentheses/", Difficulty: models.DifficultyEasy},
	{Title: "Merge Two Sorted Lists", Slug: "merge-two-sorted-lists", URL: "https://leetcode.com/problems/merge-two-sorted-lists/", Difficulty: models.DifficultyEasy},
	{Title: "Best Time to Buy and Sell Stock", Slug: "best-time-to-buy-and-sell-stock", URL: "https://leetcode.com/problems/best-time-to-buy-and-sell-stock/", Difficulty: models.DifficultyEasy},
	{Title: "Binary Search", Slug: "binary-search", URL: "https://leetcode.com/problems/binary-search/", Difficulty: models.DifficultyEasy},
	{Title: "Longest Substring Without Repeating Characters", Slug: "longest-substring-without-repeating-characters", URL: "https://leetcode.com/problems/longest-substring-without-repeating-characters/", Difficulty: models.DifficultyMedium},
	{Title: "3Sum", Slug: "3sum", URL: "https://leetcode.com/problems/3sum/", Difficulty: models.DifficultyMedium},
	{Title: "Container With Most Water", Slug: "container-with-most-water", URL: "https://leetcode.com/problems/container-with-most-water/", Difficulty: models.DifficultyMedium},
	{Title: "Coin Change", Slug: "coin-change", URL: "https://leetcode.com/problems/coin-change/", Difficulty: models.DifficultyMedium},
	{Title: "Number of Islands", Slug: "number-of-islands", URL: "https://leetcode.com/problems/number-of-islands/", Difficulty: models.DifficultyMedium},
	{Title: "Median of Two Sorted Arrays", Slug: "median-of-two-sorted-arrays", URL: "https://leetcode.com/problems/median-of-two-sorted-arrays/", Difficulty: models.DifficultyHard},
	{Title: "Trapping Rain Water", Slug: "trapping-rain-water", URL: "https://leetcode.com/problems/trapping-rain-water/", Difficulty: models.DifficultyHard},
	{Title: "Merge k Sorted Lists", Slug: "merge-k-sorted-lists", URL: "https://leetcode.com/problems/merge-k-sorted-lists/", Difficulty: models.DifficultyHard},
	{Title: "Word Ladder", Slug: "word-ladder", URL: "https://leetcode.com/problems/word-ladder/", Difficulty: models.DifficultyHard},
	{Title: "Regular Expression Matching", Slug: "regular-expression-matching", URL: "https://leetcode.com/problems/regular-expression-matching/", Difficulty: models.DifficultyHard},
}
