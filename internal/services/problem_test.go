package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao0917/quantrooms/internal/models"
)

func TestCandidateProblemsFilterAndCount(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProblemService(db)
	require.NoError(t, svc.SeedDefaults())

	easy, err := svc.CandidateProblems(5, models.DifficultyEasy)
	require.NoError(t, err)
	assert.Len(t, easy, 5)
	for _, p := range easy {
		assert.Equal(t, models.DifficultyEasy, p.Difficulty)
	}

	// "any" ignores difficulty.
	mixed, err := svc.CandidateProblems(5, models.DifficultyAny)
	require.NoError(t, err)
	assert.Len(t, mixed, 5)

	// Fewer problems than requested is not an error.
	hard, err := svc.CandidateProblems(50, models.DifficultyHard)
	require.NoError(t, err)
	assert.NotEmpty(t, hard)
}

func TestCandidateProblemsEmptyCatalog(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProblemService(db)

	_, err := svc.CandidateProblems(5, models.DifficultyEasy)
	assert.Error(t, err)
}

func TestImportUpsertsBySlug(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProblemService(db)

	created, err := svc.Import([]models.Problem{
		{Title: "Two Sum", Slug: "two-sum", URL: "https://a", Difficulty: models.DifficultyEasy},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	// Same slug updates in place.
	created, err = svc.Import([]models.Problem{
		{Title: "Two Sum (revised)", Slug: "two-sum", URL: "https://b", Difficulty: models.DifficultyMedium},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	problems, err := svc.List()
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Equal(t, "Two Sum (revised)", problems[0].Title)
	assert.Equal(t, models.DifficultyMedium, problems[0].Difficulty)
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProblemService(db)

	require.NoError(t, svc.SeedDefaults())
	first, err := svc.List()
	require.NoError(t, err)

	require.NoError(t, svc.SeedDefaults())
	second, err := svc.List()
	require.NoError(t, err)
	assert.Equal(t, len(first), len(second))
}
