package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rickgao0917/quantrooms/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// One connection, or every pooled conn sees its own empty :memory: db.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.RoomMember{},
		&models.Problem{},
		&models.Match{},
		&models.MatchParticipant{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string, ratingValue int) *models.User {
	t.Helper()
	user := models.User{
		Username:     username,
		PasswordHash: "x",
		Rating:       ratingValue,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}
