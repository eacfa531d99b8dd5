package services

import (
	"fmt"
	"testing"

	"github.com/filoshare/backend/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database per test
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

// newTestUser inserts a user with the given storage state
func newTestUser(t *testing.T, db *gorm.DB, email string, used, limit int64) *models.User {
	t.Helper()

	user := &models.User{
		Name:         "Test User",
		Email:        email,
		Password:     "$2a$10$invalidhashfortestingonly1234567890123456789012345",
		StorageUsed:  used,
		StorageLimit: limit,
		Plan:         "FREE",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
