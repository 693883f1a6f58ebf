// Package storetest opens throwaway stores for package tests.
package storetest

import (
	"testing"

	"review-trophy-service/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database with foreign keys on.
// A single connection keeps the in-memory database alive for the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.ReviewRequest{}, &models.Trophy{}))
	return db
}

// SeedUser stores a user with the given id.
func SeedUser(t *testing.T, db *gorm.DB, id int64, username string) *models.User {
	t.Helper()
	u := &models.User{ID: id, Username: username, Email: username + "@example.com"}
	require.NoError(t, db.Create(u).Error)
	return u
}

// SeedReviewRequest stores a review request submitted by the given user.
func SeedReviewRequest(t *testing.T, db *gorm.DB, id int64, submitter *models.User) *models.ReviewRequest {
	t.Helper()
	rr := &models.ReviewRequest{ID: id, SubmitterID: submitter.ID, Summary: "Test review request", Public: true}
	require.NoError(t, db.Omit("Submitter").Create(rr).Error)
	rr.Submitter = *submitter
	return rr
}
