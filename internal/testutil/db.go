// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"inkwell/internal/database"
	"inkwell/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seq atomic.Uint64

// NewTestDB opens a private in-memory SQLite database with the full schema. The
// pool is pinned to one connection so the database lives as long as the test.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts a user and its profile. Names default to "Test User<n>".
func CreateUser(t testing.TB, db *gorm.DB, verified bool, opts ...func(*models.User)) *models.User {
	t.Helper()

	n := seq.Add(1)
	u := &models.User{
		Email:      fmt.Sprintf("user%d@example.com", n),
		Password:   "not-a-real-hash",
		IsVerified: verified,
		FirstName:  "Test",
		LastName:   fmt.Sprintf("User%d", n),
	}
	for _, opt := range opts {
		opt(u)
	}
	require.NoError(t, db.Create(u).Error)
	require.NoError(t, db.Create(&models.Profile{UserID: u.ID}).Error)
	return u
}

// CreatePost inserts a post by author.
func CreatePost(t testing.TB, db *gorm.DB, author *models.User, published bool, opts ...func(*models.Post)) *models.Post {
	t.Helper()

	n := seq.Add(1)
	p := &models.Post{
		UserID:    author.ID,
		Title:     fmt.Sprintf("Post %d", n),
		Slug:      fmt.Sprintf("post-%d", n),
		Content:   "Some content",
		Published: published,
	}
	for _, opt := range opts {
		opt(p)
	}
	require.NoError(t, db.Create(p).Error)
	return p
}
