// Package repository implements the data access layer for the application.
package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that share one database handle, so a service can
// run several of them inside a single transaction.
type Store struct {
	db *gorm.DB

	Users       UserRepository
	Profiles    ProfileRepository
	ResetTokens ResetTokenRepository
	Posts       PostRepository
	Comments    CommentRepository
	Replies     ReplyRepository
	Likes       LikeRepository
	Counters    CounterRepository
}

// NewStore builds every repository on db.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:          db,
		Users:       NewUserRepository(db),
		Profiles:    NewProfileRepository(db),
		ResetTokens: NewResetTokenRepository(db),
		Posts:       NewPostRepository(db),
		Comments:    NewCommentRepository(db),
		Replies:     NewReplyRepository(db),
		Likes:       NewLikeRepository(db),
		Counters:    NewCounterRepository(db),
	}
}

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn against a Store bound to a single transaction. Calling it on
// a transactional Store opens a savepoint.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
