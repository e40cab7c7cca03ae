package repository

import (
	"context"
	"fmt"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// Counter names one denormalized counter column on one row.
type Counter struct {
	table  string
	column string
	id     uint
}

// Name is "<table>.<column>", used as a metric label.
func (c Counter) Name() string {
	return c.table + "." + c.column
}

func PostLikesCounter(postID uint) Counter    { return Counter{"posts", "likes_count", postID} }
func PostCommentsCounter(postID uint) Counter { return Counter{"posts", "comments_count", postID} }

// ParentLikesCounter is the likes_count of the comment or reply p refers to.
func ParentLikesCounter(p models.ParentRef) Counter {
	return Counter{parentTable(p), "likes_count", p.ID()}
}

// ParentRepliesCounter is the replies_count of the comment or reply p refers to.
func ParentRepliesCounter(p models.ParentRef) Counter {
	return Counter{parentTable(p), "replies_count", p.ID()}
}

func parentTable(p models.ParentRef) string {
	if p.Kind() == models.ParentReply {
		return "replies"
	}
	return "comments"
}

// CounterRepository applies atomic increments and guarded decrements.
type CounterRepository interface {
	Increment(ctx context.Context, c Counter) error
	Decrement(ctx context.Context, c Counter) error
}

type counterRepository struct {
	db *gorm.DB
}

func NewCounterRepository(db *gorm.DB) CounterRepository {
	return &counterRepository{db: db}
}

// Increment fails when the row does not exist.
func (r *counterRepository) Increment(ctx context.Context, c Counter) error {
	res := r.db.WithContext(ctx).Table(c.table).
		Where("id = ?", c.id).
		UpdateColumn(c.column, gorm.Expr(c.column+" + ?", 1))
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewInternalError(fmt.Errorf("counter %s: row %d not found", c.Name(), c.id))
	}
	return nil
}

// Decrement never takes a counter below zero; a counter already at zero is left alone.
func (r *counterRepository) Decrement(ctx context.Context, c Counter) error {
	res := r.db.WithContext(ctx).Table(c.table).
		Where("id = ? AND "+c.column+" >= ?", c.id, 1).
		UpdateColumn(c.column, gorm.Expr(c.column+" - ?", 1))
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	return nil
}
