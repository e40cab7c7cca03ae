package repository

import (
	"context"

	"inkwell/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommentRepository defines persistence operations for top-level comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	GetByUUID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	UpdateContent(ctx context.Context, comment *models.Comment) error
	ListByPost(ctx context.Context, postID uint, latestFirst bool, limit, offset int) ([]models.Comment, int64, error)
	IDsByPost(ctx context.Context, postID uint) ([]uint, error)
	DeleteByIDs(ctx context.Context, ids []uint) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return translate(r.db.WithContext(ctx).Create(comment).Error, "Comment", comment.PostID)
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var c models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&c, id).Error; err != nil {
		return nil, translate(err, "Comment", id)
	}
	return &c, nil
}

func (r *commentRepository) GetByUUID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var c models.Comment
	if err := r.db.WithContext(ctx).Preload("User").Where("uuid = ?", id).First(&c).Error; err != nil {
		return nil, translate(err, "Comment", id)
	}
	return &c, nil
}

func (r *commentRepository) UpdateContent(ctx context.Context, comment *models.Comment) error {
	return translate(r.db.WithContext(ctx).Model(comment).Update("content", comment.Content).Error, "Comment", comment.ID)
}

// ListByPost pages through a post's comments, oldest first unless latestFirst.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint, latestFirst bool, limit, offset int) ([]models.Comment, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "Comment", postID)
	}

	order := "created_at ASC, id ASC"
	if latestFirst {
		order = "created_at DESC, id DESC"
	}

	var comments []models.Comment
	if err := q.Preload("User").Order(order).Limit(limit).Offset(offset).Find(&comments).Error; err != nil {
		return nil, 0, translate(err, "Comment", postID)
	}
	return comments, total, nil
}

func (r *commentRepository) IDsByPost(ctx context.Context, postID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID).Pluck("id", &ids).Error
	return ids, translate(err, "Comment", postID)
}

func (r *commentRepository) DeleteByIDs(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Comment{}).Error, "Comment", ids)
}
