package repository

import (
	"context"

	"inkwell/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LikeRepository stores likes on posts and on comments or replies.
type LikeRepository interface {
	CreatePostLike(ctx context.Context, like *models.PostLike) error
	GetPostLike(ctx context.Context, id uuid.UUID) (*models.PostLike, error)
	ListPostLikes(ctx context.Context, postID uint, limit, offset int) ([]models.PostLike, int64, error)
	DeletePostLike(ctx context.Context, id uint) error
	DeletePostLikesByPost(ctx context.Context, postID uint) error

	CreateCommentLike(ctx context.Context, like *models.CommentLike) error
	GetCommentLike(ctx context.Context, id uuid.UUID) (*models.CommentLike, error)
	ListCommentLikes(ctx context.Context, parent models.ParentRef, limit, offset int) ([]models.CommentLike, int64, error)
	DeleteCommentLike(ctx context.Context, id uint) error
	DeleteCommentLikesFor(ctx context.Context, commentIDs, replyIDs []uint) error
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) CreatePostLike(ctx context.Context, like *models.PostLike) error {
	return translate(r.db.WithContext(ctx).Create(like).Error, "Like", like.PostID)
}

func (r *likeRepository) GetPostLike(ctx context.Context, id uuid.UUID) (*models.PostLike, error) {
	var like models.PostLike
	if err := r.db.WithContext(ctx).Preload("User").Preload("Post").Where("uuid = ?", id).First(&like).Error; err != nil {
		return nil, translate(err, "Like", id)
	}
	return &like, nil
}

func (r *likeRepository) ListPostLikes(ctx context.Context, postID uint, limit, offset int) ([]models.PostLike, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.PostLike{}).Where("post_id = ?", postID).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "Like", postID)
	}

	var likes []models.PostLike
	if err := q.Preload("User").Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&likes).Error; err != nil {
		return nil, 0, translate(err, "Like", postID)
	}
	return likes, total, nil
}

func (r *likeRepository) DeletePostLike(ctx context.Context, id uint) error {
	return translate(r.db.WithContext(ctx).Delete(&models.PostLike{}, id).Error, "Like", id)
}

func (r *likeRepository) DeletePostLikesByPost(ctx context.Context, postID uint) error {
	return translate(r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.PostLike{}).Error, "Like", postID)
}

func (r *likeRepository) CreateCommentLike(ctx context.Context, like *models.CommentLike) error {
	return translate(r.db.WithContext(ctx).Create(like).Error, "Like", nil)
}

func (r *likeRepository) GetCommentLike(ctx context.Context, id uuid.UUID) (*models.CommentLike, error) {
	var like models.CommentLike
	if err := r.db.WithContext(ctx).Preload("User").Where("uuid = ?", id).First(&like).Error; err != nil {
		return nil, translate(err, "Like", id)
	}
	return &like, nil
}

func (r *likeRepository) ListCommentLikes(ctx context.Context, parent models.ParentRef, limit, offset int) ([]models.CommentLike, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.CommentLike{}).Where(parentColumn(parent)+" = ?", parent.ID()).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "Like", parent.ID())
	}

	var likes []models.CommentLike
	if err := q.Preload("User").Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&likes).Error; err != nil {
		return nil, 0, translate(err, "Like", parent.ID())
	}
	return likes, total, nil
}

func (r *likeRepository) DeleteCommentLike(ctx context.Context, id uint) error {
	return translate(r.db.WithContext(ctx).Delete(&models.CommentLike{}, id).Error, "Like", id)
}

// DeleteCommentLikesFor removes every like on the given comments and replies.
func (r *likeRepository) DeleteCommentLikesFor(ctx context.Context, commentIDs, replyIDs []uint) error {
	db := r.db.WithContext(ctx)
	if len(commentIDs) > 0 {
		if err := db.Where("parent_comment_id IN ?", commentIDs).Delete(&models.CommentLike{}).Error; err != nil {
			return translate(err, "Like", nil)
		}
	}
	if len(replyIDs) > 0 {
		if err := db.Where("parent_reply_id IN ?", replyIDs).Delete(&models.CommentLike{}).Error; err != nil {
			return translate(err, "Like", nil)
		}
	}
	return nil
}
