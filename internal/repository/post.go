package repository

import (
	"context"
	"strings"

	"inkwell/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post list orderings.
const (
	OrderLatest  = "latest"
	OrderPopular = "popular"
	OrderRated   = "rated"
)

// PostFilter narrows a post listing. All set fields apply together.
type PostFilter struct {
	// ViewerID sees their own drafts; 0 is anonymous.
	ViewerID   uint
	AuthorUUID *uuid.UUID
	Name       string
	Title      string
	Tags       []string
	Order      string
}

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetByUUID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	SlugsWithPrefix(ctx context.Context, base string) ([]string, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter PostFilter, limit, offset int) ([]models.Post, int64, error)
	CountPublishedBy(ctx context.Context, userID uint) (int64, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return translate(r.db.WithContext(ctx).Create(post).Error, "Post", post.Slug)
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("User").First(&post, id).Error; err != nil {
		return nil, translate(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) GetByUUID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("User").Where("uuid = ?", id).First(&post).Error; err != nil {
		return nil, translate(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("User").Where("slug = ?", slug).First(&post).Error; err != nil {
		return nil, translate(err, "Post", slug)
	}
	return &post, nil
}

// SlugsWithPrefix returns base itself and every "base-…" slug in use.
func (r *postRepository) SlugsWithPrefix(ctx context.Context, base string) ([]string, error) {
	var slugs []string
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("slug = ? OR slug LIKE ? ESCAPE '\\'", base, escapeLike(base)+"-%").
		Pluck("slug", &slugs).Error
	if err != nil {
		return nil, translate(err, "Post", base)
	}
	return slugs, nil
}

// Update writes the editable columns. The slug is never rewritten.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Model(post).
		Select("title", "content", "tags", "header_image", "published").
		Updates(post).Error
	return translate(err, "Post", post.ID)
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return translate(res.Error, "Post", id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

func (r *postRepository) List(ctx context.Context, filter PostFilter, limit, offset int) ([]models.Post, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Post{}).
		Joins("JOIN users author ON author.id = posts.user_id")

	if filter.ViewerID != 0 {
		q = q.Where("(posts.published = ? OR posts.user_id = ?)", true, filter.ViewerID)
	} else {
		q = q.Where("posts.published = ?", true)
	}
	if filter.AuthorUUID != nil {
		q = q.Where("author.uuid = ?", *filter.AuthorUUID)
	}
	if name := strings.ToLower(strings.TrimSpace(filter.Name)); name != "" {
		like := "%" + escapeLike(name) + "%"
		q = q.Where("(LOWER(author.first_name) LIKE ? ESCAPE '\\' OR LOWER(author.last_name) LIKE ? ESCAPE '\\')", like, like)
	}
	if title := strings.ToLower(strings.TrimSpace(filter.Title)); title != "" {
		like := "%" + escapeLike(title) + "%"
		q = q.Where("(LOWER(posts.title) LIKE ? ESCAPE '\\' OR posts.slug LIKE ? ESCAPE '\\')", like, like)
	}
	if tagQuery := tagCondition(r.db, filter.Tags); tagQuery != nil {
		q = q.Where(tagQuery)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "Post", nil)
	}

	var posts []models.Post
	err := applyPostOrder(q.Select("posts.*").Preload("User"), filter.Order).
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, translate(err, "Post", nil)
	}
	return posts, total, nil
}

// tagCondition matches posts carrying any of tags. Tags are stored comma separated,
// so both sides are compared with spaces stripped and wrapped in commas.
func tagCondition(db *gorm.DB, tags []string) *gorm.DB {
	var cond *gorm.DB
	for _, tag := range tags {
		norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(tag)), " ", "")
		if norm == "" {
			continue
		}
		pattern := "%," + escapeLike(norm) + ",%"
		expr := "(',' || REPLACE(LOWER(posts.tags), ' ', '') || ',') LIKE ? ESCAPE '\\'"
		if cond == nil {
			cond = db.Where(expr, pattern)
		} else {
			cond = cond.Or(expr, pattern)
		}
	}
	return cond
}

func applyPostOrder(q *gorm.DB, order string) *gorm.DB {
	switch order {
	case OrderPopular:
		q = q.Order("posts.likes_count DESC")
	case OrderRated:
		q = q.Order("posts.comments_count DESC")
	}
	return q.Order("posts.created_at DESC").Order("posts.id DESC")
}

func (r *postRepository) CountPublishedBy(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("user_id = ? AND published = ?", userID, true).
		Count(&n).Error
	return n, translate(err, "Post", userID)
}
