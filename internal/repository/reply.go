package repository

import (
	"context"

	"inkwell/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReplyRepository defines persistence operations for replies at any depth.
type ReplyRepository interface {
	Create(ctx context.Context, reply *models.Reply) error
	GetByID(ctx context.Context, id uint) (*models.Reply, error)
	GetByUUID(ctx context.Context, id uuid.UUID) (*models.Reply, error)
	UpdateContent(ctx context.Context, reply *models.Reply) error
	ListByParent(ctx context.Context, parent models.ParentRef, limit, offset int) ([]models.Reply, int64, error)
	SubtreeIDs(ctx context.Context, commentIDs, replyIDs []uint) ([]uint, error)
	PostIDForParent(ctx context.Context, parent models.ParentRef) (uint, error)
	DeleteByIDs(ctx context.Context, ids []uint) error
}

type replyRepository struct {
	db *gorm.DB
}

func NewReplyRepository(db *gorm.DB) ReplyRepository {
	return &replyRepository{db: db}
}

func (r *replyRepository) Create(ctx context.Context, reply *models.Reply) error {
	return translate(r.db.WithContext(ctx).Create(reply).Error, "Reply", nil)
}

func (r *replyRepository) GetByID(ctx context.Context, id uint) (*models.Reply, error) {
	var reply models.Reply
	if err := r.db.WithContext(ctx).Preload("User").First(&reply, id).Error; err != nil {
		return nil, translate(err, "Reply", id)
	}
	return &reply, nil
}

func (r *replyRepository) GetByUUID(ctx context.Context, id uuid.UUID) (*models.Reply, error) {
	var reply models.Reply
	if err := r.db.WithContext(ctx).Preload("User").Where("uuid = ?", id).First(&reply).Error; err != nil {
		return nil, translate(err, "Reply", id)
	}
	return &reply, nil
}

func (r *replyRepository) UpdateContent(ctx context.Context, reply *models.Reply) error {
	return translate(r.db.WithContext(ctx).Model(reply).Update("content", reply.Content).Error, "Reply", reply.ID)
}

// ListByParent pages through the direct replies of parent, oldest first.
func (r *replyRepository) ListByParent(ctx context.Context, parent models.ParentRef, limit, offset int) ([]models.Reply, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Reply{}).Where(parentColumn(parent)+" = ?", parent.ID()).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "Reply", parent.ID())
	}

	var replies []models.Reply
	if err := q.Preload("User").Order("created_at ASC, id ASC").Limit(limit).Offset(offset).Find(&replies).Error; err != nil {
		return nil, 0, translate(err, "Reply", parent.ID())
	}
	return replies, total, nil
}

// SubtreeIDs returns every reply below the given comments and replies, level by
// level. The roots themselves are not included.
func (r *replyRepository) SubtreeIDs(ctx context.Context, commentIDs, replyIDs []uint) ([]uint, error) {
	var all []uint
	db := r.db.WithContext(ctx)

	var level []uint
	if len(commentIDs) > 0 {
		if err := db.Model(&models.Reply{}).Where("parent_comment_id IN ?", commentIDs).Pluck("id", &level).Error; err != nil {
			return nil, translate(err, "Reply", nil)
		}
	}
	frontier := make([]uint, 0, len(level)+len(replyIDs))
	frontier = append(frontier, level...)
	frontier = append(frontier, replyIDs...)

	seen := make(map[uint]bool, len(frontier))
	for _, id := range replyIDs {
		seen[id] = true
	}
	for _, id := range level {
		seen[id] = true
		all = append(all, id)
	}

	for len(frontier) > 0 {
		var children []uint
		if err := db.Model(&models.Reply{}).Where("parent_reply_id IN ?", frontier).Pluck("id", &children).Error; err != nil {
			return nil, translate(err, "Reply", nil)
		}
		frontier = frontier[:0]
		for _, id := range children {
			if seen[id] {
				continue
			}
			seen[id] = true
			all = append(all, id)
			frontier = append(frontier, id)
		}
	}
	return all, nil
}

// PostIDForParent walks parent up through its reply chain to the comment and
// returns the id of the post the thread hangs off.
func (r *replyRepository) PostIDForParent(ctx context.Context, parent models.ParentRef) (uint, error) {
	if !parent.Valid() {
		return 0, models.ErrInvalidParent
	}
	db := r.db.WithContext(ctx)

	node := parent
	seen := map[uint]bool{}
	for node.Kind() == models.ParentReply {
		if seen[node.ID()] {
			return 0, models.ErrInvalidParent
		}
		seen[node.ID()] = true

		var reply models.Reply
		if err := db.Select("id", "parent_comment_id", "parent_reply_id").First(&reply, node.ID()).Error; err != nil {
			return 0, translate(err, "Reply", node.ID())
		}
		next, err := reply.Parent()
		if err != nil {
			return 0, err
		}
		node = next
	}

	var comment models.Comment
	if err := db.Select("id", "post_id").First(&comment, node.ID()).Error; err != nil {
		return 0, translate(err, "Comment", node.ID())
	}
	return comment.PostID, nil
}

func (r *replyRepository) DeleteByIDs(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Reply{}).Error, "Reply", ids)
}

func parentColumn(p models.ParentRef) string {
	if p.Kind() == models.ParentReply {
		return "parent_reply_id"
	}
	return "parent_comment_id"
}
