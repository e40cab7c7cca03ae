package service

import (
	"context"

	"inkwell/internal/events"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
)

const maxCommentLen = 5000

// CommentService owns top-level comments on posts.
type CommentService struct {
	store *repository.Store
	bus   *events.Bus
}

func NewCommentService(store *repository.Store, bus *events.Bus) *CommentService {
	return &CommentService{store: store, bus: bus}
}

// List pages through the comments of a post visible to viewerID.
func (s *CommentService) List(ctx context.Context, viewerID uint, postRef string, latestFirst bool, page Page) (*List[models.Comment], error) {
	post, err := visiblePost(ctx, s.store, viewerID, postRef)
	if err != nil {
		return nil, err
	}
	page = page.Normalize()
	comments, total, err := s.store.Comments.ListByPost(ctx, post.ID, latestFirst, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return &List[models.Comment]{Items: comments, Total: total, Page: page}, nil
}

// Create adds a comment by actorID and bumps the post's comment counter.
func (s *CommentService) Create(ctx context.Context, actorID uint, postRef, content string) (comment *models.Comment, err error) {
	ctx, span := observability.StartSpan(ctx, "comment.Create")
	defer func() { observability.EndSpan(span, err) }()

	if err := validateContent(content, maxCommentLen); err != nil {
		return nil, err
	}
	post, err := visiblePost(ctx, s.store, actorID, postRef)
	if err != nil {
		return nil, err
	}
	actor, err := s.store.Users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	comment = &models.Comment{UserID: actorID, PostID: post.ID, Content: content}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Comments.Create(ctx, comment); err != nil {
			return err
		}
		adjustCounter(ctx, tx, repository.PostCommentsCounter(post.ID), +1)
		return nil
	})
	if err != nil {
		return nil, err
	}

	comment.User = actor
	s.bus.Publish(ctx, events.CommentCreated{Comment: *comment, Post: *post, Actor: *actor})
	return comment, nil
}

// Get returns a comment whose post is visible to viewerID.
func (s *CommentService) Get(ctx context.Context, viewerID uint, ref string) (*models.Comment, error) {
	comment, err := s.find(ctx, ref)
	if err != nil {
		return nil, err
	}
	post, err := s.store.Posts.GetByID(ctx, comment.PostID)
	if err != nil {
		return nil, err
	}
	if !post.VisibleTo(viewerID) {
		return nil, models.NewNotFoundError("Comment", ref)
	}
	return comment, nil
}

// Update replaces the content of the actor's own comment.
func (s *CommentService) Update(ctx context.Context, actorID uint, ref, content string) (*models.Comment, error) {
	if err := validateContent(content, maxCommentLen); err != nil {
		return nil, err
	}
	comment, err := s.find(ctx, ref)
	if err != nil {
		return nil, err
	}
	if comment.UserID != actorID {
		return nil, models.ErrNotOwner
	}
	comment.Content = content
	if err := s.store.Comments.UpdateContent(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete removes the actor's comment with its reply subtree and likes.
func (s *CommentService) Delete(ctx context.Context, actorID uint, ref string) (err error) {
	ctx, span := observability.StartSpan(ctx, "comment.Delete")
	defer func() { observability.EndSpan(span, err) }()

	comment, err := s.find(ctx, ref)
	if err != nil {
		return err
	}
	if comment.UserID != actorID {
		return models.ErrNotOwner
	}

	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := deleteThread(ctx, tx, []uint{comment.ID}, nil); err != nil {
			return err
		}
		adjustCounter(ctx, tx, repository.PostCommentsCounter(comment.PostID), -1)
		return nil
	})
}

func (s *CommentService) find(ctx context.Context, ref string) (*models.Comment, error) {
	id, ok := parseUUID(ref)
	if !ok {
		return nil, models.NewNotFoundError("Comment", ref)
	}
	return s.store.Comments.GetByUUID(ctx, id)
}

// deleteThread removes the given comments and replies, every reply below them, and
// all likes on any of those nodes.
func deleteThread(ctx context.Context, tx *repository.Store, commentIDs, replyIDs []uint) error {
	below, err := tx.Replies.SubtreeIDs(ctx, commentIDs, replyIDs)
	if err != nil {
		return err
	}
	replies := append(append([]uint{}, replyIDs...), below...)

	if err := tx.Likes.DeleteCommentLikesFor(ctx, commentIDs, replies); err != nil {
		return err
	}
	if err := tx.Replies.DeleteByIDs(ctx, replies); err != nil {
		return err
	}
	return tx.Comments.DeleteByIDs(ctx, commentIDs)
}

func validateContent(content string, max int) error {
	if err := validation.ValidateLength("Content", content, 1, max); err != nil {
		return models.NewFieldError("content", err.Error()+".")
	}
	return nil
}
