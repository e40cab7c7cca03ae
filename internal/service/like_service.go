package service

import (
	"context"

	"inkwell/internal/events"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
)

// LikeService owns likes on posts, comments and replies.
type LikeService struct {
	store *repository.Store
	bus   *events.Bus
}

func NewLikeService(store *repository.Store, bus *events.Bus) *LikeService {
	return &LikeService{store: store, bus: bus}
}

// ListPostLikes pages through the likes of a post visible to viewerID.
func (s *LikeService) ListPostLikes(ctx context.Context, viewerID uint, postRef string, page Page) (*List[models.PostLike], error) {
	post, err := visiblePost(ctx, s.store, viewerID, postRef)
	if err != nil {
		return nil, err
	}
	page = page.Normalize()
	likes, total, err := s.store.Likes.ListPostLikes(ctx, post.ID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return &List[models.PostLike]{Items: likes, Total: total, Page: page}, nil
}

// LikePost records a like by actorID. A second like by the same user is rejected.
func (s *LikeService) LikePost(ctx context.Context, actorID uint, postRef string) (like *models.PostLike, err error) {
	ctx, span := observability.StartSpan(ctx, "like.Post")
	defer func() { observability.EndSpan(span, err) }()

	post, err := visiblePost(ctx, s.store, actorID, postRef)
	if err != nil {
		return nil, err
	}
	actor, err := s.store.Users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	like = &models.PostLike{UserID: actorID, PostID: post.ID}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Likes.CreatePostLike(ctx, like); err != nil {
			if isDuplicate(err) {
				return models.ErrAlreadyLiked
			}
			return err
		}
		adjustCounter(ctx, tx, repository.PostLikesCounter(post.ID), +1)
		return nil
	})
	if err != nil {
		return nil, err
	}

	like.User, like.Post = actor, post
	s.bus.Publish(ctx, events.PostLiked{Like: *like, Post: *post, Actor: *actor})
	return like, nil
}

// GetPostLike returns a post like when the liked post is visible to viewerID.
func (s *LikeService) GetPostLike(ctx context.Context, viewerID uint, ref string) (*models.PostLike, error) {
	like, err := s.findPostLike(ctx, ref)
	if err != nil {
		return nil, err
	}
	post := like.Post
	if post == nil {
		if post, err = s.store.Posts.GetByID(ctx, like.PostID); err != nil {
			return nil, err
		}
	}
	if !post.VisibleTo(viewerID) {
		return nil, models.NewNotFoundError("Like", ref)
	}
	return like, nil
}

// DeletePostLike removes the actor's own post like.
func (s *LikeService) DeletePostLike(ctx context.Context, actorID uint, ref string) (err error) {
	ctx, span := observability.StartSpan(ctx, "like.DeletePost")
	defer func() { observability.EndSpan(span, err) }()

	like, err := s.findPostLike(ctx, ref)
	if err != nil {
		return err
	}
	if like.UserID != actorID {
		return models.ErrNotOwner
	}
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Likes.DeletePostLike(ctx, like.ID); err != nil {
			return err
		}
		adjustCounter(ctx, tx, repository.PostLikesCounter(like.PostID), -1)
		return nil
	})
}

// ListCommentLikes pages through the likes of a comment or reply whose post is
// visible to viewerID.
func (s *LikeService) ListCommentLikes(ctx context.Context, viewerID uint, parent models.ParentRef, page Page) (*List[models.CommentLike], error) {
	if err := visibleParent(ctx, s.store, viewerID, parent); err != nil {
		return nil, err
	}
	page = page.Normalize()
	likes, total, err := s.store.Likes.ListCommentLikes(ctx, parent, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return &List[models.CommentLike]{Items: likes, Total: total, Page: page}, nil
}

// LikeComment records a like by actorID on a comment or reply.
func (s *LikeService) LikeComment(ctx context.Context, actorID uint, parent models.ParentRef) (like *models.CommentLike, err error) {
	ctx, span := observability.StartSpan(ctx, "like.Comment")
	defer func() { observability.EndSpan(span, err) }()

	if err := visibleParent(ctx, s.store, actorID, parent); err != nil {
		return nil, err
	}
	parentAuthor, err := nodeAuthor(ctx, s.store, parent)
	if err != nil {
		return nil, err
	}
	actor, err := s.store.Users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	like = models.NewCommentLike(actorID, parent)
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Likes.CreateCommentLike(ctx, like); err != nil {
			if isDuplicate(err) {
				return models.ErrAlreadyLiked
			}
			return err
		}
		adjustCounter(ctx, tx, repository.ParentLikesCounter(parent), +1)
		return nil
	})
	if err != nil {
		return nil, err
	}

	like.User = actor
	s.bus.Publish(ctx, events.CommentLiked{Like: *like, ParentAuthorID: parentAuthor, Actor: *actor})
	return like, nil
}

// GetCommentLike returns a comment or reply like whose post is visible to viewerID.
func (s *LikeService) GetCommentLike(ctx context.Context, viewerID uint, ref string) (*models.CommentLike, error) {
	like, err := s.findCommentLike(ctx, ref)
	if err != nil {
		return nil, err
	}
	parent, err := like.Parent()
	if err != nil {
		return nil, err
	}
	if err := visibleParent(ctx, s.store, viewerID, parent); err != nil {
		if models.IsNotFound(err) {
			return nil, models.NewNotFoundError("Like", ref)
		}
		return nil, err
	}
	return like, nil
}

// DeleteCommentLike removes the actor's own comment or reply like.
func (s *LikeService) DeleteCommentLike(ctx context.Context, actorID uint, ref string) (err error) {
	ctx, span := observability.StartSpan(ctx, "like.DeleteComment")
	defer func() { observability.EndSpan(span, err) }()

	like, err := s.findCommentLike(ctx, ref)
	if err != nil {
		return err
	}
	if like.UserID != actorID {
		return models.ErrNotOwner
	}
	parent, err := like.Parent()
	if err != nil {
		return err
	}
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Likes.DeleteCommentLike(ctx, like.ID); err != nil {
			return err
		}
		adjustCounter(ctx, tx, repository.ParentLikesCounter(parent), -1)
		return nil
	})
}

func (s *LikeService) findPostLike(ctx context.Context, ref string) (*models.PostLike, error) {
	id, ok := parseUUID(ref)
	if !ok {
		return nil, models.NewNotFoundError("Like", ref)
	}
	return s.store.Likes.GetPostLike(ctx, id)
}

func (s *LikeService) findCommentLike(ctx context.Context, ref string) (*models.CommentLike, error) {
	id, ok := parseUUID(ref)
	if !ok {
		return nil, models.NewNotFoundError("Like", ref)
	}
	return s.store.Likes.GetCommentLike(ctx, id)
}
