package service

import (
	"context"

	"inkwell/internal/events"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
)

// ReplyService owns replies to comments and to other replies.
type ReplyService struct {
	store *repository.Store
	bus   *events.Bus
}

func NewReplyService(store *repository.Store, bus *events.Bus) *ReplyService {
	return &ReplyService{store: store, bus: bus}
}

// ResolveParent maps a public id to a comment, or failing that a reply.
func (s *ReplyService) ResolveParent(ctx context.Context, ref string) (models.ParentRef, error) {
	return resolveParent(ctx, s.store, ref)
}

// List pages through the direct replies of parent when its post is visible to viewerID.
func (s *ReplyService) List(ctx context.Context, viewerID uint, parent models.ParentRef, page Page) (*List[models.Reply], error) {
	if err := visibleParent(ctx, s.store, viewerID, parent); err != nil {
		return nil, err
	}
	page = page.Normalize()
	replies, total, err := s.store.Replies.ListByParent(ctx, parent, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return &List[models.Reply]{Items: replies, Total: total, Page: page}, nil
}

// Create adds a reply under parent and bumps the parent's reply counter.
func (s *ReplyService) Create(ctx context.Context, actorID uint, parent models.ParentRef, content string) (reply *models.Reply, err error) {
	ctx, span := observability.StartSpan(ctx, "reply.Create")
	defer func() { observability.EndSpan(span, err) }()

	if err := validateContent(content, maxCommentLen); err != nil {
		return nil, err
	}
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

	reply = models.NewReply(actorID, parent, content)
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Replies.Create(ctx, reply); err != nil {
			return err
		}
		adjustCounter(ctx, tx, repository.ParentRepliesCounter(parent), +1)
		return nil
	})
	if err != nil {
		return nil, err
	}

	reply.User = actor
	s.bus.Publish(ctx, events.ReplyCreated{Reply: *reply, ParentAuthorID: parentAuthor, Actor: *actor})
	return reply, nil
}

// Get returns a reply whose post is visible to viewerID.
func (s *ReplyService) Get(ctx context.Context, viewerID uint, ref string) (*models.Reply, error) {
	reply, err := s.find(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := visibleParent(ctx, s.store, viewerID, models.ReplyParent(reply.ID)); err != nil {
		if models.IsNotFound(err) {
			return nil, models.NewNotFoundError("Reply", ref)
		}
		return nil, err
	}
	return reply, nil
}

// Update replaces the content of the actor's own reply.
func (s *ReplyService) Update(ctx context.Context, actorID uint, ref, content string) (*models.Reply, error) {
	if err := validateContent(content, maxCommentLen); err != nil {
		return nil, err
	}
	reply, err := s.find(ctx, ref)
	if err != nil {
		return nil, err
	}
	if reply.UserID != actorID {
		return nil, models.ErrNotOwner
	}
	reply.Content = content
	if err := s.store.Replies.UpdateContent(ctx, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// Delete removes the actor's reply with its subtree and likes.
func (s *ReplyService) Delete(ctx context.Context, actorID uint, ref string) (err error) {
	ctx, span := observability.StartSpan(ctx, "reply.Delete")
	defer func() { observability.EndSpan(span, err) }()

	reply, err := s.find(ctx, ref)
	if err != nil {
		return err
	}
	if reply.UserID != actorID {
		return models.ErrNotOwner
	}
	parent, err := reply.Parent()
	if err != nil {
		return err
	}

	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := deleteThread(ctx, tx, nil, []uint{reply.ID}); err != nil {
			return err
		}
		adjustCounter(ctx, tx, repository.ParentRepliesCounter(parent), -1)
		return nil
	})
}

func (s *ReplyService) find(ctx context.Context, ref string) (*models.Reply, error) {
	id, ok := parseUUID(ref)
	if !ok {
		return nil, models.NewNotFoundError("Reply", ref)
	}
	return s.store.Replies.GetByUUID(ctx, id)
}

// visibleParent hides the threads of a draft from everyone but its author.
func visibleParent(ctx context.Context, store *repository.Store, viewerID uint, parent models.ParentRef) error {
	postID, err := store.Replies.PostIDForParent(ctx, parent)
	if err != nil {
		return err
	}
	post, err := store.Posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if !post.VisibleTo(viewerID) {
		if parent.Kind() == models.ParentReply {
			return models.NewNotFoundMessage("Reply not found")
		}
		return models.NewNotFoundMessage("Comment not found")
	}
	return nil
}

func resolveParent(ctx context.Context, store *repository.Store, ref string) (models.ParentRef, error) {
	id, ok := parseUUID(ref)
	if !ok {
		return models.ParentRef{}, models.NewNotFoundError("Comment", ref)
	}
	comment, err := store.Comments.GetByUUID(ctx, id)
	if err == nil {
		return models.CommentParent(comment.ID), nil
	}
	if !models.IsNotFound(err) {
		return models.ParentRef{}, err
	}
	reply, err := store.Replies.GetByUUID(ctx, id)
	if err != nil {
		if models.IsNotFound(err) {
			return models.ParentRef{}, models.NewNotFoundError("Comment", ref)
		}
		return models.ParentRef{}, err
	}
	return models.ReplyParent(reply.ID), nil
}

// nodeAuthor loads the comment or reply behind parent and returns its author.
func nodeAuthor(ctx context.Context, store *repository.Store, parent models.ParentRef) (uint, error) {
	switch parent.Kind() {
	case models.ParentComment:
		c, err := store.Comments.GetByID(ctx, parent.ID())
		if err != nil {
			return 0, err
		}
		return c.UserID, nil
	case models.ParentReply:
		r, err := store.Replies.GetByID(ctx, parent.ID())
		if err != nil {
			return 0, err
		}
		return r.UserID, nil
	}
	return 0, models.ErrInvalidParent
}
