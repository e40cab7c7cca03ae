package service

import (
	"context"
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"github.com/google/uuid"
)

const (
	maxTitleLen    = 255
	maxContentLen  = 50000
	maxSlugRetries = 5
)

// PostInput is the create payload. On update, nil fields are left alone.
type PostInput struct {
	Title       *string
	Content     *string
	Tags        []string
	HeaderImage *string
	Published   *bool
}

// PostQuery is the raw listing request. Popular beats rated when both are set.
type PostQuery struct {
	Author  string
	Name    string
	Title   string
	Tags    []string
	Popular bool
	Rated   bool
}

// PostService owns post authoring and visibility.
type PostService struct {
	store *repository.Store
}

func NewPostService(store *repository.Store) *PostService {
	return &PostService{store: store}
}

// Create stores a new post by authorID under a fresh unique slug.
func (s *PostService) Create(ctx context.Context, authorID uint, in PostInput) (post *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "post.Create")
	defer func() { observability.EndSpan(span, err) }()

	if in.Title == nil || in.Content == nil {
		fields := models.FieldErrors{}
		if in.Title == nil {
			fields.Add("title", "Title is required.")
		}
		if in.Content == nil {
			fields.Add("content", "Content is required.")
		}
		return nil, fields.Err()
	}

	post = &models.Post{UserID: authorID}
	if err := applyPostInput(post, in); err != nil {
		return nil, err
	}

	base := slugBase(post.Title)
	for attempt := 0; ; attempt++ {
		taken, err := s.store.Posts.SlugsWithPrefix(ctx, base)
		if err != nil {
			return nil, err
		}
		post.Slug = uniqueSlug(base, taken)

		err = s.store.Posts.Create(ctx, post)
		if err == nil {
			break
		}
		// Another writer claimed the slug between the lookup and the insert.
		if !isDuplicate(err) || attempt >= maxSlugRetries {
			return nil, err
		}
		post.ID, post.UUID = 0, uuid.Nil
	}

	return s.store.Posts.GetByID(ctx, post.ID)
}

// Update changes an existing post. Only the author may update; the slug never changes.
func (s *PostService) Update(ctx context.Context, actorID uint, ref string, in PostInput) (*models.Post, error) {
	post, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !post.VisibleTo(actorID) {
		return nil, models.NewNotFoundError("Post", ref)
	}
	if post.UserID != actorID {
		return nil, models.ErrNotOwner
	}

	if err := applyPostInput(post, in); err != nil {
		return nil, err
	}
	if err := s.store.Posts.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.store.Posts.GetByID(ctx, post.ID)
}

// Delete removes a post with its comments, replies and likes.
func (s *PostService) Delete(ctx context.Context, actorID uint, ref string) (err error) {
	ctx, span := observability.StartSpan(ctx, "post.Delete")
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.resolve(ctx, ref)
	if err != nil {
		return err
	}
	if !post.VisibleTo(actorID) {
		return models.NewNotFoundError("Post", ref)
	}
	if post.UserID != actorID {
		return models.ErrNotOwner
	}

	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		commentIDs, err := tx.Comments.IDsByPost(ctx, post.ID)
		if err != nil {
			return err
		}
		if err := deleteThread(ctx, tx, commentIDs, nil); err != nil {
			return err
		}
		if err := tx.Likes.DeletePostLikesByPost(ctx, post.ID); err != nil {
			return err
		}
		return tx.Posts.Delete(ctx, post.ID)
	})
}

// Get returns the post identified by a uuid or slug if viewerID may see it.
func (s *PostService) Get(ctx context.Context, viewerID uint, ref string) (*models.Post, error) {
	post, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !post.VisibleTo(viewerID) {
		return nil, models.NewNotFoundError("Post", ref)
	}
	return post, nil
}

// List returns the posts visible to viewerID that match every filter in q.
func (s *PostService) List(ctx context.Context, viewerID uint, q PostQuery, page Page) (*List[models.Post], error) {
	filter := repository.PostFilter{
		ViewerID: viewerID,
		Name:     q.Name,
		Title:    q.Title,
		Tags:     q.Tags,
		Order:    repository.OrderLatest,
	}
	if q.Author != "" {
		id, ok := parseUUID(q.Author)
		if !ok {
			return nil, models.NewFieldError("author", "Must be a valid UUID.")
		}
		filter.AuthorUUID = &id
	}
	switch {
	case q.Popular:
		filter.Order = repository.OrderPopular
	case q.Rated:
		filter.Order = repository.OrderRated
	}

	page = page.Normalize()
	posts, total, err := s.store.Posts.List(ctx, filter, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return &List[models.Post]{Items: posts, Total: total, Page: page}, nil
}

// resolve looks ref up as a uuid first, then as a slug.
func (s *PostService) resolve(ctx context.Context, ref string) (*models.Post, error) {
	if id, ok := parseUUID(ref); ok {
		return s.store.Posts.GetByUUID(ctx, id)
	}
	return s.store.Posts.GetBySlug(ctx, ref)
}

// visiblePost loads a post by uuid and hides drafts from everyone but the author.
func visiblePost(ctx context.Context, store *repository.Store, viewerID uint, ref string) (*models.Post, error) {
	id, ok := parseUUID(ref)
	if !ok {
		return nil, models.NewNotFoundError("Post", ref)
	}
	post, err := store.Posts.GetByUUID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.VisibleTo(viewerID) {
		return nil, models.NewNotFoundError("Post", ref)
	}
	return post, nil
}

func applyPostInput(post *models.Post, in PostInput) error {
	fields := models.FieldErrors{}
	if in.Title != nil {
		if err := validation.ValidateLength("Title", *in.Title, 1, maxTitleLen); err != nil {
			fields.Add("title", err.Error()+".")
		} else {
			post.Title = strings.TrimSpace(*in.Title)
		}
	}
	if in.Content != nil {
		if err := validation.ValidateLength("Content", *in.Content, 1, maxContentLen); err != nil {
			fields.Add("content", err.Error()+".")
		} else {
			post.Content = *in.Content
		}
	}
	if in.HeaderImage != nil {
		post.HeaderImage = strings.TrimSpace(*in.HeaderImage)
	}
	if in.Tags != nil {
		post.Tags = models.JoinList(in.Tags)
	}
	if in.Published != nil {
		post.Published = *in.Published
	}
	return fields.Err()
}
