package service

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/testutil"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestPostService_SlugCollisions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, e.store.DB(), true)

	in := PostInput{Title: strPtr("Hello, World!"), Content: strPtr("Body"), Published: boolPtr(true)}
	first, err := e.posts.Create(ctx, author.ID, in)
	require.NoError(t, err)
	second, err := e.posts.Create(ctx, author.ID, in)
	require.NoError(t, err)

	assert.Equal(t, "hello-world", first.Slug)
	assert.Equal(t, "hello-world-1", second.Slug)

	got, err := e.posts.Get(ctx, 0, "hello-world-1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
}

func TestPostService_CreateRequiresTitleAndContent(t *testing.T) {
	e := newEnv(t)
	author := testutil.CreateUser(t, e.store.DB(), true)

	_, err := e.posts.Create(context.Background(), author.ID, PostInput{Content: strPtr("Body")})
	appErr, ok := models.AsAppError(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "title")
}

func TestPostService_DraftVisibility(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, e.store.DB(), true)
	other := testutil.CreateUser(t, e.store.DB(), true)

	draft, err := e.posts.Create(ctx, author.ID, PostInput{Title: strPtr("Draft"), Content: strPtr("Body")})
	require.NoError(t, err)
	assert.False(t, draft.Published)

	_, err = e.posts.Get(ctx, author.ID, draft.UUID.String())
	assert.NoError(t, err)
	_, err = e.posts.Get(ctx, other.ID, draft.UUID.String())
	assert.True(t, models.IsNotFound(err))
	_, err = e.posts.Get(ctx, 0, draft.Slug)
	assert.True(t, models.IsNotFound(err))

	list, err := e.posts.List(ctx, other.ID, PostQuery{}, Page{})
	require.NoError(t, err)
	assert.Zero(t, list.Total)

	list, err = e.posts.List(ctx, author.ID, PostQuery{}, Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)

	_, err = e.comments.Create(ctx, other.ID, draft.UUID.String(), "Hi")
	assert.True(t, models.IsNotFound(err))
}

func TestPostService_UpdateOwnerOnly(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, e.store.DB(), true)
	other := testutil.CreateUser(t, e.store.DB(), true)
	post := testutil.CreatePost(t, e.store.DB(), author, true)

	_, err := e.posts.Update(ctx, other.ID, post.UUID.String(), PostInput{Title: strPtr("Mine now")})
	assert.ErrorIs(t, err, models.ErrNotOwner)

	updated, err := e.posts.Update(ctx, author.ID, post.UUID.String(), PostInput{
		Title: strPtr("Renamed"),
		Tags:  []string{"go", "web"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, post.Slug, updated.Slug)
	assert.Equal(t, []string{"go", "web"}, updated.TagList())
}

func TestPostService_ListInvalidAuthor(t *testing.T) {
	e := newEnv(t)
	_, err := e.posts.List(context.Background(), 0, PostQuery{Author: "nope"}, Page{})
	appErr, ok := models.AsAppError(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "author")
}

func TestCommentService_CounterTracksCreatesAndDeletes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, e.store.DB(), true)
	reader := testutil.CreateUser(t, e.store.DB(), true)
	post := testutil.CreatePost(t, e.store.DB(), author, true)

	var created []*models.Comment
	for i := 0; i < 5; i++ {
		c, err := e.comments.Create(ctx, reader.ID, post.UUID.String(), "Nice post")
		require.NoError(t, err)
		created = append(created, c)
	}
	for _, c := range created[:2] {
		require.NoError(t, e.comments.Delete(ctx, reader.ID, c.UUID.String()))
	}

	assert.Equal(t, 3, e.reload(t, post).CommentsCount)
	assert.Equal(t, 5, e.rec.count("comment_created"))

	list, err := e.comments.List(ctx, 0, post.UUID.String(), false, Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, list.Total)
}

func TestCommentService_OwnerOnly(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, e.store.DB(), true)
	other := testutil.CreateUser(t, e.store.DB(), true)
	post := testutil.CreatePost(t, e.store.DB(), author, true)

	c, err := e.comments.Create(ctx, author.ID, post.UUID.String(), "First")
	require.NoError(t, err)

	_, err = e.comments.Update(ctx, other.ID, c.UUID.String(), "Edited")
	assert.ErrorIs(t, err, models.ErrNotOwner)
	assert.ErrorIs(t, e.comments.Delete(ctx, other.ID, c.UUID.String()), models.ErrNotOwner)

	_, err = e.comments.Update(ctx, author.ID, c.UUID.String(), "   ")
	appErr, ok := models.AsAppError(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "content")

	updated, err := e.comments.Update(ctx, author.ID, c.UUID.String(), "Edited")
	require.NoError(t, err)
	assert.Equal(t, "Edited", updated.Content)
}

func TestReplyService_ParentResolutionAndCounters(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, e.store.DB(), true)
	reader := testutil.CreateUser(t, e.store.DB(), true)
	post := testutil.CreatePost(t, e.store.DB(), author, true)

	c, err := e.comments.Create(ctx, author.ID, post.UUID.String(), "Comment")
	require.NoError(t, err)

	parent, err := e.replies.ResolveParent(ctx, c.UUID.String())
	require.NoError(t, err)
	assert.Equal(t, models.ParentComment, parent.Kind())

	r1, err := e.replies.Create(ctx, reader.ID, parent, "Reply")
	require.NoError(t, err)

	nested, err := e.replies.ResolveParent(ctx, r1.UUID.String())
	require.NoError(t, err)
	assert.Equal(t, models.ParentReply, nested.Kind())

	_, err = e.replies.Create(ctx, author.ID, nested, "Nested")
	require.NoError(t, err)

	comment, err := e.store.Comments.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, comment.RepliesCount)
	reply, err := e.store.Replies.GetByID(ctx, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reply.RepliesCount)

	_, err = e.replies.ResolveParent(ctx, "00000000-0000-0000-0000-000000000000")
	assert.True(t, models.IsNotFound(err))

	assert.Equal(t, 2, e.rec.count("reply_created"))
}

func TestReplyService_RejectsInvalidParent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, e.store.DB(), true)

	_, err := e.replies.Create(ctx, user.ID, models.ParentRef{}, "Orphan")
	assert.ErrorIs(t, err, models.ErrInvalidParent)

	_, err = e.replies.Create(ctx, user.ID, models.CommentParent(9999), "Dangling")
	assert.True(t, models.IsNotFound(err))
}

func TestLikeService_PostLikeOncePerUser(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, e.store.DB(), true)
	reader := testutil.CreateUser(t, e.store.DB(), true)
	post := testutil.CreatePost(t, e.store.DB(), author, true)

	like, err := e.likes.LikePost(ctx, reader.ID, post.UUID.String())
	require.NoError(t, err)

	_, err = e.likes.LikePost(ctx, reader.ID, post.UUID.String())
	assert.ErrorIs(t, err, models.ErrAlreadyLiked)
	assert.Equal(t, 1, e.reload(t, post).LikesCount)
	assert.Equal(t, 1, e.rec.count("post_liked"))

	assert.ErrorIs(t, e.likes.DeletePostLike(ctx, author.ID, like.UUID.String()), models.ErrNotOwner)
	require.NoError(t, e.likes.DeletePostLike(ctx, reader.ID, like.UUID.String()))
	assert.Zero(t, e.reload(t, post).LikesCount)

	list, err := e.likes.ListPostLikes(ctx, 0, post.UUID.String(), Page{})
	require.NoError(t, err)
	assert.Zero(t, list.Total)
}

func TestLikeService_CommentAndReplyLikes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, e.store.DB(), true)
	reader := testutil.CreateUser(t, e.store.DB(), true)
	post := testutil.CreatePost(t, e.store.DB(), author, true)

	c, err := e.comments.Create(ctx, author.ID, post.UUID.String(), "Comment")
	require.NoError(t, err)
	r, err := e.replies.Create(ctx, author.ID, models.CommentParent(c.ID), "Reply")
	require.NoError(t, err)

	_, err = e.likes.LikeComment(ctx, reader.ID, models.CommentParent(c.ID))
	require.NoError(t, err)
	_, err = e.likes.LikeComment(ctx, reader.ID, models.CommentParent(c.ID))
	assert.ErrorIs(t, err, models.ErrAlreadyLiked)

	replyLike, err := e.likes.LikeComment(ctx, reader.ID, models.ReplyParent(r.ID))
	require.NoError(t, err)

	comment, err := e.store.Comments.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, comment.LikesCount)

	require.NoError(t, e.likes.DeleteCommentLike(ctx, reader.ID, replyLike.UUID.String()))
	reply, err := e.store.Replies.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Zero(t, reply.LikesCount)

	list, err := e.likes.ListCommentLikes(ctx, 0, models.CommentParent(c.ID), Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)
	assert.Equal(t, 2, e.rec.count("comment_liked"))
}

func TestPostService_DeleteCascades(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, e.store.DB(), true)
	reader := testutil.CreateUser(t, e.store.DB(), true)
	post := testutil.CreatePost(t, e.store.DB(), author, true)

	c, err := e.comments.Create(ctx, reader.ID, post.UUID.String(), "Comment")
	require.NoError(t, err)
	r, err := e.replies.Create(ctx, author.ID, models.CommentParent(c.ID), "Reply")
	require.NoError(t, err)
	nested, err := e.replies.Create(ctx, reader.ID, models.ReplyParent(r.ID), "Nested")
	require.NoError(t, err)
	_, err = e.likes.LikeComment(ctx, author.ID, models.ReplyParent(nested.ID))
	require.NoError(t, err)
	_, err = e.likes.LikePost(ctx, reader.ID, post.UUID.String())
	require.NoError(t, err)

	assert.ErrorIs(t, e.posts.Delete(ctx, reader.ID, post.UUID.String()), models.ErrNotOwner)
	require.NoError(t, e.posts.Delete(ctx, author.ID, post.UUID.String()))

	_, err = e.store.Posts.GetByID(ctx, post.ID)
	assert.True(t, models.IsNotFound(err))
	_, err = e.store.Comments.GetByID(ctx, c.ID)
	assert.True(t, models.IsNotFound(err))
	_, err = e.store.Replies.GetByID(ctx, nested.ID)
	assert.True(t, models.IsNotFound(err))

	var likes int64
	require.NoError(t, e.store.DB().Model(&models.CommentLike{}).Count(&likes).Error)
	assert.Zero(t, likes)
	require.NoError(t, e.store.DB().Model(&models.PostLike{}).Count(&likes).Error)
	assert.Zero(t, likes)
}

func TestReplyService_DeleteRemovesSubtree(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, e.store.DB(), true)
	post := testutil.CreatePost(t, e.store.DB(), author, true)

	c, err := e.comments.Create(ctx, author.ID, post.UUID.String(), "Comment")
	require.NoError(t, err)
	r, err := e.replies.Create(ctx, author.ID, models.CommentParent(c.ID), "Reply")
	require.NoError(t, err)
	nested, err := e.replies.Create(ctx, author.ID, models.ReplyParent(r.ID), "Nested")
	require.NoError(t, err)

	require.NoError(t, e.replies.Delete(ctx, author.ID, r.UUID.String()))

	_, err = e.store.Replies.GetByID(ctx, nested.ID)
	assert.True(t, models.IsNotFound(err))
	comment, err := e.store.Comments.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Zero(t, comment.RepliesCount)
}

func TestDraftThreadsAreHiddenFromOthers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, e.store.DB(), true)
	other := testutil.CreateUser(t, e.store.DB(), true)

	draft, err := e.posts.Create(ctx, author.ID, PostInput{Title: strPtr("Draft"), Content: strPtr("Body")})
	require.NoError(t, err)
	c, err := e.comments.Create(ctx, author.ID, draft.UUID.String(), "Note to self")
	require.NoError(t, err)
	r, err := e.replies.Create(ctx, author.ID, models.CommentParent(c.ID), "Reply to self")
	require.NoError(t, err)
	nested, err := e.replies.Create(ctx, author.ID, models.ReplyParent(r.ID), "Deeper")
	require.NoError(t, err)
	commentLike, err := e.likes.LikeComment(ctx, author.ID, models.CommentParent(c.ID))
	require.NoError(t, err)
	postLike, err := e.likes.LikePost(ctx, author.ID, draft.UUID.String())
	require.NoError(t, err)

	for _, viewer := range []uint{other.ID, 0} {
		_, err = e.replies.List(ctx, viewer, models.CommentParent(c.ID), Page{})
		assert.True(t, models.IsNotFound(err))
		_, err = e.replies.Get(ctx, viewer, nested.UUID.String())
		assert.True(t, models.IsNotFound(err))
		_, err = e.likes.ListCommentLikes(ctx, viewer, models.ReplyParent(r.ID), Page{})
		assert.True(t, models.IsNotFound(err))
		_, err = e.likes.GetCommentLike(ctx, viewer, commentLike.UUID.String())
		assert.True(t, models.IsNotFound(err))
		_, err = e.likes.GetPostLike(ctx, viewer, postLike.UUID.String())
		assert.True(t, models.IsNotFound(err))
	}

	_, err = e.replies.Create(ctx, other.ID, models.ReplyParent(nested.ID), "Sneaking in")
	assert.True(t, models.IsNotFound(err))
	_, err = e.likes.LikeComment(ctx, other.ID, models.CommentParent(c.ID))
	assert.True(t, models.IsNotFound(err))
	assert.Equal(t, 1, e.rec.count("comment_liked"))

	got, err := e.replies.Get(ctx, author.ID, nested.UUID.String())
	require.NoError(t, err)
	assert.Equal(t, "Deeper", got.Content)
	_, err = e.likes.GetCommentLike(ctx, author.ID, commentLike.UUID.String())
	assert.NoError(t, err)

	_, err = e.posts.Update(ctx, author.ID, draft.UUID.String(), PostInput{Published: boolPtr(true)})
	require.NoError(t, err)

	_, err = e.replies.Get(ctx, other.ID, nested.UUID.String())
	assert.NoError(t, err)
	_, err = e.likes.LikeComment(ctx, other.ID, models.ReplyParent(nested.ID))
	assert.NoError(t, err)
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestCommentService_CounterFailureKeepsWrite(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, e.store.DB(), true)
	post := testutil.CreatePost(t, e.store.DB(), author, true)

	require.NoError(t, e.store.DB().Exec(`CREATE TRIGGER block_comments_count
		BEFORE UPDATE OF comments_count ON posts
		BEGIN SELECT RAISE(ABORT, 'comments_count is read-only'); END`).Error)

	var logs bytes.Buffer
	prev := middleware.Logger
	middleware.Logger = slog.New(slog.NewTextHandler(&logs, nil))
	t.Cleanup(func() { middleware.Logger = prev })

	failures := observability.CounterMaintenanceFailures.WithLabelValues(repository.PostCommentsCounter(post.ID).Name())
	before := counterValue(t, failures)

	comment, err := e.comments.Create(ctx, author.ID, post.UUID.String(), "Still saved")
	require.NoError(t, err)

	stored, err := e.store.Comments.GetByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "Still saved", stored.Content)
	assert.Zero(t, e.reload(t, post).CommentsCount)
	assert.Equal(t, before+1, counterValue(t, failures))
	assert.Contains(t, logs.String(), "counter maintenance failed")
	assert.Equal(t, 1, e.rec.count("comment_created"))
}

func TestDeletes_AreTraced(t *testing.T) {
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	prev := observability.Tracer
	observability.Tracer = tp.Tracer("test")
	t.Cleanup(func() {
		observability.Tracer = prev
		_ = tp.Shutdown(context.Background())
	})

	e := newEnv(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, e.store.DB(), true)
	reader := testutil.CreateUser(t, e.store.DB(), true)
	post := testutil.CreatePost(t, e.store.DB(), author, true)

	c, err := e.comments.Create(ctx, author.ID, post.UUID.String(), "Comment")
	require.NoError(t, err)
	r, err := e.replies.Create(ctx, reader.ID, models.CommentParent(c.ID), "Reply")
	require.NoError(t, err)
	postLike, err := e.likes.LikePost(ctx, reader.ID, post.UUID.String())
	require.NoError(t, err)
	commentLike, err := e.likes.LikeComment(ctx, reader.ID, models.CommentParent(c.ID))
	require.NoError(t, err)

	require.NoError(t, e.likes.DeletePostLike(ctx, reader.ID, postLike.UUID.String()))
	require.NoError(t, e.likes.DeleteCommentLike(ctx, reader.ID, commentLike.UUID.String()))
	assert.ErrorIs(t, e.replies.Delete(ctx, author.ID, r.UUID.String()), models.ErrNotOwner)
	require.NoError(t, e.replies.Delete(ctx, reader.ID, r.UUID.String()))

	var names []string
	failed := map[string]bool{}
	for _, s := range spans.Ended() {
		names = append(names, s.Name())
		if s.Status().Code == codes.Error {
			failed[s.Name()] = true
		}
	}
	assert.Contains(t, names, "like.DeletePost")
	assert.Contains(t, names, "like.DeleteComment")
	assert.Contains(t, names, "reply.Delete")
	assert.True(t, failed["reply.Delete"])
}
