package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantIs   error
	}{
		{"not found", gorm.ErrRecordNotFound, models.CodeNotFound, nil},
		{"postgres unique violation", &pgconn.PgError{Code: "23505"}, models.CodeConflict, ErrDuplicate},
		{"sqlite unique violation", errors.New("UNIQUE constraint failed: users.email"), models.CodeConflict, ErrDuplicate},
		{"other postgres error", &pgconn.PgError{Code: "23503"}, models.CodeInternal, nil},
		{"hook error passes through", models.ErrInvalidParent, models.CodeValidation, models.ErrInvalidParent},
		{"driver failure", errors.New("connection reset"), models.CodeInternal, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := translate(tt.err, "Thing", 1)
			appErr, ok := models.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, appErr.Code)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
	assert.NoError(t, translate(nil, "Thing", 1))
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.User{Email: "a@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCounterRepository_SQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCounterRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET "likes_count"=likes_count + $1 WHERE id = $2`)).
		WithArgs(1, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	require.NoError(t, repo.Increment(ctx, PostLikesCounter(7)))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "replies" SET "replies_count"=replies_count - $1 WHERE id = $2 AND replies_count >= $3`)).
		WithArgs(1, 3, 1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	require.NoError(t, repo.Decrement(ctx, ParentRepliesCounter(models.ReplyParent(3))))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "comments" SET "likes_count"=likes_count + $1 WHERE id = $2`)).
		WithArgs(1, 99).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	assert.Error(t, repo.Increment(ctx, ParentLikesCounter(models.CommentParent(99))), "incrementing a missing row is an error")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCounterNames(t *testing.T) {
	assert.Equal(t, "posts.comments_count", PostCommentsCounter(1).Name())
	assert.Equal(t, "comments.replies_count", ParentRepliesCounter(models.CommentParent(1)).Name())
	assert.Equal(t, "replies.likes_count", ParentLikesCounter(models.ReplyParent(1)).Name())
}

func TestCounterRepository_NeverNegative(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, true)
	post := testutil.CreatePost(t, db, author, true)

	require.NoError(t, store.Counters.Increment(ctx, PostCommentsCounter(post.ID)))
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Counters.Decrement(ctx, PostCommentsCounter(post.ID)))
	}

	got, err := store.Posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CommentsCount)
}

func TestUserRepository_ListVerified(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	testutil.CreateUser(t, db, true, func(u *models.User) { u.FirstName, u.Country = "Grace", "USA" })
	testutil.CreateUser(t, db, true, func(u *models.User) { u.LastName, u.Country = "Graceful", "UK" })
	testutil.CreateUser(t, db, false, func(u *models.User) { u.FirstName = "Grace" })
	testutil.CreateUser(t, db, true, func(u *models.User) { u.FirstName = "Alan" })

	users, total, err := repo.ListVerified(ctx, PeopleFilter{Name: "grace"}, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, users, 2)

	users, total, err = repo.ListVerified(ctx, PeopleFilter{Name: "GRACE", Country: "usa"}, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Grace", users[0].FirstName)

	_, total, err = repo.ListVerified(ctx, PeopleFilter{Name: "%"}, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total, "LIKE wildcards in input are literal")
}

func TestPostRepository_ListFilters(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	ada := testutil.CreateUser(t, db, true, func(u *models.User) { u.FirstName = "Ada" })
	bob := testutil.CreateUser(t, db, true, func(u *models.User) { u.FirstName = "Bob" })

	goPost := testutil.CreatePost(t, db, ada, true, func(p *models.Post) {
		p.Title, p.Tags, p.LikesCount = "Learning Go", "go, backend", 5
	})
	testutil.CreatePost(t, db, ada, true, func(p *models.Post) {
		p.Title, p.Tags, p.CommentsCount = "Rust notes", "rust", 9
	})
	draft := testutil.CreatePost(t, db, bob, false, func(p *models.Post) { p.Title, p.Tags = "Go draft", "go" })

	_, total, err := repo.List(ctx, PostFilter{}, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total, "anonymous viewers see published posts only")

	_, total, err = repo.List(ctx, PostFilter{ViewerID: bob.ID}, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total, "authors see their own drafts")

	posts, _, err := repo.List(ctx, PostFilter{Tags: []string{"GO"}}, 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, goPost.ID, posts[0].ID)
	require.NotNil(t, posts[0].User)
	assert.Equal(t, "Ada", posts[0].User.FirstName)

	_, total, err = repo.List(ctx, PostFilter{Tags: []string{"rust", "backend"}}, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total, "tags match any of")

	_, total, err = repo.List(ctx, PostFilter{Tags: []string{"back"}}, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total, "tags match whole entries")

	_, total, err = repo.List(ctx, PostFilter{ViewerID: bob.ID, Title: "go", Name: "bob"}, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total, "filters combine")

	_, total, err = repo.List(ctx, PostFilter{AuthorUUID: &bob.UUID}, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total, "drafts stay hidden when filtering by author")

	posts, _, err = repo.List(ctx, PostFilter{ViewerID: bob.ID, AuthorUUID: &bob.UUID}, 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, draft.ID, posts[0].ID)

	posts, _, err = repo.List(ctx, PostFilter{Order: OrderPopular}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, "Learning Go", posts[0].Title)

	posts, _, err = repo.List(ctx, PostFilter{Order: OrderRated}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, "Rust notes", posts[0].Title)
}

func TestPostRepository_SlugsWithPrefix(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	author := testutil.CreateUser(t, db, true)

	for _, s := range []string{"hello-world", "hello-world-1", "hello-world-2", "hello-worlds", "hello"} {
		s := s
		testutil.CreatePost(t, db, author, true, func(p *models.Post) { p.Slug = s })
	}

	slugs, err := repo.SlugsWithPrefix(context.Background(), "hello-world")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"hello-world", "hello-world-1", "hello-world-2"}, slugs)
}

func TestReplyRepository_SubtreeIDs(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, true)
	post := testutil.CreatePost(t, db, u, true)
	comment := &models.Comment{UserID: u.ID, PostID: post.ID, Content: "root"}
	require.NoError(t, store.Comments.Create(ctx, comment))

	mk := func(parent models.ParentRef) *models.Reply {
		r := models.NewReply(u.ID, parent, "r")
		require.NoError(t, store.Replies.Create(ctx, r))
		return r
	}
	r1 := mk(models.CommentParent(comment.ID))
	r2 := mk(models.CommentParent(comment.ID))
	r11 := mk(models.ReplyParent(r1.ID))
	r111 := mk(models.ReplyParent(r11.ID))

	ids, err := store.Replies.SubtreeIDs(ctx, []uint{comment.ID}, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{r1.ID, r2.ID, r11.ID, r111.ID}, ids)

	ids, err = store.Replies.SubtreeIDs(ctx, nil, []uint{r1.ID})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{r11.ID, r111.ID}, ids)
}

func TestReplyRepository_PostIDForParent(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, true)
	post := testutil.CreatePost(t, db, u, false)
	comment := &models.Comment{UserID: u.ID, PostID: post.ID, Content: "root"}
	require.NoError(t, store.Comments.Create(ctx, comment))
	r1 := models.NewReply(u.ID, models.CommentParent(comment.ID), "r1")
	require.NoError(t, store.Replies.Create(ctx, r1))
	r2 := models.NewReply(u.ID, models.ReplyParent(r1.ID), "r2")
	require.NoError(t, store.Replies.Create(ctx, r2))

	for _, parent := range []models.ParentRef{
		models.CommentParent(comment.ID),
		models.ReplyParent(r1.ID),
		models.ReplyParent(r2.ID),
	} {
		got, err := store.Replies.PostIDForParent(ctx, parent)
		require.NoError(t, err)
		assert.Equal(t, post.ID, got)
	}

	_, err := store.Replies.PostIDForParent(ctx, models.ReplyParent(9999))
	assert.True(t, models.IsNotFound(err))
	_, err = store.Replies.PostIDForParent(ctx, models.ParentRef{})
	assert.ErrorIs(t, err, models.ErrInvalidParent)
}

func TestUserRepository_GetByEmailNotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")

	appErr, ok := models.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
	assert.Equal(t, "No account is registered with this email address", appErr.Message)
}

func TestReplyRepository_RejectsInvalidParent(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewReplyRepository(db)
	u := testutil.CreateUser(t, db, true)

	one, two := uint(1), uint(2)
	both := &models.Reply{UserID: u.ID, ParentCommentID: &one, ParentReplyID: &two, Content: "x"}
	assert.ErrorIs(t, repo.Create(context.Background(), both), models.ErrInvalidParent)

	neither := &models.Reply{UserID: u.ID, Content: "x"}
	assert.ErrorIs(t, repo.Create(context.Background(), neither), models.ErrInvalidParent)
}

func TestLikeRepository_UniquePerActor(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, true)
	post := testutil.CreatePost(t, db, u, true)

	require.NoError(t, repo.CreatePostLike(ctx, &models.PostLike{UserID: u.ID, PostID: post.ID}))
	assert.ErrorIs(t, repo.CreatePostLike(ctx, &models.PostLike{UserID: u.ID, PostID: post.ID}), ErrDuplicate)

	require.NoError(t, repo.CreateCommentLike(ctx, models.NewCommentLike(u.ID, models.CommentParent(1))))
	require.NoError(t, repo.CreateCommentLike(ctx, models.NewCommentLike(u.ID, models.ReplyParent(1))),
		"a comment and a reply with the same id are different targets")
	assert.ErrorIs(t, repo.CreateCommentLike(ctx, models.NewCommentLike(u.ID, models.ReplyParent(1))), ErrDuplicate)
}

func TestProfileRepository_FollowEdges(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	a := testutil.CreateUser(t, db, true)
	b := testutil.CreateUser(t, db, true)
	pa, err := store.Profiles.GetByUserID(ctx, a.ID)
	require.NoError(t, err)
	pb, err := store.Profiles.GetByUserID(ctx, b.ID)
	require.NoError(t, err)

	require.NoError(t, store.Transaction(ctx, func(tx *Store) error {
		return tx.Profiles.AddFollow(ctx, pa, pb)
	}))

	following, err := store.Profiles.IsFollowing(ctx, pa, b.ID)
	require.NoError(t, err)
	assert.True(t, following)

	followers, total, err := store.Profiles.Followers(ctx, pb, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, a.ID, followers[0].ID)

	n, err := store.Profiles.CountFollowing(ctx, pa.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	removed, err := store.Profiles.RemoveFollow(ctx, pa, pb)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = store.Profiles.RemoveFollow(ctx, pa, pb)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestStore_TransactionRollsBack(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	boom := fmt.Errorf("boom")
	err := store.Transaction(ctx, func(tx *Store) error {
		require.NoError(t, tx.Users.Create(ctx, &models.User{Email: "rollback@example.com", Password: "x"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.Users.GetByEmail(ctx, "rollback@example.com")
	assert.True(t, models.IsNotFound(err))
}
