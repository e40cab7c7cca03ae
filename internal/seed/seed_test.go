package seed

import (
	"context"
	"testing"

	"inkwell/internal/auth"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallOptions() Options {
	return Options{
		NumUsers:    6,
		NumPosts:    8,
		MaxFollows:  3,
		MaxComments: 3,
		DraftRatio:  0.25,
		ShouldClean: true,
		RandomSeed:  42,
	}
}

func count(t *testing.T, s *Seeder, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(model).Count(&n).Error)
	return n
}

func TestSeeder_RunKeepsCountersConsistent(t *testing.T) {
	db := testutil.NewTestDB(t)
	s, err := NewSeeder(db, smallOptions())
	require.NoError(t, err)

	sum, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, sum.Users)
	assert.Equal(t, 8, sum.Posts)
	assert.EqualValues(t, sum.Users, count(t, s, &models.User{}))
	assert.EqualValues(t, sum.Users, count(t, s, &models.Profile{}))
	assert.EqualValues(t, sum.Comments, count(t, s, &models.Comment{}))
	assert.EqualValues(t, sum.Replies, count(t, s, &models.Reply{}))
	assert.EqualValues(t, sum.PostLikes, count(t, s, &models.PostLike{}))
	assert.EqualValues(t, sum.CommentLikes, count(t, s, &models.CommentLike{}))
	assert.EqualValues(t, sum.Follows, count(t, s, &models.ProfileFollower{}))
	assert.EqualValues(t, sum.Follows, count(t, s, &models.ProfileFollowing{}))

	var posts []models.Post
	require.NoError(t, db.Find(&posts).Error)
	for _, p := range posts {
		var comments, likes int64
		require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", p.ID).Count(&comments).Error)
		require.NoError(t, db.Model(&models.PostLike{}).Where("post_id = ?", p.ID).Count(&likes).Error)
		assert.EqualValues(t, comments, p.CommentsCount, "post %s comments", p.Slug)
		assert.EqualValues(t, likes, p.LikesCount, "post %s likes", p.Slug)
	}

	var comments []models.Comment
	require.NoError(t, db.Find(&comments).Error)
	for _, c := range comments {
		var replies int64
		require.NoError(t, db.Model(&models.Reply{}).Where("parent_comment_id = ?", c.ID).Count(&replies).Error)
		assert.EqualValues(t, replies, c.RepliesCount)
	}
}

func TestSeeder_AccountsCanLogIn(t *testing.T) {
	db := testutil.NewTestDB(t)
	s, err := NewSeeder(db, smallOptions())
	require.NoError(t, err)
	_, err = s.Run(context.Background())
	require.NoError(t, err)

	var u models.User
	require.NoError(t, db.First(&u).Error)
	assert.True(t, u.IsVerified)
	assert.True(t, auth.CheckPassword(u.Password, DefaultPassword))
}

func TestSeeder_CleanRunReplacesData(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	first, err := NewSeeder(db, smallOptions())
	require.NoError(t, err)
	_, err = first.Run(ctx)
	require.NoError(t, err)

	opts := smallOptions()
	opts.RandomSeed = 7
	second, err := NewSeeder(db, opts)
	require.NoError(t, err)
	sum, err := second.Run(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, sum.Users, count(t, second, &models.User{}))
	assert.EqualValues(t, sum.Posts, count(t, second, &models.Post{}))
}

func TestFactory_Tags(t *testing.T) {
	f, err := NewFactory(repository.NewStore(nil), 1, "")
	require.NoError(t, err)

	tags := f.Tags(4)
	assert.Len(t, tags, 4)
	seen := map[string]bool{}
	for _, tag := range tags {
		assert.False(t, seen[tag], "duplicate tag %s", tag)
		seen[tag] = true
	}
	assert.Len(t, f.Tags(100), len(tagPool))
}

func TestFactory_PostInputIsValid(t *testing.T) {
	f, err := NewFactory(repository.NewStore(nil), 1, "")
	require.NoError(t, err)

	in := f.PostInput(true)
	require.NotNil(t, in.Title)
	require.NotNil(t, in.Content)
	assert.NotEmpty(t, *in.Title)
	assert.NotEmpty(t, *in.Content)
	assert.True(t, *in.Published)
	assert.NotEmpty(t, in.Tags)
}
