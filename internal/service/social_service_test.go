package service

import (
	"context"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocialService_FollowLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ada := testutil.CreateUser(t, e.store.DB(), true)
	bob := testutil.CreateUser(t, e.store.DB(), true)

	require.NoError(t, e.social.Follow(ctx, ada.ID, bob.UUID.String()))
	assert.ErrorIs(t, e.social.Follow(ctx, ada.ID, bob.UUID.String()), models.ErrAlreadyFollowing)
	assert.Equal(t, 1, e.rec.count("user_followed"))

	following, err := e.social.IsFollowing(ctx, ada.ID, bob.UUID.String())
	require.NoError(t, err)
	assert.True(t, following)

	followers, err := e.social.Followers(ctx, bob.UUID.String(), Page{})
	require.NoError(t, err)
	require.Len(t, followers.Items, 1)
	assert.Equal(t, ada.ID, followers.Items[0].ID)

	followed, err := e.social.Following(ctx, ada.UUID.String(), Page{})
	require.NoError(t, err)
	require.Len(t, followed.Items, 1)
	assert.Equal(t, bob.ID, followed.Items[0].ID)

	require.NoError(t, e.social.Unfollow(ctx, ada.ID, bob.UUID.String()))
	assert.ErrorIs(t, e.social.Unfollow(ctx, ada.ID, bob.UUID.String()), models.ErrAlreadyUnfollowed)
}

func TestSocialService_CannotFollowSelf(t *testing.T) {
	e := newEnv(t)
	ada := testutil.CreateUser(t, e.store.DB(), true)

	err := e.social.Follow(context.Background(), ada.ID, ada.UUID.String())
	assert.ErrorIs(t, err, models.ErrCannotFollowSelf)
}

func TestSocialService_DirectoryHidesUnverified(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ada := testutil.CreateUser(t, e.store.DB(), true, func(u *models.User) { u.FirstName = "Ada" })
	ghost := testutil.CreateUser(t, e.store.DB(), false)

	_, err := e.social.GetPerson(ctx, ghost.UUID.String())
	assert.True(t, models.IsNotFound(err))
	assert.True(t, models.IsNotFound(e.social.Follow(ctx, ada.ID, ghost.UUID.String())))

	people, err := e.social.ListPeople(ctx, repository.PeopleFilter{}, Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, people.Total)

	person, err := e.social.GetPerson(ctx, ada.UUID.String())
	require.NoError(t, err)
	assert.Equal(t, "Ada", person.User.FirstName)
	assert.NotNil(t, person.Profile)
}
