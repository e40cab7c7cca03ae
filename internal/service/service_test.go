package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"inkwell/internal/auth"
	"inkwell/internal/events"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-bytes-long"

// recorder collects every event published on a bus.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) add(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func record[E events.Event](bus *events.Bus, r *recorder) {
	events.Subscribe(bus, func(_ context.Context, e E) { r.add(e) })
}

func (r *recorder) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.EventName() == name {
			n++
		}
	}
	return n
}

type env struct {
	store    *repository.Store
	bus      *events.Bus
	rec      *recorder
	accounts *AccountService
	social   *SocialService
	posts    *PostService
	comments *CommentService
	replies  *ReplyService
	likes    *LikeService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	store := repository.NewStore(testutil.NewTestDB(t))
	bus := events.NewBus()
	rec := &recorder{}
	record[events.AccountRegistered](bus, rec)
	record[events.VerificationRequested](bus, rec)
	record[events.AccountVerified](bus, rec)
	record[events.PasswordResetRequested](bus, rec)
	record[events.PasswordChanged](bus, rec)
	record[events.UserFollowed](bus, rec)
	record[events.CommentCreated](bus, rec)
	record[events.ReplyCreated](bus, rec)
	record[events.PostLiked](bus, rec)
	record[events.CommentLiked](bus, rec)

	return &env{
		store: store,
		bus:   bus,
		rec:   rec,
		accounts: NewAccountService(store,
			auth.NewTokenManager(testSecret, 15*time.Minute, 24*time.Hour),
			auth.NewVerificationSigner(testSecret, 24*time.Hour),
			auth.NewRevoker(nil),
			bus,
			10*time.Minute,
		),
		social:   NewSocialService(store, bus),
		posts:    NewPostService(store),
		comments: NewCommentService(store, bus),
		replies:  NewReplyService(store, bus),
		likes:    NewLikeService(store, bus),
	}
}

func (e *env) reload(t *testing.T, post *models.Post) *models.Post {
	t.Helper()
	p, err := e.store.Posts.GetByID(context.Background(), post.ID)
	require.NoError(t, err)
	return p
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestPage_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   Page
		want Page
	}{
		{"defaults", Page{}, Page{Limit: DefaultPageSize}},
		{"clamped", Page{Limit: 1000, Offset: 5}, Page{Limit: MaxPageSize, Offset: 5}},
		{"negative offset", Page{Limit: 10, Offset: -3}, Page{Limit: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestUniqueSlug(t *testing.T) {
	assert.Equal(t, "hello-world", uniqueSlug("hello-world", nil))
	assert.Equal(t, "hello-world-1", uniqueSlug("hello-world", []string{"hello-world"}))
	assert.Equal(t, "hello-world-2", uniqueSlug("hello-world", []string{"hello-world", "hello-world-1", "hello-world-3"}))
	assert.Equal(t, "post", slugBase("!!!"))
	assert.Equal(t, "hello-world", slugBase("  Hello, World! "))
}
