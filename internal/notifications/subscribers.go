package notifications

import (
	"context"

	"inkwell/internal/events"
	"inkwell/internal/featureflags"
	"inkwell/internal/models"
)

// RegisterMail subscribes the account lifecycle emails to bus.
func RegisterMail(bus *events.Bus, n Notifier, links Links) {
	events.Subscribe(bus, func(_ context.Context, e events.AccountRegistered) {
		m := VerificationMail(e.User.FirstName, links.VerifyURL(e.User.UUID.String(), e.VerifyToken))
		n.Notify(e.User.Email, m.Subject, m.Body)
	})
	events.Subscribe(bus, func(_ context.Context, e events.VerificationRequested) {
		m := VerificationMail(e.User.FirstName, links.VerifyURL(e.User.UUID.String(), e.VerifyToken))
		n.Notify(e.User.Email, m.Subject, m.Body)
	})
	events.Subscribe(bus, func(_ context.Context, e events.AccountVerified) {
		m := VerifiedMail(e.User.FirstName)
		n.Notify(e.User.Email, m.Subject, m.Body)
	})
	events.Subscribe(bus, func(_ context.Context, e events.PasswordResetRequested) {
		m := ResetMail(e.User.FirstName, links.ResetURL(e.User.UUID.String(), e.Token), links.ResetTTL)
		n.Notify(e.User.Email, m.Subject, m.Body)
	})
	events.Subscribe(bus, func(_ context.Context, e events.PasswordChanged) {
		m := PasswordChangedMail(e.User.FirstName)
		n.Notify(e.User.Email, m.Subject, m.Body)
	})
}

// Pusher delivers a realtime event to a user's open connections.
type Pusher interface {
	Push(userID uint, eventType string, payload any)
}

// Actor identifies who triggered a realtime event.
type Actor struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

func actorOf(u models.User) Actor {
	return Actor{UUID: u.UUID.String(), Name: u.FullName()}
}

// RegisterRealtime subscribes social events to p. Events about the recipient's own
// actions are not pushed, and nothing is pushed while the flag is off for the recipient.
func RegisterRealtime(bus *events.Bus, p Pusher, flags *featureflags.Manager) {
	push := func(recipient, actor uint, eventType string, payload any) {
		if recipient == 0 || recipient == actor {
			return
		}
		if !flags.Enabled(featureflags.RealtimeNotifications, recipient) {
			return
		}
		p.Push(recipient, eventType, payload)
	}

	events.Subscribe(bus, func(_ context.Context, e events.UserFollowed) {
		push(e.Target.ID, e.Actor.ID, EventNewFollower, map[string]any{
			"actor": actorOf(e.Actor),
		})
	})
	events.Subscribe(bus, func(_ context.Context, e events.PostLiked) {
		push(e.Post.UserID, e.Actor.ID, EventPostLiked, map[string]any{
			"actor":     actorOf(e.Actor),
			"post_uuid": e.Post.UUID.String(),
			"post_slug": e.Post.Slug,
		})
	})
	events.Subscribe(bus, func(_ context.Context, e events.CommentCreated) {
		push(e.Post.UserID, e.Actor.ID, EventPostCommented, map[string]any{
			"actor":        actorOf(e.Actor),
			"post_uuid":    e.Post.UUID.String(),
			"comment_uuid": e.Comment.UUID.String(),
		})
	})
	events.Subscribe(bus, func(_ context.Context, e events.ReplyCreated) {
		push(e.ParentAuthorID, e.Actor.ID, EventCommentReplied, map[string]any{
			"actor":      actorOf(e.Actor),
			"reply_uuid": e.Reply.UUID.String(),
		})
	})
	events.Subscribe(bus, func(_ context.Context, e events.CommentLiked) {
		push(e.ParentAuthorID, e.Actor.ID, EventCommentLiked, map[string]any{
			"actor":     actorOf(e.Actor),
			"like_uuid": e.Like.UUID.String(),
		})
	})
}
