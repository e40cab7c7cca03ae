package events

import "inkwell/internal/models"

// AccountRegistered fires after a new account and its profile are stored.
type AccountRegistered struct {
	User        models.User
	VerifyToken string
}

// VerificationRequested fires when an unverified user asks for a fresh link.
type VerificationRequested struct {
	User        models.User
	VerifyToken string
}

// AccountVerified fires after is_verified flips to true.
type AccountVerified struct {
	User models.User
}

// PasswordResetRequested fires after a reset token row is created.
type PasswordResetRequested struct {
	User  models.User
	Token string
}

// PasswordChanged fires after a reset token is consumed.
type PasswordChanged struct {
	User models.User
}

// UserFollowed fires after Actor starts following Target.
type UserFollowed struct {
	Actor  models.User
	Target models.User
}

// CommentCreated fires after a comment on Post is stored.
type CommentCreated struct {
	Comment models.Comment
	Post    models.Post
	Actor   models.User
}

// ReplyCreated fires after a reply is stored. ParentAuthorID owns the parent node.
type ReplyCreated struct {
	Reply          models.Reply
	ParentAuthorID uint
	Actor          models.User
}

// PostLiked fires after a post like is stored.
type PostLiked struct {
	Like  models.PostLike
	Post  models.Post
	Actor models.User
}

// CommentLiked fires after a like on a comment or reply is stored.
type CommentLiked struct {
	Like           models.CommentLike
	ParentAuthorID uint
	Actor          models.User
}

func (AccountRegistered) EventName() string      { return "account_registered" }
func (VerificationRequested) EventName() string  { return "verification_requested" }
func (AccountVerified) EventName() string        { return "account_verified" }
func (PasswordResetRequested) EventName() string { return "password_reset_requested" }
func (PasswordChanged) EventName() string        { return "password_changed" }
func (UserFollowed) EventName() string           { return "user_followed" }
func (CommentCreated) EventName() string         { return "comment_created" }
func (ReplyCreated) EventName() string           { return "reply_created" }
func (PostLiked) EventName() string              { return "post_liked" }
func (CommentLiked) EventName() string           { return "comment_liked" }
