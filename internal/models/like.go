package models

import "gorm.io/gorm"

// PostLike records that a user likes a post. One per (user, post).
type PostLike struct {
	Base
	UserID uint  `gorm:"not null;uniqueIndex:idx_post_likes_user_post" json:"-"`
	User   *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	PostID uint  `gorm:"not null;uniqueIndex:idx_post_likes_user_post;index" json:"-"`
	Post   *Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

// CommentLike records that a user likes a comment or a reply. One per (user, target).
type CommentLike struct {
	Base
	UserID          uint  `gorm:"not null;uniqueIndex:idx_comment_likes_user_comment;uniqueIndex:idx_comment_likes_user_reply" json:"-"`
	User            *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	ParentCommentID *uint `gorm:"uniqueIndex:idx_comment_likes_user_comment;index" json:"-"`
	ParentReplyID   *uint `gorm:"uniqueIndex:idx_comment_likes_user_reply;index" json:"-"`
}

// NewCommentLike builds an unsaved like on parent.
func NewCommentLike(userID uint, parent ParentRef) *CommentLike {
	l := &CommentLike{UserID: userID}
	l.ParentCommentID, l.ParentReplyID = parent.columns()
	return l
}

// Parent returns the liked comment or reply.
func (l *CommentLike) Parent() (ParentRef, error) {
	return parentFromColumns(l.ParentCommentID, l.ParentReplyID)
}

// BeforeCreate rejects rows with both or neither parent column set.
func (l *CommentLike) BeforeCreate(tx *gorm.DB) error {
	if _, err := l.Parent(); err != nil {
		return err
	}
	return l.Base.BeforeCreate(tx)
}
