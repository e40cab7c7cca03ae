package models

import "gorm.io/gorm"

// Post is a blog entry. Drafts are visible to their author only.
type Post struct {
	Base
	UserID        uint   `gorm:"not null;index" json:"-"`
	User          *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Title         string `gorm:"size:255;not null" json:"title"`
	Slug          string `gorm:"size:300;uniqueIndex;not null" json:"slug"`
	HeaderImage   string `json:"header_image"`
	Content       string `gorm:"type:text;not null" json:"content"`
	Tags          string `json:"-"`
	Published     bool   `gorm:"not null;default:false;index" json:"published"`
	LikesCount    int    `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount int    `gorm:"not null;default:0" json:"comments_count"`
}

// TagList returns the tags as a list.
func (p *Post) TagList() []string {
	return ParseList(p.Tags)
}

// VisibleTo reports whether viewerID may read the post. viewerID 0 is anonymous.
func (p *Post) VisibleTo(viewerID uint) bool {
	return p.Published || (viewerID != 0 && p.UserID == viewerID)
}

// Comment is a top-level response to a post.
type Comment struct {
	Base
	UserID       uint   `gorm:"not null;index" json:"-"`
	User         *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	PostID       uint   `gorm:"not null;index" json:"-"`
	Post         *Post  `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Content      string `gorm:"type:text;not null" json:"content"`
	LikesCount   int    `gorm:"not null;default:0" json:"likes_count"`
	RepliesCount int    `gorm:"not null;default:0" json:"replies_count"`
}

// Reply answers either a comment or another reply, never both.
type Reply struct {
	Base
	UserID          uint   `gorm:"not null;index" json:"-"`
	User            *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	ParentCommentID *uint  `gorm:"index" json:"-"`
	ParentReplyID   *uint  `gorm:"index" json:"-"`
	Content         string `gorm:"type:text;not null" json:"content"`
	LikesCount      int    `gorm:"not null;default:0" json:"likes_count"`
	RepliesCount    int    `gorm:"not null;default:0" json:"replies_count"`
}

// NewReply builds an unsaved reply under parent.
func NewReply(userID uint, parent ParentRef, content string) *Reply {
	r := &Reply{UserID: userID, Content: content}
	r.ParentCommentID, r.ParentReplyID = parent.columns()
	return r
}

// Parent returns the reply's parent. It fails when the columns are inconsistent.
func (r *Reply) Parent() (ParentRef, error) {
	return parentFromColumns(r.ParentCommentID, r.ParentReplyID)
}

// BeforeCreate rejects rows with both or neither parent column set.
func (r *Reply) BeforeCreate(tx *gorm.DB) error {
	if _, err := r.Parent(); err != nil {
		return err
	}
	return r.Base.BeforeCreate(tx)
}
