package server

import (
	"time"

	"inkwell/internal/models"
	"inkwell/internal/service"
)

const truncateWords = 25

// UserSummary is the public card of an account.
type UserSummary struct {
	UUID       string `json:"uuid"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Profession string `json:"profession"`
	Country    string `json:"country"`
	ProfilePic string `json:"profile_pic"`
}

func userSummary(u *models.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		UUID:       u.UUID.String(),
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Profession: u.Profession,
		Country:    u.Country,
		ProfilePic: u.ProfilePic,
	}
}

// ProfileView is the social part of an account.
type ProfileView struct {
	Bio               string   `json:"bio"`
	Website           string   `json:"website"`
	Interests         []string `json:"interests"`
	ProfileIsComplete bool     `json:"profile_is_complete"`
}

func profileView(p *models.Profile) *ProfileView {
	if p == nil {
		return nil
	}
	interests := p.InterestList()
	if interests == nil {
		interests = []string{}
	}
	return &ProfileView{
		Bio:               p.Bio,
		Website:           p.Website,
		Interests:         interests,
		ProfileIsComplete: p.ProfileIsComplete,
	}
}

// AccountView is the signed-in user's own account.
type AccountView struct {
	UserSummary
	Email          string       `json:"email"`
	Phone          string       `json:"phone"`
	IsVerified     bool         `json:"is_verified"`
	LastLogout     *time.Time   `json:"last_logout"`
	Profile        *ProfileView `json:"profile"`
	FollowersCount int64        `json:"followers_count"`
	FollowingCount int64        `json:"following_count"`
	PostsCount     int64        `json:"posts_count"`
}

func accountView(v *service.AccountView) AccountView {
	return AccountView{
		UserSummary:    *userSummary(v.User),
		Email:          v.User.Email,
		Phone:          v.User.Phone,
		IsVerified:     v.User.IsVerified,
		LastLogout:     v.User.LastLogout,
		Profile:        profileView(v.Profile),
		FollowersCount: v.FollowerCount,
		FollowingCount: v.FollowingCount,
		PostsCount:     v.PostCount,
	}
}

// PersonView is another user's public profile.
type PersonView struct {
	UserSummary
	Profile *ProfileView `json:"profile"`
}

// PostView is a post as served to clients. Lists carry truncated_content,
// detail responses carry content.
type PostView struct {
	UUID             string       `json:"uuid"`
	Author           *UserSummary `json:"author"`
	Title            string       `json:"title"`
	Slug             string       `json:"slug"`
	HeaderImage      string       `json:"header_image"`
	Content          string       `json:"content,omitempty"`
	TruncatedContent string       `json:"truncated_content,omitempty"`
	Tags             []string     `json:"tags"`
	Published        bool         `json:"published"`
	LikesCount       int          `json:"likes_count"`
	CommentsCount    int          `json:"comments_count"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

func postView(p *models.Post, summary bool) PostView {
	tags := p.TagList()
	if tags == nil {
		tags = []string{}
	}
	v := PostView{
		UUID:          p.UUID.String(),
		Author:        userSummary(p.User),
		Title:         p.Title,
		Slug:          p.Slug,
		HeaderImage:   p.HeaderImage,
		Tags:          tags,
		Published:     p.Published,
		LikesCount:    p.LikesCount,
		CommentsCount: p.CommentsCount,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if summary {
		v.TruncatedContent = models.TruncateWords(p.Content, truncateWords)
	} else {
		v.Content = p.Content
	}
	return v
}

// NodeView is a comment or a reply.
type NodeView struct {
	UUID         string       `json:"uuid"`
	Author       *UserSummary `json:"author"`
	Content      string       `json:"content"`
	LikesCount   int          `json:"likes_count"`
	RepliesCount int          `json:"replies_count"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func commentView(c *models.Comment) NodeView {
	return NodeView{
		UUID:         c.UUID.String(),
		Author:       userSummary(c.User),
		Content:      c.Content,
		LikesCount:   c.LikesCount,
		RepliesCount: c.RepliesCount,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func replyView(r *models.Reply) NodeView {
	return NodeView{
		UUID:         r.UUID.String(),
		Author:       userSummary(r.User),
		Content:      r.Content,
		LikesCount:   r.LikesCount,
		RepliesCount: r.RepliesCount,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// LikeView is a like on a post, comment or reply.
type LikeView struct {
	UUID      string       `json:"uuid"`
	User      *UserSummary `json:"user"`
	CreatedAt time.Time    `json:"created_at"`
}

// PageView wraps one page of a listing.
type PageView[T any] struct {
	Count   int64 `json:"count"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	Results []T   `json:"results"`
}

func pageOf[M, V any](l *service.List[M], view func(*M) V) PageView[V] {
	results := make([]V, 0, len(l.Items))
	for i := range l.Items {
		results = append(results, view(&l.Items[i]))
	}
	return PageView[V]{Count: l.Total, Limit: l.Page.Limit, Offset: l.Page.Offset, Results: results}
}
