package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"inkwell/internal/events"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/service"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers int
	NumPosts int
	// MaxFollows caps how many accounts each user follows.
	MaxFollows int
	// MaxComments caps the top-level comments per published post.
	MaxComments int
	// DraftRatio is the share of posts left unpublished.
	DraftRatio  float64
	ShouldClean bool
	Password    string
	// RandomSeed makes runs reproducible when non-zero.
	RandomSeed int64
}

// DefaultOptions is a small but fully connected data set.
func DefaultOptions() Options {
	return Options{
		NumUsers:    20,
		NumPosts:    60,
		MaxFollows:  8,
		MaxComments: 5,
		DraftRatio:  0.1,
		ShouldClean: true,
	}
}

// Summary counts what a run created.
type Summary struct {
	Users        int
	Follows      int
	Posts        int
	Comments     int
	Replies      int
	PostLikes    int
	CommentLikes int
}

// Seeder writes demo data through the application services so every
// denormalized counter matches the rows behind it.
type Seeder struct {
	db       *gorm.DB
	opts     Options
	factory  *Factory
	social   *service.SocialService
	posts    *service.PostService
	comments *service.CommentService
	replies  *service.ReplyService
	likes    *service.LikeService
}

// NewSeeder creates a Seeder on db. Domain events are not delivered, so no
// email or realtime notification leaves the process.
func NewSeeder(db *gorm.DB, opts Options) (*Seeder, error) {
	store := repository.NewStore(db)
	factory, err := NewFactory(store, opts.RandomSeed, opts.Password)
	if err != nil {
		return nil, err
	}
	bus := events.NewBus()
	return &Seeder{
		db:       db,
		opts:     opts,
		factory:  factory,
		social:   service.NewSocialService(store, bus),
		posts:    service.NewPostService(store),
		comments: service.NewCommentService(store, bus),
		replies:  service.NewReplyService(store, bus),
		likes:    service.NewLikeService(store, bus),
	}, nil
}

// Run populates the database.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	log := middleware.Logger
	log.Info("starting database seeding", slog.Int("users", s.opts.NumUsers), slog.Int("posts", s.opts.NumPosts))

	if s.opts.ShouldClean {
		if err := s.ClearAll(ctx); err != nil {
			return nil, fmt.Errorf("clear data: %w", err)
		}
	}

	sum := &Summary{}
	users, err := s.seedUsers(ctx, sum)
	if err != nil {
		return sum, fmt.Errorf("failed to create users: %w", err)
	}
	if err := s.seedFollows(ctx, users, sum); err != nil {
		return sum, fmt.Errorf("failed to create follows: %w", err)
	}
	posts, err := s.seedPosts(ctx, users, sum)
	if err != nil {
		return sum, fmt.Errorf("failed to create posts: %w", err)
	}
	if err := s.seedEngagement(ctx, users, posts, sum); err != nil {
		return sum, fmt.Errorf("failed to create engagement: %w", err)
	}

	log.Info("database seeding completed",
		slog.Int("users", sum.Users),
		slog.Int("follows", sum.Follows),
		slog.Int("posts", sum.Posts),
		slog.Int("comments", sum.Comments),
		slog.Int("replies", sum.Replies),
		slog.Int("post_likes", sum.PostLikes),
		slog.Int("comment_likes", sum.CommentLikes),
	)
	return sum, nil
}

// ClearAll deletes every row, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	tables := []any{
		&models.CommentLike{},
		&models.PostLike{},
		&models.Reply{},
		&models.Comment{},
		&models.Post{},
		&models.ProfileFollowing{},
		&models.ProfileFollower{},
		&models.ResetToken{},
		&models.Profile{},
		&models.User{},
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range tables {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Seeder) seedUsers(ctx context.Context, sum *Summary) ([]*models.User, error) {
	users := make([]*models.User, 0, s.opts.NumUsers)
	for i := 0; i < s.opts.NumUsers; i++ {
		u, err := s.factory.CreateUser(ctx)
		if err != nil {
			return users, err
		}
		users = append(users, u)
		sum.Users++
	}
	return users, nil
}

func (s *Seeder) seedFollows(ctx context.Context, users []*models.User, sum *Summary) error {
	for _, actor := range users {
		n := s.factory.Intn(s.opts.MaxFollows + 1)
		for _, target := range s.pick(users, n) {
			if target.ID == actor.ID {
				continue
			}
			if err := s.social.Follow(ctx, actor.ID, target.UUID.String()); err != nil {
				if errors.Is(err, models.ErrAlreadyFollowing) {
					continue
				}
				return err
			}
			sum.Follows++
		}
	}
	return nil
}

func (s *Seeder) seedPosts(ctx context.Context, users []*models.User, sum *Summary) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, nil
	}
	var published []*models.Post
	for i := 0; i < s.opts.NumPosts; i++ {
		author := users[s.factory.Intn(len(users))]
		post, err := s.posts.Create(ctx, author.ID, s.factory.PostInput(!s.factory.Chance(s.opts.DraftRatio)))
		if err != nil {
			return published, err
		}
		sum.Posts++
		if post.Published {
			published = append(published, post)
		}
	}
	return published, nil
}

func (s *Seeder) seedEngagement(ctx context.Context, users []*models.User, posts []*models.Post, sum *Summary) error {
	for _, post := range posts {
		ref := post.UUID.String()

		for _, fan := range s.pick(users, s.factory.Intn(len(users)/2+1)) {
			if _, err := s.likes.LikePost(ctx, fan.ID, ref); err != nil {
				return err
			}
			sum.PostLikes++
		}

		for c := s.factory.Intn(s.opts.MaxComments + 1); c > 0; c-- {
			author := users[s.factory.Intn(len(users))]
			comment, err := s.comments.Create(ctx, author.ID, ref, s.factory.Comment())
			if err != nil {
				return err
			}
			sum.Comments++
			if err := s.seedThread(ctx, users, models.CommentParent(comment.ID), 0, sum); err != nil {
				return err
			}
		}
	}
	return nil
}

// seedThread adds replies and likes below parent, at most three levels deep.
func (s *Seeder) seedThread(ctx context.Context, users []*models.User, parent models.ParentRef, depth int, sum *Summary) error {
	for _, fan := range s.pick(users, s.factory.Intn(4)) {
		if _, err := s.likes.LikeComment(ctx, fan.ID, parent); err != nil {
			return err
		}
		sum.CommentLikes++
	}
	if depth >= 2 {
		return nil
	}
	for r := s.factory.Intn(3); r > 0; r-- {
		author := users[s.factory.Intn(len(users))]
		reply, err := s.replies.Create(ctx, author.ID, parent, s.factory.Comment())
		if err != nil {
			return err
		}
		sum.Replies++
		if s.factory.Chance(0.4) {
			if err := s.seedThread(ctx, users, models.ReplyParent(reply.ID), depth+1, sum); err != nil {
				return err
			}
		}
	}
	return nil
}

// pick returns up to n distinct users.
func (s *Seeder) pick(users []*models.User, n int) []*models.User {
	if n > len(users) {
		n = len(users)
	}
	out := make([]*models.User, 0, n)
	for _, i := range s.factory.rng.Perm(len(users))[:n] {
		out = append(out, users[i])
	}
	return out
}
