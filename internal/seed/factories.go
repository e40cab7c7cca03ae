// Package seed provides helpers to create demo data for the application database.
// These helpers are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"inkwell/internal/auth"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

var tagPool = []string{
	"go", "databases", "devops", "frontend", "backend", "cloud", "security",
	"career", "testing", "design", "linux", "ai", "productivity", "books",
}

// Factory builds demo accounts and content inputs.
type Factory struct {
	store *repository.Store
	faker *gofakeit.Faker
	rng   *rand.Rand
	hash  string
	seq   int
}

// NewFactory creates a Factory. A zero seed draws fresh data on every run.
func NewFactory(store *repository.Store, seed int64, password string) (*Factory, error) {
	if password == "" {
		password = DefaultPassword
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	return &Factory{
		store: store,
		faker: gofakeit.New(seed),
		rng:   rand.New(rand.NewSource(seed)), // #nosec G404: acceptable for seeding
		hash:  hash,
	}, nil
}

// CreateUser persists a verified account and its profile.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	person := f.faker.Person()
	f.seq++
	user := &models.User{
		Email:      fmt.Sprintf("%s.%s.%d@example.com", strings.ToLower(person.FirstName), strings.ToLower(person.LastName), f.seq),
		Password:   f.hash,
		IsVerified: true,
		FirstName:  person.FirstName,
		LastName:   person.LastName,
		Phone:      f.faker.Phone(),
		Profession: person.Job.Title,
		Country:    f.faker.Country(),
		ProfilePic: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
	}
	for _, override := range overrides {
		override(user)
	}

	err := f.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Users.Create(ctx, user); err != nil {
			return err
		}
		return tx.Profiles.Create(ctx, &models.Profile{
			UserID:            user.ID,
			Bio:               f.faker.Sentence(12),
			Website:           "https://" + f.faker.DomainName(),
			Interests:         models.JoinList(f.Tags(3)),
			ProfileIsComplete: true,
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// PostInput generates a post. published controls whether it is a draft.
func (f *Factory) PostInput(published bool) service.PostInput {
	title := strings.TrimSuffix(f.faker.Sentence(f.rng.Intn(5)+3), ".")
	content := f.faker.Paragraph(f.rng.Intn(3)+2, 4, 12, "\n\n")
	header := fmt.Sprintf("https://picsum.photos/seed/%s/1200/600", f.faker.UUID())
	return service.PostInput{
		Title:       &title,
		Content:     &content,
		Tags:        f.Tags(f.rng.Intn(3) + 1),
		HeaderImage: &header,
		Published:   &published,
	}
}

// Comment generates comment or reply text.
func (f *Factory) Comment() string {
	return f.faker.Sentence(f.rng.Intn(15) + 4)
}

// Tags picks n distinct tags.
func (f *Factory) Tags(n int) []string {
	if n > len(tagPool) {
		n = len(tagPool)
	}
	picked := make([]string, 0, n)
	for _, i := range f.rng.Perm(len(tagPool))[:n] {
		picked = append(picked, tagPool[i])
	}
	return picked
}

// Chance reports true with probability p.
func (f *Factory) Chance(p float64) bool {
	return f.rng.Float64() < p
}

// Intn returns a value in [0, n).
func (f *Factory) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return f.rng.Intn(n)
}
