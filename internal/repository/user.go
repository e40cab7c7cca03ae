package repository

import (
	"context"
	"errors"
	"strings"

	"inkwell/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PeopleFilter narrows the people listing. Empty fields do not filter.
type PeopleFilter struct {
	Name    string
	Country string
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUUID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	MarkVerified(ctx context.Context, id uint) (bool, error)
	SetPassword(ctx context.Context, id uint, hash string) error
	ListVerified(ctx context.Context, filter PeopleFilter, limit, offset int) ([]models.User, int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error, "User", user.Email)
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) GetByUUID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("uuid = ?", id).First(&user).Error; err != nil {
		return nil, translate(err, "User", id)
	}
	return &user, nil
}

// GetByEmail looks up a user by normalized email address.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundMessage("No account is registered with this email address")
	}
	if err != nil {
		return nil, translate(err, "User", email)
	}
	return &user, nil
}

// Update writes the editable profile columns of user.
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Model(user).
		Select("first_name", "last_name", "phone", "profession", "country", "profile_pic", "last_logout").
		Updates(user).Error
	return translate(err, "User", user.ID)
}

// MarkVerified flips is_verified once. It reports false when the user was already verified.
func (r *userRepository) MarkVerified(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND is_verified = ?", id, false).
		Update("is_verified", true)
	if res.Error != nil {
		return false, translate(res.Error, "User", id)
	}
	return res.RowsAffected == 1, nil
}

func (r *userRepository) SetPassword(ctx context.Context, id uint, hash string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", hash)
	if res.Error != nil {
		return translate(res.Error, "User", id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

// ListVerified returns verified users matching filter, newest first, with the total match count.
func (r *userRepository) ListVerified(ctx context.Context, filter PeopleFilter, limit, offset int) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{}).Where("is_verified = ?", true)

	if name := strings.ToLower(strings.TrimSpace(filter.Name)); name != "" {
		like := "%" + escapeLike(name) + "%"
		q = q.Where("(LOWER(first_name) LIKE ? ESCAPE '\\' OR LOWER(last_name) LIKE ? ESCAPE '\\')", like, like)
	}
	if country := strings.TrimSpace(filter.Country); country != "" {
		q = q.Where("LOWER(country) = ?", strings.ToLower(country))
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "User", nil)
	}

	var users []models.User
	err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&users).Error
	if err != nil {
		return nil, 0, translate(err, "User", nil)
	}
	return users, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike quotes LIKE wildcards in user input.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
