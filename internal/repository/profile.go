package repository

import (
	"context"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// ProfileRepository stores profiles and the two follow edge tables hanging off them.
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error

	AddFollow(ctx context.Context, actor, target *models.Profile) error
	RemoveFollow(ctx context.Context, actor, target *models.Profile) (bool, error)
	IsFollowing(ctx context.Context, actor *models.Profile, targetUserID uint) (bool, error)
	Followers(ctx context.Context, profile *models.Profile, limit, offset int) ([]models.User, int64, error)
	Following(ctx context.Context, profile *models.Profile, limit, offset int) ([]models.User, int64, error)
	CountFollowers(ctx context.Context, profileID uint) (int64, error)
	CountFollowing(ctx context.Context, profileID uint) (int64, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	return translate(r.db.WithContext(ctx).Create(profile).Error, "Profile", profile.UserID)
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, translate(err, "Profile", userID)
	}
	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	err := r.db.WithContext(ctx).Model(profile).
		Select("bio", "website", "interests", "profile_is_complete").
		Updates(profile).Error
	return translate(err, "Profile", profile.UserID)
}

// AddFollow writes both edges: actor's following set and target's followers set.
// Callers wrap it in a transaction.
func (r *profileRepository) AddFollow(ctx context.Context, actor, target *models.Profile) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(&models.ProfileFollowing{ProfileID: actor.ID, UserID: target.UserID}).Error; err != nil {
		return translate(err, "Follow", target.UserID)
	}
	if err := db.Create(&models.ProfileFollower{ProfileID: target.ID, UserID: actor.UserID}).Error; err != nil {
		return translate(err, "Follow", actor.UserID)
	}
	return nil
}

// RemoveFollow deletes both edges and reports whether actor was following target.
func (r *profileRepository) RemoveFollow(ctx context.Context, actor, target *models.Profile) (bool, error) {
	db := r.db.WithContext(ctx)
	res := db.Where("profile_id = ? AND user_id = ?", actor.ID, target.UserID).Delete(&models.ProfileFollowing{})
	if res.Error != nil {
		return false, translate(res.Error, "Follow", target.UserID)
	}
	removed := res.RowsAffected > 0

	res = db.Where("profile_id = ? AND user_id = ?", target.ID, actor.UserID).Delete(&models.ProfileFollower{})
	if res.Error != nil {
		return false, translate(res.Error, "Follow", actor.UserID)
	}
	return removed || res.RowsAffected > 0, nil
}

func (r *profileRepository) IsFollowing(ctx context.Context, actor *models.Profile, targetUserID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.ProfileFollowing{}).
		Where("profile_id = ? AND user_id = ?", actor.ID, targetUserID).
		Count(&n).Error
	if err != nil {
		return false, translate(err, "Follow", targetUserID)
	}
	return n > 0, nil
}

func (r *profileRepository) Followers(ctx context.Context, profile *models.Profile, limit, offset int) ([]models.User, int64, error) {
	return r.edgeUsers(ctx, "profile_followers", profile.ID, limit, offset)
}

func (r *profileRepository) Following(ctx context.Context, profile *models.Profile, limit, offset int) ([]models.User, int64, error) {
	return r.edgeUsers(ctx, "profile_following", profile.ID, limit, offset)
}

func (r *profileRepository) edgeUsers(ctx context.Context, table string, profileID uint, limit, offset int) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN "+table+" edge ON edge.user_id = users.id").
		Where("edge.profile_id = ?", profileID).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "Follow", profileID)
	}

	var users []models.User
	err := q.Select("users.*").Order("edge.created_at DESC").Limit(limit).Offset(offset).Find(&users).Error
	if err != nil {
		return nil, 0, translate(err, "Follow", profileID)
	}
	return users, total, nil
}

func (r *profileRepository) CountFollowers(ctx context.Context, profileID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.ProfileFollower{}).Where("profile_id = ?", profileID).Count(&n).Error
	return n, translate(err, "Profile", profileID)
}

func (r *profileRepository) CountFollowing(ctx context.Context, profileID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.ProfileFollowing{}).Where("profile_id = ?", profileID).Count(&n).Error
	return n, translate(err, "Profile", profileID)
}

type resetTokenRepository struct {
	db *gorm.DB
}

// ResetTokenRepository stores single-use password reset tokens.
type ResetTokenRepository interface {
	Create(ctx context.Context, token *models.ResetToken) error
	Get(ctx context.Context, token string) (*models.ResetToken, error)
	MarkUsed(ctx context.Context, id uint) (bool, error)
}

func NewResetTokenRepository(db *gorm.DB) ResetTokenRepository {
	return &resetTokenRepository{db: db}
}

func (r *resetTokenRepository) Create(ctx context.Context, token *models.ResetToken) error {
	return translate(r.db.WithContext(ctx).Create(token).Error, "Reset token", token.UserID)
}

func (r *resetTokenRepository) Get(ctx context.Context, token string) (*models.ResetToken, error) {
	var t models.ResetToken
	err := r.db.WithContext(ctx).Where("token = ? AND use = ?", token, models.ResetTokenUse).First(&t).Error
	if err != nil {
		return nil, translate(err, "Reset token", token)
	}
	return &t, nil
}

// MarkUsed consumes the token once; a second call reports false.
func (r *resetTokenRepository) MarkUsed(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.ResetToken{}).
		Where("id = ? AND used = ?", id, false).
		Update("used", true)
	if res.Error != nil {
		return false, translate(res.Error, "Reset token", id)
	}
	return res.RowsAffected == 1, nil
}
