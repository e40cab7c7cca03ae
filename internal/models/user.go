package models

import (
	"strings"
	"time"
)

// Verification states embedded in email verification tokens.
const (
	StateUnverified = "unverified"
	StateVerified   = "verified"
)

// User is an account. Unverified accounts cannot log in.
type User struct {
	Base
	Email      string     `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Password   string     `gorm:"not null" json:"-"`
	IsVerified bool       `gorm:"not null;default:false" json:"is_verified"`
	FirstName  string     `gorm:"size:100" json:"first_name"`
	LastName   string     `gorm:"size:100" json:"last_name"`
	Phone      string     `gorm:"size:10" json:"phone"`
	Profession string     `gorm:"size:100" json:"profession"`
	Country    string     `gorm:"size:100;index" json:"country"`
	ProfilePic string     `json:"profile_pic"`
	LastLogout *time.Time `json:"last_logout,omitempty"`
	Profile    *Profile   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// VerificationState is the value verification tokens are bound to.
func (u *User) VerificationState() string {
	if u.IsVerified {
		return StateVerified
	}
	return StateUnverified
}

// Profile holds the social side of an account. Follow edges hang off it.
type Profile struct {
	Base
	UserID            uint   `gorm:"uniqueIndex;not null" json:"-"`
	Bio               string `gorm:"type:text" json:"bio"`
	Website           string `json:"website"`
	Interests         string `json:"-"`
	ProfileIsComplete bool   `gorm:"not null;default:false" json:"profile_is_complete"`
}

// InterestList returns the interests as a list.
func (p *Profile) InterestList() []string {
	return ParseList(p.Interests)
}

// ProfileFollower records that UserID follows the owner of ProfileID.
type ProfileFollower struct {
	ProfileID uint `gorm:"primaryKey"`
	UserID    uint `gorm:"primaryKey;index"`
	CreatedAt time.Time
}

// TableName overrides the default pluralisation.
func (ProfileFollower) TableName() string { return "profile_followers" }

// ProfileFollowing records that the owner of ProfileID follows UserID.
type ProfileFollowing struct {
	ProfileID uint `gorm:"primaryKey"`
	UserID    uint `gorm:"primaryKey;index"`
	CreatedAt time.Time
}

// TableName overrides the default pluralisation.
func (ProfileFollowing) TableName() string { return "profile_following" }

// ResetTokenUse is the only purpose reset tokens are issued for.
const ResetTokenUse = "reset-password"

// ResetToken is a single-use password reset credential.
type ResetToken struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index"`
	Token     string    `gorm:"size:36;uniqueIndex;not null"`
	Use       string    `gorm:"size:32;not null"`
	Used      bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
}

// Expired reports whether the token is older than ttl at now.
func (t *ResetToken) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(t.CreatedAt) > ttl
}
