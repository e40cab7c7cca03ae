package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"inkwell/internal/auth"
	"inkwell/internal/events"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// RegisterInput is the signup payload.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Tokens auth.TokenPair
	User   *models.User
}

// AccountView is the signed-in user's own account with profile and social counts.
type AccountView struct {
	User           *models.User
	Profile        *models.Profile
	FollowerCount  int64
	FollowingCount int64
	PostCount      int64
}

// UpdateAccountInput carries optional changes; nil fields are left alone.
type UpdateAccountInput struct {
	FirstName  *string
	LastName   *string
	Phone      *string
	Profession *string
	Country    *string
	ProfilePic *string
	Bio        *string
	Website    *string
	Interests  []string
}

// AccountService owns registration, verification, sessions and password reset.
type AccountService struct {
	store    *repository.Store
	tokens   *auth.TokenManager
	verifier *auth.VerificationSigner
	revoker  *auth.Revoker
	bus      *events.Bus
	resetTTL time.Duration
	now      func() time.Time
}

func NewAccountService(
	store *repository.Store,
	tokens *auth.TokenManager,
	verifier *auth.VerificationSigner,
	revoker *auth.Revoker,
	bus *events.Bus,
	resetTTL time.Duration,
) *AccountService {
	return &AccountService{
		store:    store,
		tokens:   tokens,
		verifier: verifier,
		revoker:  revoker,
		bus:      bus,
		resetTTL: resetTTL,
		now:      time.Now,
	}
}

// Register creates an unverified account and its profile, then sends a verification link.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (user *models.User, err error) {
	ctx, span := observability.StartSpan(ctx, "account.Register")
	defer func() { observability.EndSpan(span, err) }()

	email := validation.NormalizeEmail(in.Email)
	fields := models.FieldErrors{}
	if err := validation.ValidateEmail(email); err != nil {
		fields.Add("email", capitalize(err.Error()))
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		fields.Add("password", capitalize(err.Error()))
	}
	if err := validation.ValidateLength("First name", in.FirstName, 0, 100); err != nil {
		fields.Add("first_name", err.Error()+".")
	}
	if err := validation.ValidateLength("Last name", in.LastName, 0, 100); err != nil {
		fields.Add("last_name", err.Error()+".")
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user = &models.User{
		Email:     email,
		Password:  hash,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
	}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Users.Create(ctx, user); err != nil {
			return err
		}
		return tx.Profiles.Create(ctx, &models.Profile{UserID: user.ID})
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, models.NewFieldError("email", "An account with this email already exists.")
	}
	if err != nil {
		return nil, err
	}

	token, err := s.verifier.Sign(user.ID, user.VerificationState())
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	s.bus.Publish(ctx, events.AccountRegistered{User: *user, VerifyToken: token})
	return user, nil
}

// SendVerification re-sends the verification link to an unverified account.
func (s *AccountService) SendVerification(ctx context.Context, email string) error {
	user, err := s.store.Users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return models.ErrAlreadyVerified
	}

	token, err := s.verifier.Sign(user.ID, user.VerificationState())
	if err != nil {
		return models.NewInternalError(err)
	}
	s.bus.Publish(ctx, events.VerificationRequested{User: *user, VerifyToken: token})
	return nil
}

// Verify marks the account verified when token matches its current state.
func (s *AccountService) Verify(ctx context.Context, accountRef, token string) (err error) {
	ctx, span := observability.StartSpan(ctx, "account.Verify")
	defer func() { observability.EndSpan(span, err) }()

	id, ok := parseUUID(accountRef)
	if !ok {
		return models.ErrInvalidToken
	}
	user, err := s.store.Users.GetByUUID(ctx, id)
	if models.IsNotFound(err) {
		return models.ErrInvalidToken
	}
	if err != nil {
		return err
	}
	if user.IsVerified {
		return models.ErrAlreadyVerified
	}
	if !s.verifier.Verify(token, user.ID, user.VerificationState()) {
		return models.ErrInvalidToken
	}

	flipped, err := s.store.Users.MarkVerified(ctx, user.ID)
	if err != nil {
		return err
	}
	if !flipped {
		return models.ErrAlreadyVerified
	}
	user.IsVerified = true
	s.bus.Publish(ctx, events.AccountVerified{User: *user})
	return nil
}

// Login checks credentials and issues a token pair. Unknown emails, wrong passwords
// and unverified accounts all fail as invalid credentials.
func (s *AccountService) Login(ctx context.Context, email, password string) (res *LoginResult, err error) {
	ctx, span := observability.StartSpan(ctx, "account.Login")
	defer func() { observability.EndSpan(span, err) }()

	user, err := s.store.Users.GetByEmail(ctx, email)
	if models.IsNotFound(err) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(user.Password, password) {
		return nil, models.ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, models.ErrUnverifiedLogin
	}
	span.SetAttributes(attribute.Int("user.id", int(user.ID)))

	pair, err := s.tokens.IssuePair(subjectOf(user))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &LoginResult{Tokens: pair, User: user}, nil
}

// Refresh exchanges a live refresh token for a new access token.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	claims, err := s.tokens.Parse(refreshToken, auth.RefreshToken)
	if err != nil {
		return "", time.Time{}, models.NewUnauthorizedError("Invalid or expired refresh token")
	}
	revoked, err := s.revoker.IsRevoked(ctx, claims.JTI)
	if err != nil {
		return "", time.Time{}, models.NewInternalError(err)
	}
	if revoked {
		return "", time.Time{}, models.NewUnauthorizedError("Refresh token has been revoked")
	}

	user, err := s.store.Users.GetByID(ctx, claims.UserID)
	if models.IsNotFound(err) {
		return "", time.Time{}, models.NewUnauthorizedError("Account no longer exists")
	}
	if err != nil {
		return "", time.Time{}, err
	}

	access, exp, err := s.tokens.IssueAccess(subjectOf(user))
	if err != nil {
		return "", time.Time{}, models.NewInternalError(err)
	}
	return access, exp, nil
}

// Logout revokes the current access token and, when given, the refresh token, and
// stamps last_logout.
func (s *AccountService) Logout(ctx context.Context, userID uint, accessJTI string, accessExp time.Time, refreshToken string) error {
	if err := s.revoker.Revoke(ctx, accessJTI, accessExp); err != nil {
		return models.NewInternalError(err)
	}
	if refreshToken != "" {
		claims, err := s.tokens.Parse(refreshToken, auth.RefreshToken)
		if err != nil || claims.UserID != userID {
			return models.NewFieldError("refresh", "Invalid refresh token.")
		}
		if err := s.revoker.Revoke(ctx, claims.JTI, claims.ExpiresAt); err != nil {
			return models.NewInternalError(err)
		}
	}

	user, err := s.store.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	now := s.now()
	user.LastLogout = &now
	return s.store.Users.Update(ctx, user)
}

// RequestPasswordReset issues a single-use reset token to a verified account.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.store.Users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !user.IsVerified {
		return models.ErrUnverifiedAccount
	}

	token := &models.ResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		Use:       models.ResetTokenUse,
		CreatedAt: s.now(),
	}
	if err := s.store.ResetTokens.Create(ctx, token); err != nil {
		return err
	}
	s.bus.Publish(ctx, events.PasswordResetRequested{User: *user, Token: token.Token})
	return nil
}

// ResetPassword consumes token and sets a new password in one transaction.
func (s *AccountService) ResetPassword(ctx context.Context, accountRef, token, newPassword string) (err error) {
	ctx, span := observability.StartSpan(ctx, "account.ResetPassword")
	defer func() { observability.EndSpan(span, err) }()

	if err := validation.ValidatePassword(newPassword); err != nil {
		return models.NewFieldError("password", capitalize(err.Error()))
	}
	id, ok := parseUUID(accountRef)
	if !ok {
		return models.ErrInvalidLink
	}
	user, err := s.store.Users.GetByUUID(ctx, id)
	if models.IsNotFound(err) {
		return models.ErrInvalidLink
	}
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return models.NewInternalError(err)
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		rt, err := tx.ResetTokens.Get(ctx, token)
		if models.IsNotFound(err) {
			return models.ErrInvalidLink
		}
		if err != nil {
			return err
		}
		if rt.UserID != user.ID || rt.Used || rt.Expired(s.now(), s.resetTTL) {
			return models.ErrInvalidLink
		}
		consumed, err := tx.ResetTokens.MarkUsed(ctx, rt.ID)
		if err != nil {
			return err
		}
		if !consumed {
			return models.ErrInvalidLink
		}
		return tx.Users.SetPassword(ctx, user.ID, hash)
	})
	if err != nil {
		return err
	}

	s.bus.Publish(ctx, events.PasswordChanged{User: *user})
	return nil
}

// Me returns the account view for userID.
func (s *AccountService) Me(ctx context.Context, userID uint) (*AccountView, error) {
	user, err := s.store.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.store.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := &AccountView{User: user, Profile: profile}
	if view.FollowerCount, err = s.store.Profiles.CountFollowers(ctx, profile.ID); err != nil {
		return nil, err
	}
	if view.FollowingCount, err = s.store.Profiles.CountFollowing(ctx, profile.ID); err != nil {
		return nil, err
	}
	if view.PostCount, err = s.store.Posts.CountPublishedBy(ctx, userID); err != nil {
		return nil, err
	}
	return view, nil
}

// UpdateMe applies in to the user and profile rows.
func (s *AccountService) UpdateMe(ctx context.Context, userID uint, in UpdateAccountInput) (*AccountView, error) {
	user, err := s.store.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.store.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	fields := models.FieldErrors{}
	setString := func(field, label string, dst *string, v *string, max int) {
		if v == nil {
			return
		}
		if err := validation.ValidateLength(label, *v, 0, max); err != nil {
			fields.Add(field, err.Error()+".")
			return
		}
		*dst = strings.TrimSpace(*v)
	}
	setString("first_name", "First name", &user.FirstName, in.FirstName, 100)
	setString("last_name", "Last name", &user.LastName, in.LastName, 100)
	setString("profession", "Profession", &user.Profession, in.Profession, 100)
	setString("country", "Country", &user.Country, in.Country, 100)
	setString("profile_pic", "Profile picture", &user.ProfilePic, in.ProfilePic, 500)
	setString("bio", "Bio", &profile.Bio, in.Bio, 2000)
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		if err := validation.ValidatePhone(phone); err != nil {
			fields.Add("phone", capitalize(err.Error()))
		} else {
			user.Phone = phone
		}
	}
	if in.Website != nil {
		site := strings.TrimSpace(*in.Website)
		if err := validation.ValidateWebsite(site); err != nil {
			fields.Add("website", capitalize(err.Error()))
		} else {
			profile.Website = site
		}
	}
	if in.Interests != nil {
		profile.Interests = models.JoinList(in.Interests)
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}
	profile.ProfileIsComplete = profileComplete(user, profile)

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Users.Update(ctx, user); err != nil {
			return err
		}
		return tx.Profiles.Update(ctx, profile)
	})
	if err != nil {
		return nil, err
	}
	return s.Me(ctx, userID)
}

func profileComplete(u *models.User, p *models.Profile) bool {
	return u.FirstName != "" && u.LastName != "" && u.Country != "" && p.Bio != "" && p.Interests != ""
}

func subjectOf(u *models.User) auth.Subject {
	return auth.Subject{ID: u.ID, UUID: u.UUID.String(), FirstName: u.FirstName, LastName: u.LastName}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:] + "."
}
