package service

import (
	"context"
	"testing"
	"time"

	"inkwell/internal/events"
	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, e *env, email string) (*models.User, string) {
	t.Helper()

	var token string
	events.Subscribe(e.bus, func(_ context.Context, ev events.AccountRegistered) {
		if ev.User.Email == email {
			token = ev.VerifyToken
		}
	})
	user, err := e.accounts.Register(context.Background(), RegisterInput{
		Email:     email,
		Password:  "s3cretpass",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	return user, token
}

func TestAccountService_RegisterCreatesUnverifiedAccount(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	user, _ := register(t, e, "Ada@Example.com")

	assert.Equal(t, "ada@example.com", user.Email)
	assert.False(t, user.IsVerified)
	assert.Equal(t, 1, e.rec.count("account_registered"))

	profile, err := e.store.Profiles.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, profile.UserID)
}

func TestAccountService_RegisterValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	register(t, e, "ada@example.com")

	tests := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"bad email", RegisterInput{Email: "nope", Password: "s3cretpass"}, "email"},
		{"weak password", RegisterInput{Email: "bob@example.com", Password: "short"}, "password"},
		{"duplicate email", RegisterInput{Email: "ADA@example.com", Password: "s3cretpass"}, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.accounts.Register(ctx, tt.in)
			appErr, ok := models.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, models.CodeValidation, appErr.Code)
			assert.Contains(t, appErr.Fields, tt.field)
		})
	}
	assert.Equal(t, 1, e.rec.count("account_registered"))
}

func TestAccountService_VerifyOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user, token := register(t, e, "ada@example.com")

	_, err := e.accounts.Login(ctx, "ada@example.com", "s3cretpass")
	assert.ErrorIs(t, err, models.ErrUnverifiedLogin)

	assert.ErrorIs(t, e.accounts.Verify(ctx, user.UUID.String(), "garbage"), models.ErrInvalidToken)
	require.NoError(t, e.accounts.Verify(ctx, user.UUID.String(), token))
	assert.ErrorIs(t, e.accounts.Verify(ctx, user.UUID.String(), token), models.ErrAlreadyVerified)
	assert.Equal(t, 1, e.rec.count("account_verified"))

	res, err := e.accounts.Login(ctx, "ada@example.com", "s3cretpass")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Tokens.Access)
	assert.NotEmpty(t, res.Tokens.Refresh)

	assert.ErrorIs(t, e.accounts.SendVerification(ctx, "ada@example.com"), models.ErrAlreadyVerified)
}

func TestAccountService_LoginFailures(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user, token := register(t, e, "ada@example.com")
	require.NoError(t, e.accounts.Verify(ctx, user.UUID.String(), token))

	_, err := e.accounts.Login(ctx, "ada@example.com", "wrongpass1")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = e.accounts.Login(ctx, "nobody@example.com", "s3cretpass")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestAccountService_Refresh(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user, token := register(t, e, "ada@example.com")
	require.NoError(t, e.accounts.Verify(ctx, user.UUID.String(), token))

	res, err := e.accounts.Login(ctx, "ada@example.com", "s3cretpass")
	require.NoError(t, err)

	access, exp, err := e.accounts.Refresh(ctx, res.Tokens.Refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.True(t, exp.After(time.Now()))

	_, _, err = e.accounts.Refresh(ctx, res.Tokens.Access)
	appErr, ok := models.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, models.CodeUnauthorized, appErr.Code)
}

func TestAccountService_PasswordReset(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user, token := register(t, e, "ada@example.com")

	assert.ErrorIs(t, e.accounts.RequestPasswordReset(ctx, "ada@example.com"), models.ErrUnverifiedAccount)
	require.NoError(t, e.accounts.Verify(ctx, user.UUID.String(), token))

	var resetToken string
	events.Subscribe(e.bus, func(_ context.Context, ev events.PasswordResetRequested) {
		resetToken = ev.Token
	})
	require.NoError(t, e.accounts.RequestPasswordReset(ctx, "ada@example.com"))
	require.NotEmpty(t, resetToken)

	require.NoError(t, e.accounts.ResetPassword(ctx, user.UUID.String(), resetToken, "n3wpassword"))
	assert.Equal(t, 1, e.rec.count("password_changed"))

	// single use
	assert.ErrorIs(t, e.accounts.ResetPassword(ctx, user.UUID.String(), resetToken, "an0therpass"), models.ErrInvalidLink)

	_, err := e.accounts.Login(ctx, "ada@example.com", "n3wpassword")
	assert.NoError(t, err)
}

func TestAccountService_ResetTokenExpires(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user, token := register(t, e, "ada@example.com")
	require.NoError(t, e.accounts.Verify(ctx, user.UUID.String(), token))

	var resetToken string
	events.Subscribe(e.bus, func(_ context.Context, ev events.PasswordResetRequested) {
		resetToken = ev.Token
	})

	issued := time.Now()
	e.accounts.now = func() time.Time { return issued }
	require.NoError(t, e.accounts.RequestPasswordReset(ctx, "ada@example.com"))

	e.accounts.now = func() time.Time { return issued.Add(11 * time.Minute) }
	err := e.accounts.ResetPassword(ctx, user.UUID.String(), resetToken, "n3wpassword")
	assert.ErrorIs(t, err, models.ErrInvalidLink)
	assert.Zero(t, e.rec.count("password_changed"))
}

func TestAccountService_ResetTokenBoundToAccount(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ada, adaToken := register(t, e, "ada@example.com")
	bob, bobToken := register(t, e, "bob@example.com")
	require.NoError(t, e.accounts.Verify(ctx, ada.UUID.String(), adaToken))
	require.NoError(t, e.accounts.Verify(ctx, bob.UUID.String(), bobToken))

	var resetToken string
	events.Subscribe(e.bus, func(_ context.Context, ev events.PasswordResetRequested) {
		resetToken = ev.Token
	})
	require.NoError(t, e.accounts.RequestPasswordReset(ctx, "ada@example.com"))

	err := e.accounts.ResetPassword(ctx, bob.UUID.String(), resetToken, "n3wpassword")
	assert.ErrorIs(t, err, models.ErrInvalidLink)
}

func TestAccountService_UpdateMe(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user, _ := register(t, e, "ada@example.com")

	view, err := e.accounts.UpdateMe(ctx, user.ID, UpdateAccountInput{
		FirstName: strPtr("Augusta"),
		Bio:       strPtr("Analyst"),
		Interests: []string{"math", "engines"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Augusta", view.User.FirstName)
	assert.Equal(t, "Analyst", view.Profile.Bio)
	assert.Equal(t, []string{"math", "engines"}, view.Profile.InterestList())

	_, err = e.accounts.UpdateMe(ctx, user.ID, UpdateAccountInput{Phone: strPtr("12ab")})
	appErr, ok := models.AsAppError(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "phone")

	_, err = e.accounts.UpdateMe(ctx, user.ID, UpdateAccountInput{Website: strPtr("ftp://x")})
	appErr, ok = models.AsAppError(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "website")
}

func TestAccountService_Logout(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user, token := register(t, e, "ada@example.com")
	require.NoError(t, e.accounts.Verify(ctx, user.UUID.String(), token))
	res, err := e.accounts.Login(ctx, "ada@example.com", "s3cretpass")
	require.NoError(t, err)

	err = e.accounts.Logout(ctx, user.ID, "jti", res.Tokens.AccessExpiresAt, "not-a-token")
	appErr, ok := models.AsAppError(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "refresh")

	require.NoError(t, e.accounts.Logout(ctx, user.ID, "jti", res.Tokens.AccessExpiresAt, res.Tokens.Refresh))
	stored, err := e.store.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogout)
}
