// Package auth issues and validates session tokens, email verification tokens and
// password hashes.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "inkwell-api"
	tokenAudience = "inkwell-client"
)

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

var (
	// ErrInvalidToken is returned for any token that fails parsing or validation.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrWrongTokenType is returned when a refresh token is used as an access token or vice versa.
	ErrWrongTokenType = errors.New("wrong token type")
)

// Subject is the identity embedded in a session token.
type Subject struct {
	ID        uint
	UUID      string
	FirstName string
	LastName  string
}

// TokenPair is the result of a successful login.
type TokenPair struct {
	Access           string    `json:"access"`
	Refresh          string    `json:"refresh"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// Claims is the validated content of a session token.
type Claims struct {
	UserID    uint
	UUID      string
	Type      TokenType
	JTI       string
	ExpiresAt time.Time
}

// TokenManager signs and parses HS256 session tokens.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenManager creates a TokenManager. secret must not be empty.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// IssuePair creates a fresh access/refresh pair for the subject.
func (m *TokenManager) IssuePair(sub Subject) (TokenPair, error) {
	access, accessExp, err := m.issue(sub, AccessToken, m.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, refreshExp, err := m.issue(sub, RefreshToken, m.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		Access:           access,
		Refresh:          refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// IssueAccess creates a single access token for the subject.
func (m *TokenManager) IssueAccess(sub Subject) (string, time.Time, error) {
	return m.issue(sub, AccessToken, m.accessTTL)
}

func (m *TokenManager) issue(sub Subject, typ TokenType, ttl time.Duration) (string, time.Time, error) {
	if len(m.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("JWT secret not configured")
	}

	now := m.now()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":        strconv.FormatUint(uint64(sub.ID), 10),
		"uuid":       sub.UUID,
		"first_name": sub.FirstName,
		"last_name":  sub.LastName,
		"typ":        string(typ),
		"iss":        tokenIssuer,
		"aud":        tokenAudience,
		"exp":        exp.Unix(),
		"iat":        now.Unix(),
		"nbf":        now.Unix(),
		"jti":        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse validates signature, issuer, audience, expiry and token type.
func (m *TokenManager) Parse(tokenString string, want TokenType) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return nil, ErrInvalidToken
	}

	typ, _ := claims["typ"].(string)
	if TokenType(typ) != want {
		return nil, ErrWrongTokenType
	}

	jti, _ := claims["jti"].(string)
	if jti == "" {
		return nil, ErrInvalidToken
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidToken
	}

	userUUID, _ := claims["uuid"].(string)

	return &Claims{
		UserID:    uint(userID),
		UUID:      userUUID,
		Type:      TokenType(typ),
		JTI:       jti,
		ExpiresAt: exp.Time,
	}, nil
}
