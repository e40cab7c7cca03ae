package auth

import (
	"crypto/sha256"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// VerificationSigner produces email verification tokens bound to an account and to
// the account's verification state. A token stops verifying as soon as the state it
// was signed with changes, so a link cannot be replayed after a successful verify.
type VerificationSigner struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewVerificationSigner derives a purpose-specific key from the application secret.
func NewVerificationSigner(secret string, ttl time.Duration) *VerificationSigner {
	sum := sha256.Sum256([]byte("inkwell/email-verification|" + secret))
	return &VerificationSigner{key: sum[:], ttl: ttl, now: time.Now}
}

// Sign returns a token for accountID carrying state as an extra claim.
func (s *VerificationSigner) Sign(accountID uint, state string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(accountID), 10),
		"vst": state,
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// Verify reports whether token was signed for accountID while the account was in state.
func (s *VerificationSigner) Verify(token string, accountID uint, state string) bool {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return false
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}

	sub, _ := claims["sub"].(string)
	if sub != strconv.FormatUint(uint64(accountID), 10) {
		return false
	}
	vst, _ := claims["vst"].(string)
	return vst == state
}
