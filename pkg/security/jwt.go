package security

import (
	"errors"
	"time"

	"userhub/admin-api/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is how long a session token stays valid unless the caller
// asks for something else
const DefaultTokenTTL = 7 * 24 * time.Hour

var (
	ErrTokenGeneration = errors.New("failed to sign token")
	ErrTokenExpired    = errors.New("token expired")
	ErrTokenInvalid    = errors.New("token invalid")
)

// Claims is the payload embedded in every session token. PasswordChangedAt
// rides along so the auth gate can reject tokens issued before the last
// password change without waiting for exp
type Claims struct {
	jwt.RegisteredClaims
	UserID            string     `json:"user_id"`
	Email             string     `json:"email"`
	Role              model.Role `json:"role"`
	EmailVerified     bool       `json:"email_verified"`
	PasswordChangedAt *string    `json:"password_changed_at"`
}

type TokenIssuer struct {
	secret []byte
}

func NewIssuer(secret []byte) *TokenIssuer {
	return &TokenIssuer{secret: secret}
}

// Generate signs a session token for u valid for ttl. Pass 0 to get
// DefaultTokenTTL
func (i *TokenIssuer) Generate(u *model.User, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	var changedAt *string
	if u.PasswordChangedAt != nil {
		s := u.PasswordChangedAt.UTC().Format(time.RFC3339)
		changedAt = &s
	}

	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:            u.ID,
		Email:             u.Email,
		Role:              u.Role,
		EmailVerified:     u.EmailVerified,
		PasswordChangedAt: changedAt,
	})

	signed, err := t.SignedString(i.secret)
	if err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}

	return signed, nil
}

// Verify checks the signature and expiry of token and returns its claims.
// Expiry is reported as ErrTokenExpired, every other failure mode collapses
// into ErrTokenInvalid
func (i *TokenIssuer) Verify(token string) (*Claims, error) {
	claims := &Claims{}

	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if !t.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// Decode extracts the claims without verifying the signature. Diagnostic use
// only, nothing security relevant may trust the result. Returns nil on
// malformed input
func (i *TokenIssuer) Decode(token string) *Claims {
	claims := &Claims{}

	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}

	return claims
}

// IsExpired reports whether the exp claim of token has passed. Anything that
// can't be decoded counts as expired
func (i *TokenIssuer) IsExpired(token string) bool {
	claims := i.Decode(token)
	if claims == nil || claims.ExpiresAt == nil {
		return true
	}

	return time.Now().After(claims.ExpiresAt.Time)
}

// Expiration returns the exp claim of token, nil if it can't be decoded
func (i *TokenIssuer) Expiration(token string) *time.Time {
	claims := i.Decode(token)
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}

	return &claims.ExpiresAt.Time
}

// TimeLeft returns how long token is still valid for, floored at zero
func (i *TokenIssuer) TimeLeft(token string) time.Duration {
	exp := i.Expiration(token)
	if exp == nil {
		return 0
	}

	left := time.Until(*exp)
	if left < 0 {
		return 0
	}

	return left
}

// ValidClaims is a structural guard over decoded claims: every required field
// has to be present with a sane value before anything downstream touches them
func ValidClaims(c *Claims) bool {
	if c == nil {
		return false
	}

	return c.UserID != "" &&
		c.Email != "" &&
		c.Role.Valid() &&
		c.IssuedAt != nil &&
		c.ExpiresAt != nil
}

// IsAdminRole reports whether r carries admin access
func IsAdminRole(r model.Role) bool {
	return r == model.RoleAdmin
}

// IsUserRole reports whether r carries at least base authenticated access
func IsUserRole(r model.Role) bool {
	return r == model.RoleUser || r == model.RoleAdmin
}
