package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/afyalink/afyalink/internal/platform/apperr"
)

// DefaultTokenTTL matches the original session policy: 7 days.
const DefaultTokenTTL = 7 * 24 * time.Hour

// Claims are the session token claims: the user id and role are embedded so
// no server-side session state is needed.
type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies stateless HS256 session tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer creates an Issuer with the given signing secret and token
// lifetime. A non-positive ttl falls back to DefaultTokenTTL.
func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Issuer{secret: secret, ttl: ttl}
}

// Issue returns a signed token embedding the user's id and role.
func (i *Issuer) Issue(userID uuid.UUID, role string) (string, error) {
	now := time.Now()
	c := Claims{
		UserID: userID.String(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
}

// Verify parses and validates a token. Any failure (bad signature, expiry,
// wrong signing method, malformed claims) surfaces as ErrTokenInvalid.
func (i *Issuer) Verify(raw string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// block alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.ErrTokenInvalid
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, apperr.ErrTokenInvalid
	}
	c, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, apperr.ErrTokenInvalid
	}
	if _, err := uuid.Parse(c.UserID); err != nil {
		return nil, apperr.ErrTokenInvalid
	}
	return c, nil
}
