package crypto

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrSecretMissing indicates a deployment defect: tokens cannot be
	// issued or verified without a signing secret.
	ErrSecretMissing = errors.New("jwt signing secret is not configured")

	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenInvalid   = errors.New("token invalid")
)

// Claims represents the JWT claims for Inkwell authentication.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// TokenIssuer signs and verifies HS256 identity tokens bound to a user ID.
type TokenIssuer struct {
	secret string
	expiry time.Duration
}

// NewTokenIssuer creates a TokenIssuer. An empty secret is tolerated here and
// reported as ErrSecretMissing on first use.
func NewTokenIssuer(secret string, expiry time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, expiry: expiry}
}

// Issue creates a signed token asserting the given user's identity.
func (ti *TokenIssuer) Issue(userID string) (string, error) {
	if ti.secret == "" {
		return "", ErrSecretMissing
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "inkwell",
			Audience:  jwt.ClaimStrings{"inkwell-api"},
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(ti.secret))
}

// Verify parses and validates a token string, returning the claims if valid.
// Expiry, bad signatures and malformed input are reported as distinct errors.
func (ti *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	if ti.secret == "" {
		return nil, ErrSecretMissing
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(ti.secret), nil
	}, jwt.WithIssuer("inkwell"), jwt.WithAudience("inkwell-api"))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		default:
			return nil, ErrTokenInvalid
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
