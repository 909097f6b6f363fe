// Package service provides bearer token verification for the access guard.
package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	accessDomain "github.com/medmarket/phiguard/internal/access/domain"
	apperrors "github.com/medmarket/phiguard/internal/errors"
)

// ErrInvalidToken is returned for any token that fails parsing or validation.
var ErrInvalidToken = apperrors.Wrap(apperrors.ErrUnauthorized, "invalid token")

// ErrTokenExpired is returned when the token's exp claim has passed.
var ErrTokenExpired = apperrors.Wrap(apperrors.ErrUnauthorized, "token has expired")

// Claims are the access token claims the engine relies on. Tokens are issued elsewhere.
type Claims struct {
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
	MFA         bool     `json:"mfa"`
	jwt.RegisteredClaims
}

// TokenVerifier validates HMAC-signed access tokens.
type TokenVerifier interface {
	Verify(token string) (*accessDomain.Actor, error)
}

type jwtVerifier struct {
	signingKey []byte
	parser     *jwt.Parser
}

// NewTokenVerifier creates a verifier for HS256/HS384/HS512 tokens. A non-empty
// issuer must match the iss claim.
func NewTokenVerifier(signingKey, issuer string) TokenVerifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{
			jwt.SigningMethodHS256.Alg(),
			jwt.SigningMethodHS384.Alg(),
			jwt.SigningMethodHS512.Alg(),
		}),
		jwt.WithIssuedAt(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &jwtVerifier{
		signingKey: []byte(signingKey),
		parser:     jwt.NewParser(opts...),
	}
}

// Verify parses the token and maps its claims to an Actor. The session clock
// starts at iat; tokens without iat produce an Actor the guard treats as expired.
func (v *jwtVerifier) Verify(token string) (*accessDomain.Actor, error) {
	claims := &Claims{}
	parsed, err := v.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	var issuedAt time.Time
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.UTC()
	}
	return &accessDomain.Actor{
		ID:          claims.Subject,
		Role:        claims.Role,
		Permissions: claims.Permissions,
		MFAVerified: claims.MFA,
		IssuedAt:    issuedAt,
	}, nil
}
