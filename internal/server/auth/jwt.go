// Package auth holds the credential primitives of the server: password
// hashing and signed access tokens.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

// IdentityClaims are the application claims carried next to the registered ones.
type IdentityClaims struct {
	Email string `json:"email,omitempty"`
}

// Claims is the full token payload: registered claims (sub, exp, iat, jti)
// plus IdentityClaims.
type Claims struct {
	jwt.RegisteredClaims
	IdentityClaims
}

// TokenService issues and verifies HS256 access tokens.
type TokenService struct {
	secret     []byte
	defaultTTL time.Duration
	method     jwt.SigningMethod
	now        func() time.Time
}

// NewTokenService builds a TokenService. defaultTTL is used whenever Issue is
// called with a non-positive ttl.
func NewTokenService(secret []byte, defaultTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     secret,
		defaultTTL: defaultTTL,
		method:     jwt.SigningMethodHS256,
		now:        time.Now,
	}
}

// Issue signs a token for subjectID embedding identity, valid for ttl.
func (s *TokenService) Issue(subjectID string, identity IdentityClaims, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	now := s.now()

	token := jwt.NewWithClaims(s.method, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		IdentityClaims: identity,
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tokenString, nil
}

// Verify checks the signature, algorithm and expiry of tokenString and
// returns its claims. Every failure wraps common.ErrInvalidToken; no claims
// are returned unless the token is fully valid.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
