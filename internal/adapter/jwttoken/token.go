package jwttoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/neomorfeo/sendstack/internal/clock"
)

// RoleAdmin is the only role the admin console accepts.
const RoleAdmin = "admin"

const issuer = "sendstack"

// ErrUnauthorized is returned for any token that fails verification.
var ErrUnauthorized = errors.New("unauthorized")

// Claims are the admin bearer token claims.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service signs and verifies HS256 admin tokens.
type Service struct {
	signingKey []byte
	clock      clock.Clock
}

func NewService(signingKey string, clk clock.Clock) *Service {
	return &Service{signingKey: []byte(signingKey), clock: clk}
}

// Issue mints an admin token for subject, valid for ttl.
func (s *Service) Issue(subject string, ttl time.Duration) (string, error) {
	if len(s.signingKey) == 0 {
		return "", errors.New("admin signing key is empty")
	}
	now := s.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("signing admin token: %w", err)
	}
	return signed, nil
}

// Verify parses token and requires the admin role.
func (s *Service) Verify(token string) (*Claims, error) {
	if len(s.signingKey) == 0 {
		return nil, ErrUnauthorized
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token has expired", ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", ErrUnauthorized)
	}
	if claims.Role != RoleAdmin {
		return nil, fmt.Errorf("%w: role %q is not allowed", ErrUnauthorized, claims.Role)
	}
	return claims, nil
}
