package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	defaultJWTIssuer = "tfd-community"

	// SessionTTL is the lifetime of every issued session token.
	SessionTTL = 7 * 24 * time.Hour
)

var (
	// ErrTokenExpired is returned for a well-formed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed is returned for any token that fails parsing or verification.
	ErrTokenMalformed = errors.New("token malformed")
)

// JWTOptions configures JWT issuance and validation.
type JWTOptions struct {
	Issuer string
	TTL    time.Duration

	// Now overrides the clock used for issuing and validating tokens.
	Now func() time.Time
}

// JWTSessionStore issues and validates HS256 JWT tokens.
// The secret is fixed for the lifetime of the store.
type JWTSessionStore struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTSessionStore builds an HS256 session store.
func NewJWTSessionStore(secret string, opts JWTOptions) (*JWTSessionStore, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret required")
	}
	opts = normalizeJWTOptions(opts)
	return &JWTSessionStore{
		secret: []byte(secret),
		issuer: opts.Issuer,
		ttl:    opts.TTL,
		now:    opts.Now,
	}, nil
}

// NewSession creates a signed JWT for the user ID.
func (s *JWTSessionStore) NewSession(userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("user id required")
	}
	now := s.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		ID:        uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// GetUserIDByToken validates a JWT and returns the subject.
// It returns ErrTokenExpired or ErrTokenMalformed on failure.
func (s *JWTSessionStore) GetUserIDByToken(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrTokenMalformed
	}
	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenMalformed
	}
	if !parsed.Valid || strings.TrimSpace(claims.Subject) == "" {
		return "", ErrTokenMalformed
	}
	return claims.Subject, nil
}

func normalizeJWTOptions(opts JWTOptions) JWTOptions {
	opts.Issuer = strings.TrimSpace(opts.Issuer)
	if opts.Issuer == "" {
		opts.Issuer = defaultJWTIssuer
	}
	if opts.TTL <= 0 {
		opts.TTL = SessionTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return opts
}
