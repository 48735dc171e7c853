package store

import (
	"errors"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestSessionStore(t *testing.T, secret string, clock *fakeClock) *JWTSessionStore {
	t.Helper()
	s, err := NewJWTSessionStore(secret, JWTOptions{Now: clock.Now})
	if err != nil {
		t.Fatalf("new session store: %v", err)
	}
	return s
}

func TestJWTSessionStoreRoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	s := newTestSessionStore(t, "secret", clock)

	token, err := s.NewSession("user-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	userID, err := s.GetUserIDByToken(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("expected user-1, got %q", userID)
	}
}

func TestJWTSessionStoreExpiryBoundary(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: start}
	s := newTestSessionStore(t, "secret", clock)

	token, err := s.NewSession("user-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	clock.now = start.Add(SessionTTL - time.Second)
	if _, err := s.GetUserIDByToken(token); err != nil {
		t.Fatalf("expected token valid just before expiry, got %v", err)
	}

	clock.now = start.Add(SessionTTL)
	if _, err := s.GetUserIDByToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired at expiry, got %v", err)
	}

	clock.now = start.Add(SessionTTL + time.Hour)
	if _, err := s.GetUserIDByToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired after expiry, got %v", err)
	}
}

func TestJWTSessionStoreRejectsForeignSecret(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	signer := newTestSessionStore(t, "secret-a", clock)
	verifier := newTestSessionStore(t, "secret-b", clock)

	token, err := signer.NewSession("user-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, err := verifier.GetUserIDByToken(token); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestJWTSessionStoreRejectsGarbage(t *testing.T) {
	s := newTestSessionStore(t, "secret", &fakeClock{now: time.Now()})
	for _, token := range []string{"", "   ", "not-a-jwt", "a.b.c"} {
		if _, err := s.GetUserIDByToken(token); !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("token %q: expected ErrTokenMalformed, got %v", token, err)
		}
	}
}

func TestJWTSessionStoreRejectsMissingSubject(t *testing.T) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    defaultJWTIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	s := newTestSessionStore(t, "secret", &fakeClock{now: now})
	if _, err := s.GetUserIDByToken(token); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestJWTSessionStoreRejectsOtherAlgorithm(t *testing.T) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    defaultJWTIssuer,
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	s := newTestSessionStore(t, "secret", &fakeClock{now: now})
	if _, err := s.GetUserIDByToken(token); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestNewJWTSessionStoreRequiresSecret(t *testing.T) {
	if _, err := NewJWTSessionStore(" ", JWTOptions{}); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}
