package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/reasyhq/platform/internal/errs"
)

const keyPrefix = "session:"

// KV is the minimal key-value surface the store needs. Production wires the
// redis client; tests substitute an in-memory map.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// ErrKeyNotFound is what KV implementations return for missing keys.
var ErrKeyNotFound = errors.New("key not found")

// Store issues and resolves cookie-backed sessions. The cookie carries a
// signed token naming the session ID; the session state itself lives in the
// KV so revocation is immediate.
type Store struct {
	kv         KV
	secret     []byte
	cookieName string
	ttl        time.Duration
	secure     bool
}

func NewStore(kv KV, secret []byte, cookieName string, ttl time.Duration, secure bool) *Store {
	return &Store{
		kv:         kv,
		secret:     secret,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
	}
}

// Issue stores the session and sets the signed cookie on the response. It is
// the handoff point for the external identity provider: the auth callback
// verifies credentials upstream and calls Issue with the verified identity.
// platform_users carries no credential material.
func (s *Store) Issue(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}

	sess.IssuedAt = time.Now().UTC()

	payload, err := json.Marshal(sess)
	if err != nil {
		return errs.Wrap(ErrStoreSession, err)
	}

	err = s.kv.Set(ctx, keyPrefix+sess.ID, string(payload), s.ttl)
	if err != nil {
		return errs.Wrap(ErrStoreSession, err)
	}

	token, err := s.signToken(sess.ID)
	if err != nil {
		return errs.Wrap(ErrStoreSession, err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// Get resolves the request's session cookie to a live session.
func (s *Store) Get(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil {
		return nil, ErrNoSession
	}

	sessionID, err := s.parseToken(cookie.Value)
	if err != nil {
		return nil, errs.Wrap(ErrInvalidToken, err)
	}

	payload, err := s.kv.Get(ctx, keyPrefix+sessionID)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, ErrSessionExpired
		}

		return nil, err
	}

	var sess Session

	err = json.Unmarshal([]byte(payload), &sess)
	if err != nil {
		return nil, errs.Wrap(ErrInvalidToken, err)
	}

	return &sess, nil
}

// Revoke deletes the session state and expires the cookie.
func (s *Store) Revoke(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	sess, err := s.Get(ctx, r)
	if err == nil {
		err = s.kv.Del(ctx, keyPrefix+sess.ID)
		if err != nil {
			return err
		}
	}

	ClearCookie(w, s.cookieName)

	return nil
}

// ClearCookie expires the session cookie without touching the store.
func ClearCookie(w http.ResponseWriter, cookieName string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func (s *Store) signToken(sessionID string) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	})

	return token.SignedString(s.secret)
}

func (s *Store) parseToken(raw string) (string, error) {
	var claims jwt.RegisteredClaims

	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}

	if claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
