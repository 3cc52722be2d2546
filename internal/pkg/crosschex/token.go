package crosschex

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/vontade-empenho/ponto-backend/internal/domain/attendance"
	"golang.org/x/sync/singleflight"
)

const (
	// defaultTokenLifetime applies when the provider's expiry cannot be parsed.
	defaultTokenLifetime = 30 * time.Minute
	// authorizeTimeout bounds a shared authorization, which no longer follows
	// any single caller's cancellation.
	authorizeTimeout = 30 * time.Second
)

// Token is a provider access token and the instant it stops being accepted.
type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid reports whether the token can still be used at now, keeping skew
// in reserve.
func (t Token) Valid(now time.Time, skew time.Duration) bool {
	return t.Value != "" && now.Add(skew).Before(t.ExpiresAt)
}

type tokenPayload struct {
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
}

type tokenResponse struct {
	Token   string `json:"token"`
	Expires string `json:"expires"`
}

// Authorize exchanges API keys for a token (authorize.token/token).
func (c *Client) Authorize(ctx context.Context, creds attendance.Credentials) (Token, error) {
	if creds.APIKey == "" || creds.APISecret == "" {
		return Token{}, attendance.ErrMissingCredentials
	}

	issuedAt := c.now()
	req := c.newRequest("authorize.token", "token", "", tokenPayload{
		APIKey:    creds.APIKey,
		APISecret: creds.APISecret,
	})

	var out tokenResponse
	if err := c.call(ctx, req, &out); err != nil {
		return Token{}, err
	}
	if out.Token == "" {
		return Token{}, &APIError{StatusCode: 200, Code: "NO_TOKEN", Message: "authorize answer carried no token"}
	}

	expiresAt, err := time.Parse(time.RFC3339, out.Expires)
	if err != nil {
		expiresAt = issuedAt.Add(defaultTokenLifetime)
	}
	return Token{Value: out.Token, ExpiresAt: expiresAt}, nil
}

// TokenStore keeps tokens between requests, keyed by credential pair.
type TokenStore interface {
	Get(ctx context.Context, key string) (Token, bool, error)
	Set(ctx context.Context, key string, token Token) error
	Delete(ctx context.Context, key string) error
}

// Authorizer obtains a fresh token. *Client implements it.
type Authorizer interface {
	Authorize(ctx context.Context, creds attendance.Credentials) (Token, error)
}

// TokenProvider hands out a valid token per credential pair, authorizing
// only when the stored one is missing or about to expire. Concurrent misses
// for the same pair share one authorization.
type TokenProvider struct {
	auth  Authorizer
	store TokenStore
	skew  time.Duration
	now     func() time.Time
	timeout time.Duration
	group   singleflight.Group
}

func NewTokenProvider(auth Authorizer, store TokenStore, skew time.Duration) *TokenProvider {
	return &TokenProvider{auth: auth, store: store, skew: skew, now: time.Now, timeout: authorizeTimeout}
}

// Token returns a token for creds.
func (p *TokenProvider) Token(ctx context.Context, creds attendance.Credentials) (Token, error) {
	key := StoreKey(creds)

	cached, ok, err := p.store.Get(ctx, key)
	if err != nil {
		return Token{}, fmt.Errorf("failed to read token store: %w", err)
	}
	if ok && cached.Valid(p.now(), p.skew) {
		return cached, nil
	}

	ch := p.group.DoChan(key, func() (any, error) {
		// waiters share this call, so a canceled caller must not abort it
		actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
		defer cancel()

		token, err := p.auth.Authorize(actx, creds)
		if err != nil {
			return Token{}, err
		}
		if err := p.store.Set(actx, key, token); err != nil {
			return Token{}, fmt.Errorf("failed to write token store: %w", err)
		}
		return token, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return Token{}, res.Err
		}
		return res.Val.(Token), nil
	case <-ctx.Done():
		return Token{}, ctx.Err()
	}
}

// Invalidate drops the stored token for creds.
func (p *TokenProvider) Invalidate(ctx context.Context, creds attendance.Credentials) error {
	return p.store.Delete(ctx, StoreKey(creds))
}

// StoreKey derives a store key that does not reveal the keys themselves.
func StoreKey(creds attendance.Credentials) string {
	sum := sha256.Sum256([]byte(creds.APIKey + "\x00" + creds.APISecret))
	return hex.EncodeToString(sum[:16])
}

// MemoryStore is a process-local TokenStore.
type MemoryStore struct {
	mu     sync.Mutex
	tokens map[string]Token
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]Token)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (Token, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[key]
	return t, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, token Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[key] = token
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, key)
	return nil
}
