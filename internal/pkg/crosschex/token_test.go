package crosschex

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vontade-empenho/ponto-backend/internal/domain/attendance"
)

type countingAuthorizer struct {
	calls  int
	tokens []Token
	err    error
}

func (a *countingAuthorizer) Authorize(_ context.Context, _ attendance.Credentials) (Token, error) {
	a.calls++
	if a.err != nil {
		return Token{}, a.err
	}
	return a.tokens[(a.calls-1)%len(a.tokens)], nil
}

func TestToken_Valid(t *testing.T) {
	token := Token{Value: "t", ExpiresAt: fixedNow.Add(5 * time.Minute)}

	assert.True(t, token.Valid(fixedNow, time.Minute))
	assert.False(t, token.Valid(fixedNow.Add(4*time.Minute), time.Minute))
	assert.False(t, Token{ExpiresAt: fixedNow.Add(time.Hour)}.Valid(fixedNow, 0))
}

func TestTokenProvider_ReusesValidToken(t *testing.T) {
	auth := &countingAuthorizer{tokens: []Token{
		{Value: "first", ExpiresAt: fixedNow.Add(30 * time.Minute)},
		{Value: "second", ExpiresAt: fixedNow.Add(90 * time.Minute)},
	}}
	provider := NewTokenProvider(auth, NewMemoryStore(), time.Minute)
	now := fixedNow
	provider.now = func() time.Time { return now }
	ctx := context.Background()

	// Act
	first, err := provider.Token(ctx, testCreds)
	require.NoError(t, err)
	again, err := provider.Token(ctx, testCreds)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, "first", first.Value)
	assert.Equal(t, first, again)
	assert.Equal(t, 1, auth.calls)

	// inside the skew window the token is renewed
	now = fixedNow.Add(29*time.Minute + 30*time.Second)
	renewed, err := provider.Token(ctx, testCreds)
	require.NoError(t, err)
	assert.Equal(t, "second", renewed.Value)
	assert.Equal(t, 2, auth.calls)
}

func TestTokenProvider_SeparatesCredentials(t *testing.T) {
	auth := &countingAuthorizer{tokens: []Token{{Value: "t", ExpiresAt: fixedNow.Add(time.Hour)}}}
	provider := NewTokenProvider(auth, NewMemoryStore(), 0)
	provider.now = func() time.Time { return fixedNow }

	_, err := provider.Token(context.Background(), testCreds)
	require.NoError(t, err)
	_, err = provider.Token(context.Background(), attendance.Credentials{APIKey: "other", APISecret: "secret"})
	require.NoError(t, err)

	assert.Equal(t, 2, auth.calls)
	assert.NotEqual(t, StoreKey(testCreds), StoreKey(attendance.Credentials{APIKey: "other", APISecret: "secret"}))
}

func TestTokenProvider_Invalidate(t *testing.T) {
	auth := &countingAuthorizer{tokens: []Token{{Value: "t", ExpiresAt: fixedNow.Add(time.Hour)}}}
	store := NewMemoryStore()
	provider := NewTokenProvider(auth, store, 0)
	provider.now = func() time.Time { return fixedNow }
	ctx := context.Background()

	_, err := provider.Token(ctx, testCreds)
	require.NoError(t, err)
	require.NoError(t, provider.Invalidate(ctx, testCreds))

	_, ok, err := store.Get(ctx, StoreKey(testCreds))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = provider.Token(ctx, testCreds)
	require.NoError(t, err)
	assert.Equal(t, 2, auth.calls)
}

func TestTokenProvider_AuthorizeError(t *testing.T) {
	boom := errors.New("boom")
	store := NewMemoryStore()
	provider := NewTokenProvider(&countingAuthorizer{err: boom}, store, 0)

	_, err := provider.Token(context.Background(), testCreds)

	assert.ErrorIs(t, err, boom)
	_, ok, _ := store.Get(context.Background(), StoreKey(testCreds))
	assert.False(t, ok)
}

type gatedAuthorizer struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
	ctxErr  error
}

func (a *gatedAuthorizer) Authorize(ctx context.Context, _ attendance.Credentials) (Token, error) {
	a.calls.Add(1)
	close(a.started)
	<-a.release
	a.ctxErr = ctx.Err()
	return Token{Value: "shared", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func TestTokenProvider_CanceledCallerDoesNotFailWaiters(t *testing.T) {
	auth := &gatedAuthorizer{started: make(chan struct{}), release: make(chan struct{})}
	provider := NewTokenProvider(auth, NewMemoryStore(), time.Minute)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := provider.Token(firstCtx, testCreds)
		firstErr <- err
	}()
	<-auth.started

	// Act: the caller that started the authorization goes away mid-flight.
	cancelFirst()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	type result struct {
		token Token
		err   error
	}
	second := make(chan result, 1)
	go func() {
		token, err := provider.Token(context.Background(), testCreds)
		second <- result{token, err}
	}()
	close(auth.release)
	got := <-second

	// Assert
	require.NoError(t, got.err)
	assert.Equal(t, "shared", got.token.Value)
	assert.NoError(t, auth.ctxErr)

	again, err := provider.Token(context.Background(), testCreds)
	require.NoError(t, err)
	assert.Equal(t, "shared", again.Value)
	assert.EqualValues(t, 1, auth.calls.Load())
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	ctx := context.Background()
	require.NoError(t, rdb.Ping(ctx).Err())

	store := NewRedisStore(rdb, "ponto:test:token:")
	key := StoreKey(testCreds)
	t.Cleanup(func() { _ = store.Delete(ctx, key) })

	_, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	token := Token{Value: "redis-token", ExpiresAt: time.Now().Add(time.Minute).Truncate(time.Second)}
	require.NoError(t, store.Set(ctx, key, token))

	got, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, token.Value, got.Value)
	assert.True(t, token.ExpiresAt.Equal(got.ExpiresAt))

	ttl, err := rdb.TTL(ctx, "ponto:test:token:"+key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	// already expired tokens are not written
	require.NoError(t, store.Delete(ctx, key))
	require.NoError(t, store.Set(ctx, key, Token{Value: "old", ExpiresAt: time.Now().Add(-time.Second)}))
	_, ok, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}
