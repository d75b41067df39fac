package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTracker(t *testing.T) (*StateTracker, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client), mr
}

func TestExec_ReleasesAfterSuccess(t *testing.T) {
	s, mr := newTracker(t)
	ctx := context.Background()

	calls := 0
	fn := func(context.Context) error { calls++; return nil }

	require.NoError(t, s.Exec(ctx, "tfa-enroll:u1", fn))
	require.NoError(t, s.Exec(ctx, "tfa-enroll:u1", fn))

	assert.Equal(t, 2, calls)
	assert.False(t, mr.Exists("idempotency:tfa-enroll:u1"))
}

func TestExec_InProgress(t *testing.T) {
	s, _ := newTracker(t)
	ctx := context.Background()

	err := s.Exec(ctx, "tfa-enroll:u1", func(ctx context.Context) error {
		inner := s.Exec(ctx, "tfa-enroll:u1", func(context.Context) error { return nil })
		assert.ErrorIs(t, inner, ErrAlreadyInProgress)
		return nil
	})
	require.NoError(t, err)
}

func TestExec_FailureReleases(t *testing.T) {
	s, mr := newTracker(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Exec(ctx, "k", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("idempotency:k"))
}

func TestExec_SuccessSurvivesReleaseFailure(t *testing.T) {
	s, mr := newTracker(t)
	ctx := context.Background()

	err := s.Exec(ctx, "k", func(context.Context) error {
		mr.SetError("ERR connection lost")
		return nil
	})
	require.NoError(t, err)

	mr.SetError("")
	assert.True(t, mr.Exists("idempotency:k"), "key is left to expire")

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists("idempotency:k"))
}

func TestExec_CompletedTTL(t *testing.T) {
	s, mr := newTracker(t)
	ctx := context.Background()

	require.NoError(t, s.Exec(ctx, "k", func(context.Context) error { return nil }, WithCompletedTTL(time.Minute)))

	err := s.Exec(ctx, "k", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrAlreadyCompleted)

	mr.FastForward(2 * time.Minute)
	assert.NoError(t, s.Exec(ctx, "k", func(context.Context) error { return nil }))
}

func TestRelease_OnlyOwner(t *testing.T) {
	s, mr := newTracker(t)
	ctx := context.Background()

	state, token, err := s.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.Equal(t, StateNone, state)
	require.NotEmpty(t, token)

	require.NoError(t, s.Release(ctx, "k", "in_progress:someone-else"))
	assert.True(t, mr.Exists("idempotency:k"))

	require.NoError(t, s.Release(ctx, "k", token))
	assert.False(t, mr.Exists("idempotency:k"))
}

func TestAcquire_InvalidState(t *testing.T) {
	s, mr := newTracker(t)
	require.NoError(t, mr.Set("idempotency:k", "garbage"))

	state, _, err := s.Acquire(context.Background(), "k", time.Minute)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, StateError, state)
}

func TestAcquire_RedisDown(t *testing.T) {
	s, mr := newTracker(t)
	mr.Close()

	err := s.Exec(context.Background(), "k", func(context.Context) error { return nil })
	assert.Error(t, err)
}
