// Package idempotency guards operations with short-lived Redis keys so the
// same logical operation does not run twice concurrently.
package idempotency

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrAlreadyInProgress = errors.New("operation already in progress")
	ErrAlreadyCompleted  = errors.New("operation already completed")
	ErrInvalidState      = errors.New("invalid state")
)

// State is the value stored under an operation key.
type State string

const (
	StateNone       State = "none"        // operation can proceed
	StateInProgress State = "in_progress" // another caller holds the key
	StateCompleted  State = "completed"   // operation finished and is remembered
	StateError      State = "error"       // state could not be read
)

func (s State) String() string {
	return string(s)
}

// Idempotency runs fn at most once at a time per key.
type Idempotency interface {
	Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error
}

// releaseScript deletes the key only while it is still owned by the caller.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// StateTracker implements Idempotency on Redis.
type StateTracker struct {
	client redis.UniversalClient
	prefix string
}

// New returns a StateTracker storing keys under the "idempotency:" prefix.
func New(client redis.UniversalClient) *StateTracker {
	return &StateTracker{
		client: client,
		prefix: "idempotency:",
	}
}

const defaultLockDuration = time.Minute

// Option configures Exec.
type Option func(*execOptions)

type execOptions struct {
	lockDuration time.Duration
	completedTTL time.Duration
}

// WithLockDuration bounds how long a crashed holder can block the key.
func WithLockDuration(lockDuration time.Duration) Option {
	return func(o *execOptions) {
		o.lockDuration = lockDuration
	}
}

// WithCompletedTTL remembers a successful run for ttl, rejecting repeats with
// ErrAlreadyCompleted. Without it the key is released as soon as fn returns.
func WithCompletedTTL(ttl time.Duration) Option {
	return func(o *execOptions) {
		o.completedTTL = ttl
	}
}

// Acquire tries to take key for lockDuration. The returned token identifies
// the holder and is empty unless the state is StateNone.
func (s *StateTracker) Acquire(ctx context.Context, key string, lockDuration time.Duration) (State, string, error) {
	fk := s.prefix + key
	token := StateInProgress.String() + ":" + uuid.NewString()

	acquired, err := s.client.SetNX(ctx, fk, token, lockDuration).Result()
	if err != nil {
		return StateError, "", err
	}
	if acquired {
		return StateNone, token, nil
	}

	result, err := s.client.Get(ctx, fk).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET
		acquired, err = s.client.SetNX(ctx, fk, token, lockDuration).Result()
		if err != nil {
			return StateError, "", err
		}
		if acquired {
			return StateNone, token, nil
		}
		return StateInProgress, "", nil
	}
	if err != nil {
		return StateError, "", err
	}

	switch {
	case strings.HasPrefix(result, StateInProgress.String()):
		return StateInProgress, "", nil
	case result == StateCompleted.String():
		return StateCompleted, "", nil
	default:
		return StateError, "", ErrInvalidState
	}
}

// Release drops key if token still owns it.
func (s *StateTracker) Release(ctx context.Context, key, token string) error {
	return releaseScript.Run(ctx, s.client, []string{s.prefix + key}, token).Err()
}

// MarkCompleted records a finished operation for ttl.
func (s *StateTracker) MarkCompleted(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, StateCompleted.String(), ttl).Err()
}

// Exec runs fn while holding key. A failed fn always releases the key so the
// caller may retry. Once fn succeeds its result stands: a failure to release
// or mark the key is logged and left to the lock TTL.
func (s *StateTracker) Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error {
	execOpt := &execOptions{lockDuration: defaultLockDuration}
	for _, opt := range opts {
		opt(execOpt)
	}
	if execOpt.lockDuration <= 0 {
		execOpt.lockDuration = defaultLockDuration
	}

	state, token, err := s.Acquire(ctx, key, execOpt.lockDuration)
	if err != nil {
		return err
	}

	switch state {
	case StateInProgress:
		return ErrAlreadyInProgress
	case StateCompleted:
		return ErrAlreadyCompleted
	}

	// release must happen even when the request context is already canceled
	bg := context.WithoutCancel(ctx)

	if err := fn(ctx); err != nil {
		if relErr := s.Release(bg, key, token); relErr != nil {
			return errors.Join(err, relErr)
		}
		return err
	}

	if execOpt.completedTTL > 0 {
		if err := s.MarkCompleted(bg, key, execOpt.completedTTL); err != nil {
			slog.WarnContext(ctx, "failed to mark idempotency key completed", "key", key, "error", err)
		}
		return nil
	}

	if err := s.Release(bg, key, token); err != nil {
		slog.WarnContext(ctx, "failed to release idempotency key", "key", key, "error", err)
	}
	return nil
}
