package usecase

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	libotp "github.com/pquerna/otp"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/ItsCrotix/NOR-Backend/internal/identity/entity"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/clock"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/config"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/goerror"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/goroutine"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/hash"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/idempotency"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/instrument"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/jwt"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/mfa"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/otp"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/rbac"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/uid"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/validator"
)

const strongPassword = "Str0ng!Pass"

type memRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
	codes map[string]map[string]bool // user id -> digest -> used

	err         error
	staleRoleOn bool
	afterEnable func()
	disableErr  error
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[string]*entity.User{}, codes: map[string]map[string]bool{}}
}

func (m *memRepo) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (m *memRepo) GetUserByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memRepo) GetUserList(context.Context) ([]entity.UserSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]entity.UserSummary, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u.Summary())
	}
	return out, nil
}

func (m *memRepo) CountUnusedBackupCodes(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, used := range m.codes[userID] {
		if !used {
			n++
		}
	}
	return n, nil
}

func (m *memRepo) CreateUser(_ context.Context, in entity.NewUser) (rbac.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return rbac.RoleGuest, m.err
	}
	for _, u := range m.users {
		if u.Email == in.Email {
			return rbac.RoleGuest, goerror.ErrConflict
		}
	}
	m.users[in.ID] = &entity.User{
		ID:        in.ID,
		Email:     in.Email,
		Password:  in.Password,
		Role:      rbac.RoleUser,
		CreatedAt: in.Now,
		UpdatedAt: in.Now,
	}
	return rbac.RoleUser, nil
}

func (m *memRepo) ConsumeBackupCode(_ context.Context, userID, digest string, _ time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	used, ok := m.codes[userID][digest]
	if !ok || used {
		return false, nil
	}
	m.codes[userID][digest] = true
	return true, nil
}

func (m *memRepo) UpdateRole(_ context.Context, userID string, from, to rbac.Role, _ time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok || u.Role != from || m.staleRoleOn {
		return false, nil
	}
	u.Role = to
	return true, nil
}

func (m *memRepo) EnableTwoFactor(_ context.Context, in entity.EnableTFA) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[in.UserID]
	if !ok || u.TfaEnabled {
		return goerror.ErrConflict
	}
	u.TfaEnabled = true
	u.TfaSecret = in.Secret
	m.codes[in.UserID] = map[string]bool{}
	for _, c := range in.Codes {
		m.codes[in.UserID][c.Code] = false
	}
	if m.afterEnable != nil {
		m.afterEnable()
	}
	return nil
}

// DisableTwoFactor is all or nothing: a failure leaves codes and flags as
// they were.
func (m *memRepo) DisableTwoFactor(_ context.Context, in entity.DisableTFA) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disableErr != nil {
		return m.disableErr
	}
	if in.BackupCode != "" {
		used, ok := m.codes[in.UserID][in.BackupCode]
		if !ok || used {
			return goerror.ErrNotFound
		}
	}
	u, ok := m.users[in.UserID]
	if !ok || !u.TfaEnabled {
		return goerror.ErrConflict
	}
	u.TfaEnabled = false
	u.TfaSecret = ""
	delete(m.codes, in.UserID)
	return nil
}

func (m *memRepo) setRole(id string, r rbac.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id].Role = r
}

type recorder struct {
	mu         sync.Mutex
	registered []UserRegisteredEvent
	tfa        []TfaChangedEvent
	roles      []RoleChangedEvent
}

func (r *recorder) PublishUserRegistered(_ context.Context, msg UserRegisteredEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registered = append(r.registered, msg)
	return nil
}

func (r *recorder) PublishTfaChanged(_ context.Context, msg TfaChangedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tfa = append(r.tfa, msg)
	return nil
}

func (r *recorder) tfaEvent(enabled bool) (TfaChangedEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.tfa {
		if e.Enabled == enabled {
			return e, true
		}
	}
	return TfaChangedEvent{}, false
}

func (r *recorder) roleEvent(to rbac.Role) (RoleChangedEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.roles {
		if e.To == to {
			return e, true
		}
	}
	return RoleChangedEvent{}, false
}

func (r *recorder) PublishRoleChanged(_ context.Context, msg RoleChangedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles = append(r.roles, msg)
	return nil
}

type fixture struct {
	uc     *Usecase
	repo   *memRepo
	events *recorder
	gm     *goroutine.Manager
	tokens *jwt.Tokens
	totp   *otp.TOTP
	hmac   *hash.HMACSHA256
	clock  *clock.Fixed
	idemp  *idempotency.StateTracker
	redis  *miniredis.Miniredis
}

// flush waits for background publishes. The fixture refuses new events after.
func (f *fixture) flush(t *testing.T) {
	t.Helper()
	require.NoError(t, f.gm.Wait())
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg, err := config.NewViperFromBytes("yaml", []byte("modules:\n  identity:\n    tfa_enroll_lock_seconds: 30\n"))
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	clk := clock.NewFixed(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	access, err := jwt.NewHS512(jwt.Config{
		Secret: bytes.Repeat([]byte("a"), 64), TTL: time.Hour, Clock: clk, UUID: uid.NewUUID(),
	})
	require.NoError(t, err)
	refresh, err := jwt.NewHS512(jwt.Config{
		Secret: bytes.Repeat([]byte("r"), 64), TTL: 24 * time.Hour, Clock: clk, UUID: uid.NewUUID(),
	})
	require.NoError(t, err)
	tokens, err := jwt.NewTokens(access, refresh)
	require.NoError(t, err)

	sf, err := uid.NewSnowflake(1)
	require.NoError(t, err)

	f := &fixture{
		repo:   newMemRepo(),
		events: &recorder{},
		gm:     goroutine.NewManager(16),
		tokens: tokens,
		totp:   otp.NewTOTP("Netherlands Online Racing", 30, 0, libotp.DigitsSix),
		hmac:   hash.NewHMACSHA256([]byte("backup-code-secret")),
		clock:  clk,
		idemp:  idempotency.New(rdb),
		redis:  mr,
	}

	f.uc = New(Dependency{
		RepoDB:        f.repo,
		RepoMessaging: f.events,
		Idempotency:   f.idemp,
		Validator:     v,
		Config:        cfg,
		HMAC:          f.hmac,
		Bcrypt:        hash.NewBcrypt(4),
		MFAEncryptor:  mfa.NewAESGCMEncryptor(mfa.StaticKeyProvider{KeyBytes: bytes.Repeat([]byte("k"), 32)}),
		BackupCodes:   mfa.NewBackupCodes(),
		UID:           sf,
		UUID:          uid.NewUUID(),
		Totp:          f.totp,
		Clock:         clk,
		Tokens:        tokens,
		Instrument:    instrument.NewNoop(),
		Goroutine:     f.gm,
	})

	return f
}

func (f *fixture) register(t *testing.T, email string) *RegisterOutput {
	t.Helper()
	out, err := f.uc.Register(context.Background(), RegisterInput{Email: email, Password: strongPassword})
	require.NoError(t, err)
	return out
}

func authCtx(user entity.UserSummary) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{UserID: user.ID, Email: user.Email, Role: user.Role})
}

// enroll registers a user and turns 2FA on, returning the plaintext secret
// and backup codes.
func (f *fixture) enroll(t *testing.T, email string) (entity.UserSummary, *EnableTFAOutput) {
	t.Helper()
	reg := f.register(t, email)
	out, err := f.uc.EnableTFA(authCtx(reg.User))
	require.NoError(t, err)
	return reg.User, out
}

func requireCode(t *testing.T, err error, code goerror.Code, msg string) {
	t.Helper()
	require.Error(t, err)
	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	require.Equal(t, code, gerr.Code())
	if msg != "" {
		require.Equal(t, msg, gerr.Msg())
	}
}
