package db

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/ItsCrotix/NOR-Backend/internal/identity/entity"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/database"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/goerror"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/instrument"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/rbac"
)

// Runs against a throwaway PostgreSQL container. Enable with
// NOR_INTEGRATION=1 and a reachable Docker daemon.
func TestDB_Postgres(t *testing.T) {
	if testing.Short() || os.Getenv("NOR_INTEGRATION") != "1" {
		t.Skip("set NOR_INTEGRATION=1 to run the postgres integration test")
	}

	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("nor"),
		postgres.WithUsername("nor"),
		postgres.WithPassword("nor"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, database.Migrate(ctx, dsn))

	pool, err := database.Connect(ctx, database.PoolConfig{URL: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := NewDB(pool, instrument.NewNoop())
	now := time.Now().UTC().Truncate(time.Microsecond)

	role, err := s.CreateUser(ctx, entity.NewUser{ID: userID, Email: "driver@nor.example", Password: "h", Now: now})
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleUser, role)

	_, err = s.CreateUser(ctx, entity.NewUser{ID: "0190b9a4-0000-7000-8000-000000000009", Email: "driver@nor.example", Password: "h", Now: now})
	assert.ErrorIs(t, err, goerror.ErrConflict)

	codes := make([]entity.BackupCode, 0, 8)
	for i := range 8 {
		codes = append(codes, entity.BackupCode{ID: int64(i + 1), UserID: userID, Code: "digest-" + string(rune('a'+i))})
	}
	require.NoError(t, s.EnableTwoFactor(ctx, entity.EnableTFA{UserID: userID, Secret: "sealed", Codes: codes, Now: now}))
	assert.ErrorIs(t, s.EnableTwoFactor(ctx, entity.EnableTFA{UserID: userID, Secret: "other", Now: now}), goerror.ErrConflict)

	n, err := s.CountUnusedBackupCodes(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	var (
		wg       sync.WaitGroup
		consumed atomic.Int32
	)
	for range 10 {
		wg.Go(func() {
			ok, err := s.ConsumeBackupCode(ctx, userID, "digest-a", now)
			if err == nil && ok {
				consumed.Add(1)
			}
		})
	}
	wg.Wait()
	assert.Equal(t, int32(1), consumed.Load())

	assert.ErrorIs(t, s.DisableTwoFactor(ctx, entity.DisableTFA{UserID: userID, BackupCode: "digest-a", Now: now}), goerror.ErrNotFound)
	require.NoError(t, s.DisableTwoFactor(ctx, entity.DisableTFA{UserID: userID, BackupCode: "digest-b", Now: now}))
	u, err := s.GetUserByID(ctx, userID)
	require.NoError(t, err)
	assert.False(t, u.TfaEnabled)
	assert.Empty(t, u.TfaSecret)

	n, err = s.CountUnusedBackupCodes(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, n)

	ok, err := s.UpdateRole(ctx, userID, rbac.RoleUser, rbac.RoleAdmin, now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.UpdateRole(ctx, userID, rbac.RoleUser, rbac.RoleAdmin, now)
	require.NoError(t, err)
	assert.False(t, ok)
}
