package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/h44z/sms-portal/internal/config"
	"github.com/h44z/sms-portal/internal/domain"
)

func tempSqliteDb(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := NewDatabase(config.DatabaseConfig{
		Type: config.DatabaseSQLite,
		DSN:  "file:" + t.Name() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return db
}

func TestSqlRepo_Tokens(t *testing.T) {
	ctx := context.Background()
	repo, err := NewSqlRepository(tempSqliteDb(t))
	require.NoError(t, err)

	_, err = repo.LoadToken(ctx, "default")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, repo.SaveToken(ctx, "default", "abc"))
	require.NoError(t, repo.SaveToken(ctx, "default", "def"))
	require.NoError(t, repo.SaveToken(ctx, "other", "xyz"))

	token, err := repo.LoadToken(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, "def", token)

	require.NoError(t, repo.DeleteToken(ctx, "default"))
	require.NoError(t, repo.DeleteToken(ctx, "default"))
	_, err = repo.LoadToken(ctx, "default")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	token, err = repo.LoadToken(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, "xyz", token)
}

func TestSqlRepo_ActivityEntries(t *testing.T) {
	ctx := context.Background()
	repo, err := NewSqlRepository(tempSqliteDb(t))
	require.NoError(t, err)

	base := time.Now().Add(-time.Hour)
	for i, kind := range []domain.ActivityKind{domain.ActivityLogin, domain.ActivityNavigate, domain.ActivityLogout} {
		require.NoError(t, repo.SaveActivityEntry(ctx, &domain.ActivityEntry{
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Profile:   "default",
			Kind:      kind,
			Username:  "alice",
		}))
	}
	require.NoError(t, repo.SaveActivityEntry(ctx, &domain.ActivityEntry{
		CreatedAt: base, Profile: "other", Kind: domain.ActivityLogin,
	}))

	entries, err := repo.GetActivityEntries(ctx, "default", 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.ActivityLogout, entries[0].Kind)
	assert.Equal(t, domain.ActivityNavigate, entries[1].Kind)
}

func TestRedisSessionRepo(t *testing.T) {
	ctx := context.Background()
	srv := miniredis.RunT(t)

	repo := NewRedisSessionRepoFromClient(redis.NewClient(&redis.Options{Addr: srv.Addr()}), "sms:", time.Minute)
	t.Cleanup(func() { _ = repo.Close() })

	_, err := repo.LoadToken(ctx, "default")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, repo.SaveToken(ctx, "default", "abc"))
	assert.True(t, srv.Exists("sms:default"))
	assert.Equal(t, time.Minute, srv.TTL("sms:default"))

	token, err := repo.LoadToken(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	srv.FastForward(2 * time.Minute)
	_, err = repo.LoadToken(ctx, "default")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, repo.SaveToken(ctx, "default", "def"))
	require.NoError(t, repo.DeleteToken(ctx, "default"))
	_, err = repo.LoadToken(ctx, "default")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNewRedisSessionRepo_Unreachable(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()

	_, err := NewRedisSessionRepo(context.Background(), config.RedisConfig{Address: addr})
	assert.Error(t, err)
}
