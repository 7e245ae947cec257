package database

import (
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/mealquest/backend/config"
	"github.com/pageza/mealquest/backend/internal/models"
)

func TestOpenSQLiteAndMigrate(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	cfg := config.Defaults()
	cfg.DBPath = filepath.Join(t.TempDir(), "test.db")

	db, err := Open(cfg, log)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	assert.True(t, db.Migrator().HasTable(&models.User{}))
	assert.True(t, db.Migrator().HasTable(&models.FavoriteSet{}))
}

func TestOpenUnsupportedDriver(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	cfg := config.Defaults()
	cfg.DBDriver = "oracle"

	_, err := Open(cfg, log)
	assert.Error(t, err)
}

func TestNewRedisClient(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	mr := miniredis.RunT(t)
	cfg := config.Defaults()
	cfg.RedisURL = "redis://" + mr.Addr() + "/0"

	client, err := NewRedisClient(cfg, log)
	require.NoError(t, err)
	defer client.Close()

	cfg.RedisURL = "not a url"
	_, err = NewRedisClient(cfg, log)
	assert.Error(t, err)
}

func TestReset(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	cfg := config.Defaults()
	cfg.DBPath = filepath.Join(t.TempDir(), "test.db")

	db, err := Open(cfg, log)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	require.NoError(t, Reset(db))

	assert.False(t, db.Migrator().HasTable(&models.User{}))
	assert.False(t, db.Migrator().HasTable(&models.FavoriteSet{}))
}
