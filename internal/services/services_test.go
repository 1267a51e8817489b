package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stagedoor/backend/internal/cache"
	"github.com/stagedoor/backend/internal/config"
	"github.com/stagedoor/backend/internal/models"
	"github.com/stagedoor/backend/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testConfig() *config.Config {
	cfg := config.New()
	cfg.JWTSecret = "test-secret"
	cfg.Venue = "main-room"
	return cfg
}

// setupInMemoryDB creates a throwaway DB for testing
func setupInMemoryDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// failingDel is a memory cache whose deletes always fail.
type failingDel struct {
	*cache.Memory
}

func (failingDel) Del(ctx context.Context, keys ...string) error {
	return errors.New("redis: connection refused")
}

// captureLogs records warnings from the shared logger for one test.
func captureLogs(t *testing.T) *logtest.Hook {
	t.Helper()
	old := utils.Log.ReplaceHooks(make(logrus.LevelHooks))
	hook := logtest.NewLocal(utils.Log)
	t.Cleanup(func() { utils.Log.ReplaceHooks(old) })
	return hook
}

func logged(hook *logtest.Hook, msg string) bool {
	for _, e := range hook.AllEntries() {
		if e.Message == msg {
			return true
		}
	}
	return false
}
