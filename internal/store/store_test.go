package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stagedoor/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupGorm opens a throwaway sqlite database private to the test.
func setupGorm(t *testing.T) SongStore {
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
	return NewGormSongStore(db)
}

func eachStore(t *testing.T, fn func(t *testing.T, s SongStore)) {
	t.Run("gorm", func(t *testing.T) { fn(t, setupGorm(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, NewMemorySongStore()) })
}

var base = time.Date(2026, 3, 14, 21, 0, 0, 0, time.UTC)

func TestRequests(t *testing.T) {
	eachStore(t, func(t *testing.T, s SongStore) {
		ctx := context.Background()

		seed := []models.SongRequest{
			{SongID: "a-one", Title: "One", Artist: "A", RequestCount: 1, RequestedAt: base},
			{SongID: "b-two", Title: "Two", Artist: "B", RequestCount: 3, RequestedAt: base.Add(time.Minute)},
			{SongID: "c-three", Title: "Three", Artist: "C", RequestCount: 1, RequestedAt: base.Add(-time.Minute)},
		}
		for i := range seed {
			if err := s.CreateRequest(ctx, &seed[i]); err != nil {
				t.Fatalf("create: %v", err)
			}
		}

		got, err := s.ListRequests(ctx)
		if err != nil {
			t.Fatal(err)
		}
		want := []string{"b-two", "c-three", "a-one"}
		for i, id := range want {
			if got[i].SongID != id {
				t.Fatalf("order[%d] = %s, want %s", i, got[i].SongID, id)
			}
		}

		r, err := s.IncrementRequest(ctx, "a-one", 1)
		if err != nil || r.RequestCount != 2 {
			t.Fatalf("increment = %+v, %v", r, err)
		}
		if _, err := s.IncrementRequest(ctx, "nope", 1); !errors.Is(err, ErrNotFound) {
			t.Errorf("increment missing err = %v", err)
		}

		n, err := s.DeleteRequests(ctx, "b-two")
		if err != nil || n != 1 {
			t.Fatalf("delete = %d, %v", n, err)
		}
		if _, err := s.FindRequest(ctx, "b-two"); !errors.Is(err, ErrNotFound) {
			t.Errorf("find deleted err = %v", err)
		}
	})
}

func TestCooldowns(t *testing.T) {
	eachStore(t, func(t *testing.T, s SongStore) {
		ctx := context.Background()

		expired := &models.CooldownSong{SongID: "old", PlayedAt: base.Add(-3 * time.Hour), CooldownUntil: base.Add(-time.Hour)}
		active := &models.CooldownSong{SongID: "new", PlayedAt: base, CooldownUntil: base.Add(2 * time.Hour)}
		for _, c := range []*models.CooldownSong{expired, active} {
			if err := s.UpsertCooldown(ctx, c); err != nil {
				t.Fatalf("upsert: %v", err)
			}
		}

		// replaying pushes the cooldown out instead of duplicating it
		later := base.Add(4 * time.Hour)
		if err := s.UpsertCooldown(ctx, &models.CooldownSong{SongID: "new", PlayedAt: base, CooldownUntil: later}); err != nil {
			t.Fatalf("re-upsert: %v", err)
		}
		c, err := s.FindCooldown(ctx, "new")
		if err != nil || !c.CooldownUntil.Equal(later) {
			t.Fatalf("cooldown = %+v, %v", c, err)
		}

		n, err := s.DeleteExpiredCooldowns(ctx, base)
		if err != nil || n != 1 {
			t.Fatalf("expired removed = %d, %v", n, err)
		}
		all, _ := s.ListCooldowns(ctx)
		if len(all) != 1 || all[0].SongID != "new" {
			t.Errorf("remaining cooldowns = %+v", all)
		}

		if err := s.DeleteCooldown(ctx, "new"); err != nil {
			t.Fatal(err)
		}
		if _, err := s.FindCooldown(ctx, "new"); !errors.Is(err, ErrNotFound) {
			t.Errorf("find deleted cooldown err = %v", err)
		}
	})
}

func TestBlacklist(t *testing.T) {
	eachStore(t, func(t *testing.T, s SongStore) {
		ctx := context.Background()

		b := &models.BlacklistedSong{SongID: "x-y", Title: "Y", Artist: "X"}
		if err := s.CreateBlacklisted(ctx, b); err != nil {
			t.Fatal(err)
		}
		if err := s.CreateBlacklisted(ctx, &models.BlacklistedSong{SongID: "x-y", Title: "Y", Artist: "X"}); err != nil {
			t.Fatalf("second create should be a no-op: %v", err)
		}
		list, _ := s.ListBlacklist(ctx)
		if len(list) != 1 {
			t.Fatalf("blacklist len = %d, want 1", len(list))
		}

		if err := s.DeleteBlacklisted(ctx, "x-y"); err != nil {
			t.Fatal(err)
		}
		if err := s.DeleteBlacklisted(ctx, "x-y"); !errors.Is(err, ErrNotFound) {
			t.Errorf("second delete err = %v, want ErrNotFound", err)
		}
	})
}
