package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stagedoor/backend/internal/automation"
	"github.com/stagedoor/backend/internal/cache"
	"github.com/stagedoor/backend/internal/models"
)

type fakePoster struct {
	sent []automation.BandStatus
	err  error
}

func (f *fakePoster) PostBandStatus(ctx context.Context, s automation.BandStatus) error {
	f.sent = append(f.sent, s)
	return f.err
}

func TestBandStatusUpdate(t *testing.T) {
	db := setupInMemoryDB(t)
	poster := &fakePoster{}
	mem := cache.NewMemory()
	svc := NewBandStatusService(db, poster, mem)
	ctx := context.Background()

	mem.Set(ctx, bandPayloadKey, []byte(`[]`), 0)

	change, err := svc.Update(ctx, BandStatusInput{
		BandID:     "rec42",
		BandName:   "Midland",
		BandAction: models.BandActionPlayed,
		Payload:    map[string]interface{}{"playedOn": "2026-03-14"},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !change.Delivered || change.Payload != `{"playedOn":"2026-03-14"}` {
		t.Errorf("change = %+v", change)
	}
	if len(poster.sent) != 1 || poster.sent[0].BandAction != "Yes" {
		t.Errorf("sent = %+v", poster.sent)
	}
	if _, err := mem.Get(ctx, bandPayloadKey); !errors.Is(err, cache.ErrMiss) {
		t.Error("band cache should be invalidated")
	}

	poster.err = errors.New("webhook down")
	if _, err := svc.Update(ctx, BandStatusInput{BandID: "rec42", BandAction: models.BandActionRemoved}); err == nil {
		t.Fatal("expected delivery error")
	}

	history, err := svc.History(ctx, "rec42", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 {
		t.Fatalf("history = %d rows, want 2", len(history))
	}
	failed := 0
	for _, h := range history {
		if !h.Delivered && h.Error != "" {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("undelivered rows = %d, want 1", failed)
	}
}

func TestBandStatusRejectsUnknownAction(t *testing.T) {
	poster := &fakePoster{}
	svc := NewBandStatusService(setupInMemoryDB(t), poster, nil)
	_, err := svc.Update(context.Background(), BandStatusInput{BandID: "rec1", BandAction: "Maybe"})
	if !errors.Is(err, ErrInvalidBandAction) {
		t.Errorf("err = %v, want ErrInvalidBandAction", err)
	}
	if len(poster.sent) != 0 {
		t.Error("invalid action must not reach the webhook")
	}
}

func TestBandStatusLogsCacheInvalidationFailure(t *testing.T) {
	hook := captureLogs(t)
	svc := NewBandStatusService(setupInMemoryDB(t), &fakePoster{}, failingDel{cache.NewMemory()})

	_, err := svc.Update(context.Background(), BandStatusInput{
		BandID:     "rec7",
		BandName:   "Midland",
		BandAction: models.BandActionPlayed,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !logged(hook, "failed to invalidate band cache") {
		t.Errorf("invalidation failure not logged: %+v", hook.AllEntries())
	}
}
