package djclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stagedoor/backend/internal/auth"
	"github.com/stagedoor/backend/internal/cache"
	"github.com/stagedoor/backend/internal/config"
	"github.com/stagedoor/backend/internal/finance"
	"github.com/stagedoor/backend/internal/queue"
	"github.com/stagedoor/backend/internal/scoring"
	"github.com/stagedoor/backend/internal/server"
	"github.com/stagedoor/backend/internal/services"
	"github.com/stagedoor/backend/internal/store"
)

type stubSource struct{}

func (stubSource) FetchBands(ctx context.Context) ([]byte, error) {
	return []byte(`{"records":[{"id":"b1","name":"Midland","venueFit":90,"recommendation":"strong consider"}]}`), nil
}

func (stubSource) TriggerRefresh(ctx context.Context, last time.Time) error { return nil }

// newAPI runs the real router on an in-memory store.
func newAPI(t *testing.T) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.New()
	cfg.JWTSecret = "test-secret"
	mem := cache.NewMemory()
	srv := server.New(cfg, server.Services{
		Bands: services.NewBandService(stubSource{}, mem, scoring.DefaultProfiles(), cfg),
		DJ:    services.NewDJService(store.NewMemorySongStore(), cfg),
		Auth:  services.NewAuthService(auth.VerifierFunc(func(u, p string) bool { return p == "encore" }), cfg),
	}, mem, nil)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return New(Options{BaseURL: ts.URL, Timeout: 5 * time.Second})
}

func TestQueueAgainstAPI(t *testing.T) {
	c := newAPI(t)
	ctx := context.Background()

	for _, song := range [][2]string{{"Remember When", "Alan Jackson"}, {"The Dance", "Garth Brooks"}, {"The Dance", "Garth Brooks"}} {
		if _, err := c.AddRequest(ctx, song[0], song[1]); err != nil {
			t.Fatalf("AddRequest: %v", err)
		}
	}

	q := queue.New(c, 2*time.Hour)
	if err := q.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	s := q.Snapshot()
	if len(s.Requests) != 2 || s.Requests[0].SongID != "garth-brooks-the-dance" || s.Requests[0].RequestCount != 2 {
		t.Fatalf("requests = %+v", s.Requests)
	}

	if err := q.PlaySong(ctx, s.Requests[0].ID.String()); err != nil {
		t.Fatalf("PlaySong: %v", err)
	}
	if err := q.AddToBlacklist(ctx, "Remember When", "Alan Jackson"); err != nil {
		t.Fatalf("AddToBlacklist: %v", err)
	}

	// the server agrees with the optimistic view
	if err := q.Load(ctx); err != nil {
		t.Fatal(err)
	}
	s = q.Snapshot()
	if len(s.Requests) != 0 || len(s.Cooldown) != 1 || len(s.Blacklist) != 1 {
		t.Errorf("state after reload = %+v", s)
	}

	if err := q.RemoveFromBlacklist(ctx, "alan-jackson-remember-when"); err != nil {
		t.Fatalf("RemoveFromBlacklist: %v", err)
	}
	if _, err := c.AddRequest(ctx, "The Dance", "Garth Brooks"); !errors.Is(err, ErrRemote) {
		t.Errorf("request during cooldown err = %v, want ErrRemote", err)
	}
}

func TestBandsAndRefresh(t *testing.T) {
	c := newAPI(t)
	ctx := context.Background()

	bands, err := c.Bands(ctx, BandQuery{Focus: "genre_fit", Limit: 5})
	if err != nil {
		t.Fatalf("Bands: %v", err)
	}
	if len(bands) != 1 || bands[0].OverallScore != 36 || bands[0].Recommendation != "STRONG_CONSIDER" {
		t.Errorf("bands = %+v", bands)
	}

	if err := c.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	err = c.Refresh(ctx)
	var tooSoon *RefreshTooSoonError
	if !errors.As(err, &tooSoon) || tooSoon.RetryAfter <= 0 {
		t.Errorf("second refresh err = %v", err)
	}
}

func TestBreakEvenAndLogin(t *testing.T) {
	c := newAPI(t)
	ctx := context.Background()

	res, disp, err := c.BreakEven(ctx, finance.Inputs{
		ExpectedAttendance: 200, TicketPrice: 15, CoverCharge: 10,
		BarRevenuePerGuest: 25, BarCOGSPct: 30,
		Staff: 800, Utilities: 150, Facility: 250, Marketing: 100, Other: 200, BandGuarantee: 500,
	})
	if err != nil {
		t.Fatalf("BreakEven: %v", err)
	}
	if res.BreakEvenAttendance != 73 || disp.Venue.TotalRevenue != "$7,000.00" {
		t.Errorf("result = %+v / %+v", res, disp)
	}

	if tok, err := c.Login(ctx, "admin", "encore"); err != nil || tok == "" {
		t.Errorf("Login = %q, %v", tok, err)
	}
	if _, err := c.Login(ctx, "admin", "nope"); !errors.Is(err, ErrRemote) {
		t.Errorf("bad login err = %v", err)
	}
}

func TestFetchRejectsFailureEnvelope(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"maintenance"}`))
	}))
	defer ts.Close()

	c := New(Options{BaseURL: ts.URL})
	if _, err := c.Fetch(context.Background()); !errors.Is(err, ErrRemote) {
		t.Errorf("err = %v, want ErrRemote", err)
	}
}
