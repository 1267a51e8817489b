package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stagedoor/backend/internal/auth"
	"github.com/stagedoor/backend/internal/cache"
	"github.com/stagedoor/backend/internal/config"
	"github.com/stagedoor/backend/internal/djclient"
	"github.com/stagedoor/backend/internal/scoring"
	"github.com/stagedoor/backend/internal/server"
	"github.com/stagedoor/backend/internal/services"
	"github.com/stagedoor/backend/internal/store"
)

type stubSource struct{}

func (stubSource) FetchBands(ctx context.Context) ([]byte, error) {
	return []byte(`{"records":[
		{"id":"b1","name":"Midland","genre":"Country","venueFit":90,"recommendation":"Book Soon"},
		{"id":"b2","name":"Old Crow","hasPlayed":"Yes"}
	]}`), nil
}

func (stubSource) TriggerRefresh(ctx context.Context, last time.Time) error { return nil }

// harness runs stagectl against a live router backed by in-memory stores.
type harness struct {
	t      *testing.T
	url    string
	config string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.New()
	cfg.JWTSecret = "test-secret"
	mem := cache.NewMemory()
	srv := server.New(cfg, server.Services{
		Bands: services.NewBandService(stubSource{}, mem, scoring.DefaultProfiles(), cfg),
		DJ:    services.NewDJService(store.NewMemorySongStore(), cfg),
		Auth:  services.NewAuthService(auth.VerifierFunc(func(u, p string) bool { return u == "admin" && p == "encore" }), cfg),
	}, mem, nil)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &harness{t: t, url: ts.URL, config: filepath.Join(t.TempDir(), "stagectl.yaml")}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", h.config, "--api", h.url}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	if err != nil {
		h.t.Fatalf("stagectl %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestRequestFlow(t *testing.T) {
	h := newHarness(t)

	h.mustRun("requests", "add", "The Dance", "Garth Brooks")
	out := h.mustRun("requests", "add", "The Dance", "Garth Brooks")
	if !strings.Contains(out, "(2 requests)") {
		t.Errorf("second add output = %q", out)
	}
	h.mustRun("requests", "add", "Remember When", "Alan Jackson")

	out = h.mustRun("requests")
	if !strings.Contains(out, "garth-brooks-the-dance") || !strings.Contains(out, "3 requests, 2 songs") {
		t.Errorf("requests output:\n%s", out)
	}
	if strings.Index(out, "garth-brooks-the-dance") > strings.Index(out, "alan-jackson-remember-when") {
		t.Errorf("most requested song should list first:\n%s", out)
	}

	out = h.mustRun("play", "garth-brooks-the-dance")
	if !strings.Contains(out, `Playing "The Dance" by Garth Brooks`) {
		t.Errorf("play output = %q", out)
	}

	out = h.mustRun("cooldowns")
	if !strings.Contains(out, "garth-brooks-the-dance") || !strings.Contains(out, "01:59:") {
		t.Errorf("cooldowns output:\n%s", out)
	}

	if _, err := h.run("requests", "add", "The Dance", "Garth Brooks"); !errors.Is(err, djclient.ErrRemote) {
		t.Errorf("request during cooldown err = %v", err)
	}
}

func TestPlayUnknownRequest(t *testing.T) {
	h := newHarness(t)
	if _, err := h.run("play", "nobody-nothing"); err == nil {
		t.Error("expected an error for an unknown request")
	}
}

func TestBlacklistCommands(t *testing.T) {
	h := newHarness(t)

	h.mustRun("requests", "add", "Cotton Eye Joe", "Rednex")
	h.mustRun("blacklist", "add", "Cotton Eye Joe", "Rednex")

	out := h.mustRun("blacklist", "ls")
	if !strings.Contains(out, "rednex-cotton-eye-joe") {
		t.Errorf("blacklist output:\n%s", out)
	}
	if out := h.mustRun("requests"); !strings.Contains(out, "No requests") {
		t.Errorf("blacklisting should drop the request:\n%s", out)
	}

	h.mustRun("blacklist", "rm", "rednex-cotton-eye-joe")
	if out := h.mustRun("blacklist", "ls"); !strings.Contains(out, "empty") {
		t.Errorf("blacklist after rm:\n%s", out)
	}
}

func TestBandsCommand(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("bands", "--focus", "genre_fit")
	if !strings.Contains(out, "36") || !strings.Contains(out, "Midland") || !strings.Contains(out, "BOOK_SOON") {
		t.Errorf("bands output:\n%s", out)
	}
	if strings.Contains(out, "Old Crow") {
		t.Errorf("played bands belong to the history view:\n%s", out)
	}

	out = h.mustRun("bands", "--view", "history")
	if !strings.Contains(out, "Old Crow") {
		t.Errorf("history output:\n%s", out)
	}
}

func TestRefreshGate(t *testing.T) {
	h := newHarness(t)

	if out := h.mustRun("refresh"); !strings.Contains(out, "Refresh started") {
		t.Errorf("refresh output = %q", out)
	}
	_, err := h.run("refresh")
	var tooSoon *djclient.RefreshTooSoonError
	if !errors.As(err, &tooSoon) {
		t.Errorf("second refresh err = %v, want RefreshTooSoonError", err)
	}
}

var breakEvenArgs = []string{
	"breakeven",
	"--attendance", "200", "--ticket", "15", "--cover", "10",
	"--bar", "25", "--bar-cogs", "30",
	"--staff", "800", "--utilities", "150", "--facility", "250",
	"--marketing", "100", "--other", "200", "--guarantee", "500",
}

func TestBreakEven(t *testing.T) {
	h := newHarness(t)

	for _, extra := range [][]string{nil, {"--offline"}} {
		out := h.mustRun(append(breakEvenArgs, extra...)...)
		for _, want := range []string{"$7,000.00", "Break-even attendance: 73", "Risk: Low", "$27.50 per guest"} {
			if !strings.Contains(out, want) {
				t.Errorf("%v output missing %q:\n%s", extra, want, out)
			}
		}
	}

	if _, err := h.run("breakeven", "--offline", "--attendance", "-5"); err == nil {
		t.Error("negative attendance should be rejected")
	}
}

func TestLoginSavesToken(t *testing.T) {
	h := newHarness(t)

	if _, err := h.run("login", "-u", "admin", "-p", "wrong"); err == nil {
		t.Fatal("bad password accepted")
	}
	h.mustRun("login", "-u", "admin", "-p", "encore")

	data, err := os.ReadFile(h.config)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if !strings.Contains(string(data), "token:") {
		t.Errorf("config missing token:\n%s", data)
	}
}
