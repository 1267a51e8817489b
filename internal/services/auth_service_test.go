package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stagedoor/backend/internal/auth"
	jwtpkg "github.com/stagedoor/backend/pkg/jwt"
)

func TestAuthLoginAndSession(t *testing.T) {
	verifier := auth.VerifierFunc(func(u, p string) bool { return u == "booker" && p == "encore" })
	svc := NewAuthService(verifier, testConfig())

	token, err := svc.Login("booker", "encore")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	user, err := svc.Session(token)
	if err != nil || user != "booker" {
		t.Errorf("Session = %q, %v", user, err)
	}

	if _, err := svc.Login("booker", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Session("garbage"); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("err = %v, want ErrInvalidSession", err)
	}
}

func TestAuthRejectsMalformedUsername(t *testing.T) {
	called := false
	verifier := auth.VerifierFunc(func(u, p string) bool { called = true; return true })
	svc := NewAuthService(verifier, testConfig())

	for _, name := range []string{"ab", "book er", "booker;drop", strings.Repeat("x", 31)} {
		if _, err := svc.Login(name, "encore"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login(%q) err = %v, want ErrInvalidCredentials", name, err)
		}
	}
	if called {
		t.Error("verifier consulted for a malformed username")
	}
}

func TestSessionRejectsOtherTokenTypes(t *testing.T) {
	cfg := testConfig()
	svc := NewAuthService(auth.VerifierFunc(func(u, p string) bool { return true }), cfg)

	other, err := jwtpkg.GenerateToken("booker", "refresh", cfg.JWTSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Session(other); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("err = %v, want ErrInvalidSession", err)
	}
}
