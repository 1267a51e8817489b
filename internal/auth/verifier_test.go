package auth

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptVerifier(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("encore"), bcrypt.MinCost)

	tests := []struct {
		name       string
		hash       string
		plain      string
		user, pass string
		want       bool
	}{
		{"hash ok", string(hash), "", "admin", "encore", true},
		{"hash wrong password", string(hash), "", "admin", "nope", false},
		{"hash wrong user", string(hash), "", "root", "encore", false},
		{"plain ok", "", "encore", "admin", "encore", true},
		{"plain wrong", "", "encore", "admin", "Encore", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewBcryptVerifier("admin", tt.hash, tt.plain)
			if err != nil {
				t.Fatalf("NewBcryptVerifier: %v", err)
			}
			if got := v.Verify(tt.user, tt.pass); got != tt.want {
				t.Errorf("Verify = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBcryptVerifierConfig(t *testing.T) {
	if _, err := NewBcryptVerifier("admin", "", ""); !errors.Is(err, ErrNoCredentials) {
		t.Errorf("err = %v, want ErrNoCredentials", err)
	}
	if _, err := NewBcryptVerifier("admin", "not-a-hash", ""); err == nil {
		t.Error("malformed hash accepted")
	}
}
