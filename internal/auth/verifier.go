// Package auth checks console credentials. It is a UI gate: the handlers
// issue a session token once a Verifier accepts the pair.
package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrNoCredentials = errors.New("no admin credentials configured")

// Verifier decides whether a username/password pair may open the console.
type Verifier interface {
	Verify(username, password string) bool
}

// BcryptVerifier accepts a single account whose password is stored as a
// bcrypt hash.
type BcryptVerifier struct {
	username string
	hash     []byte
}

// NewBcryptVerifier takes the configured hash, or hashes plain when no hash
// is configured (local development).
func NewBcryptVerifier(username, hash, plain string) (*BcryptVerifier, error) {
	if username == "" || (hash == "" && plain == "") {
		return nil, ErrNoCredentials
	}
	h := []byte(hash)
	if hash == "" {
		var err error
		h, err = bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
	}
	if _, err := bcrypt.Cost(h); err != nil {
		return nil, err
	}
	return &BcryptVerifier{username: username, hash: h}, nil
}

func (v *BcryptVerifier) Verify(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(v.hash, []byte(password)) == nil
	return userOK && passOK
}

// VerifierFunc adapts a plain function.
type VerifierFunc func(username, password string) bool

func (f VerifierFunc) Verify(username, password string) bool { return f(username, password) }
