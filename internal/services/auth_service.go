package services

import (
	"errors"
	"strings"

	"github.com/stagedoor/backend/internal/auth"
	"github.com/stagedoor/backend/internal/config"
	"github.com/stagedoor/backend/internal/utils"
	jwtpkg "github.com/stagedoor/backend/pkg/jwt"
	"github.com/stagedoor/backend/pkg/validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
)

type AuthService struct {
	verifier auth.Verifier
	cfg      *config.Config
}

func NewAuthService(verifier auth.Verifier, cfg *config.Config) *AuthService {
	return &AuthService{
		verifier: verifier,
		cfg:      cfg,
	}
}

// Login checks the pair and returns a session token.
func (s *AuthService) Login(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if !validation.ValidateUsername(username) || password == "" || !s.verifier.Verify(username, password) {
		utils.Log.WithField("username", username).Warn("Failed console login")
		return "", ErrInvalidCredentials
	}

	token, err := jwtpkg.GenerateToken(username, jwtpkg.SessionToken, s.cfg.JWTSecret, s.cfg.JWTAccessTokenDuration)
	if err != nil {
		return "", err
	}
	utils.Log.WithField("username", username).Info("Console login")
	return token, nil
}

// Session returns the username behind a valid session token.
func (s *AuthService) Session(token string) (string, error) {
	claims, err := jwtpkg.ValidateTokenType(token, s.cfg.JWTSecret, jwtpkg.SessionToken)
	if err != nil {
		return "", ErrInvalidSession
	}
	return claims.Username, nil
}
