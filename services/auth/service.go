package auth

import (
	"context"
	"fmt"
	"time"

	identityRepo "darisni/database/repository/identity"
	"darisni/models"
	"darisni/utils"

	"golang.org/x/crypto/bcrypt"
)

// AuthResponse is returned after successful authentication.
type AuthResponse struct {
	ID    string `json:"id"`
	Token string `json:"token"`
	Email string `json:"email"`
}

// AuthService authenticates existing identities. Registration lives in the
// registration service; this is where "already registered, sign in instead"
// lands.
type AuthService interface {
	Authenticate(ctx context.Context, email, password string) (*AuthResponse, error)
	CurrentIdentity(ctx context.Context, identityID string) (*models.Identity, error)
}

// DefaultAuthService is the production implementation.
type DefaultAuthService struct {
	Identities identityRepo.IdentityRepository
}

var _ AuthService = (*DefaultAuthService)(nil)

// Authenticate verifies credentials and issues a fresh token, storing its
// hash on the identity record.
func (s *DefaultAuthService) Authenticate(ctx context.Context, email, password string) (*AuthResponse, error) {
	identity, err := s.Identities.GetByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up identity: %w", err)
	}
	if identity == nil {
		return nil, fmt.Errorf("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}
	if !identity.Verified {
		return nil, fmt.Errorf("account not verified; complete registration first")
	}

	token, err := utils.GenerateToken(identity.ID, identity.Email, 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("failed to generate auth token: %w", err)
	}
	identity.TokenHash = utils.HashToken(token)
	if err := s.Identities.Update(identity); err != nil {
		return nil, fmt.Errorf("failed to store token hash: %w", err)
	}

	return &AuthResponse{ID: identity.ID, Token: token, Email: identity.Email}, nil
}

// CurrentIdentity resolves an authenticated identity by ID.
func (s *DefaultAuthService) CurrentIdentity(ctx context.Context, identityID string) (*models.Identity, error) {
	identity, err := s.Identities.GetByID(identityID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch identity: %w", err)
	}
	if identity == nil {
		return nil, fmt.Errorf("identity not found")
	}
	return identity, nil
}
