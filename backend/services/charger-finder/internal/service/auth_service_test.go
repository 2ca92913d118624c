package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"markev/backend/services/charger-finder/internal/models"
	"markev/backend/services/charger-finder/internal/password"
	"markev/backend/services/charger-finder/internal/repository"
)

func newTestAuthService() (*AuthService, *TokenService, *repository.MemoryUserRepository) {
	repo := repository.NewMemoryUserRepository()
	tokens := NewTokenService("test-secret", time.Hour)
	svc := NewAuthService(repo, password.NewBcryptHasher(bcrypt.MinCost), tokens, zap.NewNop())
	return svc, tokens, repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, tokens, repo := newTestAuthService()
	ctx := context.Background()

	token, user, err := svc.Register(ctx, "A@x.io", "p1", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != models.DefaultRole {
		t.Fatalf("expected default role, got %s", user.Role)
	}
	claims, err := tokens.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != models.DefaultRole {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	stored, err := repo.GetByEmail(ctx, "a@x.io")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.PasswordHash == "p1" {
		t.Fatalf("password stored in plaintext")
	}

	token, user, err = svc.Login(ctx, "a@x.io", "p1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" || user.Email != "a@x.io" {
		t.Fatalf("unexpected login result: %q %+v", token, user)
	}
}

func TestRegisterErrors(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "", "p1", ""); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	if _, _, err := svc.Register(ctx, "a@x.io", "", ""); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	if _, _, err := svc.Register(ctx, "a@x.io", "p1", "admin"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := svc.Register(ctx, "a@x.io", "p2", ""); !errors.Is(err, ErrEmailInUse) {
		t.Fatalf("expected ErrEmailInUse, got %v", err)
	}
}

func TestRegisterClientRoles(t *testing.T) {
	svc, tokens, _ := newTestAuthService()
	ctx := context.Background()

	token, user, err := svc.Register(ctx, "mallory@x.io", "p1", "admin")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	claims, err := tokens.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if user.Role != models.DefaultRole || claims.Role != models.DefaultRole {
		t.Fatalf("client role must be ignored by default, got %s / %s", user.Role, claims.Role)
	}

	svc.AllowClientRoles(true)
	_, user, err = svc.Register(ctx, "ops@x.io", "p1", "admin")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != "admin" {
		t.Fatalf("expected admin role when client roles are allowed, got %s", user.Role)
	}
}

func TestLoginErrors(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	if _, _, err := svc.Login(ctx, "nobody@x.io", "p1"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, _, err := svc.Register(ctx, "a@x.io", "p1", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := svc.Login(ctx, "a@x.io", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "a@x.io", ""); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
}

func TestUpsertUser(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	user, created, err := svc.UpsertUser(ctx, "demo@example.com", "123456", "admin")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !created || user.Role != "admin" {
		t.Fatalf("expected new admin user, got created=%v %+v", created, user)
	}

	user, created, err = svc.UpsertUser(ctx, "demo@example.com", "654321", "user")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if created {
		t.Fatalf("expected existing user to be updated")
	}
	if user.Role != "admin" {
		t.Fatalf("role must not change on update, got %s", user.Role)
	}

	if _, _, err := svc.Login(ctx, "demo@example.com", "123456"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password must be rejected, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "demo@example.com", "654321"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}
