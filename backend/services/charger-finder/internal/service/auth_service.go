package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"markev/backend/services/charger-finder/internal/metrics"
	"markev/backend/services/charger-finder/internal/models"
	"markev/backend/services/charger-finder/internal/password"
	"markev/backend/services/charger-finder/internal/repository"
)

var (
	// ErrMissingFields is returned when email or password is blank.
	ErrMissingFields = errors.New("auth: email and password are required")
	// ErrEmailInUse is returned when attempting to register duplicate email.
	ErrEmailInUse = errors.New("auth: email already registered")
	// ErrUserNotFound is returned when login names an unknown email.
	ErrUserNotFound = errors.New("auth: user not found")
	// ErrInvalidCredentials represents a password mismatch.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
)

// AuthService contains registration/login logic.
type AuthService struct {
	repo      repository.UserRepository
	hasher    password.Hasher
	tokenizer TokenIssuer
	logger    *zap.Logger

	clientRoles bool
}

// NewAuthService builds AuthService.
func NewAuthService(repo repository.UserRepository, hasher password.Hasher, tokenizer TokenIssuer, logger *zap.Logger) *AuthService {
	return &AuthService{
		repo:      repo,
		hasher:    hasher,
		tokenizer: tokenizer,
		logger:    logger,
	}
}

// AllowClientRoles lets Register honor the role a client asks for. When off, every
// registered user gets DefaultRole and privileged accounts come from UpsertUser.
func (s *AuthService) AllowClientRoles(allow bool) {
	s.clientRoles = allow
}

// Register creates a user and returns a session token for it.
func (s *AuthService) Register(ctx context.Context, email, password, role string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		metrics.ObserveAuth("register", "invalid")
		return "", nil, ErrMissingFields
	}
	if !s.clientRoles && role != "" && role != models.DefaultRole {
		s.logger.Warn("ignoring client supplied role", zap.String("email", email), zap.String("role", role))
		role = ""
	}
	if strings.TrimSpace(role) == "" {
		role = models.DefaultRole
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		metrics.ObserveAuth("register", "conflict")
		return "", nil, ErrEmailInUse
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return "", nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			metrics.ObserveAuth("register", "conflict")
			return "", nil, ErrEmailInUse
		}
		return "", nil, err
	}

	token, err := s.tokenizer.GenerateToken(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}

	metrics.ObserveAuth("register", "ok")
	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("email", user.Email))
	return token, user, nil
}

// Login authenticates a user and produces a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		metrics.ObserveAuth("login", "invalid")
		return "", nil, ErrMissingFields
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			metrics.ObserveAuth("login", "not_found")
			return "", nil, ErrUserNotFound
		}
		return "", nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		metrics.ObserveAuth("login", "rejected")
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokenizer.GenerateToken(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}

	metrics.ObserveAuth("login", "ok")
	return token, user, nil
}

// UpsertUser creates the user, or replaces the password of an existing one. The role of an
// existing user is left as it is.
func (s *AuthService) UpsertUser(ctx context.Context, email, password, role string) (*models.User, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, false, ErrMissingFields
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.repo.UpdatePasswordHash(ctx, existing.ID, hash); err != nil {
			return nil, false, err
		}
		existing.PasswordHash = hash
		s.logger.Info("user password updated", zap.String("user_id", existing.ID))
		return existing, false, nil
	case !errors.Is(err, repository.ErrUserNotFound):
		return nil, false, err
	}

	if strings.TrimSpace(role) == "" {
		role = models.DefaultRole
	}
	user := &models.User{Email: email, PasswordHash: hash, Role: role}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, false, err
	}
	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("email", user.Email))
	return user, true, nil
}
