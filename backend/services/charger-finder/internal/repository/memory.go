package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"markev/backend/services/charger-finder/internal/catalog"
	"markev/backend/services/charger-finder/internal/geo"
	"markev/backend/services/charger-finder/internal/models"
)

// MemoryChargerRepository keeps chargers in process. Insertion order is preserved.
type MemoryChargerRepository struct {
	mu       sync.RWMutex
	chargers []models.Charger
}

// NewMemoryChargerRepository returns an empty repository.
func NewMemoryChargerRepository() *MemoryChargerRepository {
	return &MemoryChargerRepository{}
}

// FindAll returns a copy of every record.
func (r *MemoryChargerRepository) FindAll(ctx context.Context) ([]models.Charger, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Charger, len(r.chargers))
	copy(out, r.chargers)
	return out, nil
}

// FindInBounds filters records with the inclusive box predicate.
func (r *MemoryChargerRepository) FindInBounds(ctx context.Context, box geo.BoundingBox) ([]models.Charger, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return catalog.Filter(r.chargers, box), nil
}

// InsertMany appends records, generating ids for those without one.
func (r *MemoryChargerRepository) InsertMany(ctx context.Context, chargers []models.Charger) ([]models.Charger, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stored := make([]models.Charger, len(chargers))
	for i, c := range chargers {
		if strings.TrimSpace(c.ID) == "" {
			c.ID = uuid.NewString()
		}
		stored[i] = c
	}
	r.mu.Lock()
	r.chargers = append(r.chargers, stored...)
	r.mu.Unlock()
	return stored, nil
}

// DeleteAll drops every record.
func (r *MemoryChargerRepository) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	r.chargers = nil
	r.mu.Unlock()
	return nil
}

// Count returns the number of records.
func (r *MemoryChargerRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.chargers)), nil
}

// MemoryUserRepository keeps users in process, keyed by normalized email.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

// NewMemoryUserRepository returns an empty repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]models.User)}
}

// Create inserts a user, rejecting duplicate emails.
func (r *MemoryUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	user.Email = normalizeEmail(user.Email)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Email]; exists {
		return ErrDuplicateEmail
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	r.users[user.Email] = *user
	return nil
}

// GetByEmail fetches a user by email.
func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[normalizeEmail(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// UpdatePasswordHash replaces the digest of the user with id.
func (r *MemoryUserRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for email, user := range r.users {
		if user.ID == id {
			user.PasswordHash = hash
			r.users[email] = user
			return nil
		}
	}
	return ErrUserNotFound
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
