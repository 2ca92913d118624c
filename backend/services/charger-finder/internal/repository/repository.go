package repository

import (
	"context"
	"errors"

	"markev/backend/services/charger-finder/internal/geo"
	"markev/backend/services/charger-finder/internal/models"
)

var (
	// ErrUserNotFound represents a missing user.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when a store rejects a second user with the same email.
	ErrDuplicateEmail = errors.New("user email already exists")
)

// ChargerRepository is the persistence boundary for charger records.
type ChargerRepository interface {
	FindAll(ctx context.Context) ([]models.Charger, error)
	// FindInBounds returns records with latitude and longitude inside box, edges included.
	FindInBounds(ctx context.Context, box geo.BoundingBox) ([]models.Charger, error)
	// InsertMany stores records and returns them with their assigned ids.
	InsertMany(ctx context.Context, chargers []models.Charger) ([]models.Charger, error)
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

// UserRepository is the persistence boundary for accounts.
type UserRepository interface {
	// Create stores a user and fills its id and creation time.
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}
