package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"markev/backend/services/charger-finder/internal/catalog"
	"markev/backend/services/charger-finder/internal/geo"
	"markev/backend/services/charger-finder/internal/models"
)

const (
	redisChargersKey     = "chargers:records"
	redisUsersByEmailKey = "users:by_email"
	redisUserEmailByID   = "users:email_by_id"
)

type redisCharger struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Address       string  `json:"address"`
	Type          string  `json:"type"`
	Status        string  `json:"status"`
	Price         float64 `json:"price"`
	Rating        float64 `json:"rating"`
	ConnectorType string  `json:"connector_type"`
}

// RedisChargerRepository keeps each charger as a JSON value in one hash keyed by id.
type RedisChargerRepository struct {
	client *redis.Client
}

// NewRedisChargerRepository returns redis-backed repository.
func NewRedisChargerRepository(client *redis.Client) *RedisChargerRepository {
	return &RedisChargerRepository{client: client}
}

// FindAll returns every charger ordered by id.
func (r *RedisChargerRepository) FindAll(ctx context.Context) ([]models.Charger, error) {
	values, err := r.client.HGetAll(ctx, redisChargersKey).Result()
	if err != nil {
		return nil, err
	}
	out := make([]models.Charger, 0, len(values))
	for _, raw := range values {
		var rc redisCharger
		if err := json.Unmarshal([]byte(raw), &rc); err != nil {
			return nil, err
		}
		out = append(out, models.Charger{
			ID:            rc.ID,
			Name:          rc.Name,
			Latitude:      rc.Latitude,
			Longitude:     rc.Longitude,
			Address:       rc.Address,
			Type:          rc.Type,
			Status:        models.Status(rc.Status),
			Price:         rc.Price,
			Rating:        rc.Rating,
			ConnectorType: rc.ConnectorType,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// FindInBounds loads the hash and applies the inclusive box predicate.
func (r *RedisChargerRepository) FindInBounds(ctx context.Context, box geo.BoundingBox) ([]models.Charger, error) {
	all, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Filter(all, box), nil
}

// InsertMany writes chargers with a single HSET.
func (r *RedisChargerRepository) InsertMany(ctx context.Context, chargers []models.Charger) ([]models.Charger, error) {
	if len(chargers) == 0 {
		return []models.Charger{}, nil
	}
	stored := make([]models.Charger, 0, len(chargers))
	fields := make([]interface{}, 0, len(chargers)*2)
	for _, c := range chargers {
		if strings.TrimSpace(c.ID) == "" {
			c.ID = uuid.NewString()
		}
		data, err := json.Marshal(redisCharger{
			ID:            c.ID,
			Name:          c.Name,
			Latitude:      c.Latitude,
			Longitude:     c.Longitude,
			Address:       c.Address,
			Type:          c.Type,
			Status:        string(c.Status),
			Price:         c.Price,
			Rating:        c.Rating,
			ConnectorType: c.ConnectorType,
		})
		if err != nil {
			return nil, err
		}
		fields = append(fields, c.ID, data)
		stored = append(stored, c)
	}
	if err := r.client.HSet(ctx, redisChargersKey, fields...).Err(); err != nil {
		return nil, err
	}
	return stored, nil
}

// DeleteAll removes the hash.
func (r *RedisChargerRepository) DeleteAll(ctx context.Context) error {
	return r.client.Del(ctx, redisChargersKey).Err()
}

// Count returns the number of stored chargers.
func (r *RedisChargerRepository) Count(ctx context.Context) (int64, error) {
	return r.client.HLen(ctx, redisChargersKey).Result()
}

type redisUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// RedisUserRepository keeps users as JSON in a hash keyed by email, plus an id index.
type RedisUserRepository struct {
	client *redis.Client
}

// NewRedisUserRepository returns redis-backed repository.
func NewRedisUserRepository(client *redis.Client) *RedisUserRepository {
	return &RedisUserRepository{client: client}
}

// Create inserts a user; HSETNX makes the email claim atomic.
func (r *RedisUserRepository) Create(ctx context.Context, user *models.User) error {
	record := redisUser{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(user.Email),
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
		CreatedAt:    time.Now().UTC(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	created, err := r.client.HSetNX(ctx, redisUsersByEmailKey, record.Email, data).Result()
	if err != nil {
		return err
	}
	if !created {
		return ErrDuplicateEmail
	}
	if err := r.client.HSet(ctx, redisUserEmailByID, record.ID, record.Email).Err(); err != nil {
		return err
	}
	user.ID = record.ID
	user.Email = record.Email
	user.CreatedAt = record.CreatedAt
	return nil
}

// GetByEmail fetches a user by email.
func (r *RedisUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	record, err := r.get(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return &models.User{
		ID:           record.ID,
		Email:        record.Email,
		PasswordHash: record.PasswordHash,
		Role:         record.Role,
		CreatedAt:    record.CreatedAt,
	}, nil
}

// UpdatePasswordHash replaces the digest of the user with id.
func (r *RedisUserRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	email, err := r.client.HGet(ctx, redisUserEmailByID, id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrUserNotFound
		}
		return err
	}
	record, err := r.get(ctx, email)
	if err != nil {
		return err
	}
	record.PasswordHash = hash
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return r.client.HSet(ctx, redisUsersByEmailKey, email, data).Err()
}

func (r *RedisUserRepository) get(ctx context.Context, email string) (*redisUser, error) {
	raw, err := r.client.HGet(ctx, redisUsersByEmailKey, email).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	var record redisUser
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, err
	}
	return &record, nil
}
