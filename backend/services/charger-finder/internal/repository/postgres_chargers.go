package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"markev/backend/services/charger-finder/internal/geo"
	"markev/backend/services/charger-finder/internal/models"
)

// Schema statements for the postgres driver, applied with libs/db.EnsureSchema.
const (
	CreateChargersTable = `
		CREATE TABLE IF NOT EXISTS chargers (
			id             TEXT PRIMARY KEY,
			name           TEXT NOT NULL,
			latitude       DOUBLE PRECISION NOT NULL CHECK (latitude BETWEEN -90 AND 90),
			longitude      DOUBLE PRECISION NOT NULL CHECK (longitude BETWEEN -180 AND 180),
			address        TEXT NOT NULL,
			type           TEXT NOT NULL DEFAULT '',
			status         TEXT NOT NULL DEFAULT 'available',
			price          DOUBLE PRECISION NOT NULL DEFAULT 0,
			rating         DOUBLE PRECISION NOT NULL DEFAULT 0,
			connector_type TEXT NOT NULL DEFAULT 'Type 2'
		)
	`

	CreateChargersCoordinatesIndex = `CREATE INDEX IF NOT EXISTS chargers_lat_lng_idx ON chargers (latitude, longitude)`

	CreateUsersTable = `
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role          TEXT NOT NULL DEFAULT 'user',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
)

const chargerColumns = `id, name, latitude, longitude, address, type, status, price, rating, connector_type`

// PostgresChargerRepository stores chargers in the chargers table.
type PostgresChargerRepository struct {
	db *sql.DB
}

// NewPostgresChargerRepository returns repository instance.
func NewPostgresChargerRepository(db *sql.DB) *PostgresChargerRepository {
	return &PostgresChargerRepository{db: db}
}

// FindAll returns every charger.
func (r *PostgresChargerRepository) FindAll(ctx context.Context) ([]models.Charger, error) {
	query := `SELECT ` + chargerColumns + ` FROM chargers ORDER BY id`
	return r.query(ctx, query)
}

// FindInBounds returns chargers inside box; BETWEEN is inclusive on both ends.
func (r *PostgresChargerRepository) FindInBounds(ctx context.Context, box geo.BoundingBox) ([]models.Charger, error) {
	query := `SELECT ` + chargerColumns + ` FROM chargers
		WHERE latitude BETWEEN $1 AND $2
		  AND longitude BETWEEN $3 AND $4
		ORDER BY id`
	return r.query(ctx, query, box.SouthWestLat, box.NorthEastLat, box.SouthWestLng, box.NorthEastLng)
}

func (r *PostgresChargerRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.Charger, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Charger, 0)
	for rows.Next() {
		var (
			c      models.Charger
			status string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Latitude, &c.Longitude, &c.Address, &c.Type, &status, &c.Price, &c.Rating, &c.ConnectorType); err != nil {
			return nil, err
		}
		c.Status = models.Status(status)
		out = append(out, c)
	}
	return out, rows.Err()
}

// InsertMany stores chargers in one transaction.
func (r *PostgresChargerRepository) InsertMany(ctx context.Context, chargers []models.Charger) ([]models.Charger, error) {
	if len(chargers) == 0 {
		return []models.Charger{}, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	const query = `INSERT INTO chargers (` + chargerColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	stored := make([]models.Charger, 0, len(chargers))
	for _, c := range chargers {
		if strings.TrimSpace(c.ID) == "" {
			c.ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, query, c.ID, c.Name, c.Latitude, c.Longitude, c.Address, c.Type, string(c.Status), c.Price, c.Rating, c.ConnectorType); err != nil {
			return nil, err
		}
		stored = append(stored, c)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return stored, nil
}

// DeleteAll removes every charger.
func (r *PostgresChargerRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM chargers`)
	return err
}

// Count returns the number of stored chargers.
func (r *PostgresChargerRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chargers`).Scan(&n)
	return n, err
}
