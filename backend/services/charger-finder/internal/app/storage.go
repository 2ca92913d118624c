package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	libdb "markev/backend/libs/db"
	libmongo "markev/backend/libs/mongo"
	libredis "markev/backend/libs/redis"
	appconfig "markev/backend/services/charger-finder/internal/config"
	"markev/backend/services/charger-finder/internal/repository"
)

const schemaTimeout = 10 * time.Second

// Stores holds the repositories of the configured driver and the handle that backs them.
type Stores struct {
	Chargers repository.ChargerRepository
	Users    repository.UserRepository
	close    func(context.Context) error
}

// Close releases the store handle.
func (s *Stores) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// OpenStores connects to the configured driver and prepares its indexes or schema.
func OpenStores(cfg *appconfig.Config, logger *zap.Logger) (*Stores, error) {
	ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
	defer cancel()

	switch cfg.Storage.Driver {
	case appconfig.DriverMemory:
		logger.Warn("using in-memory storage; data is lost on restart")
		return &Stores{
			Chargers: repository.NewMemoryChargerRepository(),
			Users:    repository.NewMemoryUserRepository(),
		}, nil

	case appconfig.DriverMongo:
		client, err := libmongo.NewMongoClient(cfg.Mongo.URI, libmongo.Credentials{
			Username:   cfg.Mongo.Username,
			Password:   cfg.Mongo.Password,
			AuthSource: cfg.Mongo.AuthSource,
		})
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		db := client.Database(cfg.Mongo.Database)
		chargers := repository.NewMongoChargerRepository(db)
		users := repository.NewMongoUserRepository(db)
		if err := chargers.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("charger indexes: %w", err)
		}
		if err := users.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("user indexes: %w", err)
		}
		logger.Info("connected to mongo", zap.String("database", cfg.Mongo.Database))
		return &Stores{Chargers: chargers, Users: users, close: client.Disconnect}, nil

	case appconfig.DriverPostgres:
		sqlDB, err := libdb.NewPostgresDB(cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		err = libdb.EnsureSchema(ctx, sqlDB,
			repository.CreateChargersTable,
			repository.CreateChargersCoordinatesIndex,
			repository.CreateUsersTable,
		)
		if err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("postgres schema: %w", err)
		}
		logger.Info("connected to postgres")
		return &Stores{
			Chargers: repository.NewPostgresChargerRepository(sqlDB),
			Users:    repository.NewPostgresUserRepository(sqlDB),
			close:    func(context.Context) error { return sqlDB.Close() },
		}, nil

	case appconfig.DriverRedis:
		client, err := libredis.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		logger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))
		return &Stores{
			Chargers: repository.NewRedisChargerRepository(client),
			Users:    repository.NewRedisUserRepository(client),
			close:    func(context.Context) error { return client.Close() },
		}, nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
