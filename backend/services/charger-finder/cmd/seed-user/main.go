// Command seed-user creates an account, or resets the password of an existing one,
// in the store configured for charger-finder.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"markev/backend/libs/logging"
	app "markev/backend/services/charger-finder/internal/app"
	"markev/backend/services/charger-finder/internal/config"
	"markev/backend/services/charger-finder/internal/models"
	"markev/backend/services/charger-finder/internal/password"
	"markev/backend/services/charger-finder/internal/service"
)

func main() {
	email := flag.String("email", "demo@example.com", "account email")
	pass := flag.String("password", "", "account password (or SEED_USER_PASSWORD)")
	role := flag.String("role", "user", "role for a newly created account")
	flag.Parse()

	if *pass == "" {
		*pass = os.Getenv("SEED_USER_PASSWORD")
	}
	if *pass == "" {
		fmt.Fprintln(os.Stderr, "seed-user: password is required")
		os.Exit(2)
	}

	cfg, err := config.LoadStorage()
	if err != nil {
		panic(err)
	}

	logger, err := logging.NewLogger("seed-user")
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // best-effort flush

	user, created, err := seedUser(cfg, logger, *email, *pass, *role)
	if err != nil {
		logger.Error("failed to seed user", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}

	action := "updated"
	if created {
		action = "created"
	}
	fmt.Printf("user %s %s (role %s)\n", user.Email, action, user.Role)
}

func seedUser(cfg *config.Config, logger *zap.Logger, email, pass, role string) (*models.User, bool, error) {
	stores, err := app.OpenStores(cfg, logger)
	if err != nil {
		return nil, false, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	defer func() {
		if err := stores.Close(ctx); err != nil {
			logger.Warn("failed to close storage", zap.Error(err))
		}
	}()

	// Token signing is never exercised by UpsertUser.
	authSvc := service.NewAuthService(stores.Users, password.NewBcryptHasher(cfg.Auth.BcryptCost), nil, logger)
	return authSvc.UpsertUser(ctx, email, pass, role)
}
