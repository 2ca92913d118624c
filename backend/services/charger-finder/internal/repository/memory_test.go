package repository

import (
	"context"
	"errors"
	"testing"

	"markev/backend/services/charger-finder/internal/geo"
	"markev/backend/services/charger-finder/internal/models"
)

func TestMemoryChargerRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryChargerRepository()

	if n, _ := repo.Count(ctx); n != 0 {
		t.Fatalf("expected empty repository, got %d", n)
	}

	stored, err := repo.InsertMany(ctx, []models.Charger{
		{ID: "keep-me", Name: "A", Latitude: 10, Longitude: 20, Address: "x"},
		{Name: "B", Latitude: 10.5, Longitude: 20.5, Address: "y"},
		{Name: "C", Latitude: -10, Longitude: -20, Address: "z"},
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if stored[0].ID != "keep-me" {
		t.Fatalf("expected supplied id to be kept, got %q", stored[0].ID)
	}
	if stored[1].ID == "" || stored[2].ID == "" {
		t.Fatalf("expected generated ids, got %+v", stored)
	}

	inBox, err := repo.FindInBounds(ctx, geo.BoundingBox{SouthWestLat: 10, SouthWestLng: 20, NorthEastLat: 10.5, NorthEastLng: 20.5})
	if err != nil {
		t.Fatalf("find in bounds: %v", err)
	}
	if len(inBox) != 2 || inBox[0].Name != "A" || inBox[1].Name != "B" {
		t.Fatalf("expected A and B on the box edges, got %+v", inBox)
	}

	all, _ := repo.FindAll(ctx)
	all[0].Name = "mutated"
	again, _ := repo.FindAll(ctx)
	if again[0].Name != "A" {
		t.Fatalf("FindAll leaked internal storage")
	}

	if err := repo.DeleteAll(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n, _ := repo.Count(ctx); n != 0 {
		t.Fatalf("expected empty after delete, got %d", n)
	}
}

func TestMemoryChargerRepositoryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewMemoryChargerRepository().FindAll(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	user := &models.User{Email: "  Driver@Example.com ", PasswordHash: "h1", Role: "user"}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.ID == "" || user.Email != "driver@example.com" || user.CreatedAt.IsZero() {
		t.Fatalf("expected populated user, got %+v", user)
	}

	if err := repo.Create(ctx, &models.User{Email: "driver@example.com"}); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	got, err := repo.GetByEmail(ctx, "DRIVER@example.com")
	if err != nil || got.ID != user.ID {
		t.Fatalf("get by email: %+v, %v", got, err)
	}

	if err := repo.UpdatePasswordHash(ctx, user.ID, "h2"); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = repo.GetByEmail(ctx, "driver@example.com")
	if got.PasswordHash != "h2" {
		t.Fatalf("expected updated hash, got %q", got.PasswordHash)
	}

	if _, err := repo.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := repo.UpdatePasswordHash(ctx, "missing", "h"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
