package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"markev/backend/services/charger-finder/internal/catalog"
	"markev/backend/services/charger-finder/internal/geo"
	"markev/backend/services/charger-finder/internal/models"
	"markev/backend/services/charger-finder/internal/repository"
)

var (
	ahmedabad = geo.BoundingBox{SouthWestLat: 23.0, SouthWestLng: 72.5, NorthEastLat: 23.05, NorthEastLng: 72.6}
	gulfBox   = geo.BoundingBox{SouthWestLat: 0, SouthWestLng: 0, NorthEastLat: 1, NorthEastLng: 1}
)

type stubChargerRepo struct {
	repository.ChargerRepository

	findErr  error
	countErr error
	block    bool
	deleted  bool
	inserted []models.Charger
	records  []models.Charger
}

func (r *stubChargerRepo) wait(ctx context.Context) error {
	if r.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (r *stubChargerRepo) FindAll(ctx context.Context) ([]models.Charger, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.records, nil
}

func (r *stubChargerRepo) FindInBounds(ctx context.Context, box geo.BoundingBox) ([]models.Charger, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	if r.findErr != nil {
		return nil, r.findErr
	}
	// Returns everything so the service has to filter.
	return r.records, nil
}

func (r *stubChargerRepo) Count(ctx context.Context) (int64, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	return int64(len(r.records)), nil
}

func (r *stubChargerRepo) DeleteAll(ctx context.Context) error {
	r.deleted = true
	r.records = nil
	return nil
}

func (r *stubChargerRepo) InsertMany(ctx context.Context, chargers []models.Charger) ([]models.Charger, error) {
	r.inserted = chargers
	r.records = append(r.records, chargers...)
	return chargers, nil
}

func newTestChargerService(repo repository.ChargerRepository, opts ChargerServiceOptions) *ChargerService {
	return NewChargerService(repo, catalog.NewStatic(), opts, zap.NewNop())
}

func validCharger(name string, lat, lng float64) models.Charger {
	return models.Charger{
		Name:      name,
		Latitude:  lat,
		Longitude: lng,
		Address:   "Test street",
		Type:      models.TypeAC,
		Price:     10,
		Rating:    4,
	}
}

func names(chargers []models.Charger) []string {
	out := make([]string, 0, len(chargers))
	for _, c := range chargers {
		out = append(out, c.Name)
	}
	return out
}

func TestAllUsesStoreWhenPopulated(t *testing.T) {
	repo := &stubChargerRepo{records: []models.Charger{validCharger("Stored", 10, 10)}}
	svc := newTestChargerService(repo, ChargerServiceOptions{})

	res := svc.All(context.Background())
	if res.Source != SourceStore {
		t.Fatalf("expected store source, got %s", res.Source)
	}
	if len(res.Chargers) != 1 || res.Chargers[0].Name != "Stored" {
		t.Fatalf("unexpected chargers: %v", names(res.Chargers))
	}
}

func TestAllFallsBackWhenEmptyOrFailing(t *testing.T) {
	cases := map[string]*stubChargerRepo{
		"empty":   {},
		"failing": {findErr: errors.New("connection refused")},
	}
	for name, repo := range cases {
		t.Run(name, func(t *testing.T) {
			svc := newTestChargerService(repo, ChargerServiceOptions{})
			res := svc.All(context.Background())
			if res.Source != SourceFallback {
				t.Fatalf("expected fallback source, got %s", res.Source)
			}
			if len(res.Chargers) != 4 {
				t.Fatalf("expected 4 catalog entries, got %d", len(res.Chargers))
			}
		})
	}
}

func TestNearbyFallsBackOnStoreFailure(t *testing.T) {
	svc := newTestChargerService(&stubChargerRepo{findErr: errors.New("down")}, ChargerServiceOptions{})

	res := svc.Nearby(context.Background(), ahmedabad)
	if res.Source != SourceFallback {
		t.Fatalf("expected fallback source, got %s", res.Source)
	}
	got := names(res.Chargers)
	want := []string{"Tesla Supercharger", "ChargePoint", "EV Station", "Tata Power EZ Charge"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestNearbyFallbackOutsideCatalogIsEmpty(t *testing.T) {
	svc := newTestChargerService(&stubChargerRepo{findErr: errors.New("down")}, ChargerServiceOptions{})

	res := svc.Nearby(context.Background(), gulfBox)
	if res.Chargers == nil {
		t.Fatalf("expected non-nil empty slice")
	}
	if len(res.Chargers) != 0 {
		t.Fatalf("expected no chargers, got %v", names(res.Chargers))
	}
}

func TestNearbyFiltersStoreResults(t *testing.T) {
	repo := &stubChargerRepo{records: []models.Charger{
		validCharger("Inside", 0.5, 0.5),
		validCharger("Outside", 5, 5),
		validCharger("Edge", 1, 1),
	}}
	svc := newTestChargerService(repo, ChargerServiceOptions{})

	res := svc.Nearby(context.Background(), gulfBox)
	if res.Source != SourceStore {
		t.Fatalf("expected store source, got %s", res.Source)
	}
	got := names(res.Chargers)
	if len(got) != 2 || got[0] != "Inside" || got[1] != "Edge" {
		t.Fatalf("unexpected chargers: %v", got)
	}
}

func TestNearbyEmptyMatchPolicies(t *testing.T) {
	stored := []models.Charger{validCharger("Far away", -40, -40)}

	t.Run("empty policy substitutes catalog", func(t *testing.T) {
		svc := newTestChargerService(&stubChargerRepo{records: stored}, ChargerServiceOptions{Policy: FallbackOnEmpty})
		res := svc.Nearby(context.Background(), ahmedabad)
		if res.Source != SourceFallback || len(res.Chargers) != 4 {
			t.Fatalf("expected 4 fallback chargers, got %s %v", res.Source, names(res.Chargers))
		}
	})

	t.Run("unavailable policy keeps empty store answer", func(t *testing.T) {
		svc := newTestChargerService(&stubChargerRepo{records: stored}, ChargerServiceOptions{Policy: FallbackOnUnavailable})
		res := svc.Nearby(context.Background(), ahmedabad)
		if res.Source != SourceStore || len(res.Chargers) != 0 {
			t.Fatalf("expected empty store answer, got %s %v", res.Source, names(res.Chargers))
		}
	})

	t.Run("unavailable policy on empty store", func(t *testing.T) {
		svc := newTestChargerService(&stubChargerRepo{}, ChargerServiceOptions{Policy: FallbackOnUnavailable})
		res := svc.Nearby(context.Background(), ahmedabad)
		if res.Source != SourceFallback || len(res.Chargers) != 4 {
			t.Fatalf("expected fallback, got %s %v", res.Source, names(res.Chargers))
		}
	})

	t.Run("unavailable policy when count fails", func(t *testing.T) {
		repo := &stubChargerRepo{records: stored, countErr: errors.New("count failed")}
		svc := newTestChargerService(repo, ChargerServiceOptions{Policy: FallbackOnUnavailable})
		res := svc.Nearby(context.Background(), ahmedabad)
		if res.Source != SourceFallback {
			t.Fatalf("expected fallback, got %s", res.Source)
		}
	})
}

func TestSlowRepositoryTimesOutToFallback(t *testing.T) {
	svc := newTestChargerService(&stubChargerRepo{block: true}, ChargerServiceOptions{Timeout: 20 * time.Millisecond})

	start := time.Now()
	res := svc.Nearby(context.Background(), ahmedabad)
	if time.Since(start) > time.Second {
		t.Fatalf("query did not honour timeout")
	}
	if res.Source != SourceFallback || len(res.Chargers) != 4 {
		t.Fatalf("expected fallback, got %s %v", res.Source, names(res.Chargers))
	}
}

func TestFallbackDisabled(t *testing.T) {
	svc := NewChargerService(&stubChargerRepo{findErr: errors.New("down")}, nil, ChargerServiceOptions{}, zap.NewNop())

	if res := svc.All(context.Background()); len(res.Chargers) != 0 || res.Chargers == nil {
		t.Fatalf("expected empty non-nil list, got %v", res.Chargers)
	}
}

func TestReseedReplacesStore(t *testing.T) {
	repo := &stubChargerRepo{records: []models.Charger{validCharger("Old", 1, 1)}}
	svc := newTestChargerService(repo, ChargerServiceOptions{})

	var notified []models.Charger
	svc.OnReseed(func(chargers []models.Charger) { notified = chargers })

	input := []models.Charger{validCharger("A", 0.2, 0.2), validCharger("B", 0.4, 0.4)}
	n, err := svc.Reseed(context.Background(), input)
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 inserted, got %d", n)
	}
	if !repo.deleted {
		t.Fatalf("expected store to be cleared")
	}
	if len(notified) != 2 {
		t.Fatalf("expected reseed callback with 2 records, got %d", len(notified))
	}
	for _, c := range repo.inserted {
		if c.Status != models.StatusAvailable || c.ConnectorType != models.DefaultConnectorType {
			t.Fatalf("defaults not applied: %+v", c)
		}
	}

	res := svc.Nearby(context.Background(), gulfBox)
	if res.Source != SourceStore || len(res.Chargers) != 2 {
		t.Fatalf("expected reseeded chargers, got %s %v", res.Source, names(res.Chargers))
	}
}

func TestReseedEmptyListClearsStore(t *testing.T) {
	repo := &stubChargerRepo{records: []models.Charger{validCharger("Old", 1, 1)}}
	svc := newTestChargerService(repo, ChargerServiceOptions{})

	n, err := svc.Reseed(context.Background(), nil)
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if n != 0 || len(repo.records) != 0 {
		t.Fatalf("expected empty store, got %d records", len(repo.records))
	}
	if res := svc.All(context.Background()); res.Source != SourceFallback {
		t.Fatalf("expected catalog after clearing, got %s", res.Source)
	}
}

func TestReseedRejectsInvalidRecord(t *testing.T) {
	repo := &stubChargerRepo{records: []models.Charger{validCharger("Old", 1, 1)}}
	svc := newTestChargerService(repo, ChargerServiceOptions{})

	bad := validCharger("Bad", 91, 0)
	_, err := svc.Reseed(context.Background(), []models.Charger{validCharger("Good", 0, 0), bad})
	if !errors.Is(err, models.ErrInvalidCharger) {
		t.Fatalf("expected ErrInvalidCharger, got %v", err)
	}
	if repo.deleted || len(repo.records) != 1 {
		t.Fatalf("store must be untouched on invalid input")
	}
}

func TestReseedRejectsDuplicateIDs(t *testing.T) {
	repo := &stubChargerRepo{records: []models.Charger{validCharger("Old", 1, 1)}}
	svc := newTestChargerService(repo, ChargerServiceOptions{})

	first, second, blank := validCharger("A", 1, 1), validCharger("B", 2, 2), validCharger("C", 3, 3)
	first.ID, second.ID = "7", "7"
	_, err := svc.Reseed(context.Background(), []models.Charger{first, blank, blank, second})
	if !errors.Is(err, models.ErrInvalidCharger) || !strings.Contains(err.Error(), `"7"`) {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
	if repo.deleted || len(repo.records) != 1 {
		t.Fatalf("store must be untouched on duplicate ids")
	}

	second.ID = "8"
	if n, err := svc.Reseed(context.Background(), []models.Charger{first, blank, blank, second}); err != nil || n != 4 {
		t.Fatalf("blank ids must not collide: %d %v", n, err)
	}
}

func TestReseedRoundTripWithMemoryRepository(t *testing.T) {
	repo := repository.NewMemoryChargerRepository()
	svc := newTestChargerService(repo, ChargerServiceOptions{})

	input := catalog.NewStatic().Chargers()
	if _, err := svc.Reseed(context.Background(), input); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	res := svc.All(context.Background())
	if res.Source != SourceStore || len(res.Chargers) != len(input) {
		t.Fatalf("expected %d stored chargers, got %s %d", len(input), res.Source, len(res.Chargers))
	}
	for _, c := range res.Chargers {
		if c.ID == "" {
			t.Fatalf("stored charger without id: %+v", c)
		}
	}
}
