package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Doonhamersco/polymarket-LP-Watch/internal/models"
)

func newTestStorage(t *testing.T, maxAlertRows int) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"), maxAlertRows)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPositionsRoundTrip(t *testing.T) {
	s := newTestStorage(t, 100)

	positions := []models.Position{
		{MarketSlug: "m1", Side: models.SideYes, LimitPrice: 0.55, Notes: "first"},
		{MarketSlug: "m2", Side: models.SideNo, LimitPrice: 0.30},
		{MarketSlug: "m1", Side: models.SideNo, LimitPrice: 0.45},
	}
	if err := s.SavePositions(positions); err != nil {
		t.Fatalf("SavePositions: %v", err)
	}

	got, err := s.LoadPositions()
	if err != nil {
		t.Fatalf("LoadPositions: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("loaded %d positions, want 3", len(got))
	}
	// Saved order survives.
	for i := range positions {
		if got[i] != positions[i] {
			t.Errorf("position %d = %+v, want %+v", i, got[i], positions[i])
		}
	}
}

func TestSaveReplacesExisting(t *testing.T) {
	s := newTestStorage(t, 100)

	first := []models.Position{
		{MarketSlug: "m1", Side: models.SideYes, LimitPrice: 0.5},
		{MarketSlug: "m2", Side: models.SideYes, LimitPrice: 0.6},
	}
	if err := s.SavePositions(first); err != nil {
		t.Fatalf("SavePositions: %v", err)
	}

	second := []models.Position{
		{MarketSlug: "m3", Side: models.SideNo, LimitPrice: 0.2},
	}
	if err := s.SavePositions(second); err != nil {
		t.Fatalf("SavePositions: %v", err)
	}

	got, err := s.LoadPositions()
	if err != nil {
		t.Fatalf("LoadPositions: %v", err)
	}
	if len(got) != 1 || got[0].MarketSlug != "m3" {
		t.Errorf("loaded = %+v, want only m3", got)
	}
}

func TestSaveRejectsInvalidPosition(t *testing.T) {
	s := newTestStorage(t, 100)
	err := s.SavePositions([]models.Position{
		{MarketSlug: "m1", Side: "MAYBE", LimitPrice: 0.5},
	})
	if err == nil {
		t.Fatal("invalid position accepted")
	}
}

func TestAlertLogPruning(t *testing.T) {
	s := newTestStorage(t, 2)

	base := time.Now()
	for i := 0; i < 3; i++ {
		err := s.LogAlert(AlertRecord{
			Slug:          "m1",
			Side:          models.SideYes,
			CurrentPrice:  0.51,
			LimitPrice:    0.50,
			DistanceCents: 1.0,
			DepthAhead:    decimal.NewFromInt(int64(100 * (i + 1))),
			CreatedAt:     base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("LogAlert %d: %v", i, err)
		}
	}

	alerts, err := s.RecentAlerts(10)
	if err != nil {
		t.Fatalf("RecentAlerts: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("kept %d alerts, want 2 (cap)", len(alerts))
	}
	// Newest first; the oldest record was pruned.
	if alerts[0].DepthAhead.String() != "300" || alerts[1].DepthAhead.String() != "200" {
		t.Errorf("kept depths %s, %s; want 300, 200",
			alerts[0].DepthAhead.String(), alerts[1].DepthAhead.String())
	}
	if alerts[0].ID == "" {
		t.Error("alert id should be assigned when empty")
	}
}
