package monitor

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/Doonhamersco/polymarket-LP-Watch/internal/models"
	"github.com/Doonhamersco/polymarket-LP-Watch/internal/pricing"
)

// fakeRows replays a fixed row set per cycle.
type fakeRows struct {
	rows []models.PositionRow
}

func (f *fakeRows) BuildRows(_ context.Context, _ []pricing.Tracked) []models.PositionRow {
	out := make([]models.PositionRow, len(f.rows))
	copy(out, f.rows)
	return out
}

// fakeNotifier records every sent message.
type fakeNotifier struct {
	sent []string
}

func (f *fakeNotifier) SendHTML(text string) error {
	f.sent = append(f.sent, text)
	return nil
}

func newTestMonitor(rows *fakeRows, notifier *fakeNotifier) *Monitor {
	book := models.NewBook([]models.Position{
		{MarketSlug: "m1", Side: models.SideYes, LimitPrice: 0.50},
	}, nil)
	cfg := Config{AlertThresholdCents: 1.0, UpDownCheckEvery: 1000, UpDownLeadHours: 1.5}
	return New(book, rows, nil, notifier, nil, nil, cfg)
}

func TestAlertDeduplicatesByPrice(t *testing.T) {
	rows := &fakeRows{rows: []models.PositionRow{
		{Index: 1, Slug: "m1", Question: "M1?", Side: models.SideYes,
			Limit: 0.50, Priced: true, Current: 0.505, DistanceCents: 0.5},
	}}
	notifier := &fakeNotifier{}
	m := newTestMonitor(rows, notifier)

	ctx := context.Background()
	m.RunCycle(ctx)
	m.RunCycle(ctx)
	if len(notifier.sent) != 1 {
		t.Fatalf("sent %d alerts across two same-price cycles, want 1", len(notifier.sent))
	}

	// Price moves within the threshold: a fresh alert fires.
	rows.rows[0].Current = 0.508
	rows.rows[0].DistanceCents = 0.8
	m.RunCycle(ctx)
	if len(notifier.sent) != 2 {
		t.Fatalf("sent %d alerts after price change, want 2", len(notifier.sent))
	}
}

func TestAlertRespectsThreshold(t *testing.T) {
	rows := &fakeRows{rows: []models.PositionRow{
		{Index: 1, Slug: "m1", Question: "M1?", Side: models.SideYes,
			Limit: 0.50, Priced: true, Current: 0.53, DistanceCents: 3.0},
	}}
	notifier := &fakeNotifier{}
	m := newTestMonitor(rows, notifier)
	m.RunCycle(context.Background())
	if len(notifier.sent) != 0 {
		t.Errorf("sent %d alerts for a 3-cent distance, want 0", len(notifier.sent))
	}
}

func TestAlertSkipsUnpricedRows(t *testing.T) {
	rows := &fakeRows{rows: []models.PositionRow{
		{Index: 1, Slug: "m1", Question: "M1?", Side: models.SideYes, Limit: 0.50},
	}}
	notifier := &fakeNotifier{}
	m := newTestMonitor(rows, notifier)
	m.RunCycle(context.Background())
	if len(notifier.sent) != 0 {
		t.Errorf("sent %d alerts for an unpriced row, want 0", len(notifier.sent))
	}
}

func TestAlertDedupKeyIsPerSide(t *testing.T) {
	rows := &fakeRows{rows: []models.PositionRow{
		{Index: 1, Slug: "m1", Question: "M1?", Side: models.SideYes,
			Limit: 0.50, Priced: true, Current: 0.505, DistanceCents: 0.5},
		{Index: 2, Slug: "m1", Question: "M1?", Side: models.SideNo,
			Limit: 0.50, Priced: true, Current: 0.505, DistanceCents: 0.5},
	}}
	notifier := &fakeNotifier{}
	m := newTestMonitor(rows, notifier)
	m.RunCycle(context.Background())
	if len(notifier.sent) != 2 {
		t.Errorf("sent %d alerts for two sides of one market, want 2", len(notifier.sent))
	}
}

func TestRenderLinesSkipUnpriced(t *testing.T) {
	rows := []models.PositionRow{
		{Index: 1, Slug: "m1", Question: "Priced?", Side: models.SideYes,
			Limit: 0.50, Priced: true, Current: 0.52, DistanceCents: 2.0},
		{Index: 2, Slug: "m2", Question: "Unreachable?", Side: models.SideNo, Limit: 0.30},
	}
	lines := renderLines(rows)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1 (unpriced rows render only on /positions)", len(lines))
	}
	if !strings.Contains(lines[0], "Priced?") {
		t.Errorf("line = %q", lines[0])
	}
}

func TestAlertMessageKeepsValidUTF8(t *testing.T) {
	rows := &fakeRows{rows: []models.PositionRow{
		{Index: 1, Slug: "m1", Question: strings.Repeat("💡", 85), Side: models.SideYes,
			Limit: 0.50, Priced: true, Current: 0.505, DistanceCents: 0.5},
	}}
	notifier := &fakeNotifier{}
	m := newTestMonitor(rows, notifier)
	m.RunCycle(context.Background())
	if len(notifier.sent) != 1 {
		t.Fatalf("sent %d alerts, want 1", len(notifier.sent))
	}
	if !utf8.ValidString(notifier.sent[0]) {
		t.Errorf("alert message is invalid UTF-8: %q", notifier.sent[0])
	}
}

func TestIsUpDownMarket(t *testing.T) {
	tests := []struct {
		question string
		want     bool
	}{
		{"Bitcoin Up or Down - February 13, 12:00PM-12:15PM ET", true},
		{"Ethereum Up/Down hourly", true},
		{"S&P 500 Up or Down today", true},
		{"Will Bitcoin hit $150k?", false},
		{"Will interest rates rise this quarter?", false},
	}
	for _, tt := range tests {
		if got := IsUpDownMarket(tt.question); got != tt.want {
			t.Errorf("IsUpDownMarket(%q) = %v, want %v", tt.question, got, tt.want)
		}
	}
}

func TestParseWindow(t *testing.T) {
	now := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	start, end, ok := ParseWindow("Bitcoin Up or Down - February 13, 12:00PM-12:05PM ET", now)
	if !ok {
		t.Fatal("window did not parse")
	}
	// ET reads as UTC-4: noon ET becomes 16:00 UTC.
	wantStart := time.Date(2026, 2, 13, 16, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, 2, 13, 16, 5, 0, 0, time.UTC)
	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", start, wantStart)
	}
	if !end.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", end, wantEnd)
	}
}

func TestParseWindowMidnightClock(t *testing.T) {
	now := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	start, _, ok := ParseWindow("Ethereum Up or Down - July 4, 12:00AM-1:00AM EST", now)
	if !ok {
		t.Fatal("window did not parse")
	}
	// 12:00AM is midnight; plus the fixed 4-hour offset.
	want := time.Date(2026, 7, 4, 4, 0, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Errorf("start = %v, want %v", start, want)
	}
}

func TestParseWindowRejectsGarbage(t *testing.T) {
	now := time.Now()
	if _, _, ok := ParseWindow("Bitcoin Up or Down hourly", now); ok {
		t.Error("question without a clock window should not parse")
	}
	if _, _, ok := ParseWindow("Bitcoin Up or Down - Smarch 13, 12:00PM-12:05PM ET", now); ok {
		t.Error("invalid month should not parse")
	}
}
