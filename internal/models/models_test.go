package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseSide(t *testing.T) {
	tests := []struct {
		in   string
		want Side
		ok   bool
	}{
		{"YES", SideYes, true},
		{"yes", SideYes, true},
		{" No ", SideNo, true},
		{"maybe", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseSide(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseSide(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"will-x-happen", "will-x-happen"},
		{"https://polymarket.com/event/some-event/will-x-happen", "will-x-happen"},
		{"https://polymarket.com/event/will-x-happen/", "will-x-happen"},
		{"some-event/will-x-happen", "will-x-happen"},
		{"  will-x-happen  ", "will-x-happen"},
		{"https://polymarket.com/event/will-x-happen?tid=123", "will-x-happen"},
	}
	for _, tt := range tests {
		if got := NormalizeSlug(tt.in); got != tt.want {
			t.Errorf("NormalizeSlug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPositionValidate(t *testing.T) {
	good := Position{MarketSlug: "m1", Side: SideYes, LimitPrice: 0.5}
	if err := good.Validate(); err != nil {
		t.Errorf("valid position rejected: %v", err)
	}
	bad := []Position{
		{MarketSlug: "", Side: SideYes, LimitPrice: 0.5},
		{MarketSlug: "m1", Side: "MAYBE", LimitPrice: 0.5},
		{MarketSlug: "m1", Side: SideYes, LimitPrice: 1.5},
		{MarketSlug: "m1", Side: SideYes, LimitPrice: -0.1},
	}
	for i, p := range bad {
		if err := p.Validate(); err == nil {
			t.Errorf("case %d: invalid position accepted", i)
		}
	}
}

func TestPositionKeyNormalizes(t *testing.T) {
	a := Position{MarketSlug: "https://polymarket.com/event/ev/will-x-happen", Side: SideYes}
	b := Position{MarketSlug: "will-x-happen", Side: SideYes}
	if a.Key() != b.Key() {
		t.Errorf("keys differ: %+v vs %+v", a.Key(), b.Key())
	}
	c := Position{MarketSlug: "will-x-happen", Side: SideNo}
	if a.Key() == c.Key() {
		t.Error("different sides must have different keys")
	}
}

// countingSaver records how many times SavePositions was called.
type countingSaver struct {
	calls int
	last  []Position
}

func (s *countingSaver) SavePositions(ps []Position) error {
	s.calls++
	s.last = ps
	return nil
}

func TestBookAddOrUpdateInPlace(t *testing.T) {
	saver := &countingSaver{}
	b := NewBook([]Position{
		{MarketSlug: "m1", Side: SideYes, LimitPrice: 0.5},
		{MarketSlug: "m2", Side: SideNo, LimitPrice: 0.3},
	}, saver)

	// Same identity key (via URL form): update in place, index unchanged.
	updated, old, err := b.AddOrUpdate("https://polymarket.com/event/ev/m1", SideYes, 0.6, "")
	if err != nil {
		t.Fatalf("AddOrUpdate: %v", err)
	}
	if !updated || old != 0.5 {
		t.Errorf("updated=%v old=%.2f, want true/0.50", updated, old)
	}
	if b.Len() != 2 {
		t.Errorf("len = %d, want 2", b.Len())
	}
	if p, _ := b.At(1); p.LimitPrice != 0.6 {
		t.Errorf("position 1 price = %.2f, want 0.60", p.LimitPrice)
	}

	// New key appends.
	updated, _, err = b.AddOrUpdate("m1", SideNo, 0.4, "hedge")
	if err != nil {
		t.Fatalf("AddOrUpdate: %v", err)
	}
	if updated {
		t.Error("new key reported as update")
	}
	if b.Len() != 3 {
		t.Errorf("len = %d, want 3", b.Len())
	}
	if saver.calls != 2 {
		t.Errorf("saver calls = %d, want 2", saver.calls)
	}
}

func TestBookEditPrice(t *testing.T) {
	b := NewBook([]Position{
		{MarketSlug: "m1", Side: SideYes, LimitPrice: 0.5},
	}, nil)
	p, old, err := b.EditPrice(1, 0.7)
	if err != nil {
		t.Fatalf("EditPrice: %v", err)
	}
	if old != 0.5 || p.LimitPrice != 0.7 {
		t.Errorf("old=%.2f new=%.2f, want 0.50/0.70", old, p.LimitPrice)
	}
	if _, _, err := b.EditPrice(5, 0.7); err == nil {
		t.Error("out-of-range index accepted")
	}
}

func TestBookRemoveIndices(t *testing.T) {
	b := NewBook([]Position{
		{MarketSlug: "m1", Side: SideYes, LimitPrice: 0.1},
		{MarketSlug: "m2", Side: SideYes, LimitPrice: 0.2},
		{MarketSlug: "m3", Side: SideYes, LimitPrice: 0.3},
	}, nil)

	removed, outOfRange, err := b.RemoveIndices([]int{1, 3, 3, 9})
	if err != nil {
		t.Fatalf("RemoveIndices: %v", err)
	}
	if len(removed) != 2 {
		t.Fatalf("removed %d, want 2", len(removed))
	}
	// Highest-first: index 3 goes before index 1.
	if removed[0].Index != 3 || removed[0].Position.MarketSlug != "m3" {
		t.Errorf("first removal = %d/%s, want 3/m3", removed[0].Index, removed[0].Position.MarketSlug)
	}
	if removed[1].Index != 1 || removed[1].Position.MarketSlug != "m1" {
		t.Errorf("second removal = %d/%s, want 1/m1", removed[1].Index, removed[1].Position.MarketSlug)
	}
	if len(outOfRange) != 1 || outOfRange[0] != 9 {
		t.Errorf("outOfRange = %v, want [9]", outOfRange)
	}
	// The middle position survives.
	if b.Len() != 1 {
		t.Fatalf("len = %d, want 1", b.Len())
	}
	if p, _ := b.At(1); p.MarketSlug != "m2" {
		t.Errorf("surviving slug = %s, want m2", p.MarketSlug)
	}
}

func TestBookBulkAdd(t *testing.T) {
	saver := &countingSaver{}
	b := NewBook([]Position{
		{MarketSlug: "m1", Side: SideYes, LimitPrice: 0.5},
	}, saver)

	text := "m2 YES 0.75\n" +
		"this line is malformed\n" +
		"m1 yes 0.60\n" +
		"\n" +
		"m3 NO not-a-price\n" +
		"https://polymarket.com/event/ev/m4 no 0.25"

	added, skipped, updated, err := b.BulkAdd(text)
	if err != nil {
		t.Fatalf("BulkAdd: %v", err)
	}
	if added != 2 || skipped != 2 || updated != 1 {
		t.Errorf("added=%d skipped=%d updated=%d, want 2/2/1", added, skipped, updated)
	}
	if b.Len() != 3 {
		t.Errorf("len = %d, want 3", b.Len())
	}
	if p, _ := b.At(1); p.LimitPrice != 0.6 {
		t.Errorf("m1 price = %.2f, want 0.60 (updated in place)", p.LimitPrice)
	}
	// One persist for the whole batch.
	if saver.calls != 1 {
		t.Errorf("saver calls = %d, want 1", saver.calls)
	}
}

func TestBookBulkAddSkipsOutOfRangePrice(t *testing.T) {
	saver := &countingSaver{}
	b := NewBook(nil, saver)
	added, skipped, updated, err := b.BulkAdd("m1 YES 1.5\nm2 NO -0.1\nm3 YES 0.4")
	if err != nil {
		t.Fatalf("BulkAdd: %v", err)
	}
	if added != 1 || skipped != 2 || updated != 0 {
		t.Errorf("added=%d skipped=%d updated=%d, want 1/2/0", added, skipped, updated)
	}
	if b.Len() != 1 {
		t.Fatalf("len = %d, want 1 (invalid prices must not enter the book)", b.Len())
	}
	if p, _ := b.At(1); p.MarketSlug != "m3" {
		t.Errorf("kept slug = %s, want m3", p.MarketSlug)
	}
	// The persisted set contains only positions that pass validation.
	if err := saver.last[0].Validate(); err != nil {
		t.Errorf("persisted position invalid: %v", err)
	}
}

func TestBookBulkAddAllMalformed(t *testing.T) {
	saver := &countingSaver{}
	b := NewBook(nil, saver)
	added, skipped, updated, err := b.BulkAdd("nope\nalso nope\n")
	if err != nil {
		t.Fatalf("BulkAdd: %v", err)
	}
	if added != 0 || skipped != 2 || updated != 0 {
		t.Errorf("added=%d skipped=%d updated=%d, want 0/2/0", added, skipped, updated)
	}
	if saver.calls != 0 {
		t.Errorf("saver calls = %d, want 0 (nothing changed)", saver.calls)
	}
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		cents float64
		want  DistanceBand
	}{
		{0.4, BandVeryClose},
		{1.0, BandVeryClose},
		{1.5, BandClose},
		{2.0, BandClose},
		{3.0, BandCalm},
		{4.99, BandCalm},
		{5.0, BandOutOfRange},
		{12.0, BandOutOfRange},
	}
	for _, tt := range tests {
		if got := BandFor(tt.cents); got != tt.want {
			t.Errorf("BandFor(%.2f) = %d, want %d", tt.cents, got, tt.want)
		}
	}
}

func TestSortRows(t *testing.T) {
	rows := []PositionRow{
		{Index: 1, Priced: true, DistanceCents: 3.0, DepthAhead: decimal.NewFromInt(100)},
		{Index: 2, Priced: false, Limit: 0.5},
		{Index: 3, Priced: true, DistanceCents: 1.0, DepthAhead: decimal.NewFromInt(500)},
		{Index: 4, Priced: true, DistanceCents: 1.0, DepthAhead: decimal.NewFromInt(50)},
		{Index: 5, Priced: false, Limit: 0.2},
	}
	SortRows(rows)

	wantOrder := []int{4, 3, 1, 2, 5}
	for i, want := range wantOrder {
		if rows[i].Index != want {
			t.Errorf("position %d: index = %d, want %d", i, rows[i].Index, want)
		}
	}
}
