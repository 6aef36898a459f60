package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Saver persists the full position set. The in-memory book stays authoritative
// when a save fails; the next successful save resynchronizes.
type Saver interface {
	SavePositions([]Position) error
}

// Book owns the tracked position set for one monitor session. It is touched
// only by the monitor's control goroutine, so it carries no lock.
type Book struct {
	positions []Position
	saver     Saver
}

// NewBook wraps an initial position set. saver may be nil (no persistence).
func NewBook(positions []Position, saver Saver) *Book {
	return &Book{positions: positions, saver: saver}
}

// Len returns the number of tracked positions.
func (b *Book) Len() int { return len(b.positions) }

// List returns a copy of the tracked positions in index order.
func (b *Book) List() []Position {
	out := make([]Position, len(b.positions))
	copy(out, b.positions)
	return out
}

// At returns the position at 1-based index idx.
func (b *Book) At(idx int) (Position, bool) {
	if idx < 1 || idx > len(b.positions) {
		return Position{}, false
	}
	return b.positions[idx-1], true
}

// FindIndex returns the 0-based index of the position matching the
// normalized slug + side identity key, or -1.
func (b *Book) FindIndex(slug string, side Side) int {
	key := Key{Slug: NormalizeSlug(slug), Side: side}
	for i, p := range b.positions {
		if p.Key() == key {
			return i
		}
	}
	return -1
}

// AddOrUpdate inserts a position, or updates the limit price in place when the
// identity key already exists. Returns the previous price when updating.
func (b *Book) AddOrUpdate(slug string, side Side, limitPrice float64, notes string) (updated bool, oldPrice float64, err error) {
	if i := b.FindIndex(slug, side); i >= 0 {
		oldPrice = b.positions[i].LimitPrice
		b.positions[i].LimitPrice = limitPrice
		return true, oldPrice, b.Save()
	}
	b.positions = append(b.positions, Position{
		MarketSlug: slug,
		Side:       side,
		LimitPrice: limitPrice,
		Notes:      notes,
	})
	return false, 0, b.Save()
}

// EditPrice updates the limit price of the position at 1-based index idx.
func (b *Book) EditPrice(idx int, newPrice float64) (Position, float64, error) {
	if idx < 1 || idx > len(b.positions) {
		return Position{}, 0, fmt.Errorf("index %d out of range (have %d positions)", idx, len(b.positions))
	}
	p := &b.positions[idx-1]
	old := p.LimitPrice
	p.LimitPrice = newPrice
	return *p, old, b.Save()
}

// Removed describes one position removed by RemoveIndices, keyed by the index
// the caller referred to it by.
type Removed struct {
	Index    int
	Position Position
}

// RemoveIndices removes the positions at the given 1-based indices, processed
// highest-first so earlier removals do not shift later target indices.
// Out-of-range indices are reported back, not treated as errors.
func (b *Book) RemoveIndices(indices []int) (removed []Removed, outOfRange []int, err error) {
	seen := make(map[int]bool)
	var valid []int
	for _, idx := range indices {
		if seen[idx] {
			continue
		}
		seen[idx] = true
		if idx < 1 || idx > len(b.positions) {
			outOfRange = append(outOfRange, idx)
			continue
		}
		valid = append(valid, idx)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(valid)))
	sort.Ints(outOfRange)

	for _, idx := range valid {
		removed = append(removed, Removed{Index: idx, Position: b.positions[idx-1]})
		b.positions = append(b.positions[:idx-1], b.positions[idx:]...)
	}
	if len(removed) == 0 {
		return removed, outOfRange, nil
	}
	return removed, outOfRange, b.Save()
}

// BulkAdd parses newline-delimited "<slug-or-url> <YES/NO> <price>" records.
// Malformed lines are counted and skipped. Existing identity keys update price
// in place; the rest are appended. The book is persisted once when anything
// changed.
func (b *Book) BulkAdd(text string) (added, skipped, updated int, err error) {
	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 3 {
			skipped++
			continue
		}
		side, ok := ParseSide(parts[1])
		if !ok {
			skipped++
			continue
		}
		price, perr := strconv.ParseFloat(parts[2], 64)
		if perr != nil || price < 0 || price > 1 {
			skipped++
			continue
		}
		if i := b.FindIndex(parts[0], side); i >= 0 {
			b.positions[i].LimitPrice = price
			updated++
		} else {
			b.positions = append(b.positions, Position{
				MarketSlug: parts[0],
				Side:       side,
				LimitPrice: price,
			})
			added++
		}
	}
	if added > 0 || updated > 0 {
		err = b.Save()
	}
	return added, skipped, updated, err
}

// Save persists the full position set through the configured saver.
func (b *Book) Save() error {
	if b.saver == nil {
		return nil
	}
	return b.saver.SavePositions(b.List())
}
