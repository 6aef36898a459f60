package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// OutOfRangeCents is the distance at or beyond which a position is considered
// out of range. It gates the /out_of_range filter, the strongest console
// emphasis, and the "OUT OF RANGE" label on every surface.
const OutOfRangeCents = 5.0

// DistanceBand is the presentation tier for a distance-to-limit value.
type DistanceBand int

const (
	BandVeryClose  DistanceBand = iota // <= 1 cent
	BandClose                          // <= 2 cents
	BandCalm                           // 2-5 cents
	BandOutOfRange                     // >= 5 cents
)

// BandFor maps a distance in cents onto its presentation tier.
func BandFor(distanceCents float64) DistanceBand {
	switch {
	case distanceCents <= 1.0:
		return BandVeryClose
	case distanceCents <= 2.0:
		return BandClose
	case distanceCents >= OutOfRangeCents:
		return BandOutOfRange
	default:
		return BandCalm
	}
}

// PositionRow is an ephemeral per-cycle view of one tracked position with its
// live price, distance to limit, and standing order-book depth ahead.
type PositionRow struct {
	Index    int
	Slug     string // the position's market slug as the trader entered it
	Question string
	URL      string
	Side     Side
	Limit    float64

	// Priced reports whether the market snapshot could be fetched this cycle.
	// Unpriced rows sort last and render their live fields as n/a.
	Priced        bool
	Current       float64
	DistanceCents float64
	DepthAhead    decimal.Decimal
}

// SortRows orders rows closest-and-thinnest first: ascending by distance,
// then by depth ahead. Unpriced rows go last, keeping their relative order.
func SortRows(rows []PositionRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Priced != b.Priced {
			return a.Priced
		}
		if !a.Priced {
			return false
		}
		if a.DistanceCents != b.DistanceCents {
			return a.DistanceCents < b.DistanceCents
		}
		return a.DepthAhead.Cmp(b.DepthAhead) < 0
	})
}
