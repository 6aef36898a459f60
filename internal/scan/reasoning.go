package scan

import (
	"fmt"
	"strings"

	"github.com/Doonhamersco/polymarket-LP-Watch/internal/risk"
)

// Reasoning produces a short explanatory paragraph for one row from the
// available data: farming window, liquidity/volume tier, and category nuance.
func Reasoning(row *MarketRow) string {
	var parts []string

	parts = append(parts, fmt.Sprintf(
		"This market resolves on %s, leaving ~%d days to farm LP rewards.",
		row.EndDateReadable, row.DaysRemaining,
	))

	switch {
	case row.Volume < 50_000 && row.Liquidity < 20_000:
		parts = append(parts, "Low total volume and liquidity; consider sizing down or monitoring spread.")
	case row.Volume < 200_000:
		parts = append(parts, "Moderate volume; liquidity is adequate but not deep.")
	default:
		parts = append(parts, "Solid volume and liquidity for the size of the market.")
	}

	switch row.Risk.Category {
	case risk.CategoryScheduled:
		parts = append(parts, "Risk is scheduled: there is a known window when the outcome can move sharply.")
	case risk.CategoryBinary:
		parts = append(parts, "Binary-style event; a single headline could move the market sharply, keep position size in check.")
	case risk.CategoryGradual:
		parts = append(parts, "Gradual-type event; probability tends to move incrementally rather than in one spike.")
	default:
		parts = append(parts, "Event type is generic; monitor for news that could create a sudden move.")
	}

	q := strings.ToLower(row.Question)
	for _, kw := range []string{"opening weekend", "box office", "top grossing", "movie", "film"} {
		if strings.Contains(q, kw) {
			parts = append(parts, "Performance of related releases through the year may move the probability; no fixed release calendar is applied here.")
			break
		}
	}

	return strings.Join(parts, " ")
}
