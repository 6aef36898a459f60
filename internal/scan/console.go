package scan

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Doonhamersco/polymarket-LP-Watch/internal/polymarket"
	"github.com/Doonhamersco/polymarket-LP-Watch/internal/risk"
	"github.com/Doonhamersco/polymarket-LP-Watch/internal/term"
)

// Options bounds what the scan surfaces.
type Options struct {
	MaxRisk   float64 // composite risk ceiling for display
	TopN      int
	MinVolume float64
}

// MarketLister is the slice of the market data provider the scan needs.
type MarketLister interface {
	FetchAllMarkets(ctx context.Context) ([]polymarket.Market, error)
}

// SelectLowRisk filters rows to the low-risk set and ranks them by capital
// efficiency, then by lowest composite risk. Asset-price markets are always
// excluded regardless of score.
func SelectLowRisk(rows []*MarketRow, opts Options) []*MarketRow {
	var lowRisk []*MarketRow
	for _, r := range rows {
		if r.Risk.Composite > opts.MaxRisk {
			continue
		}
		if r.Risk.Category == risk.CategoryAssetPrice {
			continue
		}
		if r.Volume < opts.MinVolume {
			continue
		}
		lowRisk = append(lowRisk, r)
	}
	sort.SliceStable(lowRisk, func(i, j int) bool {
		if lowRisk[i].CapitalEfficiency != lowRisk[j].CapitalEfficiency {
			return lowRisk[i].CapitalEfficiency > lowRisk[j].CapitalEfficiency
		}
		return lowRisk[i].Risk.Composite < lowRisk[j].Risk.Composite
	})
	return lowRisk
}

// Run fetches all reward markets, ranks the low-risk set, and prints the top
// rows to the console.
func Run(ctx context.Context, lister MarketLister, opts Options) error {
	fmt.Println("Fetching active markets (paginated)...")
	markets, err := lister.FetchAllMarkets(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch markets: %w", err)
	}
	fmt.Printf("Total markets: %d\n", len(markets))

	rewardMarkets := FilterRewardMarkets(markets)
	fmt.Printf("Markets with LP rewards (rewardsDailyRate > 0): %d\n", len(rewardMarkets))
	if len(rewardMarkets) == 0 {
		fmt.Println("No reward markets found.")
		return nil
	}

	now := time.Now().UTC()
	var rows []*MarketRow
	for i := range rewardMarkets {
		if row := BuildRow(&rewardMarkets[i], now); row != nil {
			rows = append(rows, row)
		}
	}

	lowRisk := SelectLowRisk(rows, opts)
	top := lowRisk
	if len(top) > opts.TopN {
		top = top[:opts.TopN]
	}

	fmt.Println()
	fmt.Printf("Markets with minimal risk (composite risk <= %.0f): %d\n", opts.MaxRisk, len(lowRisk))
	fmt.Printf("Showing top %d by capital efficiency (then by lowest risk):\n\n", len(top))

	sep := strings.Repeat("-", 100)
	fmt.Println(sep)
	for i, r := range top {
		title := r.Question
		if term.Enabled() {
			title = term.Color(title, term.Bold)
		}
		fmt.Printf("  %d. %s\n", i+1, title)
		fmt.Printf("     Risk: %.1f (%s)  Spike: %.1f  Time: %d  Adverse: %.1f  Category: %s\n",
			r.Risk.Composite, coloredRiskLabel(r.Risk.Composite),
			r.Risk.SpikeRisk, r.Risk.TimeRisk, r.Risk.AdverseRisk, r.Risk.Category)
		fmt.Printf("     Daily rewards: $%s  Days left: %d  Est. min capital: $%.0f  Est. APY: %.1f%%  Total vol: $%.0f  Liquidity: $%.0f\n",
			r.DailyRewards.StringFixed(2), r.DaysRemaining, r.MinCapital, r.EstimatedAPY, r.Volume, r.Liquidity)
		fmt.Printf("     %s\n", term.Color(r.URL, term.Cyan))
		fmt.Printf("     Reasoning: %s\n", Reasoning(r))
		fmt.Println(sep)
		fmt.Println()
	}
	if len(top) == 0 {
		fmt.Println("No markets in the minimal-risk range. Try raising scan.max_risk in the config.")
	}
	fmt.Println("Scan complete.")
	return nil
}

// coloredRiskLabel color-codes the risk band for terminal output.
func coloredRiskLabel(score float64) string {
	label := RiskLabel(score)
	switch {
	case score <= 25:
		return term.Color(label, term.Green)
	case score <= 45:
		return term.Color(label, term.Yellow)
	default:
		return term.Color(label, term.Red)
	}
}
