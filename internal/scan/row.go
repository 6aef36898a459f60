// Package scan builds ranked views of reward-bearing markets for low-risk
// LP farming.
package scan

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Doonhamersco/polymarket-LP-Watch/internal/polymarket"
	"github.com/Doonhamersco/polymarket-LP-Watch/internal/risk"
)

// MarketRow merges a market snapshot, its risk assessment, and derived
// economics. Ephemeral: rebuilt every scan.
type MarketRow struct {
	Question          string
	Slug              string
	DailyRewards      decimal.Decimal
	DaysRemaining     int
	MinCapital        float64
	Liquidity         float64
	Volume            float64
	EndDateReadable   string
	SpreadCents       float64
	YesPrice          float64
	Risk              risk.Assessment
	CapitalEfficiency float64
	EstimatedAPY      float64
	URL               string
}

// FilterRewardMarkets keeps only markets with a positive daily LP reward rate.
func FilterRewardMarkets(markets []polymarket.Market) []polymarket.Market {
	var out []polymarket.Market
	for _, m := range markets {
		if m.RewardsDailyRate() > 0 {
			out = append(out, m)
		}
	}
	return out
}

// BuildRow builds a single enriched row, or nil when the market carries no
// reward program. Markets failing a required field are dropped, not errored.
func BuildRow(m *polymarket.Market, now time.Time) *MarketRow {
	dailyRate := m.RewardsDailyRate()
	if dailyRate <= 0 {
		return nil
	}

	yesPrice, _ := m.Prices()
	liquidity := m.Liquidity.Float()
	minCapital := math.Max(liquidity*0.01, 100)
	efficiency := dailyRate / minCapital
	apy := efficiency * 365 * 100

	spread := m.Spread.Float()
	if spread == 0 {
		spread = 0.05
	}

	assessment := risk.Score(risk.Snapshot{
		Question:       m.Question,
		EndDate:        m.EndDate,
		KnownSpikeDate: m.KnownSpikeDate,
		YesPrice:       yesPrice,
		Liquidity:      liquidity,
		Competitive:    m.Competitive.Float(),
	}, now)

	question := m.Question
	if qr := []rune(question); len(qr) > 70 {
		question = string(qr[:70])
	}

	var url string
	if m.Slug != "" {
		url = "https://polymarket.com/event/" + m.Slug
	}

	return &MarketRow{
		Question:          question,
		Slug:              m.Slug,
		DailyRewards:      decimal.NewFromFloat(dailyRate).Round(2),
		DaysRemaining:     DaysRemaining(m.EndDate, now),
		MinCapital:        round2(minCapital),
		Liquidity:         round2(liquidity),
		Volume:            round2(m.Volume.Float()),
		EndDateReadable:   FormatEndDate(m.EndDate),
		SpreadCents:       round2(spread * 100),
		YesPrice:          yesPrice,
		Risk:              assessment,
		CapitalEfficiency: round4(efficiency),
		EstimatedAPY:      round2(apy),
		URL:               url,
	}
}

// DaysRemaining is whole days until resolution, floored at 0. An unparseable
// or missing end date defaults to 365.
func DaysRemaining(endDate string, now time.Time) int {
	if endDate == "" {
		return 365
	}
	end, err := time.Parse(time.RFC3339, endDate)
	if err != nil {
		return 365
	}
	days := int(end.Sub(now).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// FormatEndDate renders a resolution date like "December 31, 2026".
func FormatEndDate(endDate string) string {
	if endDate == "" {
		return "unknown"
	}
	end, err := time.Parse(time.RFC3339, endDate)
	if err != nil {
		return "unknown"
	}
	return end.Format("January 02, 2006")
}

// RiskLabel is the human-readable band for a composite score.
func RiskLabel(score float64) string {
	switch {
	case score <= 25:
		return "Low"
	case score <= 45:
		return "Moderate"
	case score <= 65:
		return "Elevated"
	case score <= 80:
		return "High"
	default:
		return "Extreme"
	}
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }
func round4(x float64) float64 { return math.Round(x*10000) / 10000 }
