package risk

import (
	"math"
	"time"
)

// Snapshot is the read-only market input the scoring engine consumes.
type Snapshot struct {
	Question       string
	EndDate        string // RFC 3339, may be empty
	KnownSpikeDate string // RFC 3339, may be empty
	YesPrice       float64
	Liquidity      float64
	Competitive    float64 // venue competitiveness score in [0,1]
}

// Assessment is the derived, non-persisted risk breakdown for one snapshot.
type Assessment struct {
	Composite     float64
	SpikeRisk     float64
	TimeRisk      int
	AdverseRisk   float64
	Category      Category
	IsBinaryEvent bool
}

// Composite blend weights: spike dominates, then deadline proximity, then
// adverse selection.
const (
	weightSpike   = 0.50
	weightTime    = 0.30
	weightAdverse = 0.20
)

// timeRiskUnknown is the explicit default when no resolution date parses.
const timeRiskUnknown = 40

// TimeProximityRisk maps hours-to-resolution onto a 0-100 step scale, using
// the nearer of end date vs known spike date.
func TimeProximityRisk(now time.Time, endDate, knownSpikeDate string) int {
	hours := math.Inf(1)
	found := false
	for _, s := range []string{endDate, knownSpikeDate} {
		if s == "" {
			continue
		}
		d, err := time.Parse(time.RFC3339, s)
		if err != nil {
			continue
		}
		found = true
		if h := d.Sub(now).Hours(); h < hours {
			hours = h
		}
	}
	if !found {
		return timeRiskUnknown
	}
	switch {
	case hours < 0:
		return 100
	case hours < 6:
		return 98
	case hours < 24:
		return 90
	case hours < 72:
		return 75
	case hours < 168:
		return 55
	case hours < 720:
		return 35
	case hours < 2160:
		return 20
	default:
		return 8
	}
}

// AdverseSelectionRisk scores how likely resting orders are to be picked off:
// price extremity, thin liquidity, and lack of competing makers, capped at 100.
func AdverseSelectionRisk(yesPrice, liquidity, competitive float64) float64 {
	extremity := math.Abs(yesPrice-0.50) * 80

	var liquidityPenalty float64
	switch {
	case liquidity < 10_000:
		liquidityPenalty = 30
	case liquidity < 50_000:
		liquidityPenalty = 20
	case liquidity < 200_000:
		liquidityPenalty = 10
	default:
		liquidityPenalty = 5
	}

	competitionPenalty := (1 - competitive) * 30

	return math.Min(extremity+liquidityPenalty+competitionPenalty, 100)
}

// Score produces the composite assessment for one snapshot. When the event is
// binary and the deadline is near (time risk > 70), spike risk compounds by
// 1.15x capped at 100. The boost stays gated on the binary flag only, not on
// scheduled events, to keep rankings stable with historical output.
func Score(s Snapshot, now time.Time) Assessment {
	c := ClassifyEvent(s.Question)
	spike := c.SpikeRisk
	timeRisk := TimeProximityRisk(now, s.EndDate, s.KnownSpikeDate)
	adverse := AdverseSelectionRisk(s.YesPrice, s.Liquidity, s.Competitive)

	if c.IsBinary && timeRisk > 70 {
		spike = math.Min(spike*1.15, 100)
	}

	composite := spike*weightSpike + float64(timeRisk)*weightTime + adverse*weightAdverse

	return Assessment{
		Composite:     round1(composite),
		SpikeRisk:     round1(spike),
		TimeRisk:      timeRisk,
		AdverseRisk:   round1(adverse),
		Category:      c.Category,
		IsBinaryEvent: c.IsBinary,
	}
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
