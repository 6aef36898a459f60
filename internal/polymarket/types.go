package polymarket

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Number decodes Gamma/CLOB numeric fields that arrive as either a JSON
// number or a quoted string ("12345.67"). Empty or null decodes to 0.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Float returns the plain float64 value.
func (n Number) Float() float64 { return float64(n) }

// ClobReward is one liquidity-provision reward program attached to a market.
type ClobReward struct {
	RewardsDailyRate Number `json:"rewardsDailyRate"`
	RewardsMinSize   Number `json:"rewardsMinSize"`
	RewardsMaxSpread Number `json:"rewardsMaxSpread"`
}

// Market is a raw market snapshot from the Gamma API. Treated as immutable
// input for one evaluation and re-fetched every cycle.
type Market struct {
	ID             string       `json:"id"`
	Question       string       `json:"question"`
	Slug           string       `json:"slug"`
	EventSlug      string       `json:"eventSlug"`
	EndDate        string       `json:"endDate"`
	KnownSpikeDate string       `json:"knownSpikeDate"`
	OutcomesRaw    string       `json:"outcomes"`      // JSON string: "[\"Yes\", \"No\"]"
	OutcomePrices  string       `json:"outcomePrices"` // JSON string: "[\"0.75\", \"0.25\"]"
	ClobTokenIDs   string       `json:"clobTokenIds"`  // JSON string: "[\"token1\", \"token2\"]"
	Liquidity      Number       `json:"liquidity"`
	Volume         Number       `json:"volume"`
	Competitive    Number       `json:"competitive"`
	Spread         Number       `json:"spread"`
	Active         bool         `json:"active"`
	Closed         bool         `json:"closed"`
	ClobRewards    []ClobReward `json:"clobRewards"`
}

// RewardsDailyRate returns the daily LP reward rate, or 0 when the market
// carries no reward program.
func (m *Market) RewardsDailyRate() float64 {
	if len(m.ClobRewards) == 0 {
		return 0
	}
	return m.ClobRewards[0].RewardsDailyRate.Float()
}

// Prices returns the (yes, no) outcome prices, defaulting to 0.5/0.5 when
// the field is missing or unparseable. Single-quoted JSON is tolerated.
func (m *Market) Prices() (yes, no float64) {
	yes, no = 0.5, 0.5
	raw := m.OutcomePrices
	if raw == "" {
		return yes, no
	}
	var prices []string
	if err := json.Unmarshal([]byte(strings.ReplaceAll(raw, "'", `"`)), &prices); err != nil {
		return yes, no
	}
	if len(prices) == 0 {
		return yes, no
	}
	if y, err := strconv.ParseFloat(prices[0], 64); err == nil {
		yes = y
		no = 1.0 - y
	}
	if len(prices) > 1 {
		if n, err := strconv.ParseFloat(prices[1], 64); err == nil {
			no = n
		}
	}
	return yes, no
}

// TokenIDs returns the CLOB token ids for the YES and NO legs.
func (m *Market) TokenIDs() (yesToken, noToken string, ok bool) {
	var ids []string
	if err := json.Unmarshal([]byte(m.ClobTokenIDs), &ids); err != nil {
		return "", "", false
	}
	if len(ids) < 2 {
		return "", "", false
	}
	return ids[0], ids[1], true
}

// BookLevel is one resting order-book level. The CLOB reports the resting
// amount under different keys depending on endpoint version.
type BookLevel struct {
	Price     Number `json:"price"`
	Size      Number `json:"size"`
	Quantity  Number `json:"quantity"`
	Remaining Number `json:"remaining"`
}

// Amount returns the resting size, preferring quantity, then size, then
// remaining.
func (l BookLevel) Amount() float64 {
	if l.Quantity != 0 {
		return l.Quantity.Float()
	}
	if l.Size != 0 {
		return l.Size.Float()
	}
	return l.Remaining.Float()
}

// OrderBook is a full snapshot of resting bids and asks for one token.
type OrderBook struct {
	Bids []BookLevel `json:"bids"`
	Asks []BookLevel `json:"asks"`
}

// UserPosition is one open position from the public Data API. Read-only:
// requires only the public address, no key or auth.
type UserPosition struct {
	Title      string `json:"title"`
	Outcome    string `json:"outcome"`
	Size       Number `json:"size"`
	AvgPrice   Number `json:"avgPrice"`
	CurPrice   Number `json:"curPrice"`
	CashPnl    Number `json:"cashPnl"`
	PercentPnl Number `json:"percentPnl"`
	Slug       string `json:"slug"`
	EventSlug  string `json:"eventSlug"`
}

// URL returns the polymarket.com page for the position's market, or "".
func (p *UserPosition) URL() string {
	switch {
	case p.EventSlug != "" && p.Slug != "":
		return "https://polymarket.com/event/" + p.EventSlug + "/" + p.Slug
	case p.Slug != "":
		return "https://polymarket.com/event/" + p.Slug
	default:
		return ""
	}
}
