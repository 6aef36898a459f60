// Package pricing re-prices tracked positions against live market data:
// current price by side, distance to limit, and standing order-book depth
// ahead of the trader's resting order.
package pricing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Doonhamersco/polymarket-LP-Watch/internal/logger"
	"github.com/Doonhamersco/polymarket-LP-Watch/internal/models"
	"github.com/Doonhamersco/polymarket-LP-Watch/internal/polymarket"
)

// MarketSource is the slice of the market data provider the pricer needs.
type MarketSource interface {
	FetchMarketBySlug(ctx context.Context, slug string) (*polymarket.Market, error)
	FetchOrderBook(ctx context.Context, tokenID string) (*polymarket.OrderBook, error)
}

// Pricer builds per-cycle position rows.
type Pricer struct {
	src MarketSource
}

// New creates a Pricer over the given market source.
func New(src MarketSource) *Pricer {
	return &Pricer{src: src}
}

// Tracked pairs a position with the 1-based book index the trader refers to
// it by, so filtered views keep their original indices.
type Tracked struct {
	Index    int
	Position models.Position
}

// Track assigns book indices to a full position list.
func Track(positions []models.Position) []Tracked {
	tracked := make([]Tracked, len(positions))
	for i, p := range positions {
		tracked[i] = Tracked{Index: i + 1, Position: p}
	}
	return tracked
}

// BuildRows fetches each position's market snapshot and order book and
// returns one row per position, sorted closest-and-thinnest first. Fetch
// failures produce an unpriced row, never an error. The order-book cache is
// scoped to this one call and never reused across cycles.
func (p *Pricer) BuildRows(ctx context.Context, tracked []Tracked) []models.PositionRow {
	bookCache := make(map[string]*polymarket.OrderBook)
	rows := make([]models.PositionRow, 0, len(tracked))

	for _, t := range tracked {
		pos := t.Position
		row := models.PositionRow{
			Index:    t.Index,
			Slug:     pos.MarketSlug,
			Question: pos.MarketSlug,
			Side:     pos.Side,
			Limit:    pos.LimitPrice,
		}

		market, err := p.src.FetchMarketBySlug(ctx, pos.MarketSlug)
		if err != nil {
			logger.Warn("Could not fetch market for slug %q: %v", pos.MarketSlug, err)
			rows = append(rows, row)
			continue
		}
		if market == nil {
			logger.Warn("No market found for slug %q", pos.MarketSlug)
			rows = append(rows, row)
			continue
		}

		yesPrice, noPrice := market.Prices()
		current := yesPrice
		if pos.Side == models.SideNo {
			current = noPrice
		}

		row.Priced = true
		row.Current = current
		row.DistanceCents = Distance(current, pos.LimitPrice)
		row.URL = MarketURL(market, pos.MarketSlug)
		if market.Question != "" {
			row.Question = market.Question
		} else {
			row.Question = row.URL
		}

		yesToken, noToken, ok := market.TokenIDs()
		if ok {
			tokenID := yesToken
			if pos.Side == models.SideNo {
				tokenID = noToken
			}
			book, cached := bookCache[tokenID]
			if !cached {
				book, err = p.src.FetchOrderBook(ctx, tokenID)
				if err != nil {
					logger.Warn("Could not fetch order book for token %s: %v", tokenID, err)
					book = nil
				}
				bookCache[tokenID] = book
			}
			row.DepthAhead = DepthAhead(book, pos.LimitPrice)
		}

		rows = append(rows, row)
	}

	models.SortRows(rows)
	return rows
}

// Distance is the absolute gap between current price and limit, in cents.
func Distance(current, limit float64) float64 {
	d := (current - limit) * 100
	if d < 0 {
		d = -d
	}
	return d
}

// DepthAhead sums price x size over all resting bids priced at or better
// than the limit: the dollars of demand that must clear before the trader's
// own order is reached. A nil book yields zero.
func DepthAhead(book *polymarket.OrderBook, limit float64) decimal.Decimal {
	total := decimal.Zero
	if book == nil {
		return total
	}
	for _, bid := range book.Bids {
		price := bid.Price.Float()
		if price < limit {
			continue
		}
		level := decimal.NewFromFloat(price).Mul(decimal.NewFromFloat(bid.Amount()))
		total = total.Add(level)
	}
	return total
}

// MarketURL builds the polymarket.com page URL for a market.
func MarketURL(market *polymarket.Market, fallbackSlug string) string {
	slug := market.Slug
	if slug == "" {
		slug = models.NormalizeSlug(fallbackSlug)
	}
	if market.EventSlug != "" {
		return "https://polymarket.com/event/" + market.EventSlug + "/" + slug
	}
	return "https://polymarket.com/event/" + slug
}
