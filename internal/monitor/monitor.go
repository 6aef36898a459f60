// Package monitor runs the per-cycle position re-pricing loop: distance to
// limit, depth ahead, de-duplicated price alerts, and the periodic up/down
// window scan.
package monitor

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/Doonhamersco/polymarket-LP-Watch/internal/command"
	"github.com/Doonhamersco/polymarket-LP-Watch/internal/logger"
	"github.com/Doonhamersco/polymarket-LP-Watch/internal/models"
	"github.com/Doonhamersco/polymarket-LP-Watch/internal/polymarket"
	"github.com/Doonhamersco/polymarket-LP-Watch/internal/pricing"
	"github.com/Doonhamersco/polymarket-LP-Watch/internal/scan"
	"github.com/Doonhamersco/polymarket-LP-Watch/internal/storage"
	"github.com/Doonhamersco/polymarket-LP-Watch/internal/term"
)

// Config holds monitoring behavior configuration.
type Config struct {
	AlertThresholdCents float64
	UpDownCheckEvery    int
	UpDownLeadHours     float64
}

// Notifier sends alert messages to the trader. A nil notifier silently
// disables alerts; everything else proceeds.
type Notifier interface {
	SendHTML(text string) error
}

// RowSource builds live-priced rows for tracked positions.
type RowSource interface {
	BuildRows(ctx context.Context, tracked []pricing.Tracked) []models.PositionRow
}

// MarketLister lists all active markets, used by the up/down scan.
type MarketLister interface {
	FetchAllMarkets(ctx context.Context) ([]polymarket.Market, error)
}

// AlertLogger records fired alerts for auditing.
type AlertLogger interface {
	LogAlert(storage.AlertRecord) error
}

// Commander drains the command channel once per cycle.
type Commander interface {
	Drain(ctx context.Context)
}

// Monitor owns the tracked position book and all process-lifetime alert
// state. It is driven from a single control goroutine; one RunCycle call is
// one tick.
type Monitor struct {
	book     *models.Book
	rows     RowSource
	markets  MarketLister
	notifier Notifier
	commands Commander
	alerts   AlertLogger
	config   Config

	lastAlertPrice map[models.Key]float64
	alertedUpDown  map[string]bool
	cycleCount     int
}

// New creates a Monitor. notifier, commands, and alerts may each be nil.
func New(book *models.Book, rows RowSource, markets MarketLister, notifier Notifier, commands Commander, alerts AlertLogger, config Config) *Monitor {
	return &Monitor{
		book:           book,
		rows:           rows,
		markets:        markets,
		notifier:       notifier,
		commands:       commands,
		alerts:         alerts,
		config:         config,
		lastAlertPrice: make(map[models.Key]float64),
		alertedUpDown:  make(map[string]bool),
	}
}

// RunCycle executes one tick: re-price every tracked position, render the
// sorted view, fire threshold alerts, drain the command channel, and on
// every Nth cycle scan for opening up/down markets. Fetch failures skip the
// affected item; nothing here is fatal.
func (m *Monitor) RunCycle(ctx context.Context) {
	rows := m.rows.BuildRows(ctx, pricing.Track(m.book.List()))

	for _, r := range rows {
		if !r.Priced || r.DistanceCents > m.config.AlertThresholdCents {
			continue
		}
		key := models.Key{Slug: models.NormalizeSlug(r.Slug), Side: r.Side}
		if last, seen := m.lastAlertPrice[key]; seen && last == r.Current {
			continue // same price as the last alert for this position
		}
		m.lastAlertPrice[key] = r.Current
		m.fireAlert(r)
	}

	m.render(rows)

	if m.commands != nil {
		m.commands.Drain(ctx)
	}

	m.cycleCount++
	if m.cycleCount%m.config.UpDownCheckEvery == 0 {
		m.checkUpDownMarkets(ctx)
	}
}

func (m *Monitor) fireAlert(r models.PositionRow) {
	fmt.Println("  >> Price near your limit! Alerting.")

	if m.alerts != nil {
		if err := m.alerts.LogAlert(storage.AlertRecord{
			Slug:          models.NormalizeSlug(r.Slug),
			Side:          r.Side,
			CurrentPrice:  r.Current,
			LimitPrice:    r.Limit,
			DistanceCents: r.DistanceCents,
			DepthAhead:    r.DepthAhead,
		}); err != nil {
			logger.Warn("Failed to log alert: %v", err)
		}
	}

	if m.notifier == nil {
		return
	}
	direction := "falling toward"
	if r.Current < r.Limit {
		direction = "rising toward"
	}
	question := clipRunes(r.Question, 80)
	msg := fmt.Sprintf(
		"🚨 <b>PRICE ALERT</b>\n\n<b>%d. %s</b>\n\n"+
			"Price %s your limit on <b>%s</b>.\n"+
			"• Current: <b>%.3f</b>\n"+
			"• Your limit: <b>%.3f</b>\n"+
			"• Distance: <b>%.1f¢</b>\n\n"+
			"<a href='https://polymarket.com/event/%s'>View market</a>",
		r.Index, question, direction, r.Side, r.Current, r.Limit, r.DistanceCents, r.Slug)
	if err := m.notifier.SendHTML(msg); err != nil {
		logger.Warn("Failed to send price alert: %v", err)
	}
}

// render prints the sorted position view, closest-and-thinnest first, with
// the four-band distance coloring.
func (m *Monitor) render(rows []models.PositionRow) {
	lines := renderLines(rows)
	if len(lines) == 0 {
		return
	}
	fmt.Println()
	for _, line := range lines {
		fmt.Println(line)
	}
}

// renderLines formats one console line per priced row. Unpriced rows are
// skipped here; the /positions command is the surface that shows them as n/a.
func renderLines(rows []models.PositionRow) []string {
	var lines []string
	for _, r := range rows {
		if !r.Priced {
			continue
		}
		title := r.Question
		if utf8.RuneCountInString(title) > 120 {
			title = clipRunes(title, 117) + "..."
		}
		if term.Enabled() {
			title = term.Color(title, term.Bold)
		}
		lines = append(lines, fmt.Sprintf(
			"%d. %s — %s current: %.3f, limit: %.3f, distance: %s, bids before: $%s",
			r.Index, title, r.Side, r.Current, r.Limit,
			coloredDistance(r.DistanceCents),
			command.FormatDollars(r.DepthAhead.InexactFloat64())))
	}
	return lines
}

// clipRunes shortens to max runes, never splitting a multi-byte character.
func clipRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// coloredDistance applies the banding contract to console output: the two
// close tiers in red and amber, out-of-range in red with the textual
// marker, the calm band in green.
func coloredDistance(distanceCents float64) string {
	label := fmt.Sprintf("%.1f¢", distanceCents)
	switch models.BandFor(distanceCents) {
	case models.BandVeryClose:
		return term.Color(label, term.Red)
	case models.BandClose:
		return term.Color(label, term.Yellow)
	case models.BandOutOfRange:
		return term.Color(label+" OUT OF RANGE", term.Red)
	default:
		return term.Color(label, term.Green)
	}
}

// checkUpDownMarkets scans reward markets for up/down windows opening within
// the configured lead and alerts once per market slug for the process
// lifetime.
func (m *Monitor) checkUpDownMarkets(ctx context.Context) {
	if m.notifier == nil || m.markets == nil {
		return
	}
	markets, err := m.markets.FetchAllMarkets(ctx)
	if err != nil {
		logger.Warn("Error checking up/down markets: %v", err)
		return
	}
	now := time.Now().UTC()
	for i := range scan.FilterRewardMarkets(markets) {
		mk := &markets[i]
		if !IsUpDownMarket(mk.Question) {
			continue
		}
		if mk.Slug == "" || m.alertedUpDown[mk.Slug] {
			continue
		}
		start, _, ok := ParseWindow(mk.Question, now)
		if !ok {
			continue
		}
		hoursUntilStart := start.Sub(now).Hours()
		if hoursUntilStart > m.config.UpDownLeadHours || hoursUntilStart < 0 {
			continue
		}
		row := scan.BuildRow(mk, now)
		if row == nil {
			continue
		}
		m.alertedUpDown[mk.Slug] = true
		msg := fmt.Sprintf(
			"🚀 <b>UP/DOWN MARKET OPPORTUNITY</b>\n\n<b>%s</b>\n\n"+
				"• Start: <b>%s</b> (%.1f hours from now)\n"+
				"• Daily rewards: <b>$%s</b>\n"+
				"• <b>Zero risk until market opens</b> (price cannot move when closed)\n\n"+
				"<a href='%s'>View market</a>",
			mk.Question, start.Format("2006-01-02 15:04 UTC"), hoursUntilStart,
			row.DailyRewards.StringFixed(2), row.URL)
		if err := m.notifier.SendHTML(msg); err != nil {
			logger.Warn("Failed to send up/down alert: %v", err)
			continue
		}
		fmt.Printf("  >> Alerted on Up/Down market: %.60s...\n", mk.Question)
	}
}
