package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Doonhamersco/polymarket-LP-Watch/internal/logger"
	"github.com/Doonhamersco/polymarket-LP-Watch/internal/models"
	"github.com/Doonhamersco/polymarket-LP-Watch/internal/pricing"
	"github.com/Doonhamersco/polymarket-LP-Watch/internal/telegram"
)

// messageLimit keeps each chunk safely under Telegram's 4096-char cap.
const messageLimit = 3500

// Transport is the messaging surface the handler talks through.
type Transport interface {
	SendHTML(text string) error
	Poll(cursor int) ([]telegram.Inbound, int, error)
}

// RowSource builds live-priced rows for tracked positions.
type RowSource interface {
	BuildRows(ctx context.Context, tracked []pricing.Tracked) []models.PositionRow
}

// Handler drains the transport's inbound queue once per monitor tick and
// mutates the shared position book. It owns the update cursor and the
// pending-bulk-input flags for the process lifetime.
type Handler struct {
	transport   Transport
	book        *models.Book
	rows        RowSource
	chatID      string
	pendingBulk map[string]bool
	cursor      int
	dispatch    map[Kind]func(ctx context.Context, chatID string, cmd Command)
}

// NewHandler creates a command handler bound to one conversation.
func NewHandler(transport Transport, book *models.Book, rows RowSource, chatID string) *Handler {
	h := &Handler{
		transport:   transport,
		book:        book,
		rows:        rows,
		chatID:      chatID,
		pendingBulk: make(map[string]bool),
	}
	h.dispatch = map[Kind]func(ctx context.Context, chatID string, cmd Command){
		KindListPositions:   h.handleListPositions,
		KindOutOfRange:      h.handleOutOfRange,
		KindMarket:          h.handleMarket,
		KindAddPosition:     h.handleAddPosition,
		KindEditPosition:    h.handleEditPosition,
		KindBulkAdd:         h.handleBulkAdd,
		KindRemovePositions: h.handleRemovePositions,
		KindHelp:            h.handleHelp,
	}
	return h
}

// Drain consumes all pending inbound messages without blocking. Each message
// is processed at most once; the cursor only moves forward.
func (h *Handler) Drain(ctx context.Context) {
	inbound, next, err := h.transport.Poll(h.cursor)
	if err != nil {
		logger.Warn("Failed to poll inbound messages: %v", err)
		return
	}
	h.cursor = next

	for _, msg := range inbound {
		// Only respond in the configured chat.
		if h.chatID != "" && msg.ChatID != h.chatID {
			continue
		}
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			continue
		}

		// A chat that asked for /bulk_add gets its next non-command message
		// parsed as a batch of position specs.
		if h.pendingBulk[msg.ChatID] && !IsCommand(text) {
			delete(h.pendingBulk, msg.ChatID)
			h.handleBulkPayload(text)
			continue
		}

		if !IsCommand(text) {
			continue
		}
		cmd := Parse(text)
		if cmd.Kind == KindUnknown {
			continue
		}
		if cmd.Usage != "" {
			h.send(cmd.Usage)
			continue
		}
		h.dispatch[cmd.Kind](ctx, msg.ChatID, cmd)
	}
}

func (h *Handler) send(text string) {
	if err := h.transport.SendHTML(text); err != nil {
		logger.Warn("Failed to send reply: %v", err)
	}
}

func (h *Handler) handleListPositions(ctx context.Context, _ string, _ Command) {
	if h.book.Len() == 0 {
		h.send("No positions saved.")
		return
	}
	rows := h.rows.BuildRows(ctx, pricing.Track(h.book.List()))
	header := "<b>Current positions</b>\n(sorted by risk — closest & thinnest first):"
	for _, chunk := range formatRowChunks(header, rows) {
		h.send(chunk)
	}
}

func (h *Handler) handleOutOfRange(ctx context.Context, _ string, _ Command) {
	if h.book.Len() == 0 {
		h.send("No positions saved.")
		return
	}
	all := h.rows.BuildRows(ctx, pricing.Track(h.book.List()))
	var rows []models.PositionRow
	for _, r := range all {
		if r.Priced && r.DistanceCents >= models.OutOfRangeCents {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		h.send("No OUT OF RANGE positions (distance ≥ 5¢).")
		return
	}
	header := "<b>OUT OF RANGE positions</b>\n(distance ≥ 5¢; closest & thinnest first):"
	for _, chunk := range formatRowChunks(header, rows) {
		h.send(chunk)
	}
}

func (h *Handler) handleMarket(ctx context.Context, _ string, cmd Command) {
	if h.book.Len() == 0 {
		h.send("No positions saved.")
		return
	}
	var subset []pricing.Tracked
	for _, t := range pricing.Track(h.book.List()) {
		if models.NormalizeSlug(t.Position.MarketSlug) == cmd.Slug {
			subset = append(subset, t)
		}
	}
	var rows []models.PositionRow
	for _, r := range h.rows.BuildRows(ctx, subset) {
		if r.Priced {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		h.send("No positions found for that market. " +
			"Make sure you used the slug or URL of a market you have saved.")
		return
	}
	header := fmt.Sprintf("<b>Positions for market</b>\n%s\n(sorted by risk — closest & thinnest first):",
		truncate(rows[0].Question, 120))
	for _, chunk := range formatRowChunks(header, rows) {
		h.send(chunk)
	}
}

func (h *Handler) handleAddPosition(_ context.Context, _ string, cmd Command) {
	updated, oldPrice, err := h.book.AddOrUpdate(cmd.Slug, cmd.Side, cmd.Price, cmd.Notes)
	if err != nil {
		logger.Warn("Failed to persist positions: %v", err)
	}
	if updated {
		h.send(fmt.Sprintf(
			"Updated existing position on this market/side.\n%s on %s\nOld price: %.3f\nNew price: %.3f",
			cmd.Side, cmd.Slug, oldPrice, cmd.Price))
		return
	}
	h.send(fmt.Sprintf("Added position: %s @ %.3f on %s", cmd.Side, cmd.Price, cmd.Slug))
}

func (h *Handler) handleEditPosition(_ context.Context, _ string, cmd Command) {
	if cmd.Index < 1 || cmd.Index > h.book.Len() {
		h.send(fmt.Sprintf(
			"Index out of range. You currently have %d %s. Use /positions to see valid indices.",
			h.book.Len(), plural(h.book.Len())))
		return
	}
	p, oldPrice, err := h.book.EditPrice(cmd.Index, cmd.Price)
	if err != nil {
		logger.Warn("Failed to persist positions: %v", err)
	}
	h.send(fmt.Sprintf("Updated position %d: %s on %s\nOld price: %.3f\nNew price: %.3f",
		cmd.Index, p.Side, p.MarketSlug, oldPrice, cmd.Price))
}

func (h *Handler) handleBulkAdd(_ context.Context, chatID string, _ Command) {
	h.pendingBulk[chatID] = true
	h.send("Send positions in the next message, one per line, in this format:\n" +
		"<slug-or-url> <YES/NO> <price>\n\n" +
		"Example:\n" +
		"https://polymarket.com/event/.../market1 YES 0.75\n" +
		"https://polymarket.com/event/.../market2 NO 0.43")
}

func (h *Handler) handleBulkPayload(text string) {
	added, skipped, updated, err := h.book.BulkAdd(text)
	if err != nil {
		logger.Warn("Failed to persist positions: %v", err)
	}
	msg := fmt.Sprintf("Bulk add complete. Added %d position(s)", added)
	if updated > 0 {
		msg += fmt.Sprintf(", updated %d existing position(s)", updated)
	}
	if skipped > 0 {
		msg += fmt.Sprintf(", skipped %d malformed line(s)", skipped)
	}
	h.send(msg + ".")
}

func (h *Handler) handleRemovePositions(_ context.Context, _ string, cmd Command) {
	removed, outOfRange, err := h.book.RemoveIndices(cmd.Indices)
	if err != nil {
		logger.Warn("Failed to persist positions: %v", err)
	}
	if len(removed) == 0 {
		h.send(fmt.Sprintf(
			"All indices out of range. You currently have %d %s. Use /positions to see valid indices.",
			h.book.Len(), plural(h.book.Len())))
		return
	}
	lines := []string{"Removed position(s):"}
	for _, r := range removed {
		lines = append(lines, fmt.Sprintf("%d. %s @ %.3f on %s",
			r.Index, r.Position.Side, r.Position.LimitPrice, r.Position.MarketSlug))
	}
	if len(outOfRange) > 0 {
		toks := make([]string, len(outOfRange))
		for i, idx := range outOfRange {
			toks[i] = strconv.Itoa(idx)
		}
		lines = append(lines, "Ignored out-of-range index/indices: "+strings.Join(toks, ", "))
	}
	if len(cmd.NonNumericTokens) > 0 {
		lines = append(lines, "Ignored non-numeric token(s): "+strings.Join(cmd.NonNumericTokens, ", "))
	}
	h.send(strings.Join(lines, "\n"))
}

func (h *Handler) handleHelp(_ context.Context, _ string, _ Command) {
	h.send("Commands:\n" +
		"/positions — list current positions\n" +
		"/out_of_range — list only OUT OF RANGE positions (distance ≥ 5¢)\n" +
		"/market <slug-or-url> — show only positions for a specific market\n" +
		"/add_position <slug> <YES/NO> <price> [notes]\n" +
		"/edit_position <index> <new_price> — edit price of an existing position\n" +
		"/bulk_add — add many positions; next message: one '<slug> <YES/NO> <price>' per line\n" +
		"/remove_position <index> — remove by index from /positions\n")
}

// formatRowChunks renders rows under the header, splitting into chunks that
// stay under the transport message limit.
func formatRowChunks(header string, rows []models.PositionRow) []string {
	current := header
	var chunks []string
	for _, r := range rows {
		line := formatRowLine(r)
		if len(current)+len(line) > messageLimit {
			chunks = append(chunks, current)
			current = header + line
		} else {
			current += line
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

func formatRowLine(r models.PositionRow) string {
	q := truncate(r.Question, 120)
	if !r.Priced {
		return fmt.Sprintf(
			"\n\n<b>%d. %s</b>\nSide: <b>%s</b> • Limit: <b>%.3f</b> • "+
				"Current: <b>n/a</b> • Distance: <b>n/a</b> • Bids before: <b>n/a</b>",
			r.Index, q, r.Side, r.Limit)
	}
	return fmt.Sprintf(
		"\n\n<b>%d. %s</b>\nSide: <b>%s</b> • Current: <b>%.3f</b> • Limit: <b>%.3f</b> • "+
			"Distance: <b>%s</b> • Bids before: <b>$%s</b>",
		r.Index, q, r.Side, r.Current, r.Limit,
		DistanceLabel(r.DistanceCents), FormatDollars(r.DepthAhead.InexactFloat64()))
}

// DistanceLabel renders a distance for the messaging surface. The banding
// matches the console: only the out-of-range tier gets a textual marker.
func DistanceLabel(distanceCents float64) string {
	s := fmt.Sprintf("%.1f¢", distanceCents)
	if models.BandFor(distanceCents) == models.BandOutOfRange {
		s += " OUT OF RANGE"
	}
	return s
}

// FormatDollars renders a dollar amount with thousands separators and two
// decimals.
func FormatDollars(f float64) string {
	return humanize.FormatFloat("#,###.##", f)
}

// truncate shortens to max runes, never splitting a multi-byte character.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) > max {
		return string(r[:max-3]) + "..."
	}
	return s
}

func plural(n int) string {
	if n == 1 {
		return "position"
	}
	return "positions"
}
