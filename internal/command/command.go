// Package command implements the conversational position-management protocol
// layered on the messaging transport.
package command

import (
	"strconv"
	"strings"

	"github.com/Doonhamersco/polymarket-LP-Watch/internal/models"
)

// Kind is a closed enum of the supported command verbs.
type Kind int

const (
	KindUnknown Kind = iota
	KindListPositions
	KindOutOfRange
	KindMarket
	KindAddPosition
	KindEditPosition
	KindBulkAdd
	KindRemovePositions
	KindHelp
)

// Command is one parsed, validated command. When a recognized verb carries
// malformed arguments, Kind is set and Usage holds the reply to send instead
// of executing.
type Command struct {
	Kind  Kind
	Usage string

	Slug  string
	Side  models.Side
	Price float64
	Index int
	Notes string

	Indices          []int
	NonNumericTokens []string
}

// IsCommand reports whether text starts with the command sigil.
func IsCommand(text string) bool {
	return strings.HasPrefix(text, "/")
}

// Parse turns one inbound message into a Command. The verb is the first
// whitespace token, case-insensitive, with any "@botname" mention suffix
// stripped. Unknown verbs, and known verbs with too few arguments to even
// attempt, return KindUnknown and are ignored by the caller.
func Parse(text string) Command {
	text = strings.TrimSpace(text)
	if !IsCommand(text) {
		return Command{Kind: KindUnknown}
	}
	parts := strings.Fields(text)
	verb := strings.ToLower(parts[0])
	if i := strings.Index(verb, "@"); i >= 0 {
		verb = verb[:i]
	}

	switch verb {
	case "/positions", "/pos":
		return Command{Kind: KindListPositions}

	case "/out_of_range":
		return Command{Kind: KindOutOfRange}

	case "/market":
		if len(parts) < 2 {
			return Command{Kind: KindUnknown}
		}
		return Command{Kind: KindMarket, Slug: models.NormalizeSlug(parts[1])}

	case "/add_position":
		if len(parts) < 4 {
			return Command{Kind: KindUnknown}
		}
		price, err := strconv.ParseFloat(parts[3], 64)
		if err != nil || price < 0 || price > 1 {
			return Command{
				Kind:  KindAddPosition,
				Usage: "Invalid price. Usage: /add_position <slug> <YES/NO> <price> [notes]",
			}
		}
		side, ok := models.ParseSide(parts[2])
		if !ok {
			return Command{
				Kind:  KindAddPosition,
				Usage: "Side must be YES or NO. Usage: /add_position <slug> <YES/NO> <price>",
			}
		}
		return Command{
			Kind:  KindAddPosition,
			Slug:  parts[1],
			Side:  side,
			Price: price,
			Notes: strings.Join(parts[4:], " "),
		}

	case "/edit_position":
		if len(parts) < 3 {
			return Command{Kind: KindUnknown}
		}
		idx, err := strconv.Atoi(parts[1])
		if err != nil {
			return Command{
				Kind:  KindEditPosition,
				Usage: "Index must be a number. Usage: /edit_position <index> <new_price>",
			}
		}
		price, err := strconv.ParseFloat(parts[2], 64)
		if err != nil || price < 0 || price > 1 {
			return Command{
				Kind:  KindEditPosition,
				Usage: "Invalid price. Usage: /edit_position <index> <new_price>",
			}
		}
		return Command{Kind: KindEditPosition, Index: idx, Price: price}

	case "/bulk_add":
		return Command{Kind: KindBulkAdd}

	case "/remove_position":
		if len(parts) < 2 {
			return Command{Kind: KindUnknown}
		}
		cmd := Command{Kind: KindRemovePositions}
		for _, tok := range parts[1:] {
			if idx, err := strconv.Atoi(tok); err == nil {
				cmd.Indices = append(cmd.Indices, idx)
			} else {
				cmd.NonNumericTokens = append(cmd.NonNumericTokens, tok)
			}
		}
		if len(cmd.Indices) == 0 {
			cmd.Usage = "No valid indices provided. Usage: /remove_position <index> [index2 index3 ...]"
		}
		return cmd

	case "/help", "/start":
		return Command{Kind: KindHelp}
	}

	return Command{Kind: KindUnknown}
}
