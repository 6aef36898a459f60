// Package models defines the core domain entities: tracked positions, the
// position book, and display rows.
package models

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Side is the outcome leg a limit order rests on.
type Side string

const (
	SideYes Side = "YES"
	SideNo  Side = "NO"
)

// ParseSide normalizes user input into a Side.
func ParseSide(s string) (Side, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "YES":
		return SideYes, true
	case "NO":
		return SideNo, true
	}
	return "", false
}

// Position is a tracked limit-order intent on one market side.
type Position struct {
	MarketSlug string  `json:"market_slug"`
	Side       Side    `json:"side"`
	LimitPrice float64 `json:"my_limit_price"`
	Notes      string  `json:"notes,omitempty"`
}

// Key is the identity of a position: at most one tracked position may exist
// per (normalized market slug, side) pair.
type Key struct {
	Slug string
	Side Side
}

// Key returns the position's identity key.
func (p Position) Key() Key {
	return Key{Slug: NormalizeSlug(p.MarketSlug), Side: p.Side}
}

// Validate checks position field constraints.
func (p Position) Validate() error {
	if NormalizeSlug(p.MarketSlug) == "" {
		return errors.New("market slug must not be empty")
	}
	if p.Side != SideYes && p.Side != SideNo {
		return fmt.Errorf("side must be YES or NO, got %q", p.Side)
	}
	if p.LimitPrice < 0 || p.LimitPrice > 1 {
		return errors.New("limit price must be between 0.0 and 1.0")
	}
	return nil
}

// NormalizeSlug reduces user input to a bare Polymarket market slug.
// Accepts a raw slug, an event/market path, or a full polymarket.com URL,
// and always returns the final non-empty path segment.
func NormalizeSlug(slug string) string {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return slug
	}
	path := slug
	if strings.HasPrefix(slug, "http://") || strings.HasPrefix(slug, "https://") {
		if parsed, err := url.Parse(slug); err == nil {
			path = parsed.Path
		}
	}
	last := slug
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			last = part
		}
	}
	return last
}
