// Package risk turns a raw market snapshot into a deterministic composite
// risk score for LP reward farming. All scoring is pure arithmetic over the
// snapshot; the evaluation clock is passed in.
package risk

import (
	"regexp"
	"strings"
)

// Category is the event-type family a market question falls into.
type Category string

const (
	CategoryAssetPrice Category = "asset_price"
	CategoryBinary     Category = "binary"
	CategoryScheduled  Category = "scheduled"
	CategoryGradual    Category = "gradual"
	CategoryUnknown    Category = "unknown"
)

// Base spike risk per category. Asset-price markets are excluded from low-risk
// LP elsewhere: one pump/dump can move the price violently.
const (
	baseSpikeAssetPrice = 72.0
	baseSpikeBinary     = 85.0
	baseSpikeScheduled  = 65.0
	baseSpikeGradual    = 25.0
	baseSpikeUnknown    = 50.0
)

var binaryTriggers = []string{
	"resign", "resigns", "out as", "step down", "fired", "removed",
	"strike", "strikes", "attack", "invade", "invasion", "war",
	"die", "dies", "death", "assassin",
	"announce", "announcement", "declare",
	"shut down", "shutdown", "default",
	"ceasefire", "peace deal", "treaty",
}

var scheduledTriggers = []string{
	"fed ", "fomc", "interest rate", "rate cut", "rate hike",
	"election", "vote", "referendum",
	"nominee", "nomination", "primary", "democratic nominee",
	"republican nominee", "general election",
	"super bowl", "world cup", "championship", "finals",
	"earnings", "quarterly", "q1", "q2", "q3", "q4",
	"meeting", "summit", "conference",
}

var assetPriceTriggers = []string{
	"bitcoin", "btc", "eth", "crypto", "price above", "price below",
	"stock", "s&p", "nasdaq", "dow", "spx", "sp500",
	"silver", "gold", " hit ", " above $", " below $",
	"close over", "close above", "close below",
	" (si)", " (gc)", "gc)", "si)",
}

var gradualTriggers = []string{
	"gdp", "inflation", "unemployment",
	"subscribers", "followers", "views", "streams",
	"before gta", "by end of year", "by 2027", "by 2028",
}

// Congressional district codes (PA-03, FL-19, ...) mark scheduled
// primaries/nominations. Matched against the original casing.
var districtPattern = regexp.MustCompile(`\b[A-Z]{2}-\d{1,2}\b`)

// Classification carries the category plus the raw family flags. The flags
// are independent of precedence: a question can be both asset-price and
// binary, classify as asset_price, and still get the binary deadline boost.
type Classification struct {
	Category     Category
	SpikeRisk    float64
	IsBinary     bool
	IsScheduled  bool
	IsGradual    bool
	IsAssetPrice bool
}

// rule binds one keyword family to its category and base spike risk, in
// fixed precedence order.
type rule struct {
	category  Category
	spikeRisk float64
	matched   func(Classification) bool
}

// Precedence: asset_price > binary > scheduled > gradual > unknown.
var precedence = []rule{
	{CategoryAssetPrice, baseSpikeAssetPrice, func(c Classification) bool { return c.IsAssetPrice }},
	{CategoryBinary, baseSpikeBinary, func(c Classification) bool { return c.IsBinary }},
	{CategoryScheduled, baseSpikeScheduled, func(c Classification) bool { return c.IsScheduled }},
	{CategoryGradual, baseSpikeGradual, func(c Classification) bool { return c.IsGradual }},
}

func containsAny(q string, triggers []string) bool {
	for _, t := range triggers {
		if strings.Contains(q, t) {
			return true
		}
	}
	return false
}

// ClassifyEvent tests the lower-cased question against the keyword families
// and resolves the category by fixed precedence. Pure: identical input text
// yields identical output across calls.
func ClassifyEvent(question string) Classification {
	q := strings.ToLower(question)
	c := Classification{
		IsBinary:     containsAny(q, binaryTriggers),
		IsScheduled:  containsAny(q, scheduledTriggers) || districtPattern.MatchString(question),
		IsAssetPrice: containsAny(q, assetPriceTriggers),
		IsGradual:    containsAny(q, gradualTriggers),
	}
	c.Category = CategoryUnknown
	c.SpikeRisk = baseSpikeUnknown
	for _, r := range precedence {
		if r.matched(c) {
			c.Category = r.category
			c.SpikeRisk = r.spikeRisk
			break
		}
	}
	return c
}
