package monitor

import (
	"regexp"
	"strings"
	"time"
)

// upDownAssetKeywords marks time-boxed price markets on named assets.
var upDownAssetKeywords = []string{
	"bitcoin", "btc", "ethereum", "eth", "solana", "sol", "xrp", "crypto",
	"spx", "s&p", "sp500", "s&p 500", "nasdaq", "dow", "stock",
}

var upDownPatterns = []string{"up or down", "up/down", "up or down market"}

// IsUpDownMarket reports whether the question describes a crypto or stock
// index "Up or Down" price prediction market.
func IsUpDownMarket(question string) bool {
	q := strings.ToLower(question)
	asset := false
	for _, kw := range upDownAssetKeywords {
		if strings.Contains(q, kw) {
			asset = true
			break
		}
	}
	if !asset {
		return false
	}
	for _, p := range upDownPatterns {
		if strings.Contains(q, p) {
			return true
		}
	}
	return false
}

// windowPattern matches clock windows like
// "February 13, 12:00PM-12:05PM ET" embedded in a question.
var windowPattern = regexp.MustCompile(
	`(?i)([A-Za-z]+)\s+(\d{1,2}),\s+(\d{1,2}):(\d{2})(AM|PM)\s*-\s*(\d{1,2}):(\d{2})(AM|PM)\s*(ET|EST|EDT)`)

var monthByName = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

// etOffsetHours converts ET clock times to UTC. Fixed at UTC-4 (EDT)
// year-round: alert timing must stay bit-exact with historical behavior,
// including through the winter months where this is an hour off.
const etOffsetHours = 4

// ParseWindow extracts the start/end clock window from a question like
// "Bitcoin Up or Down - February 13, 12:00PM-12:05PM ET", in UTC. The
// current year is assumed. Returns ok=false when no window parses.
func ParseWindow(question string, now time.Time) (start, end time.Time, ok bool) {
	m := windowPattern.FindStringSubmatch(question)
	if m == nil {
		return time.Time{}, time.Time{}, false
	}

	month, found := monthByName[strings.ToLower(m[1])]
	if !found {
		return time.Time{}, time.Time{}, false
	}
	day := atoi(m[2])

	startHour := clockTo24(atoi(m[3]), m[5])
	endHour := clockTo24(atoi(m[6]), m[8])

	year := now.UTC().Year()
	start = time.Date(year, month, day, startHour, atoi(m[4]), 0, 0, time.UTC).
		Add(etOffsetHours * time.Hour)
	end = time.Date(year, month, day, endHour, atoi(m[7]), 0, 0, time.UTC).
		Add(etOffsetHours * time.Hour)
	return start, end, true
}

func clockTo24(hour int, ampm string) int {
	switch strings.ToUpper(ampm) {
	case "PM":
		if hour != 12 {
			hour += 12
		}
	case "AM":
		if hour == 12 {
			hour = 0
		}
	}
	return hour
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}
