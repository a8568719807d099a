package api

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var yearPattern = regexp.MustCompile(`\b(20\d{2})\b`)

// Phrases that mean a date is still open, so the tournament counts as
// upcoming.
var undecidedPhrases = []string{"tbd", "to be decided", "coming soon", "upcoming"}

// monthTokens is checked in order, full names in calendar order before
// abbreviations, so a string naming several months ("march to october")
// resolves to the same month on every call.
var monthTokens = []struct {
	name  string
	month time.Month
}{
	{"january", time.January}, {"february", time.February}, {"march", time.March},
	{"april", time.April}, {"may", time.May}, {"june", time.June},
	{"july", time.July}, {"august", time.August}, {"september", time.September},
	{"october", time.October}, {"november", time.November}, {"december", time.December},
	{"jan", time.January}, {"feb", time.February}, {"mar", time.March}, {"apr", time.April},
	{"jun", time.June}, {"jul", time.July}, {"aug", time.August}, {"sep", time.September},
	{"oct", time.October}, {"nov", time.November}, {"dec", time.December},
}

// isCurrentOrFuture reports whether free-text date information points at
// the present or the future. Dates are model output, not parsed values, so
// this is a heuristic over years and month names; anything undecidable is
// included rather than hidden.
func isCurrentOrFuture(dateInfo string, now time.Time) bool {
	if dateInfo == "" {
		return true
	}

	dateStr := strings.ToLower(strings.Trim(dateInfo, ` "`))
	for _, phrase := range undecidedPhrases {
		if strings.Contains(dateStr, phrase) {
			return true
		}
	}

	m := yearPattern.FindStringSubmatch(dateStr)
	if m != nil {
		year, _ := strconv.Atoi(m[1])
		if year > now.Year() {
			return true
		}
		if year < now.Year() {
			return false
		}
		// Same year: check the month when one is named.
		for _, tok := range monthTokens {
			if strings.Contains(dateStr, tok.name) {
				return tok.month >= now.Month()
			}
		}
	}

	// A month without a year, or nothing recognizable: include rather
	// than hide.
	return true
}

// includeTournament applies the past-date filter over a record's date
// list: records without dates, or with at least one current-or-future
// date, stay visible.
func includeTournament(dateInfo []string, now time.Time) bool {
	if len(dateInfo) == 0 {
		return true
	}
	for _, d := range dateInfo {
		if isCurrentOrFuture(d, now) {
			return true
		}
	}
	return false
}
