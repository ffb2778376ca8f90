package fpc

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var months = map[string]time.Month{
	"january":   time.January,
	"february":  time.February,
	"march":     time.March,
	"april":     time.April,
	"may":       time.May,
	"june":      time.June,
	"july":      time.July,
	"august":    time.August,
	"september": time.September,
	"october":   time.October,
	"november":  time.November,
	"december":  time.December,
}

// Matches history timestamps such as "14:05, 3 January 2009"
var stampR = regexp.MustCompile(`(\d\d):(\d\d), (\d{1,2}) ([a-z]+) (\d{4})`)

// ParseRevisionStamp parses a page history timestamp of the form
// "HH:MM, D Month YYYY". Month names are matched case-insensitively and the
// result is in UTC.
func ParseRevisionStamp(s string) (time.Time, error) {
	g := stampR.FindStringSubmatch(strings.ToLower(s))
	if g == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadStamp, s)
	}
	month, ok := months[g[4]]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: unknown month %q", ErrBadStamp, g[4])
	}

	// The expression guarantees digits
	hour, _ := strconv.Atoi(g[1])
	minute, _ := strconv.Atoi(g[2])
	day, _ := strconv.Atoi(g[3])
	year, _ := strconv.Atoi(g[5])
	if hour > 23 || minute > 59 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("%w: %q out of range", ErrBadStamp, s)
	}

	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC), nil
}

// FormatRevisionStamp is the inverse of ParseRevisionStamp at minute precision
func FormatRevisionStamp(t time.Time) string {
	return t.UTC().Format("15:04, 2 January 2006")
}

// AgeDays returns the number of whole days between created and now
func AgeDays(created, now time.Time) int {
	return int(now.Sub(created) / (24 * time.Hour))
}

var titleKindR = regexp.MustCompile(`^(removal/)?([Ff]ile|[Ii]mage)?:`)

// TitleWidth is the column width used when listing candidates
const TitleWidth = 50

// TrimTitle strips the candidate prefix and the file namespace from a page
// title
func TrimTitle(title, prefix string) string {
	short := strings.TrimPrefix(title, prefix)
	if short != title {
		short = titleKindR.ReplaceAllString(short, "")
	}
	return short
}

// ShortTitle is TrimTitle padded or cut to TitleWidth runes
func ShortTitle(title, prefix string) string {
	r := []rune(TrimTitle(title, prefix))
	if len(r) > TitleWidth {
		r = r[:TitleWidth]
	}
	return string(r) + strings.Repeat(" ", TitleWidth-len(r))
}
