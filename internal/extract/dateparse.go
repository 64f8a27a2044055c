package extract

import (
	"regexp"
	"strings"
	"time"
)

// nowFunc is overridable in tests.
var nowFunc = func() time.Time { return time.Now() }

var isoDatePattern = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseDate resolves a date mention to YYYY-MM-DD relative to now. It
// accepts absolute ISO dates, "today", "tomorrow", "day after tomorrow",
// "next <weekday>", and bare weekday names (meaning the next occurrence).
// Returns false when no date can be resolved.
func ParseDate(text string, now time.Time) (string, bool) {
	if m := isoDatePattern.FindStringSubmatch(text); m != nil {
		if _, err := time.Parse(time.DateOnly, m[1]); err == nil {
			return m[1], true
		}
	}

	lower := strings.ToLower(text)

	if strings.Contains(lower, "day after tomorrow") {
		return now.AddDate(0, 0, 2).Format(time.DateOnly), true
	}
	if strings.Contains(lower, "tomorrow") {
		return now.AddDate(0, 0, 1).Format(time.DateOnly), true
	}
	if strings.Contains(lower, "today") {
		return now.Format(time.DateOnly), true
	}
	if strings.Contains(lower, "next week") {
		return now.AddDate(0, 0, 7).Format(time.DateOnly), true
	}

	for name, wd := range weekdays {
		if !strings.Contains(lower, name) {
			continue
		}
		days := int(wd-now.Weekday()+7) % 7
		if days == 0 {
			days = 7 // "monday" said on a Monday means next Monday
		}
		if strings.Contains(lower, "next "+name) && days < 7 {
			// "next monday" skips this week's occurrence when it is still ahead
			days += 7
		}
		return now.AddDate(0, 0, days).Format(time.DateOnly), true
	}

	return "", false
}
