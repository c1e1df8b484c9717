package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

var (
	clockSuffix  = regexp.MustCompile(`\s+(?:at\s+)?(\d{1,2})(?::(\d{2}))?(?::(\d{2}))?\s*(am|pm)?$`)
	relativeExpr = regexp.MustCompile(`^(?:\+|in\s+)?(\d+)\s*(minute|min|hour|day|week|fortnight|month|year)s?(?:\s+from\s+now)?$`)
	spaces       = regexp.MustCompile(`\s+`)
)

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// Layouts without a year roll over to the next occurrence.
var yearlessLayouts = []string{
	"Jan 2", "January 2", "2 Jan", "2 January", "01-02",
}

var datedLayouts = []string{
	"2006-01-02", "2006/01/02",
	"Jan 2 2006", "January 2 2006", "Jan 2, 2006", "January 2, 2006",
	"2 Jan 2006", "2 January 2006", "02/01/2006",
}

// ParseSchedule turns a free text schedule ("Jan 1", "every friday 9:00", "tomorrow", "+2 weeks",
// or a standard cron line) into the next unix timestamp strictly after now. It returns 0 when the
// text cannot be parsed or names a moment that is not in the future.
func ParseSchedule(text string, now time.Time) int64 {
	t, ok := nextOccurrence(text, now)
	if !ok || !t.After(now) {
		return 0
	}
	return t.Unix()
}

// IsScheduleExpression reports whether text parses to a future time.
func IsScheduleExpression(text string, now time.Time) bool {
	return ParseSchedule(text, now) > 0
}

func nextOccurrence(text string, now time.Time) (time.Time, bool) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return time.Time{}, false
	}

	if strings.HasPrefix(raw, "@") || len(strings.Fields(raw)) == 5 {
		if sched, err := cron.ParseStandard(raw); err == nil {
			return sched.Next(now), true
		}
	}

	s := spaces.ReplaceAllString(strings.ToLower(raw), " ")
	s = strings.TrimSuffix(s, ".")

	if m := relativeExpr.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, false
		}
		return addUnit(now, n, m[2]), true
	}

	hour, minute, second, hasClock := 0, 0, 0, false
	if m := clockSuffix.FindStringSubmatchIndex(s); m != nil {
		if h, mi, sec, ok := clock(s, m); ok {
			hour, minute, second, hasClock = h, mi, sec, true
			s = strings.TrimSpace(s[:m[0]])
		}
	}

	loc := now.Location()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	at := func(day time.Time) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, second, 0, loc)
	}

	switch s {
	case "now":
		return now, true
	case "today", "midnight":
		return at(midnight), true
	case "tomorrow":
		return at(midnight.AddDate(0, 0, 1)), true
	case "yesterday":
		return at(midnight.AddDate(0, 0, -1)), true
	case "next week":
		return at(midnight.AddDate(0, 0, 7)), true
	case "next month":
		return at(midnight.AddDate(0, 1, 0)), true
	case "next year":
		return at(midnight.AddDate(1, 0, 0)), true
	}

	if day, ok := weekdayOf(s); ok {
		candidate := at(midnight)
		for i := 0; i < 8; i++ {
			if candidate.Weekday() == day && candidate.After(now) {
				return candidate, true
			}
			candidate = at(candidate.AddDate(0, 0, 1))
		}
	}

	date := titleCase(ordinalSuffix.ReplaceAllString(strings.ReplaceAll(s, " of ", " "), "$1"))
	for _, layout := range datedLayouts {
		if d, err := time.ParseInLocation(layout, date, loc); err == nil {
			if !hasClock {
				return d, true
			}
			return at(d), true
		}
	}
	for _, layout := range yearlessLayouts {
		d, err := time.ParseInLocation(layout, date, loc)
		if err != nil {
			continue
		}
		// Feb 29 only exists in leap years; skip years where time.Date would normalise it away.
		for year := now.Year(); year <= now.Year()+8; year++ {
			day := time.Date(year, d.Month(), d.Day(), 0, 0, 0, 0, loc)
			if day.Month() != d.Month() || day.Day() != d.Day() {
				continue
			}
			if candidate := at(day); candidate.After(now) {
				return candidate, true
			}
		}
		return time.Time{}, false
	}

	return time.Time{}, false
}

var ordinalSuffix = regexp.MustCompile(`(\d)(?:st|nd|rd|th)\b`)

// weekdayOf accepts "friday", "every friday" and "next friday".
func weekdayOf(s string) (time.Weekday, bool) {
	s = strings.TrimPrefix(s, "every ")
	s = strings.TrimPrefix(s, "next ")
	s = strings.TrimPrefix(s, "this ")
	day, ok := weekdays[s]
	return day, ok
}

func clock(s string, m []int) (hour, minute, second int, ok bool) {
	group := func(i int) string {
		if m[2*i] < 0 {
			return ""
		}
		return s[m[2*i]:m[2*i+1]]
	}

	hour, _ = strconv.Atoi(group(1))
	minutes, meridiem := group(2), group(4)
	// A bare number is only a clock when it has minutes or am/pm, otherwise it is a day or year.
	if minutes == "" && meridiem == "" {
		return 0, 0, 0, false
	}
	minute, _ = strconv.Atoi(minutes)
	second, _ = strconv.Atoi(group(3))

	switch meridiem {
	case "am":
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour < 12 {
			hour += 12
		}
	}
	if hour > 23 || minute > 59 || second > 59 {
		return 0, 0, 0, false
	}
	return hour, minute, second, true
}

func addUnit(now time.Time, n int, unit string) time.Time {
	switch unit {
	case "minute", "min":
		return now.Add(time.Duration(n) * time.Minute)
	case "hour":
		return now.Add(time.Duration(n) * time.Hour)
	case "day":
		return now.AddDate(0, 0, n)
	case "week":
		return now.AddDate(0, 0, 7*n)
	case "fortnight":
		return now.AddDate(0, 0, 14*n)
	case "month":
		return now.AddDate(0, n, 0)
	default:
		return now.AddDate(n, 0, 0)
	}
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
