// Package deadline resolves natural-language deadline phrases into concrete
// UTC timestamps. Parsing is pure: the caller supplies the reference time,
// so the same phrase and reference always produce the same result.
package deadline

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var (
	inDurationRe = regexp.MustCompile(`in (\d+) (day|week|month|hour)s?`)
	hourMinuteRe = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*(am|pm)?`)
	hourOnlyRe   = regexp.MustCompile(`(?i)(\d{1,2})\s*(am|pm)`)
)

var weekdays = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// Parse resolves a deadline phrase against the given reference time.
// Relative expressions ("tomorrow", "next friday at 3pm", "in 2 weeks",
// "eod") are handled directly; anything else falls through to an absolute
// date parse. The result is always UTC. A phrase that cannot be resolved
// returns nil rather than an error, because an unparseable deadline is an
// expected outcome, not a failure.
func Parse(phrase string, reference time.Time) *time.Time {
	if strings.TrimSpace(phrase) == "" {
		return nil
	}

	reference = reference.UTC()
	text := strings.ToLower(strings.TrimSpace(phrase))

	if result := parseRelative(text, reference); result != nil {
		return result
	}

	parsed, err := dateparse.ParseIn(stripDatePrefix(text), time.UTC)
	if err != nil {
		return nil
	}
	parsed = parsed.UTC()
	if parsed.Year() == 0 {
		parsed = anchorYear(parsed, reference)
	}
	return &parsed
}

// stripDatePrefix removes connective words that commonly lead a deadline
// phrase ("by November 15", "due on Friday") so the absolute-date fallback
// sees just the date.
func stripDatePrefix(text string) string {
	for again := true; again; {
		again = false
		for _, prefix := range []string{"by ", "on ", "before ", "due "} {
			if strings.HasPrefix(text, prefix) {
				text = strings.TrimSpace(strings.TrimPrefix(text, prefix))
				again = true
			}
		}
	}
	return text
}

// anchorYear resolves a year-less date ("November 15") against the
// reference: it gets the reference's year, rolling into the next year when
// that month and day have already passed.
func anchorYear(parsed, reference time.Time) time.Time {
	anchored := time.Date(reference.Year(), parsed.Month(), parsed.Day(),
		parsed.Hour(), parsed.Minute(), parsed.Second(), parsed.Nanosecond(), time.UTC)
	if anchored.Before(reference) {
		anchored = anchored.AddDate(1, 0, 0)
	}
	return anchored
}

func parseRelative(text string, reference time.Time) *time.Time {
	if text == "today" || text == "now" {
		return &reference
	}

	if strings.Contains(text, "tomorrow") {
		return applyTimeIfPresent(text, reference.AddDate(0, 0, 1))
	}

	if strings.Contains(text, "yesterday") {
		return applyTimeIfPresent(text, reference.AddDate(0, 0, -1))
	}

	if strings.Contains(text, "next week") || strings.Contains(text, "this week") {
		daysAhead := 0
		if strings.Contains(text, "next week") {
			daysAhead = 7
		}
		return applyTimeIfPresent(text, reference.AddDate(0, 0, daysAhead))
	}

	if strings.Contains(text, "next month") {
		return applyTimeIfPresent(text, addMonths(reference, 1))
	}

	if m := inDurationRe.FindStringSubmatch(text); m != nil {
		count, err := strconv.Atoi(m[1])
		if err != nil {
			return nil
		}
		var base time.Time
		switch m[2] {
		case "day":
			base = reference.AddDate(0, 0, count)
		case "week":
			base = reference.AddDate(0, 0, 7*count)
		case "month":
			base = addMonths(reference, count)
		case "hour":
			base = reference.Add(time.Duration(count) * time.Hour)
		default:
			return nil
		}
		return applyTimeIfPresent(text, base)
	}

	for i, name := range weekdays {
		if !strings.Contains(text, name) {
			continue
		}
		daysAhead := (i - mondayIndexed(reference.Weekday()) + 7) % 7
		if daysAhead == 0 && strings.Contains(text, "next") {
			// "next monday" spoken on a Monday means a week out, not today.
			daysAhead = 7
		}
		return applyTimeIfPresent(text, reference.AddDate(0, 0, daysAhead))
	}

	if strings.Contains(text, "end of day") || strings.Contains(text, "eod") {
		return atEndOfDay(reference)
	}

	if strings.Contains(text, "end of week") || strings.Contains(text, "eow") {
		daysToFriday := (4 - mondayIndexed(reference.Weekday()) + 7) % 7
		return atEndOfDay(reference.AddDate(0, 0, daysToFriday))
	}

	if strings.Contains(text, "end of month") || strings.Contains(text, "eom") {
		firstOfNext := time.Date(reference.Year(), reference.Month()+1, 1, 0, 0, 0, 0, time.UTC)
		return atEndOfDay(firstOfNext.AddDate(0, 0, -1))
	}

	return nil
}

// applyTimeIfPresent overlays a time-of-day found in the phrase onto the
// resolved date. Phrases without an explicit time default to end of day,
// since a deadline "tomorrow" means any time tomorrow.
func applyTimeIfPresent(text string, base time.Time) *time.Time {
	if m := hourMinuteRe.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		hour = applyMeridiem(hour, m[3])
		result := time.Date(base.Year(), base.Month(), base.Day(), hour, minute, 0, 0, time.UTC)
		return &result
	}

	if m := hourOnlyRe.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		hour = applyMeridiem(hour, m[2])
		result := time.Date(base.Year(), base.Month(), base.Day(), hour, 0, 0, 0, time.UTC)
		return &result
	}

	return atEndOfDay(base)
}

func applyMeridiem(hour int, meridiem string) int {
	switch strings.ToLower(meridiem) {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	return hour
}

func atEndOfDay(t time.Time) *time.Time {
	result := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
	return &result
}

// addMonths advances by whole months, clamping the day to the target
// month's length so January 31 plus one month lands on February's last day
// instead of rolling into March.
func addMonths(t time.Time, months int) time.Time {
	firstOfTarget := time.Date(t.Year(), t.Month()+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// mondayIndexed maps Go's Sunday-first weekday to a Monday-first index.
func mondayIndexed(d time.Weekday) int {
	return (int(d) + 6) % 7
}
