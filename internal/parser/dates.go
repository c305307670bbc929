package parser

import (
	"fmt"
	"regexp"
	"time"
)

// --- Regular Expressions (validity date extraction) ---
// The portal and the merchant pages it links to phrase validity in a handful
// of fixed ways; anything else is treated as "no date".
var (
	validityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)válido até (\d{2}/\d{2}/\d{4})`),
		regexp.MustCompile(`(?i)validade: (\d{2}/\d{2}/\d{4})`),
		regexp.MustCompile(`(?i)expira em (\d{2}/\d{2}/\d{4})`),
		regexp.MustCompile(`(?i)válido até (\d{2}/\d{2})`),
	}

	fullDateRegex  = regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})`)
	shortDateRegex = regexp.MustCompile(`(\d{2})/(\d{2})`)
)

// ExtractDate scans free text (typically a full rendered page) for the known
// validity phrasings and returns the first date it finds, normalized. The
// second return is false when no pattern matched; callers treat that as
// "unknown", never as an error.
func ExtractDate(text string) (time.Time, bool) {
	for _, pattern := range validityPatterns {
		if match := pattern.FindStringSubmatch(text); len(match) > 1 {
			if date, ok := ParseDate(match[1]); ok {
				return date, true
			}
		}
	}
	return time.Time{}, false
}

// ParseDate normalizes a DD/MM/YYYY or DD/MM date string to a calendar date.
// A bare DD/MM is assumed to be the current year. Strings without such a date,
// or ones naming an impossible calendar date (e.g. 31/02/2024), return false.
// The patterns are deliberately unanchored: validity text often carries
// surrounding words ("validade: 15/03/2024.") and the first embedded date wins.
func ParseDate(dateStr string) (time.Time, bool) {
	if dateStr == "" {
		return time.Time{}, false
	}

	if match := fullDateRegex.FindStringSubmatch(dateStr); len(match) > 3 {
		return buildDate(match[1], match[2], match[3])
	}
	if match := shortDateRegex.FindStringSubmatch(dateStr); len(match) > 2 {
		return buildDate(match[1], match[2], fmt.Sprintf("%d", time.Now().Year()))
	}

	return time.Time{}, false
}

// buildDate validates day/month/year as a real calendar date via time.Parse,
// which rejects out-of-range days instead of rolling them over.
func buildDate(day, month, year string) (time.Time, bool) {
	t, err := time.Parse("02/01/2006", fmt.Sprintf("%s/%s/%s", day, month, year))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
