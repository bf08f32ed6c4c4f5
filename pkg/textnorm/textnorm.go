// Package textnorm normalizes free text and loosely formatted dates coming from news feeds.
package textnorm

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/ncruces/go-strftime"
)

// DefaultLayout renders instants as dd.MM.yyyy HH:mm:ss.
const DefaultLayout = "02.01.2006 15:04:05"

// knownLayouts are tried before the lenient parser. They cover what RSS and JSON APIs emit in practice.
var knownLayouts = []string{
	time.RFC1123Z,              // Sat, 16 Nov 2024 15:58:40 +0200
	time.RFC1123,               // Sat, 16 Nov 2024 12:17:00 GMT
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// minLenientYear is the earliest year accepted from the lenient parser. It fills
// in year zero for inputs like "Feb 12" or "1:" that carry no year at all.
const minLenientYear = 1970

var controlWhitespace = strings.NewReplacer(
	"\n", " ",
	"\t", " ",
	"\r", " ",
	"\v", " ",
)

// Trim returns the trimmed text, or "" for nil. Every newline, tab, carriage
// return and vertical tab inside the text becomes a single space.
func Trim(text *string) string {
	if text == nil {
		return ""
	}
	return TrimString(*text)
}

// TrimString is Trim for a plain string.
func TrimString(text string) string {
	return controlWhitespace.Replace(strings.TrimSpace(text))
}

// ParseInstant parses a human readable date. Naive input is taken as UTC and the
// result is returned in the local timezone. The second return value is false when
// the text is not a date.
func ParseInstant(text string) (time.Time, bool) {
	text = TrimString(text)
	if text == "" {
		return time.Time{}, false
	}

	for _, layout := range knownLayouts {
		if t, err := time.ParseInLocation(layout, text, time.UTC); err == nil {
			return t.In(time.Local), true
		}
	}

	t, err := dateparse.ParseIn(text, time.UTC)
	if err != nil || t.Year() < minLenientYear {
		return time.Time{}, false
	}
	return t.In(time.Local), true
}

// FormatInstant renders t with a Go layout. The zero time renders as "".
func FormatInstant(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	if layout == "" {
		layout = DefaultLayout
	}
	return t.Format(layout)
}

// Timestamp returns seconds since the epoch, or 0 for the zero time.
func Timestamp(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

// LayoutFromStrftime converts a strftime pattern like "%d.%m.%Y %H:%M:%S" to a Go layout.
// Patterns without a % directive are assumed to already be Go layouts.
func LayoutFromStrftime(pattern string) (string, error) {
	if pattern == "" {
		return DefaultLayout, nil
	}
	if !strings.Contains(pattern, "%") {
		return pattern, nil
	}

	layout, err := strftime.Layout(pattern)
	if err != nil {
		return "", fmt.Errorf("unsupported date format %q: %w", pattern, err)
	}
	return layout, nil
}
