// Package preview renders the article list, either as an interactive Bubble Tea
// TUI or as plain text.
package preview

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lepinkainen/newsfeed/pkg/aggregator"
	"github.com/lepinkainen/newsfeed/pkg/feedtypes"
)

const (
	maxTitleLength   = 70
	maxContentLength = 1000
	ruler            = "═══════════════════════════════════════════════════════════════════════\n"
)

// wrapText wraps text to the specified width, breaking at word boundaries when possible
func wrapText(text string, width int) string {
	if width <= 0 {
		width = 70
	}

	var result strings.Builder
	lineLen := 0

	for _, word := range strings.Fields(text) {
		wordLen := utf8.RuneCountInString(word)

		if lineLen > 0 && lineLen+1+wordLen > width {
			result.WriteString("\n")
			lineLen = 0
		}
		if lineLen > 0 {
			result.WriteString(" ")
			lineLen++
		}

		result.WriteString(word)
		lineLen += wordLen
	}

	return result.String()
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// FormatCompactListItem formats a single article in compact list format
// Example: " 1. 16.11.2024 15:58:40  [Uutiset] Helsingissä sataa lunta"
func FormatCompactListItem(index int, article feedtypes.Article) string {
	return fmt.Sprintf("%2d. %s  [%s] %s",
		index+1, article.PublishedAt, article.Source.Name, truncate(article.Title, maxTitleLength))
}

// FormatDetailedItem formats a single article with all metadata
func FormatDetailedItem(article feedtypes.Article, now time.Time) string {
	var b strings.Builder

	b.WriteString(ruler)
	fmt.Fprintf(&b, "Title: %s\n", article.Title)
	fmt.Fprintf(&b, "Source: %s\n", article.Source.Name)
	fmt.Fprintf(&b, "Link: %s\n", article.URL)

	if article.Author != "" {
		fmt.Fprintf(&b, "Author: %s\n", article.Author)
	}

	if article.PublishedAtTimestamp > 0 {
		fmt.Fprintf(&b, "Published: %s (%s)\n",
			article.PublishedAt, formatTimeAgo(time.Unix(article.PublishedAtTimestamp, 0), now))
	}

	if article.URLToImage != "" {
		fmt.Fprintf(&b, "Image: %s\n", article.URLToImage)
	}

	if article.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", wrapText(article.Description, 70))
	}

	if content := article.Content; content != "" {
		content = truncate(content, maxContentLength)
		fmt.Fprintf(&b, "\nContent:\n%s\n", wrapText(content, 70))
	}

	b.WriteString(ruler)

	return b.String()
}

// FormatStatus summarizes the last refresh for the status line.
func FormatStatus(articles int, refreshedAt time.Time, stats []aggregator.SourceResult) string {
	if refreshedAt.IsZero() {
		return "waiting for the first refresh"
	}

	failed := 0
	for _, s := range stats {
		if s.Failed() {
			failed++
		}
	}

	status := fmt.Sprintf("%d articles • updated %s", articles, refreshedAt.Format("15:04:05"))
	if failed > 0 {
		status += fmt.Sprintf(" • %d/%d sources failed", failed, len(stats))
	}
	return status
}

// PrintList writes the articles as a two-column plain text table: source and title,
// then publish time and link.
func PrintList(w io.Writer, articles []feedtypes.Article) error {
	if len(articles) == 0 {
		_, err := fmt.Fprintln(w, "No articles")
		return err
	}

	width := 0
	for _, a := range articles {
		width = max(width, utf8.RuneCountInString(a.Source.Name), utf8.RuneCountInString(a.PublishedAt))
	}

	for _, a := range articles {
		if _, err := fmt.Fprintf(w, "%-*s  %s\n%-*s  %s\n---\n\n",
			width, a.Source.Name, a.Title,
			width, a.PublishedAt, a.URL); err != nil {
			return err
		}
	}
	return nil
}

// PrintStats writes one line per source of the last refresh.
func PrintStats(w io.Writer, stats []aggregator.SourceResult) error {
	for _, s := range stats {
		var err error
		if s.Failed() {
			_, err = fmt.Fprintf(w, "FAIL  %s: %s\n", s.URL, s.Err)
		} else {
			_, err = fmt.Fprintf(w, "ok    %s: %d articles in %s\n", s.URL, s.Articles, s.Duration.Round(time.Millisecond))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// formatTimeAgo formats t relative to now as a human-readable "X ago" string
func formatTimeAgo(t, now time.Time) string {
	duration := now.Sub(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		mins := int(duration.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case duration < 24*time.Hour:
		hours := int(duration.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case duration < 7*24*time.Hour:
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("2006-01-02")
	}
}
