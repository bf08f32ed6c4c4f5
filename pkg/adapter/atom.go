package adapter

import (
	"bytes"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/lepinkainen/newsfeed/pkg/feedtypes"
	"github.com/lepinkainen/newsfeed/pkg/textnorm"
	"github.com/lepinkainen/newsfeed/pkg/urlutils"
)

func init() {
	RegisterAdapter(KindAtom, &Info{
		Name:        KindAtom,
		Description: "Atom and RSS 1.0 feeds",
		Factory: func(dialect Dialect, deps Deps) (Adapter, error) {
			return NewAtomAdapter(dialect, deps), nil
		},
	})
}

// AtomAdapter handles feed formats the RSS adapter does not, using gofeed's universal parser.
// Unlike XMLAdapter it reads the whole document before applying the limit.
type AtomAdapter struct {
	dialect   Dialect
	userAgent string
	parser    *gofeed.Parser
}

// NewAtomAdapter creates an Atom adapter for the dialect
func NewAtomAdapter(dialect Dialect, deps Deps) *AtomAdapter {
	return &AtomAdapter{
		dialect:   dialect,
		userAgent: deps.UserAgent,
		parser:    gofeed.NewParser(),
	}
}

// Request fetches the feed URL as is.
func (a *AtomAdapter) Request(sourceURL string, _ int) (Request, error) {
	headers := map[string]string{"Accept": feedAccept}
	if a.userAgent != "" {
		headers["User-Agent"] = a.userAgent
	}
	return Request{URL: sourceURL, Headers: headers}, nil
}

// Parse applies the same validity rules and name cleanup as the RSS adapter.
func (a *AtomAdapter) Parse(raw []byte, limit int) (*feedtypes.NewsResponse, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyDocument
	}

	feed, err := a.parser.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	feedName := a.dialect.Cleanup.Apply(feed.Title)

	var articles []feedtypes.Article
	for _, item := range feed.Items {
		published := itemTime(item)

		article := feedtypes.Article{
			Source:               feedtypes.Source{Name: feedName},
			Title:                textnorm.TrimString(item.Title),
			Description:          textnorm.TrimString(item.Description),
			URL:                  itemLink(feed.Link, item.Link),
			PublishedAt:          textnorm.FormatInstant(published, a.dialect.layout()),
			PublishedAtTimestamp: textnorm.Timestamp(published),
		}
		if item.Author != nil {
			article.Author = textnorm.TrimString(item.Author.Name)
		}
		if item.Image != nil {
			article.URLToImage = item.Image.URL
		}

		if !validArticle(article) {
			continue
		}
		articles = append(articles, article)
		if limit > 0 && len(articles) >= limit {
			break
		}
	}

	return feedtypes.NewOKResponse(articles), nil
}

// itemLink resolves links relative to the feed's own link.
func itemLink(feedLink, link string) string {
	link = textnorm.TrimString(link)
	if link == "" {
		return ""
	}
	resolved, err := urlutils.ResolveURL(feedLink, link)
	if err != nil {
		return link
	}
	return resolved
}

func itemTime(item *gofeed.Item) time.Time {
	switch {
	case item.PublishedParsed != nil:
		return item.PublishedParsed.In(time.Local)
	case item.UpdatedParsed != nil:
		return item.UpdatedParsed.In(time.Local)
	}

	if t, ok := textnorm.ParseInstant(item.Published); ok {
		return t
	}
	t, _ := textnorm.ParseInstant(item.Updated)
	return t
}
