package adapter

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/net/html/charset"

	"github.com/lepinkainen/newsfeed/pkg/feedtypes"
	"github.com/lepinkainen/newsfeed/pkg/textnorm"
)

// ErrEmptyDocument is returned for input without a root element.
var ErrEmptyDocument = errors.New("empty document")

const feedAccept = "application/rss+xml, application/atom+xml, application/xml, text/xml, */*"

func init() {
	RegisterAdapter(KindRSS, &Info{
		Name:        KindRSS,
		Description: "RSS 2.0 feeds",
		Factory: func(dialect Dialect, deps Deps) (Adapter, error) {
			return NewXMLAdapter(dialect, deps), nil
		},
	})
}

// XMLAdapter parses RSS documents item by item and stops once it has enough articles.
type XMLAdapter struct {
	dialect   Dialect
	userAgent string
}

// NewXMLAdapter creates an RSS adapter for the dialect
func NewXMLAdapter(dialect Dialect, deps Deps) *XMLAdapter {
	return &XMLAdapter{
		dialect:   dialect,
		userAgent: deps.UserAgent,
	}
}

// rssItem is one <item>. Links is a slice because items may also carry atom:link elements.
type rssItem struct {
	Title       string    `xml:"title"`
	Description string    `xml:"description"`
	Links       []rssLink `xml:"link"`
	PubDate     string    `xml:"pubDate"`
}

type rssLink struct {
	XMLName xml.Name
	Href    string `xml:"href,attr"`
	Text    string `xml:",chardata"`
}

// link prefers a plain RSS <link> over namespaced ones.
func (it rssItem) link() string {
	for _, l := range it.Links {
		if l.XMLName.Space == "" {
			if text := textnorm.TrimString(l.Text); text != "" {
				return text
			}
		}
	}
	for _, l := range it.Links {
		if text := textnorm.TrimString(l.Text); text != "" {
			return text
		}
		if href := textnorm.TrimString(l.Href); href != "" {
			return href
		}
	}
	return ""
}

// Request fetches the feed URL as is with a feed-friendly Accept header.
func (a *XMLAdapter) Request(sourceURL string, _ int) (Request, error) {
	headers := map[string]string{"Accept": feedAccept}
	if a.userAgent != "" {
		headers["User-Agent"] = a.userAgent
	}
	return Request{URL: sourceURL, Headers: headers}, nil
}

// Parse reads the feed title and items in document order. Items without a title,
// link or parseable pubDate are skipped. Once limit articles are collected the rest
// of the document is not read.
func (a *XMLAdapter) Parse(raw []byte, limit int) (*feedtypes.NewsResponse, error) {
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	decoder.CharsetReader = charset.NewReaderLabel
	decoder.Entity = xml.HTMLEntity

	var (
		feedName  string
		titleSeen bool
		rootSeen  bool
		skipped   int
		articles  []feedtypes.Article
	)

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse feed: %w", err)
		}

		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		rootSeen = true

		switch start.Name.Local {
		case "title":
			if titleSeen {
				continue
			}
			var title string
			if err := decoder.DecodeElement(&title, &start); err != nil {
				return nil, fmt.Errorf("failed to parse feed title: %w", err)
			}
			titleSeen = true
			feedName = a.dialect.Cleanup.Apply(title)

		case "item":
			var item rssItem
			if err := decoder.DecodeElement(&item, &start); err != nil {
				return nil, fmt.Errorf("failed to parse feed item: %w", err)
			}

			article := a.toArticle(item, feedName)
			if !validArticle(article) {
				skipped++
				continue
			}

			articles = append(articles, article)
			if limit > 0 && len(articles) >= limit {
				return a.done(feedName, articles, skipped), nil
			}
		}
	}

	if !rootSeen {
		return nil, ErrEmptyDocument
	}
	return a.done(feedName, articles, skipped), nil
}

func (a *XMLAdapter) done(feedName string, articles []feedtypes.Article, skipped int) *feedtypes.NewsResponse {
	if skipped > 0 {
		slog.Debug("Skipped invalid feed items", "feed", feedName, "skipped", skipped)
	}
	return feedtypes.NewOKResponse(articles)
}

func (a *XMLAdapter) toArticle(item rssItem, feedName string) feedtypes.Article {
	published, _ := textnorm.ParseInstant(item.PubDate)

	return feedtypes.Article{
		Source:               feedtypes.Source{Name: feedName},
		Title:                textnorm.TrimString(item.Title),
		Description:          textnorm.TrimString(item.Description),
		URL:                  item.link(),
		PublishedAt:          textnorm.FormatInstant(published, a.dialect.layout()),
		PublishedAtTimestamp: textnorm.Timestamp(published),
	}
}
