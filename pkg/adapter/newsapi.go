package adapter

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/lepinkainen/newsfeed/pkg/feedtypes"
	"github.com/lepinkainen/newsfeed/pkg/textnorm"
)

// NewsAPIKeyHeader carries the newsapi.org API key.
const NewsAPIKeyHeader = "X-Api-Key"

// DefaultNewsAPICredential names the credential holding the newsapi.org key.
const DefaultNewsAPICredential = "NEWSAPI_ORG_KEY"

func init() {
	RegisterAdapter(KindNewsAPI, &Info{
		Name:        KindNewsAPI,
		Description: "newsapi.org JSON REST API",
		Factory: func(dialect Dialect, deps Deps) (Adapter, error) {
			return NewJSONAdapter(dialect, deps), nil
		},
	})
}

// JSONAdapter handles the newsapi.org top-headlines API.
type JSONAdapter struct {
	dialect     Dialect
	credentials CredentialLookup
}

// NewJSONAdapter creates a newsapi.org adapter
func NewJSONAdapter(dialect Dialect, deps Deps) *JSONAdapter {
	if dialect.CredentialName == "" {
		dialect.CredentialName = DefaultNewsAPICredential
	}
	return &JSONAdapter{
		dialect:     dialect,
		credentials: deps.Credentials,
	}
}

// Request adds the API key header and the pageSize query parameter.
func (a *JSONAdapter) Request(sourceURL string, limit int) (Request, error) {
	if a.credentials == nil {
		return Request{}, fmt.Errorf("%w: %s", ErrMissingCredential, a.dialect.CredentialName)
	}
	key, ok := a.credentials.Lookup(a.dialect.CredentialName)
	if !ok {
		return Request{}, fmt.Errorf("%w: %s", ErrMissingCredential, a.dialect.CredentialName)
	}

	u, err := url.Parse(sourceURL)
	if err != nil {
		return Request{}, fmt.Errorf("invalid source url %q: %w", sourceURL, err)
	}
	if limit > 0 {
		q := u.Query()
		q.Set("pageSize", strconv.Itoa(limit))
		u.RawQuery = q.Encode()
	}

	return Request{
		URL: u.String(),
		Headers: map[string]string{
			NewsAPIKeyHeader: key,
			"Accept":         "application/json",
		},
	}, nil
}

// Parse decodes a newsapi.org payload. Error payloads (status other than "ok")
// are returned as they are, without an error.
func (a *JSONAdapter) Parse(raw []byte, limit int) (*feedtypes.NewsResponse, error) {
	var payload feedtypes.NewsResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode newsapi response: %w", err)
	}

	if !payload.OK() {
		return &payload, nil
	}

	articles := make([]feedtypes.Article, 0, len(payload.Articles))
	for _, article := range payload.Articles {
		article.Title = textnorm.TrimString(article.Title)
		article.URL = textnorm.TrimString(article.URL)
		article.Description = textnorm.TrimString(article.Description)

		published, _ := textnorm.ParseInstant(article.PublishedAt)
		article.PublishedAt = textnorm.FormatInstant(published, a.dialect.layout())
		article.PublishedAtTimestamp = textnorm.Timestamp(published)

		if !validArticle(article) {
			continue
		}
		articles = append(articles, article)
		if limit > 0 && len(articles) >= limit {
			break
		}
	}

	payload.Articles = articles
	payload.TotalResults = len(articles)
	return &payload, nil
}
