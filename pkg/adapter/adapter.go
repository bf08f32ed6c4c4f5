// Package adapter turns raw source documents into normalized articles.
//
// Every adapter returns the same feedtypes.NewsResponse shape, so nothing downstream
// needs to know which dialect a source speaks.
package adapter

import (
	"errors"
	"strings"

	"github.com/lepinkainen/newsfeed/pkg/feedtypes"
	"github.com/lepinkainen/newsfeed/pkg/textnorm"
)

// Adapter kinds known to the default registry
const (
	KindNewsAPI = "newsapi"
	KindRSS     = "rss"
	KindAtom    = "atom"
)

// ErrMissingCredential is returned when a source needs an API key that is not configured.
var ErrMissingCredential = errors.New("missing credential")

// Adapter parses one source dialect.
type Adapter interface {
	// Request builds the fetch request for sourceURL, asking for at most limit articles when the upstream supports it.
	Request(sourceURL string, limit int) (Request, error)
	// Parse converts a raw document into at most limit articles. A limit <= 0 means no limit.
	Parse(raw []byte, limit int) (*feedtypes.NewsResponse, error)
}

// Request describes what the transport should fetch.
type Request struct {
	URL     string
	Headers map[string]string
}

// CredentialLookup resolves secrets by name.
type CredentialLookup interface {
	Lookup(name string) (string, bool)
}

// Deps are the collaborators shared by all adapters.
type Deps struct {
	Credentials CredentialLookup
	UserAgent   string
}

// CleanupKind selects how a feed title is turned into a source name.
type CleanupKind int

// Name cleanup strategies
const (
	CleanupNone CleanupKind = iota
	CleanupSplit
)

// NameCleanup is the per-dialect rule for deriving a source name from the feed title.
// Feeds like "Uutiset | Yle" or "HS - Tuoreimmat" carry the site name in every channel title.
type NameCleanup struct {
	Kind      CleanupKind
	Delimiter string
	Index     int
}

// SplitTake returns a cleanup that splits on delimiter and keeps segment index.
func SplitTake(delimiter string, index int) NameCleanup {
	return NameCleanup{Kind: CleanupSplit, Delimiter: delimiter, Index: index}
}

// Apply cleans a raw feed title. An index outside the split result keeps the whole title.
func (c NameCleanup) Apply(name string) string {
	name = textnorm.TrimString(name)
	if c.Kind != CleanupSplit || c.Delimiter == "" {
		return name
	}

	parts := strings.Split(name, c.Delimiter)
	if c.Index < 0 || c.Index >= len(parts) {
		return name
	}
	return strings.TrimSpace(parts[c.Index])
}

// Dialect holds the parameters of one source family.
type Dialect struct {
	Kind    string
	Cleanup NameCleanup
	// Layout is the Go time layout used for PublishedAt.
	Layout string
	// CredentialName is the credential required by the adapter, if any.
	CredentialName string
}

func (d Dialect) layout() string {
	if d.Layout == "" {
		return textnorm.DefaultLayout
	}
	return d.Layout
}

// validArticle reports whether an article satisfies the output invariant of the feed adapters.
func validArticle(a feedtypes.Article) bool {
	return a.Title != "" && a.URL != "" && a.PublishedAt != ""
}
