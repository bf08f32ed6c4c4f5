package resolver

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lepinkainen/newsfeed/pkg/adapter"
	"github.com/lepinkainen/newsfeed/pkg/config"
	"github.com/lepinkainen/newsfeed/pkg/textnorm"
)

func defaultResolver(t *testing.T) *Resolver {
	t.Helper()
	table, err := config.DefaultDialects()
	if err != nil {
		t.Fatalf("DefaultDialects() error = %v", err)
	}
	r, err := New(table, adapter.DefaultRegistry, adapter.Deps{}, "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

func TestDomain(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{url: "https://feeds.yle.fi/uutiset/v1/recent.rss?publisherIds=YLE_UUTISET", want: "feeds.yle.fi"},
		{url: "https://newsapi.org/v2/top-headlines?sources=bbc-news", want: "newsapi.org"},
		{url: "https://www.hs.fi/rss/tuoreimmat.xml", want: "www.hs.fi"},
		{url: "https://feeds.yle.fi", want: "feeds.yle.fi"},
		{url: "feeds.yle.fi/uutiset", want: ""},
		{url: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := Domain(tt.url); got != tt.want {
				t.Errorf("Domain(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestResolve_DefaultTable(t *testing.T) {
	r := defaultResolver(t)

	tests := []struct {
		name        string
		url         string
		wantKind    string
		wantKnown   bool
		wantCleanup adapter.NameCleanup
	}{
		{
			name:      "newsapi",
			url:       "https://newsapi.org/v2/top-headlines?sources=reuters,bbc-news,cnn",
			wantKind:  adapter.KindNewsAPI,
			wantKnown: true,
		},
		{
			name:        "helsingin sanomat",
			url:         "https://www.hs.fi/rss/tuoreimmat.xml",
			wantKind:    adapter.KindRSS,
			wantKnown:   true,
			wantCleanup: adapter.SplitTake(" - ", 1),
		},
		{
			name:        "ilta-sanomat shares the hs dialect",
			url:         "https://www.is.fi/rss/tuoreimmat.xml",
			wantKind:    adapter.KindRSS,
			wantKnown:   true,
			wantCleanup: adapter.SplitTake(" - ", 1),
		},
		{
			name:        "yle",
			url:         "https://feeds.yle.fi/uutiset/v1/recent.rss?publisherIds=YLE_UUTISET",
			wantKind:    adapter.KindRSS,
			wantKnown:   true,
			wantCleanup: adapter.SplitTake(" | ", 0),
		},
		{
			name:        "kauppalehti",
			url:         "https://feeds.kauppalehti.fi/rss/main",
			wantKind:    adapter.KindRSS,
			wantKnown:   true,
			wantCleanup: adapter.SplitTake(" | ", 1),
		},
		{
			name:        "domain match is case insensitive",
			url:         "https://FEEDS.YLE.FI/uutiset",
			wantKind:    adapter.KindRSS,
			wantKnown:   true,
			wantCleanup: adapter.SplitTake(" | ", 0),
		},
		{
			name:     "unknown domain falls back to plain rss",
			url:      "https://example.com/feed.xml",
			wantKind: adapter.KindRSS,
		},
		{
			name:     "garbage falls back to plain rss",
			url:      "not a url",
			wantKind: adapter.KindRSS,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Resolve(tt.url)
			if res.Adapter == nil {
				t.Fatal("Resolve() returned no adapter")
			}
			if res.Dialect.Kind != tt.wantKind {
				t.Errorf("Resolve() kind = %q, want %q", res.Dialect.Kind, tt.wantKind)
			}
			if res.Known != tt.wantKnown {
				t.Errorf("Resolve() known = %v, want %v", res.Known, tt.wantKnown)
			}
			if res.Dialect.Cleanup != tt.wantCleanup {
				t.Errorf("Resolve() cleanup = %+v, want %+v", res.Dialect.Cleanup, tt.wantCleanup)
			}
			if res.Dialect.Layout != textnorm.DefaultLayout {
				t.Errorf("Resolve() layout = %q, want default", res.Dialect.Layout)
			}
		})
	}
}

func TestResolve_AdaptersBuiltOnce(t *testing.T) {
	r := defaultResolver(t)

	hs := r.Resolve("https://www.hs.fi/rss/tuoreimmat.xml")
	is := r.Resolve("https://www.is.fi/rss/tuoreimmat.xml")
	if hs.Adapter != is.Adapter {
		t.Error("domains sharing a dialect should share one adapter")
	}

	a := r.Resolve("https://example.com/a.xml")
	b := r.Resolve("https://example.org/b.xml")
	if a.Adapter != b.Adapter {
		t.Error("unknown domains should share the fallback adapter")
	}
	if a.Domain != "example.com" || b.Domain != "example.org" {
		t.Errorf("fallback domains = %q, %q", a.Domain, b.Domain)
	}
}

func TestDomains(t *testing.T) {
	r := defaultResolver(t)

	want := []string{"feeds.kauppalehti.fi", "feeds.yle.fi", "newsapi.org", "www.hs.fi", "www.is.fi"}
	if diff := cmp.Diff(want, r.Domains()); diff != "" {
		t.Errorf("Domains() mismatch (-want +got):\n%s", diff)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		table   *config.DialectTable
		wantErr bool
	}{
		{name: "nil table", table: nil},
		{
			name: "strftime date format",
			table: &config.DialectTable{Dialects: []config.DialectConfig{
				{Domains: []string{"blog.example.com"}, Kind: adapter.KindAtom, DateFormat: "%Y-%m-%d %H:%M"},
			}},
		},
		{
			name: "unknown kind",
			table: &config.DialectTable{Dialects: []config.DialectConfig{
				{Domains: []string{"a.fi"}, Kind: "gopher"},
			}},
			wantErr: true,
		},
		{
			name: "duplicate domain",
			table: &config.DialectTable{Dialects: []config.DialectConfig{
				{Domains: []string{"a.fi"}, Kind: adapter.KindRSS},
				{Domains: []string{"a.fi"}, Kind: adapter.KindAtom},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.table, nil, adapter.Deps{}, textnorm.DefaultLayout)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if res := r.Resolve("https://unknown.example/feed"); res.Adapter == nil {
				t.Error("fallback adapter missing")
			}
		})
	}
}

func TestNew_DateFormat(t *testing.T) {
	table := &config.DialectTable{Dialects: []config.DialectConfig{
		{Domains: []string{"blog.example.com"}, Kind: adapter.KindAtom, DateFormat: "%Y-%m-%d %H:%M"},
	}}
	r, err := New(table, nil, adapter.Deps{}, "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if got := r.Resolve("https://blog.example.com/feed").Dialect.Layout; got != "2006-01-02 15:04" {
		t.Errorf("layout = %q, want %q", got, "2006-01-02 15:04")
	}
	if got := r.Resolve("https://other.example.com/feed").Dialect.Layout; got != textnorm.DefaultLayout {
		t.Errorf("fallback layout = %q, want %q", got, textnorm.DefaultLayout)
	}
}
