package adapter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/lepinkainen/newsfeed/pkg/feedtypes"
	"github.com/lepinkainen/newsfeed/pkg/textnorm"
)

type staticCredentials map[string]string

func (s staticCredentials) Lookup(name string) (string, bool) {
	v, ok := s[name]
	return v, ok && v != ""
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("Failed to read fixture %s: %v", name, err)
	}
	return data
}

func displayTime(ts int64) string {
	return textnorm.FormatInstant(time.Unix(ts, 0).In(time.Local), textnorm.DefaultLayout)
}

func titles(articles []feedtypes.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.Title
	}
	return out
}

func assertValid(t *testing.T, articles []feedtypes.Article) {
	t.Helper()
	for i, a := range articles {
		if a.Title == "" || a.URL == "" || a.PublishedAt == "" {
			t.Errorf("article %d violates output invariant: %+v", i, a)
		}
	}
}

func TestNameCleanup_Apply(t *testing.T) {
	tests := []struct {
		name    string
		cleanup NameCleanup
		input   string
		want    string
	}{
		{name: "none trims", cleanup: NameCleanup{}, input: "  Uutiset | Yle \n", want: "Uutiset | Yle"},
		{name: "yle takes first segment", cleanup: SplitTake(" | ", 0), input: "Uutiset | Yle", want: "Uutiset"},
		{name: "kauppalehti takes second segment", cleanup: SplitTake(" | ", 1), input: "Uusimmat | Kauppalehti", want: "Kauppalehti"},
		{name: "sanomat takes second segment", cleanup: SplitTake(" - ", 1), input: "Helsingin Sanomat - Tuoreimmat", want: "Tuoreimmat"},
		{name: "index out of range keeps title", cleanup: SplitTake(" - ", 1), input: "Ilta-Sanomat", want: "Ilta-Sanomat"},
		{name: "negative index keeps title", cleanup: SplitTake(" | ", -1), input: "A | B", want: "A | B"},
		{name: "empty delimiter keeps title", cleanup: SplitTake("", 0), input: "A | B", want: "A | B"},
		{name: "empty name", cleanup: SplitTake(" | ", 0), input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cleanup.Apply(tt.input); got != tt.want {
				t.Errorf("Apply(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	info := &Info{Name: "test", Factory: func(Dialect, Deps) (Adapter, error) { return NewXMLAdapter(Dialect{}, Deps{}), nil }}

	if err := registry.Register("test", info); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := registry.Register("test", info); err == nil {
		t.Error("Register() should reject duplicate names")
	}
	if _, err := registry.Get("missing"); err == nil {
		t.Error("Get() should fail for unknown adapters")
	}
	if _, err := registry.Create(Dialect{Kind: "missing"}, Deps{}); err == nil {
		t.Error("Create() should fail for unknown kinds")
	}
	if a, err := registry.Create(Dialect{Kind: "test"}, Deps{}); err != nil || a == nil {
		t.Errorf("Create() = %v, %v", a, err)
	}
}

func TestDefaultRegistryKinds(t *testing.T) {
	want := []string{KindAtom, KindNewsAPI, KindRSS}
	if diff := cmp.Diff(want, DefaultRegistry.List()); diff != "" {
		t.Errorf("DefaultRegistry.List() mismatch (-want +got):\n%s", diff)
	}
}
