package preview

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lepinkainen/newsfeed/pkg/aggregator"
	"github.com/lepinkainen/newsfeed/pkg/feedtypes"
)

type fakeSource struct {
	articles    []feedtypes.Article
	refreshedAt time.Time
	stats       []aggregator.SourceResult
}

func (f *fakeSource) Snapshot() aggregator.State {
	return aggregator.State{Articles: f.articles, RefreshedAt: f.refreshedAt}
}

func (f *fakeSource) Stats() []aggregator.SourceResult {
	return f.stats
}

type fakeRefresher struct {
	triggers atomic.Int64
	changes  chan struct{}
}

func newFakeRefresher() *fakeRefresher {
	return &fakeRefresher{changes: make(chan struct{}, 1)}
}

func (f *fakeRefresher) Trigger()                 { f.triggers.Add(1) }
func (f *fakeRefresher) Changes() <-chan struct{} { return f.changes }

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update() returned %T, want Model", next)
	}
	return model, cmd
}

func loadedModel(t *testing.T) (Model, *fakeSource, *fakeRefresher) {
	t.Helper()
	source := &fakeSource{
		articles:    testArticles,
		refreshedAt: time.Date(2024, 11, 16, 16, 0, 0, 0, time.Local),
	}
	refresher := newFakeRefresher()

	m := NewModel(context.Background(), source, refresher, 20)
	msg := m.load()()
	m, _ = update(t, m, msg)
	return m, source, refresher
}

func TestModel_Load(t *testing.T) {
	m, _, _ := loadedModel(t)

	if len(m.articles) != 2 {
		t.Fatalf("len(articles) = %d, want 2", len(m.articles))
	}
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want newest article", m.cursor)
	}

	view := m.View()
	for _, want := range []string{"News (2 articles)", "Helsingissä sataa lunta", "Storm warning issued", "updated 16:00:00"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestModel_LoadKeepsNewestWithinLimit(t *testing.T) {
	source := &fakeSource{articles: testArticles}
	m := NewModel(context.Background(), source, newFakeRefresher(), 1)
	m, _ = update(t, m, m.load()())

	if len(m.articles) != 1 || m.articles[0].Title != testArticles[1].Title {
		t.Errorf("articles = %+v, want only %q", m.articles, testArticles[1].Title)
	}
}

func TestModel_WaitForChangeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := NewModel(ctx, &fakeSource{}, newFakeRefresher(), 0)
	wait := m.waitForChange()

	done := make(chan tea.Msg, 1)
	go func() { done <- wait() }()
	cancel()

	select {
	case msg := <-done:
		if msg != nil {
			t.Errorf("waitForChange() after cancel = %T, want nil", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("waitForChange() still blocked after cancel")
	}
}

func TestModel_ChangeReloads(t *testing.T) {
	m, _, refresher := loadedModel(t)

	refresher.changes <- struct{}{}
	msg := m.waitForChange()()
	if _, ok := msg.(changedMsg); !ok {
		t.Fatalf("waitForChange() = %T, want changedMsg", msg)
	}

	_, cmd := update(t, m, msg)
	if cmd == nil {
		t.Error("changedMsg should reload and keep listening")
	}
}

func TestModel_ResizeTriggersRefresh(t *testing.T) {
	m, _, refresher := loadedModel(t)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	if got := refresher.triggers.Load(); got != 0 {
		t.Errorf("initial size triggered %d refreshes, want 0", got)
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	if got := refresher.triggers.Load(); got != 1 {
		t.Errorf("resize triggered %d refreshes, want 1", got)
	}
	if m.width != 80 || m.height != 24 {
		t.Errorf("size = %dx%d, want 80x24", m.width, m.height)
	}
}

func TestModel_Keys(t *testing.T) {
	m, _, refresher := loadedModel(t)

	m, _ = update(t, m, key("k"))
	if m.cursor != 0 {
		t.Errorf("cursor after k = %d, want 0", m.cursor)
	}
	m, _ = update(t, m, key("up"))
	if m.cursor != 0 {
		t.Errorf("cursor moved above the first article: %d", m.cursor)
	}

	m, _ = update(t, m, key("enter"))
	if m.viewMode != DetailViewMode || m.selectedIndex != 0 {
		t.Fatalf("enter: viewMode = %v, selectedIndex = %d", m.viewMode, m.selectedIndex)
	}
	if !strings.Contains(m.View(), "Title: Helsingissä sataa lunta") {
		t.Errorf("detail view missing title:\n%s", m.View())
	}

	m, _ = update(t, m, key("r"))
	if refresher.triggers.Load() != 1 {
		t.Errorf("r did not trigger a refresh")
	}

	m, _ = update(t, m, key("esc"))
	if m.viewMode != ListViewMode {
		t.Errorf("esc: viewMode = %v, want list", m.viewMode)
	}

	m, _ = update(t, m, key("G"))
	if m.cursor != 1 {
		t.Errorf("cursor after G = %d, want 1", m.cursor)
	}

	_, cmd := update(t, m, key("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}

func TestModel_CursorFollowsNewest(t *testing.T) {
	m, _, _ := loadedModel(t)

	more := append(append([]feedtypes.Article{}, testArticles...), feedtypes.Article{
		Source:               feedtypes.Source{Name: "Uutiset"},
		Title:                "Uusin",
		URL:                  "https://yle.fi/a/74-9",
		PublishedAt:          "16.11.2024 17:00:00",
		PublishedAtTimestamp: 1731769200,
	})

	m, _ = update(t, m, articlesMsg{articles: more})
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want to follow the newest article", m.cursor)
	}

	m, _ = update(t, m, key("g"))
	m, _ = update(t, m, articlesMsg{articles: testArticles})
	if m.cursor != 0 {
		t.Errorf("cursor = %d, should stay put when not on the newest article", m.cursor)
	}

	m, _ = update(t, m, articlesMsg{})
	if m.cursor != 0 || !strings.Contains(m.View(), "No articles yet") {
		t.Errorf("empty list: cursor = %d, view:\n%s", m.cursor, m.View())
	}
}

func TestModel_EnterOnEmptyList(t *testing.T) {
	m := NewModel(context.Background(), &fakeSource{}, nil, 0)

	m, _ = update(t, m, key("enter"))
	if m.viewMode != ListViewMode {
		t.Error("enter on an empty list should stay in list view")
	}
	m, _ = update(t, m, key("r"))
	if !strings.Contains(m.View(), "waiting for the first refresh") {
		t.Errorf("View() missing waiting status:\n%s", m.View())
	}
}

func TestModel_FailedSourcesShown(t *testing.T) {
	m, _, _ := loadedModel(t)

	m, _ = update(t, m, articlesMsg{
		articles:    testArticles,
		refreshedAt: time.Now(),
		stats: []aggregator.SourceResult{
			{Domain: "feeds.yle.fi", Articles: 1},
			{Domain: "newsapi.org", Err: "missing credential: NEWSAPI_ORG_KEY"},
		},
	})

	view := m.View()
	if !strings.Contains(view, "newsapi.org: missing credential") {
		t.Errorf("View() missing failed source:\n%s", view)
	}
	if !strings.Contains(view, "1/2 sources failed") {
		t.Errorf("View() missing failure count:\n%s", view)
	}
}

func TestVisibleRange(t *testing.T) {
	var articles []feedtypes.Article
	for i := 0; i < 50; i++ {
		articles = append(articles, testArticles[0])
	}

	tests := []struct {
		name      string
		height    int
		cursor    int
		wantStart int
		wantEnd   int
	}{
		{name: "unknown height shows all", height: 0, cursor: 10, wantStart: 0, wantEnd: 50},
		{name: "cursor at top", height: 16, cursor: 0, wantStart: 0, wantEnd: 10},
		{name: "cursor centered", height: 16, cursor: 25, wantStart: 20, wantEnd: 30},
		{name: "cursor at bottom", height: 16, cursor: 49, wantStart: 40, wantEnd: 50},
		{name: "tall terminal", height: 100, cursor: 49, wantStart: 0, wantEnd: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Model{articles: articles, height: tt.height, cursor: tt.cursor}
			start, end := m.visibleRange()
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("visibleRange() = %d, %d, want %d, %d", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}
