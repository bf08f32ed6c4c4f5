package preview

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/newsfeed/pkg/aggregator"
	"github.com/lepinkainen/newsfeed/pkg/feedtypes"
)

// ViewMode represents the current view mode
type ViewMode int

// View modes for the TUI
const (
	ListViewMode ViewMode = iota
	DetailViewMode
)

// ArticleSource is the read side of the aggregator. The view only reads
// published snapshots; refreshes go through the Refresher.
type ArticleSource interface {
	Snapshot() aggregator.State
	Stats() []aggregator.SourceResult
}

// Refresher requests refreshes and reports when the article list changed.
type Refresher interface {
	Trigger()
	Changes() <-chan struct{}
}

type articlesMsg struct {
	articles    []feedtypes.Article
	refreshedAt time.Time
	stats       []aggregator.SourceResult
}

type changedMsg struct{}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12")).Bold(true)
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Model represents the Bubble Tea model for the headline TUI
type Model struct {
	ctx       context.Context
	source    ArticleSource
	refresher Refresher
	limit     int

	articles      []feedtypes.Article
	refreshedAt   time.Time
	stats         []aggregator.SourceResult
	cursor        int
	viewMode      ViewMode
	width         int
	height        int
	selectedIndex int // Index of the article currently being viewed in detail
	now           func() time.Time
}

// NewModel creates a new TUI model showing at most limit articles (all when limit <= 0).
func NewModel(ctx context.Context, source ArticleSource, refresher Refresher, limit int) Model {
	return Model{
		ctx:           ctx,
		source:        source,
		refresher:     refresher,
		limit:         limit,
		viewMode:      ListViewMode,
		selectedIndex: -1,
		now:           time.Now,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.waitForChange())
}

func (m Model) load() tea.Cmd {
	return func() tea.Msg {
		snap := m.source.Snapshot()
		articles := snap.Articles
		if m.limit > 0 && len(articles) > m.limit {
			articles = articles[len(articles)-m.limit:]
		}
		return articlesMsg{
			articles:    articles,
			refreshedAt: snap.RefreshedAt,
			stats:       m.source.Stats(),
		}
	}
}

func (m Model) waitForChange() tea.Cmd {
	if m.refresher == nil {
		return nil
	}
	changes := m.refresher.Changes()
	done := m.ctx.Done()
	return func() tea.Msg {
		select {
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			return changedMsg{}
		case <-done:
			return nil
		}
	}
}

func (m Model) trigger() {
	if m.refresher != nil {
		m.refresher.Trigger()
	}
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// The first size message arrives at startup, when a refresh is already running.
		resized := m.width != 0 || m.height != 0
		m.width = msg.Width
		m.height = msg.Height
		if resized {
			m.trigger()
		}
		return m, nil

	case changedMsg:
		return m, tea.Batch(m.load(), m.waitForChange())

	case articlesMsg:
		return m.setArticles(msg), nil

	case tea.KeyMsg:
		switch m.viewMode {
		case ListViewMode:
			return m.updateListView(msg)
		case DetailViewMode:
			return m.updateDetailView(msg)
		}
	}

	return m, nil
}

// setArticles replaces the list. A cursor on the newest article follows new arrivals.
func (m Model) setArticles(msg articlesMsg) Model {
	atNewest := len(m.articles) == 0 || m.cursor >= len(m.articles)-1

	m.articles = msg.articles
	m.refreshedAt = msg.refreshedAt
	m.stats = msg.stats

	switch {
	case len(m.articles) == 0:
		m.cursor = 0
	case atNewest || m.cursor >= len(m.articles):
		m.cursor = len(m.articles) - 1
	}

	if m.selectedIndex >= len(m.articles) {
		m.selectedIndex = -1
		m.viewMode = ListViewMode
	}
	return m
}

// updateListView handles key presses in list view mode
func (m Model) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.articles)-1 {
			m.cursor++
		}

	case "home", "g":
		m.cursor = 0

	case "end", "G":
		m.cursor = max(len(m.articles)-1, 0)

	case "r":
		m.trigger()

	case "enter":
		if len(m.articles) > 0 {
			m.selectedIndex = m.cursor
			m.viewMode = DetailViewMode
		}
	}

	return m, nil
}

// updateDetailView handles key presses in detail view mode
func (m Model) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "esc", "backspace":
		m.viewMode = ListViewMode

	case "r":
		m.trigger()
	}

	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	switch m.viewMode {
	case ListViewMode:
		return m.renderListView()
	case DetailViewMode:
		return m.renderDetailView()
	}
	return ""
}

// visibleRange keeps the cursor on screen, centered when possible.
func (m Model) visibleRange() (int, int) {
	start, end := 0, len(m.articles)
	if m.height <= 0 {
		return start, end
	}

	maxVisible := max(m.height-6, 1) // header, status, footer and padding
	if maxVisible >= len(m.articles) {
		return start, end
	}

	start = max(m.cursor-maxVisible/2, 0)
	end = start + maxVisible
	if end > len(m.articles) {
		end = len(m.articles)
		start = max(end-maxVisible, 0)
	}
	return start, end
}

// renderListView renders the list view
func (m Model) renderListView() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("News (%d articles)", len(m.articles))))
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(FormatStatus(len(m.articles), m.refreshedAt, m.stats)))
	b.WriteString("\n\n")

	if len(m.articles) == 0 {
		b.WriteString("  No articles yet\n")
	}

	start, end := m.visibleRange()
	for i := start; i < end; i++ {
		line := FormatCompactListItem(i, m.articles[i])
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("→ " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	for _, s := range m.stats {
		if s.Failed() {
			b.WriteString(errorStyle.Render(fmt.Sprintf("  %s: %s", s.Domain, s.Err)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render("↑/↓ or j/k: navigate • enter: view details • r: refresh • q: quit"))

	return b.String()
}

// renderDetailView renders the detail view
func (m Model) renderDetailView() string {
	if m.selectedIndex < 0 || m.selectedIndex >= len(m.articles) {
		return "No article selected"
	}

	var b strings.Builder
	b.WriteString(FormatDetailedItem(m.articles[m.selectedIndex], m.now()))
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("esc: back to list • r: refresh • q: quit"))

	return b.String()
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx is done.
func Run(ctx context.Context, source ArticleSource, refresher Refresher, limit int, opts ...tea.ProgramOption) error {
	// Cancelled on quit so the change waiter does not outlive the program.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(NewModel(ctx, source, refresher, limit), opts...)
	_, err := p.Run()
	return err
}
