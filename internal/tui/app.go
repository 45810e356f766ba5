// Package tui is an interactive catalog browser built on Bubble Tea.
package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/multiki/internal/domain"
	"github.com/mmcdole/multiki/internal/search"
	"github.com/mmcdole/multiki/internal/tui/styles"
)

// Layout proportions
const (
	ListColumnPercent = 60
	MinColumnWidth    = 20

	// Header line + footer line
	ChromeHeight = 2
	// Border top+bottom
	BorderHeight = 2
)

// Model is the main Bubble Tea model for the application
type Model struct {
	// Services
	svc      CatalogService
	launcher Launcher
	logger   *slog.Logger

	// Data
	records    []domain.Record
	index      *search.Index
	letters    []string
	fromCache  bool
	strategy   string
	details    domain.DetailRecord // Last fetched, for the record at detailsURL
	detailsURL string

	// View state
	visible []int         // Record indexes shown, in display order
	matches map[int][]int // Record index -> matched rune positions
	cursor  int
	offset  int
	letter  string // Active letter group, "" for all

	// UI Components
	filterInput textinput.Model
	filtering   bool // Filter input has focus
	spinner     spinner.Model
	help        help.Model
	keys        KeyMap

	// UI state
	Width       int
	Height      int
	Loading     bool
	StatusMsg   string
	StatusIsErr bool
}

// NewModel creates the browser over svc, playing through launcher.
func NewModel(svc CatalogService, launcher Launcher, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}

	ti := textinput.New()
	ti.Prompt = styles.FilterPromptStyle.Render("/ ")
	ti.Placeholder = "название"

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.SpinnerStyle))

	return Model{
		svc:         svc,
		launcher:    launcher,
		logger:      logger,
		index:       search.NewIndex(nil),
		filterInput: ti,
		spinner:     sp,
		help:        help.New(),
		keys:        DefaultKeyMap(),
		Loading:     true,
	}
}

// Init starts the initial catalog load
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, LoadCatalogCmd(m.svc, false))
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.clampCursor()
		return m, nil

	case spinner.TickMsg:
		if !m.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case CatalogLoadedMsg:
		m.setRecords(msg.Result.Records)
		m.fromCache = msg.Result.FromCache
		m.strategy = msg.Result.Strategy
		m.Loading = false
		m.StatusIsErr = false
		m.StatusMsg = loadedStatus(msg)
		m.logger.Debug("catalog loaded", "count", len(m.records), "fromCache", m.fromCache)
		return m, nil

	case DetailsLoadedMsg:
		m.details, m.detailsURL = msg.Details, msg.URL
		if msg.Details.IsEmpty() {
			m.StatusMsg, m.StatusIsErr = "Нет дополнительных сведений", false
		}
		return m, nil

	case PlaybackStartedMsg:
		m.StatusMsg, m.StatusIsErr = "▶ "+msg.Record.Title, false
		return m, nil

	case ErrMsg:
		m.Loading = false
		m.StatusIsErr = true
		if errors.Is(msg.Err, domain.ErrUnreachable) {
			m.StatusMsg = "Источник недоступен (r — повторить)"
		} else {
			m.StatusMsg = msg.Error()
		}
		m.logger.Error("tui error", "error", msg.Err, "context", msg.Context)
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.handleFilterKey(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filtering = false
		m.filterInput.Blur()
		m.filterInput.SetValue("")
		m.applyView()
		return m, nil
	case tea.KeyEnter:
		m.filtering = false
		m.filterInput.Blur()
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.applyView()
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-m.listHeight())
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(m.listHeight())
	case key.Matches(msg, m.keys.Home):
		m.moveCursor(-len(m.visible))
	case key.Matches(msg, m.keys.End):
		m.moveCursor(len(m.visible))

	case key.Matches(msg, m.keys.NextLetter):
		m.stepLetter(1)
	case key.Matches(msg, m.keys.PrevLetter):
		m.stepLetter(-1)

	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		return m, m.filterInput.Focus()

	case key.Matches(msg, m.keys.Escape):
		m.letter = ""
		m.filterInput.SetValue("")
		m.applyView()

	case key.Matches(msg, m.keys.Play):
		if r, ok := m.Selected(); ok {
			m.StatusMsg, m.StatusIsErr = "Запуск: "+r.Title, false
			return m, PlayCmd(m.launcher, r)
		}

	case key.Matches(msg, m.keys.Details):
		r, ok := m.Selected()
		if !ok || r.DetailURL == "" {
			return m, nil
		}
		m.StatusMsg, m.StatusIsErr = "Загрузка сведений…", false
		return m, FetchDetailsCmd(m.svc, r.DetailURL)

	case key.Matches(msg, m.keys.Refresh):
		if m.Loading {
			return m, nil
		}
		m.Loading = true
		m.StatusMsg, m.StatusIsErr = "Обновление каталога…", false
		return m, tea.Batch(m.spinner.Tick, LoadCatalogCmd(m.svc, true))

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

// Selected returns the record under the cursor
func (m Model) Selected() (domain.Record, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return domain.Record{}, false
	}
	return m.records[m.visible[m.cursor]], true
}

// Visible returns the records currently listed, in display order
func (m Model) Visible() []domain.Record {
	out := make([]domain.Record, len(m.visible))
	for i, idx := range m.visible {
		out[i] = m.records[idx]
	}
	return out
}

// setRecords replaces the catalog, keeping the selection when it survives.
func (m *Model) setRecords(records []domain.Record) {
	prev, hadPrev := m.Selected()

	m.records = records
	m.index = search.NewIndex(records)
	m.letters = search.Letters(records)
	if m.letter != "" && !m.hasLetter(m.letter) {
		m.letter = ""
	}
	m.applyView()

	if hadPrev {
		for i, idx := range m.visible {
			if m.records[idx].MediaURL == prev.MediaURL {
				m.cursor = i
				break
			}
		}
		m.clampCursor()
	}
}

// applyView recomputes the visible rows from the letter and filter query.
func (m *Model) applyView() {
	inLetter := func(i int) bool {
		return m.letter == "" || search.FirstLetter(m.records[i].Title) == m.letter
	}

	m.matches = nil
	m.visible = make([]int, 0, len(m.records))

	query := strings.TrimSpace(m.filterInput.Value())
	if query == "" {
		for i := range m.records {
			if inLetter(i) {
				m.visible = append(m.visible, i)
			}
		}
	} else {
		m.matches = make(map[int][]int)
		for _, res := range m.index.Filter(query) {
			if inLetter(res.Index) {
				m.visible = append(m.visible, res.Index)
				m.matches[res.Index] = res.MatchedIndexes
			}
		}
	}

	m.cursor = 0
	m.offset = 0
}

func (m *Model) stepLetter(delta int) {
	if len(m.letters) == 0 {
		return
	}
	// Position -1 is "all letters"
	pos := -1
	for i, l := range m.letters {
		if l == m.letter {
			pos = i
		}
	}
	pos += delta
	switch {
	case pos < -1:
		pos = len(m.letters) - 1
	case pos >= len(m.letters):
		pos = -1
	}
	if pos == -1 {
		m.letter = ""
	} else {
		m.letter = m.letters[pos]
	}
	m.applyView()
}

func (m *Model) hasLetter(letter string) bool {
	for _, l := range m.letters {
		if l == letter {
			return true
		}
	}
	return false
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

// clampCursor keeps the cursor in range and scrolls it into view.
func (m *Model) clampCursor() {
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	height := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+height {
		m.offset = m.cursor - height + 1
	}
}

// listHeight is the number of rows the list pane can show.
func (m Model) listHeight() int {
	h := m.Height - ChromeHeight - BorderHeight
	if m.filtering || m.filterInput.Value() != "" {
		h-- // filter bar
	}
	if h < 1 {
		return 1
	}
	return h
}

func loadedStatus(msg CatalogLoadedMsg) string {
	n := len(msg.Result.Records)
	switch {
	case msg.Result.FromCache:
		return fmt.Sprintf("%d мультфильмов (из кэша)", n)
	case n == 0:
		return "Каталог пуст: страница не распознана"
	case msg.Forced:
		return fmt.Sprintf("Каталог обновлён: %d мультфильмов", n)
	default:
		return fmt.Sprintf("%d мультфильмов", n)
	}
}
