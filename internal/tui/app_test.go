package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/multiki/internal/catalog"
	"github.com/mmcdole/multiki/internal/domain"
	"github.com/mmcdole/multiki/internal/log"
)

type fakeService struct {
	result  catalog.Result
	err     error
	forced  []bool
	details map[string]domain.DetailRecord

	detailCalls int
}

func (f *fakeService) GetCatalog(_ context.Context, force bool) (catalog.Result, error) {
	f.forced = append(f.forced, force)
	return f.result, f.err
}

func (f *fakeService) FetchDetails(_ context.Context, u string) domain.DetailRecord {
	f.detailCalls++
	return f.details[u]
}

type fakeLauncher struct {
	urls []string
	err  error
}

func (f *fakeLauncher) Launch(url string) error {
	f.urls = append(f.urls, url)
	return f.err
}

func testRecords() []domain.Record {
	return []domain.Record{
		{Title: "Маша и медведь", MediaURL: "http://s/masha.avi", DetailURL: "http://s/info/masha.html", Duration: "00:15:30"},
		{Title: "Ну, погоди!", MediaURL: "http://s/nu.pogodi.avi"},
		{Title: "13 рейс", MediaURL: "http://s/13.reis.avi", Duration: "00:09:44", Size: "106639360"},
		{Title: "Малыш и Карлсон", MediaURL: "http://s/malysh.avi"},
	}
}

func loadedModel(t *testing.T, svc *fakeService, launcher *fakeLauncher) Model {
	t.Helper()
	m := NewModel(svc, launcher, log.NullLogger())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	next, _ = next.Update(CatalogLoadedMsg{Result: catalog.Result{Records: testRecords(), Strategy: "table-row"}})
	return next.(Model)
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func titlesOf(records []domain.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Title
	}
	return out
}

func TestInit_LoadsFromCache(t *testing.T) {
	svc := &fakeService{result: catalog.Result{Records: testRecords(), FromCache: true}}
	m := NewModel(svc, &fakeLauncher{}, log.NullLogger())

	cmd := m.Init()
	require.NotNil(t, cmd)

	msg := LoadCatalogCmd(svc, false)()
	loaded, ok := msg.(CatalogLoadedMsg)
	require.True(t, ok)
	assert.Equal(t, []bool{false}, svc.forced)

	next, _ := m.Update(loaded)
	model := next.(Model)
	assert.False(t, model.Loading)
	assert.Len(t, model.Visible(), 4)
	assert.Contains(t, model.StatusMsg, "из кэша")
}

func TestUpdate_UnreachableStatus(t *testing.T) {
	svc := &fakeService{err: &domain.UnreachableError{URL: "http://s/", Err: errors.New("refused")}}
	m := NewModel(svc, &fakeLauncher{}, log.NullLogger())

	next, _ := m.Update(LoadCatalogCmd(svc, false)())
	model := next.(Model)
	assert.True(t, model.StatusIsErr)
	assert.Contains(t, model.StatusMsg, "недоступен")
	assert.False(t, model.Loading)
}

func TestNavigation(t *testing.T) {
	m := loadedModel(t, &fakeService{}, &fakeLauncher{})

	r, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "Маша и медведь", r.Title)

	m, _ = press(t, m, "j", "down")
	r, _ = m.Selected()
	assert.Equal(t, "13 рейс", r.Title)

	m, _ = press(t, m, "G")
	r, _ = m.Selected()
	assert.Equal(t, "Малыш и Карлсон", r.Title)

	m, _ = press(t, m, "j")
	r, _ = m.Selected()
	assert.Equal(t, "Малыш и Карлсон", r.Title, "cursor stays on the last row")

	m, _ = press(t, m, "g", "k")
	r, _ = m.Selected()
	assert.Equal(t, "Маша и медведь", r.Title)
}

func TestPlay(t *testing.T) {
	launcher := &fakeLauncher{}
	m := loadedModel(t, &fakeService{}, launcher)

	m, cmd := press(t, m, "j", "enter")
	require.NotNil(t, cmd)

	msg := cmd()
	assert.Equal(t, []string{"http://s/nu.pogodi.avi"}, launcher.urls)

	next, _ := m.Update(msg)
	assert.Contains(t, next.(Model).StatusMsg, "Ну, погоди!")
}

func TestPlay_LauncherError(t *testing.T) {
	launcher := &fakeLauncher{err: errors.New("no player")}
	m := loadedModel(t, &fakeService{}, launcher)

	_, cmd := press(t, m, "enter")
	require.NotNil(t, cmd)
	msg, ok := cmd().(ErrMsg)
	require.True(t, ok)
	assert.Equal(t, "launching player: no player", msg.Error())
}

func TestFilter(t *testing.T) {
	m := loadedModel(t, &fakeService{}, &fakeLauncher{})

	m, _ = press(t, m, "/", "м", "а")
	assert.True(t, m.filtering)
	assert.ElementsMatch(t, []string{"Маша и медведь", "Малыш и Карлсон"}, titlesOf(m.Visible()))

	m, _ = press(t, m, "enter")
	assert.False(t, m.filtering)
	assert.Len(t, m.Visible(), 2, "filter stays applied after confirming")

	m, _ = press(t, m, "esc")
	assert.Len(t, m.Visible(), 4)
}

func TestFilter_EscWhileTypingClears(t *testing.T) {
	m := loadedModel(t, &fakeService{}, &fakeLauncher{})

	m, _ = press(t, m, "/", "р", "е", "й", "с")
	assert.Equal(t, []string{"13 рейс"}, titlesOf(m.Visible()))

	m, _ = press(t, m, "esc")
	assert.False(t, m.filtering)
	assert.Len(t, m.Visible(), 4)
}

func TestLetters(t *testing.T) {
	m := loadedModel(t, &fakeService{}, &fakeLauncher{})
	assert.Equal(t, []string{"М", "Н", "#"}, m.letters)

	m, _ = press(t, m, "]")
	assert.Equal(t, "М", m.letter)
	assert.Equal(t, []string{"Маша и медведь", "Малыш и Карлсон"}, titlesOf(m.Visible()))

	m, _ = press(t, m, "]", "]")
	assert.Equal(t, "#", m.letter)
	assert.Equal(t, []string{"13 рейс"}, titlesOf(m.Visible()))

	m, _ = press(t, m, "]")
	assert.Equal(t, "", m.letter, "wraps around to all letters")
	assert.Len(t, m.Visible(), 4)

	m, _ = press(t, m, "[")
	assert.Equal(t, "#", m.letter)
}

func TestDetails(t *testing.T) {
	svc := &fakeService{details: map[string]domain.DetailRecord{
		"http://s/info/masha.html": {VideoCodec: "XviD", Plot: "Девочка и медведь"},
	}}
	m := loadedModel(t, svc, &fakeLauncher{})

	m, cmd := press(t, m, "i")
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	m = next.(Model)
	assert.Equal(t, "XviD", m.details.VideoCodec)
	assert.Contains(t, m.View(), "XviD")

	_, cmd = press(t, m, "i")
	assert.NotNil(t, cmd, "every press fetches the detail page again")

	m, _ = press(t, m, "j")
	assert.NotContains(t, m.View(), "XviD", "details belong to the record they were fetched for")
	_, cmd = press(t, m, "i")
	assert.Nil(t, cmd, "records without a detail page have nothing to fetch")
}

func TestDetails_RetryAfterEmptyResult(t *testing.T) {
	svc := &fakeService{}
	m := loadedModel(t, svc, &fakeLauncher{})

	m, cmd := press(t, m, "i")
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	m = next.(Model)
	assert.True(t, m.details.IsEmpty())
	assert.Contains(t, m.View(), "i — подробнее")

	svc.details = map[string]domain.DetailRecord{"http://s/info/masha.html": {VideoCodec: "XviD"}}
	m, cmd = press(t, m, "i")
	require.NotNil(t, cmd)
	next, _ = m.Update(cmd())
	m = next.(Model)
	assert.Equal(t, "XviD", m.details.VideoCodec)
	assert.Equal(t, 2, svc.detailCalls)
}

func TestRefresh_KeepsSelection(t *testing.T) {
	svc := &fakeService{}
	m := loadedModel(t, svc, &fakeLauncher{})
	m, _ = press(t, m, "j", "j")

	m, cmd := press(t, m, "r")
	require.NotNil(t, cmd)
	assert.True(t, m.Loading)

	_, again := press(t, m, "r")
	assert.Nil(t, again, "refresh ignored while loading")

	refreshed := append([]domain.Record{{Title: "Ёжик в тумане", MediaURL: "http://s/ezhik.avi"}}, testRecords()...)
	next, _ := m.Update(CatalogLoadedMsg{Result: catalog.Result{Records: refreshed}, Forced: true})
	m = next.(Model)

	r, _ := m.Selected()
	assert.Equal(t, "13 рейс", r.Title)
	assert.Contains(t, m.StatusMsg, "обновлён")
}

func TestView(t *testing.T) {
	m := loadedModel(t, &fakeService{}, &fakeLauncher{})
	view := m.View()

	assert.Contains(t, view, "Мультики")
	assert.Contains(t, view, "Маша и медведь")
	assert.Contains(t, view, "00:09:44")
	assert.Contains(t, view, "table-row")
	assert.True(t, strings.Contains(view, "i — подробнее"))
}

func TestView_EmptyCatalog(t *testing.T) {
	m := NewModel(&fakeService{}, &fakeLauncher{}, log.NullLogger())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	next, _ = next.Update(CatalogLoadedMsg{Result: catalog.Result{Records: []domain.Record{}}})
	model := next.(Model)

	assert.Contains(t, model.View(), "Ничего не найдено")
	assert.Contains(t, model.StatusMsg, "не распознана")
	_, ok := model.Selected()
	assert.False(t, ok)
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "107 MB", formatSize("106639360"))
	assert.Equal(t, "1,5 ГБ", formatSize("1,5 ГБ"))
	assert.Equal(t, "", formatSize(""))
}
