package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/mmcdole/multiki/internal/domain"
	"github.com/mmcdole/multiki/internal/tui/styles"
)

// View renders the UI
func (m Model) View() string {
	if m.Width == 0 {
		return "Загрузка…"
	}

	listWidth := m.Width * ListColumnPercent / 100
	if listWidth < MinColumnWidth {
		listWidth = MinColumnWidth
	}
	inspectorWidth := m.Width - listWidth
	bodyHeight := m.Height - ChromeHeight

	list := styles.ActiveBorder.
		Width(listWidth - BorderHeight).
		Height(bodyHeight - BorderHeight).
		Render(m.renderList(listWidth - BorderHeight))

	body := list
	if inspectorWidth >= MinColumnWidth {
		inspector := styles.InactiveBorder.
			Width(inspectorWidth - BorderHeight).
			Height(bodyHeight - BorderHeight).
			Render(m.renderInspector(inspectorWidth - BorderHeight - 2))
		body = lipgloss.JoinHorizontal(lipgloss.Top, list, inspector)
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderFooter())
}

func (m Model) renderHeader() string {
	parts := []string{styles.TitleStyle.Render("Мультики")}

	count := fmt.Sprintf("%d", len(m.visible))
	if len(m.visible) != len(m.records) {
		count = fmt.Sprintf("%d/%d", len(m.visible), len(m.records))
	}
	parts = append(parts, styles.BadgeStyle.Render(count))

	if m.letter != "" {
		parts = append(parts, styles.DimBadgeStyle.Render(m.letter))
	}
	if m.fromCache {
		parts = append(parts, styles.DimStyle.Render("кэш"))
	} else if m.strategy != "" {
		parts = append(parts, styles.DimStyle.Render(m.strategy))
	}
	if m.Loading {
		parts = append(parts, m.spinner.View())
	}
	return strings.Join(parts, " ")
}

func (m Model) renderList(width int) string {
	var b strings.Builder

	if m.filtering || m.filterInput.Value() != "" {
		b.WriteString(m.filterInput.View())
		b.WriteString("\n")
	}

	if len(m.visible) == 0 {
		if !m.Loading {
			b.WriteString(styles.DimStyle.Render("Ничего не найдено"))
		}
		return b.String()
	}

	numWidth := len(fmt.Sprintf("%d", len(m.records)))
	end := m.offset + m.listHeight()
	if end > len(m.visible) {
		end = len(m.visible)
	}

	for row := m.offset; row < end; row++ {
		idx := m.visible[row]
		if row > m.offset {
			b.WriteString("\n")
		}
		b.WriteString(m.renderItem(idx, row == m.cursor, numWidth, width))
	}
	return b.String()
}

// renderItem renders "  12 Title          00:09:44".
func (m Model) renderItem(idx int, selected bool, numWidth, width int) string {
	r := m.records[idx]
	base := styles.NormalItemStyle
	if selected {
		base = styles.SelectedItemStyle
	}

	num := fmt.Sprintf("%*d ", numWidth, idx+1)
	duration := ""
	if r.Duration != "" {
		duration = " " + r.Duration
	}

	titleWidth := width - len(num) - len(duration)
	title := styles.Truncate(r.Title, titleWidth)

	row := base.Render(num) +
		styles.Highlight(title, m.matches[idx], selected) +
		base.Render(strings.Repeat(" ", max(titleWidth-lipgloss.Width(title), 0))) +
		base.Render(duration)
	return row
}

func (m Model) renderInspector(width int) string {
	r, ok := m.Selected()
	if !ok {
		return ""
	}

	lines := []string{wordWrap(styles.TitleStyle.Render(r.Title), width), ""}
	field := func(label, value string) {
		if value != "" {
			lines = append(lines, styles.DimStyle.Render(label+": ")+styles.SubtitleStyle.Render(value))
		}
	}

	var d domain.DetailRecord
	if r.DetailURL != "" && r.DetailURL == m.detailsURL {
		d = m.details
	}
	haveDetails := !d.IsEmpty()

	field("Длительность", firstNonEmpty(r.Duration, d.Duration))
	field("Размер", formatSize(firstNonEmpty(r.Size, d.Size)))
	field("Разрешение", firstNonEmpty(r.Resolution, d.Resolution))
	field("Формат", strings.TrimPrefix(r.Extension(), "."))
	if haveDetails {
		field("Видео", d.VideoCodec)
		field("Аудио", d.AudioCodec)
		if d.Plot != "" {
			lines = append(lines, "", wordWrap(d.Plot, width))
		}
	} else if r.DetailURL != "" {
		lines = append(lines, "", styles.DimStyle.Render("i — подробнее"))
	}

	lines = append(lines, "", styles.DimStyle.Render(styles.Truncate(r.MediaURL, width)))
	return strings.Join(lines, "\n")
}

func (m Model) renderFooter() string {
	if m.StatusMsg != "" {
		if m.StatusIsErr {
			return styles.ErrorStyle.Render(m.StatusMsg)
		}
		return styles.SubtitleStyle.Render(m.StatusMsg) + "  " + m.help.ShortHelpView(m.keys.ShortHelp())
	}
	return m.help.View(m.keys)
}

// formatSize renders a byte count like "107 MB"; other text passes through.
func formatSize(size string) string {
	var n uint64
	if _, err := fmt.Sscan(size, &n); err != nil || fmt.Sprint(n) != size {
		return size
	}
	return humanize.Bytes(n)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// wordWrap wraps text at width runes on word boundaries
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	return lipgloss.NewStyle().Width(width).Render(text)
}
