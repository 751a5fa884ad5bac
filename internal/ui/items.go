package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/jfschaefer/GLIFcore/internal/items"
)

// FormatItems renders a batch for the terminal: one value per item in
// representation r, numbered when there are several. The second result holds
// the diagnostics to show after the values.
func FormatItems(b *items.Items, r items.Repr) (string, []string) {
	if b == nil {
		return "", nil
	}
	warnings := append([]string(nil), b.Errors...)
	var sb strings.Builder
	numbered := b.Len() > 1
	width := len(strconv.Itoa(b.Len()))
	for i, it := range b.List {
		v, exact, warning := it.TryGet(r)
		if !exact {
			warnings = append(warnings, warning)
		}
		warnings = append(warnings, it.Errors...)
		if numbered {
			num := strconv.Itoa(i + 1)
			sb.WriteString(Muted.Render(strings.Repeat(" ", width-len(num)) + num + "."))
			sb.WriteString(" ")
			v = strings.ReplaceAll(v, "\n", "\n"+strings.Repeat(" ", width+2))
		}
		sb.WriteString(v)
		sb.WriteString("\n")
	}
	return sb.String(), warnings
}

// Table renders rows under headers with hidden borders, the first column
// muted. width <= 0 leaves the table at its natural width.
func Table(headers []string, rows [][]string, width int) string {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().PaddingRight(1)
			switch {
			case row == table.HeaderRow:
				return base.Inherit(AccentBold)
			case col == 0:
				return base.Inherit(Muted)
			}
			return base
		})
	if width > 0 {
		t = t.Width(width)
	}
	return t.Render()
}
