// Package static provides non-interactive terminal output components.
package static

import (
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
)

// Column is one column of a table.
type Column struct {
	Title string
	// Right aligns the column's cells to the right.
	Right bool
	// Style, when set, styles a cell by its value.
	Style func(cell string) lipgloss.Style
}

// Columns returns left-aligned, unstyled columns with the given titles.
func Columns(titles ...string) []Column {
	cols := make([]Column, len(titles))
	for i, title := range titles {
		cols[i] = Column{Title: title}
	}
	return cols
}

// RenderTable renders rows under cols without borders. It returns "" when
// there are no rows.
func RenderTable(cols []Column, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Title
	}

	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle()
			if col < len(cols) {
				c := cols[col]
				switch {
				case row == table.HeaderRow:
					s = s.Bold(true)
				case c.Style != nil && row < len(rows) && col < len(rows[row]):
					s = c.Style(rows[row][col])
				}
				if c.Right {
					s = s.Align(lipgloss.Right)
				}
			}
			return s.PaddingRight(2)
		})

	var out strings.Builder
	out.WriteString(t.String())
	out.WriteString("\n")
	return out.String()
}
