// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of spanlens

package render

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spanlens/spanlens/internal/model1"
)

var (
	alertStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	placeholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	headerStyle      = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle        = lipgloss.NewStyle().Padding(0, 1)
)

// WriteGrid prints a grid as a bordered text table.
func WriteGrid(w io.Writer, g *model1.Grid, wide bool) error {
	if g == nil {
		return nil
	}
	cols := g.Header.Visible(wide)
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, g.Header[c].Name)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(names...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, r := range g.Rows {
		t.Row(textRow(r, cols, g.Empty)...)
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func textRow(r model1.Row, cols []int, empty bool) []string {
	out := make([]string, len(cols))
	if empty {
		if len(out) > 0 && len(r.Cells) > 0 {
			out[0] = placeholderStyle.Render(r.Cells[0].Text)
		}
		return out
	}
	for i, c := range cols {
		if c >= len(r.Cells) {
			continue
		}
		out[i] = styled(r.Cells[c])
	}

	return out
}

func styled(c model1.Cell) string {
	switch c.Style {
	case model1.StyleAlert:
		return alertStyle.Render(c.Text)
	case model1.StylePlaceholder:
		return placeholderStyle.Render(c.Text)
	case model1.StyleDim:
		return dimStyle.Render(c.Text)
	default:
		return c.Text
	}
}
