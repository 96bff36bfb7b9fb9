// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of spanlens

package ui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

const (
	menuIndexFmt = " [yellow::b]<%d>[white::-] %s "
	menuPlainFmt = " [dodgerblue::b]<%s>[white::-] %s "
	maxRows      = 6
)

// Menu presents menu options.
type Menu struct {
	*tview.Table
}

// NewMenu returns a new menu.
func NewMenu() *Menu {
	m := &Menu{
		Table: tview.NewTable(),
	}
	m.SetBackgroundColor(tcell.ColorDefault)
	m.SetBorderPadding(0, 0, 1, 1)

	return m
}

// HydrateMenu populate menu ui from hints.
func (m *Menu) HydrateMenu(hh MenuHints) {
	m.Clear()
	sort.Sort(hh)

	visible := make(MenuHints, 0, len(hh))
	for _, h := range hh {
		if h.Visible && !h.IsBlank() {
			visible = append(visible, h)
		}
	}

	colCount := (len(visible)+maxRows-1)/maxRows + 1
	table := make([]MenuHints, maxRows)
	for row := range table {
		table[row] = make(MenuHints, colCount)
	}
	out := m.buildMenuTable(visible, table, colCount)

	for row := range out {
		for col := range out[row] {
			c := tview.NewTableCell(out[row][col])
			c.SetBackgroundColor(tcell.ColorDefault)
			m.SetCell(row, col, c)
		}
	}
}

func (m *Menu) buildMenuTable(hh MenuHints, table []MenuHints, colCount int) [][]string {
	var row, col int
	maxKeys := make([]int, colCount)

	for _, h := range hh {
		if maxKeys[col] < len(h.Mnemonic) {
			maxKeys[col] = len(h.Mnemonic)
		}
		table[row][col] = h
		row++
		if row >= maxRows {
			row, col = 0, col+1
		}
	}

	out := make([][]string, len(table))
	for r := range out {
		out[r] = make([]string, len(table[r]))
	}
	m.layout(table, maxKeys, out)

	return out
}

func (m *Menu) layout(table []MenuHints, mm []int, out [][]string) {
	for r := range table {
		for c := range table[r] {
			out[r][c] = formatHint(table[r][c], mm[c])
		}
	}
}

func formatHint(h MenuHint, width int) string {
	if h.Mnemonic == "" || h.Description == "" {
		return ""
	}

	if i, err := strconv.Atoi(h.Mnemonic); err == nil {
		return fmt.Sprintf(menuIndexFmt, i, h.Description)
	}
	key := h.Mnemonic + strings.Repeat(" ", max(width-len(h.Mnemonic), 0))

	return fmt.Sprintf(menuPlainFmt, key, h.Description)
}

// StackPushed notifies a component was added.
func (m *Menu) StackPushed(c Component) {
	if h, ok := c.(Hinter); ok {
		m.HydrateMenu(h.Hints())
	}
}

// StackPopped notifies a component was removed.
func (m *Menu) StackPopped(_, top Component) {
	if top != nil {
		if h, ok := top.(Hinter); ok {
			m.HydrateMenu(h.Hints())
		}
	} else {
		m.Clear()
	}
}

// StackTop notifies the top component.
func (m *Menu) StackTop(t Component) {
	if h, ok := t.(Hinter); ok {
		m.HydrateMenu(h.Hints())
	}
}
