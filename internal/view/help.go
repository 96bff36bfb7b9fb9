// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of spanlens

package view

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
	"github.com/spanlens/spanlens/internal/ui"
)

// HelpBind represents a single keybinding.
type HelpBind struct {
	Key  string
	Desc string
}

// Help lists key bindings and command aliases.
type Help struct {
	*tview.Table

	app *App
}

// NewHelp creates a new help view.
func NewHelp(app *App) *Help {
	return &Help{
		Table: tview.NewTable(),
		app:   app,
	}
}

// Init initializes the view.
func (h *Help) Init(context.Context) error {
	h.SetBorder(true)
	h.SetTitle(" Help ")
	h.SetTitleAlign(tview.AlignCenter)
	h.SetBorderColor(tcell.ColorAqua)
	h.SetBackgroundColor(tcell.ColorDefault)
	h.SetSelectable(false, false)
	h.build()

	return nil
}

// Start starts the view.
func (*Help) Start() {}

// Stop stops the view.
func (*Help) Stop() {}

// Name returns the view name.
func (*Help) Name() string {
	return "help"
}

// Hints returns the menu hints.
func (*Help) Hints() ui.MenuHints {
	return ui.MenuHints{
		{Mnemonic: "esc", Description: "Back", Visible: true},
	}
}

func (h *Help) sections() ([]string, [][]HelpBind) {
	var aliases []HelpBind
	if h.app != nil {
		all := h.app.Aliases().All()
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			aliases = append(aliases, HelpBind{":" + k, all[k]})
		}
	}

	general := []HelpBind{
		{"<:>", "Command"},
		{"</>", "Filter"},
		{"<?>", "Help"},
		{"<esc>", "Back"},
		{"<q>", "Quit"},
		{"<ctrl-r>", "Refresh"},
	}
	navigation := []HelpBind{
		{"<j>", "Down"},
		{"<k>", "Up"},
		{"<g>", "Top"},
		{"<G>", "Bottom"},
		{"<enter>", "Describe"},
		{"<y>", "YAML"},
	}
	table := []HelpBind{
		{"<ctrl-s>", "Sort"},
		{"<space>", "Mark"},
		{"<ctrl-u>", "Clear Marks"},
		{"<d>", "Diff"},
		{"<w>", "Wide"},
	}

	headers := []string{"ALIASES", "GENERAL", "NAVIGATION", "TABLE"}
	cols := [][]HelpBind{aliases, general, navigation, table}
	if src := h.source(); len(src) > 0 {
		headers, cols = append(headers, "SOURCE"), append(cols, src)
	}

	return headers, cols
}

func (h *Help) source() []HelpBind {
	if h.app == nil || h.app.Factory() == nil {
		return nil
	}
	f := h.app.Factory()
	kind := f.Kind()
	if kind == "" {
		kind = "custom"
	}
	bb := []HelpBind{{"kind", kind}}
	conn := f.Connection()
	if conn == nil {
		return bb
	}
	status := "offline"
	if conn.ConnectionOK() {
		status = "ok"
	}
	bb = append(bb,
		HelpBind{"profile", conn.ActiveProfile()},
		HelpBind{"region", conn.ActiveRegion()},
		HelpBind{"status", status},
	)
	if id := conn.AccountID(); id != "" {
		bb = append(bb, HelpBind{"account", id})
	}
	if pp := conn.ProfileNames(); len(pp) > 1 {
		bb = append(bb, HelpBind{"profiles", strings.Join(pp, ",")})
	}

	return bb
}

func (h *Help) build() {
	h.Clear()
	headers, columns := h.sections()

	var maxRows int
	for _, col := range columns {
		maxRows = max(maxRows, len(col))
	}

	const colWidth = 3
	for i, col := range columns {
		base := i * colWidth
		h.SetCell(0, base, tview.NewTableCell(headers[i]).
			SetTextColor(tcell.ColorAqua).
			SetAttributes(tcell.AttrBold).
			SetSelectable(false))

		for r, bind := range col {
			h.SetCell(r+1, base, tview.NewTableCell(bind.Key).
				SetTextColor(tcell.ColorDodgerBlue).
				SetSelectable(false))
			h.SetCell(r+1, base+1, tview.NewTableCell(bind.Desc).
				SetTextColor(tcell.ColorWhite).
				SetSelectable(false).
				SetExpansion(1))
		}
		if i < len(columns)-1 {
			for r := 0; r <= maxRows; r++ {
				h.SetCell(r, base+2, tview.NewTableCell("").SetSelectable(false).SetExpansion(1))
			}
		}
	}

	version := "dev"
	if h.app != nil && h.app.Version() != "" {
		version = h.app.Version()
	}
	h.SetCell(maxRows+2, 0, tview.NewTableCell(fmt.Sprintf("spanlens %s", version)).
		SetTextColor(tcell.ColorGray).
		SetSelectable(false))
}
