// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of spanlens

package ui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
	"github.com/spanlens/spanlens/internal/dao"
	"github.com/spanlens/spanlens/internal/model"
	"github.com/spanlens/spanlens/internal/model1"
)

const (
	titleFmt       = " %s(%s)[%d] "
	titleMoreFmt   = " %s(%s)[%d+] "
	titleFilterFmt = " %s(%s)[%d] </%s> "
	sortIndicator  = "↑"
	sortDescIndic  = "↓"
	loadingMsg     = "Loading..."
)

// ConnectionTable renders a paged connection grid. It observes its own
// scroll geometry on every draw and reports changes to the scroll func.
type ConnectionTable struct {
	*tview.Table

	rid      dao.ResourceID
	actions  *KeyActions
	model    Tabular
	data     *model1.TableData
	header   model1.Header
	visible  []int
	sortCol  int
	sortAsc  bool
	filter   string
	wide     bool
	marks    map[string]struct{}
	lastGeo  model.Geometry
	scrollFn func(model.Geometry)
	rowFn    func(id string)
	sortFn   func(col string, asc bool)
	mx       sync.RWMutex
}

// NewConnectionTable returns a new table for a connection.
func NewConnectionTable(rid dao.ResourceID) *ConnectionTable {
	t := ConnectionTable{
		Table:   tview.NewTable(),
		rid:     rid,
		actions: NewKeyActions(),
		marks:   make(map[string]struct{}),
		sortCol: -1,
		sortAsc: true,
		lastGeo: model.Geometry{ScrollHeight: -1},
	}

	t.SetBorder(true)
	t.SetBorderAttributes(tcell.AttrBold)
	t.SetBorderPadding(0, 0, 1, 1)
	t.SetBorderColor(tcell.ColorWhite)
	t.SetBackgroundColor(tcell.ColorDefault)
	t.SetFixed(1, 0)
	t.SetSelectable(true, false)

	return &t
}

// Init initializes the table.
func (t *ConnectionTable) Init(context.Context) error {
	t.showMessage(loadingMsg, model1.PlaceholderColor)
	t.updateTitle()
	t.SetInputCapture(t.keyboard)
	t.bindKeys()

	return nil
}

// ResourceID returns the connection id.
func (t *ConnectionTable) ResourceID() dao.ResourceID {
	return t.rid
}

// Actions returns the key actions.
func (t *ConnectionTable) Actions() *KeyActions {
	return t.actions
}

// Hints returns menu hints.
func (t *ConnectionTable) Hints() MenuHints {
	return t.actions.Hints()
}

// SetModel sets the data model. Model updates reach the table through
// UpdateUI.
func (t *ConnectionTable) SetModel(m Tabular) {
	t.mx.Lock()
	defer t.mx.Unlock()
	t.model = m
	if m != nil {
		t.header = m.Header()
	}
}

// GetModel returns the current model.
func (t *ConnectionTable) GetModel() Tabular {
	t.mx.RLock()
	defer t.mx.RUnlock()
	return t.model
}

// SetScrollFn registers the scroll geometry observer.
func (t *ConnectionTable) SetScrollFn(fn func(model.Geometry)) {
	t.mx.Lock()
	defer t.mx.Unlock()
	t.scrollFn = fn
}

// SetRowFn registers the row action, fired on enter with the row id.
func (t *ConnectionTable) SetRowFn(fn func(id string)) {
	t.mx.Lock()
	defer t.mx.Unlock()
	t.rowFn = fn
}

// SetSortFn registers a func notified when the sort column changes.
func (t *ConnectionTable) SetSortFn(fn func(col string, asc bool)) {
	t.mx.Lock()
	defer t.mx.Unlock()
	t.sortFn = fn
}

// Draw draws the table then reports its scroll geometry when it moved.
func (t *ConnectionTable) Draw(screen tcell.Screen) {
	t.Table.Draw(screen)

	geo := t.Geometry()
	t.mx.Lock()
	fn, changed := t.scrollFn, geo != t.lastGeo
	t.lastGeo = geo
	t.mx.Unlock()

	if changed && fn != nil {
		fn(geo)
	}
}

// Geometry returns the current scroll geometry in body rows, the header
// row excluded.
func (t *ConnectionTable) Geometry() model.Geometry {
	rowOffset, _ := t.GetOffset()
	_, _, _, height := t.GetInnerRect()

	t.mx.RLock()
	rows := 0
	if t.data != nil {
		rows = t.data.RowCount()
	}
	t.mx.RUnlock()
	if body := t.GetRowCount() - 1; body < rows {
		rows = max(body, 0)
	}

	return model.Geometry{
		ScrollHeight: rows,
		ScrollTop:    rowOffset,
		ClientHeight: max(height-1, 0),
	}
}

// SetWide toggles the wide columns.
func (t *ConnectionTable) SetWide(wide bool) {
	t.mx.Lock()
	t.wide = wide
	t.mx.Unlock()
	t.Refresh()
}

// IsWide returns true if wide columns are shown.
func (t *ConnectionTable) IsWide() bool {
	t.mx.RLock()
	defer t.mx.RUnlock()
	return t.wide
}

// SetSort sorts on the named column. An unknown column restores the
// connection order.
func (t *ConnectionTable) SetSort(name string, asc bool) {
	t.mx.Lock()
	t.sortCol, t.sortAsc = -1, asc
	for i, h := range t.header {
		if h.Name == name {
			t.sortCol = i
			break
		}
	}
	t.mx.Unlock()
	t.Refresh()
}

// SortColumn returns the name of the sort column, empty when unsorted.
func (t *ConnectionTable) SortColumn() (string, bool) {
	t.mx.RLock()
	defer t.mx.RUnlock()
	if t.sortCol < 0 || t.sortCol >= len(t.header) {
		return "", t.sortAsc
	}
	return t.header[t.sortCol].Name, t.sortAsc
}

// SetFilter filters rows on a case insensitive substring.
func (t *ConnectionTable) SetFilter(q string) {
	t.mx.Lock()
	t.filter = strings.TrimSpace(q)
	t.mx.Unlock()
	t.Refresh()
}

// ClearFilter clears the filter.
func (t *ConnectionTable) ClearFilter() {
	t.SetFilter("")
}

// GetFilter returns the active filter.
func (t *ConnectionTable) GetFilter() string {
	t.mx.RLock()
	defer t.mx.RUnlock()
	return t.filter
}

// GetSelectedItem returns the id of the selected row.
func (t *ConnectionTable) GetSelectedItem() string {
	row, _ := t.GetSelection()
	return t.rowID(row)
}

func (t *ConnectionTable) rowID(row int) string {
	if row <= 0 {
		return ""
	}
	cell := t.GetCell(row, 0)
	if cell == nil {
		return ""
	}
	if id, ok := cell.GetReference().(string); ok {
		return id
	}
	return ""
}

// ToggleMark toggles the mark of the selected row.
func (t *ConnectionTable) ToggleMark() {
	id := t.GetSelectedItem()
	if id == "" {
		return
	}

	t.mx.Lock()
	if _, ok := t.marks[id]; ok {
		delete(t.marks, id)
	} else {
		t.marks[id] = struct{}{}
	}
	t.mx.Unlock()
	t.Refresh()
}

// IsMarked returns true if a row is marked.
func (t *ConnectionTable) IsMarked(id string) bool {
	t.mx.RLock()
	defer t.mx.RUnlock()
	_, ok := t.marks[id]
	return ok
}

// GetMarked returns the marked row ids, sorted.
func (t *ConnectionTable) GetMarked() []string {
	t.mx.RLock()
	defer t.mx.RUnlock()

	ids := make([]string, 0, len(t.marks))
	for id := range t.marks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ClearMarks clears all marks.
func (t *ConnectionTable) ClearMarks() {
	t.mx.Lock()
	t.marks = make(map[string]struct{})
	t.mx.Unlock()
	t.Refresh()
}

// UpdateUI swaps in new table data and redraws the rows.
func (t *ConnectionTable) UpdateUI(data *model1.TableData) {
	t.mx.Lock()
	t.data = data
	if g := data.Grid(); g != nil {
		t.header = g.Header
	}
	t.mx.Unlock()

	t.Refresh()
}

// Refresh redraws the current data.
func (t *ConnectionTable) Refresh() {
	t.mx.RLock()
	data, filter, col, asc, wide := t.data, t.filter, t.sortCol, t.sortAsc, t.wide
	t.mx.RUnlock()

	if data == nil || data.Grid() == nil {
		return
	}
	g := data.Grid()
	if !g.Empty {
		g = g.Filter(filter)
		if col >= 0 {
			g = g.Sorted(col, asc)
		}
	}
	t.render(g, wide)
}

func (t *ConnectionTable) render(g *model1.Grid, wide bool) {
	selected := t.GetSelectedItem()
	rowOffset, colOffset := t.GetOffset()

	idx := g.Header.Visible(wide)
	t.mx.Lock()
	t.visible = idx
	t.mx.Unlock()

	t.Clear()
	t.buildHeader(g.Header, idx)
	if g.Empty || len(g.Rows) == 0 {
		t.buildPlaceholder(g, idx)
		t.updateTitle()
		return
	}
	for r, row := range g.Rows {
		t.buildRow(r+1, row, g.Header, idx)
	}

	t.SetOffset(rowOffset, colOffset)
	t.Select(t.rowIndex(selected), 0)
	t.updateTitle()
}

func (t *ConnectionTable) rowIndex(id string) int {
	if id == "" {
		return 1
	}
	for r := 1; r < t.GetRowCount(); r++ {
		if t.rowID(r) == id {
			return r
		}
	}
	return 1
}

func (t *ConnectionTable) buildHeader(h model1.Header, idx []int) {
	t.mx.RLock()
	col, asc := t.sortCol, t.sortAsc
	t.mx.RUnlock()

	for c, i := range idx {
		name := h[i].Name
		if i == col {
			if asc {
				name += sortIndicator
			} else {
				name += sortDescIndic
			}
		}
		cell := tview.NewTableCell(name)
		cell.SetTextColor(tcell.ColorYellow)
		cell.SetAttributes(tcell.AttrBold)
		cell.SetBackgroundColor(tcell.ColorDefault)
		cell.SetAlign(h[i].Align)
		cell.SetExpansion(1)
		cell.SetSelectable(false)
		t.SetCell(0, c, cell)
	}
}

func (t *ConnectionTable) buildPlaceholder(g *model1.Grid, idx []int) {
	text := model1.NoData
	if len(g.Rows) > 0 && len(g.Rows[0].Cells) > 0 {
		text = g.Rows[0].Cells[0].Text
	}
	for c := range idx {
		cell := tview.NewTableCell("")
		if c == 0 {
			cell.SetText(text)
		}
		cell.SetTextColor(model1.PlaceholderColor)
		cell.SetBackgroundColor(tcell.ColorDefault)
		cell.SetSelectable(false)
		cell.SetExpansion(1)
		t.SetCell(1, c, cell)
	}
}

func (t *ConnectionTable) buildRow(r int, row model1.Row, h model1.Header, idx []int) {
	marked := t.IsMarked(row.ID)
	for c, i := range idx {
		var mc model1.Cell
		if i < len(row.Cells) {
			mc = row.Cells[i]
		} else {
			mc = model1.PlaceholderCell()
		}
		cell := tview.NewTableCell(mc.Text)
		cell.SetTextColor(model1.StyleColor(mc.Style))
		cell.SetBackgroundColor(tcell.ColorDefault)
		cell.SetAlign(h[i].Align)
		cell.SetExpansion(1)
		if marked {
			cell.SetTextColor(model1.HighlightColor)
			cell.SetAttributes(tcell.AttrBold)
		}
		if c == 0 {
			cell.SetReference(row.ID)
		}
		t.SetCell(r, c, cell)
	}
}

func (t *ConnectionTable) showMessage(msg string, color tcell.Color) {
	t.Clear()
	cell := tview.NewTableCell(msg)
	cell.SetTextColor(color)
	cell.SetAlign(tview.AlignCenter)
	cell.SetSelectable(false)
	cell.SetExpansion(1)
	t.SetCell(0, 0, cell)
}

func (t *ConnectionTable) updateTitle() {
	t.mx.RLock()
	m, data, filter := t.model, t.data, t.filter
	t.mx.RUnlock()

	count := 0
	if data != nil {
		count = data.RowCount()
	}
	scope := t.rid.Scope
	if scope == "" {
		scope = "-"
	}

	border := tcell.ColorWhite
	if data != nil && data.HasError() {
		border = model1.StyleColor(model1.StyleAlert)
	}
	t.SetBorderColor(border)

	var title string
	switch {
	case filter != "":
		title = fmt.Sprintf(titleFilterFmt, t.rid.Resource, scope, max(t.GetRowCount()-1, 0), filter)
	case m != nil && m.HasNext():
		title = fmt.Sprintf(titleMoreFmt, t.rid.Resource, scope, count)
	default:
		title = fmt.Sprintf(titleFmt, t.rid.Resource, scope, count)
	}
	t.SetTitle(title)
}

func (t *ConnectionTable) keyboard(evt *tcell.EventKey) *tcell.EventKey {
	if a, ok := t.actions.Get(AsKey(evt)); ok {
		return a.Action(evt)
	}

	row, col := t.GetSelection()
	last := t.GetRowCount() - 1
	switch evt.Key() {
	case tcell.KeyHome:
		t.selectRow(1, col)
		return nil
	case tcell.KeyEnd:
		t.selectRow(last, col)
		return nil
	case tcell.KeyUp:
		t.selectRow(row-1, col)
		return nil
	case tcell.KeyDown:
		t.selectRow(row+1, col)
		return nil
	}

	return evt
}

func (t *ConnectionTable) selectRow(row, col int) {
	if row < 1 || row >= t.GetRowCount() {
		return
	}
	t.Select(row, col)
}

func (t *ConnectionTable) bindKeys() {
	t.actions.Bulk(KeyMap{
		KeyJ:           NewKeyAction("Down", t.downCmd, false),
		KeyK:           NewKeyAction("Up", t.upCmd, false),
		KeyG:           NewKeyAction("Top", t.topCmd, false),
		KeyShiftG:      NewKeyAction("Bottom", t.bottomCmd, false),
		KeySpace:       NewKeyAction("Mark", t.markCmd, true),
		KeyW:           NewKeyAction("Wide", t.wideCmd, true),
		tcell.KeyCtrlS: NewKeyAction("Sort", t.sortCmd, true),
		tcell.KeyEnter: NewKeyAction("Describe", t.enterCmd, true),
	})
}

func (t *ConnectionTable) downCmd(*tcell.EventKey) *tcell.EventKey {
	row, col := t.GetSelection()
	t.selectRow(row+1, col)
	return nil
}

func (t *ConnectionTable) upCmd(*tcell.EventKey) *tcell.EventKey {
	row, col := t.GetSelection()
	t.selectRow(row-1, col)
	return nil
}

func (t *ConnectionTable) topCmd(*tcell.EventKey) *tcell.EventKey {
	_, col := t.GetSelection()
	t.selectRow(1, col)
	t.ScrollToBeginning()
	return nil
}

func (t *ConnectionTable) bottomCmd(*tcell.EventKey) *tcell.EventKey {
	_, col := t.GetSelection()
	t.selectRow(t.GetRowCount()-1, col)
	return nil
}

func (t *ConnectionTable) markCmd(*tcell.EventKey) *tcell.EventKey {
	t.ToggleMark()
	return nil
}

func (t *ConnectionTable) wideCmd(*tcell.EventKey) *tcell.EventKey {
	t.SetWide(!t.IsWide())
	return nil
}

// sortCmd moves the sort to the next visible column. Past the last
// column the connection order is restored.
func (t *ConnectionTable) sortCmd(*tcell.EventKey) *tcell.EventKey {
	t.mx.Lock()
	if len(t.visible) == 0 {
		t.mx.Unlock()
		return nil
	}
	next := -1
	for i, c := range t.visible {
		if c == t.sortCol {
			if i+1 < len(t.visible) {
				next = t.visible[i+1]
			}
			break
		}
		if t.sortCol < 0 {
			next = t.visible[0]
			break
		}
	}
	t.sortCol, t.sortAsc = next, true
	fn := t.sortFn
	t.mx.Unlock()

	t.Refresh()
	if fn != nil {
		name, asc := t.SortColumn()
		fn(name, asc)
	}
	return nil
}

func (t *ConnectionTable) enterCmd(*tcell.EventKey) *tcell.EventKey {
	t.mx.RLock()
	fn := t.rowFn
	t.mx.RUnlock()

	if id := t.GetSelectedItem(); id != "" && fn != nil {
		fn(id)
	}
	return nil
}
