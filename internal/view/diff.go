package view

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
	"github.com/spanlens/spanlens/internal/dao"
	"github.com/spanlens/spanlens/internal/ui"
	"github.com/wI2L/jsondiff"
)

// Diff shows the JSON patch turning one node into another.
type Diff struct {
	*tview.TextView

	rid      dao.ResourceID
	from, to string
	patch    jsondiff.Patch
	err      error
	actions  *ui.KeyActions
}

// NewDiff returns a diff of two nodes of a connection.
func NewDiff(rid dao.ResourceID, fromID, toID string, from, to json.RawMessage) *Diff {
	d := Diff{
		TextView: tview.NewTextView(),
		rid:      rid,
		from:     fromID,
		to:       toID,
		actions:  ui.NewKeyActions(),
	}
	d.patch, d.err = DiffNodes(from, to)

	d.SetDynamicColors(true)
	d.SetScrollable(true)
	d.SetWrap(false)
	d.SetBorder(true)
	d.SetBorderPadding(0, 0, 1, 1)
	d.SetBorderColor(tcell.ColorAqua)
	d.SetBackgroundColor(tcell.ColorDefault)

	return &d
}

// DiffNodes returns the RFC 6902 patch from one node to another.
func DiffNodes(from, to json.RawMessage) (jsondiff.Patch, error) {
	p, err := jsondiff.CompareJSON(from, to)
	if err != nil {
		return nil, fmt.Errorf("diff failed: %w", err)
	}
	return p, nil
}

// Init initializes the view.
func (d *Diff) Init(context.Context) error {
	d.actions.Add(ui.KeyJ, ui.NewKeyAction("Patch JSON", d.rawCmd, true))
	d.SetInputCapture(func(evt *tcell.EventKey) *tcell.EventKey {
		if a, ok := d.actions.Get(ui.AsKey(evt)); ok {
			return a.Action(evt)
		}
		return evt
	})
	d.SetTitle(fmt.Sprintf(" %s: %s ⇢ %s [%d] ", d.rid, d.from, d.to, len(d.patch)))
	d.SetText(d.render())

	return nil
}

// Start starts the view.
func (*Diff) Start() {}

// Stop stops the view.
func (*Diff) Stop() {}

// Name returns the view name.
func (*Diff) Name() string {
	return "diff"
}

// Hints returns the menu hints.
func (d *Diff) Hints() ui.MenuHints {
	return d.actions.Hints()
}

// Patch returns the computed patch.
func (d *Diff) Patch() jsondiff.Patch {
	return d.patch
}

func (d *Diff) rawCmd(*tcell.EventKey) *tcell.EventKey {
	if d.err != nil {
		return nil
	}
	bb, err := json.MarshalIndent(d.patch, "", "  ")
	if err != nil {
		d.SetText(fmt.Sprintf("[red::]%v[-::]", err))
		return nil
	}
	d.SetText(escape(string(bb)))

	return nil
}

func (d *Diff) render() string {
	if d.err != nil {
		return fmt.Sprintf("[red::]%v[-::]", d.err)
	}
	if len(d.patch) == 0 {
		return "[gray::]Nodes are identical[-::]"
	}

	var b strings.Builder
	for _, op := range d.patch {
		b.WriteString(formatOp(op))
		b.WriteString("\n")
	}

	return b.String()
}

func formatOp(op jsondiff.Operation) string {
	switch op.Type {
	case jsondiff.OperationAdd:
		return fmt.Sprintf("[green::]+ %s: %s[-::]", escape(op.Path), opValue(op.Value))
	case jsondiff.OperationRemove:
		return fmt.Sprintf("[red::]- %s[-::]", escape(op.Path))
	case jsondiff.OperationReplace:
		return fmt.Sprintf("[yellow::]~ %s: %s[-::]", escape(op.Path), opValue(op.Value))
	default:
		return fmt.Sprintf("[aqua::]%s %s %s[-::]", op.Type, escape(op.From), escape(op.Path))
	}
}

func opValue(v any) string {
	bb, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return escape(string(bb))
}
