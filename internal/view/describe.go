// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of spanlens

package view

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
	"github.com/spanlens/spanlens/internal/dao"
	"github.com/spanlens/spanlens/internal/ui"
	"gopkg.in/yaml.v3"
)

const (
	formatYAML = "yaml"
	formatJSON = "json"
)

// Describe displays the raw node behind a row.
type Describe struct {
	*tview.TextView

	rid     dao.ResourceID
	id      string
	raw     json.RawMessage
	format  string
	actions *ui.KeyActions
	wrapOn  bool
}

// NewDescribe creates a new node detail view.
func NewDescribe(rid dao.ResourceID, id string, raw json.RawMessage) *Describe {
	d := Describe{
		TextView: tview.NewTextView(),
		rid:      rid,
		id:       id,
		raw:      raw,
		format:   formatYAML,
		actions:  ui.NewKeyActions(),
	}

	d.SetDynamicColors(true)
	d.SetWrap(false)
	d.SetWordWrap(false)
	d.SetScrollable(true)
	d.SetBorder(true)
	d.SetBorderPadding(0, 0, 1, 1)
	d.SetBorderColor(tcell.ColorAqua)
	d.SetBackgroundColor(tcell.ColorDefault)

	return &d
}

// Init initializes the describe view.
func (d *Describe) Init(context.Context) error {
	d.bindKeys()
	d.SetInputCapture(d.keyboard)
	d.Refresh()

	return nil
}

// Start starts the describe view.
func (*Describe) Start() {}

// Stop stops the describe view.
func (*Describe) Stop() {}

// Name returns the view name.
func (*Describe) Name() string {
	return "describe"
}

// Hints returns the menu hints for this view.
func (d *Describe) Hints() ui.MenuHints {
	return d.actions.Hints()
}

// Format returns the active format.
func (d *Describe) Format() string {
	return d.format
}

// Refresh renders the node in the active format.
func (d *Describe) Refresh() {
	d.Clear()
	d.SetText(d.content())
	d.SetTitle(fmt.Sprintf(" %s/%s [%s] ", d.rid, d.id, strings.ToUpper(d.format)))
	d.ScrollToBeginning()
}

func (d *Describe) bindKeys() {
	d.actions.Bulk(ui.KeyMap{
		ui.KeyY: ui.NewKeyAction("YAML", d.formatCmd(formatYAML), true),
		ui.KeyJ: ui.NewKeyAction("JSON", d.formatCmd(formatJSON), true),
		ui.KeyW: ui.NewKeyAction("Wrap", d.toggleWrap, true),
	})
}

func (d *Describe) toggleWrap(*tcell.EventKey) *tcell.EventKey {
	d.wrapOn = !d.wrapOn
	d.SetWrap(d.wrapOn)
	d.SetWordWrap(d.wrapOn)
	return nil
}

func (d *Describe) keyboard(evt *tcell.EventKey) *tcell.EventKey {
	if a, ok := d.actions.Get(ui.AsKey(evt)); ok {
		return a.Action(evt)
	}

	row, _ := d.GetScrollOffset()
	switch ui.AsKey(evt) {
	case tcell.KeyDown:
		d.ScrollTo(row+1, 0)
	case tcell.KeyUp, ui.KeyK:
		d.ScrollTo(max(row-1, 0), 0)
	case tcell.KeyPgDn:
		d.ScrollTo(row+20, 0)
	case tcell.KeyPgUp:
		d.ScrollTo(max(row-20, 0), 0)
	case tcell.KeyHome, ui.KeyG:
		d.ScrollToBeginning()
	case tcell.KeyEnd, ui.KeyShiftG:
		d.ScrollToEnd()
	default:
		return evt
	}

	return nil
}

func (d *Describe) formatCmd(format string) ui.ActionHandler {
	return func(*tcell.EventKey) *tcell.EventKey {
		d.format = format
		d.Refresh()
		return nil
	}
}

func (d *Describe) content() string {
	if len(d.raw) == 0 {
		return "[red::]No data available[-::]"
	}

	if d.format == formatJSON {
		var buf bytes.Buffer
		if err := json.Indent(&buf, d.raw, "", "  "); err != nil {
			return fmt.Sprintf("[red::]Invalid node: %v[-::]", err)
		}
		return escape(buf.String())
	}

	out, err := nodeYAML(d.raw)
	if err != nil {
		return fmt.Sprintf("[red::]Invalid node: %v[-::]", err)
	}
	return highlightYAML(out)
}

var tagRX = regexp.MustCompile(`(\[[a-zA-Z0-9_,;: \-\."#]*)\]`)

// escape keeps node text from being read as color tags.
func escape(s string) string {
	return tagRX.ReplaceAllString(s, "$1[]")
}

// nodeYAML converts a JSON node to YAML, keys sorted.
func nodeYAML(raw json.RawMessage) (string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	out, err := yaml.Marshal(v)
	if err != nil {
		return "", err
	}

	return string(out), nil
}

// highlightYAML colors keys and scalar values.
func highlightYAML(content string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		line = escape(line)
		trimmed := strings.TrimLeft(line, " -")
		indent := line[:len(line)-len(trimmed)]

		key, value, ok := strings.Cut(trimmed, ":")
		switch {
		case !ok || strings.ContainsAny(key, " \"'"):
			b.WriteString(indent + colorizeValue(trimmed))
		case strings.TrimSpace(value) == "":
			fmt.Fprintf(&b, "%s[aqua::]%s:[-::]", indent, key)
		default:
			fmt.Fprintf(&b, "%s[aqua::]%s:[-::] %s", indent, key, colorizeValue(strings.TrimSpace(value)))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// colorizeValue picks a color from the value type.
func colorizeValue(value string) string {
	trimmed := strings.Trim(value, "\"'")

	switch strings.ToLower(trimmed) {
	case "true", "ok":
		return "[green::]" + value + "[-::]"
	case "false", "error":
		return "[red::]" + value + "[-::]"
	case "null", "~", "unset":
		return "[gray::]" + value + "[-::]"
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return "[fuchsia::]" + value + "[-::]"
	}

	return value
}
