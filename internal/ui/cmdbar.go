// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of spanlens

package ui

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

// BarMode represents the command bar input mode.
type BarMode int

const (
	// ModeNormal is the default navigation mode.
	ModeNormal BarMode = iota
	// ModeCommand is for entering commands (: prefix).
	ModeCommand
	// ModeFilter is for filtering rows (/ prefix).
	ModeFilter
)

const (
	promptNormal  = ">"
	promptCommand = ":"
	promptFilter  = "/"
)

// CmdBar is a bordered command/filter input bar with ghost text
// completion.
type CmdBar struct {
	*tview.TextView

	mode          BarMode
	cmdFn         func(string)
	filterFn      func(string)
	cancelFn      func()
	activeFn      func(bool)
	active        bool
	filterText    string
	text          []rune
	suggestions   []string
	suggestionIdx int
	commands      []string
	mx            sync.RWMutex
}

// NewCmdBar creates a new command bar completing the given commands.
func NewCmdBar(commands ...string) *CmdBar {
	c := CmdBar{
		TextView:      tview.NewTextView(),
		suggestionIdx: -1,
	}
	c.SetCommands(commands)

	c.SetBorder(true)
	c.SetBorderColor(tcell.ColorDarkCyan)
	c.SetBackgroundColor(tcell.ColorDefault)
	c.SetTextColor(tcell.ColorWhite)
	c.SetDynamicColors(true)
	c.SetWrap(false)
	c.SetInputCapture(c.keyboard)
	c.render()

	return &c
}

func (c *CmdBar) keyboard(evt *tcell.EventKey) *tcell.EventKey {
	if !c.IsActive() {
		return evt
	}

	switch evt.Key() {
	case tcell.KeyBackspace, tcell.KeyBackspace2, tcell.KeyDelete:
		c.mx.Lock()
		if len(c.text) > 0 {
			c.text = c.text[:len(c.text)-1]
		}
		c.mx.Unlock()
		c.changed()
	case tcell.KeyCtrlU, tcell.KeyCtrlW:
		c.mx.Lock()
		c.text = c.text[:0]
		c.mx.Unlock()
		c.changed()
	case tcell.KeyRune:
		c.mx.Lock()
		c.text = append(c.text, evt.Rune())
		c.mx.Unlock()
		c.changed()
	case tcell.KeyEnter:
		c.execute()
	case tcell.KeyEsc:
		c.cancel()
	case tcell.KeyTab, tcell.KeyRight:
		c.accept()
	case tcell.KeyUp:
		c.cycle(-1)
	case tcell.KeyDown:
		c.cycle(1)
	default:
		return evt
	}

	return nil
}

func (c *CmdBar) changed() {
	c.updateSuggestions()
	c.render()

	c.mx.RLock()
	mode, fn, text := c.mode, c.filterFn, string(c.text)
	c.mx.RUnlock()
	if mode == ModeFilter && fn != nil {
		fn(text)
	}
}

func (c *CmdBar) accept() {
	c.mx.Lock()
	if s := c.suggestionLocked(); s != "" {
		c.text = []rune(s)
		c.suggestions, c.suggestionIdx = nil, -1
	}
	c.mx.Unlock()
	c.render()
}

func (c *CmdBar) cycle(delta int) {
	c.mx.Lock()
	if n := len(c.suggestions); n > 0 {
		c.suggestionIdx = (c.suggestionIdx + delta + n) % n
	}
	c.mx.Unlock()
	c.render()
}

func (c *CmdBar) suggestionLocked() string {
	if c.suggestionIdx < 0 || c.suggestionIdx >= len(c.suggestions) {
		return ""
	}
	return c.suggestions[c.suggestionIdx]
}

func (c *CmdBar) render() {
	c.mx.RLock()
	text, suggestion, mode := string(c.text), c.suggestionLocked(), c.mode
	c.mx.RUnlock()

	prompt := promptNormal
	switch mode {
	case ModeCommand:
		prompt = promptCommand
	case ModeFilter:
		prompt = promptFilter
	}

	c.Clear()
	if strings.HasPrefix(suggestion, text) && len(suggestion) > len(text) {
		_, _ = fmt.Fprintf(c.TextView, "[aqua::b]%s [white::b]%s[gray::-]%s[-::-]", prompt, text, suggestion[len(text):])
		return
	}
	_, _ = fmt.Fprintf(c.TextView, "[aqua::b]%s [white::b]%s", prompt, text)
}

// Suggest returns the known commands starting with text.
func (c *CmdBar) Suggest(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ToLower(text)

	c.mx.RLock()
	defer c.mx.RUnlock()
	var mm []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, text) {
			mm = append(mm, cmd)
		}
	}
	return mm
}

func (c *CmdBar) updateSuggestions() {
	c.mx.RLock()
	text, mode := string(c.text), c.mode
	c.mx.RUnlock()

	var ss []string
	if mode == ModeCommand {
		ss = c.Suggest(text)
	}

	c.mx.Lock()
	defer c.mx.Unlock()
	c.suggestions, c.suggestionIdx = ss, -1
	if len(ss) > 0 {
		c.suggestionIdx = 0
	}
}

// AddCommands adds commands to the completion list.
func (c *CmdBar) AddCommands(cmds ...string) {
	c.mx.Lock()
	defer c.mx.Unlock()

	for _, cmd := range cmds {
		if !slices.Contains(c.commands, cmd) {
			c.commands = append(c.commands, cmd)
		}
	}
	sort.Strings(c.commands)
}

// SetCommands replaces the completion list.
func (c *CmdBar) SetCommands(cmds []string) {
	c.mx.Lock()
	defer c.mx.Unlock()

	c.commands = slices.Clone(cmds)
	sort.Strings(c.commands)
}

// GetText returns the current input text.
func (c *CmdBar) GetText() string {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return string(c.text)
}

// SetText sets the input text.
func (c *CmdBar) SetText(s string) {
	c.mx.Lock()
	c.text = []rune(s)
	c.mx.Unlock()
	c.render()
}

// Activate enters command or filter mode.
func (c *CmdBar) Activate(mode BarMode) {
	c.mx.Lock()
	c.mode, c.active = mode, true
	c.text = c.text[:0]
	c.suggestions, c.suggestionIdx = nil, -1
	fn := c.activeFn
	c.mx.Unlock()
	c.render()

	if fn != nil {
		fn(true)
	}
}

// Deactivate returns to normal mode.
func (c *CmdBar) Deactivate() {
	c.mx.Lock()
	c.mode, c.active = ModeNormal, false
	c.text = c.text[:0]
	c.suggestions, c.suggestionIdx = nil, -1
	fn := c.activeFn
	c.mx.Unlock()
	c.render()

	if fn != nil {
		fn(false)
	}
}

func (c *CmdBar) execute() {
	c.mx.Lock()
	text, mode, fn := strings.TrimSpace(string(c.text)), c.mode, c.cmdFn
	if mode == ModeFilter {
		c.filterText = text
	}
	c.mx.Unlock()

	if mode == ModeCommand && fn != nil && text != "" {
		fn(text)
	}
	c.Deactivate()
}

func (c *CmdBar) cancel() {
	c.mx.RLock()
	mode, fn := c.mode, c.cancelFn
	c.mx.RUnlock()

	if mode == ModeFilter && fn != nil {
		fn()
	}
	c.Deactivate()
}

// IsActive returns whether the bar is accepting input.
func (c *CmdBar) IsActive() bool {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.active
}

// Mode returns the current mode.
func (c *CmdBar) Mode() BarMode {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.mode
}

// SetCommandFn sets the callback for command execution.
func (c *CmdBar) SetCommandFn(fn func(string)) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.cmdFn = fn
}

// SetFilterFn sets the callback for live filter changes.
func (c *CmdBar) SetFilterFn(fn func(string)) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.filterFn = fn
}

// SetCancelFn sets the callback for a cancelled filter.
func (c *CmdBar) SetCancelFn(fn func()) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.cancelFn = fn
}

// SetActiveFn sets the callback for active state changes.
func (c *CmdBar) SetActiveFn(fn func(bool)) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.activeFn = fn
}

// GetFilterText returns the last confirmed filter.
func (c *CmdBar) GetFilterText() string {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.filterText
}

// ClearFilter clears the confirmed filter.
func (c *CmdBar) ClearFilter() {
	c.mx.Lock()
	c.filterText = ""
	fn := c.filterFn
	c.mx.Unlock()

	if fn != nil {
		fn("")
	}
}
