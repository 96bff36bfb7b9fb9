package ui

import (
	"fmt"
	"strings"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

const (
	activeCrumbFmt   = "[black:orange:b] <%s> [-:-:-] "
	inactiveCrumbFmt = "[gray::-] <%s> [-:-:-] "
)

// Crumbs represents user breadcrumbs.
type Crumbs struct {
	*tview.TextView

	stack *Stack
}

// NewCrumbs returns a new breadcrumb view.
func NewCrumbs() *Crumbs {
	c := &Crumbs{
		stack:    NewStack(),
		TextView: tview.NewTextView(),
	}
	c.SetBackgroundColor(tcell.ColorDefault)
	c.SetTextAlign(tview.AlignLeft)
	c.SetBorderPadding(0, 0, 1, 1)
	c.SetDynamicColors(true)

	return c
}

// StackPushed indicates a new item was added.
func (c *Crumbs) StackPushed(comp Component) {
	c.stack.Push(comp)
	c.refresh(c.stack.Flatten())
}

// StackPopped indicates an item was deleted.
func (c *Crumbs) StackPopped(_, _ Component) {
	c.stack.Pop()
	c.refresh(c.stack.Flatten())
}

// StackTop indicates the top of the stack.
func (*Crumbs) StackTop(Component) {}

func (c *Crumbs) refresh(crumbs []string) {
	c.Clear()
	last := len(crumbs) - 1

	for i, crumb := range crumbs {
		color := inactiveCrumbFmt
		if i == last {
			color = activeCrumbFmt
		}
		_, _ = fmt.Fprintf(c, color, strings.ReplaceAll(strings.ToLower(crumb), " ", ""))
	}
}

// Crumbs returns the current trail.
func (c *Crumbs) Crumbs() []string {
	return c.stack.Flatten()
}
