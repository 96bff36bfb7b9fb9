package ui

import (
	"fmt"

	"github.com/derailed/tview"
)

// Pages represents a stack of view pages.
type Pages struct {
	*tview.Pages
	*Stack
}

// NewPages returns a new pages manager.
func NewPages() *Pages {
	p := Pages{
		Pages: tview.NewPages(),
		Stack: NewStack(),
	}
	p.Stack.AddListener(&p)

	return &p
}

// Show displays a named page.
func (p *Pages) Show(c Component) {
	p.SwitchToPage(componentID(c))
}

// Current returns the top component.
func (p *Pages) Current() Component {
	return p.Top()
}

// StackSize returns the stack depth.
func (p *Pages) StackSize() int {
	return p.Len()
}

// Clear pops every component.
func (p *Pages) Clear() {
	for !p.Empty() {
		p.Pop()
	}
}

func (p *Pages) addAndShow(c Component) {
	p.add(c)
	p.Show(c)
}

func (p *Pages) add(c Component) {
	p.AddPage(componentID(c), c, true, true)
}

func (p *Pages) delete(c Component) {
	p.RemovePage(componentID(c))
}

// StackPushed notifies a new component was pushed.
func (p *Pages) StackPushed(c Component) {
	p.addAndShow(c)
}

// StackPopped notifies a component was removed.
func (p *Pages) StackPopped(o, top Component) {
	p.delete(o)
	if top != nil {
		p.Show(top)
	}
}

// StackTop notifies a new top component.
func (p *Pages) StackTop(top Component) {
	if top != nil {
		p.Show(top)
	}
}

func componentID(c Component) string {
	if c.Name() == "" {
		panic("component has no name")
	}
	return fmt.Sprintf("%s-%p", c.Name(), c)
}
