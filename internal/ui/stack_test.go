package ui_test

import (
	"context"
	"testing"

	"github.com/derailed/tview"
	"github.com/spanlens/spanlens/internal/ui"
	"github.com/stretchr/testify/assert"
)

type fakeComponent struct {
	*tview.Box

	name    string
	stopped int
}

func newFakeComponent(name string) *fakeComponent {
	return &fakeComponent{Box: tview.NewBox(), name: name}
}

func (c *fakeComponent) Name() string             { return c.name }
func (*fakeComponent) Init(context.Context) error { return nil }
func (*fakeComponent) Start()                     {}
func (c *fakeComponent) Stop()                    { c.stopped++ }
func (*fakeComponent) Hints() ui.MenuHints        { return nil }

type stackRecorder struct {
	events []string
}

func (r *stackRecorder) StackPushed(c ui.Component) {
	r.events = append(r.events, "push:"+c.Name())
}

func (r *stackRecorder) StackPopped(o, top ui.Component) {
	e := "pop:" + o.Name()
	if top != nil {
		e += ">" + top.Name()
	}
	r.events = append(r.events, e)
}

func (r *stackRecorder) StackTop(top ui.Component) {
	r.events = append(r.events, "top:"+top.Name())
}

func TestStack(t *testing.T) {
	s := ui.NewStack()
	var r stackRecorder
	s.AddListener(&r)

	_, ok := s.Pop()
	assert.False(t, ok)
	assert.Nil(t, s.Top())

	a, b := newFakeComponent("spans"), newFakeComponent("describe")
	s.Push(a)
	s.Push(b)
	assert.Equal(t, 1, a.stopped)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"spans", "describe"}, s.Flatten())

	c, ok := s.Pop()
	assert.True(t, ok)
	assert.Equal(t, "describe", c.Name())
	assert.Equal(t, 1, b.stopped)
	assert.Equal(t, a, s.Top())

	var late stackRecorder
	s.AddListener(&late)
	assert.Equal(t, []string{"top:spans"}, late.events)

	s.Pop()
	assert.True(t, s.Empty())
	assert.Equal(t, []string{"push:spans", "push:describe", "pop:describe>spans", "pop:spans"}, r.events)
}

func TestPagesClear(t *testing.T) {
	p := ui.NewPages()
	p.Push(newFakeComponent("spans"))
	p.Push(newFakeComponent("help"))
	assert.Equal(t, 2, p.StackSize())
	assert.Equal(t, "help", p.Current().Name())

	p.Clear()
	assert.Equal(t, 0, p.StackSize())
	assert.Nil(t, p.Current())
}
