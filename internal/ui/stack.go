package ui

import "sync"

// StackListener observes a component stack.
type StackListener interface {
	// StackPushed fires after c became the top.
	StackPushed(c Component)

	// StackPopped fires after old was removed; top may be nil.
	StackPopped(old, top Component)

	// StackTop reports the current top to a new listener.
	StackTop(top Component)
}

// Stack holds the views the user drilled into, most recent last.
type Stack struct {
	components []Component
	listeners  []StackListener
	mx         sync.RWMutex
}

// NewStack returns an empty stack.
func NewStack() *Stack {
	return &Stack{}
}

// Flatten returns the component names, bottom first.
func (s *Stack) Flatten() []string {
	s.mx.RLock()
	defer s.mx.RUnlock()

	ss := make([]string, 0, len(s.components))
	for _, c := range s.components {
		ss = append(ss, c.Name())
	}

	return ss
}

// AddListener registers l and reports the current top, if any.
func (s *Stack) AddListener(l StackListener) {
	s.mx.Lock()
	s.listeners = append(s.listeners, l)
	s.mx.Unlock()

	if top := s.Top(); top != nil {
		l.StackTop(top)
	}
}

// Push stops the current top and pushes c.
func (s *Stack) Push(c Component) {
	if top := s.Top(); top != nil {
		top.Stop()
	}

	s.mx.Lock()
	s.components = append(s.components, c)
	ll := s.snapshot()
	s.mx.Unlock()

	for _, l := range ll {
		l.StackPushed(c)
	}
}

// Pop stops and removes the top component.
func (s *Stack) Pop() (Component, bool) {
	s.mx.Lock()
	n := len(s.components)
	if n == 0 {
		s.mx.Unlock()
		return nil, false
	}
	c := s.components[n-1]
	s.components[n-1] = nil
	s.components = s.components[:n-1]
	var top Component
	if n > 1 {
		top = s.components[n-2]
	}
	ll := s.snapshot()
	s.mx.Unlock()

	c.Stop()
	for _, l := range ll {
		l.StackPopped(c, top)
	}

	return c, true
}

// Len returns the stack depth.
func (s *Stack) Len() int {
	s.mx.RLock()
	defer s.mx.RUnlock()

	return len(s.components)
}

// Empty returns true if the stack holds no component.
func (s *Stack) Empty() bool {
	return s.Len() == 0
}

// Top returns the top component or nil.
func (s *Stack) Top() Component {
	s.mx.RLock()
	defer s.mx.RUnlock()

	if len(s.components) == 0 {
		return nil
	}

	return s.components[len(s.components)-1]
}

// snapshot copies the listeners; callers hold the lock.
func (s *Stack) snapshot() []StackListener {
	return append([]StackListener(nil), s.listeners...)
}
