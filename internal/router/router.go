// Package router keeps the stack of screens the reader UI navigates.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lasi/internal/screen"
)

// PushScreenMsg opens Screen on top of the current one.
type PushScreenMsg struct {
	Screen screen.Screen
}

// PopScreenMsg goes back one screen.
type PopScreenMsg struct{}

// PopToRootMsg goes back to the bottom screen.
type PopToRootMsg struct{}

// ReplaceScreenMsg swaps the active screen, keeping the stack depth.
type ReplaceScreenMsg struct {
	Screen screen.Screen
}

// Router owns the screen stack. The bottom screen is never removed by
// Pop or PopToRoot.
type Router struct {
	stack []screen.Screen
}

func New(initial screen.Screen) *Router {
	return &Router{stack: []screen.Screen{initial}}
}

// Push shows s and returns its Init command.
func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

// Pop closes the active screen and resumes the one below it.
func (r *Router) Pop() tea.Cmd {
	return r.unwind(len(r.stack) - 1)
}

// PopToRoot closes every screen above the bottom one.
func (r *Router) PopToRoot() tea.Cmd {
	return r.unwind(1)
}

// unwind closes screens from the top until depth remain, then resumes
// the revealed screen.
func (r *Router) unwind(depth int) tea.Cmd {
	depth = max(depth, 1)
	if len(r.stack) <= depth {
		return nil
	}
	for len(r.stack) > depth {
		closeScreen(r.drop())
	}
	if res, ok := r.Active().(screen.Resumer); ok {
		return res.Resume()
	}
	return nil
}

// Replace closes the active screen, puts s in its place and returns
// s.Init.
func (r *Router) Replace(s screen.Screen) tea.Cmd {
	if len(r.stack) > 0 {
		closeScreen(r.drop())
	}
	r.stack = append(r.stack, s)
	return s.Init()
}

func (r *Router) drop() screen.Screen {
	top := r.stack[len(r.stack)-1]
	r.stack[len(r.stack)-1] = nil
	r.stack = r.stack[:len(r.stack)-1]
	return top
}

func closeScreen(s screen.Screen) {
	if c, ok := s.(screen.Closer); ok {
		c.Close()
	}
}

// Active returns the top screen, or nil for an empty stack.
func (r *Router) Active() screen.Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

func (r *Router) Depth() int {
	return len(r.stack)
}

// Update applies navigation messages and hands everything else to the
// active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case PopScreenMsg:
		return r.Pop()
	case PopToRootMsg:
		return r.PopToRoot()
	case ReplaceScreenMsg:
		return r.Replace(msg.Screen)
	}

	if len(r.stack) == 0 {
		return nil
	}
	next, cmd := r.Active().Update(msg)
	r.stack[len(r.stack)-1] = next
	return cmd
}

// View renders the active screen.
func (r *Router) View(width, height int) string {
	if s := r.Active(); s != nil {
		return s.View(width, height)
	}
	return ""
}
