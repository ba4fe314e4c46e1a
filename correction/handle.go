package correction

import "sync/atomic"

// Handle publishes the active Model of a display.
//
// Readers call Load once per frame and use the returned model for every
// pixel of that frame, so a concurrent Swap never mixes two models within
// one frame. The zero Handle holds None.
type Handle struct {
	p atomic.Pointer[boxed]
}

// boxed lets interface values go through atomic.Pointer.
type boxed struct {
	m Model
}

// NewHandle returns a Handle holding m. A nil m means None.
func NewHandle(m Model) *Handle {
	h := &Handle{}
	h.Store(m)
	return h
}

// Load returns the current model. It never returns nil.
func (h *Handle) Load() Model {
	if b := h.p.Load(); b != nil {
		return b.m
	}
	return None{}
}

// Store replaces the current model. A nil m means None.
func (h *Handle) Store(m Model) {
	h.p.Store(box(m))
}

// Swap replaces the current model and returns the previous one.
func (h *Handle) Swap(m Model) Model {
	if old := h.p.Swap(box(m)); old != nil {
		return old.m
	}
	return None{}
}

func box(m Model) *boxed {
	if m == nil {
		m = None{}
	}
	return &boxed{m: m}
}
