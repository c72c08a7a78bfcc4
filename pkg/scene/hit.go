package scene

import (
	"sync"
	"time"
)

// DefaultDoubleClickTimeout is the window in which a second activation counts as a double click.
const DefaultDoubleClickTimeout = 500 * time.Millisecond

// Timer is a stoppable pending callback
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. SystemClock is backed by time.AfterFunc.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock is the wall-clock Clock.
var SystemClock Clock = systemClock{}

type clickState int

const (
	stateIdle clickState = iota
	statePending
)

// Handler disambiguates single and double activation of one shape.
//
// The first activation fires OnClick immediately and opens a window of
// Timeout; a second activation inside the window fires OnDoubleClick instead
// and closes it. Each shape owns its own Handler.
type Handler struct {
	OnClick       func()
	OnDoubleClick func()
	Timeout       time.Duration
	Clock         Clock

	mu    sync.Mutex
	state clickState
	timer Timer
	gen   uint64
}

// NewHandler returns an idle handler. A zero timeout selects DefaultDoubleClickTimeout
// and a nil clock selects SystemClock.
func NewHandler(onClick, onDoubleClick func(), timeout time.Duration, clock Clock) *Handler {
	if timeout <= 0 {
		timeout = DefaultDoubleClickTimeout
	}
	if clock == nil {
		clock = SystemClock
	}
	return &Handler{
		OnClick:       onClick,
		OnDoubleClick: onDoubleClick,
		Timeout:       timeout,
		Clock:         clock,
	}
}

// Pending reports whether the handler is inside a double-click window.
func (h *Handler) Pending() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state == statePending
}

// Activate delivers one click to the shape. Callbacks run on the caller's
// goroutine after the internal lock is released.
func (h *Handler) Activate() {
	h.mu.Lock()
	if h.state == statePending {
		h.stopLocked()
		h.state = stateIdle
		cb := h.OnDoubleClick
		h.mu.Unlock()
		if cb != nil {
			cb()
		}
		return
	}

	h.state = statePending
	h.gen++
	gen := h.gen
	h.timer = h.Clock.AfterFunc(h.Timeout, func() { h.expire(gen) })
	cb := h.OnClick
	h.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// Cancel stops any pending window and returns the handler to idle.
func (h *Handler) Cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopLocked()
	h.state = stateIdle
}

func (h *Handler) stopLocked() {
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	// invalidate a callback that already fired but has not taken the lock yet
	h.gen++
}

func (h *Handler) expire(gen uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if gen != h.gen {
		return
	}
	h.state = stateIdle
	h.timer = nil
}

// HitTest returns the topmost node under the absolute point (x, y) that has
// a Handler, or nil. Later siblings paint over earlier ones and win.
func HitTest(root *Node, x, y float64) *Node {
	if root == nil {
		return nil
	}
	children := root.children
	for i := len(children) - 1; i >= 0; i-- {
		if hit := HitTest(children[i], x, y); hit != nil {
			return hit
		}
	}
	if root.Handler != nil && root.Contains(x, y) {
		return root
	}
	return nil
}

// Activate hit-tests (x, y) and delivers a click to the node found.
func Activate(root *Node, x, y float64) *Node {
	hit := HitTest(root, x, y)
	if hit != nil {
		hit.Handler.Activate()
	}
	return hit
}
