package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/OpenTraceLab/edaview/pkg/design"
	"github.com/OpenTraceLab/edaview/pkg/viewer"
)

// StateSnapshot captures a copy of the state data for rendering without
// requiring the UI to hold locks while laying out widgets.
type StateSnapshot struct {
	DesignName string
	Loading    bool
	LastError  error
	Status     string

	Selected *viewer.Entity
	Details  *viewer.Details

	RightPanelVisible bool
	AppVersion        string

	Logs []string

	LastUpdated time.Time
}

// AppState tracks the mutable state shared between the Gio event loop and
// background goroutines loading designs or writing exports. It is the
// engine's Host and Selection.
type AppState struct {
	mu sync.RWMutex

	designName string
	index      *design.Index
	loading    bool

	lastError error
	status    string

	selected *viewer.Entity
	details  *viewer.Details

	rightPanelVisible bool
	appVersion        string

	logs     []string
	logLimit int

	lastUpdated time.Time
	onChange    func()
}

var (
	_ viewer.Host      = (*AppState)(nil)
	_ viewer.Selection = (*AppState)(nil)
)

// NewState returns a baseline AppState with safe defaults.
func NewState() *AppState {
	return &AppState{
		logLimit:    200,
		status:      "Idle",
		appVersion:  "dev",
		lastUpdated: time.Now(),
	}
}

// SetOnChange registers fn to be called after every mutation, outside the lock.
func (s *AppState) SetOnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *AppState) update(fn func()) {
	s.mu.Lock()
	fn()
	s.lastUpdated = time.Now()
	cb := s.onChange
	s.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// Snapshot returns a copy of the mutable state for rendering.
func (s *AppState) Snapshot() StateSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	logCopy := make([]string, len(s.logs))
	copy(logCopy, s.logs)

	snap := StateSnapshot{
		DesignName:        s.designName,
		Loading:           s.loading,
		LastError:         s.lastError,
		Status:            s.status,
		RightPanelVisible: s.rightPanelVisible,
		AppVersion:        s.appVersion,
		Logs:              logCopy,
		LastUpdated:       s.lastUpdated,
	}
	if s.selected != nil {
		sel := *s.selected
		snap.Selected = &sel
	}
	if s.details != nil {
		det := *s.details
		det.Properties = append([]viewer.Property(nil), s.details.Properties...)
		snap.Details = &det
	}
	return snap
}

// SetDesign records the displayed design and drops any selection from the previous one.
func (s *AppState) SetDesign(d *design.Design) {
	s.update(func() {
		s.designName = d.Name
		s.index = design.NewIndex(d)
		s.selected = nil
		s.details = nil
		s.rightPanelVisible = false
		s.lastError = nil
		s.status = fmt.Sprintf("Loaded %s", d.Name)
	})
}

// SetLoading is called by the engine around every reconcile pass.
func (s *AppState) SetLoading(loading bool) {
	s.update(func() { s.loading = loading })
}

// ClearSelection is called by the engine when the scene is reset.
func (s *AppState) ClearSelection() {
	s.update(func() {
		s.selected = nil
		s.details = nil
		s.rightPanelVisible = false
	})
}

// ResetDirty is called by the engine after a pass consumed the visibility changes.
func (s *AppState) ResetDirty() {
	viewer.Logger().Debug("visibility changes applied")
}

// ShowError surfaces a failed pass.
func (s *AppState) ShowError(err error) {
	s.update(func() {
		s.lastError = err
		s.status = "Error: " + err.Error()
		s.appendLocked("[ERROR] " + err.Error())
	})
}

// Select records a clicked entity.
func (s *AppState) Select(e viewer.Entity) {
	s.update(func() {
		s.selected = &e
		s.status = e.Label()
	})
}

// Inspect opens the details panel for a double-clicked entity.
func (s *AppState) Inspect(e viewer.Entity) {
	s.update(func() {
		s.selected = &e
		if s.index == nil {
			return
		}
		d := viewer.Describe(s.index, e)
		s.details = &d
		s.rightPanelVisible = true
	})
}

// CloseInspector hides the details panel, keeping the selection.
func (s *AppState) CloseInspector() {
	s.update(func() { s.rightPanelVisible = false })
}

// SetStatus updates the user-facing status message.
func (s *AppState) SetStatus(status string) {
	s.update(func() { s.status = status })
}

// SetAppVersion records the running application version string.
func (s *AppState) SetAppVersion(version string) {
	s.update(func() {
		if version == "" {
			version = "dev"
		}
		s.appVersion = version
	})
}

// AppendLog appends a log message, trimming the oldest entries past the limit.
func (s *AppState) AppendLog(msg string) {
	s.update(func() { s.appendLocked(msg) })
}

// Logf appends a timestamped log line.
func (s *AppState) Logf(format string, args ...any) {
	prefix := time.Now().Format(time.Stamp)
	s.AppendLog(fmt.Sprintf("[%s] %s", prefix, fmt.Sprintf(format, args...)))
}

func (s *AppState) appendLocked(msg string) {
	s.logs = append(s.logs, msg)
	if s.logLimit > 0 && len(s.logs) > s.logLimit {
		offset := len(s.logs) - s.logLimit
		s.logs = append([]string(nil), s.logs[offset:]...)
	}
}
