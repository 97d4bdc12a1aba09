package diag

import (
	"sync"

	"github.com/standardbeagle/mylang-front/internal/source"
)

// Consumer receives dispatched diagnostics. beginSourceFile/endSourceFile
// bracket a batch scoped to one file (the JSON consumer uses this to open
// and close its array; the text consumer ignores it). Modeled as a small
// capability interface, following the teacher's preference for narrow
// interfaces over a shared base type (source.FileSystem is the closest
// teacher precedent).
type Consumer interface {
	BeginSourceFile(path string)
	Handle(d Diagnostic)
	EndSourceFile()
	Finish()
}

// Counts reports how many diagnostics of each level have been recorded
// since construction or the last Reset.
type Counts struct {
	Notes    int
	Warnings int
	Errors   int
	Fatals   int
}

// Manager is the central diagnostic sink: it resolves ids against the
// static table, applies filters, maintains monotone counters, and fans
// out to every registered consumer in registration order.
//
// Grounded on the teacher's typed-error family (internal/errors/errors.go:
// IndexingError/ParseError/FileError, each carrying a Type, Underlying
// cause, and Timestamp) generalized into one Diagnostic value type plus
// the static Info table above, since spec.md requires a fixed enumerated
// id space rather than ad hoc typed errors per failure site.
type Manager struct {
	mu        sync.Mutex
	consumers []Consumer
	counts    Counts

	sourceMgr *source.SourceManager

	suppressWarnings bool
	suppressNotes    bool
	warningsAsErrors bool
	maxErrors        int // 0 = unlimited

	fatal bool
}

// NewManager creates an empty Manager. sm may be nil if diagnostics never
// need source-line rendering (the text consumer will then print "<unknown>").
func NewManager(sm *source.SourceManager) *Manager {
	return &Manager{sourceMgr: sm}
}

// AddConsumer registers c to receive every subsequent dispatched
// diagnostic, in addition to any already registered.
func (m *Manager) AddConsumer(c Consumer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.consumers = append(m.consumers, c)
}

// SetSuppressWarnings toggles whether Warning-level diagnostics are
// dropped before counting.
func (m *Manager) SetSuppressWarnings(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suppressWarnings = v
}

// SetSuppressNotes toggles whether Note-level diagnostics are dropped
// before counting.
func (m *Manager) SetSuppressNotes(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suppressNotes = v
}

// SetWarningsAsErrors promotes every Warning to Error before counting and
// dispatch.
func (m *Manager) SetWarningsAsErrors(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warningsAsErrors = v
}

// SetMaxErrors caps how many errors are dispatched to consumers; 0 means
// unlimited. Errors past the cap are still counted but not dispatched.
func (m *Manager) SetMaxErrors(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxErrors = n
}

// Report resolves id against the static table, fills in d's Level, and
// runs it through the filter/count/dispatch pipeline described by
// spec.md §4.6.
func (m *Manager) Report(d Diagnostic) {
	info := Lookup(d.ID)
	d.Level = info.Level

	m.mu.Lock()

	if d.Level == Note && m.suppressNotes {
		m.mu.Unlock()
		return
	}
	if d.Level == Warning && m.suppressWarnings {
		m.mu.Unlock()
		return
	}
	if d.Level == Warning && m.warningsAsErrors {
		d.Level = Error
	}

	switch d.Level {
	case Note:
		m.counts.Notes++
	case Warning:
		m.counts.Warnings++
	case Error:
		m.counts.Errors++
	case Fatal:
		m.counts.Fatals++
		m.fatal = true
	}

	capped := m.maxErrors > 0 && m.counts.Errors > m.maxErrors && d.Level == Error
	consumers := m.consumers
	m.mu.Unlock()

	if capped && d.Level == Error {
		return
	}

	// Consumers run outside the lock: they may themselves block on I/O
	// and are assumed to serialize their own output if required.
	for _, c := range consumers {
		c.Handle(d)
	}
}

// ShouldContinue reports whether processing may proceed: false once a
// Fatal has been reported or the error cap has been reached.
func (m *Manager) ShouldContinue() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fatal {
		return false
	}
	if m.maxErrors > 0 && m.counts.Errors >= m.maxErrors {
		return false
	}
	return true
}

// Counts returns a snapshot of the monotone per-level counters.
func (m *Manager) Counts() Counts {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts
}

// Reset zeroes every counter and clears the fatal latch. Consumers and
// filters are left untouched.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts = Counts{}
	m.fatal = false
}

// BeginSourceFile notifies every consumer that diagnostics for path are
// about to be reported.
func (m *Manager) BeginSourceFile(path string) {
	m.mu.Lock()
	consumers := m.consumers
	m.mu.Unlock()
	for _, c := range consumers {
		c.BeginSourceFile(path)
	}
}

// EndSourceFile notifies every consumer that no further diagnostics for
// the current file will be reported.
func (m *Manager) EndSourceFile() {
	m.mu.Lock()
	consumers := m.consumers
	m.mu.Unlock()
	for _, c := range consumers {
		c.EndSourceFile()
	}
}

// Finish notifies every consumer that the manager's lifetime is ending,
// so they may flush and close any owned output streams.
func (m *Manager) Finish() {
	m.mu.Lock()
	consumers := m.consumers
	m.mu.Unlock()
	for _, c := range consumers {
		c.Finish()
	}
}

// Suppression is an RAII-style scoped handle returned by SuppressScope:
// restoring the manager's prior suppressWarnings/suppressNotes settings
// when Restore is called (typically via defer).
type Suppression struct {
	m          *Manager
	prevWarn   bool
	prevNote   bool
}

// SuppressScope suppresses warnings and notes for the duration of a bulk
// operation (e.g. speculative reparsing), returning a handle whose
// Restore undoes exactly this scope's change.
func (m *Manager) SuppressScope() *Suppression {
	m.mu.Lock()
	s := &Suppression{m: m, prevWarn: m.suppressWarnings, prevNote: m.suppressNotes}
	m.suppressWarnings = true
	m.suppressNotes = true
	m.mu.Unlock()
	return s
}

// Restore undoes the suppression applied by SuppressScope.
func (s *Suppression) Restore() {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.suppressWarnings = s.prevWarn
	s.m.suppressNotes = s.prevNote
}
