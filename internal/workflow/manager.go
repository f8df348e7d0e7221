package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/text/language"

	"audex/internal/export"
	"audex/internal/logging"
	"audex/internal/session"
)

// Origin tells how a file reached the workflow.
type Origin int

const (
	// Picked files come from a file dialog and need an access token.
	Picked Origin = iota
	// Dropped files come from drag and drop and are used directly.
	Dropped
)

func (o Origin) String() string {
	if o == Dropped {
		return "dropped"
	}
	return "picked"
}

// ErrNothingToSave is returned by SaveAs when no finished output exists.
var ErrNothingToSave = errors.New("no finished export to save")

// Manager coordinates the session machine and the export controller.
type Manager struct {
	machine    *session.Machine
	controller *export.Controller
	logger     *slog.Logger
	lang       language.Tag
	policy     export.StartPolicy

	mu     sync.Mutex
	format export.Format
	runs   map[string]context.CancelFunc
}

// Option configures a Manager.
type Option func(*Manager)

// WithLanguage selects the language of user-facing messages.
func WithLanguage(tag language.Tag) Option {
	return func(m *Manager) { m.lang = tag }
}

// WithFormat sets the initial export format.
func WithFormat(format export.Format) Option {
	return func(m *Manager) {
		if format.Valid() {
			m.format = format
		}
	}
}

// WithStartPolicy must match the policy the controller was built with.
func WithStartPolicy(policy export.StartPolicy) Option {
	return func(m *Manager) { m.policy = policy }
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager wires a Manager around an existing machine and controller. The
// controller's progress observer must forward to Manager.ObserveProgress;
// NewFromConfig does this.
func NewManager(machine *session.Machine, controller *export.Controller, opts ...Option) *Manager {
	m := &Manager{
		machine:    machine,
		controller: controller,
		logger:     logging.NewNop(),
		lang:       language.Spanish,
		format:     export.DefaultFormat,
		runs:       make(map[string]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.NewComponentLogger(m.logger, "workflow")
	return m
}

// Machine exposes the session state for rendering.
func (m *Manager) Machine() *session.Machine {
	return m.machine
}

// State returns the current session state.
func (m *Manager) State() session.State {
	return m.machine.Current()
}

// Progress returns the controller's progress for the running job.
func (m *Manager) Progress() float64 {
	return m.controller.Progress()
}

// Language returns the language used for messages.
func (m *Manager) Language() language.Tag {
	return m.lang
}

// Format returns the format used by the next export.
func (m *Manager) Format() export.Format {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.format
}

// SetFormat changes the format used by the next export.
func (m *Manager) SetFormat(format export.Format) error {
	if !format.Valid() {
		return export.ErrUnsupportedFormat
	}
	m.mu.Lock()
	m.format = format
	m.mu.Unlock()
	return nil
}

// ObserveProgress forwards controller progress into the session machine.
// Progress for a job the machine no longer tracks is dropped.
func (m *Manager) ObserveProgress(jobID string, fraction float64) {
	if err := m.machine.Progress(jobID, fraction); err != nil && !ignorable(err) {
		m.logger.Debug("progress not applied", logging.JobID(jobID), logging.Error(err))
	}
}

func (m *Manager) track(id string, cancel context.CancelFunc) {
	m.mu.Lock()
	m.runs[id] = cancel
	m.mu.Unlock()
}

func (m *Manager) untrack(id string) {
	m.mu.Lock()
	cancel := m.runs[id]
	delete(m.runs, id)
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (m *Manager) stop(id string) {
	m.mu.Lock()
	cancel := m.runs[id]
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// ignorable reports session errors caused by events that lost a race with a
// cancel or supersede.
func ignorable(err error) bool {
	return errors.Is(err, session.ErrStaleJob) || errors.Is(err, session.ErrInvalidTransition)
}
