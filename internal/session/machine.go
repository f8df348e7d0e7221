package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"

	"audex/internal/logging"
)

var (
	// ErrInvalidTransition is returned for events the current state does not accept.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrStaleJob is returned for events that name a job other than the current one.
	ErrStaleJob = errors.New("stale job event")
)

// Event names an input to the machine.
type Event string

const (
	EventBegin     Event = "begin"
	EventValidated Event = "validated"
	EventProgress  Event = "progress"
	EventSucceed   Event = "succeed"
	EventFail      Event = "fail"
	EventCancel    Event = "cancel"
	EventReset     Event = "reset"
	EventDismiss   Event = "dismiss"
	EventSaveFail  Event = "save_failed"
)

// TransitionError describes a rejected event.
type TransitionError struct {
	Event Event
	From  Kind
	JobID string
	Err   error
}

func (e *TransitionError) Error() string {
	if e.JobID != "" {
		return fmt.Sprintf("%s in %s (job %s): %v", e.Event, e.From, e.JobID, e.Err)
	}
	return fmt.Sprintf("%s in %s: %v", e.Event, e.From, e.Err)
}

func (e *TransitionError) Unwrap() error { return e.Err }

const watchBuffer = 16

// Machine is safe for concurrent use. Observers are called in transition
// order on the goroutine that raised the event; they must not raise events
// themselves.
type Machine struct {
	logger *slog.Logger

	mu        sync.Mutex
	state     State
	observers map[uint64]func(State)
	nextID    uint64

	deliverMu sync.Mutex
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New returns a Machine in Idle.
func New(opts ...Option) *Machine {
	m := &Machine{
		logger:    logging.NewNop(),
		observers: make(map[uint64]func(State)),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.NewComponentLogger(m.logger, "session")
	return m
}

// Current returns the present state.
func (m *Machine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers fn for every accepted transition and returns a function
// that removes it.
func (m *Machine) Subscribe(fn func(State)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.observers[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.observers, id)
			m.mu.Unlock()
		})
	}
}

// Watch streams states until ctx is done. The current state is sent first.
// A slow reader loses intermediate states, never the most recent one.
func (m *Machine) Watch(ctx context.Context) <-chan State {
	ch := make(chan State, watchBuffer)
	var (
		mu     sync.Mutex
		closed bool
	)
	send := func(s State) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		for {
			select {
			case ch <- s:
				return
			default:
			}
			select {
			case <-ch:
			default:
			}
		}
	}

	m.mu.Lock()
	send(m.state)
	id := m.nextID
	m.nextID++
	m.observers[id] = send
	m.mu.Unlock()
	unsubscribe := func() {
		m.mu.Lock()
		delete(m.observers, id)
		m.mu.Unlock()
	}

	go func() {
		<-ctx.Done()
		unsubscribe()
		mu.Lock()
		closed = true
		close(ch)
		mu.Unlock()
	}()
	return ch
}

// Begin starts validating a new job. Idle -> Validating.
func (m *Machine) Begin(jobID string) error {
	return m.apply(EventBegin, "", func(s State) (State, error) {
		if s.Kind != KindIdle {
			return s, ErrInvalidTransition
		}
		if jobID == "" {
			return s, fmt.Errorf("%w: empty job id", ErrInvalidTransition)
		}
		return State{Kind: KindValidating, JobID: jobID}, nil
	})
}

// Validated moves the job into Processing(0). Validating -> Processing.
func (m *Machine) Validated(jobID string) error {
	return m.apply(EventValidated, jobID, func(s State) (State, error) {
		if s.Kind != KindValidating {
			return s, ErrInvalidTransition
		}
		return State{Kind: KindProcessing, JobID: jobID}, nil
	})
}

// Progress raises the progress of a Processing job. Lower values are ignored
// without error, so the reported progress never decreases.
func (m *Machine) Progress(jobID string, value float64) error {
	return m.apply(EventProgress, jobID, func(s State) (State, error) {
		if s.Kind != KindProcessing {
			return s, ErrInvalidTransition
		}
		if math.IsNaN(value) {
			return s, nil
		}
		value = math.Min(math.Max(value, 0), 1)
		if value <= s.Progress {
			return s, nil
		}
		s.Progress = value
		return s, nil
	})
}

// Succeed finishes a Processing job. Processing -> Done(path).
func (m *Machine) Succeed(jobID, outputPath string) error {
	return m.apply(EventSucceed, jobID, func(s State) (State, error) {
		if s.Kind != KindProcessing {
			return s, ErrInvalidTransition
		}
		return State{Kind: KindDone, JobID: jobID, Progress: 1, OutputPath: outputPath}, nil
	})
}

// Fail ends a Validating or Processing job with a user-facing message.
func (m *Machine) Fail(jobID, message string) error {
	return m.apply(EventFail, jobID, func(s State) (State, error) {
		if s.Kind != KindValidating && s.Kind != KindProcessing {
			return s, ErrInvalidTransition
		}
		return State{Kind: KindError, JobID: jobID, Message: message}, nil
	})
}

// Cancel abandons a Processing job. Processing -> Idle.
func (m *Machine) Cancel(jobID string) error {
	return m.apply(EventCancel, jobID, func(s State) (State, error) {
		if s.Kind != KindProcessing {
			return s, ErrInvalidTransition
		}
		return State{Kind: KindIdle}, nil
	})
}

// SaveFailed reports that copying a finished output elsewhere failed.
// Done -> Error.
func (m *Machine) SaveFailed(jobID, message string) error {
	return m.apply(EventSaveFail, jobID, func(s State) (State, error) {
		if s.Kind != KindDone {
			return s, ErrInvalidTransition
		}
		return State{Kind: KindError, JobID: jobID, Message: message}, nil
	})
}

// Reset leaves Done. Done -> Idle.
func (m *Machine) Reset() error {
	return m.apply(EventReset, "", func(s State) (State, error) {
		if s.Kind != KindDone {
			return s, ErrInvalidTransition
		}
		return State{Kind: KindIdle}, nil
	})
}

// Dismiss clears an error. Error -> Idle.
func (m *Machine) Dismiss() error {
	return m.apply(EventDismiss, "", func(s State) (State, error) {
		if s.Kind != KindError {
			return s, ErrInvalidTransition
		}
		return State{Kind: KindIdle}, nil
	})
}

// apply runs step against the current state. A non-empty jobID must match the
// tracked job.
func (m *Machine) apply(event Event, jobID string, step func(State) (State, error)) error {
	m.mu.Lock()
	from := m.state
	if jobID != "" && jobID != from.JobID {
		m.mu.Unlock()
		m.logger.Debug("discarding stale session event",
			logging.String("event", string(event)),
			logging.JobID(jobID),
			logging.String("current_job", from.JobID),
		)
		return &TransitionError{Event: event, From: from.Kind, JobID: jobID, Err: ErrStaleJob}
	}
	next, err := step(from)
	if err != nil {
		m.mu.Unlock()
		return &TransitionError{Event: event, From: from.Kind, JobID: jobID, Err: err}
	}
	if next == from {
		m.mu.Unlock()
		return nil
	}
	next.Generation = from.Generation + 1
	m.state = next
	observers := make([]func(State), 0, len(m.observers))
	for _, id := range sortedKeys(m.observers) {
		observers = append(observers, m.observers[id])
	}
	m.deliverMu.Lock()
	m.mu.Unlock()
	defer m.deliverMu.Unlock()

	if next.Kind != from.Kind {
		m.logger.Debug("session transition",
			logging.String("event", string(event)),
			logging.String("from", from.Kind.String()),
			logging.String("to", next.Kind.String()),
			logging.JobID(next.JobID),
		)
	}
	for _, fn := range observers {
		fn(next)
	}
	return nil
}

func sortedKeys(observers map[uint64]func(State)) []uint64 {
	keys := make([]uint64, 0, len(observers))
	for id := range observers {
		keys = append(keys, id)
	}
	slices.Sort(keys)
	return keys
}
