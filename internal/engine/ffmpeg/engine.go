package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"audex/internal/export"
	"audex/internal/logging"
	"audex/internal/services"
)

var commandContext = exec.CommandContext

// DefaultCancelGrace is how long ffmpeg may take to exit after SIGINT.
const DefaultCancelGrace = 5 * time.Second

const stderrTail = 5

// Option configures an Engine.
type Option func(*Engine)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(e *Engine) {
		if binary != "" {
			e.binary = binary
		}
	}
}

// WithCancelGrace sets the SIGINT-to-SIGKILL delay.
func WithCancelGrace(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.grace = d
		}
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine runs ffmpeg processes.
type Engine struct {
	binary string
	grace  time.Duration
	logger *slog.Logger
}

// New constructs an Engine using defaults.
func New(opts ...Option) *Engine {
	e := &Engine{binary: "ffmpeg", grace: DefaultCancelGrace, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.NewComponentLogger(e.logger, "ffmpeg")
	return e
}

// Begin starts ffmpeg for req and returns immediately.
func (e *Engine) Begin(ctx context.Context, req export.Request) (export.Handle, error) {
	args, err := BuildArgs(req)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "ffmpeg", "args", "", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	cmd := commandContext(runCtx, e.binary, args...) //nolint:gosec
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = e.grace

	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	logger := logging.WithContext(ctx, e.logger)
	logger.Debug("starting ffmpeg", logging.String("args", strings.Join(args, " ")))

	if err := cmd.Start(); err != nil {
		cancel()
		_ = stdoutW.Close()
		_ = stderrW.Close()
		return nil, services.Wrap(services.ErrExternalTool, "ffmpeg", "start", e.binary, err)
	}

	h := &handle{
		cancel:   cancel,
		duration: req.Duration,
		done:     make(chan struct{}),
		logger:   logger,
	}

	var readers errgroup.Group
	readers.Go(func() error {
		return parseProgress(stdoutR, h.setPosition)
	})
	readers.Go(func() error {
		return h.collectStderr(stderrR)
	})

	go func() {
		waitErr := cmd.Wait()
		_ = stdoutW.Close()
		_ = stderrW.Close()
		readErr := readers.Wait()
		h.finish(runCtx, waitErr, readErr)
	}()
	return h, nil
}

type handle struct {
	cancel    context.CancelFunc
	duration  time.Duration
	logger    *slog.Logger
	progress  atomic.Uint64
	requested atomic.Bool

	mu      sync.Mutex
	tail    []string
	outcome export.Outcome
	done    chan struct{}
}

func (h *handle) setPosition(position time.Duration, ended bool) {
	h.progress.Store(math.Float64bits(fraction(position, h.duration, ended)))
}

// Progress implements export.Handle.
func (h *handle) Progress() float64 {
	return math.Float64frombits(h.progress.Load())
}

// Cancel implements export.Handle.
func (h *handle) Cancel() {
	h.requested.Store(true)
	h.cancel()
}

// Wait implements export.Handle.
func (h *handle) Wait() export.Outcome {
	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.outcome
}

func (h *handle) collectStderr(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		h.mu.Lock()
		h.tail = append(h.tail, line)
		if len(h.tail) > stderrTail {
			h.tail = h.tail[len(h.tail)-stderrTail:]
		}
		h.mu.Unlock()
	}
	return scanner.Err()
}

func (h *handle) finish(ctx context.Context, waitErr, readErr error) {
	defer close(h.done)
	defer h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	switch {
	case h.requested.Load() || ctx.Err() != nil:
		h.outcome = export.Outcome{Status: export.StatusCancelled, Err: waitErr}
	case waitErr == nil:
		h.setPosition(0, true)
		h.outcome = export.Outcome{Status: export.StatusCompleted}
		if readErr != nil {
			h.logger.Debug("ffmpeg output read error", logging.Error(readErr))
		}
	default:
		reason := lastLine(h.tail)
		if reason == "" {
			reason = waitErr.Error()
		}
		h.outcome = export.Outcome{
			Status: export.StatusFailed,
			Reason: reason,
			Err:    annotateErrno(waitErr, h.tail),
		}
	}
}

func lastLine(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}

// annotateErrno attaches the errno ffmpeg printed so callers can classify
// disk-full and permission failures.
func annotateErrno(err error, tail []string) error {
	joined := strings.ToLower(strings.Join(tail, "\n"))
	switch {
	case strings.Contains(joined, "no space left on device"):
		return errors.Join(err, unix.ENOSPC)
	case strings.Contains(joined, "disk quota exceeded"):
		return errors.Join(err, unix.EDQUOT)
	case strings.Contains(joined, "permission denied"):
		return errors.Join(err, unix.EACCES)
	case strings.Contains(joined, "read-only file system"):
		return errors.Join(err, unix.EROFS)
	default:
		return err
	}
}

var _ export.Engine = (*Engine)(nil)
