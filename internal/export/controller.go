package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"audex/internal/config"
	"audex/internal/fileutil"
	"audex/internal/logging"
	"audex/internal/preflight"
	"audex/internal/services"
)

// DefaultProgressInterval is how often a running engine is sampled.
const DefaultProgressInterval = 100 * time.Millisecond

// StartPolicy decides what Export does while another job is active.
type StartPolicy int

const (
	// StartReject fails the new export with ErrJobAlreadyActive.
	StartReject StartPolicy = iota
	// StartSupersede cancels the active job and starts the new one.
	StartSupersede
)

func (p StartPolicy) String() string {
	if p == StartSupersede {
		return config.ConcurrentStartSupersede
	}
	return config.ConcurrentStartReject
}

// ParseStartPolicy maps the configuration value onto a StartPolicy.
func ParseStartPolicy(value string) (StartPolicy, error) {
	switch value {
	case "", config.ConcurrentStartReject:
		return StartReject, nil
	case config.ConcurrentStartSupersede:
		return StartSupersede, nil
	default:
		return StartReject, fmt.Errorf("unknown start policy %q", value)
	}
}

// ProgressFunc observes progress for a job. It runs on the sampling
// goroutine and must not call Controller.Cancel synchronously.
type ProgressFunc func(jobID string, fraction float64)

// Option configures a Controller.
type Option func(*Controller)

// WithWorkDir sets the directory outputs are written to.
func WithWorkDir(dir string) Option {
	return func(c *Controller) {
		if dir != "" {
			c.workDir = dir
		}
	}
}

// WithProgressInterval overrides the sampling period.
func WithProgressInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithStartPolicy selects the concurrent-start behaviour.
func WithStartPolicy(p StartPolicy) Option {
	return func(c *Controller) { c.policy = p }
}

// WithMinFreeBytes adds headroom to the free-space preflight.
func WithMinFreeBytes(n uint64) Option {
	return func(c *Controller) { c.minFree = n }
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithProgressFunc registers the progress observer.
func WithProgressFunc(fn ProgressFunc) Option {
	return func(c *Controller) { c.onProgress = fn }
}

// Controller runs at most one export at a time.
type Controller struct {
	engine     Engine
	tracks     TrackLoader
	workDir    string
	interval   time.Duration
	policy     StartPolicy
	minFree    uint64
	logger     *slog.Logger
	onProgress ProgressFunc

	// beforeFinish runs between a successful engine outcome and finish.
	beforeFinish func()

	samplerMu sync.Mutex
	sampler   *logging.ProgressSampler

	mu       sync.Mutex
	job      *job
	draining *job
	progress float64
}

type job struct {
	id     string
	source string
	format Format
	output string
	ctx    context.Context
	cancel context.CancelFunc
	after  []*job
	done   chan struct{}

	// guarded by Controller.mu
	handle    Handle
	poller    *poller
	cancelled bool
	finished  bool
}

type poller struct {
	once   sync.Once
	stop   chan struct{}
	exited chan struct{}
}

func newPoller() *poller {
	return &poller{stop: make(chan struct{}), exited: make(chan struct{})}
}

// Stop ends sampling and waits for the sampling goroutine to exit.
func (p *poller) Stop() {
	if p == nil {
		return
	}
	p.once.Do(func() { close(p.stop) })
	<-p.exited
}

// New constructs a Controller.
func New(engine Engine, tracks TrackLoader, opts ...Option) *Controller {
	c := &Controller{
		engine:   engine,
		tracks:   tracks,
		workDir:  os.TempDir(),
		interval: DefaultProgressInterval,
		logger:   logging.NewNop(),
		sampler:  logging.NewProgressSampler(10),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "export")
	return c
}

// Validate reports whether source is a supported video.
func (c *Controller) Validate(source string) bool {
	return Validate(source)
}

// Progress returns the current job's progress, 0 when idle or after a failure
// or cancel, and 1 after a success until the next job starts.
func (c *Controller) Progress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress
}

// Active returns the id of the running job.
func (c *Controller) Active() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.job == nil {
		return "", false
	}
	return c.job.id, true
}

// Export extracts the audio of source into the work directory and returns
// the output path. It blocks until the job reaches a terminal outcome. A job
// id already present on ctx (services.WithJobID) is reused; otherwise a new
// one is generated.
func (c *Controller) Export(ctx context.Context, source string, format Format) (string, error) {
	if !format.Valid() {
		return "", services.Wrap(services.ErrValidation, "export", "format", string(format), nil)
	}
	if err := validateSource(source); err != nil {
		return "", err
	}

	j, err := c.reserve(ctx, source, format)
	if err != nil {
		return "", err
	}
	defer close(j.done)

	logger := logging.WithContext(j.ctx, c.logger)
	logger.Info("export started",
		logging.Source(j.source),
		logging.Output(j.output),
	)

	started := time.Now()
	err = c.run(j, logger)
	if err == nil {
		if c.beforeFinish != nil {
			c.beforeFinish()
		}
		err = c.finish(j)
	}
	if err != nil {
		c.fail(j)
		c.logFailure(logger, err)
		return "", err
	}
	logger.Info("export completed",
		logging.Output(j.output),
		logging.Duration("elapsed", time.Since(started)),
	)
	return j.output, nil
}

// Cancel stops the active job, if any. The job slot is freed at once; the
// blocked Export call returns ExportFailed("cancelled") once the engine
// acknowledges. Calling Cancel with no active job is a no-op.
func (c *Controller) Cancel() {
	c.mu.Lock()
	j := c.job
	if j == nil {
		c.mu.Unlock()
		return
	}
	c.job = nil
	c.draining = j
	c.progress = 0
	c.mu.Unlock()

	logging.WithContext(j.ctx, c.logger).Info("export cancel requested")
	c.abort(j)
}

func (c *Controller) reserve(ctx context.Context, source string, format Format) (*job, error) {
	id, ok := services.JobIDFromContext(ctx)
	if !ok {
		id = uuid.NewString()
	}
	jobCtx, cancel := context.WithCancel(services.WithFormat(services.WithJobID(ctx, id), string(format)))
	j := &job{
		id:     id,
		source: source,
		format: format,
		output: filepath.Join(c.workDir, OutputName(source, format)),
		ctx:    jobCtx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	c.mu.Lock()
	if err := ctx.Err(); err != nil {
		c.mu.Unlock()
		cancel()
		return nil, failed(ReasonCancelled, err)
	}
	prev := c.job
	if prev != nil && c.policy == StartReject {
		c.mu.Unlock()
		cancel()
		return nil, ErrJobAlreadyActive
	}
	if prev != nil {
		j.after = append(j.after, prev)
	}
	if c.draining != nil {
		j.after = append(j.after, c.draining)
	}
	c.job = j
	c.draining = prev
	c.progress = 0
	c.mu.Unlock()

	if prev != nil {
		logging.WithContext(jobCtx, c.logger).Info("superseding active export",
			logging.String("superseded_job", prev.id),
		)
		c.abort(prev)
	}
	return j, nil
}

func (c *Controller) run(j *job, logger *slog.Logger) error {
	for _, prev := range j.after {
		select {
		case <-prev.done:
		case <-j.ctx.Done():
			return failed(ReasonCancelled, j.ctx.Err())
		}
	}
	if c.cancelled(j) {
		return failed(ReasonCancelled, nil)
	}

	info, err := c.tracks.LoadTracks(j.ctx, j.source)
	if err != nil {
		if c.cancelled(j) || errors.Is(err, context.Canceled) {
			return failed(ReasonCancelled, err)
		}
		return classifyFS(err)
	}
	if len(info.Tracks) == 0 {
		return ErrNoAudioTrack
	}
	primary := info.Primary
	if primary == (AudioTrack{}) {
		primary = info.Tracks[0]
	}
	logger.Debug("audio tracks loaded",
		logging.Int("tracks", len(info.Tracks)),
		logging.String("primary", primary.Summary),
		logging.Duration("duration", info.Duration),
	)

	if err := fileutil.RemoveIfExists(j.output); err != nil {
		return classifyFS(err)
	}
	if err := preflight.EnsureWritable(c.workDir); err != nil {
		return classifyFS(err)
	}
	preset := j.format.Preset()
	need := c.minFree + preset.EstimateBytes(info.Duration, primary.SampleRate, primary.Channels)
	if err := preflight.EnsureFreeSpace(c.workDir, need); err != nil {
		return classifyFS(err)
	}

	handle, err := c.engine.Begin(j.ctx, Request{
		Source:      j.source,
		Preset:      preset.ID,
		OutputType:  preset.ContainerType,
		OutputPath:  j.output,
		AudioOnly:   true,
		AudioStream: primary.Index,
		SourceCodec: primary.Codec,
		Duration:    info.Duration,
	})
	if err != nil {
		if c.cancelled(j) {
			return failed(ReasonCancelled, err)
		}
		if classified := classifyFS(err); classified != err {
			return classified
		}
		return failed(err.Error(), err)
	}

	p := newPoller()
	c.mu.Lock()
	j.handle = handle
	j.poller = p
	cancelled := j.cancelled
	c.mu.Unlock()
	go c.poll(j, handle, p)
	if cancelled {
		handle.Cancel()
	}

	outcome := handle.Wait()
	p.Stop()

	if c.cancelled(j) {
		return failed(ReasonCancelled, outcome.Err)
	}
	switch outcome.Status {
	case StatusCompleted:
		return nil
	case StatusFailed:
		if outcome.Err != nil {
			if classified := classifyFS(outcome.Err); classified != outcome.Err {
				return classified
			}
		}
		reason := outcome.Reason
		if reason == "" && outcome.Err != nil {
			reason = outcome.Err.Error()
		}
		return failed(reason, outcome.Err)
	case StatusCancelled:
		return failed(ReasonCancelled, outcome.Err)
	default:
		return failed(ReasonUnexpectedStatus, outcome.Err)
	}
}

func (c *Controller) poll(j *job, handle Handle, p *poller) {
	defer close(p.exited)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			c.publish(j, handle.Progress())
		}
	}
}

func (c *Controller) publish(j *job, value float64) {
	if math.IsNaN(value) {
		return
	}
	value = math.Min(math.Max(value, 0), 1)

	c.mu.Lock()
	if c.job != j || j.cancelled || j.finished {
		c.mu.Unlock()
		return
	}
	if value <= c.progress {
		c.mu.Unlock()
		return
	}
	c.progress = value
	c.mu.Unlock()

	c.notify(j, value)
}

func (c *Controller) notify(j *job, value float64) {
	c.samplerMu.Lock()
	if c.sampler.ShouldLog(j.id, value) {
		logging.WithContext(j.ctx, c.logger).Debug("export progress", logging.Progress(value))
	}
	c.samplerMu.Unlock()

	if c.onProgress != nil {
		c.onProgress(j.id, value)
	}
}

func (c *Controller) cancelled(j *job) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return j.cancelled
}

// abort cancels j exactly once and waits for its sampler to stop.
func (c *Controller) abort(j *job) {
	c.mu.Lock()
	if j.cancelled {
		c.mu.Unlock()
		return
	}
	j.cancelled = true
	handle := j.handle
	p := j.poller
	c.mu.Unlock()

	j.cancel()
	if handle != nil {
		handle.Cancel()
	}
	p.Stop()
}

// finish commits a successful outcome. A Cancel that lands after the engine
// reported success still wins: the job is reported cancelled and the caller
// discards the output.
func (c *Controller) finish(j *job) error {
	c.mu.Lock()
	if j.cancelled {
		c.mu.Unlock()
		return failed(ReasonCancelled, nil)
	}
	j.finished = true
	current := c.job == j
	if current {
		c.progress = 1
		c.job = nil
	}
	c.mu.Unlock()
	if current {
		c.notify(j, 1)
	}
	c.resetSampler()
	j.cancel()
	return nil
}

func (c *Controller) fail(j *job) {
	c.mu.Lock()
	j.finished = true
	p := j.poller
	if c.job == j {
		c.job = nil
		c.progress = 0
	}
	if c.draining == j {
		c.draining = nil
	}
	c.mu.Unlock()

	p.Stop()
	if err := fileutil.RemoveIfExists(j.output); err != nil {
		logging.WarnWithContext(logging.WithContext(j.ctx, c.logger), "partial output not removed", "export_cleanup",
			logging.Output(j.output),
			logging.Error(err),
			logging.Hint("delete the file manually"),
			logging.Impact("a partial audio file remains in the work directory"),
		)
	}
	c.resetSampler()
	j.cancel()
}

func (c *Controller) resetSampler() {
	c.samplerMu.Lock()
	c.sampler.Reset()
	c.samplerMu.Unlock()
}

func (c *Controller) logFailure(logger *slog.Logger, err error) {
	switch {
	case IsCancelled(err):
		logger.Info("export cancelled")
	case errors.Is(err, ErrUnsupportedFormat), errors.Is(err, ErrNoAudioTrack), errors.Is(err, ErrJobAlreadyActive):
		logging.WarnWithContext(logger, "export rejected", "export_rejected",
			logging.Error(err),
			logging.Hint("choose a video with an audio track"),
			logging.Impact("no audio file was produced"),
		)
	default:
		logging.ErrorWithContext(logger, "export failed", "export_"+string(services.Classify(err)),
			logging.Error(err),
		)
	}
}
