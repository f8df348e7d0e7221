package testsupport

import (
	"context"
	"errors"
	"math"
	"os"
	"sync"
	"time"

	"audex/internal/export"
)

// FakeEngine records requests and hands out FakeHandles. When AutoComplete is
// set, each handle writes the output file and completes immediately; such
// handles are already resolved and are not reported by AwaitStart.
type FakeEngine struct {
	mu           sync.Mutex
	requests     []export.Request
	handles      []*FakeHandle
	started      chan *FakeHandle
	BeginErr     error
	AutoComplete bool
}

// NewFakeEngine returns an engine whose handles stay running until resolved.
func NewFakeEngine() *FakeEngine {
	return &FakeEngine{started: make(chan *FakeHandle, 16)}
}

// Begin implements export.Engine.
func (e *FakeEngine) Begin(ctx context.Context, req export.Request) (export.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.requests = append(e.requests, req)
	if e.BeginErr != nil {
		return nil, e.BeginErr
	}
	h := &FakeHandle{req: req, done: make(chan struct{})}
	e.handles = append(e.handles, h)
	if e.AutoComplete {
		h.SetProgress(1)
		h.Complete()
		return h, nil
	}
	select {
	case e.started <- h:
	default:
	}
	return h, nil
}

// Requests returns a copy of every request passed to Begin.
func (e *FakeEngine) Requests() []export.Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]export.Request(nil), e.requests...)
}

// AwaitStart blocks until the next running handle is created or the timeout
// expires.
func (e *FakeEngine) AwaitStart(timeout time.Duration) (*FakeHandle, error) {
	select {
	case h := <-e.started:
		return h, nil
	case <-time.After(timeout):
		return nil, errors.New("engine was not started")
	}
}

// FakeHandle is a controllable export.Handle.
type FakeHandle struct {
	mu        sync.Mutex
	req       export.Request
	progress  float64
	cancelled int
	outcome   export.Outcome
	once      sync.Once
	done      chan struct{}
}

// Request returns the request that created the handle.
func (h *FakeHandle) Request() export.Request { return h.req }

// Progress implements export.Handle.
func (h *FakeHandle) Progress() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.progress
}

// SetProgress changes the value the controller will sample next.
func (h *FakeHandle) SetProgress(value float64) {
	h.mu.Lock()
	h.progress = value
	h.mu.Unlock()
}

// Cancel implements export.Handle. The handle resolves as cancelled.
func (h *FakeHandle) Cancel() {
	h.mu.Lock()
	h.cancelled++
	h.mu.Unlock()
	h.resolve(export.Outcome{Status: export.StatusCancelled})
}

// CancelCount reports how many times Cancel was called.
func (h *FakeHandle) CancelCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cancelled
}

// Complete writes a placeholder output file and resolves as completed.
func (h *FakeHandle) Complete() {
	if err := os.WriteFile(h.req.OutputPath, []byte("audio"), 0o644); err != nil {
		h.Fail("write output: "+err.Error(), err)
		return
	}
	h.resolve(export.Outcome{Status: export.StatusCompleted})
}

// WritePartial leaves a partial output on disk without resolving.
func (h *FakeHandle) WritePartial() error {
	return os.WriteFile(h.req.OutputPath, []byte("partial"), 0o644)
}

// Fail resolves as failed with reason.
func (h *FakeHandle) Fail(reason string, err error) {
	h.resolve(export.Outcome{Status: export.StatusFailed, Reason: reason, Err: err})
}

// Resolve resolves with an arbitrary outcome.
func (h *FakeHandle) Resolve(outcome export.Outcome) {
	h.resolve(outcome)
}

func (h *FakeHandle) resolve(outcome export.Outcome) {
	h.once.Do(func() {
		h.mu.Lock()
		h.outcome = outcome
		h.mu.Unlock()
		close(h.done)
	})
}

// Wait implements export.Handle.
func (h *FakeHandle) Wait() export.Outcome {
	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.outcome
}

// FakeTracks is a TrackLoader returning fixed track lists keyed by source
// path. Sources without an entry get one AAC track.
type FakeTracks struct {
	mu     sync.Mutex
	tracks map[string][]export.AudioTrack
	Err    error
}

// NewFakeTracks returns an empty FakeTracks.
func NewFakeTracks() *FakeTracks {
	return &FakeTracks{tracks: map[string][]export.AudioTrack{}}
}

// Set registers the tracks for source; pass none for a silent video.
func (f *FakeTracks) Set(source string, tracks ...export.AudioTrack) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tracks[source] = tracks
}

// LoadTracks implements export.TrackLoader.
func (f *FakeTracks) LoadTracks(ctx context.Context, source string) (export.TrackInfo, error) {
	if err := ctx.Err(); err != nil {
		return export.TrackInfo{}, err
	}
	if f.Err != nil {
		return export.TrackInfo{}, f.Err
	}
	f.mu.Lock()
	tracks, ok := f.tracks[source]
	f.mu.Unlock()
	if !ok {
		tracks = []export.AudioTrack{{Index: 1, Codec: "aac", SampleRate: 48000, Channels: 2, Summary: "aac 48000Hz stereo"}}
	}
	info := export.TrackInfo{Tracks: tracks, Duration: 10 * time.Second}
	if len(tracks) > 0 {
		info.Primary = tracks[0]
	}
	return info, nil
}

// AlmostEqual compares fractions with a small tolerance.
func AlmostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
