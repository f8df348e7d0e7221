package export_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/text/language"

	"audex/internal/export"
	"audex/internal/services"
	"audex/internal/testsupport"
)

const waitTimeout = 2 * time.Second

type progressRecorder struct {
	mu     sync.Mutex
	values map[string][]float64
}

func newRecorder() *progressRecorder {
	return &progressRecorder{values: map[string][]float64{}}
}

func (r *progressRecorder) observe(jobID string, value float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[jobID] = append(r.values[jobID], value)
}

func (r *progressRecorder) snapshot(jobID string) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.values[jobID]...)
}

type harness struct {
	t        *testing.T
	engine   *testsupport.FakeEngine
	tracks   *testsupport.FakeTracks
	recorder *progressRecorder
	ctrl     *export.Controller
	workDir  string
	srcDir   string
}

func newHarness(t *testing.T, opts ...export.Option) *harness {
	t.Helper()
	h := &harness{
		t:        t,
		engine:   testsupport.NewFakeEngine(),
		tracks:   testsupport.NewFakeTracks(),
		recorder: newRecorder(),
		workDir:  t.TempDir(),
		srcDir:   t.TempDir(),
	}
	base := []export.Option{
		export.WithWorkDir(h.workDir),
		export.WithProgressInterval(5 * time.Millisecond),
		export.WithProgressFunc(h.recorder.observe),
	}
	h.ctrl = export.New(h.engine, h.tracks, append(base, opts...)...)
	return h
}

func (h *harness) video(name string) string {
	return testsupport.WriteVideo(h.t, h.srcDir, name)
}

type exportResult struct {
	output string
	err    error
}

func (h *harness) start(ctx context.Context, source string, format export.Format) <-chan exportResult {
	ch := make(chan exportResult, 1)
	go func() {
		output, err := h.ctrl.Export(ctx, source, format)
		ch <- exportResult{output: output, err: err}
	}()
	return ch
}

func await(t *testing.T, ch <-chan exportResult) exportResult {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(waitTimeout):
		t.Fatal("export did not finish")
		return exportResult{}
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestExportSuccessPublishesMonotonicProgress(t *testing.T) {
	h := newHarness(t)
	source := h.video("clip.mov")
	ctx := services.WithJobID(context.Background(), "job-1")

	done := h.start(ctx, source, export.FormatM4A)
	handle, err := h.engine.AwaitStart(waitTimeout)
	if err != nil {
		t.Fatal(err)
	}
	if id, ok := h.ctrl.Active(); !ok || id != "job-1" {
		t.Fatalf("expected job-1 active, got %q %v", id, ok)
	}

	handle.SetProgress(0.4)
	waitFor(t, "progress 0.4", func() bool { return h.ctrl.Progress() == 0.4 })
	handle.SetProgress(0.2)
	time.Sleep(20 * time.Millisecond)
	if got := h.ctrl.Progress(); got != 0.4 {
		t.Fatalf("progress decreased to %v", got)
	}
	handle.SetProgress(0.8)
	waitFor(t, "progress 0.8", func() bool { return h.ctrl.Progress() == 0.8 })
	handle.Complete()

	res := await(t, done)
	if res.err != nil {
		t.Fatalf("Export returned error: %v", res.err)
	}
	want := filepath.Join(h.workDir, "clip_audio.m4a")
	if res.output != want {
		t.Fatalf("output = %q, want %q", res.output, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected output file: %v", err)
	}
	if got := h.ctrl.Progress(); got != 1 {
		t.Fatalf("expected progress 1.0 after success, got %v", got)
	}
	if _, ok := h.ctrl.Active(); ok {
		t.Fatal("expected no active job after success")
	}

	values := h.recorder.snapshot("job-1")
	if len(values) == 0 || values[len(values)-1] != 1 {
		t.Fatalf("expected final observed progress 1.0, got %v", values)
	}
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] {
			t.Fatalf("progress decreased: %v", values)
		}
	}

	req := handle.Request()
	if req.Preset != export.PresetAAC256 || req.OutputType != "ipod" || !req.AudioOnly {
		t.Fatalf("unexpected request: %+v", req)
	}
	if req.AudioStream != 1 || req.SourceCodec != "aac" || req.Source != source || req.OutputPath != want {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestExportGeneratesJobID(t *testing.T) {
	h := newHarness(t)
	h.engine.AutoComplete = true
	source := h.video("clip.mp4")

	if _, err := h.ctrl.Export(context.Background(), source, export.FormatMP3); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(h.recorder.values) != 1 {
		t.Fatalf("expected progress for exactly one job, got %v", h.recorder.values)
	}
	for id := range h.recorder.values {
		if len(id) != 36 {
			t.Fatalf("expected uuid job id, got %q", id)
		}
	}
	if got := h.engine.Requests()[0].Preset; got != export.PresetMP3192 {
		t.Fatalf("expected mp3 preset, got %q", got)
	}
}

func TestExportNoAudioTrack(t *testing.T) {
	h := newHarness(t)
	source := h.video("silent.mp4")
	h.tracks.Set(source)

	_, err := h.ctrl.Export(context.Background(), source, export.FormatM4A)
	if !errors.Is(err, export.ErrNoAudioTrack) {
		t.Fatalf("expected ErrNoAudioTrack, got %v", err)
	}
	if got := export.Message(err, language.Spanish); got != "El video no contiene pista de audio" {
		t.Fatalf("unexpected message %q", got)
	}
	if len(h.engine.Requests()) != 0 {
		t.Fatal("engine must not start without audio")
	}
	if h.ctrl.Progress() != 0 {
		t.Fatal("expected progress reset")
	}
	if _, ok := h.ctrl.Active(); ok {
		t.Fatal("expected no active job")
	}
}

func TestExportRejectsUnsupportedSource(t *testing.T) {
	h := newHarness(t)
	tests := []string{
		filepath.Join(h.srcDir, "notes.txt"),
		filepath.Join(h.srcDir, "song.mp3"),
		filepath.Join(h.srcDir, "noext"),
	}
	for _, source := range tests {
		if h.ctrl.Validate(source) {
			t.Fatalf("Validate(%q) = true", source)
		}
		if _, err := h.ctrl.Export(context.Background(), source, export.FormatM4A); !errors.Is(err, export.ErrUnsupportedFormat) {
			t.Fatalf("Export(%q) err = %v", source, err)
		}
	}

	disguised := filepath.Join(h.srcDir, "fake.mov")
	if err := os.WriteFile(disguised, []byte("just some text, not a movie\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if h.ctrl.Validate(disguised) {
		t.Fatal("text content with a .mov extension must not validate")
	}
	if !h.ctrl.Validate(h.video("real.avi")) {
		t.Fatal("expected opaque avi fixture to validate")
	}
	if !h.ctrl.Validate(filepath.Join(h.srcDir, "not-yet-there.mkv")) {
		t.Fatal("missing files validate on their declared type")
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	h := newHarness(t)
	_, err := h.ctrl.Export(context.Background(), h.video("clip.mov"), export.Format("ogg"))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCancelStopsJobAndRemovesPartialOutput(t *testing.T) {
	h := newHarness(t)
	source := h.video("video.mov")
	ctx := services.WithJobID(context.Background(), "job-cancel")

	done := h.start(ctx, source, export.FormatM4A)
	handle, err := h.engine.AwaitStart(waitTimeout)
	if err != nil {
		t.Fatal(err)
	}
	if err := handle.WritePartial(); err != nil {
		t.Fatal(err)
	}
	handle.SetProgress(0.3)
	waitFor(t, "progress 0.3", func() bool { return h.ctrl.Progress() == 0.3 })

	h.ctrl.Cancel()
	if got := h.ctrl.Progress(); got != 0 {
		t.Fatalf("expected progress 0 after cancel, got %v", got)
	}
	if _, ok := h.ctrl.Active(); ok {
		t.Fatal("expected no active job after cancel")
	}
	observed := len(h.recorder.snapshot("job-cancel"))

	res := await(t, done)
	if !export.IsCancelled(res.err) {
		t.Fatalf("expected cancelled error, got %v", res.err)
	}
	if handle.CancelCount() == 0 {
		t.Fatal("expected engine cancel")
	}
	if _, err := os.Stat(handle.Request().OutputPath); !os.IsNotExist(err) {
		t.Fatalf("expected partial output removed, stat err = %v", err)
	}
	handle.SetProgress(0.9)
	time.Sleep(20 * time.Millisecond)
	if got := len(h.recorder.snapshot("job-cancel")); got != observed {
		t.Fatalf("progress observed after cancel: %d -> %d", observed, got)
	}

	h.ctrl.Cancel()
	if handle.CancelCount() != 1 {
		t.Fatalf("cancel must be idempotent, engine cancelled %d times", handle.CancelCount())
	}
}

func TestCancelWithoutJobIsNoop(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Cancel()
	if h.ctrl.Progress() != 0 {
		t.Fatal("expected zero progress")
	}
}

func TestCallerContextCancellation(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := h.start(ctx, h.video("clip.mov"), export.FormatWAV)
	handle, err := h.engine.AwaitStart(waitTimeout)
	if err != nil {
		t.Fatal(err)
	}
	cancel()
	handle.Cancel()

	if res := await(t, done); !export.IsCancelled(res.err) {
		t.Fatalf("expected cancelled, got %v", res.err)
	}
}

func TestCancelAfterEngineSuccessReportsCancelled(t *testing.T) {
	h := newHarness(t)
	h.engine.AutoComplete = true
	export.SetBeforeFinish(h.ctrl, h.ctrl.Cancel)
	ctx := services.WithJobID(context.Background(), "job-late-cancel")

	output, err := h.ctrl.Export(ctx, h.video("clip.mov"), export.FormatM4A)
	if !export.IsCancelled(err) {
		t.Fatalf("expected cancelled, got output %q err %v", output, err)
	}
	if output != "" {
		t.Fatalf("expected no output path, got %q", output)
	}
	if _, err := os.Stat(filepath.Join(h.workDir, "clip_audio.m4a")); !os.IsNotExist(err) {
		t.Fatalf("expected output removed, stat err = %v", err)
	}
	if got := h.ctrl.Progress(); got != 0 {
		t.Fatalf("expected progress 0, got %v", got)
	}
	if _, ok := h.ctrl.Active(); ok {
		t.Fatal("expected no active job")
	}
	for _, v := range h.recorder.snapshot("job-late-cancel") {
		if v == 1 {
			t.Fatal("completion progress published for a cancelled job")
		}
	}
}

func TestExportWithCancelledContextDoesNotStart(t *testing.T) {
	h := newHarness(t)
	h.engine.AutoComplete = true
	source := h.video("clip.mov")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.ctrl.Export(ctx, source, export.FormatM4A)
	if !export.IsCancelled(err) {
		t.Fatalf("expected cancelled, got %v", err)
	}
	if n := len(h.engine.Requests()); n != 0 {
		t.Fatalf("engine started %d times for a cancelled context", n)
	}
	if _, ok := h.ctrl.Active(); ok {
		t.Fatal("cancelled export left a job in the slot")
	}

	if _, err := h.ctrl.Export(context.Background(), source, export.FormatM4A); err != nil {
		t.Fatalf("follow-up export: %v", err)
	}
}

func TestRejectPolicyRefusesSecondExport(t *testing.T) {
	h := newHarness(t)
	first := h.start(context.Background(), h.video("a.mov"), export.FormatM4A)
	handle, err := h.engine.AwaitStart(waitTimeout)
	if err != nil {
		t.Fatal(err)
	}

	_, err = h.ctrl.Export(context.Background(), h.video("b.mov"), export.FormatM4A)
	if !errors.Is(err, export.ErrJobAlreadyActive) {
		t.Fatalf("expected ErrJobAlreadyActive, got %v", err)
	}

	handle.Complete()
	if res := await(t, first); res.err != nil {
		t.Fatalf("first export failed: %v", res.err)
	}
}

func TestSupersedePolicyCancelsActiveJob(t *testing.T) {
	h := newHarness(t, export.WithStartPolicy(export.StartSupersede))
	first := h.start(services.WithJobID(context.Background(), "first"), h.video("a.mov"), export.FormatM4A)
	firstHandle, err := h.engine.AwaitStart(waitTimeout)
	if err != nil {
		t.Fatal(err)
	}
	firstHandle.SetProgress(0.7)
	waitFor(t, "first progress", func() bool { return h.ctrl.Progress() == 0.7 })

	second := h.start(services.WithJobID(context.Background(), "second"), h.video("b.mov"), export.FormatWAV)
	if res := await(t, first); !export.IsCancelled(res.err) {
		t.Fatalf("expected first export cancelled, got %v", res.err)
	}
	secondHandle, err := h.engine.AwaitStart(waitTimeout)
	if err != nil {
		t.Fatal(err)
	}
	if id, ok := h.ctrl.Active(); !ok || id != "second" {
		t.Fatalf("expected second job active, got %q %v", id, ok)
	}
	if got := h.ctrl.Progress(); got != 0 {
		t.Fatalf("expected progress reset for new job, got %v", got)
	}
	secondHandle.SetProgress(0.1)
	waitFor(t, "second progress", func() bool { return h.ctrl.Progress() == 0.1 })
	secondHandle.Complete()

	res := await(t, second)
	if res.err != nil {
		t.Fatalf("second export failed: %v", res.err)
	}
	if filepath.Base(res.output) != "b_audio.wav" {
		t.Fatalf("unexpected output %q", res.output)
	}
}

func TestEngineFailureMapsToExportFailed(t *testing.T) {
	h := newHarness(t)
	done := h.start(context.Background(), h.video("clip.mov"), export.FormatM4A)
	handle, err := h.engine.AwaitStart(waitTimeout)
	if err != nil {
		t.Fatal(err)
	}
	if err := handle.WritePartial(); err != nil {
		t.Fatal(err)
	}
	handle.SetProgress(0.5)
	waitFor(t, "progress", func() bool { return h.ctrl.Progress() == 0.5 })
	handle.Fail("Invalid data found when processing input", errors.New("exit status 1"))

	res := await(t, done)
	var failure *export.ExportFailedError
	if !errors.As(res.err, &failure) || failure.Reason != "Invalid data found when processing input" {
		t.Fatalf("unexpected error %v", res.err)
	}
	if got := export.Message(res.err, language.Spanish); got != "Error al exportar: Invalid data found when processing input" {
		t.Fatalf("unexpected message %q", got)
	}
	if h.ctrl.Progress() != 0 {
		t.Fatal("expected progress reset after failure")
	}
	if _, err := os.Stat(handle.Request().OutputPath); !os.IsNotExist(err) {
		t.Fatal("expected partial output removed")
	}
}

func TestTerminalStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		outcome export.Outcome
		check   func(error) bool
	}{
		{
			name:    "disk full",
			outcome: export.Outcome{Status: export.StatusFailed, Reason: "No space left on device", Err: fmt.Errorf("write: %w", unix.ENOSPC)},
			check:   func(err error) bool { return errors.Is(err, export.ErrInsufficientSpace) },
		},
		{
			name:    "cancelled by engine",
			outcome: export.Outcome{Status: export.StatusCancelled},
			check:   export.IsCancelled,
		},
		{
			name:    "unknown status",
			outcome: export.Outcome{Status: export.StatusUnknown},
			check: func(err error) bool {
				var failure *export.ExportFailedError
				return errors.As(err, &failure) && failure.Reason == export.ReasonUnexpectedStatus
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			done := h.start(context.Background(), h.video("clip.mov"), export.FormatM4A)
			handle, err := h.engine.AwaitStart(waitTimeout)
			if err != nil {
				t.Fatal(err)
			}
			handle.Resolve(tt.outcome)
			if res := await(t, done); !tt.check(res.err) {
				t.Fatalf("unexpected error %v", res.err)
			}
		})
	}
}

func TestBeginPermissionErrorMapsToPermissionDenied(t *testing.T) {
	h := newHarness(t)
	h.engine.BeginErr = &os.PathError{Op: "open", Path: "/x", Err: unix.EACCES}

	_, err := h.ctrl.Export(context.Background(), h.video("clip.mov"), export.FormatM4A)
	if !errors.Is(err, export.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestBeginGenericErrorIsExportFailed(t *testing.T) {
	h := newHarness(t)
	h.engine.BeginErr = errors.New("ffmpeg not found")

	_, err := h.ctrl.Export(context.Background(), h.video("clip.mov"), export.FormatM4A)
	if !errors.Is(err, export.ErrExportFailed) {
		t.Fatalf("expected ErrExportFailed, got %v", err)
	}
}

func TestExportOverwritesExistingOutput(t *testing.T) {
	h := newHarness(t)
	h.engine.AutoComplete = true
	existing := filepath.Join(h.workDir, "clip_audio.m4a")
	if err := os.WriteFile(existing, []byte("stale output from an earlier run"), 0o644); err != nil {
		t.Fatal(err)
	}

	output, err := h.ctrl.Export(context.Background(), h.video("clip.mov"), export.FormatM4A)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if output != existing {
		t.Fatalf("expected same output path, got %q", output)
	}
	data, err := os.ReadFile(output)
	if err != nil || string(data) != "audio" {
		t.Fatalf("expected fresh output, got %q %v", data, err)
	}
}

func TestExportFailsWhenFreeSpaceTooLow(t *testing.T) {
	h := newHarness(t, export.WithMinFreeBytes(^uint64(0)>>1))
	_, err := h.ctrl.Export(context.Background(), h.video("clip.mov"), export.FormatM4A)
	if !errors.Is(err, export.ErrInsufficientSpace) {
		t.Fatalf("expected ErrInsufficientSpace, got %v", err)
	}
	if got := export.Message(err, language.Spanish); got != "Espacio insuficiente en disco" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestTrackLoaderErrorsSurface(t *testing.T) {
	h := newHarness(t)
	h.tracks.Err = services.Wrap(services.ErrExternalTool, "ffprobe", "inspect", "moov atom not found", nil)
	_, err := h.ctrl.Export(context.Background(), h.video("clip.mov"), export.FormatM4A)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected tool error, got %v", err)
	}
	if got := export.Message(err, language.Spanish); !strings.HasPrefix(got, "Error inesperado: ") {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestParseStartPolicy(t *testing.T) {
	if p, err := export.ParseStartPolicy("supersede"); err != nil || p != export.StartSupersede {
		t.Fatalf("unexpected %v %v", p, err)
	}
	if p, err := export.ParseStartPolicy(""); err != nil || p != export.StartReject {
		t.Fatalf("unexpected %v %v", p, err)
	}
	if _, err := export.ParseStartPolicy("queue"); err == nil {
		t.Fatal("expected error")
	}
	if export.StartSupersede.String() != "supersede" {
		t.Fatalf("unexpected string %q", export.StartSupersede)
	}
}
