//go:build integration

package steps

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/cucumber/godog"
	"github.com/gofrs/flock"

	"audex/internal/config"
	"audex/internal/export"
	"audex/internal/session"
	"audex/internal/testsupport"
	"audex/internal/workflow"
)

const stepTimeout = 2 * time.Second

type exportContext struct {
	root    string
	srcDir  string
	cfg     config.Config
	engine  *testsupport.FakeEngine
	tracks  *testsupport.FakeTracks
	manager *workflow.Manager
	handle  *testsupport.FakeHandle
	runs    []chan error
	lastErr error
}

// SharedExportContext is reset before each scenario.
var SharedExportContext *exportContext

func InitializeExportScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		root, err := os.MkdirTemp("", "audex-features-")
		if err != nil {
			return c, err
		}
		cfg := config.Default()
		cfg.Paths.WorkDir = filepath.Join(root, "work")
		cfg.Paths.LogDir = filepath.Join(root, "logs")
		cfg.Export.MinFreeMiB = 0
		cfg.Export.ProgressIntervalMS = 10
		SharedExportContext = &exportContext{
			root:   root,
			srcDir: filepath.Join(root, "src"),
			cfg:    cfg,
			engine: testsupport.NewFakeEngine(),
			tracks: testsupport.NewFakeTracks(),
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		e := SharedExportContext
		if e != nil {
			if e.manager != nil {
				e.manager.Reset()
			}
			_ = e.drain()
			_ = os.RemoveAll(e.root)
		}
		SharedExportContext = nil
		return c, nil
	})

	ctx.Step(`^a clean work directory$`, aCleanWorkDirectory)
	ctx.Step(`^the concurrent start policy is "([^"]*)"$`, theConcurrentStartPolicyIs)
	ctx.Step(`^a video "([^"]*)" with an audio track$`, aVideoWithAnAudioTrack)
	ctx.Step(`^a video "([^"]*)" without audio$`, aVideoWithoutAudio)
	ctx.Step(`^I pick "([^"]*)" for export as "([^"]*)"$`, iPickForExportAs)
	ctx.Step(`^I try to pick "([^"]*)" for export as "([^"]*)"$`, iTryToPickForExportAs)
	ctx.Step(`^I drop "([^"]*)"$`, iDrop)
	ctx.Step(`^the engine reports progress ([0-9.]+)$`, theEngineReportsProgress)
	ctx.Step(`^the engine completes$`, theEngineCompletes)
	ctx.Step(`^I cancel the export$`, iCancelTheExport)
	ctx.Step(`^the session is done with output "([^"]*)"$`, theSessionIsDoneWithOutput)
	ctx.Step(`^the session shows the error "([^"]*)"$`, theSessionShowsTheError)
	ctx.Step(`^the session is idle$`, theSessionIsIdle)
	ctx.Step(`^the progress is ([0-9.]+)$`, theProgressIs)
	ctx.Step(`^no output exists for "([^"]*)" as "([^"]*)"$`, noOutputExistsFor)
	ctx.Step(`^the access token for "([^"]*)" is released$`, theAccessTokenIsReleased)
	ctx.Step(`^the second start fails with "([^"]*)"$`, theSecondStartFailsWith)
}

func (e *exportContext) ensureManager() (*workflow.Manager, error) {
	if e.manager != nil {
		return e.manager, nil
	}
	if err := e.cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	mgr, err := workflow.NewWithEngine(&e.cfg, e.engine, e.tracks, nil)
	if err != nil {
		return nil, err
	}
	e.manager = mgr
	return mgr, nil
}

func (e *exportContext) source(name string) string {
	return filepath.Join(e.srcDir, name)
}

func (e *exportContext) drain() error {
	var first error
	for _, ch := range e.runs {
		select {
		case err := <-ch:
			if first == nil {
				first = err
			}
		case <-time.After(stepTimeout):
			return errors.New("export did not finish")
		}
	}
	e.runs = nil
	return first
}

func waitUntil(what string, cond func() bool) error {
	deadline := time.Now().Add(stepTimeout)
	for time.Now().Before(deadline) {
		if cond() {
			return nil
		}
		time.Sleep(2 * time.Millisecond)
	}
	return fmt.Errorf("timed out waiting for %s", what)
}

func writeVideo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data := make([]byte, 4096)
	for i := 1; i < len(data); i += 2 {
		data[i] = 0xa5
	}
	return os.WriteFile(path, data, 0o644)
}

func aCleanWorkDirectory() error {
	e := SharedExportContext
	return os.MkdirAll(e.cfg.Paths.WorkDir, 0o755)
}

func theConcurrentStartPolicyIs(policy string) error {
	SharedExportContext.cfg.Export.ConcurrentStart = policy
	return nil
}

func aVideoWithAnAudioTrack(name string) error {
	return writeVideo(SharedExportContext.source(name))
}

func aVideoWithoutAudio(name string) error {
	e := SharedExportContext
	if err := writeVideo(e.source(name)); err != nil {
		return err
	}
	e.tracks.Set(e.source(name))
	return nil
}

func iPickForExportAs(name, format string) error {
	e := SharedExportContext
	mgr, err := e.ensureManager()
	if err != nil {
		return err
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	if err := mgr.SetFormat(f); err != nil {
		return err
	}

	ch := make(chan error, 1)
	e.runs = append(e.runs, ch)
	go func() { ch <- mgr.ProcessFile(context.Background(), e.source(name), workflow.Picked) }()

	return waitUntil("the export to start or end", func() bool {
		state := mgr.State()
		if state.Kind == session.KindError {
			return true
		}
		if state.Kind != session.KindProcessing {
			return false
		}
		for _, req := range e.engine.Requests() {
			if req.Source == e.source(name) {
				h, err := e.engine.AwaitStart(stepTimeout)
				if err != nil {
					return false
				}
				e.handle = h
				return true
			}
		}
		return false
	})
}

func iTryToPickForExportAs(name, format string) error {
	e := SharedExportContext
	mgr, err := e.ensureManager()
	if err != nil {
		return err
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	_ = mgr.SetFormat(f)
	e.lastErr = mgr.ProcessFile(context.Background(), e.source(name), workflow.Picked)
	return nil
}

func iDrop(name string) error {
	e := SharedExportContext
	mgr, err := e.ensureManager()
	if err != nil {
		return err
	}
	e.lastErr = mgr.HandleDrop(context.Background(), []string{e.source(name)})
	return nil
}

func theEngineReportsProgress(value float64) error {
	e := SharedExportContext
	if e.handle == nil {
		return errors.New("no running export")
	}
	e.handle.SetProgress(value)
	return waitUntil(fmt.Sprintf("progress %.2f", value), func() bool {
		return almostEqual(e.manager.State().Progress, value)
	})
}

func theEngineCompletes() error {
	e := SharedExportContext
	if e.handle == nil {
		return errors.New("no running export")
	}
	e.handle.Complete()
	return e.drain()
}

func iCancelTheExport() error {
	SharedExportContext.manager.Cancel()
	return nil
}

func theSessionIsDoneWithOutput(name string) error {
	e := SharedExportContext
	if err := waitUntil("done", func() bool { return e.manager.State().Kind == session.KindDone }); err != nil {
		return fmt.Errorf("%w: state %v", err, e.manager.State())
	}
	state := e.manager.State()
	if filepath.Base(state.OutputPath) != name {
		return fmt.Errorf("expected output %q, got %q", name, state.OutputPath)
	}
	if _, err := os.Stat(state.OutputPath); err != nil {
		return fmt.Errorf("output missing: %w", err)
	}
	return nil
}

func theSessionShowsTheError(message string) error {
	e := SharedExportContext
	if err := waitUntil("error", func() bool { return e.manager.State().Kind == session.KindError }); err != nil {
		return fmt.Errorf("%w: state %v", err, e.manager.State())
	}
	if got := e.manager.State().Message; got != message {
		return fmt.Errorf("expected message %q, got %q", message, got)
	}
	return nil
}

func theSessionIsIdle() error {
	if state := SharedExportContext.manager.State(); state.Kind != session.KindIdle {
		return fmt.Errorf("expected idle, got %v", state)
	}
	return nil
}

func theProgressIs(value float64) error {
	e := SharedExportContext
	if got := e.manager.Progress(); !almostEqual(got, value) {
		return fmt.Errorf("expected progress %.2f, got %.2f", value, got)
	}
	if state := e.manager.State(); state.Kind == session.KindProcessing || state.Kind == session.KindDone {
		if !almostEqual(state.Progress, value) {
			return fmt.Errorf("session progress %.2f, want %.2f", state.Progress, value)
		}
	}
	return nil
}

func noOutputExistsFor(name, format string) error {
	e := SharedExportContext
	if err := e.drain(); err != nil {
		return err
	}
	output := filepath.Join(e.cfg.Paths.WorkDir, export.OutputName(e.source(name), export.Format(format)))
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		return fmt.Errorf("expected no output at %s (stat err %v)", output, err)
	}
	return nil
}

func theAccessTokenIsReleased(name string) error {
	e := SharedExportContext
	if err := e.drain(); err != nil {
		return err
	}
	lock := flock.New(e.source(name))
	ok, err := lock.TryLock()
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("file is still locked")
	}
	return lock.Unlock()
}

func theSecondStartFailsWith(message string) error {
	e := SharedExportContext
	if !errors.Is(e.lastErr, export.ErrJobAlreadyActive) {
		return fmt.Errorf("expected ErrJobAlreadyActive, got %v", e.lastErr)
	}
	if got := export.Message(e.lastErr, e.manager.Language()); got != message {
		return fmt.Errorf("expected message %q, got %q", message, got)
	}
	return nil
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
