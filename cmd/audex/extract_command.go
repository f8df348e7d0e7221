package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"audex/internal/config"
	"audex/internal/export"
	"audex/internal/notifications"
	"audex/internal/session"
	"audex/internal/workflow"
)

type extractOptions struct {
	format  string
	saveAs  string
	dropped bool
}

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var opts extractOptions

	cmd := &cobra.Command{
		Use:   "extract <video>",
		Short: "Extract the audio track of a video",
		Long: `Extracts the primary audio track of a QuickTime, MPEG-4, AVI or other
movie file into the work directory as <name>_audio.<ext>.

Press Ctrl+C to cancel; the partial output is removed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, ctx, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Output format (m4a, wav, mp3); prompts on a terminal when omitted")
	cmd.Flags().StringVarP(&opts.saveAs, "save-as", "o", "", "Copy the finished audio to this path, replacing any existing file")
	cmd.Flags().BoolVar(&opts.dropped, "dropped", false, "Treat the file as dropped: skip the shared file lock")
	return cmd
}

func runExtract(cmd *cobra.Command, ctx *commandContext, source string, opts extractOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	source, err = config.ExpandPath(strings.TrimSpace(source))
	if err != nil {
		return err
	}

	format, err := chooseFormat(cfg, opts.format, ctx)
	if err != nil {
		return err
	}

	manager, err := workflow.NewFromConfig(cfg, logger)
	if err != nil {
		return err
	}
	if err := manager.SetFormat(format); err != nil {
		return err
	}

	errOut := cmd.ErrOrStderr()
	renderer := newStateRenderer(errOut, manager.Language(), isTerminal(errOut))
	unsubscribe := manager.Machine().Subscribe(renderer.Render)
	defer unsubscribe()
	defer renderer.Close()
	stopNotify := notifications.Forward(manager.Machine(), notifications.NewService(cfg), logger)
	defer stopNotify()

	var interrupted atomic.Bool
	stop := cancelOnSignal(func() {
		interrupted.Store(true)
		manager.Cancel()
	})
	defer stop()

	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}
	if opts.dropped {
		err = manager.HandleDrop(runCtx, []string{source})
	} else {
		err = manager.ProcessFile(runCtx, source, workflow.Picked)
	}
	renderer.Close()

	if interrupted.Load() {
		return context.Canceled
	}
	state := manager.State()
	switch state.Kind {
	case session.KindError:
		return errors.New(state.Message)
	case session.KindDone:
	default:
		if err != nil {
			return err
		}
		return context.Canceled
	}

	out := cmd.OutOrStdout()
	target := state.OutputPath
	if opts.saveAs != "" {
		dst, err := config.ExpandPath(opts.saveAs)
		if err != nil {
			return err
		}
		if err := manager.SaveAs(dst); err != nil {
			return errors.New(manager.State().Message)
		}
		target = dst
	}
	if info, err := os.Stat(target); err == nil {
		fmt.Fprintf(out, "%s (%s)\n", target, humanize.Bytes(uint64(info.Size())))
	} else {
		fmt.Fprintln(out, target)
	}
	return nil
}

// chooseFormat resolves the flag, prompting on an interactive terminal and
// falling back to the configured default otherwise.
func chooseFormat(cfg *config.Config, flag string, ctx *commandContext) (export.Format, error) {
	if strings.TrimSpace(flag) != "" {
		return export.ParseFormat(flag)
	}
	fallback, err := export.ParseFormat(cfg.Export.DefaultFormat)
	if err != nil {
		return "", err
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) || !isatty.IsTerminal(os.Stdout.Fd()) {
		return fallback, nil
	}

	tag := ctx.language()
	options := make([]string, 0, len(export.Formats()))
	byLabel := make(map[string]export.Format, len(export.Formats()))
	defaultLabel := ""
	for _, format := range export.Formats() {
		label := fmt.Sprintf("%s - %s", format.Name(tag), format.Description(tag))
		options = append(options, label)
		byLabel[label] = format
		if format == fallback {
			defaultLabel = label
		}
	}
	choice, err := defaultPrompter.Select("Format", options, defaultLabel)
	if err != nil {
		return "", fmt.Errorf("format prompt: %w", err)
	}
	format, ok := byLabel[choice]
	if !ok {
		return fallback, nil
	}
	return format, nil
}

// cancelOnSignal runs fn on the first SIGINT or SIGTERM. A second signal
// falls through to the default handler.
func cancelOnSignal(fn func()) (stop func()) {
	signals := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-signals:
			signal.Reset(os.Interrupt, syscall.SIGTERM)
			fn()
		case <-done:
		}
	}()
	return func() {
		signal.Stop(signals)
		close(done)
	}
}
