package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/text/language"

	"audex/internal/l10n"
	"audex/internal/logging"
	"audex/internal/session"
)

// stateRenderer prints session states. Terminals get a live progress bar;
// other writers get one line per state change and per 10% of progress.
type stateRenderer struct {
	out     io.Writer
	tag     language.Tag
	live    bool
	sampler *logging.ProgressSampler

	mu   sync.Mutex
	bar  *progressbar.ProgressBar
	last session.Kind
}

func newStateRenderer(out io.Writer, tag language.Tag, live bool) *stateRenderer {
	return &stateRenderer{
		out:     out,
		tag:     tag,
		live:    live,
		sampler: logging.NewProgressSampler(10),
	}
}

func (r *stateRenderer) Render(state session.State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := state.Kind != r.last
	r.last = state.Kind

	switch state.Kind {
	case session.KindProcessing:
		if r.live {
			r.renderBar(state)
			return
		}
		if emit := r.sampler.ShouldLog(state.JobID, state.Progress); changed || emit {
			fmt.Fprintln(r.out, stateLabel(r.tag, state))
		}
	default:
		r.closeBar()
		r.sampler.Reset()
		if changed && state.Kind != session.KindIdle {
			fmt.Fprintln(r.out, stateLabel(r.tag, state))
		}
	}
}

func (r *stateRenderer) renderBar(state session.State) {
	if r.bar == nil {
		r.bar = progressbar.NewOptions(100,
			progressbar.OptionSetWriter(r.out),
			progressbar.OptionSetDescription(l10n.Text(r.tag, l10n.StateValidating)),
			progressbar.OptionSetWidth(30),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionClearOnFinish(),
		)
	}
	r.bar.Describe(stateLabel(r.tag, state))
	_ = r.bar.Set(int(state.Progress * 100))
}

// Close removes the bar, if one is shown.
func (r *stateRenderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeBar()
}

func (r *stateRenderer) closeBar() {
	if r.bar == nil {
		return
	}
	_ = r.bar.Finish()
	r.bar = nil
}

func stateLabel(tag language.Tag, state session.State) string {
	switch state.Kind {
	case session.KindValidating:
		return l10n.Text(tag, l10n.StateValidating)
	case session.KindProcessing:
		return l10n.Text(tag, l10n.StateProcessing, int(state.Progress*100))
	case session.KindDone:
		return l10n.Text(tag, l10n.StateDone, state.OutputPath)
	case session.KindError:
		return l10n.Text(tag, l10n.StateError, state.Message)
	default:
		return l10n.Text(tag, l10n.StateIdle)
	}
}
