package notifications

import (
	"context"
	"log/slog"
	"sync"

	"audex/internal/logging"
	"audex/internal/session"
)

// Forward announces every Done and Error state of machine through svc until
// the returned stop function is called. Requests run on their own goroutines
// so a slow ntfy server never holds up state delivery; stop waits for them.
func Forward(machine *session.Machine, svc Service, logger *slog.Logger) (stop func()) {
	logger = logging.NewComponentLogger(logger, "notifications")
	if !Enabled(svc) {
		return func() {}
	}

	var wg sync.WaitGroup
	unsubscribe := machine.Subscribe(func(state session.State) {
		var send func(context.Context) error
		switch state.Kind {
		case session.KindDone:
			output := state.OutputPath
			send = func(ctx context.Context) error { return svc.NotifyExportReady(ctx, output) }
		case session.KindError:
			message := state.Message
			send = func(ctx context.Context) error { return svc.NotifyExportFailed(ctx, message) }
		default:
			return
		}
		jobID := state.JobID
		kind := state.Kind.String()
		wg.Go(func() {
			if err := send(context.Background()); err != nil {
				logging.WarnWithContext(logger, "notification failed", "notification_failed",
					logging.JobID(jobID),
					logging.String("state", kind),
					logging.Error(err),
					logging.Hint("check notifications.ntfy_topic and network access"),
					logging.Impact("export result was not announced"),
				)
			}
		})
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			unsubscribe()
			wg.Wait()
		})
	}
}
