package loop

import (
	"context"

	"go.uber.org/zap"

	"github.com/tomz197/driftfield/internal/config"
)

// TuningApplier receives reloaded gameplay constants.
type TuningApplier interface {
	ApplyTuning(t config.Tuning)
}

// ForwardReloads hands every config reload from w to target until ctx is done
// or the watcher closes. A file that fails to parse keeps the running tuning.
func ForwardReloads(ctx context.Context, w *config.Watcher, target TuningApplier, log *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-w.Updates:
			if !ok {
				return
			}
			target.ApplyTuning(cfg.Tuning)
			log.Info("config reloaded")
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Warn("config reload failed, keeping current tuning", zap.Error(err))
		}
	}
}
