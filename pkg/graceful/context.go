package graceful

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"tourmap/pkg/logger"
)

// Context returns a context canceled on SIGINT or SIGTERM, or when the
// returned cancel func is called.
func Context(ctx context.Context, log *zap.Logger) (context.Context, context.CancelFunc) {
	log = logger.OrNop(log)
	ctx, cancel := context.WithCancel(ctx)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info("received termination signal, shutting down", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
