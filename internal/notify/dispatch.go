package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/farellandr/rifas/internal/logger"
)

const sendTimeout = 10 * time.Second

// Send delivers text in the background. Failures are logged; a notification
// never affects the request that triggered it.
func Send(n Notifier, text string) {
	if n == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := n.Notify(ctx, text); err != nil {
			logger.Warn("notification failed", zap.Error(err))
		}
	}()
}
