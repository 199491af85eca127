package signals

import (
	"context"
	"log/slog"

	"helix/internal/vault"
)

// AlertBridge adapts a Publisher into the vault's alert notifier. Publish
// failures are logged and dropped: a dead signal bus must not turn a vault
// rejection into an operation failure.
type AlertBridge struct {
	publisher Publisher
	logger    *slog.Logger
}

func NewAlertBridge(publisher Publisher, logger *slog.Logger) *AlertBridge {
	return &AlertBridge{publisher: publisher, logger: logger}
}

func (b *AlertBridge) AlertRaised(ctx context.Context, alert vault.SecurityAlert) {
	if err := b.publisher.Publish(ctx, SecurityAlert(alert)); err != nil && b.logger != nil {
		b.logger.ErrorContext(ctx, "security alert signal dropped",
			"kind", string(alert.Kind),
			"user_id", alert.UserID.String(),
			"error", err,
		)
	}
}
