package risk

import (
	"context"
	"errors"

	"github.com/optihealth/platform/pkg/common/logger"
	"github.com/optihealth/platform/pkg/common/models"
)

type eventRecorder interface {
	RecordEvent(ctx context.Context, event models.Event) error
}

// AuditHandler returns a consumer callback that persists risk.scored events.
// Malformed events are logged and acknowledged; storage errors are returned
// so the message is redelivered.
func AuditHandler(repo eventRecorder) func(ctx context.Context, event models.Event) error {
	return func(ctx context.Context, event models.Event) error {
		if event.Type != EventRiskScored {
			return nil
		}
		err := repo.RecordEvent(ctx, event)
		if errors.Is(err, errMalformedEvent) {
			logger.Log.WithError(err).WithField("event_id", event.ID).Warn("Dropping malformed risk event")
			return nil
		}
		return err
	}
}
