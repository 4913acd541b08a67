package usecase

import (
	"context"
	"strings"

	"theralink/internal/infrastructure/messaging"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// newReference builds a unique transaction reference such as "pay_3f2c...".
func newReference(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// publishEvent is best effort: the state it describes is already committed.
func publishEvent(ctx context.Context, log *logrus.Logger, publisher messaging.EventPublisher, topic, key, eventType string, data interface{}) {
	if err := publisher.Publish(ctx, topic, key, eventType, data); err != nil {
		log.Warnf("Failed to publish %s event: %+v", eventType, err)
	}
}
