package kafka

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/openlob/openlob/pkg/db/queue"
	"github.com/openlob/openlob/pkg/messaging"
)

// SetupConsumer initializes and starts the Kafka consumer for execution
// messages. Failure to connect is not fatal to the caller: the service
// runs fine without a broker, it just stops echoing executions.
func SetupConsumer(ctx context.Context, logger zerolog.Logger) (*queue.QueueMessageConsumer, error) {
	consumer, err := queue.NewQueueMessageConsumer()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to create Kafka consumer - continuing without Kafka support")
		return nil, err
	}

	go func() {
		logger.Info().Msg("Starting Kafka consumer")
		err := consumer.ConsumeExecutionMessages(func(msg *messaging.ExecutionMessage) error {
			logger.Info().
				Uint64("order_id", msg.OrderID).
				Str("user_id", msg.UserID).
				Str("side", msg.Side).
				Str("status", msg.Status).
				Str("filled_qty", msg.FilledQty).
				Str("remaining_qty", msg.RemainingQty).
				Int("fills", len(msg.Fills)).
				Msg("Received execution message")
			return nil
		})
		if err != nil {
			logger.Error().Err(err).Msg("Kafka consumer error")
		}
	}()

	return consumer, nil
}
