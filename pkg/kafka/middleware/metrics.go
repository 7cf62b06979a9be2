package kafka_middleware

import (
	"context"

	"capirelay/pkg/kafka"
	"capirelay/pkg/metrics"
)

func MetricsProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		err := next(ctx, msg)
		metrics.RecordKafkaMessage(metrics.DirectionOut, status(err))
		return err
	}
}

func MetricsConsumerMiddleware() kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		err := next(ctx, msg)
		metrics.RecordKafkaMessage(metrics.DirectionIn, status(err))
		return err
	}
}

func status(err error) string {
	if err != nil {
		return metrics.StatusError
	}
	return metrics.StatusSuccess
}
