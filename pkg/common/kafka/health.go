package kafka

import (
	"context"
	"errors"

	"github.com/segmentio/kafka-go"
)

// Ping succeeds once any broker accepts a connection.
func Ping(ctx context.Context, brokers []string) error {
	lastErr := errors.New("no kafka brokers configured")
	for _, broker := range brokers {
		conn, err := kafka.DialContext(ctx, "tcp", broker)
		if err == nil {
			return conn.Close()
		}
		lastErr = err
	}
	return lastErr
}
