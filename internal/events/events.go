package events

import (
	"context"
	"encoding/json"
	"time"

	"storeadmin/internal/logger"
	"storeadmin/internal/registry"

	"github.com/segmentio/kafka-go"
)

// Topic carries one message per server status transition.
const Topic = "server-status-events"

// StatusEvent is the wire shape of a status transition. Credentials are
// deliberately not included.
type StatusEvent struct {
	ServerID     string    `json:"server_id"`
	Name         string    `json:"name"`
	URL          string    `json:"url"`
	Previous     string    `json:"previous"`
	Current      string    `json:"current"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Publisher writes status events to Kafka. It satisfies registry.StatusSink.
type Publisher struct {
	writer *kafka.Writer
	logger *logger.Logger
}

func NewPublisher(brokers string, logger *logger.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers),
		Topic:    Topic,
		Balancer: &kafka.LeastBytes{},
	}

	return &Publisher{
		writer: writer,
		logger: logger,
	}
}

func (p *Publisher) ServerStatusChanged(ctx context.Context, profile registry.ServerProfile, previous registry.Status) error {
	event := StatusEvent{
		ServerID:     profile.ID,
		Name:         profile.Name,
		URL:          profile.URL,
		Previous:     string(previous),
		Current:      string(profile.Status),
		ErrorMessage: profile.ErrorMessage,
		Timestamp:    time.Now(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	p.logger.Debug("Publishing status event for server %s: %s -> %s", profile.ID, previous, profile.Status)

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(profile.ID),
		Value: value,
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
