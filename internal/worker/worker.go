package worker

import (
	"context"
	"encoding/json"
	"time"

	"storeadmin/internal/config"
	"storeadmin/internal/events"
	"storeadmin/internal/logger"

	"github.com/segmentio/kafka-go"
)

// Worker consumes server status events and surfaces transitions in the logs,
// the hook point for future alerting.
type Worker struct {
	config *config.Config
	logger *logger.Logger
	reader *kafka.Reader
}

func New(cfg *config.Config, logger *logger.Logger) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{cfg.KafkaBrokers},
		GroupID:        "storeadmin-worker",
		Topic:          events.Topic,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	return &Worker{
		config: cfg,
		logger: logger,
		reader: reader,
	}
}

func (w *Worker) Start() {
	w.logger.Info("Worker started, listening for status events...")

	for {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		message, err := w.reader.ReadMessage(ctx)
		cancel()

		if err != nil {
			w.logger.Error("Failed to read message: %v", err)
			continue
		}

		var event events.StatusEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			w.logger.Error("Failed to parse event: %v", err)
			continue
		}

		w.process(event)
	}
}

func (w *Worker) process(event events.StatusEvent) {
	switch event.Current {
	case "online":
		w.logger.Info("Server %s (%s) is back online", event.Name, event.URL)
	case "error":
		w.logger.Error("Server %s (%s) went from %s to error: %s", event.Name, event.URL, event.Previous, event.ErrorMessage)
	default:
		w.logger.Warn("Server %s (%s) changed status: %s -> %s", event.Name, event.URL, event.Previous, event.Current)
	}
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.reader.Close()
}
