package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/metaarchitect/research-engine/pkg/channels/gochannel"
	"github.com/metaarchitect/research-engine/pkg/channels/kafka"
	"github.com/metaarchitect/research-engine/pkg/config"
	"github.com/metaarchitect/research-engine/pkg/eventbus"
)

// NewEventBus creates the lifecycle event bus. It returns nil when events are disabled.
func NewEventBus(logger *slog.Logger, cfg config.EventBusConfig, serviceName string) (eventbus.EventBus, error) {
	switch cfg.Provider {
	case "", "none":
		return nil, nil
	case "gochannel":
		pub, sub, err := gochannel.CreateChannel(watermill.NewSlogLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("failed to create GoChannel pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	case "kafka":
		pub, sub, err := kafka.CreateChannel(watermill.NewSlogLogger(logger), kafka.ParseBrokers(cfg.Brokers), serviceName)
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	default:
		return nil, fmt.Errorf("unsupported event bus provider %q", cfg.Provider)
	}
}
