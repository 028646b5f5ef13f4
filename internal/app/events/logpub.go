package events

import (
	"context"

	"github.com/FundPool-Network/funding_ledger/pkg/logger"
)

// LogPublisher writes events to the structured log.
type LogPublisher struct {
	log *logger.Logger
}

// NewLogPublisher creates a log-backed publisher.
func NewLogPublisher(log *logger.Logger) *LogPublisher {
	if log == nil {
		log = logger.NewDefault("events")
	}
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, evt Event) {
	p.log.WithField("event", evt.EventType()).WithField("data", evt).Info("event published")
}
