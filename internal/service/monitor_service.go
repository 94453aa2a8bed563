package service

import (
	"context"

	"ai-research-be/internal/pkg/logger"
	"ai-research-be/pkg/events"
	pktNats "ai-research-be/pkg/nats"
)

// MonitorService consumes the system event stream and writes an audit
// trail of request lifecycle events through the structured logger.
type MonitorService struct {
	subscriber *pktNats.Subscriber
	logger     logger.ILogger
}

func NewMonitorService(sub *pktNats.Subscriber, log logger.ILogger) *MonitorService {
	return &MonitorService{
		subscriber: sub,
		logger:     log,
	}
}

// Start begins listening to the event bus with a durable consumer.
func (s *MonitorService) Start() {
	if s.subscriber == nil {
		s.logger.Warn("MonitorService", "Event bus unavailable, audit trail disabled", nil)
		return
	}

	err := s.subscriber.Subscribe("events.>", "monitor-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("MonitorService", "Failed to start event subscriber", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Info("MonitorService", "Monitor service started, listening to events.>", nil)
}

func (s *MonitorService) handleEvent(ctx context.Context, event events.Event) error {
	details := map[string]interface{}{"type": event.EventType()}
	for key, value := range event.Payload() {
		details[key] = value
	}

	switch event.EventType() {
	case events.TypeRequestRejected:
		s.logger.Warn("MonitorService", "Request rejected", details)
	default:
		s.logger.Info("MonitorService", "Request event", details)
	}
	return nil
}
