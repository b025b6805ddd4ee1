package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/elotech/helpdesk/internal/domain"
	"github.com/elotech/helpdesk/internal/events"
	"github.com/elotech/helpdesk/internal/observability"
	"github.com/elotech/helpdesk/internal/service"
	"github.com/elotech/helpdesk/internal/watch"
)

// SnapshotFanout bridges domain events to snapshot subscribers. Every
// ticket event triggers a fresh read of the full snapshot which is then
// pushed through the hub; deletions push a tombstone instead. Because
// each event re-reads current state, bursts collapse naturally: a
// subscriber that misses an intermediate snapshot still converges on the
// latest one.
type SnapshotFanout struct {
	tickets *service.TicketService
	hub     *watch.Hub
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewSnapshotFanout constructs the fanout worker.
func NewSnapshotFanout(tickets *service.TicketService, hub *watch.Hub, metrics *observability.Metrics, logger *zap.Logger) *SnapshotFanout {
	return &SnapshotFanout{tickets: tickets, hub: hub, metrics: metrics, logger: logger}
}

// Register subscribes the fanout to every ticket event type.
func (f *SnapshotFanout) Register(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	for _, eventType := range events.AllTicketEvents {
		dispatcher.Subscribe(eventType, f.handle)
	}
}

func (f *SnapshotFanout) handle(ctx context.Context, event events.Event) error {
	if event.Type == events.EventTicketDeleted {
		f.publish(service.Tombstone(event.TicketID, event.RequesterID))
		return nil
	}

	snapshot, err := f.tickets.Snapshot(ctx, event.TicketID)
	if err != nil {
		// The ticket may have been deleted between the event and the
		// read; the deletion event carries its own tombstone.
		f.logger.Warn("snapshot fanout read failed",
			zap.String("ticket_id", event.TicketID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		return nil
	}
	f.publish(*snapshot)
	return nil
}

func (f *SnapshotFanout) publish(snapshot domain.TicketSnapshot) {
	f.hub.Publish(snapshot)
	if f.metrics != nil {
		f.metrics.RecordSnapshot()
	}
}
