package services

import (
	"context"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"

	"go.uber.org/zap"
)

// broadcastService fans a payload out to every connection currently in the
// room, sender included. Streaming semantics: nothing is queued for late
// joiners, and a room with no members is a legal no-op.
type broadcastService struct {
	rooms   ports.RoomDirectory
	sender  ports.Sender
	metrics ports.SignalMetrics
	logger  *zap.SugaredLogger
}

func NewBroadcastService(rooms ports.RoomDirectory, sender ports.Sender, metrics ports.SignalMetrics, logger *zap.SugaredLogger) ports.EventBroadcaster {
	return &broadcastService{
		rooms:   rooms,
		sender:  sender,
		metrics: metrics,
		logger:  logger,
	}
}

func (b *broadcastService) Broadcast(ctx context.Context, roomID domain.RoomID, event string, payload interface{}) error {
	members, err := b.rooms.Members(ctx, roomID)
	if err != nil {
		return err
	}

	delivered := 0
	for _, m := range members {
		if err := b.sender.Send(m, event, payload); err != nil {
			b.logger.Warnw("broadcast delivery failed",
				"event", event,
				"room_id", roomID,
				"to", m,
				"error", err,
			)
			continue
		}
		delivered++
	}

	b.metrics.EventBroadcast(event, delivered)
	b.logger.Debugw("broadcast event",
		"event", event,
		"room_id", roomID,
		"members", len(members),
		"delivered", delivered,
	)
	return nil
}
