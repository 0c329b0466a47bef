package services

import (
	"context"
	"encoding/json"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"

	"go.uber.org/zap"
)

// payloadField maps a relay kind to the field the forwarded payload sits in,
// so an offer is delivered as offer{offer, from} and so on.
var payloadField = map[string]string{
	domain.EventOffer:        "offer",
	domain.EventAnswer:       "answer",
	domain.EventICECandidate: "candidate",
}

// routerService delivers signaling payloads to exactly one target connection.
// Routing is purely by target id; the room is informational. Undeliverable
// signals are dropped and logged, never reported back to the sender.
type routerService struct {
	sender  ports.Sender
	metrics ports.SignalMetrics
	logger  *zap.SugaredLogger
}

func NewRouterService(sender ports.Sender, metrics ports.SignalMetrics, logger *zap.SugaredLogger) ports.SignalRouter {
	return &routerService{
		sender:  sender,
		metrics: metrics,
		logger:  logger,
	}
}

func (r *routerService) Relay(ctx context.Context, kind string, from, to domain.ConnID, payload json.RawMessage) error {
	field, ok := payloadField[kind]
	if !ok {
		r.logger.Warnw("dropping relay of unknown kind", "kind", kind, "from", from)
		r.metrics.RelayDropped(kind, "unknown_kind")
		return nil
	}

	if to == "" {
		r.logger.Warnw("dropping relay with missing target", "kind", kind, "from", from)
		r.metrics.RelayDropped(kind, "missing_target")
		return nil
	}

	if !r.sender.IsConnected(to) {
		r.logger.Warnw("dropping relay to unconnected target",
			"kind", kind,
			"from", from,
			"to", to,
		)
		r.metrics.RelayDropped(kind, "target_not_connected")
		return nil
	}

	forwarded := map[string]interface{}{
		field:  payload,
		"from": from,
	}
	if err := r.sender.Send(to, kind, forwarded); err != nil {
		r.logger.Warnw("relay delivery failed",
			"kind", kind,
			"from", from,
			"to", to,
			"error", err,
		)
		r.metrics.RelayDropped(kind, "send_failed")
		return nil
	}

	r.metrics.RelayDelivered(kind)
	r.logger.Debugw("relayed signal", "kind", kind, "from", from, "to", to)
	return nil
}
