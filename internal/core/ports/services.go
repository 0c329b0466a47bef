package ports

import (
	"context"
	"encoding/json"

	"livecast/internal/core/domain"
)

// Sender is the transport side seen by the services: best-effort delivery of
// one named event to one connection. Implemented by the websocket hub.
type Sender interface {
	Send(id domain.ConnID, event string, payload interface{}) error
	IsConnected(id domain.ConnID) bool
}

// Coordinator drives the per-connection lifecycle: register on accept, join
// and leave rooms, tear down on transport disconnect. Disconnect is safe to
// call after an explicit leave, or twice.
type Coordinator interface {
	Connect(ctx context.Context, id domain.ConnID) error
	Join(ctx context.Context, id domain.ConnID, roomID domain.RoomID, role domain.Role) error
	Leave(ctx context.Context, id domain.ConnID, roomID domain.RoomID) error
	Disconnect(ctx context.Context, id domain.ConnID) error
	RoomInfo(ctx context.Context, roomID domain.RoomID) (*domain.RoomInfo, error)
	Rooms(ctx context.Context) ([]domain.RoomID, error)
}

// SignalRouter relays one offer/answer/ice-candidate payload to the named
// target connection. Undeliverable signals are dropped and logged, never
// surfaced to the sender.
type SignalRouter interface {
	Relay(ctx context.Context, kind string, from, to domain.ConnID, payload json.RawMessage) error
}

// EventBroadcaster fans a payload out to every current member of a room.
type EventBroadcaster interface {
	Broadcast(ctx context.Context, roomID domain.RoomID, event string, payload interface{}) error
}
