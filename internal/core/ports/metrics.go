package ports

import "time"

// SignalMetrics decouples the services from the concrete Prometheus
// collector. Implementations must be safe for concurrent use.
type SignalMetrics interface {
	ConnectionOpened()
	ConnectionClosed()
	RelayDelivered(kind string)
	RelayDropped(kind, reason string)
	EventBroadcast(kind string, receivers int)
	RoomMembers(roomID string, count int)
	ObserveHandle(event string, d time.Duration)
}
