package domain

// RoomInfo is a point-in-time snapshot of a room, for the stats API.
type RoomInfo struct {
	ID          RoomID   `json:"room_id"`
	MemberCount int      `json:"member_count"`
	Broadcaster ConnID   `json:"broadcaster,omitempty"`
	Viewers     []ConnID `json:"viewers"`
}
