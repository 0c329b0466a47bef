package domain

type ConnID string
type RoomID string

// Role is assigned on join; a freshly accepted connection has none.
type Role string

const (
	RoleBroadcaster Role = "broadcaster"
	RoleViewer      Role = "viewer"
)

func (r Role) Valid() bool {
	return r == RoleBroadcaster || r == RoleViewer
}

type Connection struct {
	ID     ConnID
	Role   Role
	RoomID RoomID
}

// Joined reports whether the connection is currently a member of a room.
func (c *Connection) Joined() bool {
	return c.RoomID != ""
}
