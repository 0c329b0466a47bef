package memory

import (
	"context"
	"sync"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
)

// MemoryRoomDirectory keeps each room's members as a join-ordered slice. The
// order matters for the existing-viewers snapshot a broadcaster receives.
type MemoryRoomDirectory struct {
	rooms map[domain.RoomID][]domain.ConnID
	mu    sync.RWMutex
}

func NewMemoryRoomDirectory() ports.RoomDirectory {
	return &MemoryRoomDirectory{
		rooms: make(map[domain.RoomID][]domain.ConnID),
	}
}

func (r *MemoryRoomDirectory) Join(ctx context.Context, roomID domain.RoomID, id domain.ConnID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := r.rooms[roomID]
	for _, m := range members {
		if m == id {
			return nil
		}
	}
	r.rooms[roomID] = append(members, id)
	return nil
}

func (r *MemoryRoomDirectory) Leave(ctx context.Context, roomID domain.RoomID, id domain.ConnID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, exists := r.rooms[roomID]
	if !exists {
		return nil
	}

	for i, m := range members {
		if m == id {
			members = append(members[:i], members[i+1:]...)
			break
		}
	}

	if len(members) == 0 {
		delete(r.rooms, roomID)
		return nil
	}
	r.rooms[roomID] = members
	return nil
}

func (r *MemoryRoomDirectory) Members(ctx context.Context, roomID domain.RoomID) ([]domain.ConnID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[roomID]
	out := make([]domain.ConnID, len(members))
	copy(out, members)
	return out, nil
}

func (r *MemoryRoomDirectory) Rooms(ctx context.Context) ([]domain.RoomID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]domain.RoomID, 0, len(r.rooms))
	for id := range r.rooms {
		ids = append(ids, id)
	}
	return ids, nil
}
