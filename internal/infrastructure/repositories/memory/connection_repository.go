package memory

import (
	"context"
	"sync"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
)

type MemoryConnectionRegistry struct {
	conns map[domain.ConnID]*domain.Connection
	mu    sync.RWMutex
}

func NewMemoryConnectionRegistry() ports.ConnectionRegistry {
	return &MemoryConnectionRegistry{
		conns: make(map[domain.ConnID]*domain.Connection),
	}
}

func (r *MemoryConnectionRegistry) Register(ctx context.Context, id domain.ConnID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.conns[id]; exists {
		return nil
	}
	r.conns[id] = &domain.Connection{ID: id}
	return nil
}

func (r *MemoryConnectionRegistry) SetRole(ctx context.Context, id domain.ConnID, roomID domain.RoomID, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, exists := r.conns[id]
	if !exists {
		// Unknown ids are a no-op, the connection may already be gone.
		return nil
	}
	conn.RoomID = roomID
	conn.Role = role
	return nil
}

func (r *MemoryConnectionRegistry) Get(ctx context.Context, id domain.ConnID) (*domain.Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, exists := r.conns[id]
	if !exists {
		return nil, domain.ErrConnectionNotFound
	}

	copied := *conn
	return &copied, nil
}

func (r *MemoryConnectionRegistry) Remove(ctx context.Context, id domain.ConnID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.conns, id)
	return nil
}
