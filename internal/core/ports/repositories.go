package ports

import (
	"context"

	"livecast/internal/core/domain"
)

// ConnectionRegistry tracks every live connection's assigned role and room.
// Mutations on unknown ids are no-ops; only Get reports absence.
type ConnectionRegistry interface {
	Register(ctx context.Context, id domain.ConnID) error
	SetRole(ctx context.Context, id domain.ConnID, roomID domain.RoomID, role domain.Role) error
	Get(ctx context.Context, id domain.ConnID) (*domain.Connection, error)
	Remove(ctx context.Context, id domain.ConnID) error
}

// RoomDirectory maps a room id to its current members. Join and Leave are
// idempotent; Members returns ids in join order. An empty room may be dropped,
// a later Join recreates it.
type RoomDirectory interface {
	Join(ctx context.Context, roomID domain.RoomID, id domain.ConnID) error
	Leave(ctx context.Context, roomID domain.RoomID, id domain.ConnID) error
	Members(ctx context.Context, roomID domain.RoomID) ([]domain.ConnID, error)
	Rooms(ctx context.Context) ([]domain.RoomID, error)
}
