package memory

import (
	"context"
	"testing"

	"livecast/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionRegistryLifecycle(t *testing.T) {
	reg := NewMemoryConnectionRegistry()
	ctx := context.Background()

	require.NoError(t, reg.Register(ctx, "c1"))

	conn, err := reg.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.ConnID("c1"), conn.ID)
	assert.Empty(t, conn.Role)
	assert.False(t, conn.Joined())

	require.NoError(t, reg.SetRole(ctx, "c1", "r1", domain.RoleViewer))
	conn, err = reg.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleViewer, conn.Role)
	assert.Equal(t, domain.RoomID("r1"), conn.RoomID)

	// Overwrite is idempotent
	require.NoError(t, reg.SetRole(ctx, "c1", "r1", domain.RoleViewer))

	require.NoError(t, reg.Remove(ctx, "c1"))
	_, err = reg.Get(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrConnectionNotFound)
}

func TestConnectionRegistryUnknownIDsAreNoOps(t *testing.T) {
	reg := NewMemoryConnectionRegistry()
	ctx := context.Background()

	assert.NoError(t, reg.SetRole(ctx, "ghost", "r1", domain.RoleViewer))
	assert.NoError(t, reg.Remove(ctx, "ghost"))

	_, err := reg.Get(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrConnectionNotFound)
}

func TestConnectionRegistryGetReturnsCopy(t *testing.T) {
	reg := NewMemoryConnectionRegistry()
	ctx := context.Background()

	require.NoError(t, reg.Register(ctx, "c1"))

	conn, err := reg.Get(ctx, "c1")
	require.NoError(t, err)
	conn.RoomID = "mutated"

	fresh, err := reg.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, fresh.RoomID)
}

func TestRoomDirectoryJoinOrder(t *testing.T) {
	dir := NewMemoryRoomDirectory()
	ctx := context.Background()

	require.NoError(t, dir.Join(ctx, "r1", "a"))
	require.NoError(t, dir.Join(ctx, "r1", "b"))
	require.NoError(t, dir.Join(ctx, "r1", "c"))

	// Rejoin does not change position
	require.NoError(t, dir.Join(ctx, "r1", "a"))

	members, err := dir.Members(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []domain.ConnID{"a", "b", "c"}, members)
}

func TestRoomDirectoryLeaveIdempotent(t *testing.T) {
	dir := NewMemoryRoomDirectory()
	ctx := context.Background()

	require.NoError(t, dir.Join(ctx, "r1", "a"))
	require.NoError(t, dir.Leave(ctx, "r1", "a"))
	require.NoError(t, dir.Leave(ctx, "r1", "a"))
	require.NoError(t, dir.Leave(ctx, "never-existed", "a"))

	members, err := dir.Members(ctx, "r1")
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestRoomDirectoryEmptyRoomDroppedAndRecreated(t *testing.T) {
	dir := NewMemoryRoomDirectory()
	ctx := context.Background()

	require.NoError(t, dir.Join(ctx, "r1", "a"))
	require.NoError(t, dir.Leave(ctx, "r1", "a"))

	rooms, err := dir.Rooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, rooms)

	require.NoError(t, dir.Join(ctx, "r1", "b"))
	members, err := dir.Members(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []domain.ConnID{"b"}, members)
}

func TestRoomDirectoryRooms(t *testing.T) {
	dir := NewMemoryRoomDirectory()
	ctx := context.Background()

	require.NoError(t, dir.Join(ctx, "r1", "a"))
	require.NoError(t, dir.Join(ctx, "r2", "b"))

	rooms, err := dir.Rooms(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.RoomID{"r1", "r2"}, rooms)
}
