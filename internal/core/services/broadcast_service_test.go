package services

import (
	"context"
	"testing"

	"livecast/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastReachesAllMembers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.join(t, "b", "r1", domain.RoleBroadcaster)
	env.join(t, "v1", "r1", domain.RoleViewer)
	env.join(t, "outsider", "r2", domain.RoleViewer)
	env.sender.reset()

	payload := map[string]string{"text": "hello"}
	require.NoError(t, env.broadcaster.Broadcast(ctx, "r1", domain.EventNewMessage, payload))

	for _, id := range []domain.ConnID{"b", "v1"} {
		msgs := env.sender.eventsOfType(id, domain.EventNewMessage)
		require.Len(t, msgs, 1, "member %s", id)
		assert.Equal(t, payload, msgs[0].Payload)
	}

	// Members of other rooms receive nothing
	assert.Empty(t, env.sender.eventsFor("outsider"))
}

func TestBroadcastEmptyRoomIsNoOp(t *testing.T) {
	env := newTestEnv(t)

	err := env.broadcaster.Broadcast(context.Background(), "nobody-home", domain.EventNewLike, map[string]string{"userId": "u1"})
	require.NoError(t, err)
	assert.Empty(t, env.sender.events)
}

func TestBroadcastSurvivesFailedDelivery(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.join(t, "v1", "r1", domain.RoleViewer)
	env.join(t, "v2", "r1", domain.RoleViewer)
	env.sender.reset()
	env.sender.setOffline("v1")

	require.NoError(t, env.broadcaster.Broadcast(ctx, "r1", domain.EventViewerCountUpdated, 2))

	counts := env.sender.eventsOfType("v2", domain.EventViewerCountUpdated)
	require.Len(t, counts, 1)
	assert.Equal(t, 2, counts[0].Payload)
}
