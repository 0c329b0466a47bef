package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
	"livecast/internal/core/services"
	"livecast/internal/infrastructure/repositories/memory"
	rlog "livecast/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopSender struct{}

func (nopSender) Send(domain.ConnID, string, interface{}) error { return nil }
func (nopSender) IsConnected(domain.ConnID) bool                { return true }

type nopMetrics struct{}

func (nopMetrics) ConnectionOpened()                   {}
func (nopMetrics) ConnectionClosed()                   {}
func (nopMetrics) RelayDelivered(string)               {}
func (nopMetrics) RelayDropped(string, string)         {}
func (nopMetrics) EventBroadcast(string, int)          {}
func (nopMetrics) RoomMembers(string, int)             {}
func (nopMetrics) ObserveHandle(string, time.Duration) {}

func newTestRouter(t *testing.T) (*gin.Engine, ports.Coordinator) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := memory.NewMemoryConnectionRegistry()
	rooms := memory.NewMemoryRoomDirectory()
	coordinator := services.NewCoordinatorService(registry, rooms, nopSender{}, nopMetrics{}, rlog.NewNop())

	router := gin.New()
	NewRoomHandler(coordinator).SetupRoutes(router)
	return router, coordinator
}

func TestListRoomsEmpty(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/rooms", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Rooms []domain.RoomID `json:"rooms"`
		Count int             `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Zero(t, body.Count)
	assert.Empty(t, body.Rooms)
}

func TestGetRoomReturnsMembers(t *testing.T) {
	router, coordinator := newTestRouter(t)

	ctx := context.Background()
	require.NoError(t, coordinator.Join(ctx, "b", "r1", domain.RoleBroadcaster))
	require.NoError(t, coordinator.Join(ctx, "v", "r1", domain.RoleViewer))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/rooms/r1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var info domain.RoomInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, domain.RoomID("r1"), info.ID)
	assert.Equal(t, 2, info.MemberCount)
	assert.Equal(t, domain.ConnID("b"), info.Broadcaster)
	assert.Equal(t, []domain.ConnID{"v"}, info.Viewers)
}

func TestGetRoomNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/rooms/nope", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
