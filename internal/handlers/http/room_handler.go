package http

import (
	"errors"
	"net/http"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
	apperrors "livecast/pkg/errors"

	"github.com/gin-gonic/gin"
)

// RoomHandler exposes read-only coordination state for dashboards and
// debugging. It never mutates rooms; all writes go through the websocket.
type RoomHandler struct {
	coordinator ports.Coordinator
}

func NewRoomHandler(coordinator ports.Coordinator) *RoomHandler {
	return &RoomHandler{coordinator: coordinator}
}

func (h *RoomHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.GET("/rooms", h.ListRooms)
		api.GET("/rooms/:id", h.GetRoom)
	}
}

func (h *RoomHandler) ListRooms(c *gin.Context) {
	rooms, err := h.coordinator.Rooms(c.Request.Context())
	if err != nil {
		appErr := apperrors.NewInternalError("failed to list rooms")
		c.JSON(appErr.HTTPStatus, gin.H{"error": appErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rooms": rooms,
		"count": len(rooms),
	})
}

func (h *RoomHandler) GetRoom(c *gin.Context) {
	roomID := domain.RoomID(c.Param("id"))

	info, err := h.coordinator.RoomInfo(c.Request.Context(), roomID)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			appErr := apperrors.NewNotFoundError("room")
			c.JSON(appErr.HTTPStatus, gin.H{"error": appErr.Message})
			return
		}
		appErr := apperrors.NewInternalError("failed to load room")
		c.JSON(appErr.HTTPStatus, gin.H{"error": appErr.Message})
		return
	}

	c.JSON(http.StatusOK, info)
}
