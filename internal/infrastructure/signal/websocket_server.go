package signal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
	apperrors "livecast/pkg/errors"
	"livecast/pkg/tracing"
	"livecast/pkg/utils"

	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v3"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Should be configured properly for production
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type WebSocketServer struct {
	hub         *Hub
	coordinator ports.Coordinator
	router      ports.SignalRouter
	broadcaster ports.EventBroadcaster
	metrics     ports.SignalMetrics

	iceServers []webrtc.ICEServer

	pingInterval time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration

	logger *zap.SugaredLogger
}

// SignalMessage is one inbound client event.
type SignalMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinPayload struct {
	RoomID domain.RoomID `json:"roomId"`
	Role   domain.Role   `json:"role,omitempty"`
}

type LeavePayload struct {
	RoomID domain.RoomID `json:"roomId"`
}

type OfferPayload struct {
	RoomID domain.RoomID   `json:"roomId,omitempty"`
	Offer  json.RawMessage `json:"offer"`
	To     domain.ConnID   `json:"to"`
}

type AnswerPayload struct {
	RoomID domain.RoomID   `json:"roomId,omitempty"`
	Answer json.RawMessage `json:"answer"`
	To     domain.ConnID   `json:"to"`
}

type ICECandidatePayload struct {
	Candidate json.RawMessage `json:"candidate"`
	To        domain.ConnID   `json:"to"`
}

type SendMessagePayload struct {
	RoomID  domain.RoomID   `json:"roomId"`
	Message json.RawMessage `json:"message"`
}

type SendLikePayload struct {
	RoomID domain.RoomID `json:"roomId"`
	UserID string        `json:"userId"`
}

type UpdateViewerCountPayload struct {
	RoomID domain.RoomID `json:"roomId"`
	Count  int           `json:"count"`
}

// ConnectedPayload announces the server-assigned connection id and the ICE
// servers the client should use for its peer connection.
type ConnectedPayload struct {
	ID         domain.ConnID      `json:"id"`
	ICEServers []webrtc.ICEServer `json:"iceServers"`
}

func NewWebSocketServer(
	hub *Hub,
	coordinator ports.Coordinator,
	router ports.SignalRouter,
	broadcaster ports.EventBroadcaster,
	metrics ports.SignalMetrics,
	iceServers []webrtc.ICEServer,
	logger *zap.SugaredLogger,
) *WebSocketServer {
	return &WebSocketServer{
		hub:          hub,
		coordinator:  coordinator,
		router:       router,
		broadcaster:  broadcaster,
		metrics:      metrics,
		iceServers:   iceServers,
		pingInterval: 30 * time.Second, // Default ping interval
		readTimeout:  60 * time.Second, // Default read timeout
		writeTimeout: 10 * time.Second, // Default write timeout
		logger:       logger,
	}
}

// SetPingInterval sets ping interval for WebSocket connections
func (s *WebSocketServer) SetPingInterval(interval time.Duration) {
	s.pingInterval = interval
}

// SetReadTimeout sets read timeout for WebSocket connections
func (s *WebSocketServer) SetReadTimeout(timeout time.Duration) {
	s.readTimeout = timeout
}

// SetWriteTimeout sets write timeout for WebSocket connections
func (s *WebSocketServer) SetWriteTimeout(timeout time.Duration) {
	s.writeTimeout = timeout
}

func (s *WebSocketServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	connID := domain.ConnID(utils.GenerateConnectionID())
	cl := &client{id: connID, conn: conn}
	s.hub.add(cl)
	s.metrics.ConnectionOpened()

	if err := s.coordinator.Connect(r.Context(), connID); err != nil {
		s.logger.Errorw("failed to register connection", "conn_id", connID, "error", err)
	}

	s.logger.Infow("client connected", "conn_id", connID, "remote_addr", r.RemoteAddr)

	// Announce the assigned id and ICE configuration
	if err := cl.write(s.writeTimeout, Envelope{
		Type:    domain.EventConnected,
		Payload: ConnectedPayload{ID: connID, ICEServers: s.iceServers},
	}); err != nil {
		s.logger.Warnw("failed to send connected event", "conn_id", connID, "error", err)
	}

	// Set read deadline, refreshed by pongs and inbound messages
	conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		return nil
	})

	pingTicker := time.NewTicker(s.pingInterval)
	defer pingTicker.Stop()

	messageChan := make(chan SignalMessage, 10)
	errorChan := make(chan error, 1)

	// Reader goroutine
	go func() {
		for {
			var msg SignalMessage
			if err := conn.ReadJSON(&msg); err != nil {
				errorChan <- err
				return
			}
			conn.SetReadDeadline(time.Now().Add(s.readTimeout))
			messageChan <- msg
		}
	}()

	// Process messages and ping
	for {
		select {
		case msg := <-messageChan:
			start := time.Now()
			err := s.handleMessage(context.Background(), connID, msg)
			s.metrics.ObserveHandle(msg.Type, time.Since(start))
			if err != nil {
				s.logger.Infow("error handling message", "conn_id", connID, "type", msg.Type, "error", err)
				s.sendError(cl, err)
			}

		case <-pingTicker.C:
			if err := cl.ping(s.writeTimeout); err != nil {
				s.logger.Infow("error sending ping", "conn_id", connID, "error", err)
				goto cleanup
			}

		case err := <-errorChan:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Infow("error reading message", "conn_id", connID, "error", err)
			}
			goto cleanup
		}
	}

cleanup:
	s.hub.remove(connID)
	s.metrics.ConnectionClosed()

	if err := s.coordinator.Disconnect(context.Background(), connID); err != nil {
		s.logger.Warnw("error during disconnect teardown", "conn_id", connID, "error", err)
	}

	s.logger.Infow("client disconnected", "conn_id", connID)
}

func (s *WebSocketServer) handleMessage(ctx context.Context, connID domain.ConnID, msg SignalMessage) error {
	if msg.Type == "" {
		return apperrors.NewInvalidInputError("message type is required")
	}

	ctx, span := tracing.TraceSignalEvent(ctx, msg.Type, string(connID))
	defer span.End()

	var err error
	switch msg.Type {
	case domain.EventJoin:
		err = s.handleJoin(ctx, connID, msg)
	case domain.EventLeave:
		err = s.handleLeave(ctx, connID, msg)
	case domain.EventOffer:
		err = s.handleOffer(ctx, connID, msg)
	case domain.EventAnswer:
		err = s.handleAnswer(ctx, connID, msg)
	case domain.EventICECandidate:
		err = s.handleICECandidate(ctx, connID, msg)
	case domain.EventSendMessage:
		err = s.handleSendMessage(ctx, connID, msg)
	case domain.EventSendLike:
		err = s.handleSendLike(ctx, connID, msg)
	case domain.EventUpdateViewerCount:
		err = s.handleUpdateViewerCount(ctx, connID, msg)
	default:
		err = apperrors.NewInvalidInputError(fmt.Sprintf("unknown message type: %s", msg.Type))
	}

	if err != nil {
		tracing.RecordError(ctx, err)
	}
	return err
}

func (s *WebSocketServer) handleJoin(ctx context.Context, connID domain.ConnID, msg SignalMessage) error {
	var payload JoinPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return apperrors.NewInvalidInputError("invalid join payload")
	}
	if payload.RoomID == "" {
		return apperrors.NewInvalidInputError("roomId is required")
	}

	if err := s.coordinator.Join(ctx, connID, payload.RoomID, payload.Role); err != nil {
		switch {
		case errors.Is(err, domain.ErrBroadcasterTaken):
			return apperrors.NewConflictError("room already has a broadcaster")
		case errors.Is(err, domain.ErrInvalidRole):
			return apperrors.NewInvalidInputError(fmt.Sprintf("invalid role: %s", payload.Role))
		default:
			return apperrors.WrapError(err, apperrors.ErrCodeInternal, "join failed", http.StatusInternalServerError)
		}
	}
	return nil
}

func (s *WebSocketServer) handleLeave(ctx context.Context, connID domain.ConnID, msg SignalMessage) error {
	var payload LeavePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return apperrors.NewInvalidInputError("invalid leave payload")
	}
	return s.coordinator.Leave(ctx, connID, payload.RoomID)
}

func (s *WebSocketServer) handleOffer(ctx context.Context, connID domain.ConnID, msg SignalMessage) error {
	var payload OfferPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return apperrors.NewInvalidInputError("invalid offer payload")
	}
	return s.router.Relay(ctx, domain.EventOffer, connID, payload.To, payload.Offer)
}

func (s *WebSocketServer) handleAnswer(ctx context.Context, connID domain.ConnID, msg SignalMessage) error {
	var payload AnswerPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return apperrors.NewInvalidInputError("invalid answer payload")
	}
	return s.router.Relay(ctx, domain.EventAnswer, connID, payload.To, payload.Answer)
}

func (s *WebSocketServer) handleICECandidate(ctx context.Context, connID domain.ConnID, msg SignalMessage) error {
	var payload ICECandidatePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return apperrors.NewInvalidInputError("invalid ice-candidate payload")
	}
	return s.router.Relay(ctx, domain.EventICECandidate, connID, payload.To, payload.Candidate)
}

func (s *WebSocketServer) handleSendMessage(ctx context.Context, connID domain.ConnID, msg SignalMessage) error {
	var payload SendMessagePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return apperrors.NewInvalidInputError("invalid send-message payload")
	}
	if payload.RoomID == "" {
		return apperrors.NewInvalidInputError("roomId is required")
	}
	return s.broadcaster.Broadcast(ctx, payload.RoomID, domain.EventNewMessage, payload.Message)
}

func (s *WebSocketServer) handleSendLike(ctx context.Context, connID domain.ConnID, msg SignalMessage) error {
	var payload SendLikePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return apperrors.NewInvalidInputError("invalid send-like payload")
	}
	if payload.RoomID == "" {
		return apperrors.NewInvalidInputError("roomId is required")
	}
	return s.broadcaster.Broadcast(ctx, payload.RoomID, domain.EventNewLike, map[string]string{"userId": payload.UserID})
}

func (s *WebSocketServer) handleUpdateViewerCount(ctx context.Context, connID domain.ConnID, msg SignalMessage) error {
	var payload UpdateViewerCountPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return apperrors.NewInvalidInputError("invalid update-viewer-count payload")
	}
	if payload.RoomID == "" {
		return apperrors.NewInvalidInputError("roomId is required")
	}
	return s.broadcaster.Broadcast(ctx, payload.RoomID, domain.EventViewerCountUpdated, payload.Count)
}

func (s *WebSocketServer) sendError(cl *client, err error) {
	code := apperrors.ErrCodeInternal
	message := err.Error()
	if appErr := apperrors.GetAppError(err); appErr != nil {
		code = appErr.Code
		message = appErr.Message
	}

	writeErr := cl.write(s.writeTimeout, Envelope{
		Type: domain.EventError,
		Payload: map[string]string{
			"code":    string(code),
			"message": message,
		},
	})
	if writeErr != nil {
		s.logger.Debugw("failed to send error event", "conn_id", cl.id, "error", writeErr)
	}
}
