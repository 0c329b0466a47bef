package services

import (
	"context"
	"sync"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"

	"go.uber.org/zap"
)

// coordinatorService is the lifecycle manager: it owns the join/leave state
// machine and keeps the registry and room directory in agreement. A single
// mutex serializes lifecycle transitions so membership scans and role lookups
// never interleave with concurrent joins or leaves.
type coordinatorService struct {
	registry ports.ConnectionRegistry
	rooms    ports.RoomDirectory
	sender   ports.Sender
	metrics  ports.SignalMetrics
	logger   *zap.SugaredLogger

	mu sync.Mutex
}

func NewCoordinatorService(
	registry ports.ConnectionRegistry,
	rooms ports.RoomDirectory,
	sender ports.Sender,
	metrics ports.SignalMetrics,
	logger *zap.SugaredLogger,
) ports.Coordinator {
	return &coordinatorService{
		registry: registry,
		rooms:    rooms,
		sender:   sender,
		metrics:  metrics,
		logger:   logger,
	}
}

func (s *coordinatorService) Connect(ctx context.Context, id domain.ConnID) error {
	if err := s.registry.Register(ctx, id); err != nil {
		return err
	}
	s.logger.Infow("connection registered", "conn_id", id)
	return nil
}

func (s *coordinatorService) Join(ctx context.Context, id domain.ConnID, roomID domain.RoomID, role domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if role == "" {
		// A role-less join is a viewer join.
		role = domain.RoleViewer
	}
	if !role.Valid() {
		return domain.ErrInvalidRole
	}

	conn, err := s.registry.Get(ctx, id)
	if err != nil {
		// Transport raced the accept path; register on the fly.
		if err := s.registry.Register(ctx, id); err != nil {
			return err
		}
		conn = &domain.Connection{ID: id}
	}

	// One room per connection: a join while joined elsewhere leaves the old
	// room first, with its usual viewer-left fanout.
	if conn.Joined() && conn.RoomID != roomID {
		s.logger.Warnw("connection joining while already in another room, leaving old room",
			"conn_id", id,
			"old_room", conn.RoomID,
			"new_room", roomID,
		)
		if err := s.leaveLocked(ctx, id, conn.RoomID); err != nil {
			return err
		}
	}

	if role == domain.RoleBroadcaster {
		current, err := s.broadcasterOf(ctx, roomID)
		if err != nil {
			return err
		}
		if current != "" && current != id {
			s.logger.Warnw("rejecting broadcaster claim, room already has one",
				"conn_id", id,
				"room_id", roomID,
				"broadcaster", current,
			)
			return domain.ErrBroadcasterTaken
		}
	}

	if err := s.rooms.Join(ctx, roomID, id); err != nil {
		return err
	}
	if err := s.registry.SetRole(ctx, id, roomID, role); err != nil {
		return err
	}

	members, err := s.rooms.Members(ctx, roomID)
	if err != nil {
		return err
	}
	s.metrics.RoomMembers(string(roomID), len(members))

	s.logger.Infow("connection joined room",
		"conn_id", id,
		"room_id", roomID,
		"role", role,
		"members", len(members),
	)

	switch role {
	case domain.RoleViewer:
		s.notifyBroadcaster(ctx, roomID, id)
	case domain.RoleBroadcaster:
		s.sendExistingViewers(ctx, roomID, id, members)
	}
	return nil
}

// notifyBroadcaster delivers viewer-joined to the room's broadcaster, if one
// is present. A viewer joining a broadcaster-less room waits silently.
func (s *coordinatorService) notifyBroadcaster(ctx context.Context, roomID domain.RoomID, viewer domain.ConnID) {
	broadcaster, err := s.broadcasterOf(ctx, roomID)
	if err != nil || broadcaster == "" {
		return
	}
	if err := s.sender.Send(broadcaster, domain.EventViewerJoined, viewer); err != nil {
		s.logger.Warnw("failed to notify broadcaster about viewer",
			"broadcaster", broadcaster,
			"viewer", viewer,
			"error", err,
		)
	}
}

// sendExistingViewers delivers the one-shot snapshot of members that joined
// before the broadcaster, in join order. Members whose role is not yet known
// are included: a racing viewer may join before its role is recorded.
func (s *coordinatorService) sendExistingViewers(ctx context.Context, roomID domain.RoomID, broadcaster domain.ConnID, members []domain.ConnID) {
	var viewers []domain.ConnID
	for _, m := range members {
		if m == broadcaster {
			continue
		}
		conn, err := s.registry.Get(ctx, m)
		if err == nil && conn.Role == domain.RoleBroadcaster {
			continue
		}
		viewers = append(viewers, m)
	}
	if len(viewers) == 0 {
		return
	}

	s.logger.Infow("broadcaster joined with existing viewers",
		"broadcaster", broadcaster,
		"room_id", roomID,
		"viewers", len(viewers),
	)
	if err := s.sender.Send(broadcaster, domain.EventExistingViewers, viewers); err != nil {
		s.logger.Warnw("failed to send existing viewers snapshot",
			"broadcaster", broadcaster,
			"error", err,
		)
	}
}

func (s *coordinatorService) Leave(ctx context.Context, id domain.ConnID, roomID domain.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, err := s.registry.Get(ctx, id)
	if err != nil {
		return nil
	}
	if roomID == "" {
		roomID = conn.RoomID
	}
	if conn.RoomID != roomID || roomID == "" {
		// Repeat leave, or leave for a room the connection never joined.
		s.logger.Debugw("ignoring leave for non-member", "conn_id", id, "room_id", roomID)
		return nil
	}
	return s.leaveLocked(ctx, id, roomID)
}

// leaveLocked removes the connection from the room, clears its role and
// notifies the remaining members. Caller holds s.mu.
func (s *coordinatorService) leaveLocked(ctx context.Context, id domain.ConnID, roomID domain.RoomID) error {
	if err := s.rooms.Leave(ctx, roomID, id); err != nil {
		return err
	}
	if err := s.registry.SetRole(ctx, id, "", ""); err != nil {
		return err
	}

	members, err := s.rooms.Members(ctx, roomID)
	if err != nil {
		return err
	}
	s.metrics.RoomMembers(string(roomID), len(members))

	s.logger.Infow("connection left room",
		"conn_id", id,
		"room_id", roomID,
		"remaining", len(members),
	)

	for _, m := range members {
		if err := s.sender.Send(m, domain.EventViewerLeft, id); err != nil {
			s.logger.Warnw("failed to deliver viewer-left",
				"to", m,
				"left", id,
				"error", err,
			)
		}
	}
	return nil
}

func (s *coordinatorService) Disconnect(ctx context.Context, id domain.ConnID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, err := s.registry.Get(ctx, id)
	if err != nil {
		// Already torn down, disconnect is idempotent.
		s.logger.Debugw("disconnect for unknown connection", "conn_id", id)
		return nil
	}

	if conn.Joined() {
		if err := s.leaveLocked(ctx, id, conn.RoomID); err != nil {
			s.logger.Warnw("failed to leave room on disconnect",
				"conn_id", id,
				"room_id", conn.RoomID,
				"error", err,
			)
		}
	}

	if err := s.registry.Remove(ctx, id); err != nil {
		return err
	}
	s.logger.Infow("connection removed", "conn_id", id)
	return nil
}

func (s *coordinatorService) RoomInfo(ctx context.Context, roomID domain.RoomID) (*domain.RoomInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members, err := s.rooms.Members(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, domain.ErrRoomNotFound
	}

	info := &domain.RoomInfo{
		ID:          roomID,
		MemberCount: len(members),
		Viewers:     []domain.ConnID{},
	}
	for _, m := range members {
		conn, err := s.registry.Get(ctx, m)
		if err == nil && conn.Role == domain.RoleBroadcaster {
			info.Broadcaster = m
			continue
		}
		info.Viewers = append(info.Viewers, m)
	}
	return info, nil
}

func (s *coordinatorService) Rooms(ctx context.Context) ([]domain.RoomID, error) {
	return s.rooms.Rooms(ctx)
}

// broadcasterOf scans current members for the one registered as broadcaster.
func (s *coordinatorService) broadcasterOf(ctx context.Context, roomID domain.RoomID) (domain.ConnID, error) {
	members, err := s.rooms.Members(ctx, roomID)
	if err != nil {
		return "", err
	}
	for _, m := range members {
		conn, err := s.registry.Get(ctx, m)
		if err != nil {
			continue
		}
		if conn.Role == domain.RoleBroadcaster {
			return m, nil
		}
	}
	return "", nil
}
