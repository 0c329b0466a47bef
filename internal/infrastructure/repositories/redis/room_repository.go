package redis

import (
	"context"
	"errors"
	"fmt"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

// RedisRoomDirectory keeps each room's members in a list so join order is
// preserved, plus a set of known room ids for enumeration.
type RedisRoomDirectory struct {
	client *redis.Client
}

func NewRedisRoomDirectory(client *redis.Client) ports.RoomDirectory {
	return &RedisRoomDirectory{client: client}
}

func (r *RedisRoomDirectory) membersKey(roomID domain.RoomID) string {
	return fmt.Sprintf("livecast:room:%s:members", roomID)
}

func (r *RedisRoomDirectory) roomsKey() string {
	return "livecast:rooms"
}

func (r *RedisRoomDirectory) Join(ctx context.Context, roomID domain.RoomID, id domain.ConnID) error {
	key := r.membersKey(roomID)

	_, err := r.client.LPos(ctx, key, string(id), redis.LPosArgs{}).Result()
	if err == nil {
		// Already a member, join is idempotent.
		return nil
	}
	if !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to check room membership in Redis: %w", err)
	}

	if err := r.client.RPush(ctx, key, string(id)).Err(); err != nil {
		return fmt.Errorf("failed to add member to room in Redis: %w", err)
	}
	if err := r.client.SAdd(ctx, r.roomsKey(), string(roomID)).Err(); err != nil {
		return fmt.Errorf("failed to track room in Redis: %w", err)
	}
	return nil
}

func (r *RedisRoomDirectory) Leave(ctx context.Context, roomID domain.RoomID, id domain.ConnID) error {
	key := r.membersKey(roomID)

	if err := r.client.LRem(ctx, key, 0, string(id)).Err(); err != nil {
		return fmt.Errorf("failed to remove member from room in Redis: %w", err)
	}

	size, err := r.client.LLen(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to get room size from Redis: %w", err)
	}
	if size == 0 {
		// Empty member list key vanishes with LREM already; drop the room id.
		if err := r.client.SRem(ctx, r.roomsKey(), string(roomID)).Err(); err != nil {
			return fmt.Errorf("failed to untrack room in Redis: %w", err)
		}
	}
	return nil
}

func (r *RedisRoomDirectory) Members(ctx context.Context, roomID domain.RoomID) ([]domain.ConnID, error) {
	values, err := r.client.LRange(ctx, r.membersKey(roomID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get room members from Redis: %w", err)
	}

	members := make([]domain.ConnID, 0, len(values))
	for _, v := range values {
		members = append(members, domain.ConnID(v))
	}
	return members, nil
}

func (r *RedisRoomDirectory) Rooms(ctx context.Context) ([]domain.RoomID, error) {
	values, err := r.client.SMembers(ctx, r.roomsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms from Redis: %w", err)
	}

	rooms := make([]domain.RoomID, 0, len(values))
	for _, v := range values {
		rooms = append(rooms, domain.RoomID(v))
	}
	return rooms, nil
}
