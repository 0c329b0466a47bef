package redis

import (
	"context"
	"fmt"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

// RedisConnectionRegistry stores each connection as a hash with role and room
// fields. Coordination state is transient, entries live only as long as the
// connection and carry no TTL beyond explicit removal.
type RedisConnectionRegistry struct {
	client *redis.Client
	prefix string
}

func NewRedisConnectionRegistry(client *redis.Client) ports.ConnectionRegistry {
	return &RedisConnectionRegistry{
		client: client,
		prefix: "livecast:conn:",
	}
}

func (r *RedisConnectionRegistry) connKey(id domain.ConnID) string {
	return r.prefix + string(id)
}

func (r *RedisConnectionRegistry) Register(ctx context.Context, id domain.ConnID) error {
	key := r.connKey(id)
	if err := r.client.HSet(ctx, key, "role", "", "room", "").Err(); err != nil {
		return fmt.Errorf("failed to register connection in Redis: %w", err)
	}
	return nil
}

func (r *RedisConnectionRegistry) SetRole(ctx context.Context, id domain.ConnID, roomID domain.RoomID, role domain.Role) error {
	key := r.connKey(id)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to check connection in Redis: %w", err)
	}
	if exists == 0 {
		// Unknown ids are a no-op, matching the memory registry.
		return nil
	}
	if err := r.client.HSet(ctx, key, "role", string(role), "room", string(roomID)).Err(); err != nil {
		return fmt.Errorf("failed to set connection role in Redis: %w", err)
	}
	return nil
}

func (r *RedisConnectionRegistry) Get(ctx context.Context, id domain.ConnID) (*domain.Connection, error) {
	key := r.connKey(id)
	fields, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get connection from Redis: %w", err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrConnectionNotFound
	}

	return &domain.Connection{
		ID:     id,
		Role:   domain.Role(fields["role"]),
		RoomID: domain.RoomID(fields["room"]),
	}, nil
}

func (r *RedisConnectionRegistry) Remove(ctx context.Context, id domain.ConnID) error {
	if err := r.client.Del(ctx, r.connKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete connection from Redis: %w", err)
	}
	return nil
}
