package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"fleet-tracker/internal/config"
	"fleet-tracker/internal/models"
	"fleet-tracker/internal/utils"

	"github.com/go-redis/redis/v8"
)

// Redis key patterns
const (
	deviceLatestPattern = "device_latest:%d"

	// StatusChannel carries status mutations from the HTTP layer to a
	// running live loop.
	StatusChannel = "device_status"
)

// StatusChange is the message published when a device's status is mutated.
type StatusChange struct {
	DeviceID int    `json:"device_id"`
	Status   string `json:"status"`
}

// Client caches the latest record per device and relays status changes.
// The store stays authoritative; everything here is advisory.
type Client struct {
	rdb    *redis.Client
	logger *utils.Logger
}

// New connects to the configured redis instance.
func New(cfg *config.Config, logger *utils.Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis connect failed: %w", err)
	}

	return &Client{rdb: rdb, logger: logger}, nil
}

// SetLatest caches the most recent record for a device.
func (c *Client) SetLatest(ctx context.Context, location models.Location) error {
	payload, err := json.Marshal(location)
	if err != nil {
		return fmt.Errorf("failed to marshal location: %w", err)
	}
	key := fmt.Sprintf(deviceLatestPattern, location.DeviceID)
	return c.rdb.Set(ctx, key, payload, 0).Err()
}

// GetLatest returns the cached latest record for a device, or nil on a miss.
func (c *Client) GetLatest(ctx context.Context, deviceID int) (*models.Location, error) {
	key := fmt.Sprintf(deviceLatestPattern, deviceID)
	payload, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var location models.Location
	if err := json.Unmarshal(payload, &location); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached location: %w", err)
	}
	return &location, nil
}

// PublishStatusChange broadcasts a status mutation.
func (c *Client) PublishStatusChange(ctx context.Context, deviceID int, status string) error {
	payload, err := json.Marshal(StatusChange{DeviceID: deviceID, Status: status})
	if err != nil {
		return fmt.Errorf("failed to marshal status change: %w", err)
	}
	return c.rdb.Publish(ctx, StatusChannel, payload).Err()
}

// SubscribeStatusChanges delivers status mutations until ctx is done.
// Undecodable messages are logged and dropped.
func (c *Client) SubscribeStatusChanges(ctx context.Context) <-chan StatusChange {
	pubsub := c.rdb.Subscribe(ctx, StatusChannel)
	out := make(chan StatusChange)

	go func() {
		defer close(out)
		defer pubsub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-pubsub.Channel():
				if !ok {
					return
				}
				var change StatusChange
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					c.logger.Warnf("Dropping malformed status change: %v", err)
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

// Close releases the redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}
