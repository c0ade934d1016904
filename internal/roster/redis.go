package roster

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "rollcall:roster:"

// Publisher pushes snapshots onto the session's Redis channel so every
// API instance's broker sees them.
type Publisher struct {
	client *redis.Client
}

// NewPublisher creates a publisher.
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish sends one snapshot.
func (p *Publisher) Publish(ctx context.Context, snap Snapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, channelPrefix+snap.SessionID, body).Err()
}

// Listen bridges Redis pub/sub into the broker until ctx is cancelled.
// The subscription is released on every exit path.
func Listen(ctx context.Context, client *redis.Client, broker *Broker, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	pubsub := client.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var snap Snapshot
			if err := json.Unmarshal([]byte(msg.Payload), &snap); err != nil {
				logger.Warn("bad roster payload", "channel", msg.Channel, "err", err)
				continue
			}
			if snap.SessionID == "" {
				snap.SessionID = strings.TrimPrefix(msg.Channel, channelPrefix)
			}
			broker.Publish(snap)
		}
	}
}
