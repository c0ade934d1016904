package stats

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Versions is the per-student statistics version counter, backed by a
// Redis INCR so it is monotonic across API instances. A bump after every
// successful registration tells clients to re-fetch and recompute.
type Versions struct {
	client *redis.Client
	prefix string
}

// NewVersions creates a counter store.
func NewVersions(client *redis.Client) *Versions {
	return &Versions{client: client, prefix: "rollcall:statsver:"}
}

// Bump advances the counter.
func (v *Versions) Bump(ctx context.Context, studentID string) error {
	return v.client.Incr(ctx, v.prefix+studentID).Err()
}

// Current returns the counter value; zero when never bumped.
func (v *Versions) Current(ctx context.Context, studentID string) (int64, error) {
	n, err := v.client.Get(ctx, v.prefix+studentID).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}
