package redis

import (
	"context"
	"fmt"
	"time"
)

// Key pattern for seen inbound webhook message ids.
const keyPatternWebhookSeen = "webhook:seen:%s"

// DedupStore implements ports.Deduper using Redis. The platform redelivers
// webhook events, so message ids are remembered for a bounded TTL.
type DedupStore struct {
	client *Client
	ttl    time.Duration
}

// NewDedupStore creates a new Redis-backed dedup store.
func NewDedupStore(client *Client, ttl time.Duration) *DedupStore {
	return &DedupStore{
		client: client,
		ttl:    ttl,
	}
}

// SeenBefore marks the message id as seen and reports whether it had already
// been marked within the TTL window.
func (s *DedupStore) SeenBefore(ctx context.Context, messageID string) (bool, error) {
	key := fmt.Sprintf(keyPatternWebhookSeen, messageID)

	set, err := s.client.SetNX(ctx, key, "1", s.ttl)
	if err != nil {
		return false, fmt.Errorf("mark webhook message seen: %w", err)
	}

	return !set, nil
}

// NoopDeduper never suppresses anything. Used when Redis is not configured.
type NoopDeduper struct{}

// SeenBefore always reports unseen.
func (NoopDeduper) SeenBefore(context.Context, string) (bool, error) {
	return false, nil
}
