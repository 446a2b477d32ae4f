package ports

import "context"

// Deduper suppresses reprocessing of redelivered inbound webhook messages.
type Deduper interface {
	// SeenBefore marks the message id as seen and reports whether it had
	// already been marked.
	SeenBefore(ctx context.Context, messageID string) (bool, error)
}
