package ports

import (
	"context"

	"dispatch-project/internal/domain"
)

// Messenger sends one outbound payload to the messaging platform.
type Messenger interface {
	// Send performs one delivery governed by the given retry policy and
	// returns the platform response on success.
	Send(ctx context.Context, payload domain.OutboundPayload, retry domain.RetryPolicy) (*domain.PlatformResponse, error)
}
