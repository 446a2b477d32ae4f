package service

import (
	"context"
	"log/slog"
	"time"

	"dispatch-project/internal/domain"
	"dispatch-project/internal/ports"
)

// PresenceConfig configures one presence-check sequence for one recipient.
type PresenceConfig struct {
	Recipient string
	Retry     domain.RetryPolicy
	Settings  domain.PresenceSettings

	// OnSent is invoked for every presence message that was delivered,
	// including the ones sent by the detached follow-up task. Optional.
	OnSent func(domain.SentMessageRecord)
}

// PresenceScheduler sends "still working" notices while the caller's workflow
// continues. The first notice is sent synchronously so the caller's immediate
// result reflects it; the rest are sent by a detached task that outlives the
// caller and swallows individual send failures.
type PresenceScheduler struct {
	messenger ports.Messenger
	tasks     *TaskGroup
	logger    *slog.Logger
}

// NewPresenceScheduler creates a presence scheduler. Detached follow-up tasks
// are registered on the given task group.
func NewPresenceScheduler(messenger ports.Messenger, tasks *TaskGroup, logger *slog.Logger) *PresenceScheduler {
	return &PresenceScheduler{
		messenger: messenger,
		tasks:     tasks,
		logger:    logger,
	}
}

// Start waits the configured initial delay, sends the first rotation entry and
// returns its receipt. Remaining entries are sent by a detached task on the
// configured interval, rotating through the message list cyclically, until the
// configured total has been sent.
func (s *PresenceScheduler) Start(ctx context.Context, cfg PresenceConfig) (*domain.SentMessageRecord, error) {
	if len(cfg.Settings.Messages) == 0 {
		return nil, domain.NewValidationError("check_messages", "presence check message list must not be empty")
	}

	if err := sleep(ctx, cfg.Settings.InitialWait); err != nil {
		return nil, err
	}

	state := &presenceState{
		messages:    cfg.Settings.Messages,
		maxMessages: cfg.Settings.MaxMessages,
	}

	record, err := s.sendNext(ctx, cfg, state)
	if err != nil {
		return nil, err
	}

	if state.messagesSent < state.maxMessages {
		// The detached sequence must outlive the caller's return, so it is
		// cut loose from the caller's cancellation.
		detachedCtx := context.WithoutCancel(ctx)
		s.tasks.Go(func() {
			s.runDetached(detachedCtx, cfg, state)
		})
	}

	return record, nil
}

// presenceState is owned by a single timer-driven task; it is handed from the
// synchronous first send to the detached loop and never shared.
type presenceState struct {
	messages     []string
	messageIndex int
	messagesSent int
	maxMessages  int
}

func (s *PresenceScheduler) sendNext(ctx context.Context, cfg PresenceConfig, state *presenceState) (*domain.SentMessageRecord, error) {
	text := state.messages[state.messageIndex%len(state.messages)]
	state.messageIndex++
	state.messagesSent++

	resp, err := s.messenger.Send(ctx, domain.NewTextPayload(cfg.Recipient, text), cfg.Retry)
	if err != nil {
		return nil, err
	}

	record := domain.NewSentRecord(text, resp, domain.KindPresenceCheck)
	if cfg.OnSent != nil {
		cfg.OnSent(record)
	}
	return &record, nil
}

func (s *PresenceScheduler) runDetached(ctx context.Context, cfg PresenceConfig, state *presenceState) {
	logger := s.logger.With("recipient", cfg.Recipient)

	for state.messagesSent < state.maxMessages {
		if err := sleep(ctx, cfg.Settings.Interval); err != nil {
			return
		}

		// Best effort: a failed follow-up never surfaces to the caller,
		// whose result has already been returned.
		if _, err := s.sendNext(ctx, cfg, state); err != nil {
			logger.Warn("presence check send failed",
				"sent", state.messagesSent,
				"max", state.maxMessages,
				"error", err,
			)
		}
	}

	logger.Debug("presence check sequence completed", "sent", state.messagesSent)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
