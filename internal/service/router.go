package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"dispatch-project/internal/domain"
	"dispatch-project/internal/ports"
)

// Route is the two-state classification outcome of webhook routing.
type Route int

const (
	RouteContinue Route = iota
	RouteClose
)

// RoutingConfig controls close detection for inbound webhook items.
type RoutingConfig struct {
	CloseDetection bool               `json:"close_detection"`
	CloseIDs       string             `json:"close_ids"` // comma-separated identifiers
	GoodbyeText    string             `json:"goodbye_text"`
	Retry          domain.RetryPolicy `json:"-"`
}

// RoutingResult carries the classification and its annotations.
type RoutingResult struct {
	Route            Route
	SelectedID       string
	IsCloseAction    bool
	WebhookProcessed bool
	Recipient        string
	GoodbyeSent      bool
	GoodbyeMessageID string
	GoodbyeTimestamp string
}

// Router classifies inbound webhook items as conversation-continuing or
// conversation-closing and optionally sends a goodbye message on close.
type Router struct {
	messenger ports.Messenger
	deduper   ports.Deduper
	logger    *slog.Logger
}

// NewRouter creates a webhook router.
func NewRouter(messenger ports.Messenger, deduper ports.Deduper, logger *slog.Logger) *Router {
	return &Router{
		messenger: messenger,
		deduper:   deduper,
		logger:    logger,
	}
}

// Route classifies one raw inbound item. Items that do not match the
// inbound-event shape (including delivery-status callbacks) pass through to
// the continue lane as a normal no-op. A goodbye send failure is returned as
// a RoutingError for the orchestrator's recovery policy to handle.
func (r *Router) Route(ctx context.Context, raw json.RawMessage, cfg RoutingConfig) (*RoutingResult, error) {
	result := &RoutingResult{Route: RouteContinue}

	event := domain.ParseWebhookEvent(raw)
	if event == nil {
		return result, nil
	}

	msg := event.FirstMessage()
	if msg == nil {
		return result, nil
	}

	if msg.ID != "" {
		seen, err := r.deduper.SeenBefore(ctx, msg.ID)
		if err != nil {
			r.logger.Warn("dedup check failed, processing anyway", "message_id", msg.ID, "error", err)
		} else if seen {
			r.logger.Debug("skipping redelivered webhook message", "message_id", msg.ID)
			return result, nil
		}
	}

	result.WebhookProcessed = true
	result.Recipient = msg.From
	result.SelectedID = msg.ReplyID()

	if !cfg.CloseDetection || result.SelectedID == "" {
		return result, nil
	}

	if _, closing := ParseCloseIDs(cfg.CloseIDs)[result.SelectedID]; !closing {
		return result, nil
	}

	result.IsCloseAction = true
	result.Route = RouteClose

	if goodbye := strings.TrimSpace(cfg.GoodbyeText); goodbye != "" {
		resp, err := r.messenger.Send(ctx, domain.NewTextPayload(msg.From, goodbye), cfg.Retry)
		if err != nil {
			return nil, &domain.RoutingError{Recipient: msg.From, Op: "send goodbye", Err: err}
		}
		record := domain.NewSentRecord(goodbye, resp, domain.KindGoodbye)
		result.GoodbyeSent = true
		result.GoodbyeMessageID = record.MessageID
		result.GoodbyeTimestamp = record.Timestamp

		r.logger.Info("goodbye message sent",
			"recipient", msg.From,
			"selected_id", result.SelectedID,
			"message_id", result.GoodbyeMessageID,
		)
	}

	return result, nil
}

// Annotate merges the routing outcome onto the raw item for output.
func (result *RoutingResult) Annotate(raw json.RawMessage) domain.RoutedItem {
	return domain.RoutedItem{
		Item:             raw,
		SelectedID:       result.SelectedID,
		IsCloseAction:    result.IsCloseAction,
		WebhookProcessed: result.WebhookProcessed,
		Recipient:        result.Recipient,
		GoodbyeSent:      result.GoodbyeSent,
		GoodbyeMessageID: result.GoodbyeMessageID,
		GoodbyeTimestamp: result.GoodbyeTimestamp,
	}
}
