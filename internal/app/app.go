package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"dispatch-project/internal/config"
	"dispatch-project/internal/domain"
	"dispatch-project/internal/ports"
	"dispatch-project/internal/service"
)

// Hard defaults applied when neither the item nor the dispatch profile
// specifies a value.
const (
	defaultWaitTimeCheckSeconds = 30
	defaultIntervalSeconds      = 30
	defaultMaxAutoMessages      = 5
)

// Options configures the App.
type Options struct {
	Logger         *slog.Logger
	Messenger      ports.Messenger
	Deduper        ports.Deduper
	ProfileLoader  ports.ProfileLoader // nil disables profile defaults
	Tasks          *service.TaskGroup
	ContinueOnFail bool
}

// App drives per-item dispatch and webhook routing. Items in a batch are
// processed one at a time, preserving input order in the output. The App is
// the sole recovery point for item-level errors: with ContinueOnFail set,
// errors become error-shaped output records; otherwise the batch aborts at
// the first error.
type App struct {
	logger         *slog.Logger
	messenger      ports.Messenger
	profileLoader  ports.ProfileLoader
	presence       *service.PresenceScheduler
	router         *service.Router
	continueOnFail bool
}

// New creates a new App with all dependencies injected.
func New(opts Options) *App {
	return &App{
		logger:        opts.Logger,
		messenger:     opts.Messenger,
		profileLoader: opts.ProfileLoader,
		presence: service.NewPresenceScheduler(
			opts.Messenger,
			opts.Tasks,
			opts.Logger.With("component", "presence"),
		),
		router: service.NewRouter(
			opts.Messenger,
			opts.Deduper,
			opts.Logger.With("component", "router"),
		),
		continueOnFail: opts.ContinueOnFail,
	}
}

// DispatchBatch processes outbound items sequentially and returns one result
// per item. With continue-on-fail disabled, the batch aborts at the first
// failing item and the error is returned alongside the results so far.
func (a *App) DispatchBatch(ctx context.Context, items []json.RawMessage, profileName string) ([]domain.DispatchResult, error) {
	profile, err := a.loadProfile(profileName)
	if err != nil {
		return nil, err
	}

	results := make([]domain.DispatchResult, 0, len(items))
	for i, raw := range items {
		result, err := a.dispatchItem(ctx, raw, profile)
		if err != nil {
			a.logger.Error("item dispatch failed", "item", i, "error", err)
			if !a.continueOnFail {
				return results, err
			}
			result = &domain.DispatchResult{
				Success:   false,
				ItemID:    uuid.NewString(),
				Error:     err.Error(),
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			}
		}
		results = append(results, *result)
	}

	return results, nil
}

func (a *App) dispatchItem(ctx context.Context, raw json.RawMessage, profile *config.DispatchProfile) (*domain.DispatchResult, error) {
	var input domain.MessageInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, domain.NewValidationError("item", "item is not a valid dispatch input: %v", err)
	}

	req, err := resolveRequest(input, profile)
	if err != nil {
		return nil, err
	}

	built, err := service.Build(*req)
	if err != nil {
		return nil, err
	}

	itemID := uuid.NewString()
	logger := a.logger.With("item_id", itemID, "recipient", req.Recipient, "message_type", req.Type)

	var records []domain.SentMessageRecord

	// Lists with an image header need the image delivered as its own message
	// first; the ordering is part of the contract with downstream consumers.
	if built.HeaderImageURL != "" {
		resp, err := a.messenger.Send(ctx, domain.NewImagePayload(req.Recipient, built.HeaderImageURL, ""), req.Retry)
		if err != nil {
			return nil, err
		}
		records = append(records, domain.NewSentRecord(built.HeaderImageURL, resp, domain.KindListImage))
		logger.Info("list header image sent", "message_id", resp.FirstMessageID())
	}

	resp, err := a.messenger.Send(ctx, built.Payload, req.Retry)
	if err != nil {
		return nil, err
	}
	records = append(records, domain.NewSentRecord(built.Summary, resp, domain.KindMain))
	logger.Info("main message sent", "message_id", resp.FirstMessageID())

	presenceSent := false
	if req.Presence != nil {
		record, err := a.presence.Start(ctx, service.PresenceConfig{
			Recipient: req.Recipient,
			Retry:     req.Retry,
			Settings:  *req.Presence,
			OnSent: func(r domain.SentMessageRecord) {
				logger.Info("presence check sent", "message_id", r.MessageID)
			},
		})
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
		presenceSent = true
	}

	return &domain.DispatchResult{
		Success:           true,
		ItemID:            itemID,
		Recipient:         req.Recipient,
		MessageType:       req.Type,
		TotalMessagesSent: len(records),
		PresenceCheckSent: presenceSent,
		Messages:          records,
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// RouteBatch classifies inbound webhook items onto exactly one of two lanes.
// An item-level routing failure follows the same recovery policy as dispatch;
// recovered failures land on the continue lane with the error annotated.
func (a *App) RouteBatch(ctx context.Context, items []json.RawMessage, override *service.RoutingConfig, profileName string) (continueLane, closeLane []domain.RoutedItem, err error) {
	profile, err := a.loadProfile(profileName)
	if err != nil {
		return nil, nil, err
	}

	cfg := resolveRouting(profile, override)

	for i, raw := range items {
		result, err := a.router.Route(ctx, raw, cfg)
		if err != nil {
			a.logger.Error("item routing failed", "item", i, "error", err)
			if !a.continueOnFail {
				return nil, nil, err
			}
			continueLane = append(continueLane, domain.RoutedItem{Item: raw, Error: err.Error()})
			continue
		}

		annotated := result.Annotate(raw)
		if result.Route == service.RouteClose {
			closeLane = append(closeLane, annotated)
		} else {
			continueLane = append(continueLane, annotated)
		}
	}

	return continueLane, closeLane, nil
}

func (a *App) loadProfile(name string) (*config.DispatchProfile, error) {
	if a.profileLoader == nil || name == "" {
		return &config.DispatchProfile{}, nil
	}
	profile, err := a.profileLoader.LoadProfile(name)
	if err != nil {
		return nil, &domain.ConfigError{Name: name, Err: err}
	}
	return profile, nil
}

// resolveRequest validates one input item against the profile defaults and
// tuning bounds and freezes it into an immutable MessageRequest.
func resolveRequest(input domain.MessageInput, profile *config.DispatchProfile) (*domain.MessageRequest, error) {
	recipient, err := domain.NormalizeRecipient(input.Recipient)
	if err != nil {
		return nil, err
	}

	msgType, err := parseMessageType(input.MessageType)
	if err != nil {
		return nil, err
	}

	headerType, err := parseHeaderType(input.HeaderType)
	if err != nil {
		return nil, err
	}

	retry, err := resolveRetry(input, profile)
	if err != nil {
		return nil, err
	}

	req := &domain.MessageRequest{
		Recipient:      recipient,
		Type:           msgType,
		Body:           input.Body,
		ImageURL:       input.ImageURL,
		Caption:        input.Caption,
		HeaderType:     headerType,
		HeaderText:     input.HeaderText,
		HeaderImageURL: input.HeaderImageURL,
		Footer:         input.Footer,
		ButtonLabel:    input.ButtonLabel,
		SectionTitle:   input.SectionTitle,
		Options:        input.Options,
		Buttons:        input.Buttons,
		CTA:            input.CTA,
		Retry:          retry,
	}

	if input.PresenceCheck {
		presence, err := resolvePresence(input, profile)
		if err != nil {
			return nil, err
		}
		req.Presence = presence
	}

	return req, nil
}

func parseMessageType(s string) (domain.MessageType, error) {
	switch t := domain.MessageType(s); t {
	case domain.TypeText, domain.TypeImage, domain.TypeButtons, domain.TypeList, domain.TypeCTA:
		return t, nil
	case "":
		return domain.TypeText, nil
	default:
		return "", domain.NewValidationError("message_type", "%w: %q", domain.ErrUnknownMessageType, s)
	}
}

func parseHeaderType(s string) (domain.HeaderType, error) {
	switch t := domain.HeaderType(s); t {
	case domain.HeaderNone, domain.HeaderText, domain.HeaderImage:
		return t, nil
	case "":
		return domain.HeaderNone, nil
	default:
		return "", domain.NewValidationError("header_type", "unknown header type %q", s)
	}
}

func resolveRetry(input domain.MessageInput, profile *config.DispatchProfile) (domain.RetryPolicy, error) {
	retry := domain.DefaultRetryPolicy()

	tries := input.Tries
	if tries == 0 {
		tries = profile.Retry.Tries
	}
	if tries != 0 {
		if tries < config.MinTries || tries > config.MaxTries {
			return retry, domain.NewValidationError("tries", "must be between %d and %d", config.MinTries, config.MaxTries)
		}
		retry.Tries = tries
	}

	if input.RetryDelaySeconds != nil {
		delay := *input.RetryDelaySeconds
		if delay < config.MinRetryDelaySeconds || delay > config.MaxRetryDelaySeconds {
			return retry, domain.NewValidationError("retry_delay_seconds", "must be between %d and %d", config.MinRetryDelaySeconds, config.MaxRetryDelaySeconds)
		}
		retry.Delay = time.Duration(delay) * time.Second
	} else if profile.Retry.DelaySeconds != 0 {
		retry.Delay = time.Duration(profile.Retry.DelaySeconds) * time.Second
	}

	return retry, nil
}

func resolvePresence(input domain.MessageInput, profile *config.DispatchProfile) (*domain.PresenceSettings, error) {
	wait := firstNonZero(input.WaitTimeCheckSeconds, profile.Presence.WaitTimeCheckSeconds, defaultWaitTimeCheckSeconds)
	interval := firstNonZero(input.MessageIntervalSeconds, profile.Presence.MessageIntervalSeconds, defaultIntervalSeconds)
	maxMessages := firstNonZero(input.MaxAutoMessages, profile.Presence.MaxAutoMessages, defaultMaxAutoMessages)

	if wait < config.MinWaitTimeCheckSeconds || wait > config.MaxWaitTimeCheckSeconds {
		return nil, domain.NewValidationError("wait_time_check_seconds", "must be between %d and %d", config.MinWaitTimeCheckSeconds, config.MaxWaitTimeCheckSeconds)
	}
	if interval < config.MinMessageInterval || interval > config.MaxMessageInterval {
		return nil, domain.NewValidationError("message_interval_seconds", "must be between %d and %d", config.MinMessageInterval, config.MaxMessageInterval)
	}
	if maxMessages < config.MinAutoMessages || maxMessages > config.MaxAutoMessages {
		return nil, domain.NewValidationError("max_auto_messages", "must be between %d and %d", config.MinAutoMessages, config.MaxAutoMessages)
	}

	messages := trimmedNonEmpty(input.CheckMessages)
	if len(messages) == 0 {
		messages = trimmedNonEmpty(profile.Presence.Messages)
	}
	if len(messages) == 0 {
		return nil, domain.NewValidationError("check_messages", "presence check message list must not be empty")
	}

	return &domain.PresenceSettings{
		InitialWait: time.Duration(wait) * time.Second,
		Interval:    time.Duration(interval) * time.Second,
		MaxMessages: maxMessages,
		Messages:    messages,
	}, nil
}

func resolveRouting(profile *config.DispatchProfile, override *service.RoutingConfig) service.RoutingConfig {
	cfg := service.RoutingConfig{
		CloseDetection: profile.Routing.CloseDetection,
		CloseIDs:       profile.Routing.CloseIDs,
		GoodbyeText:    profile.Routing.GoodbyeText,
	}
	if override != nil {
		cfg = *override
	}
	if cfg.Retry.Tries == 0 {
		cfg.Retry = domain.DefaultRetryPolicy()
		if profile.Retry.Tries != 0 {
			cfg.Retry.Tries = profile.Retry.Tries
		}
		if profile.Retry.DelaySeconds != 0 {
			cfg.Retry.Delay = time.Duration(profile.Retry.DelaySeconds) * time.Second
		}
	}
	return cfg
}

func firstNonZero(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func trimmedNonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
