package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"dispatch-project/internal/config"
	"dispatch-project/internal/domain"
)

// APIError is a decoded platform error body. The remote API described the
// problem, so repeating the call will not change the outcome: it is never
// retried.
type APIError struct {
	Message      string `json:"message"`
	Type         string `json:"type"`
	Code         int    `json:"code"`
	ErrorSubcode int    `json:"error_subcode"`
	FBTraceID    string `json:"fbtrace_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp api error: %s (code: %d, type: %s, trace: %s)",
		e.Message, e.Code, e.Type, e.FBTraceID)
}

type errorEnvelope struct {
	Error *APIError `json:"error"`
}

// Client sends outbound payloads to the WhatsApp Business API. It implements
// ports.Messenger and is safe for concurrent use.
type Client struct {
	settings   config.WhatsAppSettings
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a WhatsApp API client. Missing credentials are a
// configuration error raised here, before any send.
func NewClient(settings config.WhatsAppSettings, logger *slog.Logger) (*Client, error) {
	if settings.PhoneNumberID == "" {
		return nil, &domain.ConfigError{Name: "whatsapp", Err: fmt.Errorf("%w: phone number id", domain.ErrMissingCredentials)}
	}
	if settings.AccessToken == "" {
		return nil, &domain.ConfigError{Name: "whatsapp", Err: fmt.Errorf("%w: access token", domain.ErrMissingCredentials)}
	}
	if settings.APIVersion == "" {
		settings.APIVersion = config.DefaultAPIVersion
	}

	return &Client{
		settings: settings,
		httpClient: &http.Client{
			Timeout: settings.Timeout,
		},
		logger: logger,
	}, nil
}

// Send delivers one payload, retrying transport failures up to retry.Tries
// attempts with a fixed delay between attempts. A decodable platform error
// body is returned immediately without further attempts. Exhausting the
// budget returns a DeliveryError wrapping the last underlying error.
func (c *Client) Send(ctx context.Context, payload domain.OutboundPayload, retry domain.RetryPolicy) (*domain.PlatformResponse, error) {
	tries := retry.Tries
	if tries < 1 {
		tries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= tries; attempt++ {
		resp, err := c.sendRequest(ctx, payload)
		if err == nil {
			c.logger.Debug("message sent",
				"recipient", payload.To,
				"type", payload.Type,
				"attempt", attempt,
				"message_id", resp.FirstMessageID(),
			)
			return resp, nil
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil, &domain.DeliveryError{Recipient: payload.To, Attempts: attempt, Err: err}
		}

		lastErr = err
		c.logger.Warn("send attempt failed",
			"recipient", payload.To,
			"attempt", attempt,
			"tries", tries,
			"error", err,
		)

		if attempt < tries {
			select {
			case <-time.After(retry.Delay):
			case <-ctx.Done():
				return nil, &domain.DeliveryError{Recipient: payload.To, Attempts: attempt, Err: ctx.Err()}
			}
		}
	}

	return nil, &domain.DeliveryError{Recipient: payload.To, Attempts: tries, Err: lastErr}
}

func (c *Client) sendRequest(ctx context.Context, payload domain.OutboundPayload) (*domain.PlatformResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s/messages", c.settings.APIEndpoint, c.settings.APIVersion, c.settings.PhoneNumberID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.settings.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope errorEnvelope
		if err := json.Unmarshal(respBody, &envelope); err == nil && envelope.Error != nil {
			return nil, envelope.Error
		}
		return nil, fmt.Errorf("whatsapp api error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var platformResp domain.PlatformResponse
	if err := json.Unmarshal(respBody, &platformResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return &platformResp, nil
}
