package config

import (
	"errors"
	"fmt"
)

// Bounds on the host-facing tuning surface.
const (
	MinWaitTimeCheckSeconds = 5
	MaxWaitTimeCheckSeconds = 600
	MinMessageInterval      = 10
	MaxMessageInterval      = 300
	MinAutoMessages         = 1
	MaxAutoMessages         = 20
	MinTries                = 1
	MaxTries                = 10
	MinRetryDelaySeconds    = 0
	MaxRetryDelaySeconds    = 60
)

// Validate validates the application configuration.
func (c *AppConfig) Validate() error {
	var errs []error

	if c.WhatsApp.APIEndpoint == "" {
		errs = append(errs, errors.New("whatsapp api endpoint is required"))
	}

	if c.WhatsApp.APIVersion == "" {
		errs = append(errs, errors.New("whatsapp api version is required"))
	}

	if c.WhatsApp.Timeout <= 0 {
		errs = append(errs, errors.New("whatsapp timeout must be positive"))
	}

	if c.Redis.Addr != "" {
		if c.Redis.DialTimeout <= 0 {
			errs = append(errs, errors.New("redis dial timeout must be positive"))
		}
		if c.Redis.DedupTTL <= 0 {
			errs = append(errs, errors.New("redis dedup TTL must be positive"))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %w", errors.Join(errs...))
	}

	return nil
}

// ValidateProfile validates a dispatch profile against the tuning bounds.
// Zero values mean "not set" and are skipped; per-item resolution applies
// defaults later.
func ValidateProfile(p *DispatchProfile) error {
	var errs []error

	if v := p.Presence.WaitTimeCheckSeconds; v != 0 && (v < MinWaitTimeCheckSeconds || v > MaxWaitTimeCheckSeconds) {
		errs = append(errs, fmt.Errorf("presence.wait_time_check_seconds must be between %d and %d", MinWaitTimeCheckSeconds, MaxWaitTimeCheckSeconds))
	}

	if v := p.Presence.MessageIntervalSeconds; v != 0 && (v < MinMessageInterval || v > MaxMessageInterval) {
		errs = append(errs, fmt.Errorf("presence.message_interval_seconds must be between %d and %d", MinMessageInterval, MaxMessageInterval))
	}

	if v := p.Presence.MaxAutoMessages; v != 0 && (v < MinAutoMessages || v > MaxAutoMessages) {
		errs = append(errs, fmt.Errorf("presence.max_auto_messages must be between %d and %d", MinAutoMessages, MaxAutoMessages))
	}

	if v := p.Retry.Tries; v != 0 && (v < MinTries || v > MaxTries) {
		errs = append(errs, fmt.Errorf("retry.tries must be between %d and %d", MinTries, MaxTries))
	}

	if v := p.Retry.DelaySeconds; v < MinRetryDelaySeconds || v > MaxRetryDelaySeconds {
		errs = append(errs, fmt.Errorf("retry.delay_seconds must be between %d and %d", MinRetryDelaySeconds, MaxRetryDelaySeconds))
	}

	if len(errs) > 0 {
		return fmt.Errorf("profile validation failed: %w", errors.Join(errs...))
	}

	return nil
}
