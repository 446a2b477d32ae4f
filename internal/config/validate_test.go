package config

import (
	"testing"
	"time"
)

func validAppConfig() AppConfig {
	return AppConfig{
		WhatsApp: WhatsAppSettings{
			APIEndpoint: "https://graph.facebook.com",
			APIVersion:  DefaultAPIVersion,
			Timeout:     10 * time.Second,
		},
	}
}

func TestAppConfigValidate(t *testing.T) {
	cfg := validAppConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"missing endpoint", func(c *AppConfig) { c.WhatsApp.APIEndpoint = "" }},
		{"missing version", func(c *AppConfig) { c.WhatsApp.APIVersion = "" }},
		{"zero timeout", func(c *AppConfig) { c.WhatsApp.Timeout = 0 }},
		{"redis without dial timeout", func(c *AppConfig) { c.Redis.Addr = "localhost:6379" }},
		{"redis without dedup ttl", func(c *AppConfig) {
			c.Redis.Addr = "localhost:6379"
			c.Redis.DialTimeout = time.Second
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAppConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("esperado erro de validação")
			}
		})
	}
}

func TestValidateProfile(t *testing.T) {
	if err := ValidateProfile(&DispatchProfile{}); err != nil {
		t.Fatalf("perfil vazio deve ser válido: %v", err)
	}

	valid := DispatchProfile{
		Presence: PresenceProfile{
			WaitTimeCheckSeconds:   MinWaitTimeCheckSeconds,
			MessageIntervalSeconds: MaxMessageInterval,
			MaxAutoMessages:        MaxAutoMessages,
		},
		Retry: RetryProfile{Tries: MaxTries, DelaySeconds: MaxRetryDelaySeconds},
	}
	if err := ValidateProfile(&valid); err != nil {
		t.Fatalf("valores nos limites devem ser válidos: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*DispatchProfile)
	}{
		{"wait below minimum", func(p *DispatchProfile) { p.Presence.WaitTimeCheckSeconds = MinWaitTimeCheckSeconds - 1 }},
		{"wait above maximum", func(p *DispatchProfile) { p.Presence.WaitTimeCheckSeconds = MaxWaitTimeCheckSeconds + 1 }},
		{"interval below minimum", func(p *DispatchProfile) { p.Presence.MessageIntervalSeconds = MinMessageInterval - 1 }},
		{"max messages above maximum", func(p *DispatchProfile) { p.Presence.MaxAutoMessages = MaxAutoMessages + 1 }},
		{"tries above maximum", func(p *DispatchProfile) { p.Retry.Tries = MaxTries + 1 }},
		{"delay above maximum", func(p *DispatchProfile) { p.Retry.DelaySeconds = MaxRetryDelaySeconds + 1 }},
		{"negative delay", func(p *DispatchProfile) { p.Retry.DelaySeconds = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := DispatchProfile{}
			tt.mutate(&profile)
			if err := ValidateProfile(&profile); err == nil {
				t.Error("esperado erro de validação")
			}
		})
	}
}
