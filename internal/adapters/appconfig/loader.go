package appconfig

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"dispatch-project/internal/config"
)

// Loader fetches dispatch profiles as YAML from an AppConfig-style HTTP
// endpoint and caches them for the lifetime of the process.
type Loader struct {
	httpClient *http.Client
	endpoint   string
	logger     *slog.Logger

	mu    sync.RWMutex
	cache map[string]*config.DispatchProfile
}

// NewLoader creates a new dispatch-profile loader.
func NewLoader(cfg config.AppConfigSettings, logger *slog.Logger) *Loader {
	return &Loader{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		endpoint: cfg.Endpoint,
		logger:   logger,
		cache:    make(map[string]*config.DispatchProfile),
	}
}

// LoadProfile loads and validates the named dispatch profile, e.g.
// "dispatch.default" is fetched from "{endpoint}/dispatch.default.yaml".
func (l *Loader) LoadProfile(name string) (*config.DispatchProfile, error) {
	l.mu.RLock()
	cached, ok := l.cache[name]
	l.mu.RUnlock()
	if ok {
		return cached, nil
	}

	url := fmt.Sprintf("%s/%s.yaml", l.endpoint, name)

	resp, err := l.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch dispatch profile: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			l.logger.Warn("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dispatch profile not found: %s (status %d)", name, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read dispatch profile: %w", err)
	}

	var profile config.DispatchProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parse dispatch profile: %w", err)
	}

	if err := config.ValidateProfile(&profile); err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache[name] = &profile
	l.mu.Unlock()
	l.logger.Debug("loaded dispatch profile", "profile", name)

	return &profile, nil
}

// ClearCache clears the profile cache.
func (l *Loader) ClearCache() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]*config.DispatchProfile)
}
