package config

// DispatchProfile holds per-deployment defaults for dispatch items: presence
// check messages and timing, retry tuning, and webhook routing behavior.
// Item-level input fields override profile values.
type DispatchProfile struct {
	Presence PresenceProfile `yaml:"presence"`
	Retry    RetryProfile    `yaml:"retry"`
	Routing  RoutingProfile  `yaml:"routing"`
}

// PresenceProfile holds presence-check defaults.
type PresenceProfile struct {
	WaitTimeCheckSeconds   int      `yaml:"wait_time_check_seconds"`
	MessageIntervalSeconds int      `yaml:"message_interval_seconds"`
	MaxAutoMessages        int      `yaml:"max_auto_messages"`
	Messages               []string `yaml:"messages"`
}

// RetryProfile holds delivery retry defaults.
type RetryProfile struct {
	Tries        int `yaml:"tries"`
	DelaySeconds int `yaml:"delay_seconds"`
}

// RoutingProfile holds webhook close-detection defaults.
type RoutingProfile struct {
	CloseDetection bool   `yaml:"close_detection"`
	CloseIDs       string `yaml:"close_ids"`
	GoodbyeText    string `yaml:"goodbye_text"`
}
