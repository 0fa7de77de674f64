package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the dialogue service.
type Config struct {
	BindAddr                 string
	ShutdownTimeout          time.Duration
	SessionInactivityTimeout time.Duration
	MetricsNamespace         string
	LogLevel                 string

	AllowAnyOrigin bool

	// Turn pipeline tuning.
	DebounceWindow   time.Duration
	MinLiveTraceLen  int
	EscalationDelay  time.Duration
	MemoryFlagWindow time.Duration
	SpeakingPace     time.Duration
	EmergencyRoute   string

	DatabaseURL         string
	ArchiveHistoryLimit int
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:                 envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace:         envOrDefault("APP_METRICS_NAMESPACE", "solace"),
		LogLevel:                 envOrDefault("APP_LOG_LEVEL", "info"),
		AllowAnyOrigin:           false,
		EmergencyRoute:           envOrDefault("APP_EMERGENCY_ROUTE", "/support/emergency"),
		DatabaseURL:              stringsTrimSpace("DATABASE_URL"),
		ShutdownTimeout:          15 * time.Second,
		SessionInactivityTimeout: 30 * time.Minute,
		DebounceWindow:           600 * time.Millisecond,
		MinLiveTraceLen:          12,
		EscalationDelay:          3 * time.Second,
		MemoryFlagWindow:         2 * time.Second,
		SpeakingPace:             280 * time.Millisecond,
		ArchiveHistoryLimit:      200,
	}
	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionInactivityTimeout, err = durationFromEnv("APP_SESSION_INACTIVITY_TIMEOUT", cfg.SessionInactivityTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.DebounceWindow, err = durationFromEnv("APP_DEBOUNCE_WINDOW", cfg.DebounceWindow)
	if err != nil {
		return Config{}, err
	}
	cfg.EscalationDelay, err = durationFromEnv("APP_ESCALATION_DELAY", cfg.EscalationDelay)
	if err != nil {
		return Config{}, err
	}
	cfg.MemoryFlagWindow, err = durationFromEnv("APP_MEMORY_FLAG_WINDOW", cfg.MemoryFlagWindow)
	if err != nil {
		return Config{}, err
	}
	cfg.SpeakingPace, err = durationFromEnv("APP_SPEAKING_PACE", cfg.SpeakingPace)
	if err != nil {
		return Config{}, err
	}
	cfg.MinLiveTraceLen, err = intFromEnv("APP_MIN_LIVE_TRACE_LEN", cfg.MinLiveTraceLen)
	if err != nil {
		return Config{}, err
	}
	cfg.ArchiveHistoryLimit, err = intFromEnv("APP_ARCHIVE_HISTORY_LIMIT", cfg.ArchiveHistoryLimit)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	if cfg.SessionInactivityTimeout < 5*time.Second {
		return Config{}, fmt.Errorf("APP_SESSION_INACTIVITY_TIMEOUT must be at least 5s")
	}
	if cfg.DebounceWindow < 50*time.Millisecond {
		return Config{}, fmt.Errorf("APP_DEBOUNCE_WINDOW must be at least 50ms")
	}
	if cfg.EscalationDelay <= 0 {
		return Config{}, fmt.Errorf("APP_ESCALATION_DELAY must be positive")
	}
	if cfg.MinLiveTraceLen <= 0 {
		return Config{}, fmt.Errorf("APP_MIN_LIVE_TRACE_LEN must be positive")
	}
	if cfg.ArchiveHistoryLimit <= 0 {
		return Config{}, fmt.Errorf("APP_ARCHIVE_HISTORY_LIMIT must be positive")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return trimSpace(os.Getenv(key))
}

func trimSpace(v string) string {
	for len(v) > 0 && (v[0] == ' ' || v[0] == '\n' || v[0] == '\t' || v[0] == '\r') {
		v = v[1:]
	}
	for len(v) > 0 {
		c := v[len(v)-1]
		if c == ' ' || c == '\n' || c == '\t' || c == '\r' {
			v = v[:len(v)-1]
			continue
		}
		break
	}
	return v
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
