package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BindAddr != ":8080" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":8080")
	}
	if cfg.MetricsNamespace != "solace" {
		t.Fatalf("MetricsNamespace = %q, want %q", cfg.MetricsNamespace, "solace")
	}
	if cfg.DebounceWindow != 600*time.Millisecond {
		t.Fatalf("DebounceWindow = %v, want 600ms", cfg.DebounceWindow)
	}
	if cfg.EmergencyRoute != "/support/emergency" {
		t.Fatalf("EmergencyRoute = %q, want default", cfg.EmergencyRoute)
	}
	if cfg.DatabaseURL != "" {
		t.Fatalf("DatabaseURL = %q, want empty default", cfg.DatabaseURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_BIND_ADDR", ":9090")
	t.Setenv("APP_DEBOUNCE_WINDOW", "250ms")
	t.Setenv("APP_ESCALATION_DELAY", "1s")
	t.Setenv("APP_MIN_LIVE_TRACE_LEN", "20")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":9090" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":9090")
	}
	if cfg.DebounceWindow != 250*time.Millisecond {
		t.Fatalf("DebounceWindow = %v, want 250ms", cfg.DebounceWindow)
	}
	if cfg.EscalationDelay != time.Second {
		t.Fatalf("EscalationDelay = %v, want 1s", cfg.EscalationDelay)
	}
	if cfg.MinLiveTraceLen != 20 {
		t.Fatalf("MinLiveTraceLen = %d, want 20", cfg.MinLiveTraceLen)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_DEBOUNCE_WINDOW", "10ms")

	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted a sub-50ms debounce window")
	}

	setCoreEnvEmpty(t)
	t.Setenv("APP_MIN_LIVE_TRACE_LEN", "garbage")
	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted a non-numeric trace length")
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_SESSION_INACTIVITY_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"APP_LOG_LEVEL",
		"APP_ALLOW_ANY_ORIGIN",
		"APP_DEBOUNCE_WINDOW",
		"APP_MIN_LIVE_TRACE_LEN",
		"APP_ESCALATION_DELAY",
		"APP_MEMORY_FLAG_WINDOW",
		"APP_SPEAKING_PACE",
		"APP_EMERGENCY_ROUTE",
		"APP_ARCHIVE_HISTORY_LIMIT",
		"DATABASE_URL",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
