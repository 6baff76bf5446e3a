package config

import (
	"os"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		Feed: FeedConfig{Subreddit: "aviation"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()

	if cfg.Feed.Limit != 25 {
		t.Errorf("feed.limit: got %d, want 25", cfg.Feed.Limit)
	}
	if cfg.Feed.MaxAgeHour != 1 {
		t.Errorf("feed.max_age_hour: got %d, want 1", cfg.Feed.MaxAgeHour)
	}
	if cfg.Dedup.Backend != "file" {
		t.Errorf("dedup.backend: got %q, want %q", cfg.Dedup.Backend, "file")
	}
	if cfg.Dedup.Path != "submissions.csv" {
		t.Errorf("dedup.path: got %q, want %q", cfg.Dedup.Path, "submissions.csv")
	}
	if cfg.FlightData.BaseURL != "https://www.flightradar24.com/data/aircraft" {
		t.Errorf("flight_data.base_url: got %q", cfg.FlightData.BaseURL)
	}
	if cfg.FlightData.RenderWaitSec != 20 {
		t.Errorf("flight_data.render_wait_sec: got %d, want 20", cfg.FlightData.RenderWaitSec)
	}
	if cfg.FlightData.SettleDelaySec != 5 {
		t.Errorf("flight_data.settle_delay_sec: got %d, want 5", cfg.FlightData.SettleDelaySec)
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_MissingSubreddit(t *testing.T) {
	cfg := validConfig()
	cfg.Feed.Subreddit = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing subreddit")
	}
}

func TestValidate_InvalidDedupBackend(t *testing.T) {
	cfg := validConfig()
	cfg.Dedup.Backend = "sqlite"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid dedup backend")
	}

	expected := `dedup.backend must be "file" or "redis", got "sqlite"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_RedisBackendRequiresAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Dedup.Backend = "redis"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for redis backend without addrs")
	}

	cfg.Database.Addrs = []string{"localhost:6379"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error with addrs set: %v", err)
	}
}

func TestValidate_CacheRequiresAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Enabled = true

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for cache without addrs")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SKYTAG_TEST_SECRET", "hunter2")

	in := []byte("password: ${SKYTAG_TEST_SECRET}\nagent: ${SKYTAG_TEST_UNSET:-fallback}")
	got := string(expandEnvVars(in))
	want := "password: hunter2\nagent: fallback"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestGetEnv_Default(t *testing.T) {
	old, had := os.LookupEnv("ENV")
	os.Unsetenv("ENV")
	defer func() {
		if had {
			os.Setenv("ENV", old)
		}
	}()

	if env := GetEnv(); env != "local" {
		t.Errorf("got %q, want %q", env, "local")
	}
}
