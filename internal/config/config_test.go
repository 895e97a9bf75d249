package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	os.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")
	os.Setenv("MONGODB_DATABASE", "codrift_test")
	os.Setenv("REDIS_HOST", "localhost")
	os.Setenv("REDIS_PORT", "6379")
	os.Setenv("JWT_SECRET", "testsecret123456789012345678901234")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.MongoDB.URI == "" || cfg.Redis.Host == "" {
		t.Fatalf("unexpected empty config values: %+v", cfg)
	}
}

func TestLoadConfig_CollabDefaults(t *testing.T) {
	os.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Collab.SaveDebounce != 800*time.Millisecond {
		t.Fatalf("SaveDebounce = %v, want 800ms", cfg.Collab.SaveDebounce)
	}
	if cfg.Collab.PresenceHeartbeat != 30*time.Second {
		t.Fatalf("PresenceHeartbeat = %v, want 30s", cfg.Collab.PresenceHeartbeat)
	}
	if cfg.Collab.PresenceStale != 60*time.Second {
		t.Fatalf("PresenceStale = %v, want 60s", cfg.Collab.PresenceStale)
	}
}
