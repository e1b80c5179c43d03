package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	if cfg.StorageBackend != "memory" || cfg.EventsSink != "none" {
		t.Fatalf("backend=%s sink=%s", cfg.StorageBackend, cfg.EventsSink)
	}
	if cfg.LockTTL != 5*time.Second || cfg.LockRetries != 50 {
		t.Fatalf("lock ttl=%s retries=%d", cfg.LockTTL, cfg.LockRetries)
	}
	if cfg.RabbitMQQueue != "storefront_orders" {
		t.Fatalf("queue=%s", cfg.RabbitMQQueue)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "Redis")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("LOCK_TTL", "750ms")
	t.Setenv("LOCK_RETRIES", "nope")

	cfg := Load()
	if cfg.StorageBackend != "redis" {
		t.Fatalf("backend=%s", cfg.StorageBackend)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("brokers=%v", cfg.KafkaBrokers)
	}
	if cfg.LockTTL != 750*time.Millisecond {
		t.Fatalf("ttl=%s", cfg.LockTTL)
	}
	if cfg.LockRetries != 50 {
		t.Fatalf("bad int must fall back, got %d", cfg.LockRetries)
	}
}
