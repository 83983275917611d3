package config

import "testing"

func TestResolveDefaultsLocal(t *testing.T) {
	cfg := &Config{BuildTarget: "local", DBDriver: "auto", FeedCapacity: 100}
	if err := cfg.ResolveDefaults(); err != nil {
		t.Fatalf("ResolveDefaults: %v", err)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("expected sqlite driver for local target, got %s", cfg.DBDriver)
	}
}

func TestResolveDefaultsCloudRequiresDSN(t *testing.T) {
	cfg := &Config{BuildTarget: "cloud-dev", DBDriver: "auto", FeedCapacity: 100}
	if err := cfg.ResolveDefaults(); err == nil {
		t.Fatal("expected error: postgres driver without DSN")
	}
	cfg.PostgresDSN = "postgres://localhost:5432/engagement"
	if err := cfg.ResolveDefaults(); err != nil {
		t.Fatalf("ResolveDefaults with DSN: %v", err)
	}
	if cfg.DBDriver != "postgres" {
		t.Fatalf("expected postgres driver, got %s", cfg.DBDriver)
	}
}

func TestResolveDefaultsRejectsUnknownTarget(t *testing.T) {
	cfg := &Config{BuildTarget: "mainframe", FeedCapacity: 100}
	if err := cfg.ResolveDefaults(); err == nil {
		t.Fatal("expected error for unknown build target")
	}
}

func TestResolveDefaultsExplicitDriverOverride(t *testing.T) {
	cfg := &Config{BuildTarget: "cloud", DBDriver: "sqlite", FeedCapacity: 100}
	if err := cfg.ResolveDefaults(); err != nil {
		t.Fatalf("ResolveDefaults: %v", err)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("explicit driver should win, got %s", cfg.DBDriver)
	}
}
