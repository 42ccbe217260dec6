package main

import (
	"testing"

	"github.com/alecthomas/kingpin/v2"

	"github.com/eugenenazirov/change-maker/internal/config"
)

func TestFlagsOverrides(t *testing.T) {
	app := kingpin.New("test", "")
	f := registerFlags(app)

	if _, err := app.Parse([]string{
		"--port", "9000",
		"--denominations", "100:2,50:1",
		"--strategy", "exhaustive",
		"--rate-limit-rps", "0",
	}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	overrides := f.overrides()
	if overrides.Port == nil || *overrides.Port != "9000" {
		t.Fatalf("expected port override")
	}
	if overrides.DenominationsStr == nil || *overrides.DenominationsStr != "100:2,50:1" {
		t.Fatalf("expected denominations override")
	}
	if overrides.Strategy == nil || *overrides.Strategy != "exhaustive" {
		t.Fatalf("expected strategy override")
	}
	if overrides.RateLimitRPS == nil || *overrides.RateLimitRPS != 0 {
		t.Fatalf("expected explicit zero rate limit to be kept")
	}
	if overrides.RateLimitBurst != nil || overrides.LogLevel != nil {
		t.Fatalf("expected unset flags to stay nil")
	}
}

func TestUnknownStrategyRejectedByConfig(t *testing.T) {
	t.Setenv("CHANGE_STRATEGY", "")
	app := kingpin.New("test", "")
	f := registerFlags(app)

	if _, err := app.Parse([]string{"--strategy", "optimal"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if _, err := config.Load(f.overrides()); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}
