package config

import (
	"testing"
	"time"
)

func TestGetHelpersFallBack(t *testing.T) {
	t.Setenv("POS_TEST_INT", "not-a-number")
	t.Setenv("POS_TEST_BOOL", "yes please")
	t.Setenv("POS_TEST_DURATION", "15")

	if got := GetInt("POS_TEST_INT", 7); got != 7 {
		t.Errorf("GetInt = %d, want fallback 7", got)
	}
	if got := GetBool("POS_TEST_BOOL", true); !got {
		t.Error("GetBool should fall back to true on a malformed value")
	}
	if got := GetDuration("POS_TEST_DURATION", time.Minute); got != time.Minute {
		t.Errorf("GetDuration = %v, want fallback 1m", got)
	}
	if got := GetString("POS_TEST_MISSING", "x"); got != "x" {
		t.Errorf("GetString = %q, want x", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TAX_RATE", "")
	t.Setenv("PAYMENT_DEMO_MODE", "true")
	t.Setenv("RATE_LIMIT_WINDOW", "1m")

	cfg := Load()
	if !cfg.Payments.DemoMode {
		t.Error("PAYMENT_DEMO_MODE=true was not picked up")
	}
	if cfg.RateLimit.Window != time.Minute {
		t.Errorf("rate limit window = %v", cfg.RateLimit.Window)
	}
	if cfg.TaxRate.String() != "0.13" {
		t.Errorf("tax rate = %s, want 0.13", cfg.TaxRate)
	}
}
