package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("REQMAN_BASE_URL", "")
	t.Setenv("REQMAN_HTTP_TIMEOUT_SEC", "")
	t.Setenv("REQMAN_PAGE_SIZE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "http://localhost:4001/api/v1" {
		t.Fatalf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.HTTPTimeoutSec != 15 || cfg.PageSize != 10 {
		t.Fatalf("defaults = %+v", cfg)
	}
}

func TestLoad_TrimsTrailingSlash(t *testing.T) {
	t.Setenv("REQMAN_BASE_URL", "https://approvals.example.com/api/v1/")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://approvals.example.com/api/v1" {
		t.Fatalf("BaseURL = %q", cfg.BaseURL)
	}
}

func TestLoad_RejectsRelativeURL(t *testing.T) {
	t.Setenv("REQMAN_BASE_URL", "localhost:4001")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for URL without scheme")
	}
}

func TestLoad_RejectsNonPositiveNumbers(t *testing.T) {
	t.Setenv("REQMAN_BASE_URL", "http://localhost:4001/api/v1")
	t.Setenv("REQMAN_HTTP_TIMEOUT_SEC", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero timeout")
	}
	t.Setenv("REQMAN_HTTP_TIMEOUT_SEC", "15")
	t.Setenv("REQMAN_PAGE_SIZE", "-1")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for negative page size")
	}
}
