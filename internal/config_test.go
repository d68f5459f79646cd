package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/namefile/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestCatalogConfig_RootRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Catalog.Root = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty catalog root should fail validation")
	}
}

func TestLogFileConfig_NegativeValues(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.LogFile.MaxBackups = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative max_backups should fail validation")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	content := `
app:
  log_level: debug
  log_file:
    path: ${LOG_DIR}/namefile.log
  http:
    port: 9090
catalog:
  root: /srv/files
  watch: false
  event_throttle: 5s
sqlite:
  path: /var/lib/namefile.db
auth:
  mode: token
  token: ${NAMEFILE_TEST_TOKEN:-fallback}
`
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LOG_DIR", "/var/log")

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(p, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.LogLevel != slog.LevelDebug {
		t.Errorf("log level = %v", cfg.App.LogLevel)
	}
	if cfg.App.LogFile.Path != "/var/log/namefile.log" || cfg.App.LogFile.MaxBackups != 3 {
		t.Errorf("log file = %+v", cfg.App.LogFile)
	}
	if cfg.App.HTTP.Address() != ":9090" {
		t.Errorf("address = %q", cfg.App.HTTP.Address())
	}
	if cfg.Catalog.Root != "/srv/files" || cfg.Catalog.Watch || cfg.Catalog.EventThrottle != 5*time.Second {
		t.Errorf("catalog = %+v", cfg.Catalog)
	}
	if cfg.Auth.Token != "fallback" || !cfg.Auth.AuthEnabled() {
		t.Errorf("auth = %+v", cfg.Auth)
	}
}
