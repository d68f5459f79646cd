package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
	Dir  string `yaml:"dir"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestLoad_ExpandsVariables(t *testing.T) {
	p := writeConfig(t, "name: ${NAME}\nport: ${PORT:-8080}\ndir: ${DIR:-/srv/files}\n")
	s := sample{}
	err := Load(p, &s, WithLookup(lookupFrom(map[string]string{"NAME": "catalog", "DIR": ""})))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "catalog" || s.Port != 8080 || s.Dir != "/srv/files" {
		t.Errorf("got %+v", s)
	}
}

func TestLoad_KeepsDefaults(t *testing.T) {
	p := writeConfig(t, "name: x\n")
	s := sample{Port: 9000, Dir: "keep"}
	if err := Load(p, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Port != 9000 || s.Dir != "keep" || s.Name != "x" {
		t.Errorf("got %+v", s)
	}
}

func TestLoad_UnknownKey(t *testing.T) {
	p := writeConfig(t, "name: x\nport: 1\nbogus: true\n")
	s := sample{}
	if err := Load(p, &s); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoad_ValidationError(t *testing.T) {
	p := writeConfig(t, "port: 0\n")
	s := sample{}
	err := Load(p, &s)
	if err == nil || !strings.Contains(err.Error(), "config validation failed") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoad_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")
	s := sample{Port: 1}
	if err := Load(missing, &s); err == nil {
		t.Fatal("expected error for missing file")
	}
	if err := Load(missing, &s, AllowMissing()); err != nil {
		t.Fatalf("AllowMissing: %v", err)
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	p := writeConfig(t, "")
	s := sample{Port: 3}
	if err := Load(p, &s); err != nil {
		t.Fatalf("Load empty: %v", err)
	}
}
