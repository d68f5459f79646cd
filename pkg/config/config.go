// Package config provides YAML-based configuration loading with environment variable expansion.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

type loadOptions struct {
	allowMissing bool
	lookup       func(string) (string, bool)
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

// AllowMissing makes Load keep the target's current values when the file
// does not exist. The target is still validated.
func AllowMissing() LoadOption {
	return func(o *loadOptions) {
		o.allowMissing = true
	}
}

// WithLookup replaces os.LookupEnv as the source of ${VAR} values.
func WithLookup(lookup func(string) (string, bool)) LoadOption {
	return func(o *loadOptions) {
		o.lookup = lookup
	}
}

// Load loads configuration from a YAML file with environment variable
// expansion. ${VAR} and $VAR are replaced with the variable's value and
// ${VAR:-default} falls back to default when VAR is unset or empty. Unknown
// keys are rejected.
func Load[T any](filename string, target *T, opts ...LoadOption) error {
	o := loadOptions{lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(&o)
	}

	data, err := os.ReadFile(filename)
	switch {
	case errors.Is(err, os.ErrNotExist) && o.allowMissing:
		return validate(target)
	case err != nil:
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	if err := Decode(bytes.NewReader(data), target, o.lookup); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	return validate(target)
}

// Decode expands variables in r with lookup and decodes the YAML document
// into target. Fields absent from the document keep their current values.
func Decode[T any](r io.Reader, target *T, lookup func(string) (string, bool)) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	expanded := os.Expand(string(data), func(key string) string {
		name, def, hasDef := strings.Cut(key, ":-")
		if v, ok := lookup(name); ok && (v != "" || !hasDef) {
			return v
		}
		return def
	})

	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func validate(target any) error {
	if validator, ok := target.(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}
	return nil
}
