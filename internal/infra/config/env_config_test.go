package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/limaudio/taskman/internal/infra/config"
)

type testConfig struct {
	EnvConfig

	StringValue string `env:"STRING_VALUE" default:"default"`
	IntValue    int64  `env:"INT_VALUE" default:"42"`
	BoolValue   bool   `env:"BOOL_VALUE" default:"true"`
	NoEnvTag    string
	Nested      testNestedConfig `envPrefix:"NESTED_"`
	Secret      string           `env:"SECRET"`
}

type testNestedConfig struct {
	Value string `env:"VALUE" default:"nested-default"`
}

//nolint:paralleltest
func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		envVars map[string]string
		want    testConfig
		wantErr error
	}{
		{
			name:   "uses default values when env vars not set",
			prefix: "APP",
			envVars: map[string]string{
				"APP_SECRET": "s3cret",
			},
			want: testConfig{
				StringValue: "default",
				IntValue:    42,
				BoolValue:   true,
				Nested:      testNestedConfig{Value: "nested-default"},
				Secret:      "s3cret",
			},
		},
		{
			name:   "reads prefixed env vars",
			prefix: "APP",
			envVars: map[string]string{
				"APP_STRING_VALUE": "from-env",
				"APP_INT_VALUE":    "7",
				"APP_BOOL_VALUE":   "false",
				"APP_NESTED_VALUE": "nested-from-env",
				"APP_SECRET":       "s3cret",
			},
			want: testConfig{
				StringValue: "from-env",
				IntValue:    7,
				BoolValue:   false,
				Nested:      testNestedConfig{Value: "nested-from-env"},
				Secret:      "s3cret",
			},
		},
		{
			name:    "fails when a mandatory var is missing",
			prefix:  "APP",
			envVars: map[string]string{},
			wantErr: ErrVarNotSet,
		},
		{
			name:   "fails on malformed int",
			prefix: "APP",
			envVars: map[string]string{
				"APP_INT_VALUE": "not-a-number",
				"APP_SECRET":    "s3cret",
			},
			wantErr: errAny,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Unsetenv("APP_SECRET")

			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			var cfg testConfig

			err := Parse(context.Background(), &cfg, tt.prefix)
			if tt.wantErr != nil {
				if err == nil {
					t.Fatal("expected error, got nil")
				}

				if tt.wantErr != errAny && !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if cfg.StringValue != tt.want.StringValue ||
				cfg.IntValue != tt.want.IntValue ||
				cfg.BoolValue != tt.want.BoolValue ||
				cfg.Nested != tt.want.Nested ||
				cfg.Secret != tt.want.Secret {
				t.Fatalf("got %+v, want %+v", cfg, tt.want)
			}
		})
	}
}

var errAny = errors.New("any error")

//nolint:paralleltest
func TestParse_RejectsNonStruct(t *testing.T) {
	var notAConfig int

	if err := Parse(context.Background(), &notAConfig, "APP"); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

//nolint:paralleltest
func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")

	if err := os.WriteFile(path, []byte("TASKMAN_TEST_DOTENV=loaded\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TASKMAN_TEST_DOTENV", "")
	os.Unsetenv("TASKMAN_TEST_DOTENV")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := os.Getenv("TASKMAN_TEST_DOTENV"); got != "loaded" {
		t.Fatalf("expected dotenv value, got %q", got)
	}

	// A missing file is fine.
	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
}
