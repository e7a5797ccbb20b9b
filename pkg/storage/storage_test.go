package storage

import (
	"errors"
	"log/slog"
	"testing"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=binderstore;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/binderstore;"

func TestNewAzure(t *testing.T) {
	cfg := &Config{
		Backend:          BackendAzure,
		ContainerName:    "binder",
		ConnectionString: azuriteConnString,
	}

	sys, err := New(cfg, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if sys == nil {
		t.Fatal("New() returned nil system")
	}
}

func TestNewAzureInvalidConnectionString(t *testing.T) {
	cfg := &Config{
		Backend:          BackendAzure,
		ContainerName:    "binder",
		ConnectionString: "not-a-connection-string",
	}

	if _, err := New(cfg, slog.Default()); err == nil {
		t.Fatal("expected error for invalid connection string, got nil")
	}
}

func TestNewS3(t *testing.T) {
	cfg := &Config{
		Backend:       BackendS3,
		ContainerName: "binder",
		Endpoint:      "localhost:9000",
		AccessKey:     "minio",
		SecretKey:     "minio123",
		Insecure:      true,
	}

	sys, err := New(cfg, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if sys == nil {
		t.Fatal("New() returned nil system")
	}
}

func TestNewUnknownBackend(t *testing.T) {
	if _, err := New(&Config{Backend: "ftp"}, slog.Default()); err == nil {
		t.Fatal("expected error for unknown backend, got nil")
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		key  string
		want error
	}{
		{"files/abc/report.pdf", nil},
		{"files/a..b/report.pdf", nil},
		{"", ErrEmptyKey},
		{"files/../secrets", ErrInvalidKey},
		{"..", ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if err := validateKey(tt.key); !errors.Is(err, tt.want) {
				t.Errorf("validateKey(%q) = %v, want %v", tt.key, err, tt.want)
			}
		})
	}
}

func TestConfigFinalize(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "azure connection string",
			cfg:  Config{ConnectionString: azuriteConnString},
		},
		{
			name: "azure account url",
			cfg:  Config{AccountURL: "https://binderstore.blob.core.windows.net/"},
		},
		{
			name:    "azure missing credentials",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name: "s3 complete",
			cfg:  Config{Backend: BackendS3, Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"},
		},
		{
			name:    "s3 missing endpoint",
			cfg:     Config{Backend: BackendS3, AccessKey: "a", SecretKey: "b"},
			wantErr: true,
		},
		{
			name:    "s3 missing secret",
			cfg:     Config{Backend: BackendS3, Endpoint: "localhost:9000", AccessKey: "a"},
			wantErr: true,
		},
		{
			name:    "unknown backend",
			cfg:     Config{Backend: "gopher", ConnectionString: azuriteConnString},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := cfg.Finalize(nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Finalize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if cfg.ContainerName != "binder" {
				t.Errorf("ContainerName = %q, want default %q", cfg.ContainerName, "binder")
			}
		})
	}
}

func TestConfigEnvOverride(t *testing.T) {
	t.Setenv("TEST_STORAGE_BACKEND", BackendS3)
	t.Setenv("TEST_STORAGE_ENDPOINT", "minio:9000")
	t.Setenv("TEST_STORAGE_ACCESS_KEY", "key")
	t.Setenv("TEST_STORAGE_SECRET_KEY", "secret")

	env := &Env{
		Backend:   "TEST_STORAGE_BACKEND",
		Endpoint:  "TEST_STORAGE_ENDPOINT",
		AccessKey: "TEST_STORAGE_ACCESS_KEY",
		SecretKey: "TEST_STORAGE_SECRET_KEY",
	}

	var cfg Config
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if cfg.Backend != BackendS3 || cfg.Endpoint != "minio:9000" {
		t.Errorf("env not applied: backend=%q endpoint=%q", cfg.Backend, cfg.Endpoint)
	}
}

func TestConfigMerge(t *testing.T) {
	base := Config{Backend: BackendAzure, ContainerName: "binder", ConnectionString: "a"}
	base.Merge(&Config{ContainerName: "archive", Insecure: true})

	if base.ContainerName != "archive" {
		t.Errorf("ContainerName = %q, want archive", base.ContainerName)
	}
	if base.ConnectionString != "a" {
		t.Errorf("ConnectionString overwritten by zero value: %q", base.ConnectionString)
	}
	if !base.Insecure {
		t.Error("Insecure not merged")
	}
}
