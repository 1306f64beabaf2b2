package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func loadEnv(t *testing.T, env map[string]string) (*Config, error) {
	t.Helper()
	viper.Reset()
	for k, v := range env {
		t.Setenv(k, v)
	}
	return Load()
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadEnv(t, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Path != "bottender.db" {
		t.Errorf("database path = %q, want bottender.db", cfg.Database.Path)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q, want info", cfg.LogLevel)
	}
	if cfg.Backup.Enabled() {
		t.Error("backup should be disabled without a bucket")
	}
	if cfg.Backup.RetentionDays != 30 {
		t.Errorf("retention days = %d, want 30", cfg.Backup.RetentionDays)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	cfg, err := loadEnv(t, map[string]string{
		"BOTTENDER_SERVER_PORT":           "9090",
		"BOTTENDER_BACKUP_BUCKET":         "drinks",
		"BOTTENDER_BACKUP_ACCESS_KEY":     "key",
		"BOTTENDER_BACKUP_SECRET_KEY":     "secret",
		"BOTTENDER_BACKUP_RETENTION_DAYS": "7",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if !cfg.Backup.Enabled() {
		t.Error("backup should be enabled")
	}
	if cfg.Backup.RetentionDays != 7 {
		t.Errorf("retention days = %d, want 7", cfg.Backup.RetentionDays)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "port out of range",
			env:     map[string]string{"BOTTENDER_SERVER_PORT": "70000"},
			wantErr: "out of range",
		},
		{
			name:    "backup bucket without credentials",
			env:     map[string]string{"BOTTENDER_BACKUP_BUCKET": "drinks"},
			wantErr: "credentials missing",
		},
		{
			name: "negative retention",
			env: map[string]string{
				"BOTTENDER_BACKUP_BUCKET":         "drinks",
				"BOTTENDER_BACKUP_ACCESS_KEY":     "key",
				"BOTTENDER_BACKUP_SECRET_KEY":     "secret",
				"BOTTENDER_BACKUP_RETENTION_DAYS": "-1",
			},
			wantErr: "retention",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadEnv(t, tt.env)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
