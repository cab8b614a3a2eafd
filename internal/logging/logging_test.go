package logging

import "testing"

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{}, false},
		{"json debug", Config{Level: "debug", Format: "json"}, false},
		{"console warn", Config{Level: "WARN", Format: "console"}, false},
		{"bad level", Config{Level: "loud"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(%+v) error = %v, wantErr %v", tt.cfg, err, tt.wantErr)
			}
			if logger != nil {
				Sync(logger)
			}
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("CITYBUS_LOG_LEVEL", "error")
	t.Setenv("CITYBUS_LOG_FORMAT", "")

	cfg := FromEnv()
	if cfg.Level != "error" {
		t.Errorf("Level = %q, want %q", cfg.Level, "error")
	}
	if cfg.Format != "console" {
		t.Errorf("Format = %q, want %q", cfg.Format, "console")
	}
}
