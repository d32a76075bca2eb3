package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
log:
  level: debug
  format: text
redis:
  addr: localhost:6379
  ttl: 5m
question:
  ttl: 30s
  file: content/questions.yaml
reporting:
  topic: statements
  brokers: ["kafka:9092"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Log.Level != "debug" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if got := TTLDuration(cfg.Question.TTL, time.Minute); got != 30*time.Second {
		t.Fatalf("expected 30s, got %v", got)
	}
	if len(cfg.Reporting.Brokers) != 1 {
		t.Fatalf("expected one broker, got %v", cfg.Reporting.Brokers)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"bad level":    "log:\n  level: loud\n",
		"bad format":   "log:\n  format: xml\n",
		"bad redis":    "redis:\n  addr: nope\n",
		"negative db":  "redis:\n  db: -1\n",
		"bad ttl":      "question:\n  ttl: soon\n",
		"bad broker":   "reporting:\n  brokers: [\"not a host\"]\n",
		"non-num port": "server:\n  port: http\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("garbage", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback on parse error, got %v", got)
	}
}

func TestLoadShippedConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "config.yaml"))
	if err != nil {
		t.Fatalf("load shipped config: %v", err)
	}
	if cfg.Question.File == "" {
		t.Fatalf("expected shipped config to point at a question file")
	}
}
