package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseYAML(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "config.yaml", `
telegram:
  token: "123:abc"
  poll_timeout: "10s"
logging:
  level: debug
  console: true
reminder:
  timezone: Asia/Taipei
  default_lead_minutes: 30
  poll_interval: "2s"
storage:
  driver: sqlite
  path: ./test.db
`)
	cfg, err := NewManager(path).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Telegram.Token != "123:abc" {
		t.Errorf("token = %q", cfg.Telegram.Token)
	}
	if cfg.Reminder.DefaultLeadMinutes != 30 {
		t.Errorf("default_lead_minutes = %d, want 30", cfg.Reminder.DefaultLeadMinutes)
	}
	if cfg.Reminder.PollInterval != "2s" {
		t.Errorf("poll_interval = %q", cfg.Reminder.PollInterval)
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("storage.driver = %q", cfg.Storage.Driver)
	}
}

func TestParseJSON(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "config.json", `{
		"telegram": {"token": "123:abc"},
		"logging": {"level": "info", "console": true},
		"reminder": {"timezone": "Asia/Taipei"}
	}`)
	cfg, err := NewManager(path).Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Reminder.Timezone != "Asia/Taipei" {
		t.Errorf("timezone = %q", cfg.Reminder.Timezone)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "config.yaml", `
telegram:
  token: "123:abc"
  totally_unknown: true
logging:
  level: info
  console: true
reminder: {}
`)
	if _, err := NewManager(path).Parse(); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestParseRejectsTrailingData(t *testing.T) {
	t.Parallel()
	path := writeFile(t, "config.json", `{"telegram":{"token":"a"},"logging":{"level":"info","console":true},"reminder":{}} {"extra":1}`)
	if _, err := NewManager(path).Parse(); err == nil {
		t.Fatal("expected error for trailing data")
	}
}

func TestSubscribePublish(t *testing.T) {
	t.Parallel()
	m := NewManager("unused")
	ch := m.Subscribe(1)
	defer m.Unsubscribe(ch)

	cfg := &Config{}
	m.publish(cfg)

	select {
	case got := <-ch:
		if got != cfg {
			t.Error("received different config pointer")
		}
	default:
		t.Fatal("no config published")
	}

	// A second publish against a full buffer drops the stale entry.
	newer := &Config{Telegram: TelegramConfig{Token: "x"}}
	m.publish(cfg)
	m.publish(newer)
	select {
	case got := <-ch:
		if got != newer {
			t.Error("expected the newest config after overflow")
		}
	default:
		t.Fatal("no config published after overflow")
	}
}
