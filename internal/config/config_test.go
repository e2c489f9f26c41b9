package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.ReplyDelay != time.Second {
		t.Fatalf("unexpected reply delay: %v", cfg.ReplyDelay)
	}
	if cfg.ReplyJitter != 500*time.Millisecond {
		t.Fatalf("unexpected reply jitter: %v", cfg.ReplyJitter)
	}
	if cfg.ConnectDelay != 1500*time.Millisecond || cfg.SettleDelay != 1500*time.Millisecond {
		t.Fatalf("unexpected call/settle delays: %v %v", cfg.ConnectDelay, cfg.SettleDelay)
	}
}

func TestLoadFromPathMergesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
panel:
  rpcAddr: "127.0.0.1:9999"
  replyDelay: 2s
  replyJitter: 0s
  notificationBacklog: 16
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := LoadFromPath(path)
	if cfg.RPCAddr != "127.0.0.1:9999" {
		t.Fatalf("rpc addr not merged: %q", cfg.RPCAddr)
	}
	if cfg.ReplyDelay != 2*time.Second {
		t.Fatalf("reply delay not merged: %v", cfg.ReplyDelay)
	}
	if cfg.ReplyJitter != 0 {
		t.Fatalf("explicit zero jitter not honored: %v", cfg.ReplyJitter)
	}
	if cfg.NotificationBacklog != 16 {
		t.Fatalf("backlog not merged: %d", cfg.NotificationBacklog)
	}
	// Untouched fields keep defaults.
	if cfg.ConnectDelay != 1500*time.Millisecond {
		t.Fatalf("connect delay changed unexpectedly: %v", cfg.ConnectDelay)
	}
}

func TestLoadFromPathBadFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg := LoadFromPath(path)
	if cfg != Default() {
		t.Fatalf("malformed file altered config: %+v", cfg)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CRAFTLINK_RPC_ADDR", "127.0.0.1:7000")
	t.Setenv("CRAFTLINK_REPLY_DELAY", "250ms")
	t.Setenv("CRAFTLINK_REPLY_JITTER", "0s")
	t.Setenv("CRAFTLINK_NOTIFICATION_BACKLOG", "8")

	cfg := Default()
	ApplyEnvOverrides(&cfg)
	if cfg.RPCAddr != "127.0.0.1:7000" {
		t.Fatalf("rpc addr override missed: %q", cfg.RPCAddr)
	}
	if cfg.ReplyDelay != 250*time.Millisecond {
		t.Fatalf("reply delay override missed: %v", cfg.ReplyDelay)
	}
	if cfg.ReplyJitter != 0 {
		t.Fatalf("zero jitter override missed: %v", cfg.ReplyJitter)
	}
	if cfg.NotificationBacklog != 8 {
		t.Fatalf("backlog override missed: %d", cfg.NotificationBacklog)
	}
}

func TestEnvOverrideRejectsGarbage(t *testing.T) {
	t.Setenv("CRAFTLINK_REPLY_DELAY", "soon")
	t.Setenv("CRAFTLINK_NOTIFICATION_BACKLOG", "-3")

	cfg := Default()
	ApplyEnvOverrides(&cfg)
	if cfg.ReplyDelay != time.Second || cfg.NotificationBacklog != 256 {
		t.Fatalf("garbage env mutated config: %+v", cfg)
	}
}
