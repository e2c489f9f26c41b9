// Package config loads the panel daemon configuration: simulated delay
// durations, RPC listen address and throttling knobs. Values come from
// built-in defaults, an optional YAML file and CRAFTLINK_* env overrides, in
// that order.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	RPCAddr             string
	ReplyDelay          time.Duration
	ReplyJitter         time.Duration
	ConnectDelay        time.Duration
	SettleDelay         time.Duration
	NotificationBacklog int
	SendRatePerSecond   float64
	SendBurst           int
}

func Default() Config {
	return Config{
		RPCAddr:             "127.0.0.1:8790",
		ReplyDelay:          1000 * time.Millisecond,
		ReplyJitter:         500 * time.Millisecond,
		ConnectDelay:        1500 * time.Millisecond,
		SettleDelay:         1500 * time.Millisecond,
		NotificationBacklog: 256,
		SendRatePerSecond:   1,
		SendBurst:           5,
	}
}

type fileConfig struct {
	Panel panelFileConfig `yaml:"panel"`
}

type panelFileConfig struct {
	RPCAddr             string  `yaml:"rpcAddr"`
	ReplyDelay          string  `yaml:"replyDelay"`
	ReplyJitter         string  `yaml:"replyJitter"`
	ConnectDelay        string  `yaml:"connectDelay"`
	SettleDelay         string  `yaml:"settleDelay"`
	NotificationBacklog int     `yaml:"notificationBacklog"`
	SendRatePerSecond   float64 `yaml:"sendRatePerSecond"`
	SendBurst           int     `yaml:"sendBurst"`
}

// LoadFromPath reads the first readable candidate config file, merges it over
// the defaults and applies env overrides. A missing or malformed file leaves
// the defaults untouched.
func LoadFromPath(configPath string) Config {
	cfg := Default()

	candidates := make([]string, 0, 2)
	if configPath != "" {
		candidates = append(candidates, configPath)
	} else {
		candidates = append(candidates,
			"go-backend/configs/config.yaml",
			"configs/config.yaml",
		)
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var parsed fileConfig
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			continue
		}
		Merge(&cfg, parsed.Panel)
		break
	}

	ApplyEnvOverrides(&cfg)
	return cfg
}

func Merge(cfg *Config, file panelFileConfig) {
	if addr := strings.TrimSpace(file.RPCAddr); addr != "" {
		cfg.RPCAddr = addr
	}
	mergeDuration(file.ReplyDelay, &cfg.ReplyDelay, false)
	// Jitter zero is a valid choice: "0s" in the file disables jitter.
	mergeDuration(file.ReplyJitter, &cfg.ReplyJitter, true)
	mergeDuration(file.ConnectDelay, &cfg.ConnectDelay, false)
	mergeDuration(file.SettleDelay, &cfg.SettleDelay, false)
	if file.NotificationBacklog > 0 {
		cfg.NotificationBacklog = file.NotificationBacklog
	}
	if file.SendRatePerSecond > 0 {
		cfg.SendRatePerSecond = file.SendRatePerSecond
	}
	if file.SendBurst > 0 {
		cfg.SendBurst = file.SendBurst
	}
}

func ApplyEnvOverrides(cfg *Config) {
	if addr := strings.TrimSpace(os.Getenv("CRAFTLINK_RPC_ADDR")); addr != "" {
		cfg.RPCAddr = addr
	}
	applyDurationEnv("CRAFTLINK_REPLY_DELAY", &cfg.ReplyDelay, false)
	applyDurationEnv("CRAFTLINK_REPLY_JITTER", &cfg.ReplyJitter, true)
	applyDurationEnv("CRAFTLINK_CONNECT_DELAY", &cfg.ConnectDelay, false)
	applyDurationEnv("CRAFTLINK_SETTLE_DELAY", &cfg.SettleDelay, false)
	if raw := strings.TrimSpace(os.Getenv("CRAFTLINK_NOTIFICATION_BACKLOG")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			cfg.NotificationBacklog = v
		}
	}
}

func applyDurationEnv(name string, dst *time.Duration, allowZero bool) {
	mergeDuration(os.Getenv(name), dst, allowZero)
}

func mergeDuration(raw string, dst *time.Duration, allowZero bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return
	}
	if v > 0 || (allowZero && v == 0) {
		*dst = v
	}
}
