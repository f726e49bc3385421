package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

type Config struct {
	ListenAddr      string `mapstructure:"listen_addr" json:"listen_addr"`
	CacheDir        string `mapstructure:"cache_dir" json:"cache_dir"`
	LogDebug        bool   `mapstructure:"log_debug" json:"log_debug"`
	GhostMode       bool   `mapstructure:"ghost_mode" json:"ghost_mode"`
	AiDepth         int    `mapstructure:"ai_depth" json:"ai_depth"`
	AiTimeoutMs     int    `mapstructure:"ai_timeout_ms" json:"ai_timeout_ms"`
	AiTopCandidates int    `mapstructure:"ai_top_candidates" json:"ai_top_candidates"`
	AiQuickWinExit  bool   `mapstructure:"ai_quick_win_exit" json:"ai_quick_win_exit"`
	AiTtMaxEntries  int    `mapstructure:"ai_tt_max_entries" json:"ai_tt_max_entries"`
}

func DefaultConfig() Config {
	return Config{
		ListenAddr:      ":8080",
		CacheDir:        "",
		LogDebug:        false,
		GhostMode:       true,
		AiDepth:         5,
		AiTimeoutMs:     0,
		AiTopCandidates: 6,
		AiQuickWinExit:  true,
		AiTtMaxEntries:  200000,
	}
}

// LoadConfig layers defaults, an optional config file and PENTE_*
// environment variables. A missing file is fine; a malformed one is not.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	defaults := DefaultConfig()
	v.SetDefault("listen_addr", defaults.ListenAddr)
	v.SetDefault("cache_dir", defaults.CacheDir)
	v.SetDefault("log_debug", defaults.LogDebug)
	v.SetDefault("ghost_mode", defaults.GhostMode)
	v.SetDefault("ai_depth", defaults.AiDepth)
	v.SetDefault("ai_timeout_ms", defaults.AiTimeoutMs)
	v.SetDefault("ai_top_candidates", defaults.AiTopCandidates)
	v.SetDefault("ai_quick_win_exit", defaults.AiQuickWinExit)
	v.SetDefault("ai_tt_max_entries", defaults.AiTtMaxEntries)

	v.SetEnvPrefix("PENTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return config, nil
}

type ConfigStore struct {
	mu     sync.RWMutex
	config Config
}

func NewConfigStore(config Config) *ConfigStore {
	return &ConfigStore{config: config}
}

func (c *ConfigStore) Get() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

func (c *ConfigStore) Update(newConfig Config) {
	c.mu.Lock()
	c.config = newConfig
	c.mu.Unlock()
}
