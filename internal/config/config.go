package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type Config struct {
	DataDir  string `json:"data_dir"`
	LogLevel string `json:"log_level"`
	Agent    struct {
		URL       string `json:"url"`
		APIKey    string `json:"api_key"`
		AutoStart bool   `json:"auto_start"`
	} `json:"agent"`
	Chat struct {
		Provider         string `json:"provider"`
		Model            string `json:"model"`
		SystemPrompt     string `json:"system_prompt"`
		MaxContextTokens int    `json:"max_context_tokens"`
	} `json:"chat"`
	Audio struct {
		Enabled    bool `json:"enabled"`
		ThrottleMS int  `json:"throttle_ms"`
	} `json:"audio"`
	Journal struct {
		Enabled bool `json:"enabled"`
	} `json:"journal"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		DataDir:  filepath.Join(os.Getenv("HOME"), ".proxycast"),
		LogLevel: "info",
	}
	cfg.Agent.URL = "ws://127.0.0.1:9527/ws"
	cfg.Agent.AutoStart = true
	cfg.Chat.Provider = "anthropic"
	cfg.Chat.Model = "claude-sonnet-4"
	cfg.Chat.MaxContextTokens = 128000
	cfg.Audio.Enabled = false
	cfg.Audio.ThrottleMS = 1500
	cfg.Journal.Enabled = true

	// Load from file if exists, otherwise write defaults
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if os.IsNotExist(err) {
		if err := writeDefaults(path, cfg); err != nil {
			return nil, err
		}
	}

	// Override from env (highest precedence)
	if url := os.Getenv("PROXYCAST_AGENT_URL"); url != "" {
		cfg.Agent.URL = url
	}
	if apiKey := os.Getenv("PROXYCAST_AGENT_API_KEY"); apiKey != "" {
		cfg.Agent.APIKey = apiKey
	}
	if provider := os.Getenv("PROXYCAST_PROVIDER"); provider != "" {
		cfg.Chat.Provider = provider
	}
	if model := os.Getenv("PROXYCAST_MODEL"); model != "" {
		cfg.Chat.Model = model
	}

	return cfg, nil
}

func writeDefaults(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	data = append(data, '\n')
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename default config: %w", err)
	}
	return nil
}
