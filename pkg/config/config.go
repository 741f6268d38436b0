package config

import (
	"encoding/json"
	"log"
	"os"

	"github.com/rahul/nexus/internal/safety"
)

type Config struct {
	App       AppConfig                 `json:"app"`
	Gateways  map[string]GatewayConfig  `json:"gateways"`
	Providers map[string]ProviderConfig `json:"providers"`
	Memory    MemoryConfig              `json:"memory"`
	Safety    SafetyConfig              `json:"safety"`
	Contacts  map[string]string         `json:"contacts"`
}

type AppConfig struct {
	Name      string `json:"name"`
	PromptDir string `json:"prompt_dir"`
	NotesDir  string `json:"notes_dir"`
}

type GatewayConfig struct {
	Token   string `json:"token"`
	Enabled bool   `json:"enabled"`
}

type ProviderConfig struct {
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
	BaseURL string `json:"base_url,omitempty"`
	Enabled bool   `json:"enabled"`
}

type MemoryConfig struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

type SafetyConfig struct {
	// ProtectedApps extends/overrides the built-in non-closable list.
	ProtectedApps []string `json:"protected_apps"`
}

func LoadConfig(path string) *Config {
	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("failed to open config file: %v", err)
	}
	defer file.Close()

	var cfg Config
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		log.Fatalf("failed to decode config file: %v", err)
	}

	return &cfg
}

// GetDefaultProvider returns the first enabled provider
func (c *Config) GetDefaultProvider() (string, ProviderConfig) {
	for name, p := range c.Providers {
		if p.Enabled {
			return name, p
		}
	}
	return "", ProviderConfig{}
}

// GetTelegramConfig returns telegram config if enabled
func (c *Config) GetTelegramConfig() (GatewayConfig, bool) {
	tg, ok := c.Gateways["telegram"]
	if ok && tg.Enabled {
		return tg, true
	}
	return GatewayConfig{}, false
}

// GetDiscordConfig returns discord config if enabled
func (c *Config) GetDiscordConfig() (GatewayConfig, bool) {
	dc, ok := c.Gateways["discord"]
	if ok && dc.Enabled {
		return dc, true
	}
	return GatewayConfig{}, false
}

// ProtectedApps merges the operator's list with the built-in defaults.
// The defaults are never removable from config: the pipeline's own host
// process and core OS surfaces stay protected.
func (c *Config) ProtectedApps() []string {
	merged := append([]string{}, safety.DefaultProtectedApps...)
	merged = append(merged, c.Safety.ProtectedApps...)
	return merged
}
