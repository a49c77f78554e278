// Package config loads the console configuration file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/titanous/json5"

	orchestration "github.com/koscakluka/ema-realtime/core"
	"github.com/koscakluka/ema-realtime/core/channels/azure"
	"github.com/koscakluka/ema-realtime/core/realtime"
	"github.com/koscakluka/ema-realtime/internal/utils"
)

const (
	EnvAzureAPIKey = "AZURE_OPENAI_API_KEY"
	EnvCRMBaseURL  = "CRM_BASE_URL"
	EnvCRMWallet   = "CRM_WALLET"
)

type Config struct {
	Azure   AzureConfig   `json:"azure"`
	CRM     CRMConfig     `json:"crm"`
	Session SessionConfig `json:"session"`
	Engine  EngineConfig  `json:"engine"`
}

type AzureConfig struct {
	Endpoint   string `json:"endpoint"`
	Deployment string `json:"deployment"`
	APIVersion string `json:"apiVersion"`
	APIKey     string `json:"apiKey,omitempty"`
}

type CRMConfig struct {
	BaseURL       string `json:"baseUrl"`
	Wallet        string `json:"wallet"`
	Authorization string `json:"authorization,omitempty"`
	// TimeZone is the IANA zone scheduling falls back to. Empty uses the
	// host zone.
	TimeZone string `json:"timeZone"`
}

// SessionConfig holds everything that ends up in the session instructions.
// Changing any of it while the console runs resends the instructions.
type SessionConfig struct {
	Prompt                  string                  `json:"prompt"`
	Language                string                  `json:"language"`
	Platform                string                  `json:"platform"`
	Role                    string                  `json:"role"`
	Guests                  []string                `json:"guests"`
	Voice                   string                  `json:"voice"`
	TurnDetection           *realtime.TurnDetection `json:"turnDetection"`
	MaxResponseOutputTokens any                     `json:"maxResponseOutputTokens"`
}

type EngineConfig struct {
	ResendDelayMS     int `json:"resendDelayMs"`
	DebugLogCapacity  int `json:"debugLogCapacity"`
	SilenceTickMS     int `json:"silenceTickMs"`
	RequestsPerSecond int `json:"requestsPerSecond"`
}

func Default() *Config {
	return &Config{
		Azure: AzureConfig{APIVersion: azure.DefaultAPIVersion},
		Session: SessionConfig{
			Language: "English",
			Voice:    "alloy",
			TurnDetection: &realtime.TurnDetection{
				Type:              "server_vad",
				Threshold:         utils.Ptr(0.5),
				PrefixPaddingMS:   utils.Ptr(300),
				SilenceDurationMS: utils.Ptr(500),
			},
			MaxResponseOutputTokens: "inf",
		},
		Engine: EngineConfig{
			ResendDelayMS:     175,
			DebugLogCapacity:  30,
			SilenceTickMS:     1000,
			RequestsPerSecond: 5,
		},
	}
}

// Load reads a JSON5 file on top of the defaults and applies environment
// overrides. An empty path loads only defaults and environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := json5.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	return cfg, nil
}

// ApplyEnvOverrides replaces secrets and endpoints with values from the
// environment when they are set.
func (c *Config) ApplyEnvOverrides() {
	if value, ok := os.LookupEnv(EnvAzureAPIKey); ok && value != "" {
		c.Azure.APIKey = value
	}
	if value, ok := os.LookupEnv(EnvCRMBaseURL); ok && value != "" {
		c.CRM.BaseURL = strings.TrimRight(value, "/")
	}
	if value, ok := os.LookupEnv(EnvCRMWallet); ok && value != "" {
		c.CRM.Wallet = value
	}
}

func (c *Config) Channel() azure.Config {
	return azure.Config{
		Endpoint:   c.Azure.Endpoint,
		Deployment: c.Azure.Deployment,
		APIVersion: c.Azure.APIVersion,
		APIKey:     c.Azure.APIKey,
	}
}

// Location resolves the configured scheduling zone. It returns nil when no
// zone is set or the name is unknown, leaving the host zone in effect.
func (c *Config) Location() *time.Location {
	if c.CRM.TimeZone == "" {
		return nil
	}
	loc, err := time.LoadLocation(c.CRM.TimeZone)
	if err != nil {
		logger.Warn("unknown time zone in config, using host zone", "time_zone", c.CRM.TimeZone, "error", err)
		return nil
	}
	return loc
}

func (c *Config) ResendDelay() time.Duration {
	return time.Duration(c.Engine.ResendDelayMS) * time.Millisecond
}

func (c *Config) SilenceTick() time.Duration {
	return time.Duration(c.Engine.SilenceTickMS) * time.Millisecond
}

func (s SessionConfig) Engine() orchestration.SessionConfig {
	return orchestration.SessionConfig{
		Prompt:                  s.Prompt,
		Language:                s.Language,
		Platform:                s.Platform,
		Role:                    s.Role,
		Guests:                  append([]string(nil), s.Guests...),
		Voice:                   s.Voice,
		TurnDetection:           s.TurnDetection,
		MaxResponseOutputTokens: s.MaxResponseOutputTokens,
	}
}
