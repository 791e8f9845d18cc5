// Package config loads and validates the service configuration. The file is
// read once at startup; secrets can be supplied through the environment
// instead of the file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete service configuration.
type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	Speech        SpeechConfig        `yaml:"speech"`
	Backend       BackendConfig       `yaml:"backend"`
	Orchestration OrchestrationConfig `yaml:"orchestration"`
	Callers       CallersConfig       `yaml:"callers"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// HTTPConfig contains the webhook and media-stream server configuration.
type HTTPConfig struct {
	Port    int    `yaml:"port"`
	Address string `yaml:"address"`
	// PublicHost is the externally reachable host used in the media-stream
	// URL handed to the telephony provider.
	PublicHost string `yaml:"public_host"`
}

// SpeechConfig contains the speech provider configuration.
type SpeechConfig struct {
	APIKey        string `yaml:"api_key"`
	ListenModel   string `yaml:"listen_model"`
	Language      string `yaml:"language"`
	EndpointingMs int    `yaml:"endpointing_ms"`
	Voice         string `yaml:"voice"`
}

// BackendConfig contains the reasoning backend configuration.
type BackendConfig struct {
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// OrchestrationConfig contains per-call engine tuning.
type OrchestrationConfig struct {
	HistoryLimit    int      `yaml:"history_limit"`
	FrameDurationMs int      `yaml:"frame_duration_ms"`
	FillerPhrases   []string `yaml:"filler_phrases"`
	Instructions    string   `yaml:"instructions"`
	Apology         string   `yaml:"apology"`
}

// CallersConfig points at the caller directory and example tool data.
type CallersConfig struct {
	DirectoryPath string `yaml:"directory_path"`
	PantryPath    string `yaml:"pantry_path"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads, overrides and validates the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	config.applyDefaults()
	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.Address == "" {
		c.HTTP.Address = "0.0.0.0"
	}
	if c.Speech.ListenModel == "" {
		c.Speech.ListenModel = "nova-2"
	}
	if c.Speech.Language == "" {
		c.Speech.Language = "en-US"
	}
	if c.Speech.EndpointingMs == 0 {
		c.Speech.EndpointingMs = 300
	}
	if c.Speech.Voice == "" {
		c.Speech.Voice = "aura-asteria-en"
	}
	if c.Backend.Model == "" {
		c.Backend.Model = "gpt-4o"
	}
	if c.Backend.TimeoutSeconds == 0 {
		c.Backend.TimeoutSeconds = 60
	}
	if c.Orchestration.HistoryLimit == 0 {
		c.Orchestration.HistoryLimit = 10
	}
	if c.Orchestration.FrameDurationMs == 0 {
		c.Orchestration.FrameDurationMs = 20
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// applyEnv lets secrets come from the environment instead of the file.
func (c *Config) applyEnv() {
	if key := os.Getenv("DEEPGRAM_API_KEY"); key != "" {
		c.Speech.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.Backend.APIKey = key
	}
}

// Validate performs validation of the configuration.
func (c *Config) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http config: %w", err)
	}
	if err := c.Speech.Validate(); err != nil {
		return fmt.Errorf("speech config: %w", err)
	}
	if err := c.Backend.Validate(); err != nil {
		return fmt.Errorf("backend config: %w", err)
	}
	if err := c.Orchestration.Validate(); err != nil {
		return fmt.Errorf("orchestration config: %w", err)
	}
	if err := c.Callers.Validate(); err != nil {
		return fmt.Errorf("callers config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

func (h *HTTPConfig) Validate() error {
	if h.Port < 1 || h.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", h.Port)
	}
	if h.Address == "" {
		return fmt.Errorf("address cannot be empty")
	}
	if h.PublicHost == "" {
		return fmt.Errorf("public_host cannot be empty")
	}
	return nil
}

func (s *SpeechConfig) Validate() error {
	if s.APIKey == "" {
		return fmt.Errorf("api_key cannot be empty (set DEEPGRAM_API_KEY)")
	}
	if s.EndpointingMs < 10 || s.EndpointingMs > 5000 {
		return fmt.Errorf("endpointing_ms must be between 10 and 5000, got %d", s.EndpointingMs)
	}
	return nil
}

func (b *BackendConfig) Validate() error {
	if b.APIKey == "" {
		return fmt.Errorf("api_key cannot be empty (set OPENAI_API_KEY)")
	}
	if b.TimeoutSeconds < 1 {
		return fmt.Errorf("timeout_seconds must be at least 1, got %d", b.TimeoutSeconds)
	}
	return nil
}

func (o *OrchestrationConfig) Validate() error {
	if o.HistoryLimit < 2 {
		return fmt.Errorf("history_limit must be at least 2, got %d", o.HistoryLimit)
	}
	if o.FrameDurationMs < 10 || o.FrameDurationMs > 100 {
		return fmt.Errorf("frame_duration_ms must be between 10 and 100, got %d", o.FrameDurationMs)
	}
	for i, phrase := range o.FillerPhrases {
		if phrase == "" {
			return fmt.Errorf("filler_phrases[%d] cannot be empty", i)
		}
	}
	return nil
}

func (c *CallersConfig) Validate() error {
	if c.DirectoryPath == "" {
		return fmt.Errorf("directory_path cannot be empty")
	}
	return nil
}

func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}
	return nil
}

// GetBackendTimeout returns the backend timeout as a duration.
func (c *Config) GetBackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// GetFrameDuration returns the pacing interval as a duration.
func (c *Config) GetFrameDuration() time.Duration {
	return time.Duration(c.Orchestration.FrameDurationMs) * time.Millisecond
}
