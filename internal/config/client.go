package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultWelcomeText is typed into the editing surface when no document is open.
const DefaultWelcomeText = "Welcome to your workspace. Pick a project or a file on the left to start writing."

// ClientConfig configures the quill CLI and the workspace session it drives.
type ClientConfig struct {
	ServerURL      string        `yaml:"server_url"`
	Token          string        `yaml:"token"`
	UserID         string        `yaml:"user_id"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	Chat    ChatConfig    `yaml:"chat"`
	Welcome WelcomeConfig `yaml:"welcome"`
}

// ChatConfig controls the chat channel's pull schedule.
type ChatConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	// ReloadBurst bounds reloads triggered by typing in the message box.
	ReloadBurst int `yaml:"reload_burst"`
}

// WelcomeConfig controls the typed welcome message shown in the empty state.
type WelcomeConfig struct {
	Text     string        `yaml:"text"`
	Interval time.Duration `yaml:"interval"` // Per character; zero writes the text at once
	Budget   time.Duration `yaml:"budget"`   // After this the full text is written regardless
}

// DefaultClientConfig returns the client defaults.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		ServerURL:      "http://localhost:8080",
		RequestTimeout: 15 * time.Second,
		Chat: ChatConfig{
			PollInterval: 3 * time.Second,
			ReloadBurst:  2,
		},
		Welcome: WelcomeConfig{
			Text:     DefaultWelcomeText,
			Interval: 40 * time.Millisecond,
			Budget:   5 * time.Second,
		},
	}
}

// DefaultClientConfigPath returns ~/.quill.yaml.
func DefaultClientConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".quill.yaml"
	}
	return filepath.Join(home, ".quill.yaml")
}

// LoadClient reads the YAML config at path over the defaults and then applies
// QUILL_* environment overrides. A missing file is not an error.
func LoadClient(path string) (*ClientConfig, error) {
	cfg := DefaultClientConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if v := os.Getenv("QUILL_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("QUILL_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("QUILL_USER_ID"); v != "" {
		cfg.UserID = v
	}

	if cfg.ServerURL == "" {
		return nil, errors.New("server_url is required")
	}
	if cfg.Chat.ReloadBurst <= 0 {
		cfg.Chat.ReloadBurst = 1
	}
	if cfg.Welcome.Text == "" {
		cfg.Welcome.Text = DefaultWelcomeText
	}
	return cfg, nil
}
