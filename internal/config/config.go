package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ConfigFileName = "config.yml"
	AppDirName     = "vigil"
)

// ConfigDir returns the standard config directory for vigil.
// Windows: %APPDATA%\vigil\
// macOS/Linux: ~/.config/vigil/
func ConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, AppDirName), nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppDirName), nil
}

// ConfigPath returns the path to the config file.
// e.g., ~/.config/vigil/config.yml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

type Config struct {
	// SessionsRoot is the directory where analysis sessions are created
	SessionsRoot string `yaml:"sessions_root,omitempty"`

	// NumFrames is how many keyframes to sample from a video (default: 20)
	NumFrames int `yaml:"num_frames,omitempty"`

	// Oracle configuration for the reasoning and search oracles
	Oracle OracleConfig `yaml:"oracle,omitempty"`

	// Scrape limits for the webpage scraper
	Scrape ScrapeConfig `yaml:"scrape,omitempty"`

	// Server configuration for `vigil serve`
	Server ServerConfig `yaml:"server,omitempty"`
}

// OracleConfig selects the reasoning provider and models.
// API keys are never stored here; they come from the environment
// (GEMINI_API_KEY, OPENAI_API_KEY, SERPAPI_API_KEY), optionally via .env.
type OracleConfig struct {
	// Provider is "gemini" (default) or "openai"
	Provider string `yaml:"provider,omitempty"`

	// Model overrides the provider's default model
	Model string `yaml:"model,omitempty"`

	// SearchBaseURL overrides the search API endpoint (mainly for tests)
	SearchBaseURL string `yaml:"search_base_url,omitempty"`
}

// ScrapeConfig caps what the webpage scraper collects
type ScrapeConfig struct {
	// MaxTextChars caps scraped body text (default: 10000)
	MaxTextChars int `yaml:"max_text_chars,omitempty"`

	// MaxImages caps collected image URLs (default: 10)
	MaxImages int `yaml:"max_images,omitempty"`

	// MaxLinks caps collected links (default: 20)
	MaxLinks int `yaml:"max_links,omitempty"`
}

// ServerConfig holds HTTP server settings for `vigil serve`
type ServerConfig struct {
	// Port is the HTTP listen port (default: 8080)
	Port int `yaml:"port,omitempty"`

	// APIKey for authentication (optional, if set all requests must include X-API-Key header)
	APIKey string `yaml:"api_key,omitempty"`

	// MaxUploadMB caps multipart upload size (default: 200)
	MaxUploadMB int `yaml:"max_upload_mb,omitempty"`
}

// DefaultSessionsRoot returns the default directory for analysis sessions
func DefaultSessionsRoot() string {
	// Docker: use the default container path (users mount their volume here)
	if IsRunningInDocker() {
		return "/home/vigil/analysis"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./analysis"
	}
	return filepath.Join(home, "vigil", "analysis")
}

// IsRunningInDocker detects if we're running inside a Docker container
func IsRunningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	if data, err := os.ReadFile("/proc/1/cgroup"); err == nil {
		content := string(data)
		if strings.Contains(content, "docker") || strings.Contains(content, "containerd") {
			return true
		}
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true
	}
	return false
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		SessionsRoot: DefaultSessionsRoot(),
		NumFrames:    20,
		Oracle: OracleConfig{
			Provider: "gemini",
		},
		Scrape: ScrapeConfig{
			MaxTextChars: 10000,
			MaxImages:    10,
			MaxLinks:     20,
		},
		Server: ServerConfig{
			Port:        8080,
			MaxUploadMB: 200,
		},
	}
}

// applyDefaults fills zero values so a sparse config file still works
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.SessionsRoot == "" {
		c.SessionsRoot = def.SessionsRoot
	}
	if c.NumFrames <= 0 {
		c.NumFrames = def.NumFrames
	}
	if c.Oracle.Provider == "" {
		c.Oracle.Provider = def.Oracle.Provider
	}
	if c.Scrape.MaxTextChars <= 0 {
		c.Scrape.MaxTextChars = def.Scrape.MaxTextChars
	}
	if c.Scrape.MaxImages <= 0 {
		c.Scrape.MaxImages = def.Scrape.MaxImages
	}
	if c.Scrape.MaxLinks <= 0 {
		c.Scrape.MaxLinks = def.Scrape.MaxLinks
	}
	if c.Server.Port <= 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Server.MaxUploadMB <= 0 {
		c.Server.MaxUploadMB = def.Server.MaxUploadMB
	}
}

// Exists checks if config file exists
func Exists() bool {
	path, err := ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Load reads the config from ~/.config/vigil/config.yml
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.SessionsRoot = expandPath(cfg.SessionsRoot)
	cfg.applyDefaults()

	return cfg, nil
}

// expandPath expands the tilde (~) in the path to the user's home directory.
// It handles both forward and backward slashes to ensure cross-platform
// compatibility for configuration files.
func expandPath(path string) string {
	if path == "" {
		return ""
	}

	if strings.HasPrefix(path, "~") {
		// Only expand if it's explicitly "~", "~/", or "~\"
		if len(path) == 1 || path[1] == '/' || path[1] == '\\' {
			home, err := os.UserHomeDir()
			if err == nil {
				subPath := path[1:]
				if len(subPath) > 0 && (subPath[0] == '/' || subPath[0] == '\\') {
					subPath = subPath[1:]
				}
				return filepath.Join(home, subPath)
			}
		}
	}

	return path
}

// Save writes the config to ~/.config/vigil/config.yml
func Save(cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	configPath, err := ConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	header := "# vigil configuration file\n# Run 'vigil init' to regenerate with defaults\n\n"
	content := header + string(data)

	return os.WriteFile(configPath, []byte(content), 0644)
}

// Init creates a new config.yml with default values
func Init() error {
	if Exists() {
		path, _ := ConfigPath()
		return fmt.Errorf("%s already exists", path)
	}
	return Save(DefaultConfig())
}

// LoadOrDefault loads config if it exists, otherwise returns defaults.
// A .env file in the working directory is loaded into the environment
// first so API keys can live next to the deployment.
func LoadOrDefault() *Config {
	_ = godotenv.Load()

	cfg, err := Load()
	if err != nil {
		cfg = DefaultConfig()
	}
	return cfg
}

// Environment variable names for oracle credentials
const (
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvSerpAPIKey   = "SERPAPI_API_KEY"
)

// GeminiAPIKey returns the Gemini API key from the environment
func GeminiAPIKey() string { return os.Getenv(EnvGeminiAPIKey) }

// OpenAIAPIKey returns the OpenAI API key from the environment
func OpenAIAPIKey() string { return os.Getenv(EnvOpenAIAPIKey) }

// SerpAPIKey returns the SerpAPI key from the environment
func SerpAPIKey() string { return os.Getenv(EnvSerpAPIKey) }
