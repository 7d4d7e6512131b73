package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	LogFormatPretty = "pretty"
	LogFormatPacked = "packed"

	defaultListenAddress    = ":8080"
	defaultBackupDir        = "data"
	defaultPlaylistCacheTTL = 1 * time.Hour
)

type Config struct {
	ListenAddress    string        `json:"listen_address"     yaml:"listen_address"`
	PlaylistID       string        `json:"playlist_id"        yaml:"playlist_id"`
	BackupDir        string        `json:"backup_dir"         yaml:"backup_dir"`
	PlaylistCacheTTL time.Duration `json:"playlist_cache_ttl" yaml:"playlist_cache_ttl"`
	ReuseAccessToken bool          `json:"reuse_access_token" yaml:"reuse_access_token"`
	LogFormat        string        `json:"log_format"         yaml:"log_format"`
}

// newConfig presets the fields whose zero value is meaningful, so the default
// only applies when the key is absent. playlist_cache_ttl: 0s disables the
// playlist cache.
func newConfig() Config {
	return Config{PlaylistCacheTTL: defaultPlaylistCacheTTL} //nolint:exhaustruct
}

func (cfg *Config) setDefaults() {
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = defaultListenAddress
	}
	if cfg.BackupDir == "" {
		cfg.BackupDir = defaultBackupDir
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = LogFormatPretty
	}
}

func (cfg *Config) validate() error {
	if cfg.PlaylistID == "" {
		return errors.New("playlist ID is empty")
	}

	if cfg.PlaylistCacheTTL < 0 {
		return fmt.Errorf("playlist cache TTL must not be negative, got %s", cfg.PlaylistCacheTTL)
	}

	switch cfg.LogFormat {
	case LogFormatPretty, LogFormatPacked:
	default:
		return fmt.Errorf("unsupported log format %q", cfg.LogFormat)
	}

	return nil
}

func FromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if nil != err {
		return nil, fmt.Errorf("failed to read config file %q: %v", filePath, err)
	}

	cfg := newConfig()
	if err := yaml.Unmarshal(data, &cfg); nil != err {
		return nil, fmt.Errorf("failed to unmarshal config file %q: %v", filePath, err)
	}
	cfg.setDefaults()

	if err := cfg.validate(); nil != err {
		return nil, fmt.Errorf("validation failed: %v", err)
	}

	return &cfg, nil
}

func FromString(data string) (*Config, error) {
	cfg := newConfig()
	if err := yaml.Unmarshal([]byte(data), &cfg); nil != err {
		return nil, fmt.Errorf("failed to unmarshal config: %v", err)
	}
	cfg.setDefaults()

	if err := cfg.validate(); nil != err {
		return nil, fmt.Errorf("validation failed: %v", err)
	}

	return &cfg, nil
}

const (
	EnvClientID     = "SPOTIFY_CLIENT_ID"
	EnvClientSecret = "SPOTIFY_CLIENT_SECRET"
	EnvRefreshToken = "SPOTIFY_REFRESH_TOKEN" //nolint:gosec
	EnvBackupAPIKey = "BACKUP_API_KEY"
)

type Secrets struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	// Empty means the manual backup endpoint is not protected.
	BackupAPIKey string
}

// SecretsFromEnv reads the Spotify application credentials. Client ID, client
// secret and refresh token are required.
func SecretsFromEnv() (*Secrets, error) {
	s := Secrets{
		ClientID:     os.Getenv(EnvClientID),
		ClientSecret: os.Getenv(EnvClientSecret),
		RefreshToken: os.Getenv(EnvRefreshToken),
		BackupAPIKey: os.Getenv(EnvBackupAPIKey),
	}

	var errs []error
	if s.ClientID == "" {
		errs = append(errs, fmt.Errorf("%s environment variable is empty", EnvClientID))
	}
	if s.ClientSecret == "" {
		errs = append(errs, fmt.Errorf("%s environment variable is empty", EnvClientSecret))
	}
	if s.RefreshToken == "" {
		errs = append(errs, fmt.Errorf("%s environment variable is empty", EnvRefreshToken))
	}
	if err := errors.Join(errs...); nil != err {
		return nil, err
	}

	return &s, nil
}
