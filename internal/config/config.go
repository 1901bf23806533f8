// Package config loads application settings from the config file,
// environment variables, and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/makeeyaf/xcodesync/internal/model"
)

// AppName is the fixed application name. It doubles as the keychain account
// name under which the access token is stored.
const AppName = "xcode-sync"

// DescriptionTag prefixes the remote document description. The document
// owned by this app for user X has description DescriptionTag + X exactly.
const DescriptionTag = "XcodeSync for "

// Scope is the OAuth scope requested during login.
const Scope = "gist"

// CategorySpec describes one configured local file category: a directory
// plus either a filename suffix or one exact filename.
type CategorySpec struct {
	Category model.Category
	Dir      string
	Match    string
	Exact    bool
}

// Matches reports whether the bare filename belongs to this category.
func (c CategorySpec) Matches(name string) bool {
	if c.Exact {
		return name == c.Match
	}
	return strings.HasSuffix(name, c.Match)
}

// Config holds all runtime settings.
type Config struct {
	// BaseDir is the Xcode UserData directory holding all three categories.
	BaseDir string

	ClientID     string
	ClientSecret string

	// Endpoint overrides, primarily for tests and dev mode.
	AuthURL  string
	TokenURL string
	APIURL   string
	UserURL  string

	// CallbackAddr is the loopback address the login command listens on for
	// the authorization redirect.
	CallbackAddr string

	// SyncInterval is the periodic upload interval in watch mode.
	SyncInterval time.Duration

	// LogFile, when set, routes watch-mode logs to a rotating file.
	LogFile string

	// DevMode swaps the GitHub document store for an in-memory one.
	DevMode bool
}

// Categories returns the three configured local categories, in the order
// they are listed and reconciled.
func (c *Config) Categories() []CategorySpec {
	return []CategorySpec{
		{Category: model.CategoryColorTheme, Dir: filepath.Join(c.BaseDir, "FontAndColorThemes"), Match: ".xccolortheme"},
		{Category: model.CategoryKeyBinding, Dir: filepath.Join(c.BaseDir, "KeyBindings"), Match: ".idekeybindings"},
		{Category: model.CategoryTemplateMacros, Dir: c.BaseDir, Match: "IDETemplateMacros.plist", Exact: true},
	}
}

// Load reads the config file (if present) and environment, applying
// defaults for everything unset. Environment variables use the XCODESYNC_
// prefix, e.g. XCODESYNC_CLIENT_SECRET.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "xcodesync"))
	}
	v.SetEnvPrefix("XCODESYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	v.SetDefault("base_dir", filepath.Join(home, "Library", "Developer", "Xcode", "UserData"))
	v.SetDefault("auth_url", "https://github.com/login/oauth/authorize")
	v.SetDefault("token_url", "https://github.com/login/oauth/access_token")
	v.SetDefault("api_url", "https://api.github.com")
	v.SetDefault("user_url", "https://api.github.com/user")
	v.SetDefault("callback_addr", "127.0.0.1:48226")
	v.SetDefault("sync_interval", 30*time.Second)
	v.SetDefault("log_file", "")
	v.SetDefault("dev_mode", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		BaseDir:      v.GetString("base_dir"),
		ClientID:     v.GetString("client_id"),
		ClientSecret: v.GetString("client_secret"),
		AuthURL:      v.GetString("auth_url"),
		TokenURL:     v.GetString("token_url"),
		APIURL:       v.GetString("api_url"),
		UserURL:      v.GetString("user_url"),
		CallbackAddr: v.GetString("callback_addr"),
		SyncInterval: v.GetDuration("sync_interval"),
		LogFile:      v.GetString("log_file"),
		DevMode:      v.GetBool("dev_mode"),
	}
	return cfg, nil
}
