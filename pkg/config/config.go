/*
Package config manages TOML config for placeserve.

Config is resolved from a custom path, then the default path, then built-in
defaults. A missing default file is created. A file with mistyped values is
salvaged section by section. The API key may come from PLACESERVE_API_KEY,
which is also read from a .env file in the working directory.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bastiangx/placeserve/internal/utils"
	"github.com/bastiangx/placeserve/pkg/places"
	"github.com/bastiangx/placeserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	appName = "placeserve"

	// APIKeyEnv overrides places.api_key.
	APIKeyEnv = "PLACESERVE_API_KEY"
)

var validate = validator.New()

// Config holds the entire config structure
type Config struct {
	Pipeline PipelineConfig `toml:"pipeline"`
	Places   PlacesConfig   `toml:"places"`
	CLI      CliConfig      `toml:"cli"`
}

// PipelineConfig has suggestion pipeline options.
type PipelineConfig struct {
	DebounceMs       int      `toml:"debounce_ms" validate:"gte=0"`
	DisableDebounce  bool     `toml:"disable_debounce"`
	Distinct         bool     `toml:"distinct"`
	LoadPlaceDetails bool     `toml:"load_place_details"`
	FetchFields      []string `toml:"fetch_fields" validate:"dive,required"`
	CacheSize        int      `toml:"cache_size" validate:"gte=0"`
}

// PlacesConfig holds the places API client and request defaults.
type PlacesConfig struct {
	APIKey               string   `toml:"api_key"`
	BaseURL              string   `toml:"base_url" validate:"required,url"`
	RateLimit            int      `toml:"rate_limit" validate:"gte=0"`
	RequestTimeoutMs     int      `toml:"request_timeout_ms" validate:"gt=0"`
	LanguageCode         string   `toml:"language_code"`
	RegionCode           string   `toml:"region_code" validate:"omitempty,len=2"`
	IncludedPrimaryTypes []string `toml:"included_primary_types" validate:"max=5,dive,required"`
	IncludedRegionCodes  []string `toml:"included_region_codes" validate:"max=15,dive,len=2"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	ShowHTML bool `toml:"show_html"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. platform config dir (~/.config/placeserve on linux and macOS)
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := utils.PlatformConfigDir(homeDir, appName)
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", appName)
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from -config flag
// 2. Default path: [UserConfigDir]/placeserve/config.toml
// 3. Builtin defaults
//
// The environment is applied last in every case.
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	config, path := loadWithPriority(customConfigPath)
	config.ApplyEnv()
	return config, path, nil
}

func loadWithPriority(customConfigPath string) (*Config, string) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err == nil {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath
			}
			log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), ""
	}
	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), ""
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			DebounceMs:       int(suggest.DefaultDebounce / time.Millisecond),
			DisableDebounce:  false,
			Distinct:         true,
			LoadPlaceDetails: true,
			FetchFields:      append([]string(nil), places.DefaultFields...),
			CacheSize:        0,
		},
		Places: PlacesConfig{
			BaseURL:              places.DefaultBaseURL,
			RateLimit:            places.DefaultRateLimit,
			RequestTimeoutMs:     int(places.DefaultTimeout / time.Millisecond),
			IncludedPrimaryTypes: []string{},
			IncludedRegionCodes:  []string{},
		},
		CLI: CliConfig{
			ShowHTML: false,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file and validates the result.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		config, _ = tryPartialParse(configPath)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return config, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// tryPartialParse keeps every well typed key and defaults the rest.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "pipeline"); ok {
		extractPipelineConfig(section, &config.Pipeline)
	}
	if section, ok := utils.ExtractSection(tempConfig, "places"); ok {
		extractPlacesConfig(section, &config.Places)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	return config, nil
}

func extractPipelineConfig(data map[string]any, p *PipelineConfig) {
	if val, ok := utils.ExtractInt64(data, "debounce_ms"); ok {
		p.DebounceMs = val
	}
	if val, ok := utils.ExtractBool(data, "disable_debounce"); ok {
		p.DisableDebounce = val
	}
	if val, ok := utils.ExtractBool(data, "distinct"); ok {
		p.Distinct = val
	}
	if val, ok := utils.ExtractBool(data, "load_place_details"); ok {
		p.LoadPlaceDetails = val
	}
	if val, ok := utils.ExtractStrings(data, "fetch_fields"); ok {
		p.FetchFields = val
	}
	if val, ok := utils.ExtractInt64(data, "cache_size"); ok {
		p.CacheSize = val
	}
}

func extractPlacesConfig(data map[string]any, p *PlacesConfig) {
	if val, ok := utils.ExtractString(data, "api_key"); ok {
		p.APIKey = val
	}
	if val, ok := utils.ExtractString(data, "base_url"); ok {
		p.BaseURL = val
	}
	if val, ok := utils.ExtractInt64(data, "rate_limit"); ok {
		p.RateLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "request_timeout_ms"); ok {
		p.RequestTimeoutMs = val
	}
	if val, ok := utils.ExtractString(data, "language_code"); ok {
		p.LanguageCode = val
	}
	if val, ok := utils.ExtractString(data, "region_code"); ok {
		p.RegionCode = val
	}
	if val, ok := utils.ExtractStrings(data, "included_primary_types"); ok {
		p.IncludedPrimaryTypes = val
	}
	if val, ok := utils.ExtractStrings(data, "included_region_codes"); ok {
		p.IncludedRegionCodes = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractBool(data, "show_html"); ok {
		cli.ShowHTML = val
	}
}

// ApplyEnv loads envFiles (.env when none given) without overriding the
// process environment, then applies PLACESERVE_API_KEY.
func (c *Config) ApplyEnv(envFiles ...string) {
	if err := godotenv.Load(envFiles...); err != nil {
		log.Debugf("No env file loaded: %v", err)
	}
	if key := os.Getenv(APIKeyEnv); key != "" {
		c.Places.APIKey = key
	}
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() (string, error) {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return "", err
	}
	if err := utils.EnsureDir(filepath.Dir(defaultPath)); err != nil {
		return "", err
	}
	return defaultPath, SaveConfig(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		return "built-in defaults"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// RequestOptions returns the bias and type options every search starts with.
func (c *Config) RequestOptions() places.RequestOptions {
	return places.RequestOptions{
		IncludedPrimaryTypes: c.Places.IncludedPrimaryTypes,
		IncludedRegionCodes:  c.Places.IncludedRegionCodes,
		LanguageCode:         c.Places.LanguageCode,
		RegionCode:           c.Places.RegionCode,
	}
}

// ClientOptions maps the places section onto client options.
func (c *Config) ClientOptions() []places.ClientOption {
	return []places.ClientOption{
		places.WithBaseURL(c.Places.BaseURL),
		places.WithRateLimit(c.Places.RateLimit),
		places.WithTimeout(time.Duration(c.Places.RequestTimeoutMs) * time.Millisecond),
		places.WithLanguageCode(c.Places.LanguageCode),
	}
}

// PipelineOptions maps the pipeline section onto pipeline options.
func (c *Config) PipelineOptions() []suggest.Option {
	p := c.Pipeline
	opts := []suggest.Option{
		suggest.WithDebounce(time.Duration(p.DebounceMs) * time.Millisecond),
		suggest.WithDistinct(p.Distinct),
		suggest.WithPlaceDetails(p.LoadPlaceDetails),
		suggest.WithFetchFields(p.FetchFields),
		suggest.WithRequestOptions(c.RequestOptions()),
	}
	if p.DisableDebounce {
		opts = append(opts, suggest.WithoutDebounce())
	}
	if p.CacheSize > 0 {
		opts = append(opts, suggest.WithCache(suggest.NewPrefixCache(p.CacheSize)))
	}
	return opts
}
