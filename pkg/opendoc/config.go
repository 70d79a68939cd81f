package opendoc

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/benjaminschreck/go-opendoc/pkg/opendoc/format"
)

// Image markup variants understood by the writer.
const (
	ImageMarkupVML       = "vml"
	ImageMarkupDrawingML = "drawingml"
)

// Config contains all configuration options for the package writer
type Config struct {
	// DPI is the points-per-inch ratio used for inch conversions.
	DPI float64 `yaml:"dpi"`
	// MediaPath is the archive directory that receives image parts.
	MediaPath string `yaml:"media_path"`
	// TempDir holds in-progress archives and fetched remote images. Empty
	// means os.TempDir().
	TempDir string `yaml:"temp_dir"`
	// TempPrefix prefixes temporary file names.
	TempPrefix string `yaml:"temp_prefix"`
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string `yaml:"log_level"`
	// NoThrow degrades save failures to logged warnings.
	NoThrow bool `yaml:"no_throw"`
	// ImageMarkup selects VML or DrawingML picture markup.
	ImageMarkup string `yaml:"image_markup"`
	// Creator is the default dc:creator when the document sets none.
	Creator string `yaml:"creator"`
	// ImageCacheSize bounds the image metadata cache. 0 disables caching.
	ImageCacheSize int `yaml:"image_cache_size"`
}

var (
	globalConfig      *Config
	globalConfigMutex sync.RWMutex
	configOnce        sync.Once
)

func init() {
	configOnce.Do(func() {
		globalConfig = ConfigFromEnvironment()
	})
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DPI:            format.DefaultDPI,
		MediaPath:      "word/media",
		TempPrefix:     "opendoc_",
		LogLevel:       "info",
		NoThrow:        false,
		ImageMarkup:    ImageMarkupVML,
		ImageCacheSize: 256,
	}
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()
	config.applyEnvironment()
	return config
}

func (c *Config) applyEnvironment() {
	// OPENDOC_DPI
	if val := os.Getenv("OPENDOC_DPI"); val != "" {
		if dpi, err := strconv.ParseFloat(val, 64); err == nil {
			c.DPI = dpi
		}
	}

	// OPENDOC_MEDIA_PATH
	if val := os.Getenv("OPENDOC_MEDIA_PATH"); val != "" {
		c.MediaPath = val
	}

	// OPENDOC_TEMP_DIR
	if val := os.Getenv("OPENDOC_TEMP_DIR"); val != "" {
		c.TempDir = val
	}

	// OPENDOC_TEMP_PREFIX
	if val := os.Getenv("OPENDOC_TEMP_PREFIX"); val != "" {
		c.TempPrefix = val
	}

	// OPENDOC_LOG_LEVEL
	if val := os.Getenv("OPENDOC_LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}

	// OPENDOC_NO_THROW
	if val := os.Getenv("OPENDOC_NO_THROW"); val != "" {
		c.NoThrow = parseBool(val)
	}

	// OPENDOC_IMAGE_MARKUP
	if val := os.Getenv("OPENDOC_IMAGE_MARKUP"); val != "" {
		c.ImageMarkup = strings.ToLower(val)
	}

	// OPENDOC_CREATOR
	if val := os.Getenv("OPENDOC_CREATOR"); val != "" {
		c.Creator = val
	}

	// OPENDOC_IMAGE_CACHE_SIZE
	if val := os.Getenv("OPENDOC_IMAGE_CACHE_SIZE"); val != "" {
		if size, err := strconv.Atoi(val); err == nil {
			c.ImageCacheSize = size
		}
	}
}

// envVarPattern matches ${VAR_NAME} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// LoadConfigFile reads a YAML configuration file on top of the
// environment configuration. A missing file yields the environment
// configuration unchanged.
func LoadConfigFile(path string) (*Config, error) {
	config := ConfigFromEnvironment()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := expandEnvVars(string(data))
	if err := yaml.Unmarshal([]byte(expanded), config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

// expandEnvVars replaces ${VAR_NAME} with environment variable values.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(name)
	})
}

// NewConfigWithDefaults creates a new configuration with defaults applied to unset fields
func NewConfigWithDefaults(overrides *Config) *Config {
	defaults := DefaultConfig()

	if overrides == nil {
		return defaults
	}

	config := *overrides

	if config.DPI == 0 {
		config.DPI = defaults.DPI
	}
	if config.MediaPath == "" {
		config.MediaPath = defaults.MediaPath
	}
	if config.TempPrefix == "" {
		config.TempPrefix = defaults.TempPrefix
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}
	if config.ImageMarkup == "" {
		config.ImageMarkup = defaults.ImageMarkup
	}

	return &config
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DPI <= 0 {
		return errors.New("dpi must be positive")
	}

	if strings.Trim(c.MediaPath, "/") == "" {
		return errors.New("media path cannot be empty")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"off":   true,
	}

	if !validLogLevels[c.LogLevel] {
		return errors.New("invalid log level: " + c.LogLevel)
	}

	if c.ImageCacheSize < 0 {
		return errors.New("image cache size cannot be negative")
	}

	if c.ImageMarkup != ImageMarkupVML && c.ImageMarkup != ImageMarkupDrawingML {
		return errors.New("invalid image markup: " + c.ImageMarkup)
	}

	return nil
}

// GetGlobalConfig returns the global configuration
func GetGlobalConfig() *Config {
	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	if globalConfig == nil {
		return DefaultConfig()
	}

	configCopy := *globalConfig
	return &configCopy
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config *Config) {
	globalConfigMutex.Lock()
	globalConfig = config
	globalConfigMutex.Unlock()

	UpdateLoggerFromConfig()
}

// parseBool parses a boolean value from a string
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
