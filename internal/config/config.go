package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load
const EnvPrefix = "BRANDS"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Data      DataConfig      `yaml:"data" envconfig:"DATA"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST" default:"0.0.0.0"`
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"30s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/brands-compare.log"`
}

// DataConfig locates the three input files
type DataConfig struct {
	Dir              string        `yaml:"dir" envconfig:"DIR" default:"data"`
	AirlineLevelFile string        `yaml:"airline_level_file" envconfig:"AIRLINE_LEVEL_FILE" default:"george_airline_level.csv"`
	SourceLevelFile  string        `yaml:"source_level_file" envconfig:"SOURCE_LEVEL_FILE" default:"george_airline_source_level.csv"`
	DetectionFile    string        `yaml:"detection_file" envconfig:"DETECTION_FILE" default:"teo_airline_source.csv"`
	LoadTimeout      time.Duration `yaml:"load_timeout" envconfig:"LOAD_TIMEOUT" default:"60s"`
}

// TelemetryConfig controls tracing and metrics
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME" default:"brands-compare"`
	TraceExporter  string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"none"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED" default:"true"`
}

// Options adjusts where Load looks for configuration
type Options struct {
	// ConfigFile is an explicit YAML file; empty searches the usual locations
	ConfigFile string
	// EnvFiles are dotenv files loaded before the environment is read
	EnvFiles []string
}

// Load loads configuration from .env files, environment variables and a YAML file.
// Environment variables take precedence over the file; the file over defaults.
func Load(opts Options) (*Config, error) {
	if err := loadEnvFiles(opts.EnvFiles); err != nil {
		return nil, fmt.Errorf("failed to load env files: %w", err)
	}

	cfg := Default()

	configFile := opts.ConfigFile
	if configFile == "" {
		configFile = getConfigFilePath()
	} else if _, err := os.Stat(configFile); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configFile, err)
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadEnvFiles reads dotenv files without overriding variables already set.
// With no explicit files a missing ./.env is not an error.
func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	return godotenv.Load(files...)
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnv overlays only the variables that are actually set. envconfig.Process
// would reapply defaults over file values, so it runs on a scratch copy and
// only explicitly set keys are copied back.
func applyEnv(cfg *Config) error {
	var env Config
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return err
	}

	set := func(key string) bool {
		_, ok := os.LookupEnv(EnvPrefix + "_" + key)
		return ok
	}

	if set("SERVER_HOST") {
		cfg.Server.Host = env.Server.Host
	}
	if set("SERVER_PORT") {
		cfg.Server.Port = env.Server.Port
	}
	if set("SERVER_READ_TIMEOUT") {
		cfg.Server.ReadTimeout = env.Server.ReadTimeout
	}
	if set("SERVER_WRITE_TIMEOUT") {
		cfg.Server.WriteTimeout = env.Server.WriteTimeout
	}
	if set("SERVER_IDLE_TIMEOUT") {
		cfg.Server.IdleTimeout = env.Server.IdleTimeout
	}
	if set("SERVER_MAX_HEADER_BYTES") {
		cfg.Server.MaxHeaderBytes = env.Server.MaxHeaderBytes
	}
	if set("SERVER_SHUTDOWN_TIMEOUT") {
		cfg.Server.ShutdownTimeout = env.Server.ShutdownTimeout
	}
	if set("SERVER_REQUEST_TIMEOUT") {
		cfg.Server.RequestTimeout = env.Server.RequestTimeout
	}

	if set("SECURITY_ALLOWED_ORIGINS") {
		cfg.Security.AllowedOrigins = env.Security.AllowedOrigins
	}
	if set("SECURITY_ENABLE_CORS") {
		cfg.Security.EnableCORS = env.Security.EnableCORS
	}
	if set("SECURITY_RATE_LIMIT_ENABLED") {
		cfg.Security.RateLimit.Enabled = env.Security.RateLimit.Enabled
	}
	if set("SECURITY_RATE_LIMIT_RPS") {
		cfg.Security.RateLimit.RPS = env.Security.RateLimit.RPS
	}
	if set("SECURITY_RATE_LIMIT_BURST") {
		cfg.Security.RateLimit.Burst = env.Security.RateLimit.Burst
	}

	if set("LOGGING_LEVEL") {
		cfg.Logging.Level = env.Logging.Level
	}
	if set("LOGGING_OUTPUT") {
		cfg.Logging.Output = env.Logging.Output
	}
	if set("LOGGING_FILE_PATH") {
		cfg.Logging.FilePath = env.Logging.FilePath
	}

	if set("DATA_DIR") {
		cfg.Data.Dir = env.Data.Dir
	}
	if set("DATA_AIRLINE_LEVEL_FILE") {
		cfg.Data.AirlineLevelFile = env.Data.AirlineLevelFile
	}
	if set("DATA_SOURCE_LEVEL_FILE") {
		cfg.Data.SourceLevelFile = env.Data.SourceLevelFile
	}
	if set("DATA_DETECTION_FILE") {
		cfg.Data.DetectionFile = env.Data.DetectionFile
	}
	if set("DATA_LOAD_TIMEOUT") {
		cfg.Data.LoadTimeout = env.Data.LoadTimeout
	}

	if set("TELEMETRY_SERVICE_NAME") {
		cfg.Telemetry.ServiceName = env.Telemetry.ServiceName
	}
	if set("TELEMETRY_TRACE_EXPORTER") {
		cfg.Telemetry.TraceExporter = env.Telemetry.TraceExporter
	}
	if set("TELEMETRY_METRICS_ENABLED") {
		cfg.Telemetry.MetricsEnabled = env.Telemetry.MetricsEnabled
	}

	return nil
}

// Addr returns the listen address of the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// AirlineLevelPath returns the resolved path of the airline-level file
func (c *Config) AirlineLevelPath() string {
	return c.resolve(c.Data.AirlineLevelFile)
}

// SourceLevelPath returns the resolved path of the source-level file
func (c *Config) SourceLevelPath() string {
	return c.resolve(c.Data.SourceLevelFile)
}

// DetectionPath returns the resolved path of the brand-detection file
func (c *Config) DetectionPath() string {
	return c.resolve(c.Data.DetectionFile)
}

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Data.Dir, name)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	if strings.TrimSpace(c.Data.Dir) == "" {
		return fmt.Errorf("data directory must be specified")
	}

	for name, file := range map[string]string{
		"airline level": c.Data.AirlineLevelFile,
		"source level":  c.Data.SourceLevelFile,
		"detection":     c.Data.DetectionFile,
	} {
		if strings.TrimSpace(file) == "" {
			return fmt.Errorf("%s file name must be specified", name)
		}
	}

	switch strings.ToLower(c.Logging.Output) {
	case "console", "file", "both":
	default:
		c.Logging.Output = "console"
	}

	switch strings.ToLower(c.Telemetry.TraceExporter) {
	case "none", "stdout":
	default:
		return fmt.Errorf("unsupported trace exporter: %s", c.Telemetry.TraceExporter)
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/brands-compare.log",
		},
		Data: DataConfig{
			Dir:              "data",
			AirlineLevelFile: "george_airline_level.csv",
			SourceLevelFile:  "george_airline_source_level.csv",
			DetectionFile:    "teo_airline_source.csv",
			LoadTimeout:      60 * time.Second,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "brands-compare",
			TraceExporter:  "none",
			MetricsEnabled: true,
		},
	}
}
