package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath = "config/config.yaml"

	DefaultServerPort      = 5001
	DefaultRouterPort      = 8080
	DefaultModelLocation   = "/shared-volume/model.json"
	DefaultReloadInterval  = 30 * time.Second
	DefaultLoadTimeout     = 10 * time.Second
	DefaultForwardTimeout  = 10 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMetricsPath     = "/metrics"
)

var GlobalConfig *Config

// Config global configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Model   ModelConfig   `yaml:"model"`
	Router  RouterConfig  `yaml:"router"`
	Redis   RedisConfig   `yaml:"redis"`
	MySQL   MySQLConfig   `yaml:"mysql"`
	Logger  LoggerConfig  `yaml:"logger"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig prediction server configuration
type ServerConfig struct {
	Port            int           `yaml:"port"`
	Mode            string        `yaml:"mode"`      // debug, release
	HostName        string        `yaml:"host_name"` // reported as "host"; defaults to os.Hostname()
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ModelConfig artifact location and reload schedule
type ModelConfig struct {
	Location       string        `yaml:"location"` // file path, file:// URI or redis://key
	ReloadInterval time.Duration `yaml:"reload_interval"`
	LoadTimeout    time.Duration `yaml:"load_timeout"`
}

// RouterConfig request router configuration
type RouterConfig struct {
	Port           int             `yaml:"port"`
	Backends       []string        `yaml:"backends"` // order and duplicates define the rotation
	ForwardTimeout time.Duration   `yaml:"forward_timeout"`
	Discovery      DiscoveryConfig `yaml:"discovery"`
}

// DiscoveryConfig resolves router backends from a Kubernetes Service at startup
type DiscoveryConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Namespace  string `yaml:"namespace"`
	Service    string `yaml:"service"`
	PortName   string `yaml:"port_name"` // empty selects the first port
	Scheme     string `yaml:"scheme"`
	Kubeconfig string `yaml:"kubeconfig"` // empty uses in-cluster config, then default loading rules
}

// RedisConfig Redis configuration
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MySQLConfig MySQL configuration, only used for the model reload audit
type MySQLConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// LoggerConfig logger configuration
type LoggerConfig struct {
	Level  string           `yaml:"level"`  // debug, info, warn, error
	Output string           `yaml:"output"` // console, file, both
	File   LoggerFileConfig `yaml:"file"`
}

// LoggerFileConfig logger file configuration
type LoggerFileConfig struct {
	Path string `yaml:"path"`
}

// MetricsConfig prometheus exposition
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// DSN builds the MySQL DSN
func (c MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// Default returns a configuration populated with defaults only
func Default() *Config {
	cfg := &Config{}
	cfg.Metrics.Enabled = true
	validateAndApplyDefaults(cfg)
	return cfg
}

// Init initializes configuration
func Init() error {
	cfg, err := Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return err
	}
	GlobalConfig = cfg
	return nil
}

// Load reads the YAML file at path, applies environment overrides and defaults.
// An empty path falls back to config/config.yaml, which may be absent.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	cfg := &Config{Metrics: MetricsConfig{Enabled: true}}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// no config file, run on defaults and environment
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := applyEnvOverrides(cfg, os.Getenv); err != nil {
		return nil, err
	}
	validateAndApplyDefaults(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config, getenv func(string) string) error {
	if v := getenv("MODEL_LOCATION"); v != "" {
		cfg.Model.Location = v
	}
	if v := getenv("RELOAD_INTERVAL"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid RELOAD_INTERVAL %q: %w", v, err)
		}
		cfg.Model.ReloadInterval = d
	}
	if v := getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SERVER_PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v := getenv("ROUTER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid ROUTER_PORT %q: %w", v, err)
		}
		cfg.Router.Port = port
	}
	if v := getenv("BACKEND_SERVERS"); v != "" {
		cfg.Router.Backends = splitList(v)
	}
	if v := getenv("FORWARD_TIMEOUT"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid FORWARD_TIMEOUT %q: %w", v, err)
		}
		cfg.Router.ForwardTimeout = d
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := getenv("HOST_NAME"); v != "" {
		cfg.Server.HostName = v
	}
	return nil
}

// parseDuration accepts Go durations ("45s") and bare seconds ("45")
func parseDuration(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func validPort(p int) bool {
	return p > 0 && p <= 65535
}

// validateAndApplyDefaults replaces missing or invalid values with defaults
func validateAndApplyDefaults(cfg *Config) {
	if !validPort(cfg.Server.Port) {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if cfg.Model.Location == "" {
		cfg.Model.Location = DefaultModelLocation
	}
	if cfg.Model.ReloadInterval <= 0 {
		cfg.Model.ReloadInterval = DefaultReloadInterval
	}
	if cfg.Model.LoadTimeout <= 0 {
		cfg.Model.LoadTimeout = DefaultLoadTimeout
	}

	if !validPort(cfg.Router.Port) {
		cfg.Router.Port = DefaultRouterPort
	}
	if cfg.Router.ForwardTimeout <= 0 {
		cfg.Router.ForwardTimeout = DefaultForwardTimeout
	}
	backends := make([]string, 0, len(cfg.Router.Backends))
	for _, b := range cfg.Router.Backends {
		if b = strings.TrimRight(strings.TrimSpace(b), "/"); b != "" {
			backends = append(backends, b)
		}
	}
	cfg.Router.Backends = backends
	if cfg.Router.Discovery.Scheme == "" {
		cfg.Router.Discovery.Scheme = "http"
	}
	if cfg.Router.Discovery.Namespace == "" {
		cfg.Router.Discovery.Namespace = "default"
	}

	if cfg.MySQL.Port == 0 {
		cfg.MySQL.Port = 3306
	}

	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.Logger.Output == "" {
		cfg.Logger.Output = "console"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
}
