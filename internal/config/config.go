package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Backend   BackendConfig   `yaml:"backend"`
	Proxy     ProxyConfig     `yaml:"proxy"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Database  DatabaseConfig  `yaml:"database"`
	Cleanup   CleanupConfig   `yaml:"cleanup"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Port string `yaml:"port"`
}

// BackendConfig points at the scraping pipeline API
type BackendConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"` // 0 = no timeout
}

// ProxyConfig contains title-fetch proxy settings
type ProxyConfig struct {
	UserAgent         string `yaml:"user_agent"`
	TimeoutSeconds    int    `yaml:"timeout_seconds"` // 0 = no timeout
	RenderEnabled     bool   `yaml:"render_enabled"`
	ChromePath        string `yaml:"chrome_path"`
	RenderWaitSeconds int    `yaml:"render_wait_seconds"`
}

// RateLimitConfig contains proxy rate limiting settings
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	RequestsPerHour   int  `yaml:"requests_per_hour"`
}

// DashboardConfig contains view behavior settings
type DashboardConfig struct {
	TitleBatchSize    int    `yaml:"title_batch_size"`
	SessionTTLMinutes int    `yaml:"session_ttl_minutes"`
	ChartRefreshSpec  string `yaml:"chart_refresh_spec"`
	SessionSweepSpec  string `yaml:"session_sweep_spec"`
	ActivityLimit     int    `yaml:"activity_limit"`
}

// DatabaseConfig selects the action log store. An empty type keeps the log in memory.
type DatabaseConfig struct {
	Type     string         `yaml:"type"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// MySQLConfig contains MySQL connection settings
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// PostgresConfig contains PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// CleanupConfig contains action log retention settings
type CleanupConfig struct {
	Enabled          bool   `yaml:"enabled"`
	RetentionDays    int    `yaml:"retention_days"`
	MaxDeletionCount int    `yaml:"max_deletion_count"`
	DryRun           bool   `yaml:"dry_run"`
	DailyRunTime     string `yaml:"daily_run_time"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level       string `yaml:"level"`
	LogRequests bool   `yaml:"log_requests"`
}

// DefaultUserAgent is the desktop browser identity used by the proxy
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "3000",
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:8000",
		},
		Proxy: ProxyConfig{
			UserAgent:         DefaultUserAgent,
			ChromePath:        "/usr/bin/google-chrome",
			RenderWaitSeconds: 3,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 120,
			RequestsPerHour:   3000,
		},
		Dashboard: DashboardConfig{
			TitleBatchSize:    5,
			SessionTTLMinutes: 120,
			ChartRefreshSpec:  "@every 10m",
			SessionSweepSpec:  "@every 5m",
			ActivityLimit:     50,
		},
		Cleanup: CleanupConfig{
			Enabled:          true,
			RetentionDays:    90,
			MaxDeletionCount: 10000,
			DailyRunTime:     "03:00",
		},
		Logging: LoggingConfig{
			Level:       "info",
			LogRequests: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file, then applies .env and
// environment overrides
func LoadConfig(filepath string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, using process environment")
	}

	config := DefaultConfig()

	if _, err := os.Stat(filepath); err == nil {
		data, err := os.ReadFile(filepath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	config.applyEnv()
	return config, nil
}

// applyEnv lets environment variables override file values
func (c *Config) applyEnv() {
	c.Backend.BaseURL = getEnv("API_URL", c.Backend.BaseURL)
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Database.Type = getEnv("DB_TYPE", c.Database.Type)
	if v := os.Getenv("PROXY_RENDER"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Proxy.RenderEnabled = b
		}
	}
}

// MySQLParams resolves MySQL connection parameters from config, then environment, then defaults
func (c *DatabaseConfig) MySQLParams() (host, port, user, password, dbname string) {
	m := c.MySQL
	return getEnvOrConfig(m.Host, "DB_HOST", "mysql"),
		getEnvOrConfig(portString(m.Port), "DB_PORT", "3306"),
		getEnvOrConfig(m.User, "DB_USER", "reid_user"),
		getEnvOrConfig(m.Password, "DB_PASSWORD", "reid_pass"),
		getEnvOrConfig(m.Database, "DB_NAME", "reid_dashboard")
}

// PostgresParams resolves PostgreSQL connection parameters from config, then environment, then defaults
func (c *DatabaseConfig) PostgresParams() (host, port, user, password, dbname, sslmode string) {
	p := c.Postgres
	return getEnvOrConfig(p.Host, "DB_HOST", "db"),
		getEnvOrConfig(portString(p.Port), "DB_PORT", "5432"),
		getEnvOrConfig(p.User, "DB_USER", "reid_user"),
		getEnvOrConfig(p.Password, "DB_PASSWORD", "reid_pass"),
		getEnvOrConfig(p.Database, "DB_NAME", "reid_dashboard"),
		getEnvOrConfig(p.SSLMode, "DB_SSLMODE", "disable")
}

// GetTimeout returns the backend timeout as a duration
func (c *BackendConfig) GetTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GetTimeout returns the proxy timeout as a duration
func (c *ProxyConfig) GetTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GetRenderWait returns how long the headless browser lets a page settle
func (c *ProxyConfig) GetRenderWait() time.Duration {
	return time.Duration(c.RenderWaitSeconds) * time.Second
}

// GetSessionTTL returns the idle time after which a browser session is dropped
func (c *DashboardConfig) GetSessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

func portString(port int) string {
	if port > 0 {
		return strconv.Itoa(port)
	}
	return ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrConfig returns config value if set, otherwise falls back to environment variable, then default
func getEnvOrConfig(configValue, envKey, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	return getEnv(envKey, defaultValue)
}
