package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // memory, sqlite, postgres
	Path            string        `mapstructure:"path"`   // sqlite file path
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN builds the connection string for the configured driver.
func (c *DatabaseConfig) DSN() string {
	switch c.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
	default:
		return c.Path
	}
}

// PipelineConfig bounds campaign execution.
type PipelineConfig struct {
	StageTimeout     time.Duration `mapstructure:"stage_timeout"`
	CampaignDeadline time.Duration `mapstructure:"campaign_deadline"`
	MaxConcurrent    int           `mapstructure:"max_concurrent"`
}

type ProvidersConfig struct {
	Trends  TrendsProviderConfig  `mapstructure:"trends"`
	Content ContentProviderConfig `mapstructure:"content"`
	Images  ImagesProviderConfig  `mapstructure:"images"`
}

type TrendsProviderConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type ContentProviderConfig struct {
	Model   string        `mapstructure:"model"`
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ImagesProviderConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	AccessKey string        `mapstructure:"access_key"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// ArchiveConfig controls the optional object-storage export of completed
// campaign results.
type ArchiveConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("database.driver", "memory")
	v.SetDefault("database.path", "./data/campaigns.db")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("pipeline.stage_timeout", 60*time.Second)
	v.SetDefault("pipeline.campaign_deadline", 5*time.Minute)
	v.SetDefault("pipeline.max_concurrent", 16)
	v.SetDefault("providers.trends.base_url", "https://www.reddit.com")
	v.SetDefault("providers.trends.user_agent", "vyralflow/1.0")
	v.SetDefault("providers.trends.timeout", 15*time.Second)
	v.SetDefault("providers.content.model", "gpt-4o-mini")
	v.SetDefault("providers.content.base_url", "https://api.openai.com/v1")
	v.SetDefault("providers.content.timeout", 45*time.Second)
	v.SetDefault("providers.images.base_url", "https://api.unsplash.com")
	v.SetDefault("providers.images.timeout", 15*time.Second)
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.use_ssl", true)
	v.SetDefault("archive.bucket", "vyralflow-campaigns")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("providers.content.api_key", "OPENAI_API_KEY")
	v.BindEnv("providers.content.base_url", "OPENAI_BASE_URL")
	v.BindEnv("providers.images.access_key", "UNSPLASH_ACCESS_KEY")
	v.BindEnv("archive.access_key", "ARCHIVE_ACCESS_KEY")
	v.BindEnv("archive.secret_key", "ARCHIVE_SECRET_KEY")
	v.BindEnv("archive.endpoint", "ARCHIVE_ENDPOINT")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
