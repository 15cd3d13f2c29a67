package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timeouts, page sizes, etc.), standard settings
// Provider credentials are intentionally not required: a provider with missing
// credentials is treated as unconfigured and its operations short-circuit.
// -----------------------------------------------------------------------------

type Config struct {
	Server       ServerConfig
	DB           DBConfig
	CORS         CORSConfig
	Log          LogConfig
	Auth         AuthConfig
	Sync         SyncConfig
	Awin         AwinConfig
	TradeTracker TradeTrackerConfig
	OpenAI       OpenAIConfig
	Yourls       YourlsConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"10"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

type AuthConfig struct {
	JWTSecret         string        `envconfig:"JWT_SECRET" required:"true"`
	JWTDuration       time.Duration `envconfig:"JWT_DURATION" default:"24h"`
	AdminPasswordHash string        `envconfig:"ADMIN_PASSWORD_HASH" required:"true"`
}

type SyncConfig struct {
	// Per-call HTTP timeout; clamped to [15s, 180s] by the client.
	APITimeout      time.Duration `envconfig:"SYNC_API_TIMEOUT" default:"30s"`
	ProviderRPS     float64       `envconfig:"SYNC_PROVIDER_RPS" default:"4"`
	BatchSize       int           `envconfig:"SYNC_BATCH_SIZE" default:"20"`
	ScheduleHourUTC int           `envconfig:"SYNC_SCHEDULE_HOUR_UTC" default:"3"`
	NotificationCap int           `envconfig:"SYNC_NOTIFICATION_CAP" default:"200"`
	PromptFile      string        `envconfig:"SYNC_PROMPT_FILE" default:""`
}

type AwinConfig struct {
	BaseURL     string `envconfig:"AWIN_BASE_URL" default:"https://api.awin.com"`
	APIToken    string `envconfig:"AWIN_API_TOKEN" default:""`
	PublisherID string `envconfig:"AWIN_PUBLISHER_ID" default:""`
	Region      string `envconfig:"AWIN_REGION" default:"GB"`
}

type TradeTrackerConfig struct {
	BaseURL  string `envconfig:"TRADETRACKER_BASE_URL" default:"https://api.tradetracker.com"`
	APIToken string `envconfig:"TRADETRACKER_API_TOKEN" default:""`
	SiteID   string `envconfig:"TRADETRACKER_SITE_ID" default:""`
	Region   string `envconfig:"TRADETRACKER_REGION" default:"GB"`
}

type OpenAIConfig struct {
	BaseURL     string  `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com"`
	APIKey      string  `envconfig:"OPENAI_API_KEY" default:""`
	Model       string  `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	MaxTokens   int     `envconfig:"OPENAI_MAX_TOKENS" default:"300"`
	Temperature float64 `envconfig:"OPENAI_TEMPERATURE" default:"0.7"`
}

type YourlsConfig struct {
	Endpoint string `envconfig:"YOURLS_ENDPOINT" default:""`
	Username string `envconfig:"YOURLS_USERNAME" default:""`
	Password string `envconfig:"YOURLS_PASSWORD" default:""`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			MaxConns: 4,
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "UTC",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 0,
		},
		Sync: SyncConfig{
			APITimeout:      15 * time.Second,
			ProviderRPS:     0, // unlimited in tests
			BatchSize:       5,
			ScheduleHourUTC: 3,
			NotificationCap: 20,
		},
	}
}
