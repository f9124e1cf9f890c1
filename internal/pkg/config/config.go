package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, provider credentials)
// - default: Values common across all environments (timezone, operating hours, rates)
// -----------------------------------------------------------------------------

type Config struct {
	Server   ServerConfig
	DB       DBConfig
	CORS     CORSConfig
	Log      LogConfig
	Provider ProviderConfig
	Booking  BookingConfig
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
	TimeZone string `envconfig:"DB_TIMEZONE" default:"America/Argentina/Buenos_Aires"`
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
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"America/Argentina/Buenos_Aires"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"-10800"` // -3*60*60
}

// ProviderConfig configures the MercadoPago integration. AllowReturnTrust
// enables the optimistic trusted-return resolution path and must stay off
// unless the provider API is unreachable from the deployment environment.
type ProviderConfig struct {
	AccessToken         string        `envconfig:"MP_ACCESS_TOKEN" required:"true"`
	BaseURL             string        `envconfig:"MP_BASE_URL" default:"https://api.mercadopago.com"`
	AllowReturnTrust    bool          `envconfig:"MP_ALLOW_RETURN_TRUST" default:"false"`
	StatementDescriptor string        `envconfig:"MP_STATEMENT_DESCRIPTOR" default:"ME RE QUETE"`
	AppBaseURL          string        `envconfig:"APP_BASE_URL" default:"http://localhost:3000"`
	WebhookURL          string        `envconfig:"WEBHOOK_URL" default:""`
	FinalizeAttempts    int           `envconfig:"FINALIZE_ATTEMPTS" default:"1"`
	FinalizeDelay       time.Duration `envconfig:"FINALIZE_DELAY" default:"1500ms"`
}

// BookingConfig holds the fallback values applied when the app_config row is
// absent. The row, once created, wins.
type BookingConfig struct {
	HourlyRate int64 `envconfig:"BOOKING_HOURLY_RATE" default:"14000"`
	DepositPct int   `envconfig:"BOOKING_DEPOSIT_PCT" default:"50"`
	MaxPerHour int   `envconfig:"BOOKING_MAX_PER_HOUR" default:"10"`
	OpenHour   int   `envconfig:"BOOKING_OPEN_HOUR" default:"9"`
	CloseHour  int   `envconfig:"BOOKING_CLOSE_HOUR" default:"20"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
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
			TimeZone: "America/Argentina/Buenos_Aires",
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "America/Argentina/Buenos_Aires",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: -10800,
		},
		Provider: ProviderConfig{
			AccessToken:         "TEST-token",
			BaseURL:             "https://api.mercadopago.com",
			StatementDescriptor: "ME RE QUETE",
			AppBaseURL:          "http://localhost:3000",
			FinalizeAttempts:    1,
			FinalizeDelay:       0,
		},
		Booking: BookingConfig{
			HourlyRate: 14000,
			DepositPct: 50,
			MaxPerHour: 10,
			OpenHour:   9,
			CloseHour:  20,
		},
	}
}
