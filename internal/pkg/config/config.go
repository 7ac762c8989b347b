package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, credentials, etc.), security settings
// - default: Values common across all environments (timeouts, marketplace defaults, etc.)
// -----------------------------------------------------------------------------

type Config struct {
	Server ServerConfig
	DB     DBConfig
	CORS   CORSConfig
	Log    LogConfig
	Ebay   EbayConfig
	Images ImageConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Path string `envconfig:"DB_PATH" default:"booklister.db"`
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

type EbayConfig struct {
	Environment         string        `envconfig:"EBAY_ENVIRONMENT" default:"sandbox"`
	BaseURLOverride     string        `envconfig:"EBAY_BASE_URL" default:""`
	Marketplace         string        `envconfig:"EBAY_MARKETPLACE" default:"EBAY_US"`
	AccessToken         string        `envconfig:"EBAY_ACCESS_TOKEN" required:"true"`
	RefreshToken        string        `envconfig:"EBAY_REFRESH_TOKEN" default:""`
	ClientID            string        `envconfig:"EBAY_CLIENT_ID" default:""`
	ClientSecret        string        `envconfig:"EBAY_CLIENT_SECRET" default:""`
	MerchantLocationKey string        `envconfig:"EBAY_MERCHANT_LOCATION_KEY" default:""`
	HTTPTimeout         time.Duration `envconfig:"EBAY_HTTP_TIMEOUT" default:"30s"`
	TraceDir            string        `envconfig:"EBAY_TRACE_DIR" default:""`
}

type ImageConfig struct {
	PublicBaseURL string `envconfig:"IMAGE_PUBLIC_BASE_URL" required:"true"`
}

// BaseURL returns the Sell API host for the configured environment.
// The override exists for pointing at a local mock server.
func (c *EbayConfig) BaseURL() string {
	if c.BaseURLOverride != "" {
		return c.BaseURLOverride
	}
	if c.Environment == "production" {
		return "https://api.ebay.com"
	}
	return "https://api.sandbox.ebay.com"
}

// ListingURL builds the public item URL for a published listing.
func (c *EbayConfig) ListingURL(listingID string) string {
	if c.Environment == "production" {
		return fmt.Sprintf("https://www.ebay.com/itm/%s", listingID)
	}
	return fmt.Sprintf("https://sandbox.ebay.com/itm/%s", listingID)
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
			Path: ":memory:",
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "UTC",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 0,
		},
		Ebay: EbayConfig{
			Environment: "sandbox",
			Marketplace: "EBAY_US",
			AccessToken: "test-token",
			HTTPTimeout: 5 * time.Second,
		},
		Images: ImageConfig{
			PublicBaseURL: "https://images.example.com",
		},
	}
}
