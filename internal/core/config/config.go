package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Ledger backends supported by LEDGER_BACKEND.
const (
	LedgerBackendSheets = "sheets"
	LedgerBackendXLSX   = "xlsx"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the status API listens in serve mode.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// Storefront holds the admin console credentials and page URLs.
	Storefront StorefrontConfig `mapstructure:",squash"`

	// Ledger holds the order ledger configuration.
	Ledger LedgerConfig `mapstructure:",squash"`

	// Provider holds the fulfillment provider API configuration.
	Provider ProviderConfig `mapstructure:",squash"`

	// Redis holds the optional Redis connection used for run locking and reports.
	Redis RedisConfig `mapstructure:",squash"`

	// Proxy holds the optional outbound proxy for the browser.
	Proxy ProxyConfig `mapstructure:",squash"`

	// Schedule controls the periodic reconciliation loop.
	Schedule ScheduleConfig `mapstructure:",squash"`
}

// StorefrontConfig holds the storefront admin login and page addresses.
type StorefrontConfig struct {
	// Username is the admin login ID.
	Username string `mapstructure:"ADMIN_USERNAME" required:"true"`
	// Password is the admin login password.
	Password string `mapstructure:"ADMIN_PASSWORD" required:"true"`
	// LoginURL is the admin login page.
	LoginURL string `mapstructure:"LOGIN_PAGE" required:"true"`
	// DashboardURL is the page the admin lands on after a successful login.
	DashboardURL string `mapstructure:"DASHBOARD_PAGE" required:"true"`
	// ShippingURL is the in-transit order list page.
	ShippingURL string `mapstructure:"SHIPPING_PAGE" required:"true"`
	// Headless runs the browser without a window.
	Headless bool `mapstructure:"BROWSER_HEADLESS" default:"true"`
	// BrowserBin optionally points to a local Chromium binary.
	BrowserBin string `mapstructure:"BROWSER_BIN"`
	// WaitTimeout bounds every element wait on the admin pages.
	WaitTimeout time.Duration `mapstructure:"BROWSER_WAIT_TIMEOUT" default:"20s"`
	// SelectDelay is the pause after ticking an order checkbox.
	SelectDelay time.Duration `mapstructure:"STOREFRONT_SELECT_DELAY" default:"1s"`
}

// LedgerConfig holds the spreadsheet ledger settings.
type LedgerConfig struct {
	// Backend selects the ledger implementation: "sheets" or "xlsx".
	Backend string `mapstructure:"LEDGER_BACKEND" default:"sheets"`
	// CredentialsFile is the service account JSON key for Google Sheets.
	CredentialsFile string `mapstructure:"JSON_KEY"`
	// SheetKey is the Google Sheets document key.
	SheetKey string `mapstructure:"SHEET_KEY"`
	// Worksheet is the worksheet holding the market/store order mapping.
	Worksheet string `mapstructure:"LEDGER_WORKSHEET" default:"market_store_order_list"`
	// XLSXPath is the workbook used by the xlsx backend.
	XLSXPath string `mapstructure:"LEDGER_XLSX_PATH"`
	// MatchMode is "contains" or "exact".
	MatchMode string `mapstructure:"LEDGER_MATCH_MODE" default:"contains"`
	// MaxAttempts bounds retries of a single ledger call.
	MaxAttempts int `mapstructure:"LEDGER_MAX_ATTEMPTS" default:"5"`
	// RowUpdateDelay is the pause after each row update, for the API rate limit.
	RowUpdateDelay time.Duration `mapstructure:"LEDGER_ROW_UPDATE_DELAY" default:"500ms"`
}

// ProviderConfig holds the fulfillment provider API credentials.
type ProviderConfig struct {
	// APIKey is sent as the "key" form field.
	APIKey string `mapstructure:"STORE_API_KEY" required:"true"`
	// BaseURL is the provider API endpoint.
	BaseURL string `mapstructure:"STORE_BASIC_URL" required:"true"`
	// Timeout is the HTTP timeout per provider call.
	Timeout time.Duration `mapstructure:"PROVIDER_TIMEOUT" default:"30s"`
	// RateLimit caps requests per second to the provider. Zero means unlimited.
	RateLimit float64 `mapstructure:"PROVIDER_RATE_LIMIT"`
}

// RedisConfig holds the Redis connection details.
type RedisConfig struct {
	// URL is a redis:// URL. Empty disables Redis.
	URL string `mapstructure:"REDIS_URL"`
	// LockTTL bounds how long a crashed run can hold the run lock.
	LockTTL time.Duration `mapstructure:"RUN_LOCK_TTL" default:"30m"`
}

// ProxyConfig holds proxy settings for the browser.
type ProxyConfig struct {
	Enabled  bool   `mapstructure:"PROXY_ENABLED"`
	Hostname string `mapstructure:"PROXY_HOSTNAME"`
	Port     int    `mapstructure:"PROXY_PORT"`
	Username string `mapstructure:"PROXY_USERNAME"`
	Password string `mapstructure:"PROXY_PASSWORD"`
}

// ScheduleConfig controls serve mode.
type ScheduleConfig struct {
	// Interval between runs. Zero disables the loop; runs are then only triggered over HTTP.
	Interval time.Duration `mapstructure:"RUN_INTERVAL" default:"10m"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	// .env files written for the old job quote these two values.
	config.Provider.APIKey = unquote(config.Provider.APIKey)
	config.Provider.BaseURL = unquote(config.Provider.BaseURL)

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	if err := validateLedger(config.Ledger); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags iterates over the struct fields and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			if err := v.BindEnv(key); err != nil {
				return fmt.Errorf("failed to bind %s: %w", key, err)
			}
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		if field.Tag.Get("required") == "true" && isZero(val.Field(i)) {
			return fmt.Errorf("missing required configuration: %s", field.Tag.Get("mapstructure"))
		}
	}
	return nil
}

// validateLedger checks the keys each ledger backend depends on.
func validateLedger(cfg LedgerConfig) error {
	switch cfg.Backend {
	case LedgerBackendSheets:
		if cfg.CredentialsFile == "" {
			return fmt.Errorf("missing required configuration: JSON_KEY")
		}
		if cfg.SheetKey == "" {
			return fmt.Errorf("missing required configuration: SHEET_KEY")
		}
	case LedgerBackendXLSX:
		if cfg.XLSXPath == "" {
			return fmt.Errorf("missing required configuration: LEDGER_XLSX_PATH")
		}
	default:
		return fmt.Errorf("unsupported LEDGER_BACKEND: %q", cfg.Backend)
	}

	switch cfg.MatchMode {
	case "contains", "exact":
	default:
		return fmt.Errorf("unsupported LEDGER_MATCH_MODE: %q", cfg.MatchMode)
	}
	return nil
}

func unquote(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `"`))
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
