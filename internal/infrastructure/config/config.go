package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Log        LogConfig
	HTTP       HTTPConfig
	Printer    PrinterConfig
	Document   DocumentConfig
	Storage    StorageConfig
	Store      StoreConfig
	Storefront StorefrontConfig
	Quotes     QuotesConfig
	Waivers    []FeeWaiverConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// PrinterConfig holds the thermal print device settings.
// WidthChars is the single print-width budget shared by both renderers;
// the two output channels must agree on it for visual parity.
type PrinterConfig struct {
	// Transport selects the device transport: serial, network or file
	Transport string
	// Device is the serial port (e.g. /dev/ttyUSB0), the host:port of a
	// network printer, or the spool file path, depending on Transport
	Device string
	// BaudRate applies to the serial transport only
	BaudRate int
	// WidthChars is the print head width in characters (42 on 80mm
	// paper at font A, 32 on 58mm)
	WidthChars int
	// SettleDelay is the pause between queue jobs, letting the print
	// surface release before the next receipt
	SettleDelay time.Duration
	// MaxDeferrals bounds the open-and-retry attempts when the device
	// is unavailable
	MaxDeferrals int
	// DeferralDelay is the wait between deferral attempts
	DeferralDelay time.Duration
}

// DocumentConfig holds the PDF document settings
type DocumentConfig struct {
	// PaperWidthMM is the physical paper width in millimetres
	PaperWidthMM float64
	// EmblemTimeout bounds the emblem image fetch; on expiry the
	// document is rendered without the emblem
	EmblemTimeout time.Duration
}

// StorageConfig holds artifact storage settings
type StorageConfig struct {
	// Backend selects the artifact store: filesystem or s3
	Backend string
	// BasePath is the root directory for the filesystem backend
	BasePath string
	// BaseURL is the URL prefix for downloading stored documents
	BaseURL string
	// RetentionDays is how long to keep documents (0 = forever)
	RetentionDays int
	// S3 settings (any S3-compatible endpoint)
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// StoreConfig holds the storefront branding
type StoreConfig struct {
	Name      string
	EmblemURL string
}

// StorefrontConfig holds the callbacks into the storefront backend.
// An empty BaseURL disables the callbacks and only logs the events.
type StorefrontConfig struct {
	BaseURL string
	Timeout time.Duration
}

// QuotesConfig holds the decorative quotation source settings
type QuotesConfig struct {
	// URL of the remote quotation endpoint; empty disables the remote
	// source and only the built-in rotation is used
	URL string
	// Timeout bounds the remote fetch
	Timeout time.Duration
	// RedisAddr enables the Redis cache when non-empty
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
}

// FeeWaiverConfig is one data-driven free-delivery rule
type FeeWaiverConfig struct {
	CategoryTag  string `mapstructure:"category_tag"`
	MinimumOrder string `mapstructure:"minimum_order"`
	WaivedFee    string `mapstructure:"waived_fee"`
}

// MinimumOrderAmount parses the rule's minimum order amount
func (f FeeWaiverConfig) MinimumOrderAmount() (decimal.Decimal, error) {
	return decimal.NewFromString(f.MinimumOrder)
}

// WaivedFeeAmount parses the rule's waived fee amount
func (f FeeWaiverConfig) WaivedFeeAmount() (decimal.Decimal, error) {
	return decimal.NewFromString(f.WaivedFee)
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with PRINTD_ prefix (e.g. PRINTD_PRINTER_DEVICE)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("PRINTD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:  v.GetDuration("http.read_timeout"),
			WriteTimeout: v.GetDuration("http.write_timeout"),
			IdleTimeout:  v.GetDuration("http.idle_timeout"),
		},
		Printer: PrinterConfig{
			Transport:     v.GetString("printer.transport"),
			Device:        v.GetString("printer.device"),
			BaudRate:      v.GetInt("printer.baud_rate"),
			WidthChars:    v.GetInt("printer.width_chars"),
			SettleDelay:   v.GetDuration("printer.settle_delay"),
			MaxDeferrals:  v.GetInt("printer.max_deferrals"),
			DeferralDelay: v.GetDuration("printer.deferral_delay"),
		},
		Document: DocumentConfig{
			PaperWidthMM:  v.GetFloat64("document.paper_width_mm"),
			EmblemTimeout: v.GetDuration("document.emblem_timeout"),
		},
		Storage: StorageConfig{
			Backend:       v.GetString("storage.backend"),
			BasePath:      v.GetString("storage.base_path"),
			BaseURL:       v.GetString("storage.base_url"),
			RetentionDays: v.GetInt("storage.retention_days"),
			Endpoint:      v.GetString("storage.endpoint"),
			Region:        v.GetString("storage.region"),
			Bucket:        v.GetString("storage.bucket"),
			AccessKey:     v.GetString("storage.access_key"),
			SecretKey:     v.GetString("storage.secret_key"),
			UsePathStyle:  v.GetBool("storage.use_path_style"),
		},
		Store: StoreConfig{
			Name:      v.GetString("store.name"),
			EmblemURL: v.GetString("store.emblem_url"),
		},
		Storefront: StorefrontConfig{
			BaseURL: v.GetString("storefront.base_url"),
			Timeout: v.GetDuration("storefront.timeout"),
		},
		Quotes: QuotesConfig{
			URL:           v.GetString("quotes.url"),
			Timeout:       v.GetDuration("quotes.timeout"),
			RedisAddr:     v.GetString("quotes.redis_addr"),
			RedisPassword: v.GetString("quotes.redis_password"),
			RedisDB:       v.GetInt("quotes.redis_db"),
			CacheTTL:      v.GetDuration("quotes.cache_ttl"),
		},
	}

	var waivers []FeeWaiverConfig
	if err := v.UnmarshalKey("waivers", &waivers); err != nil {
		return nil, fmt.Errorf("error parsing fee-waiver rules: %w", err)
	}
	cfg.Waivers = waivers

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "receipt-printd"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		if cfg.App.Env == "production" {
			cfg.Log.Format = "json"
		} else {
			cfg.Log.Format = "console"
		}
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.Printer.Transport == "" {
		cfg.Printer.Transport = "file"
	}
	if cfg.Printer.Device == "" {
		cfg.Printer.Device = "/dev/usb/lp0"
	}
	if cfg.Printer.BaudRate == 0 {
		cfg.Printer.BaudRate = 9600
	}
	if cfg.Printer.WidthChars == 0 {
		cfg.Printer.WidthChars = 42
	}
	if cfg.Printer.SettleDelay == 0 {
		cfg.Printer.SettleDelay = 1500 * time.Millisecond
	}
	if cfg.Printer.MaxDeferrals == 0 {
		cfg.Printer.MaxDeferrals = 5
	}
	if cfg.Printer.DeferralDelay == 0 {
		cfg.Printer.DeferralDelay = 2 * time.Second
	}
	if cfg.Document.PaperWidthMM == 0 {
		cfg.Document.PaperWidthMM = 80
	}
	if cfg.Document.EmblemTimeout == 0 {
		cfg.Document.EmblemTimeout = 3 * time.Second
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "filesystem"
	}
	if cfg.Storage.BasePath == "" {
		cfg.Storage.BasePath = "/data/receipts"
	}
	if cfg.Storage.BaseURL == "" {
		cfg.Storage.BaseURL = "/api/v1/documents"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Store.Name == "" {
		cfg.Store.Name = "Açaí da Gaby"
	}
	if cfg.Storefront.Timeout == 0 {
		cfg.Storefront.Timeout = 3 * time.Second
	}
	if cfg.Quotes.Timeout == 0 {
		cfg.Quotes.Timeout = 2 * time.Second
	}
	if cfg.Quotes.CacheTTL == 0 {
		cfg.Quotes.CacheTTL = time.Hour
	}
}

func validate(cfg *Config) error {
	switch cfg.Printer.Transport {
	case "serial", "network", "file":
	default:
		return fmt.Errorf("invalid printer transport: %s", cfg.Printer.Transport)
	}
	switch cfg.Storage.Backend {
	case "filesystem", "s3":
	default:
		return fmt.Errorf("invalid storage backend: %s", cfg.Storage.Backend)
	}
	if cfg.Storage.Backend == "s3" {
		if cfg.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for the s3 backend")
		}
		if cfg.Storage.AccessKey == "" || cfg.Storage.SecretKey == "" {
			return fmt.Errorf("storage.access_key and storage.secret_key are required for the s3 backend")
		}
	}
	if cfg.Printer.WidthChars < 16 {
		return fmt.Errorf("printer.width_chars must be at least 16, got %d", cfg.Printer.WidthChars)
	}
	for i, w := range cfg.Waivers {
		if w.CategoryTag == "" {
			return fmt.Errorf("waivers[%d]: category_tag is required", i)
		}
		if _, err := w.MinimumOrderAmount(); err != nil {
			return fmt.Errorf("waivers[%d]: invalid minimum_order: %w", i, err)
		}
		if _, err := w.WaivedFeeAmount(); err != nil {
			return fmt.Errorf("waivers[%d]: invalid waived_fee: %w", i, err)
		}
	}
	return nil
}
