// Package config loads cgv-watch settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pfrederiksen/cgv-watch/internal/extract"
	"github.com/pfrederiksen/cgv-watch/internal/schedule"
	"github.com/pfrederiksen/cgv-watch/internal/secret"
)

// Mode selects how schedules are fetched
type Mode string

const (
	ModeHTTP    Mode = "http"
	ModeBrowser Mode = "browser"
)

const (
	DefaultTheaterID   = "0193"
	DefaultTheaterName = "광주상무"
	DefaultHall        = "1관"
	DefaultWindowDays  = 14
	DefaultPageURL     = "https://cgv.co.kr/cnm/movieBook/cinema"
	DefaultSMTPHost    = "smtp.gmail.com"
	DefaultSMTPPort    = 465
	DefaultEnvFile     = ".env"
)

// ErrMissingCredential is returned when a notifier lacks a required setting
var ErrMissingCredential = errors.New("missing credential")

// Config holds every setting for one run
type Config struct {
	TheaterID   string
	TheaterName string
	HallMarker  string
	WindowDays  int

	Blacklist      []string
	MaxTitleLength int // 0 selects the mode preset
	MaxTitles      int // 0 selects the mode preset

	Mode         Mode
	Renderer     string
	ScheduleURL  string
	PageURL      string
	FetchTimeout time.Duration

	NoScheduleMarker  string
	MinDocumentLength int

	Notifiers []string
	Mail      MailConfig
	Telegram  TelegramConfig
	Twitter   TwitterConfig

	LogLevel    string
	MetricsFile string
}

// MailConfig holds SMTP delivery settings
type MailConfig struct {
	Host     string
	Port     int
	From     string
	To       string
	Password string
}

// Validate checks that every mail setting is present
func (m MailConfig) Validate() error {
	var missing []string
	if m.Host == "" {
		missing = append(missing, "SMTP_HOST")
	}
	if m.From == "" {
		missing = append(missing, "EMAIL_FROM")
	}
	if m.To == "" {
		missing = append(missing, "EMAIL_TO")
	}
	if m.Password == "" {
		missing = append(missing, "EMAIL_PASS")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredential, strings.Join(missing, ", "))
	}
	return nil
}

// TelegramConfig holds Telegram bot settings
type TelegramConfig struct {
	BotToken string
	ChatID   string
}

// TwitterConfig holds OAuth1 credentials for posting
type TwitterConfig struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

// Load reads an optional env file and then the environment.
// A missing default .env is ignored; a missing explicit file is an error.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil {
		if envFile != DefaultEnvFile || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		TheaterID:   getEnv("CGV_THEATER_ID", DefaultTheaterID),
		TheaterName: getEnv("CGV_THEATER_NAME", DefaultTheaterName),
		HallMarker:  getEnv("CGV_HALL", DefaultHall),
		WindowDays:  getEnvAsInt("CGV_WINDOW_DAYS", DefaultWindowDays),

		Blacklist:      getEnvAsList("CGV_BLACKLIST", extract.DefaultBlacklist),
		MaxTitleLength: getEnvAsInt("CGV_MAX_TITLE_LENGTH", 0),
		MaxTitles:      getEnvAsInt("CGV_MAX_TITLES", 0),

		Mode:         Mode(getEnv("CGV_MODE", string(ModeHTTP))),
		Renderer:     getEnv("CGV_RENDERER", "chromedp"),
		ScheduleURL:  getEnv("CGV_SCHEDULE_URL", ""),
		PageURL:      getEnv("CGV_PAGE_URL", DefaultPageURL),
		FetchTimeout: getEnvAsDuration("CGV_FETCH_TIMEOUT", 15*time.Second),

		NoScheduleMarker:  getEnv("CGV_NO_SCHEDULE_MARKER", schedule.DefaultNoScheduleMarker),
		MinDocumentLength: getEnvAsInt("CGV_MIN_DOCUMENT_LENGTH", schedule.DefaultMinLength),

		Notifiers: getEnvAsList("CGV_NOTIFIERS", []string{"email"}),
		Mail: MailConfig{
			Host:     getEnv("SMTP_HOST", DefaultSMTPHost),
			Port:     getEnvAsInt("SMTP_PORT", DefaultSMTPPort),
			From:     getEnv("EMAIL_FROM", ""),
			To:       getEnv("EMAIL_TO", ""),
			Password: getEnv("EMAIL_PASS", ""),
		},
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		},
		Twitter: TwitterConfig{
			APIKey:       getEnv("TWITTER_API_KEY", ""),
			APISecret:    getEnv("TWITTER_API_SECRET", ""),
			AccessToken:  getEnv("TWITTER_ACCESS_TOKEN", ""),
			AccessSecret: getEnv("TWITTER_ACCESS_SECRET", ""),
		},

		LogLevel:    getEnv("LOG_LEVEL", "info"),
		MetricsFile: getEnv("CGV_METRICS_FILE", ""),
	}

	if err := cfg.openSecrets(getEnv("CGV_WATCH_PASSPHRASE", "")); err != nil {
		return nil, err
	}

	return cfg, nil
}

// openSecrets replaces sealed credentials with their plaintext
func (c *Config) openSecrets(passphrase string) error {
	for name, value := range map[string]*string{
		"EMAIL_PASS":            &c.Mail.Password,
		"TELEGRAM_BOT_TOKEN":    &c.Telegram.BotToken,
		"TWITTER_API_SECRET":    &c.Twitter.APISecret,
		"TWITTER_ACCESS_SECRET": &c.Twitter.AccessSecret,
	} {
		plain, err := secret.Open(passphrase, *value)
		if err != nil {
			return fmt.Errorf("opening %s: %w", name, err)
		}
		*value = plain
	}
	return nil
}

// Validate checks the settings every run needs
func (c *Config) Validate() error {
	if c.Mode != ModeHTTP && c.Mode != ModeBrowser {
		return fmt.Errorf("invalid mode: %s (must be 'http' or 'browser')", c.Mode)
	}
	if strings.TrimSpace(c.HallMarker) == "" {
		return fmt.Errorf("hall marker is required")
	}
	if c.Mode == ModeHTTP && c.TheaterID == "" {
		return fmt.Errorf("theater ID is required in http mode")
	}
	if c.Mode == ModeBrowser && c.PageURL == "" {
		return fmt.Errorf("page URL is required in browser mode")
	}
	if c.WindowDays < 0 {
		return fmt.Errorf("window days must not be negative: %d", c.WindowDays)
	}
	return nil
}

// ExtractOptions returns the extraction options for the configured mode
func (c *Config) ExtractOptions() extract.Options {
	opts := extract.SchedulePreset(c.HallMarker)
	if c.Mode == ModeBrowser {
		opts = extract.RenderedPreset(c.HallMarker)
	}
	if c.Blacklist != nil {
		opts.Blacklist = c.Blacklist
	}
	if c.MaxTitleLength > 0 {
		opts.MaxTitleLength = c.MaxTitleLength
	}
	if c.MaxTitles > 0 {
		opts.MaxTitles = c.MaxTitles
	}
	return opts
}

// UsabilityCheck returns the probe's document check
func (c *Config) UsabilityCheck() schedule.UsabilityCheck {
	return schedule.UsabilityCheck{
		NoScheduleMarker: c.NoScheduleMarker,
		MinLength:        c.MinDocumentLength,
	}
}

// Label names the theater and hall, e.g. "CGV 광주상무 1관"
func (c *Config) Label() string {
	return fmt.Sprintf("CGV %s %s", c.TheaterName, c.HallMarker)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

// getEnvAsList splits a comma separated value, dropping empty items
func getEnvAsList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	items := make([]string, 0)
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
