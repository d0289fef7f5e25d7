package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultJWTSecret = "change-me-jwt-secret"
)

type Config struct {
	AppEnv      string `mapstructure:"APP_ENV"`
	HTTPAddr    string `mapstructure:"HTTP_ADDR"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	JWTTTL    time.Duration `mapstructure:"JWT_TTL"`

	SalonTimezone string        `mapstructure:"SALON_TIMEZONE"`
	SalonOpen     string        `mapstructure:"SALON_OPEN"`
	SalonClose    string        `mapstructure:"SALON_CLOSE"`
	SlotStep      time.Duration `mapstructure:"SLOT_STEP"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `mapstructure:"TELEGRAM_CHAT_ID"`

	CORSAllowedOrigins string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	PublicRatePerMin   int           `mapstructure:"PUBLIC_RATE_PER_MIN"`
	ReminderLead       time.Duration `mapstructure:"REMINDER_LEAD"`

	location *time.Location
}

// Load reads .env (if present), config.yaml (if present) and the process
// environment, in increasing priority.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables only")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "salon.db")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("SALON_TIMEZONE", "UTC")
	v.SetDefault("SALON_OPEN", "09:00")
	v.SetDefault("SALON_CLOSE", "21:00")
	v.SetDefault("SLOT_STEP", "30m")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("TELEGRAM_BOT_TOKEN", "")
	v.SetDefault("TELEGRAM_CHAT_ID", 0)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("PUBLIC_RATE_PER_MIN", 30)
	v.SetDefault("REMINDER_LEAD", "2h")
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if c.SlotStep <= 0 {
		return fmt.Errorf("SLOT_STEP must be > 0")
	}
	if c.PublicRatePerMin <= 0 {
		return fmt.Errorf("PUBLIC_RATE_PER_MIN must be > 0")
	}
	if c.ReminderLead < 0 {
		return fmt.Errorf("REMINDER_LEAD must be >= 0")
	}

	open, err := time.Parse("15:04", c.SalonOpen)
	if err != nil {
		return fmt.Errorf("invalid SALON_OPEN value %q: %w", c.SalonOpen, err)
	}
	closing, err := time.Parse("15:04", c.SalonClose)
	if err != nil {
		return fmt.Errorf("invalid SALON_CLOSE value %q: %w", c.SalonClose, err)
	}
	if !closing.After(open) {
		return fmt.Errorf("SALON_CLOSE must be after SALON_OPEN")
	}

	loc, err := time.LoadLocation(c.SalonTimezone)
	if err != nil {
		return fmt.Errorf("invalid SALON_TIMEZONE value %q: %w", c.SalonTimezone, err)
	}
	c.location = loc

	if c.IsProdLike() && isEmptyOrDefault(c.JWTSecret, defaultJWTSecret) {
		return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
	}
	return nil
}

// Location is the salon timezone; bookings without an explicit offset are
// interpreted in it.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

func (c *Config) IsProdLike() bool {
	return isProdLike(c.AppEnv)
}

func (c *Config) AllowedOrigins() []string {
	out := make([]string, 0)
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}
