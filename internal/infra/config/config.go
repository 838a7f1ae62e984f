package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"
	_ "time/tzdata" // TIMEZONE must resolve in minimal containers

	"reminder_notifier/internal/calendar"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	maxPageSize = 100
)

// AppConfig holds all configuration for the application.
// It is built once at process start and passed explicitly to every component.
type AppConfig struct {
	DatabaseURL          string
	DatabaseDriver       string
	RemindersDatabaseID  string
	APIVersion           string
	TelegramToken        string
	TelegramChatID       int64
	Timezone             *time.Location
	WeekendDays          []calendar.WeekdayCode
	PageSize             int
	RequestTimeout       time.Duration
	RepeatAware          bool // Reschedule repeating records instead of always disabling
	WeekdayFilterEnabled bool // Honor per-record notify days
	RunSchedule          string
	PushgatewayURL       string
	LogLevel             string
	Environment          string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds the configuration from an arbitrary variable source.
func FromLookup(lookup func(string) (string, bool)) (*AppConfig, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg := &AppConfig{}
	var err error

	cfg.DatabaseURL = get("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.RemindersDatabaseID = get("REMINDERS_DATABASE_ID")
	if cfg.RemindersDatabaseID == "" {
		return nil, fmt.Errorf("REMINDERS_DATABASE_ID is not set")
	}

	cfg.TelegramToken = get("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	chatIDStr := get("TELEGRAM_CHAT_ID")
	if chatIDStr == "" {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID is not set")
	}
	cfg.TelegramChatID, err = strconv.ParseInt(chatIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
	}

	cfg.DatabaseDriver = strings.ToLower(get("DATABASE_DRIVER"))
	switch cfg.DatabaseDriver {
	case "":
		cfg.DatabaseDriver = DriverPostgres
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("invalid DATABASE_DRIVER %q: want %q or %q", cfg.DatabaseDriver, DriverPostgres, DriverSQLite)
	}

	cfg.APIVersion = get("API_VERSION")
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2022-06-28"
	}

	tzName := get("TIMEZONE")
	if tzName == "" {
		tzName = "UTC"
	}
	cfg.Timezone, err = time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	weekendStr := get("WEEKEND_DAYS")
	if weekendStr == "" {
		weekendStr = "Sat,Sun"
	}
	cfg.WeekendDays, err = calendar.ParseWeekdayCodes(strings.Split(weekendStr, ","))
	if err != nil {
		return nil, fmt.Errorf("invalid WEEKEND_DAYS: %w", err)
	}
	if len(cfg.WeekendDays) >= len(calendar.AllWeekdays) {
		return nil, fmt.Errorf("invalid WEEKEND_DAYS: at least one business day is required")
	}

	cfg.PageSize = maxPageSize
	if v := get("PAGE_SIZE"); v != "" {
		cfg.PageSize, err = strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PAGE_SIZE: %w", err)
		}
		if cfg.PageSize < 1 || cfg.PageSize > maxPageSize {
			return nil, fmt.Errorf("invalid PAGE_SIZE %d: must be between 1 and %d", cfg.PageSize, maxPageSize)
		}
	}

	cfg.RequestTimeout = 30 * time.Second
	if v := get("REQUEST_TIMEOUT"); v != "" {
		cfg.RequestTimeout, err = time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
		}
		if cfg.RequestTimeout <= 0 {
			return nil, fmt.Errorf("invalid REQUEST_TIMEOUT %s: must be positive", cfg.RequestTimeout)
		}
	}

	if cfg.RepeatAware, err = parseBool(get("REPEAT_AWARE"), true); err != nil {
		return nil, fmt.Errorf("invalid REPEAT_AWARE: %w", err)
	}
	if cfg.WeekdayFilterEnabled, err = parseBool(get("WEEKDAY_FILTER_ENABLED"), false); err != nil {
		return nil, fmt.Errorf("invalid WEEKDAY_FILTER_ENABLED: %w", err)
	}

	cfg.RunSchedule = get("RUN_SCHEDULE")       // Empty: single pass, then exit
	cfg.PushgatewayURL = get("PUSHGATEWAY_URL") // Empty: metrics are not pushed

	cfg.LogLevel = strings.ToLower(get("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(get("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	return cfg, nil
}

// Calendar builds the business-day calendar described by the configuration.
func (c *AppConfig) Calendar() *calendar.Calendar {
	return calendar.New(c.Timezone, c.WeekendDays...)
}

func parseBool(v string, def bool) (bool, error) {
	if v == "" {
		return def, nil
	}
	return strconv.ParseBool(v)
}
