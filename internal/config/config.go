// Package config loads bjj-schedule settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/ulule/limiter/v3"

	"github.com/academiagorila/bjj-schedule/internal/logger"
	"github.com/academiagorila/bjj-schedule/internal/notifier"
)

// DefaultEnvFile is read when Load is called without file names.
const DefaultEnvFile = ".env"

// Config holds every runtime setting.
type Config struct {
	BaseURL     string
	Timezone    string
	HTTPAddr    string
	HTTPTimeout time.Duration
	LogLevel    logger.Level

	RateLimit  string // ulule/limiter format, e.g. "60-M"
	CacheSweep string // cron spec, e.g. "@every 5m"

	ParticipantsTTL time.Duration
	ScheduleTTL     time.Duration
	TournamentsTTL  time.Duration
	CacheSize       int

	Twitter        notifier.TwitterCredentials
	TelegramToken  string
	TelegramChatID int64
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		BaseURL:         "https://martialmatch.com",
		Timezone:        "Europe/Warsaw",
		HTTPAddr:        ":8000",
		HTTPTimeout:     30 * time.Second,
		LogLevel:        logger.LevelInfo,
		RateLimit:       "60-M",
		CacheSweep:      "@every 5m",
		ParticipantsTTL: 30 * time.Minute,
		ScheduleTTL:     10 * time.Minute,
		TournamentsTTL:  60 * time.Minute,
		CacheSize:       50,
	}
}

// Load reads the given .env files (DefaultEnvFile when none are given) and
// the process environment. Real environment variables win over file values.
// Missing files are ignored.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{DefaultEnvFile}
	}

	fileValues := make(map[string]string)
	for _, f := range files {
		values, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Config{}, fmt.Errorf("reading %s: %w", f, err)
		}
		for k, v := range values {
			if _, set := fileValues[k]; !set {
				fileValues[k] = v
			}
		}
	}

	return FromLookup(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileValues[key]
		return v, ok
	})
}

// FromLookup builds a Config from a variable lookup, starting from Default.
// Invalid values fail with an error naming the variable.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	c := Default()
	p := parser{lookup: lookup}

	p.str("MM_BASE_URL", &c.BaseURL)
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	p.str("MM_TIMEZONE", &c.Timezone)
	p.str("HTTP_ADDR", &c.HTTPAddr)
	p.duration("HTTP_TIMEOUT", &c.HTTPTimeout)
	p.level("LOG_LEVEL", &c.LogLevel)
	p.str("RATE_LIMIT", &c.RateLimit)
	p.str("CACHE_SWEEP", &c.CacheSweep)
	p.duration("PARTICIPANTS_CACHE_TTL", &c.ParticipantsTTL)
	p.duration("SCHEDULE_CACHE_TTL", &c.ScheduleTTL)
	p.duration("TOURNAMENTS_CACHE_TTL", &c.TournamentsTTL)
	p.positiveInt("CACHE_SIZE", &c.CacheSize)

	p.str("TWITTER_API_KEY", &c.Twitter.APIKey)
	p.str("TWITTER_API_SECRET", &c.Twitter.APISecret)
	p.str("TWITTER_ACCESS_TOKEN", &c.Twitter.AccessToken)
	p.str("TWITTER_ACCESS_SECRET", &c.Twitter.AccessSecret)
	p.str("TELEGRAM_BOT_TOKEN", &c.TelegramToken)
	p.integer("TELEGRAM_CHAT_ID", &c.TelegramChatID)

	if p.err != nil {
		return Config{}, p.err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the values that are only interpreted later, so a bad
// setting fails at startup instead of on first use.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("MM_BASE_URL is empty")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("MM_TIMEZONE: %w", err)
	}
	if _, err := limiter.NewRateFromFormatted(c.RateLimit); err != nil {
		return fmt.Errorf("RATE_LIMIT: %w", err)
	}
	if _, err := cron.ParseStandard(c.CacheSweep); err != nil {
		return fmt.Errorf("CACHE_SWEEP: %w", err)
	}
	return nil
}

// Location returns the display timezone. Validate has already checked it.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// parser records the first error and skips the remaining variables.
type parser struct {
	lookup func(string) (string, bool)
	err    error
}

func (p *parser) value(key string) (string, bool) {
	if p.err != nil {
		return "", false
	}
	v, ok := p.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (p *parser) str(key string, dst *string) {
	if v, ok := p.value(key); ok {
		*dst = v
	}
}

func (p *parser) duration(key string, dst *time.Duration) {
	v, ok := p.value(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		p.err = fmt.Errorf("%s: invalid duration %q", key, v)
		return
	}
	*dst = d
}

func (p *parser) positiveInt(key string, dst *int) {
	v, ok := p.value(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		p.err = fmt.Errorf("%s: want a positive integer, got %q", key, v)
		return
	}
	*dst = n
}

func (p *parser) integer(key string, dst *int64) {
	v, ok := p.value(key)
	if !ok {
		return
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		p.err = fmt.Errorf("%s: invalid integer %q", key, v)
		return
	}
	*dst = n
}

func (p *parser) level(key string, dst *logger.Level) {
	v, ok := p.value(key)
	if !ok {
		return
	}
	l, err := logger.ParseLevel(v)
	if err != nil {
		p.err = fmt.Errorf("%s: %w", key, err)
		return
	}
	*dst = l
}
