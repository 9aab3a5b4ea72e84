// Package cfg provides parsing system variables and command line flags for fetch service parameters.
// Command line flags replaces system variables if set
package cfg

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/antonevtu/shortlink/internal/shortener"
)

type Config struct {
	ServerAddress   string        `env:"SERVER_ADDRESS" envDefault:":8080"`
	BaseURL         string        `env:"BASE_URL" envDefault:"http://localhost:8080"`
	FileStoragePath string        `env:"FILE_STORAGE_PATH" envDefault:"./storage.txt"`
	DatabaseDSN     string        `env:"DATABASE_DSN"`
	SQLiteDSN       string        `env:"SQLITE_DSN"`
	RedisAddr       string        `env:"REDIS_ADDR"`
	CacheTTL        time.Duration `env:"CACHE_TTL" envDefault:"1h"`
	CtxTimeout      int64         `env:"CTX_TIMEOUT" envDefault:"5"`
	ShortIDLength   int           `env:"SHORT_ID_LENGTH" envDefault:"6"`
	MaxAttempts     int           `env:"MAX_ATTEMPTS" envDefault:"10"`
	Dedup           bool          `env:"DEDUP" envDefault:"true"`
	AllowedOrigins  []string      `env:"ORIGIN_URL" envSeparator:"," envDefault:"http://localhost:5173"`
	AsyncClicks     bool          `env:"ASYNC_CLICKS" envDefault:"false"`
	ClickWorkers    int           `env:"CLICK_WORKERS" envDefault:"4"`
	Profiling       bool          `env:"PROFILING" envDefault:"false"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
}

// New reads .env (if present), the environment and os.Args.
func New() (Config, error) {
	return Parse(os.Args[1:])
}

func Parse(args []string) (Config, error) {
	var cfg Config

	// .env не обязателен
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	// Заполнение cfg значениями из переменных окружения, в том числе дефолтными значениями
	err := env.Parse(&cfg)
	if err != nil {
		return cfg, err
	}

	// Если заданы аргументы командной строки - перетираем значения переменных окружения
	fs := flag.NewFlagSet("shortener", flag.ContinueOnError)
	fs.Func("a", "server address for shorten", func(flagValue string) error {
		cfg.ServerAddress = flagValue
		return nil
	})
	fs.Func("b", "base url for expand", func(flagValue string) error {
		cfg.BaseURL = flagValue
		return nil
	})
	fs.Func("f", "path to storage file", func(flagValue string) error {
		cfg.FileStoragePath = flagValue
		return nil
	})
	fs.Func("d", "postgres url", func(flagValue string) error {
		cfg.DatabaseDSN = flagValue
		return nil
	})
	fs.Func("s", "sqlite file or libsql url", func(flagValue string) error {
		cfg.SQLiteDSN = flagValue
		return nil
	})
	fs.Func("r", "redis address for target cache", func(flagValue string) error {
		cfg.RedisAddr = flagValue
		return nil
	})
	fs.Func("t", "context timeout", func(flagValue string) error {
		t, err := strconv.Atoi(flagValue)
		if err != nil {
			return fmt.Errorf("can't parse context timeout -t: %w", err)
		}
		cfg.CtxTimeout = int64(t)
		return nil
	})
	fs.Func("l", "short id length", func(flagValue string) error {
		l, err := strconv.Atoi(flagValue)
		if err != nil {
			return fmt.Errorf("can't parse short id length -l: %w", err)
		}
		cfg.ShortIDLength = l
		return nil
	})

	if err = fs.Parse(args); err != nil {
		return cfg, err
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.ShortIDLength < shortener.MinIDLength || c.ShortIDLength > shortener.MaxIDLength {
		return fmt.Errorf("short id length must be in [%d, %d], got %d",
			shortener.MinIDLength, shortener.MaxIDLength, c.ShortIDLength)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be positive, got %d", c.MaxAttempts)
	}
	if c.CtxTimeout < 1 {
		return fmt.Errorf("context timeout must be positive, got %d", c.CtxTimeout)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel ("debug", "info", "warn", "error").
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, fmt.Errorf("can't parse log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.CtxTimeout) * time.Second
}
