package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env"
	"github.com/spf13/pflag"
)

type Arguments struct {
	ListenAddr    string        `env:"SERVER_ADDRESS" envDefault:"localhost:3000"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	DatabaseDSN   string        `env:"DATABASE_DSN" envDefault:""`
	RateLimit     float64       `env:"RATE_LIMIT" envDefault:"0"`
	BatchSize     int           `env:"JOURNAL_BATCH_SIZE" envDefault:"100"`
	FlushInterval time.Duration `env:"JOURNAL_FLUSH_INTERVAL" envDefault:"1s"`
}

// ServerConfig модель настроек сервера
type ServerConfig struct {
	ListenAddr string
	LogLevel   string
	// RateLimit - запросов в секунду, 0 отключает ограничение
	RateLimit float64
}

// JournalConfig модель настроек аудиторского журнала операций.
// Пустой DSN отключает журнал.
type JournalConfig struct {
	DatabaseDSN   string
	BatchSize     int
	QueueSize     int
	FlushInterval time.Duration
}

// Config модель настроек сервиса
type Config struct {
	Server  ServerConfig
	Journal JournalConfig
}

func NewConfig() Config {

	var args Arguments
	if err := env.Parse(&args); err != nil {
		panic(fmt.Sprintf("Failed to parse enviroment var: %s", err.Error()))
	}

	var (
		server        = pflag.StringP("server", "a", args.ListenAddr, "Server listen address in a form host:port.")
		logLevel      = pflag.StringP("log_level", "l", args.LogLevel, "Log level.")
		DSN           = pflag.StringP("dsn", "d", args.DatabaseDSN, "Journal database DSN")
		rateLimit     = pflag.Float64P("rate_limit", "r", args.RateLimit, "API requests per second, 0 - unlimited")
		batchSize     = pflag.IntP("batch_size", "b", args.BatchSize, "Journal write batch size")
		flushInterval = pflag.DurationP("flush_interval", "f", args.FlushInterval, "Journal flush interval")
	)
	pflag.Parse()

	return Config{
		Server: ServerConfig{
			ListenAddr: *server,
			LogLevel:   *logLevel,
			RateLimit:  *rateLimit,
		},
		Journal: JournalConfig{
			DatabaseDSN:   *DSN,
			BatchSize:     *batchSize,
			QueueSize:     *batchSize * 10,
			FlushInterval: *flushInterval,
		},
	}
}

func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			ListenAddr: "localhost:3000",
			LogLevel:   "info",
			RateLimit:  0,
		},
		Journal: JournalConfig{
			DatabaseDSN:   "",
			BatchSize:     100,
			QueueSize:     1000,
			FlushInterval: time.Second,
		},
	}
}
