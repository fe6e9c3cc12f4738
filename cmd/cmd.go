package cmd

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	LogLevel         string  `json:"log_level"`
	LogFormat        string  `json:"log_format"`
	DatabaseName     string  `json:"database_name"`
	DatabaseUser     string  `json:"database_user"`
	DatabaseHost     string  `json:"database_host"`
	DatabasePassword string  `json:"database_password"`
	Addr             string  `json:"addr"`
	SweepMinutes     int     `json:"sweep_minutes"`
	TrackerMinutes   int     `json:"tracker_minutes"`
	SweepWorkers     int     `json:"sweep_workers"`
	SweepPageSize    int     `json:"sweep_page_size"`
	SweepPagesPerSec float64 `json:"sweep_pages_per_sec"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "json",
		DatabaseName:     "agora",
		DatabaseUser:     "postgres",
		DatabasePassword: "postgres",
		DatabaseHost:     "127.0.0.1",
		Addr:             "localhost:8090",
		SweepMinutes:     15,
		TrackerMinutes:   60,
		SweepWorkers:     8,
		SweepPageSize:    500,
		SweepPagesPerSec: 10,
	}
}

func (c *Config) Load() error {
	f, err := os.Open("config.json")
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	if !os.IsNotExist(err) {
		err = json.NewDecoder(f).Decode(c)
		if err != nil {
			return err
		}
	}

	v := os.Getenv("LOG_LEVEL")
	if v != "" {
		c.LogLevel = v
	}

	v = os.Getenv("LOG_FORMAT")
	if v != "" {
		c.LogFormat = v
	}

	v = os.Getenv("DATABASE_NAME")
	if v != "" {
		c.DatabaseName = v
	}

	v = os.Getenv("DATABASE_USER")
	if v != "" {
		c.DatabaseUser = v
	}

	v = os.Getenv("DATABASE_HOST")
	if v != "" {
		c.DatabaseHost = v
	}

	v = os.Getenv("DATABASE_PASSWORD")
	if v != "" {
		c.DatabasePassword = v
	}

	v = os.Getenv("ADDR")
	if v != "" {
		c.Addr = v
	}

	v = os.Getenv("SWEEP_MINUTES")
	if v != "" {
		vi, err := strconv.Atoi(v)
		if err != nil {
			return err
		}

		c.SweepMinutes = vi
	}

	v = os.Getenv("TRACKER_MINUTES")
	if v != "" {
		vi, err := strconv.Atoi(v)
		if err != nil {
			return err
		}

		c.TrackerMinutes = vi
	}

	v = os.Getenv("SWEEP_WORKERS")
	if v != "" {
		vi, err := strconv.Atoi(v)
		if err != nil {
			return err
		}

		c.SweepWorkers = vi
	}

	return nil
}

func SetupLogger(cfg *Config) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("input", cfg.LogLevel).Msg("Cannot parse log level")
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFormat == "" || cfg.LogFormat == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}
}
