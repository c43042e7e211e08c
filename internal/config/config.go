// Package config reads process settings from the environment and optional
// .env files.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds everything the CLI needs that is not a per-command flag.
type Config struct {
	ROMRoot     string
	LogLevel    logrus.Level
	DatabaseURL string
	RedisURL    string
	DisplayAddr string
	Seed        uint64
	SeedSet     bool
}

// DefaultEnvFiles are tried in order; the first one that loads wins.
var DefaultEnvFiles = []string{".env", "../.env", "../../.env"}

// LoadEnvFiles loads the first readable file and reports which one, or "" if
// none. Variables already set in the process are not overridden.
func LoadEnvFiles(files ...string) string {
	for _, f := range files {
		if err := godotenv.Load(f); err == nil {
			return f
		}
	}
	return ""
}

// FromEnv builds a Config from TURNENV_* variables.
func FromEnv() (Config, error) {
	return parse(os.LookupEnv)
}

func parse(lookup func(string) (string, bool)) (Config, error) {
	get := func(k string) string {
		v, _ := lookup(k)
		return v
	}
	cfg := Config{
		ROMRoot:     get("TURNENV_ROM_ROOT"),
		LogLevel:    logrus.InfoLevel,
		DatabaseURL: get("TURNENV_DATABASE_URL"),
		RedisURL:    get("TURNENV_REDIS_URL"),
		DisplayAddr: get("TURNENV_DISPLAY_ADDR"),
	}
	if lvl := get("TURNENV_LOG_LEVEL"); lvl != "" {
		l, err := logrus.ParseLevel(lvl)
		if err != nil {
			return Config{}, fmt.Errorf("TURNENV_LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = l
	}
	if s := get("TURNENV_SEED"); s != "" {
		seed, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("TURNENV_SEED: %w", err)
		}
		cfg.Seed, cfg.SeedSet = seed, true
	}
	return cfg, nil
}

// Logger returns a text logger at the configured level.
func (c Config) Logger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(c.LogLevel)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log
}
