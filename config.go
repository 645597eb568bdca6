package main

import (
	"errors"
	"flag"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// Config holds the server settings. Flags override environment variables,
// which override the defaults.
type Config struct {
	TCPAddr       string
	HTTPAddr      string
	TickRate      int
	Obstacles     int
	Seed          int64
	AnalyticsDB   string
	LogLevel      string
	LogFormat     string
	MaxConns      int
	MaxConnsPerIP int
}

// envSource reads typed values from a lookup function and remembers the
// first value that failed to parse.
type envSource struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *envSource) get(key, def string) string {
	if v, ok := e.lookup(key); ok {
		return v
	}
	return def
}

func (e *envSource) getInt(key string, def int) int {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		if e.err == nil {
			e.err = fmt.Errorf("%s: %w", key, err)
		}
		return def
	}
	return n
}

func (e *envSource) getInt64(key string, def int64) int64 {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		if e.err == nil {
			e.err = fmt.Errorf("%s: %w", key, err)
		}
		return def
	}
	return n
}

// LoadConfig parses args on top of the environment seen through lookup and
// validates the result.
func LoadConfig(args []string, lookup func(string) (string, bool)) (Config, error) {
	env := &envSource{lookup: lookup}
	var cfg Config

	fs := flag.NewFlagSet("arena-server", flag.ContinueOnError)
	fs.StringVar(&cfg.TCPAddr, "tcp", env.get("ARENA_TCP_ADDR", ":5000"), "TCP game listen address")
	fs.StringVar(&cfg.HTTPAddr, "http", env.get("ARENA_HTTP_ADDR", ":8080"), "HTTP listen address for /ws and /healthz (empty disables)")
	fs.IntVar(&cfg.TickRate, "tick-rate", env.getInt("ARENA_TICK_RATE", 60), "simulation ticks per second")
	fs.IntVar(&cfg.Obstacles, "obstacles", env.getInt("ARENA_OBSTACLES", 30), "number of obstacles to place")
	fs.Int64Var(&cfg.Seed, "seed", env.getInt64("ARENA_SEED", 0), "random seed (0 = time based)")
	fs.StringVar(&cfg.AnalyticsDB, "analytics-db", env.get("ARENA_ANALYTICS_DB", ""), "sqlite path for the event log (empty disables)")
	fs.StringVar(&cfg.LogLevel, "log-level", env.get("ARENA_LOG_LEVEL", "info"), "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", env.get("ARENA_LOG_FORMAT", "text"), "log format: text or json")
	fs.IntVar(&cfg.MaxConns, "max-conns", env.getInt("ARENA_MAX_CONNS", 1000), "maximum concurrent connections")
	fs.IntVar(&cfg.MaxConnsPerIP, "max-conns-per-ip", env.getInt("ARENA_MAX_CONNS_PER_IP", 16), "maximum concurrent connections per remote IP")

	if env.err != nil {
		return Config{}, fmt.Errorf("environment: %w", env.err)
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.TCPAddr == "" {
		errs = append(errs, errors.New("tcp address is required"))
	}
	if c.TickRate < 1 || c.TickRate > 1000 {
		errs = append(errs, fmt.Errorf("tick rate %d out of range [1, 1000]", c.TickRate))
	}
	if c.Obstacles < 0 {
		errs = append(errs, fmt.Errorf("obstacle count %d is negative", c.Obstacles))
	}
	if c.MaxConns < 1 {
		errs = append(errs, fmt.Errorf("max conns %d must be positive", c.MaxConns))
	}
	if c.MaxConnsPerIP < 1 {
		errs = append(errs, fmt.Errorf("max conns per ip %d must be positive", c.MaxConnsPerIP))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log format %q is not text or json", c.LogFormat))
	}
	return errors.Join(errs...)
}

func setupLogging(c Config) {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
