package app

import "time"

// Config holds all configurable parameters for the application.
type Config struct {
	RulesDir       string
	Port           int
	Version        string
	LogLevel       string
	RunHistorySize int

	Concurrency      int
	SignatureTimeout time.Duration

	RateLimit      float64
	RateBurst      int
	RateLimiterTTL time.Duration

	WatcherDebounce time.Duration

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() Config {
	return Config{
		RulesDir:       "./rules",
		Port:           8080,
		Version:        "1.0",
		LogLevel:       "info",
		RunHistorySize: 200,

		Concurrency:      8,
		SignatureTimeout: 5 * time.Second,

		RateLimit:      5,
		RateBurst:      10,
		RateLimiterTTL: 10 * time.Minute,

		WatcherDebounce: 500 * time.Millisecond,

		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}
