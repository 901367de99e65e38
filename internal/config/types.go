package config

import "time"

type Config struct {
	Port           string
	Environment    string
	AllowedOrigins []string

	// eviction sweeper tuning
	SweepInterval time.Duration
	Retention     time.Duration
}
