package config

import "time"

type SessionConfig interface {
	GetSessionInactivityTimeout() time.Duration
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisKeyPrefix() string
}

// Sessions configures browser session storage. Redis is used when an address is set.
type Sessions struct {
	InactivityTimeout time.Duration `env:"SESSION_INACTIVITY_TIMEOUT" envDefault:"1m"`
	RedisAddr         string        `env:"REDIS_ADDR"`
	RedisPassword     string        `env:"REDIS_PASSWORD"`
	RedisDB           int           `env:"REDIS_DB" envDefault:"0"`
	RedisKeyPrefix    string        `env:"REDIS_KEY_PREFIX" envDefault:"frontdoor"`
}

var _ SessionConfig = Sessions{}

func (s Sessions) GetSessionInactivityTimeout() time.Duration {
	if s.InactivityTimeout <= 0 {
		return time.Minute
	}
	return s.InactivityTimeout
}

func (s Sessions) GetRedisAddr() string {
	return s.RedisAddr
}

func (s Sessions) GetRedisPassword() string {
	return s.RedisPassword
}

func (s Sessions) GetRedisDB() int {
	return s.RedisDB
}

func (s Sessions) GetRedisKeyPrefix() string {
	return s.RedisKeyPrefix
}
