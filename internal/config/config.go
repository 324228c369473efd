package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

type Config interface {
	EnvConfig
	CorsConfig
	AuthorityConfig
	SessionConfig
	TelemetryConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type AuthorityConfig interface {
	GetProjectID() string
	GetSecret() string
	GetAuthorityBaseURL() string
	GetAuthorityTimeout() time.Duration
}

type TelemetryConfig interface {
	GetOtelEndpoint() string
	GetOtelEnabled() bool
}

type mainConfig struct {
	EnvVars
	Cors
	Authority
	Sessions
	Telemetry
}

// New reads the process environment. The authority project id and secret are
// required; startup fails without them.
func New() (Config, error) {
	var c mainConfig
	if err := env.Parse(&c); err != nil {
		return nil, errors.Wrap(err, "[config.New] parse env")
	}
	if c.ProjectID == "" || c.Secret == "" {
		return nil, errors.New("[config.New] project id or secret not provided")
	}
	return c, nil
}
