package config

import "time"

// Authority holds the identity authority credentials and endpoint.
type Authority struct {
	ProjectID string        `env:"STYTCH_PROJECT_ID"`
	Secret    string        `env:"STYTCH_SECRET"`
	BaseURL   string        `env:"AUTHORITY_BASE_URL" envDefault:"https://test.stytch.com"`
	Timeout   time.Duration `env:"AUTHORITY_TIMEOUT" envDefault:"10s"`
}

var _ AuthorityConfig = Authority{}

func (a Authority) GetProjectID() string {
	return a.ProjectID
}

func (a Authority) GetSecret() string {
	return a.Secret
}

func (a Authority) GetAuthorityBaseURL() string {
	return a.BaseURL
}

func (a Authority) GetAuthorityTimeout() time.Duration {
	if a.Timeout <= 0 {
		return 10 * time.Second
	}
	return a.Timeout
}
