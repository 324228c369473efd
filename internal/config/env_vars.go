package config

import "fmt"

type EnvVars struct {
	Port    string `env:"PORT" envDefault:"3000"`
	AppName string `env:"APP_NAME" envDefault:"Go Auth Front Door"`
	Env     string `env:"ENV" envDefault:"DEV"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.Port
	if port == "" {
		port = "3000"
	}
	if port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return e.Env
}
