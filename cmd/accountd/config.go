package main

import (
	"time"

	"github.com/dmitrymomot/accountkit/pkg/logger"
)

type appConfig struct {
	Env         string `env:"APP_ENV" envDefault:"development"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"accountd"`

	// SessionBackend selects the session store: "redis" or "memory".
	SessionBackend string `env:"SESSION_BACKEND" envDefault:"redis"`

	SweepInterval  time.Duration `env:"SWEEP_INTERVAL" envDefault:"1h"`
	HealthInterval time.Duration `env:"HEALTH_INTERVAL" envDefault:"30s"`
}

func (c appConfig) isDevelopment() bool {
	return c.Env == "" || c.Env == logger.EnvDevelopment
}
