// internal/workers/jobposting/send-job-posting-notification/config.go
package sendjobpostingnotification

import "time"

type Config struct {
	EmailEnabled bool
	EventEnabled bool
	Timeout      time.Duration
}

func LoadConfig() *Config {
	return &Config{
		EmailEnabled: true,
		EventEnabled: true,
		Timeout:      30 * time.Second,
	}
}
