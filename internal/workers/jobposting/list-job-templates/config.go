// internal/workers/jobposting/list-job-templates/config.go
package listjobtemplates

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
