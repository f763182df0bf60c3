// internal/workers/jobposting/create-document-set/config.go
package createdocumentset

import "time"

type Config struct {
	// Timeout bounds one job, including every template copy.
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 2 * time.Minute,
	}
}
