package config

import (
	"time"
)

type Limits struct {
	MaxConcurrentAnalyses int             `yaml:"max_concurrent_analyses" validate:"required,min=1,max=64"`
	AnalysisTimeout       time.Duration   `yaml:"analysis_timeout" validate:"required,min=1s,max=1h"`
	RateLimit             RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig throttles batch analysis. Zero chapters per second means
// no throttling.
type RateLimitConfig struct {
	ChaptersPerSecond float64 `yaml:"chapters_per_second" validate:"min=0,max=1000"`
	BurstSize         int     `yaml:"burst_size" validate:"min=0,max=100"`
}

func DefaultLimits() Limits {
	return Limits{
		MaxConcurrentAnalyses: 4,
		AnalysisTimeout:       2 * time.Minute,
		RateLimit: RateLimitConfig{
			ChaptersPerSecond: 0,
			BurstSize:         1,
		},
	}
}
