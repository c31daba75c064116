package domain

import "time"

// Config stores client settings.
type Config struct {
	APIBase            string        `json:"api_base" yaml:"api_base" mapstructure:"api_base" validate:"required,url"`
	DefaultLocation    Location      `json:"default_location" yaml:"default_location" mapstructure:"default_location"`
	RequestTimeout     time.Duration `json:"request_timeout" yaml:"request_timeout" mapstructure:"request_timeout" validate:"gte=0"`
	RequestMinInterval time.Duration `json:"request_min_interval" yaml:"request_min_interval" mapstructure:"request_min_interval" validate:"gte=0"`
	BreakerFailures    uint32        `json:"breaker_failures" yaml:"breaker_failures" mapstructure:"breaker_failures"`
	Log                LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
	Server             ServerConfig  `json:"server" yaml:"server" mapstructure:"server"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`    // debug, info, warn, error
	Format string `json:"format" yaml:"format" mapstructure:"format"` // json, text
}

// ServerConfig holds settings of the HTTP facade.
type ServerConfig struct {
	Addr    string `json:"addr" yaml:"addr" mapstructure:"addr"`
	GinMode string `json:"gin_mode" yaml:"gin_mode" mapstructure:"gin_mode"` // debug, release, test
}
