// Package config holds the chrond configuration, loaded from a TOML file
// and CHROND_* environment variables.
package config

// Config represents the full chrond configuration
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Mail      MailConfig      `mapstructure:"mail"`
	Site      SiteConfig      `mapstructure:"site"`
}

// DatabaseConfig configures the SQLite database
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// SchedulerConfig configures the scheduler loop
type SchedulerConfig struct {
	TickIntervalSeconds int `mapstructure:"tick_interval_seconds"` // how often to check for due jobs (default: 1)
	DueBatchLimit       int `mapstructure:"due_batch_limit"`       // max jobs run per tick (default: 100)
}

// MailConfig configures notification delivery. With Enabled false,
// notifications are written to the log instead of sent.
type MailConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	From          string `mapstructure:"from"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

// SiteConfig configures how notifications link back to this instance
type SiteConfig struct {
	BaseURL string `mapstructure:"base_url"` // base URL for run log links in mail
}
