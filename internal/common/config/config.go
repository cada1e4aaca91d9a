// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Chat    ChatConfig    `mapstructure:"chat"`
	Webhook WebhookConfig `mapstructure:"webhook"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	DebugAddress    string `mapstructure:"debug_address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

type StorageConfig struct {
	Backend   string          `mapstructure:"backend"` // memory | redis | postgres
	Redis     RedisConfig     `mapstructure:"redis"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Retention RetentionConfig `mapstructure:"retention"`
	Timeout   int             `mapstructure:"timeout"` // milliseconds, per store call
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// RetentionConfig bounds the conversation store's footprint.
type RetentionConfig struct {
	MaxTurns         int `mapstructure:"max_turns"`         // per conversation, oldest dropped
	MaxConversations int `mapstructure:"max_conversations"` // memory backend, LRU evicted
	IdleTTL          int `mapstructure:"idle_ttl"`          // seconds
	SweepInterval    int `mapstructure:"sweep_interval"`    // seconds, memory/postgres sweep
}

// ChatConfig holds the orchestrator and classifier settings.
type ChatConfig struct {
	MaxMessageLength         int     `mapstructure:"max_message_length"` // runes
	UserTypeSwitchConfidence float64 `mapstructure:"user_type_switch_confidence"`
	RulePackPath             string  `mapstructure:"rule_pack_path"` // optional JSON rule pack
	HistoryWindow            int     `mapstructure:"history_window"` // turns passed to the classifier
}

// WebhookConfig holds the outbound dispatcher settings.
type WebhookConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	Targets    []string `mapstructure:"targets"`
	Timeout    int      `mapstructure:"timeout"` // milliseconds, per attempt
	MaxRetries int      `mapstructure:"max_retries"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
