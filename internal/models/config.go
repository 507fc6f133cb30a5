package models

// Config holds the application configuration
type Config struct {
	Telegram  TelegramConfig  `json:"telegram"`
	Facebook  FacebookConfig  `json:"facebook"`
	Queue     QueueConfig     `json:"queue"`
	Schedule  ScheduleConfig  `json:"schedule"`
	Media     MediaConfig     `json:"media"`
	Retry     RetryConfig     `json:"retry"`
	Server    ServerConfig    `json:"server"`
	Tracing   TracingConfig   `json:"tracing"`
	LogLevel  string          `json:"log_level"`
	ErrorLog  string          `json:"error_log,omitempty"`
	DryRun    bool            `json:"dry_run"`
}

// TelegramConfig holds source platform related configuration
type TelegramConfig struct {
	BotToken      string `json:"bot_token"`
	APIBaseURL    string `json:"api_base_url,omitempty"`
	WebhookSecret string `json:"webhook_secret,omitempty"`
}

// FacebookConfig holds target platform related configuration
type FacebookConfig struct {
	PageID       string `json:"page_id"`
	AccessToken  string `json:"access_token"`
	APIBaseURL   string `json:"api_base_url,omitempty"`
	GraphVersion string `json:"graph_version,omitempty"`
}

// QueueConfig holds durable queue store configuration
type QueueConfig struct {
	Path       string `json:"path"`
	PostNowTag string `json:"post_now_tag,omitempty"`
}

// ScheduleConfig drives slot assignment and the periodic jobs.
type ScheduleConfig struct {
	PostsPerDay        int      `json:"posts_per_day"`
	PostTimes          []string `json:"post_times"`
	Timezone           string   `json:"timezone"`
	ProcessIntervalMin int      `json:"process_interval_min,omitempty"`
	AssignIntervalMin  int      `json:"assign_interval_min,omitempty"`
}

// MediaConfig holds media scratch area configuration
type MediaConfig struct {
	ScratchDir       string `json:"scratch_dir"`
	VideoChunkSizeMB int    `json:"video_chunk_size_mb,omitempty"`
}

// RetryConfig holds per-item retry policy configuration
type RetryConfig struct {
	InitialBackoffMin int `json:"initial_backoff_min,omitempty"`
	MaxBackoffHours   int `json:"max_backoff_hours,omitempty"`
	MaxAttempts       int `json:"max_attempts,omitempty"`
}

// ServerConfig holds HTTP surface configuration
type ServerConfig struct {
	Port int `json:"port,omitempty"`
}

// TracingConfig contains OpenTelemetry configuration
type TracingConfig struct {
	ServiceName    string  `json:"service_name,omitempty"`
	ServiceVersion string  `json:"service_version,omitempty"`
	Environment    string  `json:"environment,omitempty"`
	OTLPEndpoint   string  `json:"otlp_endpoint,omitempty"`
	SampleRate     float64 `json:"sample_rate,omitempty"`
	Enabled        bool    `json:"enabled"`
	UseStdout      bool    `json:"use_stdout,omitempty"`
}

type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return e.Message
}
