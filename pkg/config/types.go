package config

import "time"

// Config is the fully resolved runtime configuration for the service.
type Config struct {
	Port                int    `yaml:"port"`
	TimezoneOffsetHours  int    `yaml:"timezone_offset_hours"`
	DataDir             string `yaml:"data_dir"`

	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Prayer     PrayerConfig     `yaml:"prayer"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Retention  RetentionConfig  `yaml:"retention"`
	Queue      QueueConfig      `yaml:"queue"`

	LLM      LLMConfig      `yaml:"llm"`
	Graph    GraphConfig    `yaml:"graph"`
	Vector   VectorConfig   `yaml:"vector"`
	Memory   MemoryConfig   `yaml:"memory"`
	Database DatabaseConfig `yaml:"database"`
	Runbook  RunbookConfig  `yaml:"runbook"`
}

// ThresholdsConfig holds the similarity/retry thresholds named in spec.md §6.
type ThresholdsConfig struct {
	SelfRAGThreshold                  float64 `yaml:"self_rag_threshold"`
	EntityResolutionPersonThreshold   float64 `yaml:"entity_resolution_person_threshold"`
	EntityResolutionDefaultThreshold  float64 `yaml:"entity_resolution_default_threshold"`
	GraphMaxHops                      int     `yaml:"graph_max_hops"`
	AutoDismissFuzzyThreshold         float64 `yaml:"auto_dismiss_fuzzy_threshold"`
	SmartTagDedupThreshold            float64 `yaml:"smart_tag_dedup_threshold"`
	InventorySimilarityThreshold      float64 `yaml:"inventory_similarity_threshold"`
}

// PrayerConfig holds the prayer-times settings (city, country, calculation
// method, offset). No code reads them: event_based reminders are stored
// with the due_date their caller supplies.
type PrayerConfig struct {
	City          string `yaml:"city"`
	Country       string `yaml:"country"`
	Method        int    `yaml:"method"`
	OffsetMinutes int    `yaml:"offset_minutes"`
}

// SchedulerConfig configures the Proactive Scheduler's job calendar (§4.9).
type SchedulerConfig struct {
	MorningSummaryHour           int           `yaml:"morning_summary_hour"`
	NoonCheckinHour               int           `yaml:"noon_checkin_hour"`
	EveningSummaryHour            int           `yaml:"evening_summary_hour"`
	ReminderCheckInterval         time.Duration `yaml:"reminder_check_interval"`
	SmartAlertsInterval           time.Duration `yaml:"smart_alerts_interval"`
	BackupHour                    int           `yaml:"backup_hour"`
	StalledProjectDays            int           `yaml:"stalled_project_days"`
	OldDebtDays                   int           `yaml:"old_debt_days"`
	BaseURL                       string        `yaml:"base_url"`
	JobTimeout                    time.Duration `yaml:"job_timeout"`
}

// RetentionConfig configures backup retention (§4.9/§4.10).
type RetentionConfig struct {
	BackupRetentionDays int `yaml:"backup_retention_days"`
}

// QueueConfig configures the background job worker pool (post-processing
// and ingestion jobs, ent/schema/job.go) that claims rows with FOR UPDATE
// SKIP LOCKED.
type QueueConfig struct {
	WorkerCount             int           `yaml:"worker_count"`
	MaxConcurrentJobs       int           `yaml:"max_concurrent_jobs"`
	PollInterval            time.Duration `yaml:"poll_interval"`
	PollIntervalJitter      time.Duration `yaml:"poll_interval_jitter"`
	JobTimeout              time.Duration `yaml:"job_timeout"`
	GracefulShutdownTimeout time.Duration `yaml:"graceful_shutdown_timeout"`
	OrphanDetectionInterval time.Duration `yaml:"orphan_detection_interval"`
	OrphanThreshold         time.Duration `yaml:"orphan_threshold"`
}

// LLMConfig configures the LLM Gateway's pooled client.
type LLMConfig struct {
	BaseURL          string        `yaml:"base_url"`
	APIKey           string        `yaml:"api_key"`
	ChatModel        string        `yaml:"chat_model"`
	EmbeddingModel   string        `yaml:"embedding_model"`
	VisionModel      string        `yaml:"vision_model"`
	AudioModel       string        `yaml:"audio_model"`
	Temperature      float64       `yaml:"temperature"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
	MaxToolIterations int          `yaml:"max_tool_iterations"`
}

// GraphConfig configures the Graph Store's Cypher-compatible connection.
type GraphConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// VectorConfig configures the Vector Store connection.
type VectorConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	APIKey         string `yaml:"api_key"`
	UseTLS         bool   `yaml:"use_tls"`
	Collection     string `yaml:"collection"`
	EmbeddingDims  int    `yaml:"embedding_dims"`
}

// MemoryConfig configures the Memory Store connection.
type MemoryConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// DatabaseConfig configures the orchestrator's own bookkeeping database.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// RunbookConfig configures GitHub-sourced document fetch used by the File
// Processor's URL-ingestion branch (§4.3).
type RunbookConfig struct {
	GitHubToken    string        `yaml:"github_token"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	AllowedDomains []string      `yaml:"allowed_domains"`
}
