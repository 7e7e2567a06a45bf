package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port        int              `json:"port"`
	LogConfig   logger.LogConfig `json:"log_config"`
	Database    DatabaseConfig   `json:"database"`
	FileStore   FileStoreConfig  `json:"file_store"`
	AI          AIConfig         `json:"ai"`
	Pipeline    PipelineConfig   `json:"pipeline"`
	Watch       WatchConfig      `json:"watch"`
	CORSOrigins []string         `json:"cors_origins"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type AIConfig struct {
	// Provider selects the explanation collaborator: "gemini", "rules" or
	// "" to leave explanations empty.
	Provider       string      `json:"provider"`
	Model          string      `json:"model"`
	TimeoutSeconds int         `json:"timeout_seconds"`
	Data           interface{} `json:"data"`
}

// PipelineConfig exposes the similarity band boundaries and signal weights
// as tunables: the cutoffs should be calibrated against a labeled corpus,
// not baked in.
type PipelineConfig struct {
	MatchThreshold    float64 `json:"match_threshold"`
	ModifiedThreshold float64 `json:"modified_threshold"`
	KeywordWeight     float64 `json:"keyword_weight"`
	SimHashWeight     float64 `json:"simhash_weight"`
	MinClauseWords    int     `json:"min_clause_words"`
	MaxDocumentBytes  int64   `json:"max_document_bytes"`
	WorkerLimit       int     `json:"worker_limit"`
	AlertThreshold    string  `json:"alert_threshold"`
	CacheSize         int     `json:"cache_size"`
	CacheTTLMinutes   int     `json:"cache_ttl_minutes"`
	// UploadRateSeconds throttles ingestion endpoints per client; 0 disables.
	UploadRateSeconds int `json:"upload_rate_seconds"`
}

type WatchConfig struct {
	Enabled  bool   `json:"enabled"`
	Schedule string `json:"schedule"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
		cfg.FileStore.Data = map[string]interface{}{"dir": "./data/snapshots"}
	}
	applyPipelineDefaults(&cfg.Pipeline)
	if cfg.Watch.Schedule == "" {
		cfg.Watch.Schedule = "0 * * * *"
	}
	if cfg.AI.Provider == "gemini" && cfg.AI.Model == "" {
		cfg.AI.Model = "gemini-2.0-flash"
	}
	if cfg.AI.TimeoutSeconds <= 0 {
		cfg.AI.TimeoutSeconds = 20
	}
	return &cfg, nil
}

func applyPipelineDefaults(p *PipelineConfig) {
	if p.MatchThreshold <= 0 {
		p.MatchThreshold = 0.25
	}
	if p.ModifiedThreshold <= 0 {
		p.ModifiedThreshold = 0.62
	}
	if p.KeywordWeight <= 0 && p.SimHashWeight <= 0 {
		p.KeywordWeight = 0.7
		p.SimHashWeight = 0.3
	}
	if p.MinClauseWords <= 0 {
		p.MinClauseWords = 20
	}
	if p.MaxDocumentBytes <= 0 {
		p.MaxDocumentBytes = 10 << 20
	}
	if p.WorkerLimit <= 0 {
		p.WorkerLimit = 4
	}
	if p.AlertThreshold == "" {
		p.AlertThreshold = "high"
	}
	if p.CacheSize <= 0 {
		p.CacheSize = 10000
	}
	if p.CacheTTLMinutes <= 0 {
		p.CacheTTLMinutes = 120
	}
}
