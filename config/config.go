package config

import (
	"encoding/json"
	"os"
	"strconv"

	"lectureOutline/core"
)

// Config 进程级配置，启动后只读
type Config struct {
	APIKey         string `json:"api_key"`
	BaseURL        string `json:"base_url"`
	EmbeddingModel string `json:"embedding_model"`
	ChatModel      string `json:"chat_model"`

	// 话题分割参数
	WindowSize          float64 `json:"window_size_seconds"`
	WindowOverlap       float64 `json:"window_overlap_seconds"`
	SimilarityThreshold float64 `json:"similarity_threshold"`

	// 摘要生成参数
	ForceLocalSummarizer bool `json:"force_local_summarizer"`
	SummaryBatchSize     int  `json:"summary_batch_size"`
	MaxConcurrency       int  `json:"max_concurrency"`
	RequestTimeoutSec    int  `json:"request_timeout_seconds"`
	MaxRetries           int  `json:"max_retries"`

	// 路径与转录
	DataRoot      string `json:"data_root"`
	InputDir      string `json:"input_dir"`
	WhisperScript string `json:"whisper_script"`
	Language      string `json:"language"`
}

var globalConfig *Config

// DefaultConfig 返回带默认值的配置
func DefaultConfig() *Config {
	return &Config{
		EmbeddingModel:      "text-embedding-3-small",
		ChatModel:           "gpt-4o-mini",
		WindowSize:          60,
		WindowOverlap:       30,
		SimilarityThreshold: 0.72,
		SummaryBatchSize:    3,
		MaxConcurrency:      2,
		RequestTimeoutSec:   60,
		MaxRetries:          2,
		DataRoot:            "data",
		InputDir:            "input",
		WhisperScript:       "scripts/whisper_transcribe.py",
		Language:            "en",
	}
}

// LoadConfig 加载配置：先读 config.json（如存在），再用环境变量覆盖。
// 结果在进程内缓存。
func LoadConfig() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	cfg := DefaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.json"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, &core.DataIntegrityError{Path: path, Err: err}
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	globalConfig = cfg
	return globalConfig, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.EmbeddingModel = v
	}
	if v := os.Getenv("CHAT_MODEL"); v != "" {
		cfg.ChatModel = v
	}
	if v := os.Getenv("WINDOW_SIZE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.WindowSize = f
		}
	}
	if v := os.Getenv("WINDOW_OVERLAP"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.WindowOverlap = f
		}
	}
	if v := os.Getenv("SIMILARITY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.SimilarityThreshold = f
		}
	}
	if v := os.Getenv("FORCE_LOCAL_SUMMARIZER"); v != "" {
		cfg.ForceLocalSummarizer = v == "true" || v == "1"
	}
	if v := os.Getenv("DATA_ROOT"); v != "" {
		cfg.DataRoot = v
	}
	if v := os.Getenv("INPUT_DIR"); v != "" {
		cfg.InputDir = v
	}
	if v := os.Getenv("MAX_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxConcurrency = n
		}
	}
	if v := os.Getenv("WHISPER_SCRIPT"); v != "" {
		cfg.WhisperScript = v
	}
	if v := os.Getenv("LANGUAGE"); v != "" {
		cfg.Language = v
	}
}

// Validate 预检配置，非法的窗口/重叠/阈值组合在处理任何音频之前拒绝
func (c *Config) Validate() error {
	if c.WindowSize <= 0 {
		return &core.ConfigurationError{Reason: "window size must be positive"}
	}
	if c.WindowOverlap < 0 {
		return &core.ConfigurationError{Reason: "window overlap must be non-negative"}
	}
	if c.WindowOverlap >= c.WindowSize {
		return &core.ConfigurationError{Reason: "window overlap must be smaller than window size"}
	}
	if c.SimilarityThreshold < -1.0 || c.SimilarityThreshold > 1.0 {
		return &core.ConfigurationError{Reason: "similarity threshold must be in [-1, 1]"}
	}
	if c.SummaryBatchSize < 1 {
		c.SummaryBatchSize = 1
	}
	if c.MaxConcurrency < 1 {
		c.MaxConcurrency = 1
	}
	if c.RequestTimeoutSec < 1 {
		c.RequestTimeoutSec = 60
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	return nil
}

// HasValidAPI 判断是否配置了可用的 LLM API
func (c *Config) HasValidAPI() bool {
	return c.APIKey != ""
}
