package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Cache struct {
		Addr       string `yaml:"addr"`
		Password   string `yaml:"password"`
		DB         int    `yaml:"db"`
		TTLSeconds int64  `yaml:"ttl_seconds"`
	} `yaml:"cache"`
	MLService struct {
		URL            string `yaml:"url"`
		Enabled        bool   `yaml:"enabled"`
		TimeoutSeconds int64  `yaml:"timeout_seconds"`
	} `yaml:"ml_service"`
	Engine struct {
		ScamThreshold       float64 `yaml:"scam_threshold"`
		MaxTextLength       int     `yaml:"max_text_length"`
		DedupWindowHours    int64   `yaml:"dedup_window_hours"`
		CollectTrainingData bool    `yaml:"collect_training_data"`
		ModelVersion        string  `yaml:"model_version"`
		WriterBuffer        int     `yaml:"writer_buffer"`
	} `yaml:"engine"`
	Promotion struct {
		Enabled         bool  `yaml:"enabled"`
		IntervalHours   int64 `yaml:"interval_hours"`
		LookbackDays    int64 `yaml:"lookback_days"`
		ReportThreshold int   `yaml:"report_threshold"`
	} `yaml:"promotion"`
	EntityLists struct {
		WhitelistPath string `yaml:"whitelist_path"`
		BlacklistPath string `yaml:"blacklist_path"`
	} `yaml:"entity_lists"`
}

// LoadConfig reads configuration from the specified YAML file.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return config, nil
}
