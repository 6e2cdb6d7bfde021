package main

import (
	"crypto/sha256"
	"encoding/hex"
	"log"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/assetdeck/assetdeck/pkg/storage"
)

type Config struct {
	Storage struct {
		Backend  string           `yaml:"backend"` // local or s3
		Path     string           `yaml:"path"`
		BaseURL  string           `yaml:"base_url"`
		Database string           `yaml:"database"`
		S3       storage.S3Config `yaml:"s3"`
	} `yaml:"storage"`
	API struct {
		Port       string `yaml:"port"`
		Key        string `yaml:"key"`
		CORSOrigin string `yaml:"cors_origin"`
	} `yaml:"api"`
	Thumbnails struct {
		FFmpegPath string `yaml:"ffmpeg_path"`
	} `yaml:"thumbnails"`
	AutoTagging struct {
		WebhookURL string `yaml:"webhook_url"`
	} `yaml:"auto_tagging"`
}

func LoadConfig() *Config {
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		log.Printf("Failed to read config file, using defaults: %v", err)
		return defaultConfig()
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		log.Printf("Failed to parse config file, using defaults: %v", err)
		return defaultConfig()
	}
	applyDefaults(&config)

	// Override API key from environment variable if set
	if envAPIKey := os.Getenv("ASSETDECK_API_KEY"); envAPIKey != "" {
		config.API.Key = envAPIKey
	}
	if envWebhook := os.Getenv("ASSETDECK_WEBHOOK_URL"); envWebhook != "" {
		config.AutoTagging.WebhookURL = envWebhook
	}

	// Log only a hash prefix so the key never appears in plain text
	if config.API.Key != "" {
		hasher := sha256.New()
		hasher.Write([]byte(config.API.Key))
		hashBytes := hasher.Sum(nil)[:8]
		log.Printf("API Key configured (hash prefix: %s...)", hex.EncodeToString(hashBytes))
	}

	return &config
}

func defaultConfig() *Config {
	apiKey := os.Getenv("ASSETDECK_API_KEY")
	if apiKey == "" {
		log.Fatal("API key must be set via ASSETDECK_API_KEY environment variable or config file")
	}

	var config Config
	applyDefaults(&config)
	config.API.Key = apiKey
	config.AutoTagging.WebhookURL = os.Getenv("ASSETDECK_WEBHOOK_URL")
	return &config
}

func applyDefaults(config *Config) {
	if config.Storage.Backend == "" {
		config.Storage.Backend = "local"
	}
	if config.Storage.Path == "" {
		config.Storage.Path = "./storage"
	}
	if config.Storage.Database == "" {
		config.Storage.Database = "./assetdeck.db"
	}
	if config.API.Port == "" {
		config.API.Port = "8080"
	}
	if config.Storage.BaseURL == "" {
		config.Storage.BaseURL = "http://localhost:" + config.API.Port + "/files"
	}
}
