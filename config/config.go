package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port        int
	DatabaseURL string // empty means in-memory storage
	CatalogPath string // YAML seed loaded at boot (in-memory mode)
	KafkaBroker string // empty disables settlement events
	KafkaTopic  string
	LogVerbose  bool
}

func Load() *Config {
	port := 8082
	// Prefer PORT (Render, Fly.io, Railway, etc.) then GACHA_PORT
	if p := os.Getenv("PORT"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			port = v
		}
	} else if p := os.Getenv("GACHA_PORT"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			port = v
		}
	}
	catalogPath := os.Getenv("CATALOG_PATH")
	if catalogPath == "" {
		catalogPath = "catalog.yaml"
	}
	kafkaTopic := os.Getenv("KAFKA_TOPIC")
	if kafkaTopic == "" {
		kafkaTopic = "settlement_completed"
	}
	verbose := false
	if v := os.Getenv("LOG_VERBOSE"); v != "" {
		verbose = strings.EqualFold(v, "true") || v == "1"
	}
	return &Config{
		Port:        port,
		DatabaseURL: os.Getenv("DATABASE_URL"),
		CatalogPath: catalogPath,
		KafkaBroker: os.Getenv("KAFKA_BROKER"),
		KafkaTopic:  kafkaTopic,
		LogVerbose:  verbose,
	}
}
