package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all tool settings, populated from environment variables.
// Command-line flags override individual values per invocation.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Object storage and imagery.
	CredentialsFile string
	GOESBucket      string
	AWSRegion       string
	HTTPTimeout     time.Duration

	// Local data layout.
	DataDir string

	KafkaBrokers    []string
	KafkaTrackTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	httpTimeoutStr := sharedcfg.EnvOrDefault("HTTP_TIMEOUT", "60s")
	httpTimeout, err := time.ParseDuration(httpTimeoutStr)
	if err != nil || httpTimeout <= 0 {
		return nil, errors.New("invalid HTTP_TIMEOUT")
	}

	credentialsFile := os.Getenv("CREDENTIALS_FILE")
	if credentialsFile == "" {
		credentialsFile = defaultCredentialsFile()
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		CredentialsFile: credentialsFile,
		GOESBucket:      sharedcfg.EnvOrDefault("GOES_BUCKET", "noaa-goes16"),
		AWSRegion:       sharedcfg.EnvOrDefault("AWS_REGION", "us-east-1"),
		HTTPTimeout:     httpTimeout,

		DataDir: sharedcfg.EnvOrDefault("DATA_DIR", "./data/"),

		KafkaBrokers:    sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTrackTopic: sharedcfg.EnvOrDefault("KAFKA_TRACK_TOPIC", "ibtracs-observations"),
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}

	return cfg, nil
}

// defaultCredentialsFile is ~/rootkey.csv, the file the AWS console hands out
// when an access key is created.
func defaultCredentialsFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "rootkey.csv"
	}
	return filepath.Join(home, "rootkey.csv")
}
