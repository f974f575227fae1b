package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "noaa-goes16", cfg.GOESBucket)
	assert.Equal(t, "us-east-1", cfg.AWSRegion)
	assert.Equal(t, 60*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "./data/", cfg.DataDir)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "ibtracs-observations", cfg.KafkaTrackTopic)
	assert.True(t, strings.HasSuffix(cfg.CredentialsFile, "rootkey.csv"))
}

func TestLoad_CustomEnv(t *testing.T) {
	credPath := filepath.Join(t.TempDir(), "keys.csv")

	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("CREDENTIALS_FILE", credPath)
	t.Setenv("GOES_BUCKET", "noaa-goes18")
	t.Setenv("AWS_REGION", "us-west-2")
	t.Setenv("HTTP_TIMEOUT", "2m")
	t.Setenv("DATA_DIR", "/srv/cyclone")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_TRACK_TOPIC", "tracks")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, credPath, cfg.CredentialsFile)
	assert.Equal(t, "noaa-goes18", cfg.GOESBucket)
	assert.Equal(t, "us-west-2", cfg.AWSRegion)
	assert.Equal(t, 2*time.Minute, cfg.HTTPTimeout)
	assert.Equal(t, "/srv/cyclone", cfg.DataDir)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "tracks", cfg.KafkaTrackTopic)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidHTTPTimeout(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "bad")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_TIMEOUT")
}

func TestLoad_BlankBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " , ")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}
