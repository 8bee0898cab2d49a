package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
server:
  address: ":9000"
  writetimeout: 2s
client:
  url: "ws://example.com:9000/events"
  names: ["post", "comment"]
database:
  host: localhost
  name: puppr
  user: postgres
  password: secret
publisher:
  type: nats
  address: "nats://localhost:4222"
  clusterid: test-cluster
  clientid: puppr
logger:
  level: debug
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, testConfig))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Address)
	assert.Equal(t, 2*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "/events", cfg.Server.EventsPath, "default kept")
	assert.Equal(t, []string{"post", "comment"}, cfg.Client.Names)
	assert.Equal(t, uint16(5432), cfg.Database.Port)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "puppr", cfg.Publisher.TopicPrefix)

	assert.NoError(t, cfg.ValidateServer(false))
	assert.NoError(t, cfg.ValidateClient())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestValidateServer(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.ValidateServer(false), "database section is required")
	assert.NoError(t, cfg.ValidateServer(true))

	cfg.Publisher.Type = "kafka"
	assert.Error(t, cfg.ValidateServer(true))

	cfg.Publisher.Type = "nats"
	assert.Error(t, cfg.ValidateServer(true))
}

func TestValidateClient(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.ValidateClient())

	cfg.Client.URL = ""
	assert.Error(t, cfg.ValidateClient())
}
