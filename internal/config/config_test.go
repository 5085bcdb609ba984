package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apper-canvas/employee-registry-backend/library/yamlreader"
)

func TestLocalConfigLoads(t *testing.T) {
	t.Setenv("SNAPSHOT_DRIVER", "file")
	t.Setenv("API_PORT", "9091")

	path := filepath.Join("..", "..", "config", "application-local.yaml")
	_, err := os.Stat(path)
	require.NoError(t, err)

	cfg, err := yamlreader.NewConfig[Config](path)
	require.NoError(t, err)

	assert.Equal(t, 9091, cfg.UserAPI.Port.Value)
	assert.Equal(t, time.Hour, cfg.UserAPI.FormIdleTTL.Get())
	assert.Equal(t, 10000, cfg.UserAPI.MaxForms.Get())
	assert.Equal(t, "file", cfg.Snapshot.Driver.Value)
	assert.Equal(t, "hr_employees", cfg.Snapshot.Name.Value)
	assert.Equal(t, 5*time.Second, cfg.Store.FlushTimeout.Value)
	assert.True(t, cfg.Store.Seed.Value)
	assert.False(t, cfg.Kafka.Enabled.Value)
	assert.Equal(t, "hr.employees.onboarding", cfg.Kafka.Topics.Onboarding.Value)
	assert.Equal(t, "", cfg.Snapshot.S3.Bucket.Get())
}
