package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalConfig = `
database:
  postgres:
    host: localhost
    database: solar_advisor
    user: advisor
  elasticsearch:
    url: http://localhost:9200
  redis:
    address: localhost:6379
auth:
  jwt_secret: test-secret
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 5, cfg.Recommendation.TopK)
	assert.Equal(t, 60, cfg.Auth.TokenTTLMinutes)
	assert.Equal(t, 4, cfg.Auth.CodeLength)
	assert.Equal(t, 120, cfg.Auth.CodeTTLSeconds)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, cfg.LLM.BaseURL, cfg.Embedding.BaseURL)
	assert.Equal(t, []string{"http://localhost:9200"}, cfg.Database.Elasticsearch.Addresses)
	assert.Equal(t, "product_embeddings", cfg.Database.Elasticsearch.Index)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing postgres host",
			body:    "auth:\n  jwt_secret: x\n",
			wantErr: "database.postgres.host is required",
		},
		{
			name: "missing jwt secret",
			body: `
database:
  postgres: {host: h, database: d, user: u}
  elasticsearch: {url: "http://es:9200"}
  redis: {address: "r:6379"}
`,
			wantErr: "auth.jwt_secret is required",
		},
		{
			name:    "camunda enabled without broker",
			body:    minimalConfig + "camunda:\n  enabled: true\n",
			wantErr: "camunda.broker_address is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "")
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	t.Setenv("ADVISOR_TEST_ERP_URL", "https://erp.example/ODataV4")
	body := minimalConfig + "erp:\n  base_url: ${ADVISOR_TEST_ERP_URL}\n"

	cfg, err := LoadFromFile(writeConfig(t, body))
	require.NoError(t, err)
	assert.Equal(t, "https://erp.example/ODataV4", cfg.ERP.BaseURL)
}

func TestLoadFromFile_ShortEnvOverrides(t *testing.T) {
	t.Setenv("OPENCAGE_KEY", "cage-key")
	t.Setenv("ERP_USERNAME", "svc-user")

	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)
	assert.Equal(t, "cage-key", cfg.Solar.OpenCageKey)
	assert.Equal(t, "svc-user", cfg.ERP.Username)
}

func TestGetWorkerConfig(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"recommend-system": {Enabled: false, MaxJobsActive: 2, Timeout: 1000, MaxRetries: 1},
	}}

	assert.Equal(t, 2, GetWorkerConfig(cfg, "recommend-system").MaxJobsActive)
	assert.False(t, IsWorkerEnabled(cfg, "recommend-system"))

	def := GetWorkerConfig(cfg, "unknown")
	assert.True(t, def.Enabled)
	assert.Equal(t, 3, def.MaxRetries)
	assert.True(t, IsWorkerEnabled(cfg, "unknown"))
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}
