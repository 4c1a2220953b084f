package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseJSON(t *testing.T) {
	path := writeTempJSON(t, `{
		"app": {"master_secret": "json-secret", "version": "2.1.0"},
		"storage": {"db": {"driver": "sqlite3", "dsn": "file:test.db"}},
		"server": {"http_address": "localhost:8792", "upstream_timeout": "90s"},
		"firewall": {"policy_path": "policy.json", "workspace_root": "/work"},
		"workers": {"vault_ttl": "2h", "vault_purge_interval": "10m"}
	}`)

	cfg, err := parseJSON(path)
	require.NoError(t, err)

	assert.Equal(t, "json-secret", cfg.App.MasterSecret)
	assert.Equal(t, "2.1.0", cfg.App.Version)
	assert.Equal(t, "file:test.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "localhost:8792", cfg.Server.HTTPAddress)
	assert.Equal(t, 90*time.Second, cfg.Server.UpstreamTimeout)
	assert.Equal(t, "/work", cfg.Firewall.WorkspaceRoot)
	assert.Equal(t, 2*time.Hour, cfg.Workers.VaultTTL)
	assert.Equal(t, 10*time.Minute, cfg.Workers.VaultPurgeInterval)
	assert.Empty(t, cfg.JSONFilePath)
}

func TestParseJSON_MissingFile(t *testing.T) {
	_, err := parseJSON("/nonexistent/config.json")
	assert.Error(t, err)
}

func TestParseJSON_MalformedFile(t *testing.T) {
	path := writeTempJSON(t, "{not json")

	_, err := parseJSON(path)
	assert.Error(t, err)
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Duration
	}{
		{"string form", `"1h30m"`, 90 * time.Minute},
		{"numeric nanoseconds", `1000000000`, time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			require.NoError(t, json.Unmarshal([]byte(tt.input), &d))
			assert.Equal(t, tt.want, time.Duration(d))
		})
	}

	var d Duration
	assert.Error(t, json.Unmarshal([]byte(`"not-a-duration"`), &d))
}

func TestDuration_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(Duration(90 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(out))
}
