/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.App.Addr)
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout)
	assert.Equal(t, 720*time.Hour, cfg.Redis.TokenTTL)
	assert.Equal(t, "sqlite", cfg.Database.ConnectionConfig.Type)
	assert.True(t, cfg.Database.DataMigrateConfig.EnableMigrateOnStartup)
	assert.False(t, cfg.IsProduction())
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "chirp.yaml", `
app:
  env: production
  addr: ":9000"
  request_timeout: 5s
log:
  level: warn
  format: json
redis:
  addr: redis:6379
  token_ttl: 1h
database:
  connection:
    type: postgres
    host: db
    port: 5432
  migrate:
    enable_foreign_key: false
`)
	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, ":9000", cfg.App.Addr)
	assert.Equal(t, 5*time.Second, cfg.App.RequestTimeout)
	assert.Equal(t, 15*time.Second, cfg.App.ReadTimeout)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, time.Hour, cfg.Redis.TokenTTL)
	assert.Equal(t, "chirp", cfg.Redis.Prefix)
	assert.Equal(t, "postgres", cfg.Database.ConnectionConfig.Type)
	assert.Equal(t, 5432, cfg.Database.ConnectionConfig.Port)
	assert.Equal(t, 100, cfg.Database.ConnectionConfig.MaxOpenConns)
	assert.False(t, cfg.Database.DataMigrateConfig.EnableForeignKey)
}

func TestEnvironmentWins(t *testing.T) {
	path := writeFile(t, "chirp.yaml", "app:\n  addr: \":9000\"\n")
	t.Setenv("CHIRP_APP_ADDR", ":7000")
	t.Setenv("CHIRP_APP_RATE_WINDOW", "30s")
	t.Setenv("CHIRP_LOG_LEVEL", "error")
	t.Setenv("CHIRP_REDIS_DB", "3")

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.App.Addr)
	assert.Equal(t, 30*time.Second, cfg.App.RateWindow)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestDotenv(t *testing.T) {
	t.Setenv("CHIRP_REDIS_ADDR", "from-env:6379")
	dotenv := writeFile(t, ".env", "CHIRP_REDIS_PREFIX=dotenv\nCHIRP_REDIS_ADDR=from-file:6379\n")
	t.Cleanup(func() { _ = os.Unsetenv("CHIRP_REDIS_PREFIX") })

	cfg, err := Load("", dotenv)
	require.NoError(t, err)
	assert.Equal(t, "dotenv", cfg.Redis.Prefix)
	assert.Equal(t, "from-env:6379", cfg.Redis.Addr)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "read config")

	bad := writeFile(t, "bad.yaml", "app: [")
	_, err = Load(bad, filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "parse config")

	t.Setenv("CHIRP_APP_RATE_LIMIT", "many")
	_, err = Load("", filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "read environment")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Redis.TokenTTL = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.App.Addr = ""
	assert.Error(t, cfg.Validate())
}
