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

package database

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/uptrace/bun"
)

// BaseDatabaseFactory creates and manages a configured database manager and
// provides helpers for initialization, health checks, and statistics.
type BaseDatabaseFactory struct {
	manager AbstractDatabaseManager
	logger  Logger
}

// NewDatabaseFactory returns a new database factory using the global logger.
func NewDatabaseFactory() *BaseDatabaseFactory {
	return &BaseDatabaseFactory{
		logger: GetLogger(),
	}
}

// CreateFromConfig constructs a database manager from cfg, applying
// environment overrides to the connection settings first.
func (f *BaseDatabaseFactory) CreateFromConfig(cfg *Config) (AbstractDatabaseManager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}

	conn := &cfg.ConnectionConfig
	f.overrideFromEnv(conn)
	if !isSupportedType(conn.Type) {
		return nil, fmt.Errorf("unsupported database type: %s, supported types: %v", conn.Type, SupportedTypes())
	}

	manager := NewDatabaseManager(conn, cfg.DataMigrateConfig)
	manager.SetLogger(f.logger)

	f.manager = manager
	return manager, nil
}

func envInt(key string, set func(int)) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			set(n)
		}
	}
}

// envDuration accepts Go durations ("1500ms") or whole seconds ("30").
func envDuration(key string, set func(time.Duration)) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		set(d)
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		set(time.Duration(n) * time.Second)
	}
}

func envString(key string, set func(string)) {
	if v := os.Getenv(key); v != "" {
		set(v)
	}
}

func envBool(key string, set func(bool)) {
	if v := os.Getenv(key); v != "" {
		set(v == "true" || v == "1")
	}
}

// overrideFromEnv overrides connection values from DB_* environment variables.
func (f *BaseDatabaseFactory) overrideFromEnv(cfg *ConnectionConfig) {
	envString("DB_TYPE", func(v string) { cfg.Type = v })
	envString("DB_HOST", func(v string) { cfg.Host = v })
	envInt("DB_PORT", func(v int) { cfg.Port = v })
	envString("DB_USERNAME", func(v string) { cfg.Username = v })
	envString("DB_PASSWORD", func(v string) { cfg.Password = v })
	envString("DB_NAME", func(v string) { cfg.DBName = v })
	envString("DB_SSLMODE", func(v string) { cfg.SSLMode = v })

	envInt("DB_MAX_IDLE_CONNS", func(v int) { cfg.MaxIdleConns = v })
	envInt("DB_MAX_OPEN_CONNS", func(v int) { cfg.MaxOpenConns = v })
	envDuration("DB_CONN_MAX_LIFETIME", func(v time.Duration) { cfg.ConnMaxLifetime = v })

	envBool("DB_ENABLE_RECONNECT", func(v bool) { cfg.EnableReconnect = v })
	envDuration("DB_RECONNECT_INTERVAL", func(v time.Duration) { cfg.ReconnectInterval = v })

	envBool("DB_ENABLE_QUERY_LOG", func(v bool) { cfg.EnableQueryLog = v })
	envDuration("DB_SLOW_QUERY_TIME", func(v time.Duration) { cfg.SlowQueryTime = v })
}

// InitializeDatabase connects to the database and optionally runs migrations.
func (f *BaseDatabaseFactory) InitializeDatabase(ctx context.Context, runMigrations bool) error {
	if f.manager == nil {
		return fmt.Errorf("database manager not created")
	}

	// Connect to database
	if err := f.manager.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	f.manager.GetDB().RegisterModel(RegisteredModelInstances()...)
	// Run migrations
	if runMigrations {
		if err := f.manager.RunMigrations(ctx); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
	}
	f.logger.Info("Database initialization completed!", "migrated", runMigrations)
	return nil
}

// GetManager returns the underlying database manager.
func (f *BaseDatabaseFactory) GetManager() AbstractDatabaseManager {
	return f.manager
}

// GetDB returns the Bun database instance, or nil if not initialized.
func (f *BaseDatabaseFactory) GetDB() *bun.DB {
	if f.manager == nil {
		return nil
	}
	return f.manager.GetDB()
}

// SetLogger sets the logger on the factory and the underlying manager.
func (f *BaseDatabaseFactory) SetLogger(logger Logger) {
	f.logger = logger
	if f.manager != nil {
		f.manager.SetLogger(logger)
	}
}

// Close closes the database connection managed by the factory.
func (f *BaseDatabaseFactory) Close() error {
	if f.manager == nil {
		return nil
	}
	return f.manager.Disconnect()
}

// GetHealthStatus returns the current database health status from the manager.
func (f *BaseDatabaseFactory) GetHealthStatus(ctx context.Context) *HealthStatus {
	if f.manager == nil {
		return &HealthStatus{
			Healthy:       false,
			Connected:     false,
			LastError:     "Database manager not initialized",
			LastCheckTime: time.Now(),
		}
	}
	return f.manager.HealthCheck(ctx)
}

// GetStats returns database connection statistics from the manager.
func (f *BaseDatabaseFactory) GetStats() *DBStats {
	if f.manager == nil {
		return &DBStats{}
	}
	return f.manager.GetStats()
}
