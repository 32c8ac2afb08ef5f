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
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/uptrace/bun"
)

// ErrNotInitialized is returned by the package-level helpers before InitDB.
var ErrNotInitialized = errors.New("database not initialized")

var (
	globalMu      sync.RWMutex
	globalFactory *BaseDatabaseFactory
)

func currentFactory() *BaseDatabaseFactory {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalFactory
}

// GetDB returns the global Bun database, or nil before InitDB.
func GetDB() *bun.DB {
	if f := currentFactory(); f != nil {
		return f.GetDB()
	}
	return nil
}

// InitDB connects the global database, migrating when
// cfg.DataMigrateConfig.EnableMigrateOnStartup is set. A previous global
// database is closed first.
func InitDB(cfg *Config) (*bun.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	factory := NewDatabaseFactory()
	if _, err := factory.CreateFromConfig(cfg); err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}
	if err := factory.InitializeDatabase(context.Background(), cfg.DataMigrateConfig.EnableMigrateOnStartup); err != nil {
		_ = factory.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	globalMu.Lock()
	previous := globalFactory
	globalFactory = factory
	globalMu.Unlock()
	if previous != nil {
		_ = previous.Close()
	}
	return factory.GetDB(), nil
}

// CloseDB closes and forgets the global database.
func CloseDB() error {
	globalMu.Lock()
	f := globalFactory
	globalFactory = nil
	globalMu.Unlock()
	if f == nil {
		return nil
	}
	return f.Close()
}

// GetHealthStatus reports the health of the global database.
func GetHealthStatus(ctx context.Context) *HealthStatus {
	if f := currentFactory(); f != nil {
		return f.GetHealthStatus(ctx)
	}
	return &HealthStatus{LastError: ErrNotInitialized.Error(), LastCheckTime: time.Now()}
}

// GetDatabaseStats returns pool statistics of the global database.
func GetDatabaseStats() *DBStats {
	if f := currentFactory(); f != nil {
		return f.GetStats()
	}
	return &DBStats{}
}

// RunMigrations applies pending migrations on the global database.
func RunMigrations(ctx context.Context) error {
	f := currentFactory()
	if f == nil || f.GetManager() == nil {
		return ErrNotInitialized
	}
	return f.GetManager().RunMigrations(ctx)
}
