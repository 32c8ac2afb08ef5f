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
	"database/sql"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/schema"
)

// connector opens a driver pool for cfg and names the matching dialect.
type connector func(cfg *ConnectionConfig) (*sql.DB, schema.Dialect, error)

var connectors = map[string]connector{
	"mysql":    openMySQL,
	"postgres": openPostgres,
	"sqlite":   openSQLite,
}

var typeAliases = map[string]string{
	"postgresql": "postgres",
	"sqlite3":    "sqlite",
}

func normalizeType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if alias, ok := typeAliases[t]; ok {
		return alias
	}
	return t
}

// SupportedTypes lists the accepted values of ConnectionConfig.Type.
func SupportedTypes() []string {
	types := make([]string, 0, len(connectors)+len(typeAliases))
	for t := range connectors {
		types = append(types, t)
	}
	for alias := range typeAliases {
		types = append(types, alias)
	}
	sort.Strings(types)
	return types
}

func isSupportedType(t string) bool {
	_, ok := connectors[normalizeType(t)]
	return ok
}

func openMySQL(c *ConnectionConfig) (*sql.DB, schema.Dialect, error) {
	cfg := mysql.NewConfig()
	cfg.User = c.Username
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
	cfg.DBName = c.DBName
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	cfg.ParseTime = true
	cfg.Loc = time.Local
	cfg.Timeout = c.ConnectTimeout
	cfg.ReadTimeout = c.ReadTimeout
	cfg.WriteTimeout = c.WriteTimeout
	// report matched rows so an unchanged UPDATE is not a miss
	cfg.ClientFoundRows = true

	sqlDB, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, nil, err
	}
	return sqlDB, mysqldialect.New(), nil
}

func postgresDSN(c *ConnectionConfig) string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	query := url.Values{}
	query.Set("sslmode", sslMode)
	query.Set("connect_timeout", strconv.Itoa(int(c.ConnectTimeout.Seconds())))
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: query.Encode(),
	}
	return dsn.String()
}

func openPostgres(c *ConnectionConfig) (*sql.DB, schema.Dialect, error) {
	sqlDB, err := sql.Open("postgres", postgresDSN(c))
	if err != nil {
		return nil, nil, err
	}
	return sqlDB, pgdialect.New(), nil
}

func openSQLite(c *ConnectionConfig) (*sql.DB, schema.Dialect, error) {
	sqlDB, err := sql.Open(sqliteshim.ShimName, sqliteDSN(c.DBName))
	if err != nil {
		return nil, nil, err
	}
	if isSQLiteMemory(c.DBName) {
		// every connection to :memory: opens a new, empty database
		c.MaxOpenConns = 1
		c.MaxIdleConns = 1
		c.ConnMaxLifetime = 0
		c.ConnMaxIdleTime = 0
	}
	return sqlDB, sqlitedialect.New(), nil
}

func isSQLiteMemory(name string) bool {
	return name == "" || name == ":memory:"
}

func sqliteDSN(name string) string {
	switch {
	case isSQLiteMemory(name):
		return "file::memory:?cache=shared"
	case strings.HasSuffix(name, ".db"), strings.HasPrefix(name, "file:"):
		return name
	default:
		return name + ".db"
	}
}

type defaultDatabaseManager struct {
	config  *ConnectionConfig
	migrate DataMigrateConfig

	mu          sync.RWMutex
	db          *bun.DB
	logger      Logger
	stopMonitor context.CancelFunc
}

// NewDatabaseManager returns an AbstractDatabaseManager backed by Bun.
// A nil config means DefaultConnectionConfig.
func NewDatabaseManager(config *ConnectionConfig, migrate DataMigrateConfig) AbstractDatabaseManager {
	if config == nil {
		config = DefaultConnectionConfig()
	}
	return &defaultDatabaseManager{config: config, migrate: migrate}
}

func (dm *defaultDatabaseManager) log() Logger {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	if dm.logger == nil {
		return GetLogger()
	}
	return dm.logger
}

// open builds a pinged bun.DB for the configured type.
func (dm *defaultDatabaseManager) open(ctx context.Context) (*bun.DB, error) {
	open, ok := connectors[normalizeType(dm.config.Type)]
	if !ok {
		return nil, fmt.Errorf("unsupported database type: %s", dm.config.Type)
	}
	if dm.config.ConnectTimeout <= 0 {
		dm.config.ConnectTimeout = 30 * time.Second
	}

	sqlDB, dialect, err := open(dm.config)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}
	sqlDB.SetMaxIdleConns(dm.config.MaxIdleConns)
	sqlDB.SetMaxOpenConns(dm.config.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(dm.config.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(dm.config.ConnMaxIdleTime)

	db := bun.NewDB(sqlDB, dialect)
	if dm.config.EnableQueryLog {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))
	}
	db.AddQueryHook(NewQueryHook(dm.logger, dm.config.SlowQueryTime))

	pingCtx, cancel := context.WithTimeout(ctx, dm.config.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database connection test failed: %w", err)
	}
	return db, nil
}

func (dm *defaultDatabaseManager) Connect(ctx context.Context) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if dm.db != nil {
		return nil
	}

	db, err := dm.open(ctx)
	if err != nil {
		return err
	}
	dm.db = db

	if dm.config.HealthCheckInterval > 0 && dm.stopMonitor == nil {
		monitorCtx, cancel := context.WithCancel(context.Background())
		dm.stopMonitor = cancel
		go dm.monitor(monitorCtx)
	}

	logger := dm.logger
	if logger == nil {
		logger = GetLogger()
	}
	logger.Info("Database connected", "type", normalizeType(dm.config.Type), "host", dm.config.Host, "name", dm.config.DBName)
	return nil
}

// closeLocked closes the pool. dm.mu must be held.
func (dm *defaultDatabaseManager) closeLocked() error {
	if dm.db == nil {
		return nil
	}
	err := dm.db.Close()
	dm.db = nil
	return err
}

// Disconnect stops the health monitor and closes the pool.
func (dm *defaultDatabaseManager) Disconnect() error {
	dm.mu.Lock()
	if dm.stopMonitor != nil {
		dm.stopMonitor()
		dm.stopMonitor = nil
	}
	err := dm.closeLocked()
	dm.mu.Unlock()

	if err != nil {
		dm.log().Error("Failed to close database connection", "error", err)
		return err
	}
	dm.log().Info("Database connection closed")
	return nil
}

// Reconnect replaces the pool with a fresh one. The health monitor keeps
// running.
func (dm *defaultDatabaseManager) Reconnect(ctx context.Context) error {
	dm.log().Info("Reconnecting to the database")

	dm.mu.Lock()
	defer dm.mu.Unlock()
	if err := dm.closeLocked(); err != nil && dm.logger != nil {
		dm.logger.Warn("Error closing previous connection", "error", err)
	}
	db, err := dm.open(ctx)
	if err != nil {
		return err
	}
	dm.db = db
	return nil
}

func (dm *defaultDatabaseManager) Ping(ctx context.Context) error {
	db := dm.GetDB()
	if db == nil {
		return fmt.Errorf("database not connected")
	}
	return db.PingContext(ctx)
}

func (dm *defaultDatabaseManager) GetDB() *bun.DB {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.db
}

func (dm *defaultDatabaseManager) GetSQLDB() *sql.DB {
	db := dm.GetDB()
	if db == nil {
		return nil
	}
	return db.DB
}

// HealthCheck pings the database without holding the manager lock.
func (dm *defaultDatabaseManager) HealthCheck(ctx context.Context) *HealthStatus {
	start := time.Now()
	status := &HealthStatus{LastCheckTime: start}

	db := dm.GetDB()
	if db == nil {
		status.LastError = "Database not initialized"
	} else {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := db.PingContext(pingCtx)
		cancel()
		status.ResponseTime = time.Since(start)
		if err != nil {
			status.LastError = err.Error()
		} else {
			status.Healthy = true
			status.Connected = true
		}
		stats := db.DB.Stats()
		status.ActiveConns = stats.InUse
		status.IdleConns = stats.Idle
		status.MaxOpenConns = stats.MaxOpenConnections
	}
	return status
}

// monitor checks health every HealthCheckInterval and reconnects up to
// MaxReconnectTries times in a row when enabled.
func (dm *defaultDatabaseManager) monitor(ctx context.Context) {
	ticker := time.NewTicker(dm.config.HealthCheckInterval)
	defer ticker.Stop()

	tries := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		status := dm.HealthCheck(checkCtx)
		cancel()
		if status.Healthy {
			tries = 0
			continue
		}
		if !dm.config.EnableReconnect {
			continue
		}
		if tries >= dm.config.MaxReconnectTries {
			dm.log().Error("Max reconnect attempts reached", "tries", tries, "error", status.LastError)
			continue
		}
		tries++

		select {
		case <-ctx.Done():
			return
		case <-time.After(dm.config.ReconnectInterval):
		}
		reconnectCtx, cancel := context.WithTimeout(ctx, dm.config.ConnectTimeout)
		err := dm.Reconnect(reconnectCtx)
		cancel()
		if err != nil {
			dm.log().Error("Reconnect failed", "error", err, "try", tries)
			continue
		}
		dm.log().Info("Reconnect succeeded", "try", tries)
		tries = 0
	}
}

func statsOf(s sql.DBStats) *DBStats {
	return &DBStats{
		MaxOpenConns:      s.MaxOpenConnections,
		OpenConns:         s.OpenConnections,
		InUse:             s.InUse,
		Idle:              s.Idle,
		WaitCount:         s.WaitCount,
		WaitDuration:      s.WaitDuration,
		MaxIdleClosed:     s.MaxIdleClosed,
		MaxIdleTimeClosed: s.MaxIdleTimeClosed,
		MaxLifetimeClosed: s.MaxLifetimeClosed,
	}
}

func (dm *defaultDatabaseManager) GetStats() *DBStats {
	db := dm.GetDB()
	if db == nil {
		return &DBStats{}
	}
	return statsOf(db.DB.Stats())
}

func (dm *defaultDatabaseManager) RunMigrations(ctx context.Context) error {
	db := dm.GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	return NewMigrationManager(db, dm.log(), dm.migrate).RunMigrations(ctx)
}

func (dm *defaultDatabaseManager) SetLogger(logger Logger) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.logger = logger
}
