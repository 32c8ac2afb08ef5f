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
	"errors"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/uptrace/bun"
)

var bunSqlSilentMode atomic.Bool

// EnableBunSqlSilent mutes QueryHook output, e.g. while migrating.
func EnableBunSqlSilent(b bool) {
	bunSqlSilentMode.Store(b)
}

var (
	failedQueryColor = color.New(color.FgRed, color.Bold)
	slowQueryColor   = color.New(color.FgYellow)
)

// QueryHook reports failed and slow queries through the database logger.
// Missing rows and finished transactions are not failures.
type QueryHook struct {
	logger   Logger
	slowTime time.Duration
}

var _ bun.QueryHook = (*QueryHook)(nil)

// NewQueryHook returns a hook warning about queries slower than slowTime.
// A zero slowTime disables slow query reports. A nil logger means the
// package logger.
func NewQueryHook(logger Logger, slowTime time.Duration) *QueryHook {
	return &QueryHook{logger: logger, slowTime: slowTime}
}

func (h *QueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	if bunSqlSilentMode.Load() {
		return
	}
	logger := h.logger
	if logger == nil {
		logger = GetLogger()
	}
	duration := time.Since(event.StartTime).Round(time.Microsecond)

	if event.Err != nil {
		if errors.Is(event.Err, sql.ErrNoRows) || errors.Is(event.Err, sql.ErrTxDone) {
			return
		}
		_, kind := IsSqlError(event.Err)
		logger.Error(failedQueryColor.Sprint("Database query failed"),
			"operation", event.Operation(),
			"kind", kind.String(),
			"duration", duration,
			"query", event.Query,
			"error", event.Err,
		)
		return
	}

	if h.slowTime > 0 && duration > h.slowTime {
		logger.Warn(slowQueryColor.Sprint("Database slow query detected"),
			"operation", event.Operation(),
			"duration", duration,
			"slow_threshold", h.slowTime,
			"query", event.Query,
		)
	}
}
