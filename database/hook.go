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
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/uptrace/bun"

	"github.com/tomoncle/membersearch/utils"
)

var silentHooks atomic.Bool

// EnableBunSqlSilent mutes the console and slow query hooks, e.g. while
// migrations run.
func EnableBunSqlSilent(b bool) {
	silentHooks.Store(b)
}

var operationColors = map[string]*color.Color{
	"SELECT": color.New(color.FgGreen),
	"INSERT": color.New(color.FgBlue),
	"UPDATE": color.New(color.FgYellow),
	"DELETE": color.New(color.FgMagenta),
}

var otherOperationColor = color.New(color.FgRed)

// ConsoleQueryHook prints every query, colored by operation. With Verbose
// unset only failing queries are printed.
type ConsoleQueryHook struct {
	Verbose bool
	Writer  io.Writer
}

var _ bun.QueryHook = (*ConsoleQueryHook)(nil)

func (h *ConsoleQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *ConsoleQueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	if silentHooks.Load() {
		return
	}
	if !h.Verbose {
		switch {
		case event.Err == nil, errors.Is(event.Err, sql.ErrNoRows), errors.Is(event.Err, sql.ErrTxDone):
			return
		}
	}

	c, ok := operationColors[event.Operation()]
	if !ok {
		c = otherOperationColor
	}
	args := []interface{}{
		time.Now().Format("2006-01-02 15:04:05.000"),
		color.CyanString("%8s", "[BUN]"),
		fmt.Sprintf("%12s", utils.FormatDuration(time.Since(event.StartTime))),
		c.Sprint(event.Query),
	}
	if event.Err != nil {
		typ := reflect.TypeOf(event.Err).String()
		args = append(args, color.New(color.BgRed).Sprintf(" %s: %s ", typ, event.Err.Error()))
	}
	_, _ = fmt.Fprintln(h.Writer, args...)
}

type slowQueryHook struct {
	slowTime time.Duration
	logger   Logger
}

func (h *slowQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *slowQueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	if silentHooks.Load() || event.Err != nil || h.logger == nil {
		return
	}
	if duration := time.Since(event.StartTime); duration > h.slowTime {
		h.logger.Warn("Slow query detected",
			"duration", utils.FormatDuration(duration),
			"slow_threshold", h.slowTime,
			"query", event.Query,
		)
	}
}

// QueryStats is a snapshot of a QueryCounter.
type QueryStats struct {
	Total   int
	Selects int
	Counts  int
	Inserts int
	Updates int
	Deletes int
}

// QueryCounter counts executed queries by operation. COUNT(*) selects are
// tallied separately so pagination code can be checked for skipped counts.
type QueryCounter struct {
	mu      sync.Mutex
	stats   QueryStats
	queries []string
}

var _ bun.QueryHook = (*QueryCounter)(nil)

func NewQueryCounter() *QueryCounter {
	return &QueryCounter{}
}

func (c *QueryCounter) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (c *QueryCounter) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Total++
	c.queries = append(c.queries, event.Query)
	switch event.Operation() {
	case "SELECT":
		c.stats.Selects++
		if isCountQuery(event.Query) {
			c.stats.Counts++
		}
	case "INSERT":
		c.stats.Inserts++
	case "UPDATE":
		c.stats.Updates++
	case "DELETE":
		c.stats.Deletes++
	}
}

func isCountQuery(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	return strings.HasPrefix(q, "select count(")
}

// Stats returns the counters accumulated since the last Reset.
func (c *QueryCounter) Stats() QueryStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Queries returns the SQL text of every counted query, oldest first.
func (c *QueryCounter) Queries() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.queries...)
}

func (c *QueryCounter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = QueryStats{}
	c.queries = nil
}
