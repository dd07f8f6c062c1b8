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

package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type Logger = logrus.Logger

const timestampFormat = "2006-01-02 15:04:05.000"

var (
	registryMu    sync.RWMutex
	registry      = map[string]*logrus.Logger{}
	baseLevel     = ParseLogLevel(EnvDefaultString("LOG_LEVEL", "info"))
	consoleFormat = EnvDefaultString("CONSOLE_LOG_FORMAT", "text")
	output        io.Writer = os.Stdout
)

// NewLogger returns the named logger, creating and registering it on first use.
func NewLogger(name string) *logrus.Logger {
	registryMu.Lock()
	defer registryMu.Unlock()
	if l, ok := registry[name]; ok {
		return l
	}
	l := logrus.New()
	l.SetOutput(output)
	l.SetLevel(baseLevel)
	l.SetReportCaller(true)
	l.SetFormatter(newFormatter(name, consoleFormat))
	registry[name] = l
	return l
}

func newFormatter(name, format string) logrus.Formatter {
	if format == "json" {
		return &JSONLogFormatter{LoggerName: name}
	}
	return &Log4jFormatter{LoggerName: name, NameWidth: 10, Color: isTerminal(output)}
}

// ConfigureConsoleLogFormat switches every registered logger between text and json.
func ConfigureConsoleLogFormat(format string) {
	s := strings.ToLower(strings.TrimSpace(format))
	if s != "json" {
		s = "text"
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	consoleFormat = s
	for name, l := range registry {
		l.SetFormatter(newFormatter(name, s))
	}
}

// ConfigureOutput redirects every registered logger, and loggers created later, to w.
func ConfigureOutput(w io.Writer) {
	registryMu.Lock()
	defer registryMu.Unlock()
	output = w
	for name, l := range registry {
		l.SetOutput(w)
		l.SetFormatter(newFormatter(name, consoleFormat))
	}
}

func ParseLogLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.InfoLevel
	}
}

// ConfigureLogLevel sets the level of every registered logger and the default
// for loggers created later.
func ConfigureLogLevel(levelStr string) {
	lvl := ParseLogLevel(levelStr)
	registryMu.Lock()
	defer registryMu.Unlock()
	baseLevel = lvl
	for _, l := range registry {
		l.SetLevel(lvl)
	}
}

// SetLoggerLevel changes a single named logger. It reports false for unknown names.
func SetLoggerLevel(name string, lvlStr string) bool {
	registryMu.RLock()
	l, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return false
	}
	l.SetLevel(ParseLogLevel(lvlStr))
	return true
}

// Log4jFormatter renders "ts LEVEL pid --- [name] file:line : msg k=v".
type Log4jFormatter struct {
	LoggerName string
	NameWidth  int
	Color      bool
}

func (f *Log4jFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	lvl := fmt.Sprintf("%7s", strings.ToUpper(entry.Level.String()))
	name := fmt.Sprintf("%*s", f.NameWidth, limitRunes(f.LoggerName, f.NameWidth))
	pid := fmt.Sprintf("%-6d", os.Getpid())
	if f.Color {
		lvl = colorLevel(lvl, entry.Level)
		name = ansiCyan + name + ansiReset
		pid = ansiMagenta + pid + ansiReset
	}

	var b strings.Builder
	b.WriteString(entry.Time.Format(timestampFormat))
	b.WriteString(" ")
	b.WriteString(lvl)
	b.WriteString(" ")
	b.WriteString(pid)
	b.WriteString(" --- ")
	b.WriteString(name)
	if entry.Caller != nil {
		b.WriteString(" ")
		b.WriteString(filepath.Base(entry.Caller.File))
		b.WriteString(":")
		b.WriteString(strconv.Itoa(entry.Caller.Line))
	}
	b.WriteString(" : ")
	b.WriteString(entry.Message)
	for _, k := range sortedKeys(entry.Data) {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteString("\n")
	return []byte(b.String()), nil
}

// JSONLogFormatter renders one JSON object per line.
type JSONLogFormatter struct {
	LoggerName string
}

func (f *JSONLogFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	type record struct {
		Time    string                 `json:"time"`
		Level   string                 `json:"level"`
		Logger  string                 `json:"logger"`
		Caller  string                 `json:"caller,omitempty"`
		Message string                 `json:"message"`
		Fields  map[string]interface{} `json:"fields,omitempty"`
	}
	rec := record{
		Time:    entry.Time.Format(timestampFormat),
		Level:   entry.Level.String(),
		Logger:  f.LoggerName,
		Message: entry.Message,
	}
	if entry.Caller != nil {
		rec.Caller = fmt.Sprintf("%s:%d", filepath.Base(entry.Caller.File), entry.Caller.Line)
	}
	if len(entry.Data) > 0 {
		rec.Fields = make(map[string]interface{}, len(entry.Data))
		for k, v := range entry.Data {
			if err, ok := v.(error); ok {
				v = err.Error()
			}
			rec.Fields[k] = v
		}
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

const (
	ansiReset   = "\x1b[0m"
	ansiRed     = "\x1b[31m"
	ansiGreen   = "\x1b[32m"
	ansiYellow  = "\x1b[33m"
	ansiBlue    = "\x1b[34m"
	ansiMagenta = "\x1b[35m"
	ansiCyan    = "\x1b[36m"
)

func colorLevel(s string, level logrus.Level) string {
	switch level {
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return ansiRed + s + ansiReset
	case logrus.WarnLevel:
		return ansiYellow + s + ansiReset
	case logrus.InfoLevel:
		return ansiGreen + s + ansiReset
	case logrus.DebugLevel:
		return ansiBlue + s + ansiReset
	default:
		return ansiMagenta + s + ansiReset
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func sortedKeys(m logrus.Fields) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func limitRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// FormatDuration keeps durations short in log lines.
func FormatDuration(d time.Duration) string {
	return d.Round(time.Microsecond).String()
}

func EnvDefaultString(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return def
		}
		return b
	}
	return def
}
