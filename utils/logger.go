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

// LogConfig selects level, format and file output of every named logger.
type LogConfig struct {
	Level         string `yaml:"level" envconfig:"LEVEL"`
	Format        string `yaml:"format" envconfig:"FORMAT"` // text or json
	FileEnabled   bool   `yaml:"file_enabled" envconfig:"FILE_ENABLED"`
	FileDir       string `yaml:"file_dir" envconfig:"FILE_DIR"`
	FileMaxAgeDay int    `yaml:"file_max_age_days" envconfig:"FILE_MAX_AGE_DAYS"`
}

var (
	settingsMu       sync.RWMutex
	consoleLevel     = ParseLogLevel(EnvDefaultString("LOG_LEVEL", "debug"))
	consoleFormat    = normalizeFormat(EnvDefaultString("CONSOLE_LOG_FORMAT", "text"))
	consoleOut       io.Writer = os.Stdout
	fileLogEnabled   = EnvDefaultBool("FILE_LOG_ENABLED", false)
	fileLogDir       = "logs"
	fileLogMaxAgeDay = 7
	loggerRegistryMu sync.RWMutex
	loggerRegistry   = map[string]*logrus.Logger{}
)

func normalizeFormat(format string) string {
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return "json"
	}
	return "text"
}

// Configure applies cfg to loggers created afterwards and re-levels the
// loggers that already exist.
func Configure(cfg LogConfig) {
	settingsMu.Lock()
	if cfg.Level != "" {
		consoleLevel = ParseLogLevel(cfg.Level)
	}
	if cfg.Format != "" {
		consoleFormat = normalizeFormat(cfg.Format)
	}
	fileLogEnabled = cfg.FileEnabled
	if cfg.FileDir != "" {
		fileLogDir = cfg.FileDir
	}
	if cfg.FileMaxAgeDay > 0 {
		fileLogMaxAgeDay = cfg.FileMaxAgeDay
	}
	level := consoleLevel
	settingsMu.Unlock()
	SetAllLoggersLevel(level)
}

// SetConsoleOutput redirects console output, mostly for tests.
func SetConsoleOutput(w io.Writer) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	consoleOut = w
}

func ParseLogLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "info", "":
		return logrus.InfoLevel
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

func RegisterLogger(name string, l *logrus.Logger) {
	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	loggerRegistry[name] = l
}

func SetAllLoggersLevel(lvl logrus.Level) {
	loggerRegistryMu.RLock()
	for _, lg := range loggerRegistry {
		lg.SetLevel(lvl)
	}
	loggerRegistryMu.RUnlock()
	logrus.SetLevel(lvl)
}

// SetLoggerLevel changes the level of one named logger. It reports false
// when no logger has that name.
func SetLoggerLevel(name string, lvlStr string) bool {
	loggerRegistryMu.RLock()
	lg, ok := loggerRegistry[name]
	loggerRegistryMu.RUnlock()
	if !ok {
		return false
	}
	lg.SetLevel(ParseLogLevel(lvlStr))
	return true
}

// NewLogger returns the logger registered under name, creating it on first
// use. Output goes through hooks, so the logger's own writer is discarded.
func NewLogger(name string) *logrus.Logger {
	loggerRegistryMu.RLock()
	existing, ok := loggerRegistry[name]
	loggerRegistryMu.RUnlock()
	if ok {
		return existing
	}

	settingsMu.RLock()
	level, format, out := consoleLevel, consoleFormat, consoleOut
	withFile, dir, maxAge := fileLogEnabled, fileLogDir, fileLogMaxAgeDay
	settingsMu.RUnlock()

	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(level)
	l.SetReportCaller(true)
	l.SetFormatter(newFormatter(name, format, true))
	l.AddHook(&writerHook{writer: out, formatter: l.Formatter})
	if withFile {
		if w, err := newDailyWriter(dir, name, maxAge); err == nil {
			l.AddHook(&writerHook{writer: w, formatter: newFormatter(name, format, false)})
		}
	}
	RegisterLogger(name, l)
	return l
}

func newFormatter(name, format string, color bool) logrus.Formatter {
	if format == "json" {
		return &JSONLogFormatter{LoggerName: name, TimestampFormat: timestampFormat}
	}
	return &Log4jColorFormatter{
		LoggerName:      name,
		TimestampFormat: timestampFormat,
		Color:           color,
		NameWidth:       10,
		CallerWidth:     28,
	}
}

type writerHook struct {
	mu        sync.Mutex
	writer    io.Writer
	formatter logrus.Formatter
}

func (h *writerHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *writerHook) Fire(e *logrus.Entry) error {
	b, err := h.formatter.Format(e)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.writer.Write(b)
	return err
}

// dailyWriter appends to <dir>/<name>-<date>.log and removes files older
// than maxAgeDays when the date rolls over.
type dailyWriter struct {
	dir        string
	name       string
	maxAgeDays int
	mu         sync.Mutex
	curDate    string
	file       *os.File
}

func newDailyWriter(dir, name string, maxAgeDays int) (*dailyWriter, error) {
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &dailyWriter{dir: dir, name: strings.ToLower(name), maxAgeDays: maxAgeDays}, nil
}

func (w *dailyWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	date := time.Now().Format("2006-01-02")
	if w.file == nil || w.curDate != date {
		if w.file != nil {
			_ = w.file.Close()
		}
		f, err := os.OpenFile(filepath.Join(w.dir, w.name+"-"+date+".log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return 0, err
		}
		w.file, w.curDate = f, date
		w.cleanup()
	}
	return w.file.Write(p)
}

func (w *dailyWriter) cleanup() {
	if w.maxAgeDays <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -w.maxAgeDays).Format("2006-01-02")
	matches, err := filepath.Glob(filepath.Join(w.dir, w.name+"-*.log"))
	if err != nil {
		return
	}
	for _, path := range matches {
		date := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), w.name+"-"), ".log")
		if date < cutoff {
			_ = os.Remove(path)
		}
	}
}

// Log4jColorFormatter renders "time LEVEL pid --- [name] caller : msg k=v".
type Log4jColorFormatter struct {
	LoggerName      string
	TimestampFormat string
	Color           bool
	NameWidth       int
	CallerWidth     int
}

func (f *Log4jColorFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	ts := entry.Time.Format(f.TimestampFormat)
	lvl := padLeft(strings.ToUpper(entry.Level.String()), 7)
	pid := fmt.Sprintf("%-6d", os.Getpid())
	name := padLeft(limitRunes(f.LoggerName, f.NameWidth), f.NameWidth)
	caller := ""
	if entry.Caller != nil {
		caller = padLeft(limitRunes(shortCaller(entry.Caller.File, entry.Caller.Line), f.CallerWidth), f.CallerWidth)
	}
	if f.Color {
		lvl = colorLevel(lvl, entry.Level)
		pid = colorWrap(pid, ansiMagenta)
		name = colorWrap(name, ansiCyan)
		caller = colorWrap(caller, ansiFaint)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s %s --- [%s] %s : %s", ts, lvl, pid, name, caller, entry.Message)
	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, entry.Data[k])
	}
	sb.WriteByte('\n')
	return []byte(sb.String()), nil
}

// JSONLogFormatter renders one JSON object per line. HTTP access fields
// are lifted to the top level.
type JSONLogFormatter struct {
	LoggerName      string
	TimestampFormat string
}

type jsonLogRecord struct {
	Time        string                 `json:"time"`
	Level       string                 `json:"level"`
	Logger      string                 `json:"logger"`
	Caller      string                 `json:"caller,omitempty"`
	Message     string                 `json:"message"`
	RequestID   string                 `json:"request_id,omitempty"`
	ClientIP    string                 `json:"client_ip,omitempty"`
	Method      string                 `json:"method,omitempty"`
	Path        string                 `json:"path,omitempty"`
	StatusCode  int                    `json:"status_code,omitempty"`
	LatencyTime string                 `json:"latency_time,omitempty"`
	Fields      map[string]interface{} `json:"fields,omitempty"`
}

func (f *JSONLogFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	rec := jsonLogRecord{
		Time:    entry.Time.Format(f.TimestampFormat),
		Level:   strings.ToLower(entry.Level.String()),
		Logger:  f.LoggerName,
		Message: entry.Message,
	}
	if entry.Caller != nil {
		rec.Caller = shortCaller(entry.Caller.File, entry.Caller.Line)
	}

	extra := make(map[string]interface{}, len(entry.Data))
	for k, v := range entry.Data {
		s, isString := v.(string)
		switch {
		case k == "request_id" && isString:
			rec.RequestID = s
		case k == "client_ip" && isString:
			rec.ClientIP = s
		case k == "req_method" && isString:
			rec.Method = s
		case k == "req_uri" && isString:
			rec.Path = s
		case k == "latency_time" && isString:
			rec.LatencyTime = s
		case k == "status_code":
			if n, ok := v.(int); ok {
				rec.StatusCode = n
			} else {
				extra[k] = v
			}
		case k == logrus.ErrorKey:
			if err, ok := v.(error); ok {
				extra[k] = err.Error()
			} else {
				extra[k] = v
			}
		default:
			extra[k] = v
		}
	}
	if len(extra) > 0 {
		rec.Fields = extra
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

const (
	ansiReset   = "\x1b[0m"
	ansiFaint   = "\x1b[2m"
	ansiRed     = "\x1b[31m"
	ansiYellow  = "\x1b[33m"
	ansiGreen   = "\x1b[32m"
	ansiBlue    = "\x1b[34m"
	ansiMagenta = "\x1b[35m"
	ansiCyan    = "\x1b[36m"
)

func colorWrap(s, code string) string { return code + s + ansiReset }

func colorLevel(s string, level logrus.Level) string {
	switch level {
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return colorWrap(s, ansiRed)
	case logrus.WarnLevel:
		return colorWrap(s, ansiYellow)
	case logrus.InfoLevel:
		return colorWrap(s, ansiGreen)
	case logrus.DebugLevel:
		return colorWrap(s, ansiBlue)
	default:
		return colorWrap(s, ansiMagenta)
	}
}

func padLeft(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return strings.Repeat(" ", width-n) + s
}

func limitRunes(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

// shortCaller keeps the package directory and file name.
func shortCaller(file string, line int) string {
	parts := strings.Split(filepath.ToSlash(file), "/")
	if len(parts) > 2 {
		parts = parts[len(parts)-2:]
	}
	return strings.Join(parts, "/") + ":" + strconv.Itoa(line)
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
