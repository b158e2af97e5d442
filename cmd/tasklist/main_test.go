package main

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tasklist/tasklist/internal/config"
	"github.com/tasklist/tasklist/internal/session"
)

func TestRedactURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"postgres with password", "postgres://app:s3cret@db:5432/tasklist", "postgres://app@db:5432/tasklist"},
		{"redis password only", "redis://:s3cret@cache:6379/0", "redis://redacted@cache:6379/0"},
		{"no credentials", "redis://cache:6379", "redis://cache:6379"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := redactURL(tt.in); got != tt.want {
				t.Errorf("redactURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeError(t *testing.T) {
	dsn := "postgres://app:s3cret@db:5432/tasklist"
	err := errors.New("dial " + dsn + " failed: password=s3cret rejected")

	got := sanitizeError(err, dsn)
	if strings.Contains(got, "s3cret") {
		t.Errorf("secret leaked: %s", got)
	}
	if sanitizeError(nil) != "" {
		t.Error("nil error should sanitize to empty string")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLogger_Format(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	newLogger(&buf, "json", "info").Info("hello")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("expected JSON output, got %q", buf.String())
	}

	buf.Reset()
	newLogger(&buf, "text", "info").Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug line written at info level: %q", buf.String())
	}
}

func TestInitLogger_WritesRotatingFile(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	path := filepath.Join(t.TempDir(), "tasklist.log")
	logger, closeLog := initLogger(&config.Config{
		LogFile:       path,
		LogFormat:     "json",
		LogLevel:      "info",
		LogMaxSizeMB:  1,
		LogMaxBackups: 1,
		LogMaxAgeDays: 1,
	})
	logger.Info("written to file")
	closeLog()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("log file missing entry: %q", data)
	}
}

func TestNewSessionStore(t *testing.T) {
	cookie := newSessionStore(&config.Config{
		SessionBackend: config.SessionBackendCookie,
		SessionSecret:  strings.Repeat("s", 32),
	}, nil)
	if _, ok := cookie.(*session.CookieStore); !ok {
		t.Errorf("expected CookieStore, got %T", cookie)
	}

	redis := newSessionStore(&config.Config{SessionBackend: config.SessionBackendRedis}, nil)
	if _, ok := redis.(*session.RedisStore); !ok {
		t.Errorf("expected RedisStore, got %T", redis)
	}
}
