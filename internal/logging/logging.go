// Package logging provides structured logging configuration.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration options.
type Config struct {
	Level  string // debug|info|warn|error
	Format string // json|console
}

// New creates a new configured zap logger.
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.Set(strings.ToLower(cfg.Level)); err != nil {
			return nil, err
		}
	}

	var zcfg zap.Config
	if strings.ToLower(cfg.Format) == "json" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.EncoderConfig.TimeKey = "ts"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zcfg.Build(zap.AddCaller())
	if err != nil {
		return nil, err
	}

	return logger.With(zap.String("service", "citybus")), nil
}

// Sync flushes any buffered log entries.
func Sync(logger *zap.Logger) {
	_ = logger.Sync()
}

// FromEnv creates a Config from environment variables. The CLI logs to the
// console by default since stdout carries command output.
func FromEnv() Config {
	return Config{
		Level:  getenv("CITYBUS_LOG_LEVEL", "info"),
		Format: getenv("CITYBUS_LOG_FORMAT", "console"),
	}
}

func getenv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// DBName returns a zap field for a database archive name.
func DBName(name string) zap.Field { return zap.String("db", name) }

// City returns a zap field for a city slug.
func City(city string) zap.Field { return zap.String("city", city) }

// Version returns a zap field for a server-supplied database version.
func Version(v string) zap.Field { return zap.String("current_version", v) }

// URL returns a zap field for a request URL.
func URL(u string) zap.Field { return zap.String("url", u) }

// Method returns a zap field for an HTTP method.
func Method(method string) zap.Field { return zap.String("method", method) }

// Status returns a zap field for an HTTP status code.
func Status(code int) zap.Field { return zap.Int("status", code) }

// Path returns a zap field for a filesystem path.
func Path(path string) zap.Field { return zap.String("path", path) }

// TaskID returns a zap field for an extraction task.
func TaskID(id string) zap.Field { return zap.String("task_id", id) }

// Routes returns a zap field for a route set.
func Routes(routes []int) zap.Field { return zap.Ints("routes", routes) }
