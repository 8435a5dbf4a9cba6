// Package logger configures the process-wide logrus instance with optional
// rotating file output.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the global log instance. Init must be called before use; the
// zero-config default logs Info and above to stderr.
var Logger = logrus.New()

// Config holds logging configuration.
type Config struct {
	Level      string // debug, info, warn, error
	OutputFile string // log file path; empty means console only
	MaxSize    int    // max size of a log file in MB before rotation
	MaxBackups int    // number of rotated files to keep
	MaxAge     int    // days to keep rotated files
	Compress   bool   // gzip rotated files
}

// Init initializes the logging system.
func Init(config Config) {
	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)

	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "06-01-02 15:04:05",
	})

	if config.OutputFile == "" {
		Logger.SetOutput(os.Stderr)
		return
	}

	rotator := &lumberjack.Logger{
		Filename:   config.OutputFile,
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   config.Compress,
	}
	Logger.SetOutput(io.MultiWriter(os.Stderr, rotator))
}

// Debugf logs a debug message.
func Debugf(format string, args ...any) { Logger.Debugf(format, args...) }

// Infof logs an info message.
func Infof(format string, args ...any) { Logger.Infof(format, args...) }

// Warnf logs a warning message.
func Warnf(format string, args ...any) { Logger.Warnf(format, args...) }

// Errorf logs an error message.
func Errorf(format string, args ...any) { Logger.Errorf(format, args...) }
