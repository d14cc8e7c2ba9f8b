// logger/logger.go
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var appLogger *logrus.Logger

// Init configures the process-wide logger. Level, format and file output
// are driven by LOG_LEVEL, LOG_FORMAT and LOG_FILE environment variables.
func Init() {
	appLogger = logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL")))
	if err != nil {
		level = logrus.InfoLevel
	}
	appLogger.SetLevel(level)

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		appLogger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		appLogger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	// When LOG_FILE is set, write to stdout and a size-rotated file
	if logFile := os.Getenv("LOG_FILE"); logFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    100, // MB
			MaxBackups: 7,
			MaxAge:     7, // days
			Compress:   true,
		}
		appLogger.SetOutput(io.MultiWriter(os.Stdout, rotator))
	} else {
		appLogger.SetOutput(os.Stdout)
	}
}

// Get returns the shared application logger.
func Get() *logrus.Logger {
	if appLogger == nil {
		Init()
	}
	return appLogger
}

// WithField is a shortcut for Get().WithField.
func WithField(key string, value interface{}) *logrus.Entry {
	return Get().WithField(key, value)
}

// WithFields is a shortcut for Get().WithFields.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Get().WithFields(fields)
}
