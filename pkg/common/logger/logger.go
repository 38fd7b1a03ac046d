package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Log is usable before Init so library packages can log from tests.
var Log = logrus.New()

// Init configures the global logger from LOG_LEVEL and LOG_FORMAT.
func Init() {
	Log = Configure(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	Log.SetOutput(os.Stdout)
}

// Configure builds a logger. Unknown levels fall back to info; format "text"
// selects the human readable formatter, anything else JSON.
func Configure(level, format string) *logrus.Logger {
	l := logrus.New()
	if strings.EqualFold(format, "text") {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: timestampFormat})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: timestampFormat})
	}

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	l.SetLevel(logLevel)
	return l
}

// SetOutput redirects the global logger, mostly for tests.
func SetOutput(w io.Writer) {
	Log.SetOutput(w)
}

func WithField(key string, value interface{}) *logrus.Entry {
	return Log.WithField(key, value)
}

func WithFields(fields logrus.Fields) *logrus.Entry {
	return Log.WithFields(fields)
}
