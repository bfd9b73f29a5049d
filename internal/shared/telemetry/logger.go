package telemetry

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var logger = newLogger(os.Stdout)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "ts",
		},
	})
	return l
}

// SetOutput redirects log lines, mainly for tests.
func SetOutput(out io.Writer) {
	logger.SetOutput(out)
}

// SetLevel sets the minimum level; unknown values fall back to info.
func SetLevel(level string) {
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
}

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	logger.WithFields(logrus.Fields(fields)).Info(msg)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	logger.WithFields(logrus.Fields(fields)).Warn(msg)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	logger.WithFields(logrus.Fields(fields)).Error(msg)
}
