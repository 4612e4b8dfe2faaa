package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/autoreflex/autoreflex/internal/models"
)

// LogSink is the diagnostic logger plus the file it writes to.
type LogSink struct {
	Logger *logrus.Logger
	file   *os.File
}

// Close flushes and closes the underlying log file.
func (s *LogSink) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// Entry returns a logger scoped to one session.
func (s *LogSink) Entry(sessionID string) *logrus.Entry {
	return s.Logger.WithField("session_id", sessionID)
}

// NewLogger creates a JSON logrus logger writing to w.
func NewLogger(w io.Writer, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	logger.SetOutput(w)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// OpenLog sets up file logging from settings. The terminal belongs to the
// dashboard, so diagnostics always go to a file.
func OpenLog(settings *models.LoggingConfig) (*LogSink, error) {
	path := settings.File
	if path == "" {
		var err error
		path, err = DefaultLogFile()
		if err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return &LogSink{Logger: NewLogger(f, settings.Level), file: f}, nil
}

// DiscardLogger returns an entry that drops everything.
func DiscardLogger() *logrus.Entry {
	return logrus.NewEntry(NewLogger(io.Discard, "panic"))
}
