package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrorLog writes one file per unhandled fault so it can be linked from the
// user's message log
type ErrorLog struct {
	dir string
	now func() time.Time
}

// NewErrorLog creates an error log rooted at dir
func NewErrorLog(dir string) *ErrorLog {
	return &ErrorLog{dir: dir, now: time.Now}
}

// Record writes the fault with its stack and returns the file path and a fresh error id.
// Faults of unknown users go to <dir>/errors_<timestamp>.log.
func (l *ErrorLog) Record(userID int64, fault error, stack []byte) (string, string, error) {
	now := l.now()
	errorID := uuid.NewString()

	var path string
	if userID != 0 {
		uid := strconv.FormatInt(userID, 10)
		path = filepath.Join(l.dir, uid, fmt.Sprintf("%s_%d.log", uid, now.Unix()))
	} else {
		path = filepath.Join(l.dir, fmt.Sprintf("errors_%s.log", now.Format("20060102_150405")))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errorID, fmt.Errorf("failed to create error log dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return "", errorID, fmt.Errorf("failed to open error log: %w", err)
	}
	defer f.Close()

	fileLogger := zerolog.New(f)
	event := fileLogger.Error().
		Time("time", now).
		Str("error_id", errorID).
		Int64("user_id", userID).
		Err(fault)
	if len(stack) > 0 {
		event = event.Str("stack", string(stack))
	}
	event.Msg("Unhandled error")

	return path, errorID, nil
}
