package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type ServerLogger struct {
	file       *os.File
	logger     *log.Logger
	multiWrite io.Writer
}

// NewServerLogger writes to a timestamped file under logsDir and to
// stdout. One file per process run.
func NewServerLogger(logsDir, name string) (*ServerLogger, error) {
	sanitized := strings.ReplaceAll(strings.ToLower(name), " ", "_")

	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logPath := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", sanitized, timestamp))

	file, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	multiWrite := io.MultiWriter(os.Stdout, file)
	logger := log.New(multiWrite, "", log.Ldate|log.Ltime|log.Lmicroseconds)

	return &ServerLogger{
		file:       file,
		logger:     logger,
		multiWrite: multiWrite,
	}, nil
}

func (sl *ServerLogger) LogInfo(format string, v ...interface{}) {
	sl.log("INFO", format, v...)
}

func (sl *ServerLogger) LogError(format string, v ...interface{}) {
	sl.log("ERROR", format, v...)
}

func (sl *ServerLogger) LogDebug(format string, v ...interface{}) {
	sl.log("DEBUG", format, v...)
}

func (sl *ServerLogger) log(level string, format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	sl.logger.Printf("[%s] %s", level, message)
}

func (sl *ServerLogger) Close() error {
	return sl.file.Close()
}
