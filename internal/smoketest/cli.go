package smoketest

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/shoplist/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging initializes the global logger, teeing output to logFile when set.
// The returned func closes the log file.
func SetupLogging(logFile string, verbose bool) (func() error, error) {
	var w io.Writer = os.Stdout
	closer := func() error { return nil }

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, file)
		closer = file.Close
	}

	if err := logger.Init(logger.WithWriter(w)); err != nil {
		_ = closer()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return closer, nil
}

// ShowHelp prints usage information for the smoke tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Shopping List Smoke Test
========================

Seeds a running server and checks list, add, edit and delete behaviour,
including the not-found and missing-name failure cases.

Usage:
  go run ./cmd/smoke [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8080")
  -load int
        Concurrent create/delete round trips after the checks (default 0)
  -workers int
        Number of concurrent workers for the load phase (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 10s)
  -keep
        Keep the items the run created
  -log string
        Also write log output to this file
  -verbose
        Log every check
  -help
        Show this help message

Examples:
  go run ./cmd/smoke -url http://localhost:8080
  go run ./cmd/smoke -load 1000 -workers 16 -verbose
`)
}
