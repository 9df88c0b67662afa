package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/shoplist/internal/smoketest"
)

// Default configuration constants.
const (
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTestTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:8080", "Base URL of the service")
		load    = flag.Int("load", 0, "Concurrent create/delete round trips after the checks")
		workers = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout = flag.Duration("timeout", smoketest.DefaultTimeout, "HTTP request timeout")
		keep    = flag.Bool("keep", false, "Keep the items the run created")
		logFile = flag.String("log", "", "Also write log output to this file")
		verbose = flag.Bool("verbose", false, "Log every check")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		smoketest.ShowHelp(os.Stdout)
		return
	}

	closeLog, err := smoketest.SetupLogging(*logFile, *verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to setup logging:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)

	report, err := smoketest.Run(ctx, &smoketest.Config{
		BaseURL: *baseURL,
		Load:    *load,
		Workers: *workers,
		Timeout: *timeout,
		Cleanup: !*keep,
		Verbose: *verbose,
	})
	stop()
	cancel()
	_ = closeLog()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Smoke test failed:", err)
		if report != nil {
			for _, c := range report.Failed() {
				fmt.Fprintf(os.Stderr, "  FAIL %s: %s\n", c.Name, c.Detail)
			}
		}
		os.Exit(1)
	}
}
