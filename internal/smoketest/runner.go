// Package smoketest drives a running shopping list server through its
// documented behaviour and reports which checks passed.
package smoketest

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/shoplist/pkg/logger"
)

// ErrChecksFailed is returned by Run when at least one check failed.
var ErrChecksFailed = errors.New("smoke checks failed")

// Run executes the complete smoke test against config.BaseURL.
func Run(ctx context.Context, config *Config) (*Report, error) {
	log := logger.Named("smoketest")
	report := &Report{StartTime: time.Now()}

	seed := config.Seed
	if len(seed) == 0 {
		seed = DefaultSeed
	}

	log.Info(ctx, "starting shopping list smoke test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("seed", len(seed)),
		logger.Int("load", config.Load),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout))

	client := NewClient(config.BaseURL, config.Timeout)
	s := &run{client: client, created: make(map[string]Item)}

	// Step 1: Check service health
	if err := client.Health(ctx); err != nil {
		return report, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Seed the list
	for _, name := range seed {
		it, err := client.Create(ctx, name)
		if err != nil {
			cleanup(ctx, log, s)
			return report, fmt.Errorf("seeding failed: %w", err)
		}
		s.seeded = append(s.seeded, it)
		s.track(it)
	}

	// Step 3: Run the scenarios in order
	for _, sc := range scenarios {
		report.Checks = append(report.Checks, runScenario(ctx, log, config, s, sc))
	}

	// Step 4: Concurrent create/delete load
	if config.Load > 0 {
		report.LoadOK, report.LoadFailed = runLoad(ctx, log, config, client)
	}

	// Step 5: Remove what the run created
	if config.Cleanup {
		cleanup(ctx, log, s)
	}

	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)
	displayFinalStats(ctx, log, report)

	if !report.Passed() {
		return report, ErrChecksFailed
	}
	log.Info(ctx, "smoke test completed successfully")
	return report, nil
}

func runScenario(ctx context.Context, log logger.Logger, config *Config, s *run, sc scenario) Check {
	start := time.Now()
	err := sc.fn(ctx, s)
	c := Check{Name: sc.name, Passed: err == nil, Duration: time.Since(start)}
	if err != nil {
		c.Detail = err.Error()
		log.Warn(ctx, "check failed", logger.String("check", sc.name), logger.Error(err))
	} else if config.Verbose {
		log.Info(ctx, "check passed", logger.String("check", sc.name), logger.Duration("duration", c.Duration))
	}
	return c
}

// runLoad creates and deletes config.Load items using a worker pool.
func runLoad(ctx context.Context, log logger.Logger, config *Config, client *Client) (int, int) {
	workers := config.Workers
	if workers <= 0 {
		workers = 1
	}
	log.Info(ctx, "running load phase", logger.Int("roundTrips", config.Load), logger.Int("workers", workers))

	var ok, failed int64
	jobs := make(chan int, workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range jobs {
				if err := roundTrip(ctx, client, n); err != nil {
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						log.Warn(ctx, "load round trip failed", logger.Int("n", n), logger.Error(err))
					}
					continue
				}
				atomic.AddInt64(&ok, 1)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for n := 0; n < config.Load; n++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- n:
			}
		}
	}()

	wg.Wait()
	return int(atomic.LoadInt64(&ok)), int(atomic.LoadInt64(&failed))
}

func roundTrip(ctx context.Context, client *Client, n int) error {
	it, err := client.Create(ctx, "load-"+strconv.Itoa(n))
	if err != nil {
		return err
	}
	return client.Delete(ctx, it.ID)
}

func cleanup(ctx context.Context, log logger.Logger, s *run) {
	for id := range s.created {
		if err := s.client.Delete(ctx, id); err != nil {
			log.Warn(ctx, "cleanup failed", logger.String("id", id), logger.Error(err))
			continue
		}
		s.forget(id)
	}
}

// displayFinalStats logs the final test statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, report *Report) {
	passed := len(report.Checks) - len(report.Failed())
	var passRate float64
	if len(report.Checks) > 0 {
		passRate = float64(passed) / float64(len(report.Checks)) * PercentageMultiplier
	}

	log.Info(ctx, "final statistics",
		logger.Int("checks", len(report.Checks)),
		logger.Int("passed", passed),
		logger.Int("failed", len(report.Checks)-passed),
		logger.Int("loadOK", report.LoadOK),
		logger.Int("loadFailed", report.LoadFailed),
		logger.Duration("duration", report.Duration),
		logger.Float64("passRate", passRate))
}
