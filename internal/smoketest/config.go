package smoketest

import "time"

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL string        // Base URL of the service
	Seed    []string      // Names created before the scenarios run
	Load    int           // Create/delete round trips in the load phase; 0 skips it
	Workers int           // Concurrent workers for the load phase
	Timeout time.Duration // HTTP request timeout
	Cleanup bool          // Delete everything the run created
	Verbose bool          // Log every check
}

// DefaultSeed is the list the scenarios expect to find.
var DefaultSeed = []string{"Broad beans", "Tomatoes", "Peppers"}

// Item mirrors the server's item representation.
type Item struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// ErrorBody mirrors the server's error representation.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Check is the outcome of one scenario.
type Check struct {
	Name     string
	Passed   bool
	Detail   string
	Duration time.Duration
}

// Report summarizes a smoke run.
type Report struct {
	Checks     []Check
	LoadOK     int
	LoadFailed int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}

// Passed reports whether every check and every load round trip succeeded.
func (r *Report) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return r.LoadFailed == 0
}

// Failed returns the failing checks.
func (r *Report) Failed() []Check {
	var out []Check
	for _, c := range r.Checks {
		if !c.Passed {
			out = append(out, c)
		}
	}
	return out
}
