package smoketest

import "time"

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	DefaultTimeout       = 10 * time.Second
	PercentageMultiplier = 100
)

// unknownID is well formed but never issued by the server.
const unknownID = "000000000000000000000000"
