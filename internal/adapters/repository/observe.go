package repository

import (
	"time"

	"github.com/okian/shoplist/pkg/metrics"
)

// observe records latency for a store operation and, when *errp is set, a
// failure labelled by reason. Use as: defer observe(backend, op, time.Now(), &err).
func observe(backend, operation string, start time.Time, errp *error) {
	ms := float64(time.Since(start).Microseconds()) / 1000
	metrics.RecordRepositoryLatency(backend, operation, ms)
	if errp != nil && *errp != nil {
		metrics.RecordRepositoryError(backend, operation, reason(*errp))
	}
}
