// retry.go retries store writes that fail with transient SQLite errors.
//
// A Recorder flushing batches while the CLI reads the same database from
// another process can hit SQLITE_BUSY, SQLITE_LOCKED or IOERR_SHORT_READ
// (522) in WAL mode. busy_timeout absorbs most of them at the connection
// level; the rest are retried here with capped exponential backoff and
// jitter.
package store

import (
	"math/rand"
	"strings"
	"time"
)

type retryPolicy struct {
	attempts int // retries after the first try
	base     time.Duration
	ceiling  time.Duration
}

var writePolicy = retryPolicy{
	attempts: 3,
	base:     50 * time.Millisecond,
	ceiling:  500 * time.Millisecond,
}

// transientMarkers are substrings modernc.org/sqlite puts in the error text
// of retryable failures, by name and by numeric code.
var transientMarkers = []string{
	"SQLITE_BUSY",
	"SQLITE_LOCKED",
	"IOERR_SHORT_READ",
	"database is locked",
	"database table is locked",
	"(5)",
	"(6)",
	"(522)",
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// withRetry runs op until it succeeds, fails permanently, or the policy is
// exhausted. The last error is returned.
func withRetry(p retryPolicy, op func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = op(); err == nil || !isTransient(err) {
			return err
		}
		if attempt == p.attempts {
			return err
		}
		time.Sleep(p.backoff(attempt))
	}
}

// backoff is base*2^attempt capped at ceiling, plus up to base of jitter.
func (p retryPolicy) backoff(attempt int) time.Duration {
	d := p.base << uint(attempt)
	if d > p.ceiling {
		d = p.ceiling
	}
	return d + time.Duration(rand.Int63n(int64(p.base)))
}
