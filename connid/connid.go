// Package connid mints per-connection correlation IDs used in log lines so
// a single connection's READING_REQUEST/SENDING_RESPONSE/DONE transitions
// can be traced across interleaved log output. No teacher file exercises
// github.com/oklog/ulid/v2 directly (it rides in the teacher's go.mod only
// transitively); wired here via the library's own documented construction
// pattern (monotonic entropy seeded from a crypto source).
package connid

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns a new, lexically sortable connection ID.
func New() string {
	mu.Lock()
	defer mu.Unlock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	return id.String()
}
