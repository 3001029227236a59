// Package crashreport optionally wires crash and 500-response reporting to
// Sentry. Grounded on macvmgr/main.go's runVmManager sentry.Init/Recover
// pattern; gated on SENTRY_DSN rather than a hardcoded DSN, since this
// project has no embedded ingest key to ship.
package crashreport

import (
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

const flushTimeout = 2 * time.Second

// Init sets up Sentry if SENTRY_DSN is set in the environment; it is a
// no-op otherwise. Returns a flush function the caller should defer.
func Init() func() {
	dsn := os.Getenv("SENTRY_DSN")
	if dsn == "" {
		return func() {}
	}
	if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
		logrus.WithError(err).Error("failed to init sentry")
		return func() {}
	}
	return func() { sentry.Flush(flushTimeout) }
}

// ReportPanic forwards a recovered panic value to Sentry's current hub.
// Called from supervisor.Supervisor.pollOnce's deferred recover(), which
// wraps each reactor iteration so a handler panic doesn't take the process
// down.
func ReportPanic(recovered any) {
	sentry.CurrentHub().Recover(recovered)
}

// Report500 captures an internal-error response cause as a Sentry exception,
// so CGI/filesystem failures surfacing as 500s are visible without a panic.
func Report500(err error) {
	if err == nil {
		return
	}
	sentry.CaptureException(err)
}
