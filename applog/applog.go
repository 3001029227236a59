// Package applog configures the process-wide structured logger. Grounded
// on scon/main.go's runContainerManager debug-mode setup.
package applog

import (
	"github.com/sirupsen/logrus"
)

// Setup installs a TextFormatter with full timestamps and, when debug is
// true, drops the level to Debug so per-connection tracing lines show up.
func Setup(debug bool) {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "01-02 15:04:05",
	})
	if debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

// AccessLog emits one structured line per completed response, per
// SPEC_FULL.md's supplemented "access log line per response" feature.
func AccessLog(connID, method, uri string, status int, bytesOut int) {
	logrus.WithFields(logrus.Fields{
		"conn":   connID,
		"method": method,
		"uri":    uri,
		"status": status,
		"bytes":  bytesOut,
	}).Info("request")
}
