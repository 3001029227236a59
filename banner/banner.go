// Package banner prints the startup banner and fatal CLI errors in color.
// Grounded on scon/cmd/scli/cmd/utils.go's color.New(color.FgRed).FprintlnFunc
// pattern for error output.
package banner

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Listening prints the one-line "server is up" banner a foreground daemon
// shows on its controlling terminal.
func Listening(addrs []string) {
	green := color.New(color.FgGreen, color.Bold)
	for _, addr := range addrs {
		green.Printf("webserv listening on %s\n", addr)
	}
}

// Fatal prints err in red to stderr and exits 1, matching §6's "exit 1 on
// usage error or init failure".
func Fatal(err error) {
	red := color.New(color.FgRed).FprintlnFunc()
	red(os.Stderr, fmt.Sprintf("webserv: %v", err))
	os.Exit(1)
}
