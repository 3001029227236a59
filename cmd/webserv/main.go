// Command webserv is the process entry point: CLI argument parsing,
// config loading (config.Load picks the dialect), logging/Sentry/ledger
// setup, and the top-level run/exit-code contract of §6. Signal handling
// lives in supervisor.Run. Grounded on scon/cmd/scli's cobra root command shape
// (cmd/root.go) and scon/main.go's runContainerManager for the
// logging/Sentry/signal wiring around the long-running server loop.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/webserv/webserv/applog"
	"github.com/webserv/webserv/banner"
	"github.com/webserv/webserv/config"
	"github.com/webserv/webserv/crashreport"
	"github.com/webserv/webserv/supervisor"
	"github.com/webserv/webserv/upload"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "webserv <config_file>",
	Short: "A single-threaded, event-driven HTTP/1.1 origin server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args[0])
	},
}

func init() {
	rootCmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func run(configPath string) error {
	applog.Setup(debug)
	flush := crashreport.Init()
	defer flush()

	file, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ledgerPath := filepath.Join(os.TempDir(), "webserv-uploads.db")
	ledger, err := upload.OpenLedger(ledgerPath)
	if err != nil {
		return fmt.Errorf("open upload ledger: %w", err)
	}
	defer ledger.Close()

	sup, err := supervisor.New(file, ledger)
	if err != nil {
		return fmt.Errorf("init server: %w", err)
	}

	banner.Listening(sup.ListenAddrs())
	return sup.Run()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		banner.Fatal(err)
	}
}
