// Command journal-gatewayd serves the host's systemd journal over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanvugt/journal-gatewayd/internal/config"
	"github.com/vanvugt/journal-gatewayd/internal/httpapi"
	"github.com/vanvugt/journal-gatewayd/internal/journal"
	"github.com/vanvugt/journal-gatewayd/internal/osinfo"
	"github.com/vanvugt/journal-gatewayd/internal/version"
)

func main() {
	cfg := config.Default()
	var configPath string
	var showVersion bool

	root := &cobra.Command{
		Use:   "journal-gatewayd",
		Short: "Serve the systemd journal over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Println(version.Version)
				return nil
			}

			if configPath != "" {
				fileCfg, err := config.LoadFile(configPath)
				if err != nil {
					return err
				}
				cfg = fileCfg
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			configureLogging(cfg.Verbose)

			deps := httpapi.Deps{
				Open:     journal.Open,
				BootID:   osinfo.BootID,
				Identity: machineIdentity(),
			}

			return httpapi.Serve(cfg, httpapi.NewRouter(deps))
		},
	}

	flags := root.Flags()
	flags.IntVar(&cfg.Port, "port", cfg.Port, "TCP port to listen on")
	flags.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable debug logging")
	flags.StringVar(&cfg.Key, "key", cfg.Key, "path to a TLS private key (requires --cert)")
	flags.StringVar(&cfg.Cert, "cert", cfg.Cert, "path to a TLS certificate (requires --key)")
	flags.StringVar(&configPath, "config", "", "path to a JSON config file")
	flags.BoolVar(&showVersion, "version", false, "print the version and exit")

	if err := root.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func machineIdentity() httpapi.MachineIdentity {
	return httpapi.MachineIdentity{
		MachineID:      osinfo.MachineID,
		BootID:         osinfo.BootID,
		Hostname:       osinfo.Hostname,
		OSPrettyName:   osinfo.OSPrettyName,
		Virtualization: osinfo.DefaultVirtualization,
	}
}

// configureLogging picks a text formatter for an interactive terminal and
// a JSON formatter otherwise, so piped/aggregated output stays structured.
func configureLogging(verbose bool) {
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
