// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rlmon",
	Short: "rlmon - Radio link telemetry monitor for point-to-point modem pairs",
	Long: `rlmon is a ground-station sidecar that monitors the health of a
point-to-point telemetry radio link (SiK/3DR style modem pairs).

It consumes decoded radio status reports from a transport channel, keeps the
latest link-quality sample, classifies link health (RSSI thresholds, dBm
conversion), publishes each accepted sample to one or more sinks (console,
Kafka, MQTT) and periodically emits operator-facing diagnostics.`,
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "/etc/rlmon/config.yml",
		"config file path")

	rootCmd.AddCommand(startCmd)
}
