package cmd

import (
	"github.com/spf13/cobra"

	"groundlink.io/rlmon/internal/daemon"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the radio link monitor",
	Long: `
Start the rlmon daemon in the foreground.

Examples:
  rlmon start                      # Start with the default config path
  rlmon start -c /etc/rlmon/dev.yml
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := daemon.New(configFile)
		if err != nil {
			return err
		}
		return d.Run()
	},
}
