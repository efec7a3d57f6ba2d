package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "webapi version %s\n", info.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Built: %s\n", info.BuildTime)
		},
	}
}
