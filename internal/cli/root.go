package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// BuildInfo is stamped into the binary at link time.
type BuildInfo struct {
	Version   string
	BuildTime string
}

var noColorFlag bool

// NewRootCommand assembles the webapi command tree.
func NewRootCommand(info BuildInfo) *cobra.Command {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.BuildTime == "" {
		info.BuildTime = "unknown"
	}

	root := &cobra.Command{
		Use:   "webapi",
		Short: "Issue web API requests and run request plans",
		Long: `webapi sends HTTP requests with preset headers and encoded bodies,
either one at a time from the command line or as a plan of requests
whose outcomes are recorded and published.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if noColorFlag {
				color.NoColor = true
			}
		},
	}
	root.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")

	root.AddCommand(newRequestCommand())
	root.AddCommand(newRunCommand())
	root.AddCommand(newLastCommand())
	root.AddCommand(newVersionCommand(info))
	return root
}
