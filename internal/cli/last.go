package cli

import (
	"encoding/json"
	"fmt"

	"github.com/samvad-hq/webapi/internal/config"
	"github.com/samvad-hq/webapi/internal/storage"
	"github.com/spf13/cobra"
)

func newLastCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "last <request-id>",
		Short: "Show the most recent recorded outcome of a planned request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
				OutcomeTTL:      cfg.StorageTTL,
				CleanupInterval: cfg.StorageCleanupInterval,
			})
			if err != nil {
				return fmt.Errorf("init storage: %w", err)
			}
			defer store.Close()

			out, found, err := store.Last(args[0])
			if err != nil {
				return fmt.Errorf("read outcome: %w", err)
			}
			if !found {
				return fmt.Errorf("no recorded outcome for %q", args[0])
			}

			if asJSON {
				raw, err := json.MarshalIndent(out, "", "  ")
				if err != nil {
					return fmt.Errorf("format outcome: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(raw))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s at %s\n", out.RequestID, out.CompletedAt.Format("2006-01-02 15:04:05Z07:00"))
			printOutcome(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the outcome as JSON")
	return cmd
}
