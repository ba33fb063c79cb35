package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/young1lin/websearch-mcp/internal/config"
	"github.com/young1lin/websearch-mcp/internal/storage"
)

var historyOpts struct {
	limit int
	clear bool
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently recorded searches (requires history.enabled)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("error reading config: %w", err)
		}
		if !cfg.History.Enabled {
			return fmt.Errorf("search history is disabled; set history.enabled or WEBMCP_HISTORY_ENABLED=true")
		}

		store, err := storage.NewHistoryStore(cfg.History.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		if historyOpts.clear {
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "history cleared")
			return nil
		}

		entries, err := store.Recent(historyOpts.limit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tPROVIDER\tRESULTS\tQUERY")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", e.CreatedAt.Local().Format(time.DateTime), e.Provider, e.ResultCount, e.Query)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyOpts.limit, "limit", "n", 20, "number of entries to show (0 for all)")
	historyCmd.Flags().BoolVar(&historyOpts.clear, "clear", false, "delete all recorded searches")
}
