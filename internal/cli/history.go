package cli

import (
	"errors"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// ErrHistoryDisabled is returned by the history command without a database.
var ErrHistoryDisabled = errors.New("run history is disabled; set DATABASE_URL to enable it")

func (a *App) newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.Config.History.Enabled() {
				return ErrHistoryDisabled
			}
			limit, _ := cmd.Flags().GetInt("limit")

			rec, closeRec, err := a.OpenRecorder(cmd.Context(), a.Config.History)
			if err != nil {
				return err
			}
			defer closeRec()

			runs, err := rec.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			t := newTable(cmd.OutOrStdout(), "STARTED", "STATUS", "INPUT", "OUTPUT", "ROWS", "DURATION", "CODE")
			for _, r := range runs {
				t.AppendRow(table.Row{
					r.StartedAt.Local().Format(time.DateTime),
					r.Status,
					r.Input,
					r.Output,
					r.Rows,
					r.Duration.Round(time.Millisecond),
					r.ErrorCode,
				})
			}
			t.Render()
			return nil
		},
		SilenceUsage:      true,
		DisableAutoGenTag: true,
	}
	cmd.Flags().Int("limit", a.Config.History.Limit, "number of runs to list")
	return cmd
}
