package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvcut/internal/core"
)

func (a *App) newColumnsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "columns FILE",
		Short: "List the header columns of a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			encoding, _ := cmd.Flags().GetString(FlagEncoding)
			cols, err := core.ReadHeader(args[0], encoding)
			if err != nil {
				return err
			}

			t := newTable(cmd.OutOrStdout(), "#", "COLUMN")
			for i, c := range cols {
				t.AppendRow(table.Row{i + 1, c})
			}
			t.Render()
			return nil
		},
		SilenceUsage:      true,
		DisableAutoGenTag: true,
	}
	cmd.Flags().String(FlagEncoding, a.Config.Pipeline.Encoding, "text encoding of the file")
	return cmd
}
