package cli

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvcut/internal/transform"
)

func newTransformersCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "transformers",
		Aliases: []string{"transformer"},
		Short:   "List the transformers usable with --transform",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := newTable(cmd.OutOrStdout(), "NAME", "ALIASES", "USAGE", "DESCRIPTION")
			for _, def := range transform.All() {
				usage := def.Name
				if def.Usage != "" {
					usage += ":" + def.Usage
				}
				t.AppendRow(table.Row{def.Name, strings.Join(def.Aliases, ", "), "COLUMN=" + usage, def.Description})
			}
			t.Render()
			return nil
		},
		SilenceUsage:      true,
		DisableAutoGenTag: true,
	}
}
