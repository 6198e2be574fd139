package cli

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// BuildVersion is set at link time with -ldflags "-X ...cli.BuildVersion=v1.2.3".
var BuildVersion = "n/a"

// VersionInfo is printed by the version command.
type VersionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"goVersion"`
	Revision  string `json:"revision,omitempty"`
}

func currentVersion() VersionInfo {
	info := VersionInfo{Version: BuildVersion, GoVersion: runtime.Version()}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "n/a" && bi.Main.Version != "" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" {
			info.Revision = s.Value
		}
	}
	return info
}

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the csvcut version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("output")
			info := currentVersion()
			switch format {
			case "json":
				return json.NewEncoder(cmd.OutOrStdout()).Encode(info)
			case "text":
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "csvcut %s (%s)\n", info.Version, info.GoVersion)
				return err
			default:
				return fmt.Errorf("invalid output format: %s", format)
			}
		},
		SilenceUsage:      true,
		DisableAutoGenTag: true,
	}
	cmd.Flags().StringP("output", "o", "text", "output format (text, json)")
	return cmd
}
