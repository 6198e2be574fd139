// Package cli implements the csvcut command line: the default process
// command plus columns, transformers, serve, history and version.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvcut/internal/config"
	"github.com/JonMunkholm/csvcut/internal/history"
	"github.com/JonMunkholm/csvcut/internal/logging"
)

const (
	FlagLogLevel  = "loglevel"
	FlagLogFormat = "logformat"
	FlagEncoding  = "encoding"
)

// RecorderFunc opens the run history store. The returned close function is
// always non-nil.
type RecorderFunc func(ctx context.Context, cfg config.HistoryConfig) (history.Recorder, func(), error)

// App carries what every command needs.
type App struct {
	Config       *config.Config
	OpenRecorder RecorderFunc
}

// New returns an App that records history in PostgreSQL when configured.
func New(cfg *config.Config) *App {
	return &App{Config: cfg, OpenRecorder: openRecorder}
}

func openRecorder(ctx context.Context, cfg config.HistoryConfig) (history.Recorder, func(), error) {
	if !cfg.Enabled() {
		return history.NopRecorder{}, func() {}, nil
	}
	rec, err := history.Open(ctx, cfg.DatabaseURL, cfg.MaxConns)
	if err != nil {
		return history.NopRecorder{}, func() {}, err
	}
	return rec, rec.Close, nil
}

// NewRootCommand builds the command tree. The root command itself runs the
// pipeline: csvcut INPUT OUTPUT [flags].
func (a *App) NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "csvcut INPUT OUTPUT",
		Short: "Select, reorder and transform CSV columns",
		Long: `csvcut copies INPUT to OUTPUT keeping only the requested columns, in the
requested order, and applies per-column transformers to their values.

Without --columns every input column is kept in input order.`,
		Example: `  csvcut people.csv out.csv -c email,name --uppercase name
  csvcut people.csv out.csv --transform id=prefix:USER- --transform email=truncate:20
  csvcut people.csv out.csv --profile export.yaml`,
		Args: cobra.ExactArgs(2),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString(FlagLogLevel)
			format, _ := cmd.Flags().GetString(FlagLogFormat)
			if err := validateLogFlags(level, format); err != nil {
				return err
			}
			logging.Setup(cmd.ErrOrStderr(), level, format)
			return nil
		},
		RunE:              a.runProcess,
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	cmd.PersistentFlags().String(FlagLogLevel, a.Config.Logging.Level, "set the log level (debug, info, warn, error)")
	cmd.PersistentFlags().String(FlagLogFormat, a.Config.Logging.Format, "set the log format (text, json)")
	registerProcessFlags(cmd.Flags(), a.Config)

	cmd.AddCommand(
		a.newColumnsCommand(),
		newTransformersCommand(),
		a.newServeCommand(),
		a.newHistoryCommand(),
		newVersionCommand(),
	)
	return cmd
}

func validateLogFlags(level, format string) error {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", level)
	}
	switch strings.ToLower(format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s", format)
	}
	return nil
}

// Execute runs the command tree with args.
func (a *App) Execute(ctx context.Context, args []string) error {
	root := a.NewRootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
