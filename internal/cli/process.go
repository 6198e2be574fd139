package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/JonMunkholm/csvcut/internal/config"
	"github.com/JonMunkholm/csvcut/internal/core"
	"github.com/JonMunkholm/csvcut/internal/history"
	"github.com/JonMunkholm/csvcut/internal/logging"
)

const (
	flagColumns      = "columns"
	flagUppercase    = "uppercase"
	flagLowercase    = "lowercase"
	flagStrip        = "strip"
	flagTransform    = "transform"
	flagProfile      = "profile"
	flagSanitizeUTF8 = "sanitize-utf8"
)

func registerProcessFlags(f *pflag.FlagSet, cfg *config.Config) {
	f.StringSliceP(flagColumns, "c", nil, `output columns in order (default all input columns); quote names containing commas, e.g. "last, first"`)
	f.StringSlice(flagUppercase, nil, "columns to convert to upper case")
	f.StringSlice(flagLowercase, nil, "columns to convert to lower case")
	f.StringSlice(flagStrip, nil, "columns to strip of surrounding whitespace")
	f.StringArray(flagTransform, nil, "assign a transformer, COLUMN=NAME[:ARG...] (repeatable)")
	f.String(flagProfile, "", "YAML profile with columns and transforms; flags override it")
	f.String(FlagEncoding, cfg.Pipeline.Encoding, "text encoding of input and output")
	f.Bool(flagSanitizeUTF8, cfg.Pipeline.SanitizeUTF8, "replace invalid UTF-8 bytes with '?'")
}

// buildPipeline applies the profile first and the flags on top of it. It
// returns the encoding to use.
func buildPipeline(f *pflag.FlagSet) (*core.Pipeline, string, error) {
	sanitize, _ := f.GetBool(flagSanitizeUTF8)
	encoding, _ := f.GetString(FlagEncoding)
	pipe := core.New().SanitizeUTF8(sanitize)

	if path, _ := f.GetString(flagProfile); path != "" {
		profile, err := core.LoadProfile(path)
		if err != nil {
			return nil, "", err
		}
		if err := profile.Apply(pipe); err != nil {
			return nil, "", err
		}
		if profile.Encoding != "" && !f.Changed(FlagEncoding) {
			encoding = profile.Encoding
		}
	}

	var opts core.Options
	opts.Columns, _ = f.GetStringSlice(flagColumns)
	opts.Uppercase, _ = f.GetStringSlice(flagUppercase)
	opts.Lowercase, _ = f.GetStringSlice(flagLowercase)
	opts.Strip, _ = f.GetStringSlice(flagStrip)
	opts.Transforms, _ = f.GetStringArray(flagTransform)
	if err := opts.Apply(pipe); err != nil {
		return nil, "", err
	}
	return pipe, encoding, nil
}

func (a *App) runProcess(cmd *cobra.Command, args []string) error {
	input, output := args[0], args[1]

	pipe, encoding, err := buildPipeline(cmd.Flags())
	if err != nil {
		return err
	}

	run := history.NewRun(input, output)
	ctx := logging.WithRunID(cmd.Context(), run.ID.String())
	logger := logging.WithFields(ctx, "input", input, "output", output)

	rec, closeRec, err := a.OpenRecorder(ctx, a.Config.History)
	if err != nil {
		logger.Warn("run history unavailable", "error", err)
	}
	defer closeRec()

	logger.Debug("run started", "columns", pipe.OutputColumns(), "encoding", encoding)
	res, err := pipe.Process(ctx, input, output, encoding)
	run.Finish(res, err)
	if recErr := rec.Record(ctx, *run); recErr != nil {
		logger.Warn("failed to record run", "error", recErr)
	}
	if err != nil {
		logger.Debug("run failed", "rows", res.Rows, "error", err)
		return err
	}

	logger.Info("run completed", "rows", res.Rows, "bytes_read", res.BytesRead, "duration", run.Duration)
	fmt.Fprintf(cmd.OutOrStdout(), "Successfully parsed %s -> %s\n", input, output)
	return nil
}
