package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/csvcut/internal/transform"
)

// Options is the flag-style description of a pipeline shared by the CLI and
// the HTTP front-end. Each list entry is one exact column name: spaces and
// commas inside it are part of the name. Front-ends split their raw input
// with ParseList first.
type Options struct {
	Columns    []string
	Uppercase  []string
	Lowercase  []string
	Strip      []string
	Transforms []string // COLUMN=NAME[:ARG...]
}

// Apply configures pipe from o. Output columns are replaced only when o
// names some. Transformers are added in the order uppercase, lowercase,
// strip, then Transforms, so for a column named more than once the last
// assignment wins.
func (o Options) Apply(pipe *Pipeline) error {
	if len(o.Columns) > 0 {
		pipe.SetOutputColumns(o.Columns...)
	}

	builtins := []struct {
		columns []string
		t       transform.Transformer
	}{
		{o.Uppercase, transform.Upper()},
		{o.Lowercase, transform.Lower()},
		{o.Strip, transform.Trim()},
	}
	for _, b := range builtins {
		for _, col := range b.columns {
			pipe.AddTransformer(col, b.t)
		}
	}

	for _, raw := range o.Transforms {
		spec, err := transform.ParseSpec(raw)
		if err != nil {
			return err
		}
		t, err := spec.Build()
		if err != nil {
			return fmt.Errorf("column %q: %w", spec.Column, err)
		}
		pipe.AddTransformer(spec.Column, t)
	}
	return nil
}

// ParseList splits comma separated name lists the way command-line list
// flags do: each value is read as CSV, so a name containing a comma is
// written in double quotes ("last, first") and spaces are kept. Blank values
// contribute nothing.
func ParseList(values ...string) ([]string, error) {
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		r := csv.NewReader(strings.NewReader(v))
		r.FieldsPerRecord = -1
		for {
			record, err := r.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("invalid list %q: %w", v, err)
			}
			out = append(out, record...)
		}
	}
	return out, nil
}
