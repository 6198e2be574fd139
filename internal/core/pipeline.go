package core

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/JonMunkholm/csvcut/internal/transform"
)

// ContextCheckInterval is how often (in rows) to check for context cancellation.
var ContextCheckInterval = 100

// ErrSameFile is wrapped in a FileAccessError when the output path names the
// input file, which would be truncated before it is read.
var ErrSameFile = errors.New("output is the same file as input")

// Pipeline selects and transforms CSV columns.
//
// Configure it with SetOutputColumns and AddTransformer before calling
// Process; the configuration must not change while Process runs. A pipeline
// can be reused for any number of sequential Process calls.
type Pipeline struct {
	columns      []string
	transformers map[string]transform.Transformer
	sanitize     bool
}

// Result summarizes a completed run.
type Result struct {
	Columns   []string // effective output columns
	Rows      int      // data rows written, excluding the header
	BytesRead int64    // raw input bytes consumed
}

// New creates a pipeline that copies every column unchanged.
func New() *Pipeline {
	return &Pipeline{transformers: make(map[string]transform.Transformer)}
}

// SetOutputColumns replaces the output column list. An empty list means
// every input column, in input order.
func (p *Pipeline) SetOutputColumns(names ...string) *Pipeline {
	p.columns = append([]string(nil), names...)
	return p
}

// AddTransformer registers t for column, replacing any earlier one.
func (p *Pipeline) AddTransformer(column string, t transform.Transformer) *Pipeline {
	p.transformers[column] = t
	return p
}

// SanitizeUTF8 controls whether invalid UTF-8 input bytes are replaced with '?'.
func (p *Pipeline) SanitizeUTF8(on bool) *Pipeline {
	p.sanitize = on
	return p
}

// OutputColumns returns a copy of the configured output column list.
func (p *Pipeline) OutputColumns() []string {
	return append([]string(nil), p.columns...)
}

// TransformerFor returns the transformer registered for column, if any.
func (p *Pipeline) TransformerFor(column string) (transform.Transformer, bool) {
	t, ok := p.transformers[column]
	return t, ok
}

// Process reads inputPath, writes the selected and transformed columns to
// outputPath, and closes both files on every path. encodingName applies to
// both files; "" means UTF-8.
//
// The output file is only created once the header has been read and every
// configured column found in it, so a failed validation leaves an existing
// output untouched. A failure while streaming leaves the rows written so
// far on disk.
func (p *Pipeline) Process(ctx context.Context, inputPath, outputPath, encodingName string) (res Result, err error) {
	enc, err := LookupEncoding(encodingName)
	if err != nil {
		return Result{}, err
	}

	in, err := os.Open(inputPath)
	if err != nil {
		return Result{}, &FileAccessError{Op: "open", Path: inputPath, Err: err}
	}
	defer in.Close()

	counter := NewCountingReader(in)
	reader, plan, err := p.prepare(decodeReader(counter, enc))
	if err != nil {
		var mh *MissingHeaderError
		if errors.As(err, &mh) {
			mh.Path = inputPath
		}
		return Result{}, err
	}

	if err := checkDistinct(in, outputPath); err != nil {
		return Result{}, err
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return Result{}, &FileAccessError{Op: "create", Path: outputPath, Err: err}
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", outputPath, cerr)
		}
	}()

	w, flush := encodeWriter(out, enc)
	res, err = p.stream(ctx, reader, w, plan)
	res.BytesRead = counter.BytesRead
	if ferr := flush(); ferr != nil && err == nil {
		err = fmt.Errorf("writing %s: %w", outputPath, ferr)
	}
	return res, err
}

// ProcessStream runs the pipeline over already-open streams. r is decoded
// from encodingName and w receives output in the same encoding. Nothing is
// written to w unless header validation succeeds.
func (p *Pipeline) ProcessStream(ctx context.Context, r io.Reader, w io.Writer, encodingName string) (Result, error) {
	enc, err := LookupEncoding(encodingName)
	if err != nil {
		return Result{}, err
	}

	counter := NewCountingReader(r)
	reader, plan, err := p.prepare(decodeReader(counter, enc))
	if err != nil {
		return Result{}, err
	}

	ew, flush := encodeWriter(w, enc)
	res, err := p.stream(ctx, reader, ew, plan)
	res.BytesRead = counter.BytesRead
	if ferr := flush(); ferr != nil && err == nil {
		err = fmt.Errorf("writing output: %w", ferr)
	}
	return res, err
}

// columnPlan is the per-run projection from input records to output records.
type columnPlan struct {
	columns      []string
	positions    []int
	transformers []transform.Transformer
}

// recordReader is a lenient csv.Reader that still rejects a quoted field
// left open at end of input.
type recordReader struct {
	*csv.Reader
	quotes *quoteTracker
}

// Read returns the next record.
func (r *recordReader) Read() ([]string, error) {
	record, err := r.Reader.Read()
	if err != nil {
		return nil, err
	}
	if r.quotes.unterminated() && r.InputOffset() == r.quotes.n {
		last := len(record) - 1
		line, col := r.FieldPos(last)
		return nil, &csv.ParseError{StartLine: line, Line: line, Column: col, Err: csv.ErrQuote}
	}
	return record, nil
}

// prepare reads the header and resolves the output columns against it.
func (p *Pipeline) prepare(r io.Reader) (*recordReader, columnPlan, error) {
	r = NewBOMSkippingReader(r)
	if p.sanitize {
		r = NewUTF8Sanitizer(r)
	}
	quotes := newQuoteTracker(r)

	reader := csv.NewReader(quotes)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true
	// Stray quotes in unquoted fields (5'10") are common in exported data.
	reader.LazyQuotes = true
	rr := &recordReader{Reader: reader, quotes: quotes}

	header, err := rr.Read()
	if err == io.EOF {
		return nil, columnPlan{}, &MissingHeaderError{}
	}
	if err != nil {
		return nil, columnPlan{}, fmt.Errorf("reading header: %w", err)
	}
	// ReuseRecord: the next Read may overwrite header's backing array.
	header = append([]string(nil), header...)

	plan, err := p.plan(header)
	return rr, plan, err
}

func (p *Pipeline) plan(header []string) (columnPlan, error) {
	// Later duplicates overwrite earlier ones.
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}

	columns := p.columns
	if len(columns) == 0 {
		columns = header
	}

	var missing []string
	seen := make(map[string]bool)
	for _, c := range columns {
		if _, ok := index[c]; !ok && !seen[c] {
			seen[c] = true
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return columnPlan{}, &UnknownColumnError{Missing: missing}
	}

	plan := columnPlan{
		columns:      append([]string(nil), columns...),
		positions:    make([]int, len(columns)),
		transformers: make([]transform.Transformer, len(columns)),
	}
	for i, c := range columns {
		plan.positions[i] = index[c]
		plan.transformers[i] = p.transformers[c]
	}
	return plan, nil
}

// project fills out with the plan's columns taken from record.
func (plan columnPlan) project(record, out []string) {
	for i, pos := range plan.positions {
		value := ""
		if pos < len(record) {
			value = record[pos]
		}
		if t := plan.transformers[i]; t != nil {
			value = t.Transform(value)
		}
		out[i] = value
	}
}

func (p *Pipeline) stream(ctx context.Context, reader *recordReader, w io.Writer, plan columnPlan) (Result, error) {
	res := Result{Columns: plan.columns}
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(plan.columns); err != nil {
		return res, fmt.Errorf("writing header: %w", err)
	}

	out := make([]string, len(plan.columns))
	for i := 0; ; i++ {
		if i%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return res, fmt.Errorf("operation cancelled after %d rows: %w", res.Rows, err)
			}
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, fmt.Errorf("reading input: %w", err)
		}

		plan.project(record, out)
		if err := cw.Write(out); err != nil {
			return res, fmt.Errorf("writing row %d: %w", res.Rows+1, err)
		}
		res.Rows++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return res, fmt.Errorf("writing output: %w", err)
	}
	return res, nil
}

// checkDistinct fails if outputPath already exists and is the open input file.
func checkDistinct(in *os.File, outputPath string) error {
	outInfo, err := os.Stat(outputPath)
	if err != nil {
		return nil
	}
	inInfo, err := in.Stat()
	if err != nil {
		return nil
	}
	if os.SameFile(inInfo, outInfo) {
		return &FileAccessError{Op: "create", Path: outputPath, Err: ErrSameFile}
	}
	return nil
}
