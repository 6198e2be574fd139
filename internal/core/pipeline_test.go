package core

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/csvcut/internal/transform"
)

// ----------------------------------------------------------------------------
// Helpers
// ----------------------------------------------------------------------------

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func run(t *testing.T, p *Pipeline, input string) (string, Result, error) {
	t.Helper()
	dir := t.TempDir()
	in := writeFile(t, dir, "input.csv", input)
	out := filepath.Join(dir, "output.csv")
	res, err := p.Process(context.Background(), in, out, "")
	if err != nil {
		return "", res, err
	}
	return readFile(t, out), res, nil
}

const sample = "name,age,email,city\n" +
	"John Doe,30,john@example.com,New York\n" +
	"Jane Smith,25,jane@example.com,Los Angeles\n" +
	"Bob Johnson,35,bob@example.com,Chicago\n"

// ----------------------------------------------------------------------------
// Process
// ----------------------------------------------------------------------------

func TestProcess_EndToEndExamples(t *testing.T) {
	t.Run("subset with uppercase", func(t *testing.T) {
		p := New().
			SetOutputColumns("name", "email").
			AddTransformer("name", transform.Upper())

		got, res, err := run(t, p, "name,age,email\nJohn Doe,30,john@example.com\n")
		require.NoError(t, err)
		assert.Equal(t, "name,email\nJOHN DOE,john@example.com\n", got)
		assert.Equal(t, 1, res.Rows)
		assert.Equal(t, []string{"name", "email"}, res.Columns)
	})

	t.Run("trim both columns", func(t *testing.T) {
		p := New().
			AddTransformer("name", transform.Trim()).
			AddTransformer("city", transform.Trim())

		got, _, err := run(t, p, "name,city\n  John Doe  , New York \n")
		require.NoError(t, err)
		assert.Equal(t, "name,city\nJohn Doe,New York\n", got)
	})
}

func TestProcess_AllColumnsByDefault(t *testing.T) {
	got, res, err := run(t, New(), sample)
	require.NoError(t, err)
	assert.Equal(t, sample, got)
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, []string{"name", "age", "email", "city"}, res.Columns)
	assert.Equal(t, int64(len(sample)), res.BytesRead)
}

func TestProcess_ConfiguredOrderWins(t *testing.T) {
	p := New().SetOutputColumns("city", "name")
	got, _, err := run(t, p, sample)
	require.NoError(t, err)
	assert.Equal(t, "city,name\nNew York,John Doe\nLos Angeles,Jane Smith\nChicago,Bob Johnson\n", got)
}

func TestProcess_TransformIsolation(t *testing.T) {
	p := New().AddTransformer("name", transform.Upper())
	got, _, err := run(t, p, sample)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(got), "\n")
	want := strings.Split(strings.TrimSpace(sample), "\n")
	require.Len(t, lines, len(want))
	for i := 1; i < len(lines); i++ {
		gotFields := strings.Split(lines[i], ",")
		wantFields := strings.Split(want[i], ",")
		assert.Equal(t, strings.ToUpper(wantFields[0]), gotFields[0])
		assert.Equal(t, wantFields[1:], gotFields[1:])
	}
}

func TestProcess_TransformerOnUnselectedColumnIgnored(t *testing.T) {
	p := New().
		SetOutputColumns("name").
		AddTransformer("email", transform.Upper())
	got, _, err := run(t, p, sample)
	require.NoError(t, err)
	assert.Equal(t, "name\nJohn Doe\nJane Smith\nBob Johnson\n", got)
}

func TestProcess_HeaderOnly(t *testing.T) {
	p := New().SetOutputColumns("b")
	got, res, err := run(t, p, "a,b,c\n")
	require.NoError(t, err)
	assert.Equal(t, "b\n", got)
	assert.Equal(t, 0, res.Rows)
}

func TestProcess_EmptyInput(t *testing.T) {
	for name, input := range map[string]string{
		"zero bytes":  "",
		"only BOM":    "\xEF\xBB\xBF",
		"blank lines": "\n\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := run(t, New(), input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingHeader))

			var mh *MissingHeaderError
			require.ErrorAs(t, err, &mh)
			assert.True(t, strings.HasSuffix(mh.Path, "input.csv"))
		})
	}
}

func TestProcess_UnknownColumns(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		missing []string
	}{
		{"one missing", []string{"name", "phone"}, []string{"phone"}},
		{"all missing", []string{"x", "y"}, []string{"x", "y"}},
		{"keeps configured order", []string{"zeta", "name", "alpha"}, []string{"zeta", "alpha"}},
		{"duplicates reported once", []string{"x", "x", "age"}, []string{"x"}},
		{"case sensitive", []string{"Name"}, []string{"Name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, New().SetOutputColumns(tt.columns...), sample)
			var uc *UnknownColumnError
			require.ErrorAs(t, err, &uc)
			assert.Equal(t, tt.missing, uc.Missing)
		})
	}
}

func TestProcess_ValidationLeavesOutputUntouched(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.csv", sample)
	out := writeFile(t, dir, "out.csv", "previous contents\n")

	_, err := New().SetOutputColumns("missing").Process(context.Background(), in, out, "")
	require.Error(t, err)
	assert.Equal(t, "previous contents\n", readFile(t, out))

	empty := writeFile(t, dir, "empty.csv", "")
	_, err = New().Process(context.Background(), empty, out, "")
	require.ErrorIs(t, err, ErrMissingHeader)
	assert.Equal(t, "previous contents\n", readFile(t, out))
}

func TestProcess_FileAccess(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.csv", sample)

	t.Run("missing input", func(t *testing.T) {
		_, err := New().Process(context.Background(), filepath.Join(dir, "nope.csv"), filepath.Join(dir, "o.csv"), "")
		var fa *FileAccessError
		require.ErrorAs(t, err, &fa)
		assert.Equal(t, "open", fa.Op)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("output directory missing", func(t *testing.T) {
		_, err := New().Process(context.Background(), in, filepath.Join(dir, "no", "such", "o.csv"), "")
		var fa *FileAccessError
		require.ErrorAs(t, err, &fa)
		assert.Equal(t, "create", fa.Op)
	})

	t.Run("output is input", func(t *testing.T) {
		_, err := New().Process(context.Background(), in, in, "")
		require.ErrorIs(t, err, ErrSameFile)
		assert.Equal(t, sample, readFile(t, in))
	})
}

func TestProcess_UnknownEncoding(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.csv", sample)
	_, err := New().Process(context.Background(), in, filepath.Join(dir, "o.csv"), "klingon")
	var ee *EncodingError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "klingon", ee.Name)
	assert.NoFileExists(t, filepath.Join(dir, "o.csv"))
}

func TestProcess_Latin1RoundTrip(t *testing.T) {
	dir := t.TempDir()
	// "Zürich" in windows-1252 / latin1.
	in := writeFile(t, dir, "in.csv", "city\nZ\xfcrich\n")
	out := filepath.Join(dir, "out.csv")

	p := New().AddTransformer("city", transform.Upper())
	_, err := p.Process(context.Background(), in, out, "latin1")
	require.NoError(t, err)
	assert.Equal(t, "city\nZ\xdcRICH\n", readFile(t, out))
}

func TestProcess_Quoting(t *testing.T) {
	input := "id,note\n" +
		"1,\"hello, world\"\n" +
		"2,\"line one\nline two\"\n" +
		"3,\"she said \"\"hi\"\"\"\n"
	got, res, err := run(t, New(), input)
	require.NoError(t, err)
	assert.Equal(t, input, got)
	assert.Equal(t, 3, res.Rows)
}

func TestProcess_ShortAndLongRows(t *testing.T) {
	p := New().SetOutputColumns("c", "a").AddTransformer("c", transform.Default("-"))
	got, _, err := run(t, p, "a,b,c\n1\n1,2,3,4\n")
	require.NoError(t, err)
	assert.Equal(t, "c,a\n-,1\n3,1\n", got)
}

func TestProcess_DuplicateHeaderLastWins(t *testing.T) {
	p := New().SetOutputColumns("x")
	got, _, err := run(t, p, "x,y,x\nfirst,mid,last\n")
	require.NoError(t, err)
	assert.Equal(t, "x\nlast\n", got)
}

func TestProcess_StrayQuotes(t *testing.T) {
	got, res, err := run(t, New(), "name,height\nJohn,5'10\"\nJane,5'4\"\n")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)
	// The writer quotes values containing '"', so the value survives a re-read.
	assert.Equal(t, "name,height\nJohn,\"5'10\"\"\"\nJane,\"5'4\"\"\"\n", got)

	records, err := csv.NewReader(strings.NewReader(got)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"name", "height"}, {"John", `5'10"`}, {"Jane", `5'4"`}}, records)
}

func TestProcess_LenientQuotes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"quote inside unquoted field", "a,b\n1,x\"y\n", "a,b\n1,\"x\"\"y\"\n"},
		{"quote after closing quote", "a\n\"x\"y\"\n", "a\n\"x\"\"y\"\n"},
		{"escaped quotes", "a\n\"say \"\"hi\"\"\"\n", "a\n\"say \"\"hi\"\"\"\n"},
		{"quoted newline", "a,b\n\"x\ny\",2\n", "a,b\n\"x\ny\",2\n"},
		{"closed quote at EOF", "a\n\"x\"", "a\nx\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := run(t, New(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProcess_UnterminatedQuote(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.csv", "a,b\n1,2\n3,\"never closed\n4,5\n")
	out := filepath.Join(dir, "out.csv")

	res, err := New().Process(context.Background(), in, out, "")
	require.Error(t, err)
	assert.Equal(t, "CSV001", MapError(err).Code)
	var pe *csv.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 3, pe.Line)
	assert.Equal(t, 1, res.Rows)
	assert.Equal(t, "a,b\n1,2\n", readFile(t, out))
}

func TestProcess_UnterminatedQuoteInHeader(t *testing.T) {
	_, _, err := run(t, New(), "a,\"b\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading header")
	assert.Equal(t, "CSV001", MapError(err).Code)
}

func TestProcess_Cancelled(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.csv", sample)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Process(ctx, in, filepath.Join(dir, "out.csv"), "")
	require.ErrorIs(t, err, context.Canceled)
}

func TestProcess_PipelineReusable(t *testing.T) {
	p := New().SetOutputColumns("age").AddTransformer("age", transform.Prefix("#"))
	for i := 0; i < 2; i++ {
		got, _, err := run(t, p, sample)
		require.NoError(t, err)
		assert.Equal(t, "age\n#30\n#25\n#35\n", got)
	}
}

// ----------------------------------------------------------------------------
// Builder
// ----------------------------------------------------------------------------

func TestBuilder(t *testing.T) {
	cols := []string{"a", "b"}
	p := New().SetOutputColumns(cols...)
	cols[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, p.OutputColumns())

	p.AddTransformer("a", transform.Upper()).AddTransformer("a", transform.Lower())
	tr, ok := p.TransformerFor("a")
	require.True(t, ok)
	assert.Equal(t, "abc", tr.Transform("ABC"))

	_, ok = p.TransformerFor("b")
	assert.False(t, ok)

	p.SetOutputColumns()
	assert.Empty(t, p.OutputColumns())
}

// ----------------------------------------------------------------------------
// ProcessStream
// ----------------------------------------------------------------------------

func TestProcessStream(t *testing.T) {
	var buf bytes.Buffer
	p := New().SetOutputColumns("email").AddTransformer("email", transform.Upper())
	res, err := p.ProcessStream(context.Background(), strings.NewReader(sample), &buf, "")
	require.NoError(t, err)
	assert.Equal(t, "email\nJOHN@EXAMPLE.COM\nJANE@EXAMPLE.COM\nBOB@EXAMPLE.COM\n", buf.String())
	assert.Equal(t, 3, res.Rows)
}

func TestProcessStream_NothingWrittenOnValidationError(t *testing.T) {
	var buf bytes.Buffer
	_, err := New().SetOutputColumns("nope").ProcessStream(context.Background(), strings.NewReader(sample), &buf, "")
	require.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestProcessStream_BOMAndSanitize(t *testing.T) {
	input := "\xEF\xBB\xBFname\nbad\x80byte\n"

	var buf bytes.Buffer
	_, err := New().SanitizeUTF8(true).ProcessStream(context.Background(), strings.NewReader(input), &buf, "utf-8")
	require.NoError(t, err)
	assert.Equal(t, "name\nbad?byte\n", buf.String())
}
