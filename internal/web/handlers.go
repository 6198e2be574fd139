package web

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/csvcut/internal/core"
	"github.com/JonMunkholm/csvcut/internal/history"
	"github.com/JonMunkholm/csvcut/internal/logging"
	"github.com/JonMunkholm/csvcut/internal/transform"
)

// multipartMemory is the part of a multipart form kept in memory; the rest
// spills to temporary files.
const multipartMemory = 8 << 20

// errBadUpload marks requests whose multipart form cannot be used.
var errBadUpload = errors.New("invalid upload")

// TransformerInfo is the JSON form of a registered transformer.
type TransformerInfo struct {
	Name        string   `json:"name"`
	Aliases     []string `json:"aliases,omitempty"`
	Description string   `json:"description"`
	Usage       string   `json:"usage"`
	MinArgs     int      `json:"min_args"`
	MaxArgs     int      `json:"max_args"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	templ.Handler(IndexPage(s.pipeline.Encoding, transform.All())).ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, struct {
		Status string `json:"status"`
		limiterStatus
	}{"ok", s.limiter.status()})
}

func (s *Server) handleListTransformers(w http.ResponseWriter, r *http.Request) {
	defs := transform.All()
	infos := make([]TransformerInfo, 0, len(defs))
	for _, def := range defs {
		infos = append(infos, TransformerInfo{
			Name:        def.Name,
			Aliases:     def.Aliases,
			Description: def.Description,
			Usage:       usage(def),
			MinArgs:     def.MinArgs,
			MaxArgs:     def.MaxArgs,
		})
	}
	writeJSON(w, infos)
}

// handleProcess runs the pipeline over an uploaded CSV file and streams the
// result back as text/csv. Configuration and header errors are reported as
// JSON because nothing has been written yet; a failure after streaming
// started aborts the connection so the client never sees a truncated file
// as a complete one.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		respondError(w, r, fmt.Errorf("%w: %w", errBadUpload, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, fmt.Errorf("%w: no file provided", errBadUpload))
		return
	}
	defer file.Close()

	opts, err := formOptions(r.MultipartForm.Value)
	if err != nil {
		respondError(w, r, fmt.Errorf("%w: %w", errBadUpload, err))
		return
	}
	pipe := core.New().SanitizeUTF8(s.pipeline.SanitizeUTF8)
	if err := opts.Apply(pipe); err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.limiter.acquire(r.Context()); err != nil {
		respondError(w, r, err)
		return
	}
	defer s.limiter.release()

	encoding := strings.TrimSpace(r.FormValue("encoding"))
	if encoding == "" {
		encoding = s.pipeline.Encoding
	}

	run := history.NewRun(header.Filename, "http")
	ctx := logging.WithRunID(r.Context(), run.ID.String())
	logger := logging.WithFields(ctx, "file", header.Filename, "size", header.Size)
	logger.Info("processing upload", "columns", pipe.OutputColumns(), "encoding", encoding)

	out := &csvResponse{w: w, filename: outputName(header.Filename)}
	res, err := pipe.ProcessStream(ctx, file, out, encoding)
	run.Finish(res, err)
	if recErr := s.recorder.Record(ctx, *run); recErr != nil {
		logger.Warn("failed to record run", "error", recErr)
	}

	if err != nil {
		if !out.started {
			respondError(w, r.WithContext(ctx), err)
			return
		}
		logger.Error("upload failed after output started", "rows", res.Rows, "error", err)
		panic(http.ErrAbortHandler)
	}

	if !out.started {
		// Header-only input with no columns produces no bytes; still answer with CSV.
		out.begin()
	}
	logger.Info("upload processed", "rows", res.Rows, "bytes_read", res.BytesRead)
}

// csvResponse delays the CSV response headers until the first write, so
// an error found before any output can still be sent as JSON.
type csvResponse struct {
	w        http.ResponseWriter
	filename string
	started  bool
}

func (c *csvResponse) begin() {
	c.started = true
	h := c.w.Header()
	h.Set("Content-Type", "text/csv")
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", c.filename))
	c.w.WriteHeader(http.StatusOK)
}

func (c *csvResponse) Write(p []byte) (int, error) {
	if !c.started {
		c.begin()
	}
	return c.w.Write(p)
}

// outputName derives the download name from the uploaded file name.
func outputName(uploaded string) string {
	base := filepath.Base(strings.ReplaceAll(uploaded, `\`, "/"))
	if base == "." || base == "/" || base == "" {
		base = "output.csv"
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + "_cut.csv"
}

// formOptions reads the column lists and transformer specs from form values.
// List fields are comma separated, with CSV quoting for names that contain
// a comma.
func formOptions(form map[string][]string) (core.Options, error) {
	opts := core.Options{Transforms: nonEmpty(form["transform"])}
	lists := []struct {
		field string
		dst   *[]string
	}{
		{"columns", &opts.Columns},
		{"uppercase", &opts.Uppercase},
		{"lowercase", &opts.Lowercase},
		{"strip", &opts.Strip},
	}
	for _, l := range lists {
		names, err := core.ParseList(form[l.field]...)
		if err != nil {
			return core.Options{}, fmt.Errorf("%s: %w", l.field, err)
		}
		*l.dst = names
	}
	return opts, nil
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
