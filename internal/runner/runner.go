// Package runner validates every species data file against the fish schema
// and prints a per-file report.
package runner

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"species-schema-validator/internal/events"
	"species-schema-validator/internal/models"
	"species-schema-validator/internal/observability/logging"
	"species-schema-validator/internal/observability/metrics"
	"species-schema-validator/internal/schema"
)

const (
	candidatePattern = "*.json"
	successLine      = "All species files valid."
)

// Result is the aggregate outcome of a run.
type Result struct {
	FilesChecked int
	FilesInvalid int
	ErrorCount   int
}

// Failed reports whether any file had at least one violation.
func (r Result) Failed() bool {
	return r.FilesInvalid > 0
}

// FileReport holds the violations found in one species file.
type FileReport struct {
	File   string
	Errors []schema.ValidationError
}

// Runner validates a directory of species files against one schema.
type Runner struct {
	schemaPath string
	speciesDir string
	out        io.Writer
	publisher  *events.Publisher
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// Option customizes a Runner.
type Option func(*Runner)

// WithPublisher publishes a result event for every file and for the run.
func WithPublisher(p *events.Publisher) Option {
	return func(r *Runner) { r.publisher = p }
}

// WithMetrics records run metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// New creates a runner that writes its report to out.
func New(schemaPath, speciesDir string, out io.Writer, opts ...Option) *Runner {
	r := &Runner{
		schemaPath: schemaPath,
		speciesDir: speciesDir,
		out:        out,
		logger:     logging.WithComponent("runner"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run loads the schema, validates every candidate file in order and prints
// the report. Validation failures are reflected in the Result; any error
// returned is an *OperationalError and the report may be incomplete.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	var res Result

	validator, err := schema.Load(r.schemaPath)
	if err != nil {
		return res, r.abort(operational("load schema", r.schemaPath, err))
	}

	files, err := Candidates(r.speciesDir)
	if err != nil {
		return res, r.abort(operational("list species", r.speciesDir, err))
	}

	r.logger.Info().
		Str("schema", validator.Location()).
		Str("speciesDir", r.speciesDir).
		Int("candidates", len(files)).
		Msg("Validating species files")

	for _, file := range files {
		report, err := r.validateFile(validator, file)
		if err != nil {
			return res, r.abort(err)
		}

		res.FilesChecked++
		if len(report.Errors) > 0 {
			res.FilesInvalid++
			res.ErrorCount += len(report.Errors)
			if err := writeReport(r.out, report); err != nil {
				return res, r.abort(operational("write report", file, err))
			}
		}
		r.recordFile(ctx, validator, report)
	}

	if !res.Failed() {
		if _, err := fmt.Fprintln(r.out, successLine); err != nil {
			return res, r.abort(operational("write report", "", errors.WithStack(err)))
		}
	}

	r.finish(ctx, validator, res, time.Since(start))
	return res, nil
}

// Candidates lists the *.json files directly inside dir, sorted by name.
// A missing directory, or a path that is not a directory, has no candidates.
func Candidates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "read directory %s", dir)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if ok, _ := filepath.Match(candidatePattern, entry.Name()); ok {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

func (r *Runner) validateFile(v *schema.Validator, file string) (FileReport, error) {
	logger := logging.WithFile("runner", file)

	data, err := schema.DecodeFile(file)
	if err != nil {
		return FileReport{}, operational("parse data", file, err)
	}

	report := FileReport{File: file, Errors: v.Validate(data)}
	logger.Debug().Int("violations", len(report.Errors)).Msg("Validated species file")
	return report, nil
}

// writeReport prints the header line and one indented line per violation.
func writeReport(w io.Writer, report FileReport) error {
	if _, err := fmt.Fprintf(w, "Errors in %s:\n", report.File); err != nil {
		return errors.WithStack(err)
	}
	for _, e := range report.Errors {
		if _, err := fmt.Fprintf(w, "  %s: %s\n", e.Path, e.Message); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

func (r *Runner) recordFile(ctx context.Context, v *schema.Validator, report FileReport) {
	if r.metrics != nil {
		keywords := make([]string, 0, len(report.Errors))
		for _, e := range report.Errors {
			keywords = append(keywords, e.Keyword)
		}
		r.metrics.RecordFile(keywords)
	}

	if r.publisher == nil {
		return
	}
	ev := models.FileValidated{
		EventType: models.EventFileValidated,
		File:      report.File,
		Schema:    v.Location(),
		Valid:     len(report.Errors) == 0,
		Timestamp: time.Now().UnixMilli(),
	}
	for _, e := range report.Errors {
		ev.Violations = append(ev.Violations, models.Violation{
			Path:    e.Path.String(),
			Keyword: e.Keyword,
			Message: e.Message,
		})
	}
	if err := r.publisher.PublishFileResult(ctx, filepath.Base(report.File), ev); err != nil {
		r.logger.Warn().Err(err).Str("file", report.File).Msg("Failed to publish file result")
	}
}

func (r *Runner) finish(ctx context.Context, v *schema.Validator, res Result, elapsed time.Duration) {
	now := time.Now()
	if r.metrics != nil {
		r.metrics.RecordRun(!res.Failed(), elapsed.Seconds(), float64(now.Unix()))
	}

	r.logger.Info().
		Int("filesChecked", res.FilesChecked).
		Int("filesInvalid", res.FilesInvalid).
		Int("errors", res.ErrorCount).
		Dur("duration", elapsed).
		Msg("Validation run completed")

	if r.publisher == nil {
		return
	}
	err := r.publisher.PublishRunCompleted(ctx, models.RunCompleted{
		EventType:    models.EventRunCompleted,
		Schema:       v.Location(),
		SpeciesDir:   r.speciesDir,
		FilesChecked: res.FilesChecked,
		FilesInvalid: res.FilesInvalid,
		ErrorCount:   res.ErrorCount,
		Success:      !res.Failed(),
		DurationMs:   elapsed.Milliseconds(),
		Timestamp:    now.UnixMilli(),
	})
	if err != nil {
		r.logger.Warn().Err(err).Msg("Failed to publish run summary")
	}
}

func (r *Runner) abort(err error) error {
	if r.metrics != nil {
		r.metrics.RecordOperationalError()
	}
	return err
}
