package populate

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/byte4ever/promptfill/config"
	"github.com/byte4ever/promptfill/placeholder"
	"github.com/byte4ever/promptfill/table"
)

// Column names of the templates table.
const (
	TemplateColumn  = "user input template"
	GeneratedColumn = "generated user input"
)

// Default paths used by the CLI.
const (
	DefaultTemplatesPath = "brand_safety_templates.csv"
	DefaultConfigPath    = "config.json"
	DefaultOutPath       = "out/populated.csv"
)

// Options holds the inputs of one run.
type Options struct {
	// TemplatesPath is the source CSV.
	TemplatesPath string

	// ConfigPath is the JSON or YAML configuration.
	ConfigPath string

	// OutPath is the destination CSV.
	OutPath string

	// Seed makes random picks reproducible when set.
	Seed *int64
}

// Result summarizes a successful run.
type Result struct {
	// Rows is the number of data rows written.
	Rows int

	// Path is the destination file.
	Path string

	// Digest is the SHA-256 hex digest of the output.
	Digest string
}

// RowError attaches a 1-based data row number to a
// placeholder failure.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Run executes the pipeline described by opts. Any error
// aborts the run before the output file is touched.
func Run(opts Options) (Result, error) {
	const errCtx = "populating templates"

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Debug(
		"loaded config",
		"path", opts.ConfigPath,
		"competitors", len(cfg.Competitors),
		"individuals", len(cfg.Individuals),
	)

	tbl, err := table.Read(opts.TemplatesPath, TemplateColumn)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Debug(
		"read templates",
		"path", opts.TemplatesPath,
		"rows", tbl.Len(),
	)

	en := placeholder.New(cfg, newRand(opts.Seed))

	if err := expandRows(en, tbl); err != nil {
		return Result{}, fmt.Errorf("%s: %s: %w", errCtx, opts.TemplatesPath, err)
	}

	digest, err := table.Write(opts.OutPath, tbl)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Info(
		"wrote populated table",
		"rows", tbl.Len(),
		"path", opts.OutPath,
		"sha256", digest,
	)

	return Result{
		Rows:   tbl.Len(),
		Path:   opts.OutPath,
		Digest: digest,
	}, nil
}

// expandRows fills the generated column of every row, in
// row order, validating each template before expanding it.
func expandRows(en *placeholder.Engine, tbl *table.Table) error {
	// Computed before EnsureColumn may shift columns.
	tplIdx := tbl.Index(TemplateColumn)

	generated := make([]string, tbl.Len())

	for ri, row := range tbl.Rows {
		tpl := strings.TrimSpace(row[tplIdx])

		out, err := en.Expand(tpl)
		if err != nil {
			return &RowError{Row: ri + 1, Err: err}
		}

		slog.Debug("expanded template", "row", ri+1, "generated", out)

		generated[ri] = out
	}

	genIdx := tbl.EnsureColumn(TemplateColumn, GeneratedColumn)

	for ri := range tbl.Rows {
		tbl.Rows[ri][genIdx] = generated[ri]
	}

	return nil
}

// newRand returns a PCG source seeded from seed, or from
// the runtime's entropy when seed is nil.
func newRand(seed *int64) *rand.Rand {
	if seed == nil {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // not security sensitive
	}

	sv := uint64(*seed) //nolint:gosec // bit pattern reuse is intended

	return rand.New(rand.NewPCG(sv, sv)) //nolint:gosec // not security sensitive
}
