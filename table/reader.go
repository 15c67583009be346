package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Read loads the CSV file at path. Each name in required
// must appear in the header and must be non-blank in every
// data row.
func Read(path string, required ...string) (*Table, error) {
	fi, err := os.Open(path) //nolint:gosec // path from CLI flag
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &Error{
				Kind:   ErrFileMissing,
				Path:   path,
				detail: "templates file not found",
			}
		}

		return nil, &Error{
			Kind:   ErrUnreadable,
			Path:   path,
			Err:    err,
			detail: "opening table",
		}
	}

	defer func() {
		_ = fi.Close() //nolint:errcheck // read-only file
	}()

	return Parse(fi, path, required...)
}

// Parse decodes a CSV table from r. source names the
// input in error messages. A UTF-8 or UTF-16 byte-order
// mark is consumed; input without one is read as UTF-8.
func Parse(
	r io.Reader,
	source string,
	required ...string,
) (*Table, error) {
	rd := csv.NewReader(transform.NewReader(
		r, unicode.BOMOverride(unicode.UTF8.NewDecoder()),
	))
	rd.FieldsPerRecord = -1
	rd.LazyQuotes = true

	header, err := rd.Read()
	if errors.Is(err, io.EOF) {
		return nil, &Error{
			Kind:   ErrHeaderMissing,
			Path:   source,
			detail: "CSV header missing",
		}
	}

	if err != nil {
		return nil, &Error{
			Kind:   ErrUnreadable,
			Path:   source,
			Err:    err,
			detail: "reading header",
		}
	}

	tbl := &Table{Header: header}

	reqIdx, err := requiredIndices(tbl, source, required)
	if err != nil {
		return nil, err
	}

	for row := 1; ; row++ {
		rec, err := rd.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, &Error{
				Kind:   ErrUnreadable,
				Path:   source,
				Row:    row,
				Err:    err,
				detail: "reading row",
			}
		}

		if len(rec) > len(header) {
			return nil, &Error{
				Kind: ErrRowMalformed,
				Path: source,
				Row:  row,
				detail: fmt.Sprintf(
					"has %d fields, header has %d",
					len(rec), len(header),
				),
			}
		}

		for len(rec) < len(header) {
			rec = append(rec, "")
		}

		for idx, col := range reqIdx {
			if strings.TrimSpace(rec[col]) == "" {
				return nil, &Error{
					Kind:    ErrRowEmpty,
					Path:    source,
					Row:     row,
					Columns: []string{required[idx]},
					detail:  fmt.Sprintf("%q is empty", required[idx]),
				}
			}
		}

		tbl.Rows = append(tbl.Rows, rec)
	}

	return tbl, nil
}

func requiredIndices(
	tbl *Table,
	source string,
	required []string,
) ([]int, error) {
	var missing []string

	indices := make([]int, 0, len(required))

	for _, name := range required {
		idx := tbl.Index(name)
		if idx < 0 {
			missing = append(missing, name)
			continue
		}

		indices = append(indices, idx)
	}

	if len(missing) > 0 {
		return nil, &Error{
			Kind:    ErrColumnMissing,
			Path:    source,
			Columns: missing,
			detail: "CSV missing required columns: " +
				quoteAll(missing),
		}
	}

	return indices, nil
}
