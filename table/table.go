package table

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Kinds of table failure. Every *Error matches exactly
// one of them with errors.Is.
var (
	ErrFileMissing   = errors.New("templates file not found")
	ErrHeaderMissing = errors.New("header missing")
	ErrColumnMissing = errors.New("required column missing")
	ErrRowEmpty      = errors.New("required cell empty")
	ErrRowMalformed  = errors.New("row malformed")
	ErrUnreadable    = errors.New("table unreadable")
)

// Table is a fully materialized CSV file. Every row has
// exactly len(Header) cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of the first column called
// name, or -1.
func (t *Table) Index(name string) int {
	return slices.Index(t.Header, name)
}

// EnsureColumn returns the index of column name, inserting
// it right after column after when it does not exist yet.
// If after is absent too, the column is appended. New
// cells are empty.
func (t *Table) EnsureColumn(after, name string) int {
	if idx := t.Index(name); idx >= 0 {
		return idx
	}

	idx := len(t.Header)
	if pos := t.Index(after); pos >= 0 {
		idx = pos + 1
	}

	t.Header = slices.Insert(t.Header, idx, name)

	for ri := range t.Rows {
		t.Rows[ri] = slices.Insert(t.Rows[ri], idx, "")
	}

	return idx
}

// Error describes why a table was rejected.
type Error struct {
	// Kind is one of the Err* sentinels of this package.
	Kind error

	// Path is the file (or source name) of the table.
	Path string

	// Row is the 1-based data row, or 0 for file-level
	// failures.
	Row int

	// Columns lists the offending columns, if any.
	Columns []string

	// Err is the underlying cause, if any.
	Err error

	detail string
}

func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(e.Path)

	if e.Row > 0 {
		fmt.Fprintf(&sb, ": row %d", e.Row)
	}

	sb.WriteString(": ")
	sb.WriteString(e.detail)

	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}

	return sb.String()
}

// Unwrap exposes both the kind and the cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

func quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for idx, name := range names {
		quoted[idx] = fmt.Sprintf("%q", name)
	}

	return strings.Join(quoted, ", ")
}
