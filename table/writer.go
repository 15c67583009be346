package table

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Encode writes t as CSV to w, header first. Lines end in
// CRLF.
func Encode(w io.Writer, t *Table) error {
	const errCtx = "encoding table"

	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("%s: header: %w", errCtx, err)
	}

	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// Write encodes t to path, creating parent directories as
// needed. The data goes to a temporary file in the same
// directory that is renamed over path once complete, so
// path is never left half written. It returns the SHA-256
// hex digest of the written bytes.
func Write(path string, t *Table) (digest string, retErr error) {
	const errCtx = "writing table"

	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // output dir must be traversable
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	defer func() {
		if retErr != nil {
			_ = os.Remove(tmp.Name()) //nolint:errcheck // best-effort cleanup
		}
	}()

	ha := sha256.New()

	if err := Encode(io.MultiWriter(tmp, ha), t); err != nil {
		_ = tmp.Close() //nolint:errcheck // already failing

		return "", fmt.Errorf("%s: %s: %w", errCtx, path, err)
	}

	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%s: %s: %w", errCtx, path, err)
	}

	if err := os.Chmod(tmp.Name(), 0o644); err != nil { //nolint:gosec // output is meant to be shared
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return hex.EncodeToString(ha.Sum(nil)), nil
}
