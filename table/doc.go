// Package table reads and writes the header-described CSV files that carry
// prompt templates. Read strips a leading byte-order mark, checks the header
// for required columns and rejects rows whose required cells are blank;
// Write replaces its destination atomically and returns the SHA-256 digest
// of what it wrote.
package table
