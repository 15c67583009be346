// Package populate runs the whole template population pipeline: load the
// configuration, read and validate every template row, expand each
// template's placeholders, and write the augmented table with a
// "generated user input" column placed right after "user input template".
//
// The pipeline fails on the first problem and writes nothing in that case.
// With Options.Seed set, random picks are reproducible across runs.
package populate
