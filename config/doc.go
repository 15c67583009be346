// Package config loads the substitution values used to populate prompt
// templates: the company name, its CEO, and the lists of competitors and
// individuals that random placeholders are drawn from. Files ending in
// .yaml or .yml are decoded as YAML, anything else as JSON.
//
// Load never fills in defaults. A missing file, a decode failure, an absent
// key or an empty list all produce an *Error whose Kind is one of
// ErrMissing, ErrMalformed or ErrIncomplete.
package config
