package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
)

// Kinds of configuration failure. Every *Error matches
// exactly one of them with errors.Is.
var (
	ErrMissing    = errors.New("config not found")
	ErrMalformed  = errors.New("config malformed")
	ErrIncomplete = errors.New("config incomplete")
)

// Keys that must be present in every configuration
// document, in reporting order.
var requiredKeys = []string{
	"company", "ceo", "competitors", "individuals",
}

// Config holds the values placeholders resolve to.
type Config struct {
	// Company replaces <company>.
	Company string `json:"company"`

	// CEO replaces <ceo>.
	CEO string `json:"ceo"`

	// Competitors is the pool <competitor> draws from.
	Competitors []string `json:"competitors" validate:"min=1"`

	// Individuals is the pool <individual> draws from.
	Individuals []string `json:"individuals" validate:"min=1"`
}

// Error describes why a configuration file was rejected.
type Error struct {
	// Kind is ErrMissing, ErrMalformed or ErrIncomplete.
	Kind error

	// Path is the configuration file.
	Path string

	// Keys lists the offending keys, if any.
	Keys []string

	// Err is the underlying cause, if any.
	Err error

	msg string
}

func (e *Error) Error() string {
	return e.msg
}

// Unwrap exposes both the kind and the cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	va := validator.New(validator.WithRequiredStructEnabled())

	// Report fields under their document key names.
	va.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return va
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path from CLI flag
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &Error{
				Kind: ErrMissing,
				Path: path,
				Err:  err,
				msg: fmt.Sprintf(
					"config not found: %s. Copy config.example.json"+
						" to config.json and edit it",
					path,
				),
			}
		}

		return nil, malformed(path, err)
	}

	doc, err := decode(path, raw)
	if err != nil {
		return nil, malformed(path, err)
	}

	return fromDocument(path, doc)
}

// decode parses raw into a generic document so that key
// presence can be told apart from zero values.
func decode(path string, raw []byte) (map[string]any, error) {
	var doc map[string]any

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
	}

	return doc, nil
}

func fromDocument(path string, doc map[string]any) (*Config, error) {
	var missing []string

	for _, key := range requiredKeys {
		if _, ok := doc[key]; !ok {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return nil, &Error{
			Kind: ErrIncomplete,
			Path: path,
			Keys: missing,
			msg: fmt.Sprintf(
				"config %s missing keys: %s",
				path, strings.Join(missing, ", "),
			),
		}
	}

	cfg := &Config{}

	var err error

	if cfg.Company, err = scalar(path, "company", doc["company"]); err != nil {
		return nil, err
	}

	if cfg.CEO, err = scalar(path, "ceo", doc["ceo"]); err != nil {
		return nil, err
	}

	if cfg.Competitors, err = list(path, "competitors", doc["competitors"]); err != nil {
		return nil, err
	}

	if cfg.Individuals, err = list(path, "individuals", doc["individuals"]); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			return nil, malformed(path, err)
		}

		// Fields are checked in declaration order, so the
		// first failure is competitors before individuals.
		field := verrs[0].Field()

		return nil, &Error{
			Kind: ErrIncomplete,
			Path: path,
			Keys: []string{field},
			Err:  err,
			msg: fmt.Sprintf(
				"config %s: '%s' must be a non-empty list",
				path, field,
			),
		}
	}

	return cfg, nil
}

// scalar stringifies a string, number or boolean value.
func scalar(path, key string, val any) (string, error) {
	switch vv := val.(type) {
	case string:
		return vv, nil
	case bool, float64, int, int64, uint64:
		return fmt.Sprint(vv), nil
	default:
		return "", &Error{
			Kind: ErrMalformed,
			Path: path,
			Keys: []string{key},
			msg: fmt.Sprintf(
				"invalid config %s: '%s' must be a string",
				path, key,
			),
		}
	}
}

// list converts a sequence of scalars. A value that is not
// a sequence yields nil, which the min=1 rule then rejects.
func list(path, key string, val any) ([]string, error) {
	items, ok := val.([]any)
	if !ok {
		return nil, nil
	}

	out := make([]string, 0, len(items))

	for idx, item := range items {
		sv, err := scalar(path, fmt.Sprintf("%s[%d]", key, idx), item)
		if err != nil {
			return nil, err
		}

		out = append(out, sv)
	}

	return out, nil
}

func malformed(path string, err error) *Error {
	return &Error{
		Kind: ErrMalformed,
		Path: path,
		Err:  err,
		msg:  fmt.Sprintf("invalid config %s: %v", path, err),
	}
}
