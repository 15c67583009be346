package placeholder

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/valyala/fasttemplate"

	"github.com/byte4ever/promptfill/config"
)

const (
	startTag = "<"
	endTag   = ">"
)

// Supported placeholder names.
const (
	Company    = "company"
	CEO        = "ceo"
	Competitor = "competitor"
	Individual = "individual"
)

// ErrUnsupported is matched by every *UnsupportedError.
var ErrUnsupported = errors.New("unsupported placeholder")

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// UnsupportedError reports a token whose name is not one
// of the supported placeholders.
type UnsupportedError struct {
	Name     string
	Template string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf(
		"unsupported placeholder <%s> in template %q",
		e.Name, e.Template,
	)
}

// Is reports whether target is ErrUnsupported.
func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}

// Picker chooses an index in [0, n). *rand.Rand from
// math/rand/v2 satisfies it.
type Picker interface {
	IntN(n int) int
}

// Engine substitutes placeholders with configuration
// values.
type Engine struct {
	cfg  *config.Config
	pick Picker
}

// New returns an Engine resolving against cfg and drawing
// list values with pick.
func New(cfg *config.Config, pick Picker) *Engine {
	return &Engine{cfg: cfg, pick: pick}
}

// IsSupported reports whether name is a known placeholder.
func IsSupported(name string) bool {
	switch name {
	case Company, CEO, Competitor, Individual:
		return true
	default:
		return false
	}
}

// Names returns the distinct token names of tpl in order
// of first appearance.
func Names(tpl string) []string {
	seen := make(map[string]struct{})

	var names []string

	// Writing to io.Discard cannot fail.
	_ = scan(io.Discard, tpl, func(_ io.Writer, name string) (int, error) {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			names = append(names, name)
		}

		return 0, nil
	})

	return names
}

// Validate checks every distinct token of tpl and returns
// an *UnsupportedError for the first unknown one.
func (en *Engine) Validate(tpl string) error {
	for _, name := range Names(tpl) {
		if !IsSupported(name) {
			return &UnsupportedError{Name: name, Template: tpl}
		}
	}

	return nil
}

// Expand validates tpl and then replaces each token
// occurrence. Competitor and individual tokens draw an
// independent value per occurrence.
func (en *Engine) Expand(tpl string) (string, error) {
	const errCtx = "expanding placeholders"

	if err := en.Validate(tpl); err != nil {
		return "", err
	}

	var sb strings.Builder

	if err := scan(&sb, tpl, en.resolve); err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return sb.String(), nil
}

func (en *Engine) resolve(w io.Writer, name string) (int, error) {
	switch name {
	case Company:
		return io.WriteString(w, en.cfg.Company)
	case CEO:
		return io.WriteString(w, en.cfg.CEO)
	case Competitor:
		return io.WriteString(w, en.choose(en.cfg.Competitors))
	case Individual:
		return io.WriteString(w, en.choose(en.cfg.Individuals))
	default:
		return 0, &UnsupportedError{Name: name}
	}
}

func (en *Engine) choose(pool []string) string {
	return pool[en.pick.IntN(len(pool))]
}

// scan copies tpl to w, calling onToken for every
// well-formed <name> token. fasttemplate pairs a "<" with
// the next ">", so a tag holding another "<" only has a
// candidate name after the last one; the text before it
// and any tag that is not an identifier are literal.
func scan(
	w io.Writer,
	tpl string,
	onToken func(io.Writer, string) (int, error),
) error {
	_, err := fasttemplate.ExecuteFunc(
		tpl, startTag, endTag, w,
		func(w io.Writer, tag string) (int, error) {
			var written int

			if idx := strings.LastIndex(tag, startTag); idx >= 0 {
				nn, err := io.WriteString(w, startTag+tag[:idx])
				written += nn

				if err != nil {
					return written, err
				}

				tag = tag[idx+len(startTag):]
			}

			if !namePattern.MatchString(tag) {
				nn, err := io.WriteString(w, startTag+tag+endTag)
				return written + nn, err
			}

			nn, err := onToken(w, tag)

			return written + nn, err
		},
	)

	return err
}
