// Package template expands snippet templates into final text plus an
// optional caret offset.
//
// Processing order is fixed so output is deterministic:
//
//  1. conditional expressions {if:condition:trueValue:falseValue},
//     substituted iteratively with a bounded iteration count
//  2. built-in variables (date, time, clipboard, ...)
//  3. user-defined variables {name} / {name:default}, prompted once and
//     cached until changed
//  4. the caret marker, stripped and reported as an offset from the end
package template

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/expr-lang/expr"

	"go.klb.dev/snipd/internal/snippet"
)

// maxConditionalPasses bounds iterative conditional substitution so a
// pathological template cannot expand forever.
const maxConditionalPasses = 10

// Built-in variable names. Reserved: never treated as user-defined.
var builtins = map[string]struct{}{
	"date": {}, "time": {}, "datetime": {},
	"year": {}, "month": {}, "day": {},
	"clipboard": {},
}

// Prompter supplies values for user-defined variables. Implementations
// bridge to whatever owns the UI thread; the processing domain blocks on
// the returned value with a bounded timeout.
type Prompter interface {
	// Prompt asks the user for the value of name. def is the template's
	// default value ("" if none).
	Prompt(ctx context.Context, name, def string) (string, error)
}

// PrompterFunc adapts a function to the Prompter interface.
type PrompterFunc func(ctx context.Context, name, def string) (string, error)

func (f PrompterFunc) Prompt(ctx context.Context, name, def string) (string, error) {
	return f(ctx, name, def)
}

// ErrNoPrompter is returned when a template needs a user variable but no
// prompter is configured and the variable has no default.
var ErrNoPrompter = errors.New("no prompter configured for user variable")

// Result is the output of processing a template.
type Result struct {
	Text string

	// CaretOffset is the caret position measured in runes from the end of
	// Text. Negative when the template had no caret marker.
	CaretOffset int
}

// Processor expands templates. Safe for use from a single processing
// goroutine; the variable cache is not otherwise synchronized.
type Processor struct {
	clipboardText func() string
	prompter      Prompter
	promptTimeout time.Duration
	now           func() time.Time

	// varCache holds prompted user-variable values, keyed by name, for the
	// lifetime of the processor or until invalidated.
	varCache map[string]string
}

// Option configures a Processor.
type Option func(*Processor)

// WithClipboard supplies the live clipboard text for the {clipboard} builtin.
func WithClipboard(read func() string) Option {
	return func(p *Processor) { p.clipboardText = read }
}

// WithPrompter supplies the user-variable prompter.
func WithPrompter(pr Prompter, timeout time.Duration) Option {
	return func(p *Processor) { p.prompter = pr; p.promptTimeout = timeout }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// NewProcessor returns a Processor with the given options applied.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		clipboardText: func() string { return "" },
		now:           time.Now,
		promptTimeout: 30 * time.Second,
		varCache:      make(map[string]string),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// InvalidateVar drops a cached user-variable value so the next expansion
// prompts again.
func (p *Processor) InvalidateVar(name string) { delete(p.varCache, name) }

// Process expands tmpl.
func (p *Processor) Process(ctx context.Context, tmpl string) (Result, error) {
	s, err := p.expandConditionals(tmpl)
	if err != nil {
		return Result{}, err
	}
	s = p.expandBuiltins(s)
	s, err = p.expandUserVars(ctx, s)
	if err != nil {
		return Result{}, err
	}
	text, offset := stripCaret(s)
	return Result{Text: text, CaretOffset: offset}, nil
}

var conditionalRe = regexp.MustCompile(`\{if:([^{}]*)\}`)

// expandConditionals substitutes {if:cond:true:false} expressions until
// none remain or the pass bound is hit.
func (p *Processor) expandConditionals(s string) (string, error) {
	for pass := 0; pass < maxConditionalPasses; pass++ {
		m := conditionalRe.FindStringSubmatchIndex(s)
		if m == nil {
			return s, nil
		}
		body := s[m[2]:m[3]]
		cond, trueVal, falseVal, err := splitConditional(body)
		if err != nil {
			return "", err
		}
		ok, err := evalCondition(cond)
		if err != nil {
			return "", fmt.Errorf("conditional %q: %w", cond, err)
		}
		repl := falseVal
		if ok {
			repl = trueVal
		}
		s = s[:m[0]] + repl + s[m[1]:]
	}
	return s, nil
}

// splitConditional splits "cond:true:false" on colons outside double
// quotes. The false branch may contain further colons.
func splitConditional(body string) (cond, trueVal, falseVal string, err error) {
	var parts []string
	depth := false
	start := 0
	for i := 0; i < len(body) && len(parts) < 2; i++ {
		switch body[i] {
		case '"':
			depth = !depth
		case ':':
			if !depth {
				parts = append(parts, body[start:i])
				start = i + 1
			}
		}
	}
	if len(parts) < 2 {
		return "", "", "", fmt.Errorf("malformed conditional %q", body)
	}
	return parts[0], parts[1], body[start:], nil
}

// evalCondition evaluates a comparison (<, >, ==, !=) or string containment
// (contains) expression.
func evalCondition(cond string) (bool, error) {
	prog, err := expr.Compile(cond, expr.AsBool())
	if err != nil {
		return false, err
	}
	out, err := expr.Run(prog, nil)
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("condition did not evaluate to a boolean")
	}
	return b, nil
}

func (p *Processor) expandBuiltins(s string) string {
	now := p.now()
	pairs := []string{
		"{date}", now.Format("2006-01-02"),
		"{time}", now.Format("15:04"),
		"{datetime}", now.Format("2006-01-02 15:04"),
		"{year}", now.Format("2006"),
		"{month}", now.Format("01"),
		"{day}", now.Format("02"),
	}
	if strings.Contains(s, "{clipboard}") {
		pairs = append(pairs, "{clipboard}", p.clipboardText())
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

var userVarRe = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)(?::([^{}]*))?\}`)

// expandUserVars resolves {name} and {name:default}, prompting at most once
// per name and caching the value for subsequent expansions.
func (p *Processor) expandUserVars(ctx context.Context, s string) (string, error) {
	var firstErr error
	out := userVarRe.ReplaceAllStringFunc(s, func(tok string) string {
		if firstErr != nil {
			return tok
		}
		m := userVarRe.FindStringSubmatch(tok)
		name, def := m[1], m[2]
		if _, reserved := builtins[name]; reserved {
			return tok
		}
		// A conditional that survived the pass bound would otherwise read
		// as a user variable named "if"; leave it literal.
		if name == "if" {
			return tok
		}
		if v, ok := p.varCache[name]; ok {
			return v
		}
		v, err := p.resolveVar(ctx, name, def)
		if err != nil {
			firstErr = err
			return tok
		}
		p.varCache[name] = v
		return v
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

func (p *Processor) resolveVar(ctx context.Context, name, def string) (string, error) {
	if p.prompter == nil {
		if def != "" {
			return def, nil
		}
		return "", fmt.Errorf("variable %q: %w", name, ErrNoPrompter)
	}
	ctx, cancel := context.WithTimeout(ctx, p.promptTimeout)
	defer cancel()
	v, err := p.prompter.Prompt(ctx, name, def)
	if err != nil {
		if def != "" {
			return def, nil
		}
		return "", fmt.Errorf("prompt for %q: %w", name, err)
	}
	return v, nil
}

// stripCaret removes the first caret marker and returns its position as a
// rune offset from the end of the final string, or -1 if absent.
func stripCaret(s string) (string, int) {
	runes := []rune(s)
	for i, r := range runes {
		if r == snippet.CaretMarker {
			rest := append(append([]rune(nil), runes[:i]...), runes[i+1:]...)
			return string(rest), len(rest) - i
		}
	}
	return s, -1
}
