// Package report renders a result tree into indented, severity-annotated text
// for a human operator. It is the presentation counterpart of internal/result:
// the algebra decides what failed, this package decides how that reads.
package report

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/result"
)

// Severity classifies a rendered line for routing to the correct output
// channel.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityError
)

// Class is the visual style of a rendered line. Headers carry error severity
// but are displayed bold.
type Class int

const (
	ClassInfo Class = iota
	ClassError
	ClassHeader
)

// Severity maps a visual class to its output channel.
func (c Class) Severity() Severity {
	if c == ClassInfo {
		return SeverityInfo
	}
	return SeverityError
}

// Line is one rendered line: its nesting depth, visual class, and unstyled
// content (no indentation or bullet).
type Line struct {
	Depth int
	Class Class
	Text  string
}

// okLine is what a successful result renders as.
const okLine = "No error detected"

// indentUnit is one step of visual nesting.
const indentUnit = "  "

// Renderer converts results into displayable text. The zero value is not
// usable; construct with New.
type Renderer struct {
	resolver CodeResolver
	styler   Styler
	sink     Sink
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithResolver overrides the platform error-code resolver.
func WithResolver(r CodeResolver) Option {
	return func(rd *Renderer) { rd.resolver = r }
}

// WithStyler overrides the line styler.
func WithStyler(s Styler) Option {
	return func(rd *Renderer) { rd.styler = s }
}

// WithSink overrides the output sink used by Show.
func WithSink(s Sink) Option {
	return func(rd *Renderer) { rd.sink = s }
}

// New creates a Renderer writing plain (unstyled) text to the console by
// default.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		resolver: SystemResolver{},
		styler:   PlainStyler{},
		sink:     NewConsoleSink(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lines renders res into severity-classed lines starting at the given
// nesting depth. Group children recurse at depth+1; depth is unbounded.
func (r *Renderer) Lines(res result.Status, depth int) []Line {
	detail := res.Detail()
	if detail == nil {
		return []Line{{Depth: depth, Class: ClassInfo, Text: okLine}}
	}
	switch d := detail.(type) {
	case *result.Message:
		return []Line{{Depth: depth, Class: ClassError, Text: d.Text}}
	case *result.Located:
		return []Line{{Depth: depth, Class: ClassError, Text: r.formatLocated(d)}}
	case *result.Group:
		lines := []Line{{Depth: depth, Class: ClassHeader, Text: d.Label + ":"}}
		for _, child := range d.Children {
			lines = append(lines, r.Lines(child, depth+1)...)
		}
		return lines
	default:
		return []Line{{Depth: depth, Class: ClassError, Text: detail.Error()}}
	}
}

// Render produces the full indented text block for res at the given depth.
// Lines at depth 0 carry no indentation or marker; deeper lines get
// (depth-1) indent units followed by an alert-styled bullet.
func (r *Renderer) Render(res result.Status, depth int) string {
	lines := r.Lines(res, depth)
	rendered := make([]string, len(lines))
	for i, line := range lines {
		rendered[i] = r.formatLine(line)
	}
	return strings.Join(rendered, "\n")
}

// Show renders res and writes it to the severity-appropriate sink channel.
func (r *Renderer) Show(res result.Status) {
	text := r.Render(res, 0)
	if res.IsOK() {
		r.sink.Info(text)
		return
	}
	r.sink.Error(text)
}

func (r *Renderer) formatLine(line Line) string {
	var b strings.Builder
	if line.Depth > 0 {
		b.WriteString(strings.Repeat(indentUnit, line.Depth-1))
		b.WriteString(r.styler.Alert("*"))
		b.WriteString(" ")
	}
	switch line.Class {
	case ClassHeader:
		b.WriteString(r.styler.Header(line.Text))
	case ClassError:
		b.WriteString(r.styler.Alert(line.Text))
	default:
		b.WriteString(r.styler.Info(line.Text))
	}
	return b.String()
}

// formatLocated resolves a platform error code if present and formats the
// location prefix. Line 0 renders without a line suffix.
func (r *Renderer) formatLocated(d *result.Located) string {
	text := d.Text
	if d.Code != 0 {
		text = r.resolver.Resolve(d.Code)
	}
	if d.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", d.Path, d.Line, text)
	}
	return fmt.Sprintf("%s: %s", d.Path, text)
}
