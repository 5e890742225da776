package result

import (
	"errors"
	"fmt"
	"strings"
	"syscall"
)

// Detail is the payload of a failed Result: a flat message, a message tied to
// a source location, or a labeled group of child failures. All variants
// implement error so a Detail can cross plain-error boundaries intact.
type Detail interface {
	error
	isDetail()
}

// Message is a flat human-readable failure description.
type Message struct {
	Text string
}

func (m *Message) isDetail() {}

func (m *Message) Error() string {
	return m.Text
}

// Msgf creates a Message detail with a formatted description.
func Msgf(format string, args ...any) *Message {
	return &Message{Text: fmt.Sprintf(format, args...)}
}

// Located is a failure attributable to a specific source location.
// Line 0 means the location is known but the line is not. When Code is
// non-zero the failure carries a platform error code instead of free text;
// the code is resolved to a message at render time by internal/report.
type Located struct {
	Path string
	Line int
	Text string
	Code int
}

func (l *Located) isDetail() {}

func (l *Located) Error() string {
	text := l.Text
	if text == "" && l.Code != 0 {
		text = fmt.Sprintf("error %d", l.Code)
	}
	if l.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", l.Path, l.Line, text)
	}
	return fmt.Sprintf("%s: %s", l.Path, text)
}

// LocatedFrom builds a located failure from an I/O error, preserving the
// platform error code when one is available so the renderer can resolve it
// to a localized message.
func LocatedFrom(path string, err error) *Located {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return &Located{Path: path, Code: int(errno)}
	}
	return &Located{Path: path, Text: err.Error()}
}

// Group is a labeled collection of child failures produced by Aggregate and
// AggregateValues. Children hold only failed results, in input order, and a
// Group is never constructed with zero children.
type Group struct {
	Label    string
	Children []Status
}

func (g *Group) isDetail() {}

// Error flattens the group to a single line; the indented multi-line form is
// the renderer's job.
func (g *Group) Error() string {
	parts := make([]string, 0, len(g.Children))
	for _, child := range g.Children {
		if d := child.Detail(); d != nil {
			parts = append(parts, d.Error())
		}
	}
	return g.Label + ": " + strings.Join(parts, "; ")
}
