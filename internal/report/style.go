package report

import "github.com/fatih/color"

// Styler applies visual styling to rendered line fragments. The renderer
// stays pure text; styling is this collaborator's concern so non-terminal
// output can opt out entirely.
type Styler interface {
	Info(s string) string
	Alert(s string) string
	Header(s string) string
}

// PlainStyler performs no styling. Used for logs, files, and tests.
type PlainStyler struct{}

func (PlainStyler) Info(s string) string   { return s }
func (PlainStyler) Alert(s string) string  { return s }
func (PlainStyler) Header(s string) string { return s }

// ColorStyler renders alerts in red and aggregate headers in bold red.
type ColorStyler struct {
	alert  *color.Color
	header *color.Color
}

// NewColorStyler creates a terminal color styler. fatih/color handles
// NO_COLOR and non-TTY detection globally.
func NewColorStyler() *ColorStyler {
	return &ColorStyler{
		alert:  color.New(color.FgRed),
		header: color.New(color.FgRed, color.Bold),
	}
}

func (c *ColorStyler) Info(s string) string   { return s }
func (c *ColorStyler) Alert(s string) string  { return c.alert.Sprint(s) }
func (c *ColorStyler) Header(s string) string { return c.header.Sprint(s) }
