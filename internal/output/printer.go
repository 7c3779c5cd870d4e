// Package output formats CLI status lines and tables.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// ColorMode selects when status lines are colored.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// PrinterOptions configures a Printer. Nil writers mean stdout and stderr.
type PrinterOptions struct {
	ColorMode ColorMode
	Quiet     bool
	Out       io.Writer
	Err       io.Writer
}

// Printer writes status lines, section headers and pre-rendered charts.
// Quiet silences everything except errors.
type Printer struct {
	out       io.Writer
	err       io.Writer
	useColors bool
	quiet     bool
}

// ParseColorMode accepts "auto" (or ""), "always" and "never".
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode %q: must be auto, always, or never", s)
	}
}

// ResolveColors decides whether mode turns colors on. Auto honors NO_COLOR,
// TERM=dumb and fatih/color's terminal detection.
func ResolveColors(mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return !color.NoColor
}

func NewPrinter(opts PrinterOptions) *Printer {
	p := &Printer{
		out:       opts.Out,
		err:       opts.Err,
		useColors: ResolveColors(opts.ColorMode),
		quiet:     opts.Quiet,
	}
	if p.out == nil {
		p.out = os.Stdout
	}
	if p.err == nil {
		p.err = os.Stderr
	}
	return p
}

// Out is the writer tables render to.
func (p *Printer) Out() io.Writer { return p.out }

func (p *Printer) IsQuiet() bool { return p.quiet }

// status writes one line to w, colored with attr and prefixed with symbol,
// or prefixed with tag when colors are off.
func (p *Printer) status(w io.Writer, attr color.Attribute, symbol, tag, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	switch {
	case p.useColors && symbol != "":
		color.New(attr).Fprintln(w, symbol+" "+msg)
	case p.useColors:
		color.New(attr).Fprintln(w, msg)
	case tag != "":
		fmt.Fprintln(w, tag+" "+msg)
	default:
		fmt.Fprintln(w, msg)
	}
}

func (p *Printer) Info(format string, args ...any) {
	if !p.quiet {
		p.status(p.out, color.FgCyan, "", "", format, args...)
	}
}

func (p *Printer) Success(format string, args ...any) {
	if !p.quiet {
		p.status(p.out, color.FgGreen, "✓", "[OK]", format, args...)
	}
}

// Warning goes to stderr so it never mixes into piped tables.
func (p *Printer) Warning(format string, args ...any) {
	if !p.quiet {
		p.status(p.err, color.FgYellow, "⚠", "[WARN]", format, args...)
	}
}

// Error is printed even when quiet.
func (p *Printer) Error(format string, args ...any) {
	p.status(p.err, color.FgRed, "✗", "[ERROR]", format, args...)
}

func (p *Printer) Print(format string, args ...any) {
	if !p.quiet {
		fmt.Fprintf(p.out, format+"\n", args...)
	}
}

// Block writes pre-rendered text such as a chart.
func (p *Printer) Block(text string) {
	if !p.quiet {
		fmt.Fprintln(p.out, strings.TrimRight(text, "\n"))
	}
}

// Header starts a result section: a blank line, the title and an underline.
func (p *Printer) Header(title string) {
	if p.quiet {
		return
	}
	width := len([]rune(title))
	if p.useColors {
		color.New(color.FgWhite, color.Bold).Fprintf(p.out, "\n%s\n", title)
		color.New(color.FgWhite).Fprintln(p.out, strings.Repeat("─", width))
		return
	}
	fmt.Fprintf(p.out, "\n%s\n%s\n", title, strings.Repeat("-", width))
}

// Dim fades text when colors are on.
func (p *Printer) Dim(text string) string {
	if p.useColors {
		return color.New(color.Faint).Sprint(text)
	}
	return text
}
