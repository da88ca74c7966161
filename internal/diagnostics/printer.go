package diagnostics

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	ansiRed   = "\x1b[31;1m"
	ansiReset = "\x1b[0m"
)

// Printer writes diagnostics in file:line:col form.
type Printer struct {
	w     io.Writer
	color bool
}

// NewPrinter returns a Printer writing to w. Color is enabled when w is
// a terminal.
func NewPrinter(w io.Writer) *Printer {
	p := &Printer{w: w}
	if f, ok := w.(*os.File); ok {
		fd := f.Fd()
		p.color = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
	return p
}

// Print writes one diagnostic.
func (p *Printer) Print(d Diagnostic) {
	label := "error"
	if p.color {
		label = ansiRed + label + ansiReset
	}
	if d.Pos.IsValid() {
		fmt.Fprintf(p.w, "%s: %s: %s: %s\n", d.Pos, label, d.Kind, d.Message)
		return
	}
	fmt.Fprintf(p.w, "%s: %s: %s\n", label, d.Kind, d.Message)
}

// PrintErr writes err. A List (or wrapped List) is printed one
// diagnostic per line; any other error is printed as-is.
// It returns the number of lines printed.
func (p *Printer) PrintErr(err error) int {
	if err == nil {
		return 0
	}
	var list List
	if errors.As(err, &list) {
		list.Sort()
		for _, d := range list {
			p.Print(d)
		}
		return len(list)
	}
	var d Diagnostic
	if errors.As(err, &d) {
		p.Print(d)
		return 1
	}
	label := "error"
	if p.color {
		label = ansiRed + label + ansiReset
	}
	fmt.Fprintf(p.w, "%s: %v\n", label, err)
	return 1
}
