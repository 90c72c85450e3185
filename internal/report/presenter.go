package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jayteealao/gigit/internal/git"
	"github.com/jayteealao/gigit/internal/tree"
)

// Entry is one tree's block in a consolidated report.
type Entry struct {
	Label tree.Label
	Text  string
}

// Presenter writes banners and tree output. Report lines go to out,
// failure blocks and warnings to errOut.
type Presenter struct {
	out    io.Writer
	errOut io.Writer
	styles styles
}

// New creates a Presenter. Colours are only emitted when color is set and
// out is a terminal that supports them.
func New(out, errOut io.Writer, color bool) *Presenter {
	r := lipgloss.NewRenderer(out)
	return &Presenter{
		out:    out,
		errOut: errOut,
		styles: newStyles(r, color),
	}
}

// Banner renders text highlighted in the tree's colour.
func (p *Presenter) Banner(l tree.Label, text string) string {
	return p.styles.forLabel(l).Render(text)
}

// Block prints the tree banner followed by its output.
func (p *Presenter) Block(l tree.Label, text string) {
	fmt.Fprintln(p.out, p.Banner(l, l.String()+":"))
	p.Raw(text)
}

// Pair prints one block per entry, in the order given.
func (p *Presenter) Pair(entries []Entry) {
	for _, e := range entries {
		p.Block(e.Label, e.Text)
	}
}

// Status prints a highlighted "<Label>: <msg>" line.
func (p *Presenter) Status(l tree.Label, msg string) {
	fmt.Fprintln(p.out, p.Banner(l, l.String()+": "+msg))
}

// Raw prints captured output, adding a trailing newline when missing.
func (p *Presenter) Raw(text string) {
	if text == "" {
		fmt.Fprintln(p.out)
		return
	}
	io.WriteString(p.out, text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(p.out)
	}
}

// Notice prints a plain progress line.
func (p *Presenter) Notice(msg string) {
	fmt.Fprintln(p.out, msg)
}

// Warning prints a prominent per-tree warning on the error stream.
func (p *Presenter) Warning(l tree.Label, msg string) {
	fmt.Fprintln(p.errOut, p.styles.warning.Render(fmt.Sprintf("WARNING (%s): %s", l, msg)))
}

// Failure prints the error block for a command that failed in a tree.
func (p *Presenter) Failure(cmd git.Command, l tree.Label, res git.Result) {
	fmt.Fprintf(p.errOut, "Error while running command: %s in %s\n", cmd, l)
	fmt.Fprintf(p.errOut, "Standard output: %s\n", strings.TrimRight(res.Stdout, "\n"))
	fmt.Fprintf(p.errOut, "Error output: %s\n", strings.TrimRight(res.Stderr, "\n"))
}
