package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Prompter asks the operator for a y/N confirmation before the pipeline
// mutates anything. The zero value aborts every run; newPrompter binds one
// to the process terminal.
type Prompter struct {
	In        io.Reader
	Out       io.Writer
	IsTTY     bool
	AssumeYes bool
}

func newPrompter(assumeYes bool) *Prompter {
	return &Prompter{
		In:        os.Stdin,
		Out:       os.Stdout,
		IsTTY:     isatty.IsTerminal(os.Stdin.Fd()),
		AssumeYes: assumeYes,
	}
}

// Confirm reports whether the run should proceed. Only an explicit y or Y
// answer proceeds; everything else aborts, including a non-interactive
// stdin without --yes.
func (p *Prompter) Confirm(question string) bool {
	if p.AssumeYes {
		return true
	}

	if !p.IsTTY {
		fmt.Fprintln(p.Out, color.YellowString("stdin is not a terminal; pass --yes to run without confirmation"))
		return false
	}

	fmt.Fprintf(p.Out, "%s [y/N]: ", question)

	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "y")
}
