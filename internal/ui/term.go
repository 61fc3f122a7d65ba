// File: internal/ui/term.go
// Brief: Internal ui package implementation for 'terminal helpers'.

package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// IsTerminal reports whether w is attached to a terminal.
func IsTerminal(w io.Writer) bool {
	type fdProvider interface {
		Fd() uintptr
	}
	v, ok := w.(fdProvider)
	return ok && term.IsTerminal(int(v.Fd()))
}

// Prompt reads one line of input after printing label. Used for the
// interactive setup questions when flags leave a value unset.
func Prompt(out io.Writer, in io.Reader, label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(out, "%s: ", label)
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

// PromptSecret reads a value with echo disabled when stdin is a terminal,
// falling back to a plain read otherwise.
func PromptSecret(out io.Writer, in *os.File, label string) (string, error) {
	fmt.Fprintf(out, "%s: ", label)
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
