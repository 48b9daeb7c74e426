// Package prompt reads the interactive answers both tools ask for.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Prompter writes a label and reads one line of input per question.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New returns a Prompter reading answers from in and writing labels to out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Line prints label and returns the next input line without its line
// terminator. A final line without a newline is returned as-is; io.EOF is
// returned only when there is no input left at all.
func (p *Prompter) Line(label string) (string, error) {
	if _, err := io.WriteString(p.out, label); err != nil {
		return "", err
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Int prompts for a base-10 integer. Surrounding whitespace is ignored.
func (p *Prompter) Int(label string) (int, error) {
	line, err := p.Line(label)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q: %w", line, err)
	}
	return n, nil
}

// Path prompts for a file path and strips double quotes from both ends, so
// paths pasted from a file manager as "C:\data\frame.txt" work unchanged.
// Single quotes are part of the name.
func (p *Prompter) Path(label string) (string, error) {
	line, err := p.Line(label)
	if err != nil {
		return "", err
	}
	return StripQuotes(line), nil
}

// Pause prints label and waits for a line. Running out of input also ends
// the wait.
func (p *Prompter) Pause(label string) error {
	_, err := p.Line(label)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// StripQuotes removes every leading and trailing double quote.
func StripQuotes(s string) string {
	return strings.Trim(s, `"`)
}
