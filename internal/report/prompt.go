package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Choice is an answer to a confirmation prompt
type Choice int

const (
	ChoiceNo Choice = iota
	ChoiceYes
	ChoiceQuit
)

func (c Choice) String() string {
	switch c {
	case ChoiceYes:
		return "yes"
	case ChoiceQuit:
		return "quit"
	default:
		return "no"
	}
}

// Prompt asks yes/no/quit questions on a terminal. The default answer is no.
type Prompt struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompt creates a prompt reading answers from in
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: bufio.NewReader(in), out: out}
}

// Ask prints question and reads answers until one is recognised. End of
// input counts as the default.
func (p *Prompt) Ask(question string) (Choice, error) {
	for {
		fmt.Fprintf(p.out, "%s ([y]es, [N]o, [q]uit) ", question)

		line, err := p.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return ChoiceNo, fmt.Errorf("read answer: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return ChoiceYes, nil
		case "q", "quit":
			return ChoiceQuit, nil
		case "", "n", "no":
			return ChoiceNo, nil
		}

		if errors.Is(err, io.EOF) {
			return ChoiceNo, nil
		}
	}
}
