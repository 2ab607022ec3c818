package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"docqa/internal/domain"
)

const (
	ExitToken = "q"
	Prompt    = "Question (q to quit): "
	separator = "--------------------------------------------------"
)

// Asker answers one question; satisfied by *service.RAGService.
type Asker interface {
	Ask(ctx context.Context, question string) (domain.Answer, error)
}

// State of the loop.
type State int

const (
	AwaitingInput State = iota
	Terminated
)

// Loop reads one question per line and prints one answer per question.
type Loop struct {
	asker Asker
	in    *bufio.Scanner
	out   io.Writer
	state State
}

func New(asker Asker, in io.Reader, out io.Writer) *Loop {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Loop{asker: asker, in: sc, out: out, state: AwaitingInput}
}

// State returns the current loop state.
func (l *Loop) State() State { return l.state }

// IsExit reports whether line is the exit token, ignoring case and surrounding space.
func IsExit(line string) bool {
	return strings.EqualFold(strings.TrimSpace(line), ExitToken)
}

// Run drives the loop until the exit token or end of input. A failed question ends
// the loop and returns its error.
func (l *Loop) Run(ctx context.Context) error {
	for l.state == AwaitingInput {
		if err := l.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Step handles a single line of input.
func (l *Loop) Step(ctx context.Context) error {
	if l.state == Terminated {
		return nil
	}
	fmt.Fprint(l.out, Prompt)
	if !l.in.Scan() {
		l.state = Terminated
		fmt.Fprintln(l.out)
		return l.in.Err()
	}
	line := l.in.Text()
	if IsExit(line) {
		l.state = Terminated
		fmt.Fprintln(l.out, "Bye!")
		return nil
	}
	if strings.TrimSpace(line) == "" {
		return nil
	}
	answer, err := l.asker.Ask(ctx, line)
	if err != nil {
		l.state = Terminated
		return err
	}
	fmt.Fprintf(l.out, "Answer: %s\n", answer.Text)
	fmt.Fprintln(l.out, separator)
	return nil
}
