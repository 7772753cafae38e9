package adapters

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"nyoka-packages/internal/ports"
)

// ConsolePromptAdapter asks yes/no questions on a terminal. An empty
// answer counts as yes; anything other than y/n is asked again.
type ConsolePromptAdapter struct {
	Out       io.Writer
	AssumeYes bool
	in        *bufio.Reader
}

func NewConsolePromptAdapter(in io.Reader, out io.Writer, assumeYes bool) ConsolePromptAdapter {
	return ConsolePromptAdapter{Out: out, AssumeYes: assumeYes, in: bufio.NewReader(in)}
}

func (a ConsolePromptAdapter) Confirm(ctx context.Context, question string) (bool, error) {
	if a.AssumeYes {
		fmt.Fprintf(a.Out, "%s [Y/n] y\n", question)
		return true, nil
	}
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		fmt.Fprintf(a.Out, "%s [Y/n] ", question)
		line, err := a.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "", "y", "yes":
			if errors.Is(err, io.EOF) && line == "" {
				fmt.Fprintln(a.Out)
				return false, nil
			}
			return true, nil
		case "n", "no":
			return false, nil
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(a.Out)
			return false, nil
		}
		fmt.Fprintln(a.Out, "Invalid response, please answer y or n.")
	}
}

var _ ports.PromptPort = ConsolePromptAdapter{}
