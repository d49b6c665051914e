package wizard

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// LinePrompter reads one line per question from a reader. It serves piped
// stdin and scripted runs.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

func (p *LinePrompter) Input(ctx context.Context, field Field, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", field.Title, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", field.Title)
	}
	return p.readLine(ctx)
}

func (p *LinePrompter) Confirm(ctx context.Context, title, description string) (bool, error) {
	fmt.Fprintf(p.out, "%s\n%s\nType yes to continue: ", title, description)
	line, err := p.readLine(ctx)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (p *LinePrompter) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
