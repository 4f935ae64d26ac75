package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// linePrompter reads the authorization short code as one line of input.
type linePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newLinePrompter(in *bufio.Reader, out io.Writer) *linePrompter {
	return &linePrompter{in: in, out: out}
}

// PromptShortCode asks for the code COLT displays after the request.
func (p *linePrompter) PromptShortCode(ctx context.Context) (string, error) {
	fmt.Fprint(p.out, "Enter the short code shown by COLT: ")

	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := p.in.ReadString('\n')
		ch <- result{line, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil && (!errors.Is(r.err, io.EOF) || r.line == "") {
			return "", fmt.Errorf("read short code: %w", r.err)
		}
		return strings.TrimSpace(r.line), nil
	}
}
