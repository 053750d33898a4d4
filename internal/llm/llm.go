// Package llm wraps the generative model behind a single-call Completer.
package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Completer turns a prompt into model text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrNoCandidates is returned when the model produced no answer at all.
var ErrNoCandidates = errors.New("llm: no candidates returned")

// ErrUnavailable is returned when no model is configured.
var ErrUnavailable = errors.New("llm: model not available")

// BlockedError reports that the prompt or answer was withheld by safety filters.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("llm: blocked by safety filter (%s)", e.Reason)
}

// IsBlocked reports whether err is or wraps a *BlockedError.
func IsBlocked(err error) bool {
	var b *BlockedError
	return errors.As(err, &b)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

var codeBlockRe = regexp.MustCompile("(?s)```(?:\\w+)?\\n(.*?)\\n```")

// ExtractCodeBlock returns the body of the first fenced code block in text.
func ExtractCodeBlock(text string) (string, bool) {
	m := codeBlockRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// StripCodeBlock removes the first fenced code block from text.
func StripCodeBlock(text string) string {
	loc := codeBlockRe.FindStringIndex(text)
	if loc == nil {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
}
