// Package coding runs user code locally and wraps the model for debugging,
// analysis and fix application.
package coding

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/rcliao/ryan/internal/model"
)

const (
	DefaultTimeout     = 30 * time.Second
	DefaultGracePeriod = 5 * time.Second
)

// Executor runs code snippets through a local interpreter. Code is not
// sandboxed.
type Executor struct {
	interpreters map[string][]string
	timeout      time.Duration
	grace        time.Duration
	log          zerolog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithInterpreter maps language to argv; the code is appended as the last
// argument. An empty argv removes the language.
func WithInterpreter(language string, argv ...string) ExecutorOption {
	lang := strings.ToLower(language)
	return func(e *Executor) {
		if len(argv) == 0 {
			delete(e.interpreters, lang)
			return
		}
		e.interpreters[lang] = argv
	}
}

// WithTimeout bounds how long a snippet may run.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithGracePeriod sets how long a timed-out process gets after SIGTERM
// before it is killed.
func WithGracePeriod(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		if d > 0 {
			e.grace = d
		}
	}
}

// NewExecutor returns an Executor for python and javascript.
func NewExecutor(log zerolog.Logger, opts ...ExecutorOption) *Executor {
	e := &Executor{
		interpreters: map[string][]string{
			"python":     {"python3", "-c"},
			"javascript": {"node", "-e"},
		},
		timeout: DefaultTimeout,
		grace:   DefaultGracePeriod,
		log:     log.With().Str("component", "executor").Logger(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Languages lists the supported languages.
func (e *Executor) Languages() []string {
	out := make([]string, 0, len(e.interpreters))
	for l := range e.interpreters {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Execute runs code and returns a code_execution_result. Only failures the
// interpreter never got to report become an error response.
func (e *Executor) Execute(ctx context.Context, code, language string) model.Response {
	lang := strings.ToLower(strings.TrimSpace(language))
	argv, ok := e.interpreters[lang]
	if !ok {
		e.log.Warn().Str("language", language).Msg("unsupported language for execution")
		executions.WithLabelValues(lang, "unsupported").Inc()
		return model.ExecutionResponse(model.Execution{
			Language:   language,
			Error:      fmt.Sprintf("Unsupported language: %s", language),
			ReturnCode: 1,
		})
	}

	execCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	args := append(append([]string{}, argv[1:]...), code)
	cmd := exec.CommandContext(execCtx, argv[0], args...)
	cmd.Cancel = func() error { return cmd.Process.Signal(syscall.SIGTERM) }
	cmd.WaitDelay = e.grace

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	log := e.log.With().Str("language", lang).Dur("elapsed", time.Since(start)).Logger()

	switch {
	case ctx.Err() == nil && errors.Is(execCtx.Err(), context.DeadlineExceeded):
		log.Warn().Dur("timeout", e.timeout).Msg("code execution timed out")
		executions.WithLabelValues(lang, "timeout").Inc()
		return model.ExecutionResponse(model.Execution{
			Language:   language,
			Error:      fmt.Sprintf("Code execution timed out after %s.", e.timeout),
			ReturnCode: 1,
		})
	case ctx.Err() != nil:
		executions.WithLabelValues(lang, "cancelled").Inc()
		return model.ExecutionResponse(model.Execution{
			Language:   language,
			Error:      "Code execution was cancelled.",
			ReturnCode: 1,
		})
	case errors.Is(err, exec.ErrNotFound):
		log.Error().Str("interpreter", argv[0]).Msg("interpreter not found")
		executions.WithLabelValues(lang, "missing_interpreter").Inc()
		return model.ExecutionResponse(model.Execution{
			Language:   language,
			Error:      fmt.Sprintf("Interpreter for %s not found. Make sure '%s' is installed and in your PATH.", language, argv[0]),
			ReturnCode: 1,
		})
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			log.Error().Err(err).Msg("code execution failed")
			executions.WithLabelValues(lang, "error").Inc()
			return model.Error(fmt.Sprintf("An unexpected error occurred during code execution: %v", err))
		}
		exitCode = exitErr.ExitCode()
	}

	log.Info().Int("return_code", exitCode).Msg("code execution finished")
	result := "ok"
	if exitCode != 0 {
		result = "nonzero_exit"
	}
	executions.WithLabelValues(lang, result).Inc()

	return model.ExecutionResponse(model.Execution{
		Success:    exitCode == 0,
		Language:   language,
		Output:     stdout.String(),
		Error:      stderr.String(),
		ReturnCode: exitCode,
	})
}
