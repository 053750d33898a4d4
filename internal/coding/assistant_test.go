package coding

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/ryan/internal/llm"
	"github.com/rcliao/ryan/internal/model"
)

type fakeCompleter struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func TestDebugExtractsCorrectedCode(t *testing.T) {
	fc := &fakeCompleter{reply: "x is undefined.\n```python\nx = 1\nprint(x)\n```\nDefine it first."}
	a := NewAssistant(fc, zerolog.Nop())

	resp := a.Debug(context.Background(), DebugRequest{
		Code:        "print(x)",
		ErrorOutput: "NameError",
		Language:    "python",
		Memory:      "- editor: vim\n",
	})

	require.Equal(t, model.TypeDebugResult, resp.Type)
	assert.True(t, resp.Debug.Success)
	assert.Equal(t, "x = 1\nprint(x)", resp.Debug.CorrectedCode)
	assert.Equal(t, "x is undefined.\n\nDefine it first.", resp.Debug.Suggestion)
	assert.Equal(t, fc.reply, resp.Debug.RawResponse)

	require.Len(t, fc.prompts, 1)
	assert.Contains(t, fc.prompts[0], "Relevant Memory (for context):\n- editor: vim")
	assert.Contains(t, fc.prompts[0], "```python\nprint(x)\n```")
	assert.Contains(t, fc.prompts[0], "NameError")
}

func TestDebugFallbacks(t *testing.T) {
	blocked := NewAssistant(&fakeCompleter{err: &llm.BlockedError{Reason: "SAFETY"}}, zerolog.Nop())
	resp := blocked.Debug(context.Background(), DebugRequest{Code: "x"})
	assert.False(t, resp.Debug.Success)
	assert.Equal(t, "My analysis was blocked due to safety concerns.", resp.Debug.Suggestion)

	failing := NewAssistant(&fakeCompleter{err: errors.New("boom")}, zerolog.Nop())
	resp = failing.Debug(context.Background(), DebugRequest{Code: "x"})
	assert.Equal(t, model.TypeError, resp.Type)
	assert.Contains(t, resp.Content, "boom")

	none := NewAssistant(nil, zerolog.Nop())
	resp = none.Debug(context.Background(), DebugRequest{Code: "x"})
	assert.Equal(t, "AI model is not available.", resp.Debug.Suggestion)
}

func TestAnalyzeDefaultTask(t *testing.T) {
	fc := &fakeCompleter{reply: "  It adds numbers.  "}
	a := NewAssistant(fc, zerolog.Nop())

	resp := a.Analyze(context.Background(), AnalyzeRequest{Code: "def add(a, b): return a + b"})

	require.Equal(t, model.TypeAnalysisResult, resp.Type)
	assert.True(t, resp.Analysis.Success)
	assert.Equal(t, "It adds numbers.", resp.Analysis.Analysis)
	assert.Contains(t, fc.prompts[0], "Explain what this code does in detail.")
}

func TestAnalyzeNoCandidates(t *testing.T) {
	a := NewAssistant(&fakeCompleter{err: llm.ErrNoCandidates}, zerolog.Nop())
	resp := a.Analyze(context.Background(), AnalyzeRequest{Code: "x", Task: "is it fast?"})
	assert.False(t, resp.Analysis.Success)
	assert.Equal(t, "I couldn't perform the analysis at this time.", resp.Analysis.Analysis)
}

func TestFixWithCodeBlockSkipsModel(t *testing.T) {
	fc := &fakeCompleter{}
	a := NewAssistant(fc, zerolog.Nop())

	resp := a.Fix(context.Background(), FixRequest{
		Code:         "print(x)",
		SuggestedFix: "```python\nx = 1\nprint(x)\n```",
	})

	require.Equal(t, model.TypeCodeFixResult, resp.Type)
	assert.True(t, resp.Fix.Success)
	assert.Equal(t, "x = 1\nprint(x)", resp.Fix.FixedCode)
	assert.Empty(t, fc.prompts)
}

func TestFixThroughModel(t *testing.T) {
	fc := &fakeCompleter{reply: "```\nx = 2\n```"}
	a := NewAssistant(fc, zerolog.Nop())

	resp := a.Fix(context.Background(), FixRequest{Code: "x = 1", SuggestedFix: "set x to two", Language: "python"})
	assert.True(t, resp.Fix.Success)
	assert.Equal(t, "x = 2", resp.Fix.FixedCode)
	assert.Contains(t, fc.prompts[0], "set x to two")
}

func TestFixModelWithoutCode(t *testing.T) {
	a := NewAssistant(&fakeCompleter{reply: "I can't do that."}, zerolog.Nop())
	resp := a.Fix(context.Background(), FixRequest{Code: "x", SuggestedFix: "make it better"})
	assert.False(t, resp.Fix.Success)
	assert.Contains(t, resp.Fix.Message, "I can't do that.")

	none := NewAssistant(nil, zerolog.Nop())
	resp = none.Fix(context.Background(), FixRequest{Code: "x", SuggestedFix: "make it better"})
	assert.Equal(t, "AI model is not available to apply the fix.", resp.Fix.Message)
}
