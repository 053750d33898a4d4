package coding

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rcliao/ryan/internal/llm"
	"github.com/rcliao/ryan/internal/model"
)

const defaultAnalysisTask = "Explain what this code does in detail."

// leadingBlockRe matches a suggested fix that is nothing but a fenced block.
var leadingBlockRe = regexp.MustCompile("(?s)^```(?:\\w+)?\\n(.*?)\\n```")

// DebugRequest asks the model to explain and fix failing code.
type DebugRequest struct {
	Code        string
	ErrorOutput string
	Language    string
	Memory      string // "- key: value" lines
	Context     string // extra context, e.g. what the user is viewing
}

// AnalyzeRequest asks the model to explain or review code.
type AnalyzeRequest struct {
	Code    string
	Task    string
	Memory  string
	Context string
}

// FixRequest asks for suggestedFix to be applied to code.
type FixRequest struct {
	Code         string
	SuggestedFix string
	Language     string
	Context      string
}

// Assistant runs debug, analysis and fix prompts against a Completer.
// A nil Completer makes every call report the model as unavailable.
type Assistant struct {
	llm llm.Completer
	log zerolog.Logger
}

// NewAssistant returns an Assistant backed by c.
func NewAssistant(c llm.Completer, log zerolog.Logger) *Assistant {
	return &Assistant{llm: c, log: log.With().Str("component", "coding_assistant").Logger()}
}

// Debug returns an ai_debug_result with the suggestion text and, when the
// model supplied one, the corrected code.
func (a *Assistant) Debug(ctx context.Context, req DebugRequest) model.Response {
	if a.llm == nil {
		assists.WithLabelValues("debug", "unavailable").Inc()
		return model.DebugResponse(model.DebugResult{Suggestion: "AI model is not available."})
	}

	var b strings.Builder
	b.WriteString("You are Ryan, an expert coding assistant. Your task is to analyze the provided code and the error message, identify the root cause of the error, and suggest a fix.\n\n")
	writeContext(&b, req.Memory, req.Context)
	fmt.Fprintf(&b, "Code (%s):\n```%s\n%s\n```\n\n", req.Language, req.Language, req.Code)
	fmt.Fprintf(&b, "Error Output:\n```\n%s\n```\n\n", req.ErrorOutput)
	b.WriteString(`Task:
1. Analyze the code and the error output.
2. Identify the specific line(s) causing the error if possible.
3. Explain the reason for the error in simple terms.
4. Provide a clear suggestion for how to fix the error.
5. If you can provide the corrected code, include it in a separate code block.

Respond in a helpful and clear manner. If you cannot determine the fix, explain why.
`)

	text, err := a.llm.Complete(ctx, b.String())
	switch {
	case llm.IsBlocked(err):
		a.log.Warn().Err(err).Msg("debug prompt blocked")
		assists.WithLabelValues("debug", "blocked").Inc()
		return model.DebugResponse(model.DebugResult{Suggestion: "My analysis was blocked due to safety concerns."})
	case isNoCandidates(err):
		assists.WithLabelValues("debug", "empty").Inc()
		return model.DebugResponse(model.DebugResult{Suggestion: "I couldn't generate a debugging suggestion at this time."})
	case err != nil:
		a.log.Error().Err(err).Msg("debug request failed")
		assists.WithLabelValues("debug", "error").Inc()
		return model.Error(fmt.Sprintf("An error occurred during AI debugging: %v", err))
	}

	result := model.DebugResult{Success: true, Suggestion: text, RawResponse: text}
	if code, ok := llm.ExtractCodeBlock(text); ok {
		result.CorrectedCode = code
		result.Suggestion = llm.StripCodeBlock(text)
	}
	assists.WithLabelValues("debug", "ok").Inc()
	return model.DebugResponse(result)
}

// Analyze returns an ai_analysis_result. An empty task asks for a general
// explanation.
func (a *Assistant) Analyze(ctx context.Context, req AnalyzeRequest) model.Response {
	if a.llm == nil {
		assists.WithLabelValues("analyze", "unavailable").Inc()
		return model.AnalysisResponse(model.AnalysisResult{Analysis: "AI model is not available."})
	}

	task := req.Task
	if strings.TrimSpace(task) == "" {
		task = defaultAnalysisTask
	}

	var b strings.Builder
	b.WriteString("You are Ryan, an expert coding assistant. Analyze the provided code.\n\n")
	writeContext(&b, req.Memory, req.Context)
	fmt.Fprintf(&b, "Code:\n```\n%s\n```\n\n", req.Code)
	fmt.Fprintf(&b, "Task:\n%s\n\n", task)
	b.WriteString("Provide a clear and concise analysis or explanation. If the task description asks if the code meets certain criteria, answer that question directly.\n")

	text, err := a.llm.Complete(ctx, b.String())
	switch {
	case llm.IsBlocked(err):
		a.log.Warn().Err(err).Msg("analysis prompt blocked")
		assists.WithLabelValues("analyze", "blocked").Inc()
		return model.AnalysisResponse(model.AnalysisResult{Analysis: "My analysis was blocked due to safety concerns."})
	case isNoCandidates(err):
		assists.WithLabelValues("analyze", "empty").Inc()
		return model.AnalysisResponse(model.AnalysisResult{Analysis: "I couldn't perform the analysis at this time."})
	case err != nil:
		a.log.Error().Err(err).Msg("analysis request failed")
		assists.WithLabelValues("analyze", "error").Inc()
		return model.Error(fmt.Sprintf("An error occurred during AI analysis: %v", err))
	}

	assists.WithLabelValues("analyze", "ok").Inc()
	return model.AnalysisResponse(model.AnalysisResult{
		Success:     true,
		Analysis:    strings.TrimSpace(text),
		RawResponse: text,
	})
}

// Fix applies a suggested fix. A fix that is itself a fenced block replaces
// the code directly; anything else is handed to the model.
func (a *Assistant) Fix(ctx context.Context, req FixRequest) model.Response {
	if m := leadingBlockRe.FindStringSubmatch(strings.TrimSpace(req.SuggestedFix)); m != nil {
		assists.WithLabelValues("fix", "direct").Inc()
		return model.FixResponse(model.FixResult{
			Success:   true,
			FixedCode: strings.TrimSpace(m[1]),
			Message:   "Applied fix using the provided code block.",
		})
	}

	if a.llm == nil {
		assists.WithLabelValues("fix", "unavailable").Inc()
		return model.FixResponse(model.FixResult{Message: "AI model is not available to apply the fix."})
	}

	var b strings.Builder
	b.WriteString("You are Ryan, an expert coding assistant. Apply the following suggested fix to the original code.\n\n")
	writeContext(&b, "", req.Context)
	fmt.Fprintf(&b, "Original Code (%s):\n```%s\n%s\n```\n\n", req.Language, req.Language, req.Code)
	fmt.Fprintf(&b, "Suggested Fix (Description):\n%s\n\n", req.SuggestedFix)
	b.WriteString("Task:\nApply the suggested fix to the original code and provide the complete corrected code in a code block. If you cannot apply the fix, explain why.\n\n")
	b.WriteString("Provide only the corrected code in a code block, or an explanation if you cannot apply it.\n")

	text, err := a.llm.Complete(ctx, b.String())
	switch {
	case llm.IsBlocked(err):
		assists.WithLabelValues("fix", "blocked").Inc()
		return model.FixResponse(model.FixResult{Message: "My attempt to apply the fix was blocked due to safety concerns."})
	case isNoCandidates(err):
		assists.WithLabelValues("fix", "empty").Inc()
		return model.FixResponse(model.FixResult{Message: "I couldn't apply the fix using AI at this time."})
	case err != nil:
		a.log.Error().Err(err).Msg("fix request failed")
		assists.WithLabelValues("fix", "error").Inc()
		return model.Error(fmt.Sprintf("An error occurred during AI fix application: %v", err))
	}

	code, ok := llm.ExtractCodeBlock(text)
	if !ok {
		assists.WithLabelValues("fix", "no_code").Inc()
		return model.FixResponse(model.FixResult{
			Message: fmt.Sprintf("AI could not apply the fix or did not provide corrected code. AI response: %s", truncate(strings.TrimSpace(text), 200)),
		})
	}
	assists.WithLabelValues("fix", "ok").Inc()
	return model.FixResponse(model.FixResult{
		Success:   true,
		FixedCode: code,
		Message:   "Applied fix using AI interpretation of the suggestion.",
	})
}

func writeContext(b *strings.Builder, memory, extra string) {
	if memory != "" {
		b.WriteString("Relevant Memory (for context):\n")
		b.WriteString(memory)
		b.WriteString("\n")
	}
	if extra != "" {
		b.WriteString("Additional Context:\n")
		b.WriteString(extra)
		b.WriteString("\n\n")
	}
}

func isNoCandidates(err error) bool {
	return errors.Is(err, llm.ErrNoCandidates)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
