package model

import "encoding/json"

// ResponseType discriminates the body of a Response.
type ResponseType string

const (
	TypeText           ResponseType = "text"
	TypeCode           ResponseType = "code"
	TypeCodeExecution  ResponseType = "code_execution_result"
	TypeDebugResult    ResponseType = "ai_debug_result"
	TypeAnalysisResult ResponseType = "ai_analysis_result"
	TypeCodeFixResult  ResponseType = "code_fix_result"
	TypeError          ResponseType = "error"
	TypeSuccess        ResponseType = "success"
	TypeLogs           ResponseType = "logs"
	TypePluginResult   ResponseType = "plugin_result"
)

// Execution is the body of a code_execution_result.
type Execution struct {
	Success    bool   `json:"success"`
	Language   string `json:"language"`
	Output     string `json:"output"`
	Error      string `json:"error"`
	ReturnCode int    `json:"return_code"`
}

// DebugResult is the body of an ai_debug_result.
type DebugResult struct {
	Success       bool   `json:"success"`
	Suggestion    string `json:"suggestion"`
	CorrectedCode string `json:"corrected_code,omitempty"`
	RawResponse   string `json:"raw_ai_response,omitempty"`
}

// AnalysisResult is the body of an ai_analysis_result.
type AnalysisResult struct {
	Success     bool   `json:"success"`
	Analysis    string `json:"analysis"`
	RawResponse string `json:"raw_ai_response,omitempty"`
}

// FixResult is the body of a code_fix_result.
type FixResult struct {
	Success   bool   `json:"success"`
	FixedCode string `json:"fixed_code,omitempty"`
	Message   string `json:"message"`
}

// Response is the tagged reply produced for every chat or tool request.
// Only the field matching Type is populated.
type Response struct {
	Type      ResponseType
	Content   string
	Plugin    string
	Lines     []string
	Execution *Execution
	Debug     *DebugResult
	Analysis  *AnalysisResult
	Fix       *FixResult
}

// Text returns a plain conversational response.
func Text(content string) Response { return Response{Type: TypeText, Content: content} }

// Code returns a response carrying only a code snippet.
func Code(content string) Response { return Response{Type: TypeCode, Content: content} }

// Error returns an error response.
func Error(content string) Response { return Response{Type: TypeError, Content: content} }

// Success returns a confirmation response.
func Success(content string) Response { return Response{Type: TypeSuccess, Content: content} }

// Logs returns a response carrying log lines.
func Logs(lines []string) Response { return Response{Type: TypeLogs, Lines: lines} }

// PluginResult returns the output of the named plugin.
func PluginResult(plugin, content string) Response {
	return Response{Type: TypePluginResult, Plugin: plugin, Content: content}
}

// ExecutionResponse wraps a code execution result.
func ExecutionResponse(e Execution) Response {
	return Response{Type: TypeCodeExecution, Execution: &e}
}

// DebugResponse wraps a debug result.
func DebugResponse(d DebugResult) Response {
	return Response{Type: TypeDebugResult, Debug: &d}
}

// AnalysisResponse wraps an analysis result.
func AnalysisResponse(a AnalysisResult) Response {
	return Response{Type: TypeAnalysisResult, Analysis: &a}
}

// FixResponse wraps a code fix result.
func FixResponse(f FixResult) Response {
	return Response{Type: TypeCodeFixResult, Fix: &f}
}

// MarshalJSON flattens the populated body next to the "type" discriminant.
func (r Response) MarshalJSON() ([]byte, error) {
	out := map[string]any{"type": r.Type}

	var body any
	switch r.Type {
	case TypeCodeExecution:
		if r.Execution != nil {
			body = r.Execution
		}
	case TypeDebugResult:
		if r.Debug != nil {
			body = r.Debug
		}
	case TypeAnalysisResult:
		if r.Analysis != nil {
			body = r.Analysis
		}
	case TypeCodeFixResult:
		if r.Fix != nil {
			body = r.Fix
		}
	case TypeLogs:
		lines := r.Lines
		if lines == nil {
			lines = []string{}
		}
		out["content"] = lines
	case TypePluginResult:
		out["plugin"] = r.Plugin
		out["content"] = r.Content
	default:
		out["content"] = r.Content
	}

	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(b, &out); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}
