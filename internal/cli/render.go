package cli

import (
	"fmt"
	"strings"

	"github.com/rcliao/ryan/internal/model"
)

// render formats a response for the terminal.
func render(resp model.Response) string {
	switch resp.Type {
	case model.TypeCode:
		return "```\n" + resp.Content + "\n```"
	case model.TypeError:
		return "Error: " + resp.Content
	case model.TypeLogs:
		return strings.Join(resp.Lines, "\n")
	case model.TypePluginResult:
		return resp.Content
	case model.TypeCodeExecution:
		if resp.Execution == nil {
			return ""
		}
		e := resp.Execution
		var b strings.Builder
		fmt.Fprintf(&b, "[%s] exit %d", e.Language, e.ReturnCode)
		if e.Output != "" {
			b.WriteString("\n" + strings.TrimRight(e.Output, "\n"))
		}
		if e.Error != "" {
			b.WriteString("\nstderr: " + strings.TrimRight(e.Error, "\n"))
		}
		return b.String()
	case model.TypeDebugResult:
		if resp.Debug == nil {
			return ""
		}
		out := resp.Debug.Suggestion
		if resp.Debug.CorrectedCode != "" {
			out += "\n\nCorrected code:\n```\n" + resp.Debug.CorrectedCode + "\n```"
		}
		return out
	case model.TypeAnalysisResult:
		if resp.Analysis == nil {
			return ""
		}
		return resp.Analysis.Analysis
	case model.TypeCodeFixResult:
		if resp.Fix == nil {
			return ""
		}
		if resp.Fix.FixedCode == "" {
			return resp.Fix.Message
		}
		return resp.Fix.Message + "\n```\n" + resp.Fix.FixedCode + "\n```"
	default:
		return resp.Content
	}
}
