package assistant

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rcliao/ryan/internal/coding"
)

var (
	documentKeyReplacer = strings.NewReplacer(".", "_", "/", "_")
	keyValueLineRe      = regexp.MustCompile(`^(.*?):\s*(.*?)$`)
)

var extensionLanguages = map[string]string{
	".py":   "python",
	".js":   "javascript",
	".java": "java",
	".cpp":  "cpp",
	".cxx":  "cpp",
	".cc":   "cpp",
	".c":    "c",
	".h":    "c",
}

// DocumentLanguage guesses a language from the file extension, or "unknown".
func DocumentLanguage(fileName string) string {
	if lang, ok := extensionLanguages[strings.ToLower(filepath.Ext(fileName))]; ok {
		return lang
	}
	return "unknown"
}

// ProcessDocument stores an uploaded file in memory. Code files also get a
// model summary; other files have their "Key: Value" lines saved as facts.
// It returns a human-readable list of what was done.
func (a *Assistant) ProcessDocument(ctx context.Context, fileName, content string) string {
	if a.memory == nil || !a.memory.Available() {
		return fmt.Sprintf("Could not process document '%s': memory is not available.", fileName)
	}

	language := DocumentLanguage(fileName)
	keySuffix := documentKeyReplacer.Replace(fileName)
	var actions []string

	if a.memory.Save(ctx, "file_content_"+keySuffix, content) {
		actions = append(actions, fmt.Sprintf("Saved content of file '%s' to memory.", fileName))
	} else {
		actions = append(actions, fmt.Sprintf("Failed to save content of file '%s' to memory.", fileName))
	}

	switch {
	case language == "unknown":
		actions = append(actions, fmt.Sprintf("Could not determine language for file '%s'. Skipping AI analysis.", fileName))
		actions = append(actions, a.saveKeyValueLines(ctx, fileName, content)...)
	case a.llm == nil:
		actions = append(actions, fmt.Sprintf("AI model not available for analysis of file '%s'.", fileName))
	default:
		resp := a.coder.Analyze(ctx, coding.AnalyzeRequest{
			Code: content,
			Task: fmt.Sprintf("Summarize this %s code and explain its main purpose and key functions/classes.", language),
		})
		switch {
		case resp.Analysis != nil && resp.Analysis.Success:
			if a.memory.Save(ctx, "file_summary_"+keySuffix, resp.Analysis.Analysis) {
				actions = append(actions, fmt.Sprintf("Saved AI analysis/summary of file '%s' to memory.", fileName))
			} else {
				actions = append(actions, fmt.Sprintf("Failed to save AI analysis of file '%s' to memory.", fileName))
			}
		case resp.Analysis != nil:
			actions = append(actions, fmt.Sprintf("AI analysis of file '%s' failed: %s", fileName, resp.Analysis.Analysis))
		default:
			actions = append(actions, fmt.Sprintf("AI analysis of file '%s' failed: %s", fileName, resp.Content))
		}
	}

	a.log.Info().Str("file", fileName).Str("language", language).Int("actions", len(actions)).Msg("document processed")
	return fmt.Sprintf("Successfully processed document '%s'. Actions taken:\n%s", fileName, strings.Join(actions, "\n"))
}

func (a *Assistant) saveKeyValueLines(ctx context.Context, fileName, content string) []string {
	var actions []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		m := keyValueLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		key, value := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		if key == "" || value == "" {
			continue
		}
		if a.memory.Save(ctx, key, value) {
			actions = append(actions, fmt.Sprintf("Saved fact '%s': '%s' from '%s'", key, value, fileName))
		} else {
			actions = append(actions, fmt.Sprintf("Failed to save fact '%s': '%s' from '%s'", key, value, fileName))
		}
	}
	return actions
}
