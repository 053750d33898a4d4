package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/ryan/internal/model"
)

func init() {
	run := &cobra.Command{
		Use:   "run [code]",
		Short: "Execute a code snippet",
		Long:  "Execute code with a local interpreter. Code comes from --file, the positional arg, or stdin.",
		Run:   runRun,
	}
	run.Flags().StringP("language", "l", "python", "Language: python or javascript")
	run.Flags().String("file", "", "Read code from a file")

	debug := &cobra.Command{
		Use:   "debug [code]",
		Short: "Ask the model to explain and fix failing code",
		Run:   runDebug,
	}
	debug.Flags().StringP("language", "l", "python", "Language of the code")
	debug.Flags().String("file", "", "Read code from a file")
	debug.Flags().StringP("error", "e", "", "Error output the code produced")
	debug.Flags().String("context", "", "Extra context for the model")

	analyze := &cobra.Command{
		Use:   "analyze [code]",
		Short: "Ask the model to explain or review code",
		Run:   runAnalyze,
	}
	analyze.Flags().String("file", "", "Read code from a file")
	analyze.Flags().StringP("task", "t", "", "What to analyze (default: a general explanation)")
	analyze.Flags().String("context", "", "Extra context for the model")

	fix := &cobra.Command{
		Use:   "fix [code]",
		Short: "Apply a suggested fix to code",
		Run:   runFix,
	}
	fix.Flags().StringP("language", "l", "python", "Language of the code")
	fix.Flags().String("file", "", "Read code from a file")
	fix.Flags().StringP("suggestion", "s", "", "The fix to apply (required)")
	fix.Flags().String("context", "", "Extra context for the model")
	fix.MarkFlagRequired("suggestion")

	RootCmd.AddCommand(run, debug, analyze, fix)
}

// codeInput reads code from --file, then args, then stdin.
func codeInput(cmd *cobra.Command, args []string) string {
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			exitErr("read file", err)
		}
		return string(b)
	}
	code := argOrStdin(args)
	if strings.TrimSpace(code) == "" {
		exitErr(cmd.Name(), fmt.Errorf("code is required (--file, positional arg or stdin)"))
	}
	return code
}

func printResponse(cmd *cobra.Command, resp model.Response) {
	printJSON(cmd.OutOrStdout(), resp)
	if resp.Type == model.TypeError {
		os.Exit(1)
	}
}

func runRun(cmd *cobra.Command, args []string) {
	language, _ := cmd.Flags().GetString("language")
	code := codeInput(cmd, args)

	a := newApp(cmd.Context(), loadConfig(), false)
	defer a.Close()
	printResponse(cmd, a.assistant.Execute(cmd.Context(), code, language))
}

func runDebug(cmd *cobra.Command, args []string) {
	language, _ := cmd.Flags().GetString("language")
	errOut, _ := cmd.Flags().GetString("error")
	extra, _ := cmd.Flags().GetString("context")
	code := codeInput(cmd, args)

	a := newApp(cmd.Context(), loadConfig(), false)
	defer a.Close()
	printResponse(cmd, a.assistant.Debug(cmd.Context(), code, errOut, language, extra))
}

func runAnalyze(cmd *cobra.Command, args []string) {
	task, _ := cmd.Flags().GetString("task")
	extra, _ := cmd.Flags().GetString("context")
	code := codeInput(cmd, args)

	a := newApp(cmd.Context(), loadConfig(), false)
	defer a.Close()
	printResponse(cmd, a.assistant.Analyze(cmd.Context(), code, task, extra))
}

func runFix(cmd *cobra.Command, args []string) {
	language, _ := cmd.Flags().GetString("language")
	suggestion, _ := cmd.Flags().GetString("suggestion")
	extra, _ := cmd.Flags().GetString("context")
	code := codeInput(cmd, args)

	a := newApp(cmd.Context(), loadConfig(), false)
	defer a.Close()
	printResponse(cmd, a.assistant.Fix(cmd.Context(), code, suggestion, language, extra))
}
