package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Chat with Ryan",
		Long:  "Send one message and print the JSON response, or start an interactive session when no message is given.",
		Run:   runChat,
	}

	cmd.Flags().StringP("viewing", "v", "", "Content you are currently looking at, passed to the model")

	RootCmd.AddCommand(cmd)
}

func runChat(cmd *cobra.Command, args []string) {
	viewing, _ := cmd.Flags().GetString("viewing")

	a := newApp(cmd.Context(), loadConfig(), false)
	defer a.Close()

	if len(args) > 0 {
		resp := a.assistant.Handle(cmd.Context(), strings.Join(args, " "), viewing)
		printJSON(cmd.OutOrStdout(), resp)
		return
	}
	repl(cmd, a, os.Stdin, cmd.OutOrStdout())
}

func repl(cmd *cobra.Command, a *app, in io.Reader, out io.Writer) {
	fmt.Fprintln(out, "Ryan: Hello! I'm Ryan. Type 'exit' or 'quit' to end the chat.")
	if !a.memory.Available() {
		fmt.Fprintln(out, "Ryan: (memory is unavailable, I won't remember anything this session)")
	}

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "You: ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return
		}
		line := strings.TrimSpace(sc.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			fmt.Fprintln(out, "Ryan: Goodbye!")
			return
		}
		resp := a.assistant.Handle(cmd.Context(), line, "")
		fmt.Fprintf(out, "Ryan: %s\n", render(resp))
	}
}
