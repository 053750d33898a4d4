package assistant

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/ryan/internal/coding"
	"github.com/rcliao/ryan/internal/llm"
	"github.com/rcliao/ryan/internal/memory"
	"github.com/rcliao/ryan/internal/model"
	"github.com/rcliao/ryan/internal/plugin"
	"github.com/rcliao/ryan/internal/store"
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

type fakeExecutor struct {
	code, language string
}

func (f *fakeExecutor) Execute(_ context.Context, code, language string) model.Response {
	f.code, f.language = code, language
	return model.ExecutionResponse(model.Execution{Success: true, Language: language, Output: "2\n"})
}

type panicExecutor struct{}

func (panicExecutor) Execute(context.Context, string, string) model.Response {
	panic("boom")
}

func newTestMemory(t *testing.T) *memory.Store {
	t.Helper()
	backend, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "memory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return memory.New(backend, "default_user", zerolog.Nop())
}

func TestSaveThenQueryLikes(t *testing.T) {
	ctx := context.Background()
	fc := &fakeCompleter{reply: "unused"}
	a := New(newTestMemory(t), zerolog.Nop(), WithCompleter(fc))

	resp := a.Handle(ctx, "remember that I like pizza", "")
	assert.Equal(t, model.TypeText, resp.Type)
	assert.Equal(t, "Okay, I'll remember that you like pizza.", resp.Content)

	resp = a.Handle(ctx, "what do I like?", "")
	assert.Equal(t, model.TypeText, resp.Type)
	assert.Equal(t, "You like pizza.", resp.Content)
	assert.Empty(t, fc.prompts, "memory answers must not reach the model")
}

func TestSaveExactAndAttributeQuery(t *testing.T) {
	ctx := context.Background()
	a := New(newTestMemory(t), zerolog.Nop(), WithCompleter(&fakeCompleter{}))

	resp := a.Handle(ctx, "remember that my birthday is june 5", "")
	assert.Equal(t, "Okay, I'll remember that my birthday is june 5.", resp.Content)

	resp = a.Handle(ctx, "when is my birthday", "")
	assert.Equal(t, "Your birthday is june 5.", resp.Content)

	resp = a.Handle(ctx, "do you know my birthday", "")
	assert.Equal(t, "Yes, I know your birthday is june 5.", resp.Content)
}

func TestQueryMissFallsThroughToChat(t *testing.T) {
	fc := &fakeCompleter{reply: "I don't know your bday yet."}
	a := New(newTestMemory(t), zerolog.Nop(), WithCompleter(fc))

	resp := a.Handle(context.Background(), "what is my bday", "")
	assert.Equal(t, model.TypeText, resp.Type)
	assert.Equal(t, "I don't know your bday yet.", resp.Content)
	require.Len(t, fc.prompts, 1)
	assert.True(t, strings.HasPrefix(fc.prompts[0], Persona))
}

func TestEntityContextReachesPrompt(t *testing.T) {
	ctx := context.Background()
	mem := newTestMemory(t)
	require.True(t, mem.Save(ctx, "user_likes", "dogs"))

	fc := &fakeCompleter{reply: "You like dogs!"}
	a := New(mem, zerolog.Nop(), WithCompleter(fc))

	resp := a.Handle(ctx, "tell me about dogs", "a picture of a beagle")
	assert.Equal(t, "You like dogs!", resp.Content)
	require.Len(t, fc.prompts, 1)
	prompt := fc.prompts[0]
	assert.Contains(t, prompt, memory.ContextHeader)
	assert.Contains(t, prompt, "- User likes: dogs")
	assert.Contains(t, prompt, "User is currently viewing this content:\na picture of a beagle\n\n")
	assert.True(t, strings.HasSuffix(prompt, "tell me about dogs"))
}

func TestBuildPromptOmitsEmptyParts(t *testing.T) {
	assert.Equal(t, Persona+"hi", BuildPrompt("", "", "hi"))
}

func TestCodeRunPreservesCase(t *testing.T) {
	exec := &fakeExecutor{}
	a := New(newTestMemory(t), zerolog.Nop(), WithExecutor(exec))

	resp := a.Handle(context.Background(), "run python code: ```print(1+1)```", "")
	assert.Equal(t, model.TypeCodeExecution, resp.Type)
	assert.Equal(t, "print(1+1)", exec.code)
	assert.Equal(t, "python", exec.language)
}

func TestChatCodeBlockBecomesCodeResponse(t *testing.T) {
	fc := &fakeCompleter{reply: "Here you go:\n```python\nprint('hi')\n```\nEnjoy."}
	a := New(nil, zerolog.Nop(), WithCompleter(fc))

	resp := a.Handle(context.Background(), "write hello world", "")
	assert.Equal(t, model.TypeCode, resp.Type)
	assert.Equal(t, "print('hi')", resp.Content)
}

func TestChatFallbacks(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		err     error
		input   string
		seed    bool
		want    string
		wantTyp model.ResponseType
	}{
		{
			name:    "blocked",
			err:     &llm.BlockedError{Reason: "SAFETY"},
			input:   "hello",
			want:    "Your prompt was blocked due to safety concerns.",
			wantTyp: model.TypeText,
		},
		{
			name:    "no candidates without context",
			err:     llm.ErrNoCandidates,
			input:   "hello",
			want:    "Hmm, I'm not sure how to respond to that right now. Could you try rephrasing?",
			wantTyp: model.TypeText,
		},
		{
			name:    "no candidates with context",
			err:     llm.ErrNoCandidates,
			input:   "tell me about dogs",
			seed:    true,
			want:    "Hmm, I found some information about dogs, but I'm having trouble forming a response right now. Could you try asking in a different way?",
			wantTyp: model.TypeText,
		},
		{
			name:    "generic error without context",
			err:     errors.New("network down"),
			input:   "hello",
			want:    "I ran into a problem trying to generate a response. Could you try asking in a different way?",
			wantTyp: model.TypeText,
		},
		{
			name:    "generic error with context",
			err:     errors.New("network down"),
			input:   "tell me about dogs",
			seed:    true,
			want:    "I found some information about dogs, but I ran into a problem trying to generate a response. Could you try asking in a different way?",
			wantTyp: model.TypeText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := newTestMemory(t)
			if tt.seed {
				require.True(t, mem.Save(ctx, "user_likes", "dogs"))
			}
			a := New(mem, zerolog.Nop(), WithCompleter(&fakeCompleter{err: tt.err}))
			resp := a.Handle(ctx, tt.input, "")
			assert.Equal(t, tt.wantTyp, resp.Type)
			assert.Equal(t, tt.want, resp.Content)
		})
	}
}

func TestChatWithoutModel(t *testing.T) {
	a := New(newTestMemory(t), zerolog.Nop())
	resp := a.Handle(context.Background(), "hello there", "")
	assert.Equal(t, model.TypeError, resp.Type)
	assert.Equal(t, "AI model is not available for general chat.", resp.Content)
}

func TestEmptyInput(t *testing.T) {
	a := New(newTestMemory(t), zerolog.Nop())
	resp := a.Handle(context.Background(), "   ", "")
	assert.Equal(t, model.TypeError, resp.Type)
}

func TestPanicIsRecovered(t *testing.T) {
	a := New(newTestMemory(t), zerolog.Nop(), WithExecutor(panicExecutor{}))
	var resp model.Response
	require.NotPanics(t, func() {
		resp = a.Handle(context.Background(), "run python code: ```print(1)```", "")
	})
	assert.Equal(t, model.TypeError, resp.Type)
}

func TestMemoryRulesSkippedWhenUnavailable(t *testing.T) {
	fc := &fakeCompleter{reply: "sure"}
	a := New(memory.New(nil, "default_user", zerolog.Nop()), zerolog.Nop(), WithCompleter(fc))

	resp := a.Handle(context.Background(), "remember that I like pizza", "")
	assert.Equal(t, "sure", resp.Content)
	assert.Len(t, fc.prompts, 1)
}

func TestPluginsBeforeChat(t *testing.T) {
	reg := plugin.NewRegistry(zerolog.Nop())
	require.NoError(t, reg.Register(plugin.CoinFlip{Rand: func() int { return 0 }}))
	fc := &fakeCompleter{reply: "chat"}
	a := New(newTestMemory(t), zerolog.Nop(), WithCompleter(fc), WithPlugins(reg))

	resp := a.Handle(context.Background(), "flip a coin", "")
	assert.Equal(t, model.TypePluginResult, resp.Type)
	assert.Equal(t, "coin_flip", resp.Plugin)
	assert.Empty(t, fc.prompts)
}

type failingPlugins struct{}

func (failingPlugins) Dispatch(context.Context, string) (string, string, bool, error) {
	return "weather", "", true, errors.New("api down")
}

func TestPluginErrorIsReported(t *testing.T) {
	a := New(newTestMemory(t), zerolog.Nop(), WithPlugins(failingPlugins{}))
	resp := a.Handle(context.Background(), "weather please", "")
	assert.Equal(t, model.TypeError, resp.Type)
	assert.Equal(t, "Error running plugin 'weather': api down", resp.Content)
}

func TestDirectExecuteDefaultsToPython(t *testing.T) {
	exec := &fakeExecutor{}
	a := New(nil, zerolog.Nop(), WithExecutor(exec))
	a.Execute(context.Background(), "print(1)", "")
	assert.Equal(t, "python", exec.language)
}

func TestDebugIncludesMemoryListing(t *testing.T) {
	ctx := context.Background()
	mem := newTestMemory(t)
	require.True(t, mem.Save(ctx, "project", "ryan"))
	fc := &fakeCompleter{reply: "Missing colon.\n```python\nif x:\n    pass\n```"}
	a := New(mem, zerolog.Nop(), WithCompleter(fc))

	resp := a.Debug(ctx, "if x\n    pass", "SyntaxError", "python", "")
	assert.Equal(t, model.TypeDebugResult, resp.Type)
	require.NotNil(t, resp.Debug)
	assert.True(t, resp.Debug.Success)
	require.Len(t, fc.prompts, 1)
	assert.Contains(t, fc.prompts[0], "- project: ryan")
}

func TestProcessDocumentCode(t *testing.T) {
	ctx := context.Background()
	mem := newTestMemory(t)
	fc := &fakeCompleter{reply: "Prints a greeting."}
	a := New(mem, zerolog.Nop(), WithCompleter(fc))

	msg := a.ProcessDocument(ctx, "src/hello.py", "print('hello')")
	assert.True(t, strings.HasPrefix(msg, "Successfully processed document 'src/hello.py'."))

	v, ok := mem.Get(ctx, "file_content_src_hello_py")
	require.True(t, ok)
	assert.Equal(t, "print('hello')", v)

	summary, ok := mem.Get(ctx, "file_summary_src_hello_py")
	require.True(t, ok)
	assert.Equal(t, "Prints a greeting.", summary)
	require.Len(t, fc.prompts, 1)
	assert.Contains(t, fc.prompts[0], "Summarize this python code")
}

func TestProcessDocumentKeyValueLines(t *testing.T) {
	ctx := context.Background()
	mem := newTestMemory(t)
	a := New(mem, zerolog.Nop())

	msg := a.ProcessDocument(ctx, "notes.txt", "name: Ryan\nnot a fact\ncity:  Seattle\n")
	assert.Contains(t, msg, "Saved fact 'name': 'Ryan' from 'notes.txt'")

	v, ok := mem.Get(ctx, "city")
	require.True(t, ok)
	assert.Equal(t, "Seattle", v)
	_, ok = mem.Get(ctx, "not a fact")
	assert.False(t, ok)
}

func TestDocumentLanguage(t *testing.T) {
	assert.Equal(t, "python", DocumentLanguage("a.PY"))
	assert.Equal(t, "cpp", DocumentLanguage("x/y.cc"))
	assert.Equal(t, "unknown", DocumentLanguage("README"))
}

var _ CodeAssistant = (*coding.Assistant)(nil)
