package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/ryan/internal/assistant"
	"github.com/rcliao/ryan/internal/llm"
	"github.com/rcliao/ryan/internal/memory"
	"github.com/rcliao/ryan/internal/model"
	"github.com/rcliao/ryan/internal/plugin"
	"github.com/rcliao/ryan/internal/store"
)

type fixture struct {
	router  http.Handler
	mem     *memory.Store
	prompts []string
	logFile string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "memory.db")
	backend, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	f := &fixture{
		mem:     memory.New(backend, "default_user", zerolog.Nop()),
		logFile: filepath.Join(dir, "app.log"),
	}
	completer := llm.CompleterFunc(func(_ context.Context, prompt string) (string, error) {
		f.prompts = append(f.prompts, prompt)
		return "hello from the model", nil
	})

	reg := plugin.NewRegistry(zerolog.Nop())
	require.NoError(t, reg.Register(plugin.CoinFlip{Rand: func() int { return 0 }}))

	a := assistant.New(f.mem, zerolog.Nop(), assistant.WithCompleter(completer), assistant.WithPlugins(reg))
	srv := New(Deps{
		Assistant: a,
		Memory:    f.mem,
		Plugins:   reg,
		Stats: func(ctx context.Context) (*store.Stats, error) {
			return backend.Stats(ctx, dbPath)
		},
		LogFile: f.logFile,
		ModelOK: true,
	}, zerolog.Nop())
	f.router = srv.Router()
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m))
	return m
}

func TestChatSaveAndRecall(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, "POST", "/chat", map[string]string{"message": "remember that I like pizza"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Okay, I'll remember that you like pizza.", decodeBody(t, rr)["content"])

	rr = f.do(t, "POST", "/chat", map[string]string{"message": "what do I like?"})
	body := decodeBody(t, rr)
	assert.Equal(t, "text", body["type"])
	assert.Equal(t, "You like pizza.", body["content"])
}

func TestChatPassesViewedContent(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, "POST", "/chat", map[string]string{"message": "what is this", "creative_context": "a poem"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "hello from the model", decodeBody(t, rr)["content"])
	require.Len(t, f.prompts, 1)
	assert.Contains(t, f.prompts[0], "User is currently viewing this content:\na poem")
}

func TestChatBadJSON(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest("POST", "/chat", bytes.NewBufferString("{"))
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestChatPlugin(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, "POST", "/chat", map[string]string{"message": "flip a coin"})
	body := decodeBody(t, rr)
	assert.Equal(t, "plugin_result", body["type"])
	assert.Equal(t, "coin_flip", body["plugin"])
}

func TestMemoryCRUD(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, "PUT", "/memory/color", map[string]string{"value": "blue"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "success", decodeBody(t, rr)["type"])

	rr = f.do(t, "GET", "/memory/color", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "blue", decodeBody(t, rr)["value"])

	rr = f.do(t, "PUT", "/memory/team", map[string]string{"value": "ops", "category": "work"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(t, "GET", "/memory?category=work", nil)
	body := decodeBody(t, rr)
	assert.Equal(t, "default_user", body["user"])
	entries := body["entries"].([]any)
	require.Len(t, entries, 1)
	assert.Equal(t, "team", entries[0].(map[string]any)["key"])

	rr = f.do(t, "DELETE", "/memory/color", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = f.do(t, "GET", "/memory/color", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = f.do(t, "DELETE", "/memory/color", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = f.do(t, "DELETE", "/memory", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Removed 1 memories.", decodeBody(t, rr)["content"])
}

func TestPutMemoryRejectsEmptyValue(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, "PUT", "/memory/color", map[string]string{"value": ""})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "error", decodeBody(t, rr)["type"])
}

func TestExecuteUnsupportedLanguage(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, "POST", "/execute_code", map[string]string{"code": "puts 1", "language": "ruby"})
	body := decodeBody(t, rr)
	assert.Equal(t, "code_execution_result", body["type"])
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Unsupported language: ruby", body["error"])
}

func TestAnalyzeCode(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, "POST", "/analyze_code", map[string]string{"code": "x = 1"})
	body := decodeBody(t, rr)
	assert.Equal(t, "ai_analysis_result", body["type"])
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "hello from the model", body["analysis"])
}

func TestUploadDocumentJSON(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, "POST", "/upload_document", map[string]string{"filename": "notes.txt", "content": "city: Seattle"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, decodeBody(t, rr)["content"], "Successfully processed document 'notes.txt'")

	v, ok := f.mem.Get(context.Background(), "city")
	require.True(t, ok)
	assert.Equal(t, "Seattle", v)
}

func TestUploadDocumentMultipart(t *testing.T) {
	f := newFixture(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "todo.md")
	require.NoError(t, err)
	_, _ = part.Write([]byte("owner: ryan\n"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/upload_document", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	v, ok := f.mem.Get(context.Background(), "file_content_todo_md")
	require.True(t, ok)
	assert.Equal(t, "owner: ryan\n", v)
}

func TestRunPlugin(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, "POST", "/plugins/coin_flip", map[string]string{"input": "flip a coin"})
	body := decodeBody(t, rr)
	assert.Equal(t, "plugin_result", body["type"])
	assert.Equal(t, "Okay, I'll flip a coin... It landed on **Heads**!", body["content"])

	rr = f.do(t, "POST", "/plugins/nope", map[string]string{"input": "x"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = f.do(t, "GET", "/plugins", nil)
	assert.Equal(t, []any{"coin_flip"}, decodeBody(t, rr)["plugins"])
}

func TestLogs(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.logFile, []byte("one\n\ntwo\n"), 0o644))

	rr := f.do(t, "GET", "/logs", nil)
	body := decodeBody(t, rr)
	assert.Equal(t, string(model.TypeLogs), body["type"])
	assert.Equal(t, []any{"one", "two"}, body["content"])
}

func TestStatsAndHealth(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.mem.Save(context.Background(), "a", "b"))

	rr := f.do(t, "GET", "/stats", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 1, decodeBody(t, rr)["total_entries"])

	rr = f.do(t, "GET", "/health", nil)
	body := decodeBody(t, rr)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, true, body["model"])
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.do(t, "GET", "/health", nil)
	rr := f.do(t, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ryan_http_requests_total")
}

func TestRecoverMiddleware(t *testing.T) {
	h := Recover(zerolog.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotEmpty(t, rr.Body.String())
}
