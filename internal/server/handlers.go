package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gorilla/mux"

	"github.com/rcliao/ryan/internal/logger"
	"github.com/rcliao/ryan/internal/model"
	"github.com/rcliao/ryan/internal/plugin"
)

const (
	logTailLines   = 50
	maxUploadBytes = 10 << 20
	maxBodyBytes   = 1 << 20
)

type chatRequest struct {
	Message         string `json:"message"`
	CreativeContext string `json:"creative_context"`
}

type memoryValue struct {
	Value    string `json:"value"`
	Category string `json:"category"`
}

type codeRequest struct {
	Code         string `json:"code"`
	Language     string `json:"language"`
	ErrorOutput  string `json:"error_output"`
	Task         string `json:"task"`
	SuggestedFix string `json:"suggested_fix"`
	Context      string `json:"context"`
}

type documentRequest struct {
	FileName string `json:"filename"`
	Content  string `json:"content"`
}

type pluginRequest struct {
	Input string `json:"input"`
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		WriteBadRequest(w, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decode(w, r, &req) {
		return
	}
	WriteJSON(w, http.StatusOK, s.deps.Assistant.Handle(r.Context(), req.Message, req.CreativeContext))
}

func (s *Server) listMemory(w http.ResponseWriter, r *http.Request) {
	entries := s.deps.Memory.Entries(r.Context())
	if category := r.URL.Query().Get("category"); category != "" {
		filtered := entries[:0]
		for _, e := range entries {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	if entries == nil {
		entries = []model.Entry{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"user":    s.deps.Memory.User(),
		"entries": entries,
	})
}

func (s *Server) getMemory(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	v, ok := s.deps.Memory.Get(r.Context(), key)
	if !ok {
		WriteNotFound(w, fmt.Sprintf("no memory for key %q", key))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"key": key, "value": v})
}

func (s *Server) putMemory(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	var req memoryValue
	if !decode(w, r, &req) {
		return
	}
	if req.Category == "" {
		req.Category = model.DefaultCategory
	}
	if !s.deps.Memory.SaveCategory(r.Context(), key, req.Value, req.Category) {
		WriteJSON(w, http.StatusBadRequest, model.Error(fmt.Sprintf("Could not save memory '%s'.", key)))
		return
	}
	WriteJSON(w, http.StatusOK, model.Success(fmt.Sprintf("Saved memory '%s'.", key)))
}

func (s *Server) deleteMemory(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if !s.deps.Memory.Delete(r.Context(), key) {
		WriteNotFound(w, fmt.Sprintf("no memory for key %q", key))
		return
	}
	WriteJSON(w, http.StatusOK, model.Success(fmt.Sprintf("Deleted memory '%s'.", key)))
}

func (s *Server) wipeMemory(w http.ResponseWriter, r *http.Request) {
	n, err := s.deps.Memory.Wipe(r.Context())
	if err != nil {
		WriteInternalError(w, "could not wipe memory")
		return
	}
	WriteJSON(w, http.StatusOK, model.Success(fmt.Sprintf("Removed %d memories.", n)))
}

func (s *Server) executeCode(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !decode(w, r, &req) {
		return
	}
	WriteJSON(w, http.StatusOK, s.deps.Assistant.Execute(r.Context(), req.Code, req.Language))
}

func (s *Server) debugCode(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !decode(w, r, &req) {
		return
	}
	WriteJSON(w, http.StatusOK, s.deps.Assistant.Debug(r.Context(), req.Code, req.ErrorOutput, req.Language, req.Context))
}

func (s *Server) analyzeCode(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !decode(w, r, &req) {
		return
	}
	WriteJSON(w, http.StatusOK, s.deps.Assistant.Analyze(r.Context(), req.Code, req.Task, req.Context))
}

func (s *Server) fixCode(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !decode(w, r, &req) {
		return
	}
	WriteJSON(w, http.StatusOK, s.deps.Assistant.Fix(r.Context(), req.Code, req.SuggestedFix, req.Language, req.Context))
}

// uploadDocument accepts either a multipart "file" field or a JSON body
// {filename, content}.
func (s *Server) uploadDocument(w http.ResponseWriter, r *http.Request) {
	var name string
	var content []byte

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		f, hdr, err := r.FormFile("file")
		if err != nil {
			WriteBadRequest(w, "missing file field: "+err.Error())
			return
		}
		defer f.Close()
		if content, err = io.ReadAll(f); err != nil {
			WriteBadRequest(w, "could not read upload: "+err.Error())
			return
		}
		name = hdr.Filename
	} else {
		var req documentRequest
		if !decode(w, r, &req) {
			return
		}
		name, content = req.FileName, []byte(req.Content)
	}

	if strings.TrimSpace(name) == "" {
		WriteBadRequest(w, "file name is required")
		return
	}
	if !utf8.Valid(content) {
		WriteBadRequest(w, "file must be UTF-8 text")
		return
	}
	msg := s.deps.Assistant.ProcessDocument(r.Context(), name, string(content))
	WriteJSON(w, http.StatusOK, model.Text(msg))
}

func (s *Server) listPlugins(w http.ResponseWriter, r *http.Request) {
	names := []string{}
	if s.deps.Plugins != nil {
		names = s.deps.Plugins.Names()
	}
	WriteJSON(w, http.StatusOK, map[string]any{"plugins": names})
}

func (s *Server) runPlugin(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if s.deps.Plugins == nil {
		WriteNotFound(w, "plugins are not enabled")
		return
	}
	var req pluginRequest
	if !decode(w, r, &req) {
		return
	}
	reply, ok, err := s.deps.Plugins.Run(r.Context(), name, req.Input)
	switch {
	case errors.Is(err, plugin.ErrNotFound):
		WriteNotFound(w, fmt.Sprintf("unknown plugin %q", name))
	case err != nil:
		WriteJSON(w, http.StatusOK, model.Error(fmt.Sprintf("Error running plugin '%s': %v", name, err)))
	case !ok:
		WriteJSON(w, http.StatusOK, model.Text(fmt.Sprintf("Plugin '%s' did not recognise that input.", name)))
	default:
		WriteJSON(w, http.StatusOK, model.PluginResult(name, reply))
	}
}

func (s *Server) logs(w http.ResponseWriter, r *http.Request) {
	if s.deps.LogFile == "" {
		WriteJSON(w, http.StatusOK, model.Logs(nil))
		return
	}
	lines, err := logger.Tail(s.deps.LogFile, logTailLines)
	if err != nil {
		WriteJSON(w, http.StatusOK, model.Logs([]string{"error reading logs: " + err.Error()}))
		return
	}
	WriteJSON(w, http.StatusOK, model.Logs(lines))
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	if s.deps.Stats == nil {
		WriteNotFound(w, "stats are not available")
		return
	}
	st, err := s.deps.Stats(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("stats failed")
		WriteInternalError(w, "could not read stats")
		return
	}
	WriteJSON(w, http.StatusOK, st)
}

// health always returns 200; the body reports which collaborators are up.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	memoryOK := s.deps.Memory != nil && s.deps.Memory.Available()
	status := "healthy"
	if !memoryOK {
		status = "degraded"
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":    status,
		"memory":    memoryOK,
		"model":     s.deps.ModelOK,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
