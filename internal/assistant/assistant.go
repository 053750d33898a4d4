// Package assistant routes chat input to memory, code tools, plugins or the
// model, and shapes every outcome into a model.Response.
package assistant

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rcliao/ryan/internal/coding"
	"github.com/rcliao/ryan/internal/intent"
	"github.com/rcliao/ryan/internal/llm"
	"github.com/rcliao/ryan/internal/memory"
	"github.com/rcliao/ryan/internal/model"
)

// Memory is the subset of the memory store the router needs.
type Memory interface {
	Available() bool
	Save(ctx context.Context, key, value string) bool
	Get(ctx context.Context, key string) (string, bool)
	All(ctx context.Context) map[string]string
}

// Executor runs code snippets.
type Executor interface {
	Execute(ctx context.Context, code, language string) model.Response
}

// CodeAssistant answers debug, analysis and fix requests.
type CodeAssistant interface {
	Debug(ctx context.Context, req coding.DebugRequest) model.Response
	Analyze(ctx context.Context, req coding.AnalyzeRequest) model.Response
	Fix(ctx context.Context, req coding.FixRequest) model.Response
}

// Plugins dispatches input to command handlers.
type Plugins interface {
	Dispatch(ctx context.Context, input string) (name, reply string, ok bool, err error)
}

// Assistant is the chat router.
type Assistant struct {
	memory     Memory
	llm        llm.Completer
	executor   Executor
	coder      CodeAssistant
	plugins    Plugins
	classifier *intent.Classifier
	log        zerolog.Logger
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithCompleter sets the model used for general chat and code help.
func WithCompleter(c llm.Completer) Option {
	return func(a *Assistant) { a.llm = c }
}

// WithExecutor overrides the code executor.
func WithExecutor(e Executor) Option {
	return func(a *Assistant) { a.executor = e }
}

// WithCodeAssistant overrides the debug/analyze/fix collaborator.
func WithCodeAssistant(c CodeAssistant) Option {
	return func(a *Assistant) { a.coder = c }
}

// WithPlugins sets the plugin registry consulted before general chat.
func WithPlugins(p Plugins) Option {
	return func(a *Assistant) { a.plugins = p }
}

// WithClassifier overrides the intent classifier.
func WithClassifier(c *intent.Classifier) Option {
	return func(a *Assistant) { a.classifier = c }
}

// New returns an Assistant over mem. Collaborators not supplied through
// options get local defaults.
func New(mem Memory, log zerolog.Logger, opts ...Option) *Assistant {
	a := &Assistant{
		memory: mem,
		log:    log.With().Str("component", "assistant").Logger(),
	}
	for _, o := range opts {
		o(a)
	}
	if a.classifier == nil {
		a.classifier = intent.NewClassifier()
	}
	if a.executor == nil {
		a.executor = coding.NewExecutor(log)
	}
	if a.coder == nil {
		a.coder = coding.NewAssistant(a.llm, log)
	}
	return a
}

// Handle answers one chat message. viewed is optional content the user is
// looking at. Handle never panics and never returns an error; failures come
// back as error or text responses.
func (a *Assistant) Handle(ctx context.Context, input, viewed string) (resp model.Response) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered while handling chat")
			resp = model.Error("An unexpected error occurred while processing your message.")
			chatRequests.WithLabelValues("panic").Inc()
		}
	}()

	input = strings.TrimSpace(input)
	if input == "" {
		return model.Error("Please enter a message.")
	}
	a.log.Info().Str("input", input).Bool("viewed", viewed != "").Msg("received chat input")

	plan := a.classifier.Classify(input)
	memOK := a.memory != nil && a.memory.Available()

	var entity, contextBlock string
	if memOK {
		if plan.Save != nil {
			chatRequests.WithLabelValues(plan.Save.Kind().String()).Inc()
			return a.save(ctx, plan.Save)
		}
		if plan.Query != nil {
			if r, ok := a.query(ctx, plan.Query); ok {
				chatRequests.WithLabelValues(plan.Query.Kind().String()).Inc()
				return r
			}
		}
		if plan.Entity != nil {
			entity = plan.Entity.Entity
			contextBlock = memory.Assemble(memory.Relevant(a.memory.All(ctx), entity))
			a.log.Debug().Str("entity", entity).Bool("found", contextBlock != "").Msg("entity context assembled")
		}
	}

	if plan.Code != nil {
		chatRequests.WithLabelValues(plan.Code.Kind().String()).Inc()
		return a.code(ctx, plan.Code, viewed, contextBlock)
	}

	if a.plugins != nil {
		name, reply, ok, err := a.plugins.Dispatch(ctx, input)
		if ok {
			chatRequests.WithLabelValues("plugin").Inc()
			if err != nil {
				return model.Error(fmt.Sprintf("Error running plugin '%s': %v", name, err))
			}
			return model.PluginResult(name, reply)
		}
	}

	chatRequests.WithLabelValues("chat").Inc()
	return a.chat(ctx, input, viewed, entity, contextBlock)
}

func (a *Assistant) save(ctx context.Context, in intent.Intent) model.Response {
	var key, value, confirm string
	switch s := in.(type) {
	case intent.SaveExact:
		key, value = s.Key, s.Value
		confirm = fmt.Sprintf("Okay, I'll remember that %s is %s.", s.Key, s.Value)
	case intent.SaveLikes:
		key, value = intent.LikesKey, s.Value
		confirm = fmt.Sprintf("Okay, I'll remember that you like %s.", s.Value)
	case intent.SaveGeneral:
		key, value = s.Key, s.Value
		if s.Relation != "" {
			confirm = fmt.Sprintf("Okay, I'll remember that %s %s %s.", s.Subject, s.Relation, s.Object)
		} else {
			confirm = fmt.Sprintf("Okay, I'll remember that: %s.", s.Fact)
		}
	default:
		return model.Error("Unrecognized save request.")
	}

	if !a.memory.Save(ctx, key, value) {
		return model.Text("I had trouble saving that to memory.")
	}
	return model.Text(confirm)
}

// query answers a memory question. ok is false on a miss so the caller can
// fall through to general chat.
func (a *Assistant) query(ctx context.Context, in intent.Intent) (model.Response, bool) {
	switch q := in.(type) {
	case intent.QueryLikes:
		if v, ok := a.memory.Get(ctx, intent.LikesKey); ok {
			return model.Text(fmt.Sprintf("You like %s.", v)), true
		}
	case intent.AttributeQuery:
		for _, key := range q.CandidateKeys() {
			v, ok := a.memory.Get(ctx, key)
			if !ok {
				continue
			}
			switch q.Form {
			case intent.KindQueryDoYouKnow:
				return model.Text(fmt.Sprintf("Yes, I know your %s is %s.", q.Attribute, v)), true
			case intent.KindQueryWhatAbout:
				return model.Text(fmt.Sprintf("Regarding your %s, I remember: %s.", q.Attribute, v)), true
			default:
				return model.Text(fmt.Sprintf("Your %s is %s.", q.Attribute, v)), true
			}
		}
	}
	a.log.Debug().Str("intent", in.Kind().String()).Msg("memory lookup missed, falling through")
	return model.Response{}, false
}

func (a *Assistant) code(ctx context.Context, in intent.Intent, viewed, contextBlock string) model.Response {
	extra := viewed
	if extra == "" {
		extra = contextBlock
	}

	switch c := in.(type) {
	case intent.CodeRun:
		return a.executor.Execute(ctx, c.Code, c.Language)
	case intent.CodeDebug:
		return a.coder.Debug(ctx, coding.DebugRequest{
			Code:        c.Code,
			ErrorOutput: c.ErrorOutput,
			Language:    c.Language,
			Memory:      a.memoryListing(ctx),
			Context:     extra,
		})
	case intent.CodeAnalyze:
		return a.coder.Analyze(ctx, coding.AnalyzeRequest{
			Code:    c.Code,
			Task:    c.Task,
			Memory:  a.memoryListing(ctx),
			Context: extra,
		})
	}
	return model.Error("Unrecognized code request.")
}

func (a *Assistant) memoryListing(ctx context.Context) string {
	if a.memory == nil || !a.memory.Available() {
		return ""
	}
	return memory.Listing(a.memory.All(ctx))
}

// Execute runs code directly, bypassing classification.
func (a *Assistant) Execute(ctx context.Context, code, language string) model.Response {
	if strings.TrimSpace(language) == "" {
		language = "python"
	}
	return a.executor.Execute(ctx, code, language)
}

// Debug asks for a fix to failing code, with all memory as context.
func (a *Assistant) Debug(ctx context.Context, code, errorOutput, language, extra string) model.Response {
	return a.coder.Debug(ctx, coding.DebugRequest{
		Code:        code,
		ErrorOutput: errorOutput,
		Language:    language,
		Memory:      a.memoryListing(ctx),
		Context:     extra,
	})
}

// Analyze explains code, with all memory as context.
func (a *Assistant) Analyze(ctx context.Context, code, task, extra string) model.Response {
	return a.coder.Analyze(ctx, coding.AnalyzeRequest{
		Code:    code,
		Task:    task,
		Memory:  a.memoryListing(ctx),
		Context: extra,
	})
}

// Fix applies a suggested fix to code.
func (a *Assistant) Fix(ctx context.Context, code, suggestedFix, language, extra string) model.Response {
	return a.coder.Fix(ctx, coding.FixRequest{
		Code:         code,
		SuggestedFix: suggestedFix,
		Language:     language,
		Context:      extra,
	})
}
