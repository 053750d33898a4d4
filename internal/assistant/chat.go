package assistant

import (
	"context"
	"errors"
	"strings"

	"github.com/rcliao/ryan/internal/llm"
	"github.com/rcliao/ryan/internal/model"
)

// Persona opens every general-chat prompt.
const Persona = "You are Ryan, a friendly, conversational, and helpful AI assistant. You aim to sound human-like. " +
	"Your primary function is to chat with the user and remember facts they tell you. " +
	"**CRITICAL INSTRUCTION:** Below, under 'Relevant Memory', I might provide facts I have saved about the topic the user is asking about. " +
	"If 'Relevant Memory' is present and directly relates to the user's question, you ABSOLUTELY MUST use that information to answer the question. " +
	"Do NOT ignore the 'Relevant Memory' if it's relevant. " +
	"If the user asks about something and there is NO 'Relevant Memory' provided for that specific topic, then you can politely say you don't have information on that, maintaining a helpful and friendly tone. " +
	"Be concise and directly address the user's input.\n\n"

// BuildPrompt assembles the general-chat prompt. Empty parts are omitted.
func BuildPrompt(contextBlock, viewed, input string) string {
	var b strings.Builder
	b.WriteString(Persona)
	b.WriteString(contextBlock)
	if viewed != "" {
		b.WriteString("User is currently viewing this content:\n")
		b.WriteString(viewed)
		b.WriteString("\n\n")
	}
	b.WriteString(input)
	return b.String()
}

func (a *Assistant) chat(ctx context.Context, input, viewed, entity, contextBlock string) model.Response {
	if a.llm == nil {
		a.log.Error().Msg("model not configured, cannot answer general chat")
		return model.Error("AI model is not available for general chat.")
	}

	subject := entity
	if subject == "" {
		subject = "that"
	}
	found := contextBlock != ""

	text, err := a.llm.Complete(ctx, BuildPrompt(contextBlock, viewed, input))
	switch {
	case llm.IsBlocked(err):
		a.log.Warn().Err(err).Msg("prompt blocked")
		return model.Text("Your prompt was blocked due to safety concerns.")
	case errors.Is(err, llm.ErrNoCandidates):
		a.log.Warn().Msg("no candidates returned")
		if found {
			return model.Text("Hmm, I found some information about " + subject + ", but I'm having trouble forming a response right now. Could you try asking in a different way?")
		}
		return model.Text("Hmm, I'm not sure how to respond to that right now. Could you try rephrasing?")
	case err != nil:
		a.log.Error().Err(err).Msg("model request failed")
		if found {
			return model.Text("I found some information about " + subject + ", but I ran into a problem trying to generate a response. Could you try asking in a different way?")
		}
		return model.Text("I ran into a problem trying to generate a response. Could you try asking in a different way?")
	}

	if code, ok := llm.ExtractCodeBlock(text); ok {
		return model.Code(code)
	}
	return model.Text(strings.TrimSpace(text))
}
