package conversations

import (
	"context"
	"strings"

	"github.com/headhunter-core/server/internal/agent/model"

	"github.com/cloudwego/eino/schema"
)

// SessionManager mediates between the graph and the session store: it persists
// user and assistant turns and renders recent history into the tagged context
// block the classifier prompt expects.
type SessionManager struct {
	sessionRepo model.SessionRepository
	maxTurns    int
}

func NewSessionManager(sessionRepo model.SessionRepository, config model.SessionConfig) *SessionManager {
	return &SessionManager{
		sessionRepo: sessionRepo,
		maxTurns:    config.Context.MaxTurns,
	}
}

// ProcessUserMessage saves the incoming user turn, then returns the recent
// conversation rendered as a tagged context block with the current query
// marked separately so the classifier can tell it from history.
func (sm *SessionManager) ProcessUserMessage(ctx context.Context, sessionID string, query string) (string, error) {
	userMsg := schema.UserMessage(query)
	if err := sm.sessionRepo.AddMessage(ctx, sessionID, userMsg); err != nil {
		return "", err
	}

	history, err := sm.sessionRepo.LoadHistory(ctx, sessionID)
	if err != nil {
		return "", err
	}

	var fullContext strings.Builder
	fullContext.WriteString(sm.buildContext(history.Messages))
	fullContext.WriteString("\n<current_message_to_analyze>\n")
	fullContext.WriteString("UserMessage(" + query + ")\n")
	fullContext.WriteString("</current_message_to_analyze>")

	return fullContext.String(), nil
}

func (sm *SessionManager) buildContext(messages []*schema.Message) string {
	recentMessages := trimTail(messages, sm.maxTurns)

	var contextBuilder strings.Builder
	contextBuilder.WriteString("<conversation_context>\n")

	for _, msg := range recentMessages {
		if msg == nil || msg.Content == "" {
			continue
		}
		switch msg.Role {
		case schema.User:
			contextBuilder.WriteString("UserMessage(" + msg.Content + ")\n")
		case schema.Assistant:
			contextBuilder.WriteString("AssistantMessage(" + msg.Content + ")\n")
		}
	}

	contextBuilder.WriteString("</conversation_context>")
	return contextBuilder.String()
}

// SaveResponse persists the assistant's formatted answer as the closing turn.
func (sm *SessionManager) SaveResponse(ctx context.Context, sessionID string, content string) error {
	assistantMsg := schema.AssistantMessage(content, nil)
	return sm.sessionRepo.AddMessage(ctx, sessionID, assistantMsg)
}

func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if len(messages) <= maxTurns {
		result := make([]*schema.Message, len(messages))
		copy(result, messages)
		return result
	}
	source := messages[len(messages)-maxTurns:]
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}
