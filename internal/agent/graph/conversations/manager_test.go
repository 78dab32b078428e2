package conversations

import (
	"context"
	"fmt"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/headhunter-core/server/internal/agent/model"
)

type memoryRepo struct {
	messages map[string][]*schema.Message
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{messages: map[string][]*schema.Message{}}
}

func (r *memoryRepo) AddMessage(_ context.Context, sessionID string, m *schema.Message) error {
	r.messages[sessionID] = append(r.messages[sessionID], m)
	return nil
}

func (r *memoryRepo) LoadHistory(_ context.Context, sessionID string) (*model.SessionHistory, error) {
	return &model.SessionHistory{SessionID: sessionID, Messages: r.messages[sessionID]}, nil
}

func (r *memoryRepo) ClearHistory(_ context.Context, sessionID string) error {
	delete(r.messages, sessionID)
	return nil
}

func (r *memoryRepo) MessageCount(_ context.Context, sessionID string) (int, error) {
	return len(r.messages[sessionID]), nil
}

func managerConfig(maxTurns int) model.SessionConfig {
	var cfg model.SessionConfig
	cfg.TTL = "30m"
	cfg.Context.MaxTurns = maxTurns
	return cfg
}

func TestProcessUserMessageBuildsTaggedContext(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	sm := NewSessionManager(repo, managerConfig(6))

	require.NoError(t, repo.AddMessage(ctx, "s1", schema.UserMessage("Python 개발자 찾아줘")))
	require.NoError(t, repo.AddMessage(ctx, "s1", schema.AssistantMessage("12명이 검색되었습니다.", nil)))

	got, err := sm.ProcessUserMessage(ctx, "s1", "그중에 서울 거주자는?")
	require.NoError(t, err)

	assert.Contains(t, got, "<conversation_context>")
	assert.Contains(t, got, "UserMessage(Python 개발자 찾아줘)")
	assert.Contains(t, got, "AssistantMessage(12명이 검색되었습니다.)")
	assert.Contains(t, got, "<current_message_to_analyze>\nUserMessage(그중에 서울 거주자는?)")

	// the incoming turn was persisted before the context was built
	count, err := repo.MessageCount(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestProcessUserMessageTrimsToMaxTurns(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	sm := NewSessionManager(repo, managerConfig(2))

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.AddMessage(ctx, "s1", schema.UserMessage(fmt.Sprintf("turn-%d", i))))
	}

	got, err := sm.ProcessUserMessage(ctx, "s1", "latest")
	require.NoError(t, err)

	// only the last two persisted turns survive; trimming happens after the
	// new message is saved, so "latest" itself is one of them
	assert.NotContains(t, got, "turn-3")
	assert.Contains(t, got, "UserMessage(turn-4)")
	assert.Contains(t, got, "<current_message_to_analyze>\nUserMessage(latest)")
}

func TestProcessUserMessageSkipsEmptyContent(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	sm := NewSessionManager(repo, managerConfig(6))

	require.NoError(t, repo.AddMessage(ctx, "s1", &schema.Message{Role: schema.Assistant, Content: ""}))
	require.NoError(t, repo.AddMessage(ctx, "s1", nil))

	got, err := sm.ProcessUserMessage(ctx, "s1", "질문")
	require.NoError(t, err)
	assert.Contains(t, got, "<conversation_context>\nUserMessage(질문)\n</conversation_context>")
}

func TestSaveResponsePersistsAssistantTurn(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	sm := NewSessionManager(repo, managerConfig(6))

	require.NoError(t, sm.SaveResponse(ctx, "s1", "안녕하세요"))

	history, err := repo.LoadHistory(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history.Messages, 1)
	assert.Equal(t, schema.Assistant, history.Messages[0].Role)
	assert.Equal(t, "안녕하세요", history.Messages[0].Content)
}
