package graph

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/headhunter-core/server/internal/agent/model"
)

// stubRunnable stands in for the compiled graph so the runner wrapper can be
// exercised without model credentials.
type stubRunnable struct {
	invoked  bool
	streamed bool
	frames   []*model.RunResult
}

func (s *stubRunnable) Invoke(ctx context.Context, in model.QueryInput, opts ...compose.Option) (*model.RunResult, error) {
	s.invoked = true
	return s.frames[len(s.frames)-1], nil
}

func (s *stubRunnable) Stream(ctx context.Context, in model.QueryInput, opts ...compose.Option) (*schema.StreamReader[*model.RunResult], error) {
	s.streamed = true
	return schema.StreamReaderFromArray(s.frames), nil
}

func (s *stubRunnable) Collect(ctx context.Context, in *schema.StreamReader[model.QueryInput], opts ...compose.Option) (*model.RunResult, error) {
	return s.frames[len(s.frames)-1], nil
}

func (s *stubRunnable) Transform(ctx context.Context, in *schema.StreamReader[model.QueryInput], opts ...compose.Option) (*schema.StreamReader[*model.RunResult], error) {
	return schema.StreamReaderFromArray(s.frames), nil
}

func runFrames() []*model.RunResult {
	return []*model.RunResult{
		{FinalMessage: schema.AssistantMessage("부분 ", nil), QueryType: model.QueryCandidateSearch},
		{FinalMessage: schema.AssistantMessage("응답", nil), QueryType: model.QueryCandidateSearch, QualityScore: 1.0},
	}
}

func TestRunnerInvokeDelegates(t *testing.T) {
	stub := &stubRunnable{frames: runFrames()}
	var r Runner = &graphRunner{runnable: stub}

	got, err := r.Invoke(context.Background(), model.QueryInput{SessionID: "s1", Query: "q"})
	require.NoError(t, err)
	assert.True(t, stub.invoked)
	assert.Equal(t, "응답", got.FinalMessage.Content)
}

func TestRunnerStreamDeliversIncrementalFrames(t *testing.T) {
	stub := &stubRunnable{frames: runFrames()}
	var r Runner = &graphRunner{runnable: stub}

	stream, err := r.Stream(context.Background(), model.QueryInput{SessionID: "s1", Query: "q"})
	require.NoError(t, err)
	defer stream.Close()
	assert.True(t, stub.streamed)

	var contents []string
	var last *model.RunResult
	for {
		frame, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		contents = append(contents, frame.FinalMessage.Content)
		last = frame
	}

	// frames arrive in order and the stream terminates with the formatter output
	assert.Equal(t, []string{"부분 ", "응답"}, contents)
	require.NotNil(t, last)
	assert.Equal(t, model.QueryCandidateSearch, last.QueryType)
	assert.InDelta(t, 1.0, last.QualityScore, 1e-9)
}
