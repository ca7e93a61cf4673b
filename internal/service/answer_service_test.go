package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docqa/ragserver/internal/model"
)

type fakeRetriever struct {
	matches []model.Match
	lastK   int
}

func (f *fakeRetriever) Query(ctx context.Context, text string, k int) []model.Match {
	f.lastK = k
	return f.matches
}

type fakeGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	return f.response, f.err
}

func TestAnswer_DefaultsConversationID(t *testing.T) {
	svc := NewAnswerService(&fakeRetriever{}, &fakeGenerator{response: "ok"}, 3)
	answer := svc.Answer(context.Background(), "what is this", "")
	require.Equal(t, "default", answer.ConversationID)
}

func TestAnswer_KeepsProvidedConversationID(t *testing.T) {
	svc := NewAnswerService(&fakeRetriever{}, &fakeGenerator{response: "ok"}, 3)
	answer := svc.Answer(context.Background(), "what is this", "session-42")
	require.Equal(t, "session-42", answer.ConversationID)
}

func TestAnswer_NoMatchesShortCircuits(t *testing.T) {
	gen := &fakeGenerator{response: "should not be called"}
	svc := NewAnswerService(&fakeRetriever{}, gen, 3)

	answer := svc.Answer(context.Background(), "unknown topic", "default")
	require.Equal(t, insufficientDataResponse, answer.Response)
	require.Empty(t, gen.lastPrompt)
	require.NotNil(t, answer.Sources)
	require.Empty(t, answer.Sources)
}

func TestAnswer_SourcesFollowRetrievalOrder(t *testing.T) {
	retriever := &fakeRetriever{matches: []model.Match{
		{Text: "alpha", Source: "/docs/a.pdf", Score: 0.9},
		{Text: "beta", Source: "/docs/b.md", Score: 0.8},
		{Text: "gamma", Source: "/docs/a.pdf", Score: 0.7},
	}}
	svc := NewAnswerService(retriever, &fakeGenerator{response: "the answer"}, 3)

	answer := svc.Answer(context.Background(), "question", "default")
	require.Equal(t, "the answer", answer.Response)
	require.Equal(t, []string{"/docs/a.pdf", "/docs/b.md", "/docs/a.pdf"}, answer.Sources)
}

func TestAnswer_PromptContainsQuestionAndContext(t *testing.T) {
	retriever := &fakeRetriever{matches: []model.Match{
		{Text: "chunk content here", Source: "/docs/guide.txt", Score: 0.9},
	}}
	gen := &fakeGenerator{response: "done"}
	svc := NewAnswerService(retriever, gen, 3)

	svc.Answer(context.Background(), "how do I configure it", "default")
	require.Contains(t, gen.lastPrompt, "how do I configure it")
	require.Contains(t, gen.lastPrompt, "chunk content here")
	require.Contains(t, gen.lastPrompt, "Document 1 (/docs/guide.txt)")
}

func TestAnswer_GeneratorFailureDegrades(t *testing.T) {
	retriever := &fakeRetriever{matches: []model.Match{{Text: "x", Source: "/docs/a.txt"}}}
	svc := NewAnswerService(retriever, &fakeGenerator{err: fmt.Errorf("quota exceeded")}, 3)

	answer := svc.Answer(context.Background(), "question", "default")
	require.Contains(t, answer.Response, "quota exceeded")
	require.Empty(t, answer.Sources)
}

func TestAnswer_UsesConfiguredTopK(t *testing.T) {
	retriever := &fakeRetriever{}
	svc := NewAnswerService(retriever, &fakeGenerator{response: "ok"}, 5)
	svc.Answer(context.Background(), "q", "default")
	require.Equal(t, 5, retriever.lastK)
}

func TestPing_ReturnsProviderReply(t *testing.T) {
	svc := NewAnswerService(&fakeRetriever{}, &fakeGenerator{response: "OK"}, 3)
	reply, err := svc.Ping(context.Background())
	require.NoError(t, err)
	require.Equal(t, "OK", reply)
}

func TestPing_ReportsGeneratorError(t *testing.T) {
	svc := NewAnswerService(&fakeRetriever{}, &fakeGenerator{err: fmt.Errorf("down")}, 3)
	_, err := svc.Ping(context.Background())
	require.Error(t, err)
}
