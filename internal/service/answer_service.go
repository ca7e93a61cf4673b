package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docqa/ragserver/internal/ai"
	"github.com/docqa/ragserver/internal/model"
)

const defaultConversationID = "default"

const insufficientDataResponse = "I could not find relevant information in the " +
	"knowledge base to answer this question. Try rephrasing it or ingest the " +
	"documents that cover this topic."

// Retriever is the read side of the index client.
type Retriever interface {
	Query(ctx context.Context, text string, k int) []model.Match
}

type Answer struct {
	Response       string
	ConversationID string
	Sources        []string
}

// AnswerService turns a question into an answer grounded on retrieved
// chunks. It never returns an error: every failure along the path becomes a
// normal response describing what went wrong, with no sources.
type AnswerService struct {
	retriever Retriever
	generator ai.IGenerator
	topK      int
}

func NewAnswerService(retriever Retriever, generator ai.IGenerator, topK int) *AnswerService {
	if topK <= 0 {
		topK = 3
	}
	return &AnswerService{retriever: retriever, generator: generator, topK: topK}
}

func (s *AnswerService) Answer(ctx context.Context, question, conversationID string) Answer {
	if conversationID == "" {
		conversationID = defaultConversationID
	}
	logger := logutil.GetLogger(ctx).With(zap.String("conversation_id", conversationID))

	matches := s.retriever.Query(ctx, question, s.topK)
	logger.Info("retrieved context", zap.Int("matches", len(matches)))
	if len(matches) == 0 {
		return Answer{
			Response:       insufficientDataResponse,
			ConversationID: conversationID,
			Sources:        []string{},
		}
	}

	sources := make([]string, 0, len(matches))
	for _, match := range matches {
		sources = append(sources, match.Source)
	}

	response, err := s.generator.Generate(ctx, buildPrompt(question, matches))
	if err != nil {
		logger.Error("answer generation failed", zap.Error(err))
		return Answer{
			Response:       fmt.Sprintf("Sorry, an error occurred while processing your question. Error: %v", err),
			ConversationID: conversationID,
			Sources:        []string{},
		}
	}
	return Answer{Response: response, ConversationID: conversationID, Sources: sources}
}

// Ping makes a minimal live call to the completion provider and returns its
// reply, used by the health probe.
func (s *AnswerService) Ping(ctx context.Context) (string, error) {
	return s.generator.Generate(ctx, "Reply with the single word OK.")
}

func buildPrompt(question string, matches []model.Match) string {
	var contextParts []string
	for i, match := range matches {
		contextParts = append(contextParts, fmt.Sprintf("Document %d (%s):\n%s", i+1, match.Source, match.Text))
	}
	contextBlock := strings.Join(contextParts, "\n\n")

	return fmt.Sprintf(`You are an expert technical assistant for the organization's knowledge base.
Answer the user's question using only the information in the provided documents, keeping the answer scannable and clearly structured.

User question: %s

Relevant information from the documents:
%s

FORMATTING RULES:
- Do not produce walls of plain text; use bullet lists for features, steps or requirements.
- Use bold (**text**) for key concepts and headings (### Title) to separate logical sections.
- Format any URL as a clickable markdown link: [descriptive text](URL).
- When citing sources, highlight them: *Source: **[document name]***.
- Be specific and precise with data; keep a professional tone.
- If the documents do not contain enough information, say so explicitly.

Answer:`, question, contextBlock)
}
