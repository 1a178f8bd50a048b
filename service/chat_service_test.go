package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"lexaid-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubChunkRetriever serves a fixed pool of chunks
type stubChunkRetriever struct {
	count    int
	countErr error
	pool     []models.CorpusChunk
	poolErr  error
}

func (s *stubChunkRetriever) Count(ctx context.Context) (int, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.count, nil
}

func (s *stubChunkRetriever) SearchNearest(ctx context.Context, embedding []float64, limit int) ([]models.CorpusChunk, error) {
	if s.poolErr != nil {
		return nil, s.poolErr
	}
	if limit > len(s.pool) {
		limit = len(s.pool)
	}
	return s.pool[:limit], nil
}

// stubGenerator returns a fixed answer and records the last prompt
type stubGenerator struct {
	answer     string
	err        error
	lastPrompt string
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	g.lastPrompt = prompt
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

func makeChunkPool(n int) []models.CorpusChunk {
	chunks := make([]models.CorpusChunk, n)
	for i := range chunks {
		chunks[i] = models.CorpusChunk{
			SourceDocument: "ipc_guide.txt",
			Page:           i,
			ChunkIndex:     i,
			Text:           strings.Repeat("x", 10+i),
			Embedding:      []float64{float64(i + 1), 1},
		}
	}
	return chunks
}

func newTestChatService(retriever ChunkRetriever, enc Encoder, gen Generator) *ChatService {
	return NewChatService(
		ChatWithChunkRetriever(retriever),
		ChatWithEncoder(enc),
		ChatWithGenerator(gen),
	)
}

func TestAskEmptyQuestion(t *testing.T) {
	svc := newTestChatService(
		&stubChunkRetriever{count: 1, pool: makeChunkPool(1)},
		&stubEncoder{embedding: []float64{1, 0}},
		&stubGenerator{answer: "ok"},
	)

	_, err := svc.Ask(context.Background(), AskRequest{Question: ""})
	assert.ErrorIs(t, err, ErrEmptyQuestion)

	_, err = svc.Ask(context.Background(), AskRequest{Question: "   "})
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestAskEmptyCorpusFailsFast(t *testing.T) {
	svc := newTestChatService(
		&stubChunkRetriever{count: 0},
		&stubEncoder{embedding: []float64{1, 0}},
		&stubGenerator{answer: "ok"},
	)

	_, err := svc.Ask(context.Background(), AskRequest{Question: "What is section 378?"})
	assert.ErrorIs(t, err, ErrEngineUnavailable)
}

func TestAskReadinessRetriesAfterFailure(t *testing.T) {
	retriever := &stubChunkRetriever{countErr: errors.New("database down"), pool: makeChunkPool(3)}
	svc := newTestChatService(
		retriever,
		&stubEncoder{embedding: []float64{1, 0}},
		&stubGenerator{answer: "Section 378 defines theft."},
	)

	_, err := svc.Ask(context.Background(), AskRequest{Question: "What is section 378?"})
	require.ErrorIs(t, err, ErrEngineUnavailable)

	retriever.countErr = nil
	retriever.count = 3
	res, err := svc.Ask(context.Background(), AskRequest{Question: "What is section 378?"})
	require.NoError(t, err)
	assert.Equal(t, "Section 378 defines theft.", res.Answer)
}

func TestAskReturnsAnswerWithSources(t *testing.T) {
	svc := newTestChatService(
		&stubChunkRetriever{count: 3, pool: makeChunkPool(3)},
		&stubEncoder{embedding: []float64{1, 0}},
		&stubGenerator{answer: "  Section 378 defines theft.  "},
	)

	res, err := svc.Ask(context.Background(), AskRequest{Question: "What is theft?"})
	require.NoError(t, err)

	assert.Equal(t, "Section 378 defines theft.", res.Answer, "answer is trimmed")
	require.Len(t, res.Sources, 3)
	for _, src := range res.Sources {
		assert.Equal(t, "ipc_guide.txt", src.Source)
		assert.NotEmpty(t, src.Snippet)
	}
}

func TestAskSelectsBoundedContext(t *testing.T) {
	gen := &stubGenerator{answer: "Some answer."}
	svc := newTestChatService(
		&stubChunkRetriever{count: 30, pool: makeChunkPool(30)},
		&stubEncoder{embedding: []float64{1, 0}},
		gen,
	)

	res, err := svc.Ask(context.Background(), AskRequest{Question: "What is theft?"})
	require.NoError(t, err)
	assert.Len(t, res.Sources, 6, "context is capped regardless of pool size")
}

func TestAskSnippetsAreCapped(t *testing.T) {
	long := strings.Repeat("a", 2000)
	pool := []models.CorpusChunk{{
		SourceDocument: "ipc_guide.txt",
		Page:           4,
		Text:           long,
		Embedding:      []float64{1, 0},
	}}
	svc := newTestChatService(
		&stubChunkRetriever{count: 1, pool: pool},
		&stubEncoder{embedding: []float64{1, 0}},
		&stubGenerator{answer: "Some answer."},
	)

	res, err := svc.Ask(context.Background(), AskRequest{Question: "What is theft?"})
	require.NoError(t, err)
	require.Len(t, res.Sources, 1)
	assert.Len(t, res.Sources[0].Snippet, 500)
	assert.Equal(t, 4, res.Sources[0].Page)
}

func TestAskOffTopicRefusalOmitsSources(t *testing.T) {
	svc := newTestChatService(
		&stubChunkRetriever{count: 3, pool: makeChunkPool(3)},
		&stubEncoder{embedding: []float64{1, 0}},
		&stubGenerator{answer: OffTopicRefusal},
	)

	res, err := svc.Ask(context.Background(), AskRequest{Question: "What is the capital of France?"})
	require.NoError(t, err)
	assert.Equal(t, OffTopicRefusal, res.Answer)
	assert.Empty(t, res.Sources)
}

func TestAskInsufficientContextKeepsSources(t *testing.T) {
	svc := newTestChatService(
		&stubChunkRetriever{count: 2, pool: makeChunkPool(2)},
		&stubEncoder{embedding: []float64{1, 0}},
		&stubGenerator{answer: InsufficientContext},
	)

	res, err := svc.Ask(context.Background(), AskRequest{Question: "What is section 9999?"})
	require.NoError(t, err)
	assert.Equal(t, InsufficientContext, res.Answer)
	assert.NotEmpty(t, res.Sources, "insufficiency is a grounded answer, sources stay")
}

func TestAskHistoryReachesGenerator(t *testing.T) {
	gen := &stubGenerator{answer: "It is punishable with imprisonment."}
	svc := newTestChatService(
		&stubChunkRetriever{count: 2, pool: makeChunkPool(2)},
		&stubEncoder{embedding: []float64{1, 0}},
		gen,
	)

	history := models.ConversationTurns{
		{Question: "What is section 378?", Answer: "Section 378 defines theft."},
	}
	_, err := svc.Ask(context.Background(), AskRequest{
		Question: "What is the punishment for it?",
		History:  history,
	})
	require.NoError(t, err)

	assert.Contains(t, gen.lastPrompt, "What is section 378?")
	assert.Contains(t, gen.lastPrompt, "Section 378 defines theft.")
	assert.Contains(t, gen.lastPrompt, "What is the punishment for it?")
}

func TestAskDoesNotMutateCallerHistory(t *testing.T) {
	svc := newTestChatService(
		&stubChunkRetriever{count: 2, pool: makeChunkPool(2)},
		&stubEncoder{embedding: []float64{1, 0}},
		&stubGenerator{answer: "Some answer."},
	)

	history := models.ConversationTurns{
		{Question: "q1", Answer: "a1"},
	}
	_, err := svc.Ask(context.Background(), AskRequest{Question: "q2", History: history})
	require.NoError(t, err)

	require.Len(t, history, 1)
	assert.Equal(t, "q1", history[0].Question)
}

func TestAskGeneratorFailure(t *testing.T) {
	svc := newTestChatService(
		&stubChunkRetriever{count: 2, pool: makeChunkPool(2)},
		&stubEncoder{embedding: []float64{1, 0}},
		&stubGenerator{err: errors.New("model overloaded")},
	)

	_, err := svc.Ask(context.Background(), AskRequest{Question: "What is theft?"})
	assert.ErrorIs(t, err, ErrEngineUnavailable)
}

func TestGroundingPromptShape(t *testing.T) {
	chunks := []models.CorpusChunk{
		{Text: "Section 378. Theft. Whoever intends to take dishonestly..."},
	}
	history := models.ConversationTurns{
		{Question: "hi", Answer: "hello"},
	}

	prompt := buildGroundingPrompt(chunks, history, "What is theft?")

	assert.Contains(t, prompt, "<context>")
	assert.Contains(t, prompt, "</context>")
	assert.Contains(t, prompt, "<history>")
	assert.Contains(t, prompt, "Section 378. Theft.")
	assert.Contains(t, prompt, OffTopicRefusal)
	assert.Contains(t, prompt, InsufficientContext)
	assert.True(t, strings.HasSuffix(prompt, "Question: What is theft?\nAnswer:"))

	// History block is omitted entirely on the first turn
	first := buildGroundingPrompt(chunks, nil, "What is theft?")
	assert.NotContains(t, first, "<history>")
}
