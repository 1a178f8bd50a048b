package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"lexaid-backend/models"
	"lexaid-backend/vectorindex"
)

// ChunkRetriever is the read side of the prebuilt document-chunk index.
// Building the index is the offline indexer's job; the engine only
// queries it and fails fast when it is absent.
type ChunkRetriever interface {
	Count(ctx context.Context) (int, error)
	SearchNearest(ctx context.Context, embedding []float64, limit int) ([]models.CorpusChunk, error)
}

const (
	// retrievalPool is the candidate pool sampled before diversity
	// selection picks the final context chunks.
	retrievalPool = 20

	// retrievalChunks is how many context chunks are handed to the
	// generation backend.
	retrievalChunks = 6

	// mmrLambda trades relevance against diversity during selection.
	mmrLambda = 0.5

	// snippetLimit caps the length of each cited excerpt to bound the
	// response payload.
	snippetLimit = 500

	answerTemperature = 0.2
)

// Fixed sentences the grounding prompt instructs the backend to return
// verbatim. Neither is an error: both are successful answers.
const (
	// OffTopicRefusal is returned for questions unrelated to the
	// engine's legal domain.
	OffTopicRefusal = "I can only answer questions about the Indian Penal Code and the legal procedures covered by my reference documents."

	// InsufficientContext is returned when the retrieved context does
	// not contain the answer.
	InsufficientContext = "I don't see that section in the provided IPC data."
)

var (
	ErrEmptyQuestion     = errors.New("question text is required")
	ErrEngineUnavailable = errors.New("answering engine is unavailable")
)

// ChatService is the retrieval-augmented answering engine. It holds no
// per-conversation state: history arrives as an explicit parameter and
// the caller persists the new turn after a successful answer. The only
// mutable state is the lazy readiness check, which transitions
// Uninitialized -> Ready once and is re-attempted by the next call if
// it fails.
type ChatService struct {
	mu    sync.Mutex
	ready atomic.Bool

	chunkRepo ChunkRetriever
	encoder   Encoder
	generator Generator
}

// ChatServiceOption is a functional option for ChatService
type ChatServiceOption func(*ChatService)

// ChatWithChunkRetriever sets the corpus chunk retriever
func ChatWithChunkRetriever(repo ChunkRetriever) ChatServiceOption {
	return func(s *ChatService) {
		s.chunkRepo = repo
	}
}

// ChatWithEncoder sets the question encoder
func ChatWithEncoder(encoder Encoder) ChatServiceOption {
	return func(s *ChatService) {
		s.encoder = encoder
	}
}

// ChatWithGenerator sets the generation backend
func ChatWithGenerator(generator Generator) ChatServiceOption {
	return func(s *ChatService) {
		s.generator = generator
	}
}

// NewChatService creates a new chat service
func NewChatService(opts ...ChatServiceOption) *ChatService {
	s := &ChatService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AskRequest represents one conversational question. History is the
// stored transcript for the session, supplied by the caller.
type AskRequest struct {
	Question string
	History  models.ConversationTurns
}

// AskResult represents a grounded answer with its cited sources
type AskResult struct {
	Answer  string
	Sources []models.ChatSource
}

// ensureReady verifies the engine's collaborators once per process.
// Failure leaves the engine uninitialized so the next call retries.
func (s *ChatService) ensureReady(ctx context.Context) error {
	if s.ready.Load() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready.Load() {
		return nil
	}
	if s.chunkRepo == nil || s.encoder == nil || s.generator == nil {
		return fmt.Errorf("%w: engine dependencies not set", ErrEngineUnavailable)
	}

	count, err := s.chunkRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	if count == 0 {
		return fmt.Errorf("%w: corpus index is empty, run cmd/build-index first", ErrEngineUnavailable)
	}

	s.ready.Store(true)
	return nil
}

// Ask answers one question strictly within the retrieved context and
// the supplied history. The caller appends {question, answer} to the
// session store after a successful call.
func (s *ChatService) Ask(ctx context.Context, req AskRequest) (*AskResult, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, ErrEmptyQuestion
	}

	if err := s.ensureReady(ctx); err != nil {
		return nil, err
	}

	// Fresh in-request memory, seeded from the stored history; the
	// caller's slice is never mutated
	history := make(models.ConversationTurns, len(req.History))
	copy(history, req.History)

	queryEmbedding, err := s.encoder.Embed(ctx, req.Question)
	if err != nil {
		return nil, fmt.Errorf("%w: question embedding: %v", ErrEngineUnavailable, err)
	}

	pool, err := s.chunkRepo.SearchNearest(ctx, queryEmbedding, retrievalPool)
	if err != nil {
		return nil, fmt.Errorf("%w: chunk retrieval: %v", ErrEngineUnavailable, err)
	}

	chunks := selectContextChunks(queryEmbedding, pool)
	prompt := buildGroundingPrompt(chunks, history, req.Question)

	answer, err := s.generator.Generate(ctx, prompt, answerTemperature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	answer = strings.TrimSpace(answer)

	result := &AskResult{Answer: answer}
	if answer != OffTopicRefusal {
		for _, chunk := range chunks {
			snippet := chunk.Text
			if len(snippet) > snippetLimit {
				snippet = snippet[:snippetLimit]
			}
			result.Sources = append(result.Sources, models.ChatSource{
				Source:  chunk.SourceDocument,
				Page:    chunk.Page,
				Snippet: snippet,
			})
		}
	}

	return result, nil
}

// selectContextChunks picks the final context chunks from the retrieval
// pool, preferring relevant-but-mutually-dissimilar chunks. When the
// pool carries no embeddings the nearest chunks are used as-is.
func selectContextChunks(query []float64, pool []models.CorpusChunk) []models.CorpusChunk {
	if len(pool) == 0 {
		return nil
	}

	embeddings := make([][]float64, len(pool))
	for i, chunk := range pool {
		if len(chunk.Embedding) == 0 {
			k := retrievalChunks
			if k > len(pool) {
				k = len(pool)
			}
			return pool[:k]
		}
		embeddings[i] = chunk.Embedding
	}

	order := vectorindex.MaximalMarginalRelevance(query, embeddings, mmrLambda, retrievalChunks)
	selected := make([]models.CorpusChunk, 0, len(order))
	for _, i := range order {
		selected = append(selected, pool[i])
	}
	return selected
}

// buildGroundingPrompt assembles the deterministic grounding prompt:
// answer only from context plus history, refuse off-topic questions with
// the fixed sentence, state insufficiency rather than fabricate.
func buildGroundingPrompt(chunks []models.CorpusChunk, history models.ConversationTurns, question string) string {
	var b strings.Builder

	b.WriteString("You are a legal assistant for questions about the Indian Penal Code. ")
	b.WriteString("Answer **only** using the provided context and the chat history.\n")
	fmt.Fprintf(&b, "If the question is unrelated to the Indian Penal Code or Indian legal procedure, reply exactly: %q\n", OffTopicRefusal)
	fmt.Fprintf(&b, "If the answer is not present in the context, reply exactly: %q\n\n", InsufficientContext)

	b.WriteString("Requirements:\n")
	b.WriteString("- Be concise and specific.\n")
	b.WriteString("- Quote section numbers if present.\n")
	b.WriteString("- Do not invent facts.\n\n")

	b.WriteString("<context>\n")
	for _, chunk := range chunks {
		b.WriteString(chunk.Text)
		b.WriteString("\n\n")
	}
	b.WriteString("</context>\n\n")

	if len(history) > 0 {
		b.WriteString("<history>\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "User: %s\nAssistant: %s\n", turn.Question, turn.Answer)
		}
		b.WriteString("</history>\n\n")
	}

	fmt.Fprintf(&b, "Question: %s\nAnswer:", question)
	return b.String()
}
