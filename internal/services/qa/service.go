package qa

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fiscus/internal/interfaces"
	"github.com/ternarybob/fiscus/internal/models"
	"github.com/ternarybob/fiscus/internal/services/metrics"
	"github.com/ternarybob/fiscus/internal/services/workers"
)

const (
	blankQuestionAnswer = "Please provide a valid question."
	noInformationAnswer = "I could not find relevant information to answer this question."

	// Source text is truncated for display; the full chunk stays in the index
	sourceTextLimit = 200
)

// Service implements QAService: the ingestion pipeline (text -> chunks ->
// embeddings -> index) and the query pipeline (question -> embedding ->
// retrieval -> answer synthesis -> citations).
type Service struct {
	chunker       interfaces.ChunkerService
	embedder      interfaces.EmbeddingService
	index         interfaces.VectorIndex
	memory        *ConversationMemory
	logger        arbor.ILogger
	defaultTopK   int
	minSimilarity float64
	ingestWorkers int
}

// NewService creates a new RAG question-answering service
func NewService(
	chunker interfaces.ChunkerService,
	embedder interfaces.EmbeddingService,
	index interfaces.VectorIndex,
	defaultTopK int,
	minSimilarity float64,
	historyLimit int,
	ingestWorkers int,
	logger arbor.ILogger,
) interfaces.QAService {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	if ingestWorkers <= 0 {
		ingestWorkers = 4
	}
	return &Service{
		chunker:       chunker,
		embedder:      embedder,
		index:         index,
		memory:        NewConversationMemory(historyLimit),
		logger:        logger,
		defaultTopK:   defaultTopK,
		minSimilarity: minSimilarity,
		ingestWorkers: ingestWorkers,
	}
}

// AddDocument ingests one document: chunk, embed, index. Atomic per
// document: an embedding failure indexes nothing.
func (s *Service) AddDocument(ctx context.Context, text string, metadata map[string]interface{}) (int, error) {
	if strings.TrimSpace(text) == "" {
		s.logger.Warn().Msg("Empty text provided, skipping document")
		return 0, nil
	}

	chunks := s.chunker.ChunkWithOverlap(text, metadata)
	if len(chunks) == 0 {
		s.logger.Warn().Msg("No chunks created from document")
		return 0, nil
	}

	if err := s.embedder.EmbedChunks(ctx, chunks); err != nil {
		return 0, fmt.Errorf("document ingestion abandoned: %w", err)
	}

	if err := s.index.Add(chunks); err != nil {
		return 0, fmt.Errorf("failed to index document chunks: %w", err)
	}

	s.logger.Info().
		Int("chunks", len(chunks)).
		Int("total_chunks", s.index.Count()).
		Msg("Added document to knowledge base")

	return len(chunks), nil
}

// AddDocuments ingests documents in parallel. Each document's
// chunk/embed/index sequence is self-contained; the index serializes the
// final add. Cancellation is cooperative between documents, never
// mid-document, and a failed document does not roll back earlier ones.
func (s *Service) AddDocuments(ctx context.Context, docs []interfaces.DocumentInput) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	pool := workers.NewPool(ctx, s.ingestWorkers, s.logger)
	pool.Start()

	var total atomic.Int64
	submitted := 0
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			pool.Shutdown()
			return int(total.Load()), err
		}

		doc := doc
		job := func(jobCtx context.Context) error {
			added, err := s.AddDocument(jobCtx, doc.Text, doc.Metadata)
			if err != nil {
				return err
			}
			total.Add(int64(added))
			return nil
		}
		if err := pool.Submit(job); err != nil {
			break
		}
		submitted++
	}
	pool.Wait()

	if errs := pool.Errors(); len(errs) > 0 {
		return int(total.Load()), fmt.Errorf("ingestion completed with %d of %d documents failed: %w",
			len(errs), submitted, errs[0])
	}
	return int(total.Load()), nil
}

// AnswerQuestion runs the query pipeline and records the exchange in the
// conversation history regardless of outcome.
func (s *Service) AnswerQuestion(ctx context.Context, question string, k int, minSimilarity float64) (*models.Answer, error) {
	answer, err := s.answer(ctx, question, k, minSimilarity)
	if err != nil {
		return nil, err
	}
	s.memory.AddExchange(question, answer.Answer, answer.Sources)
	return answer, nil
}

// AnswerWithMetrics answers a question and, when question keywords match
// known metric groups, prepends the corresponding computed values. The
// metric keys used are recorded on the answer for caller transparency.
func (s *Service) AnswerWithMetrics(ctx context.Context, question string, k int, minSimilarity float64, computed map[string]float64) (*models.Answer, error) {
	answer, err := s.answer(ctx, question, k, minSimilarity)
	if err != nil {
		return nil, err
	}

	if matched := metrics.MatchKeywords(question, computed); len(matched) > 0 {
		var lines []string
		lines = append(lines, "Computed financial metrics:")
		for _, key := range matched {
			lines = append(lines, fmt.Sprintf("• %s: %.2f", key, computed[key]))
		}
		answer.Answer = strings.Join(lines, "\n") + "\n\n" + answer.Answer
		answer.MetricsUsed = matched

		s.logger.Debug().
			Int("metrics_used", len(matched)).
			Msg("Blended computed metrics into answer")
	}

	s.memory.AddExchange(question, answer.Answer, answer.Sources)
	return answer, nil
}

func (s *Service) answer(ctx context.Context, question string, k int, minSimilarity float64) (*models.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return &models.Answer{Answer: blankQuestionAnswer, Sources: []models.SourceRef{}, Confidence: 0}, nil
	}

	if k <= 0 {
		k = s.defaultTopK
	}
	if minSimilarity <= 0 {
		minSimilarity = s.minSimilarity
	}

	questionEmbedding, err := s.embedder.EmbedText(ctx, question)
	if err != nil {
		// Degrade to a fixed response rather than surfacing provider failure
		s.logger.Error().Err(err).Msg("Failed to embed question")
		return &models.Answer{Answer: noInformationAnswer, Sources: []models.SourceRef{}, Confidence: 0}, nil
	}

	results, err := s.index.SearchWithScore(questionEmbedding, k, minSimilarity)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}
	if len(results) == 0 {
		return &models.Answer{Answer: noInformationAnswer, Sources: []models.SourceRef{}, Confidence: 0}, nil
	}

	contexts := make([]string, 0, len(results))
	sources := make([]models.SourceRef, 0, len(results))
	for _, r := range results {
		contexts = append(contexts, r.Entry.Text)
		sources = append(sources, models.SourceRef{
			Text:       truncate(r.Entry.Text, sourceTextLimit),
			Similarity: r.Similarity,
			Metadata:   r.Entry.Metadata,
		})
	}

	return &models.Answer{
		Answer:  synthesizeAnswer(contexts, sources),
		Sources: sources,
		// The top match's reliability is what should gate user trust,
		// so confidence is the best similarity, not an average
		Confidence: sources[0].Similarity,
	}, nil
}

// Clear resets the knowledge base and conversation history
func (s *Service) Clear() {
	s.index.Clear()
	s.memory.Clear()
	s.logger.Info().Msg("Knowledge base cleared")
}

// History returns the conversation history, oldest first
func (s *Service) History() []models.ConversationExchange {
	return s.memory.All()
}

// Stats summarizes the knowledge base state
func (s *Service) Stats() models.KnowledgeBaseStats {
	indexStats := s.index.Stats()
	return models.KnowledgeBaseStats{
		TotalChunks:        indexStats.TotalChunks,
		EmbeddingDimension: indexStats.EmbeddingDimension,
		IndexSize:          indexStats.IndexSize,
		ConversationLength: s.memory.Len(),
	}
}

// SaveKnowledgeBase persists the vector index artifacts
func (s *Service) SaveKnowledgeBase(basePath string) error {
	return s.index.Save(basePath)
}

// LoadKnowledgeBase replaces the vector index from saved artifacts
func (s *Service) LoadKnowledgeBase(basePath string) error {
	return s.index.Load(basePath)
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && text[cut]&0xC0 == 0x80 {
		cut--
	}
	return text[:cut] + "..."
}
