package qa

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/fiscus/internal/common"
	"github.com/ternarybob/fiscus/internal/interfaces"
	"github.com/ternarybob/fiscus/internal/services/chunking"
	"github.com/ternarybob/fiscus/internal/services/embeddings"
	"github.com/ternarybob/fiscus/internal/services/vectorindex"
)

const reportText = "Financial Report 2023\n\n" +
	"Total Revenue: $10,500,000 for the fiscal year. Revenue grew 15% compared to the prior year.\n\n" +
	"Net Income: $2,150,000 after tax. The company maintained healthy margins throughout the year."

func newTestService(t *testing.T) interfaces.QAService {
	t.Helper()
	logger := common.GetLogger()
	chunker := chunking.NewService(200, 50, logger)
	embedder := embeddings.NewService(embeddings.NewHashingProvider(128), 1000, 100, logger)
	index := vectorindex.New(128, logger)
	return NewService(chunker, embedder, index, 5, 0.1, 10, 2, logger)
}

func TestAddDocument(t *testing.T) {
	t.Run("ingests and indexes chunks", func(t *testing.T) {
		svc := newTestService(t)

		added, err := svc.AddDocument(context.Background(), reportText, map[string]interface{}{"file_name": "report.pdf"})
		require.NoError(t, err)
		assert.Greater(t, added, 0)
		assert.Equal(t, added, svc.Stats().TotalChunks)
	})

	t.Run("blank text is a no-op", func(t *testing.T) {
		svc := newTestService(t)

		added, err := svc.AddDocument(context.Background(), "   \n ", nil)
		require.NoError(t, err)
		assert.Zero(t, added)
		assert.Zero(t, svc.Stats().TotalChunks)
	})
}

func TestAddDocuments(t *testing.T) {
	t.Run("ingests a batch in parallel", func(t *testing.T) {
		svc := newTestService(t)

		docs := make([]interfaces.DocumentInput, 5)
		for i := range docs {
			docs[i] = interfaces.DocumentInput{
				Text:     fmt.Sprintf("Quarterly report %d. Revenue was %d million dollars this quarter.", i, 10+i),
				Metadata: map[string]interface{}{"file_name": fmt.Sprintf("q%d.pdf", i)},
			}
		}

		total, err := svc.AddDocuments(context.Background(), docs)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, total, 5)
		assert.Equal(t, total, svc.Stats().TotalChunks)
	})

	t.Run("empty batch returns zero", func(t *testing.T) {
		svc := newTestService(t)
		total, err := svc.AddDocuments(context.Background(), nil)
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("cancelled context stops submission", func(t *testing.T) {
		svc := newTestService(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := svc.AddDocuments(ctx, []interfaces.DocumentInput{
			{Text: "Revenue data."},
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestAnswerQuestion(t *testing.T) {
	t.Run("answers from ingested document with citation", func(t *testing.T) {
		svc := newTestService(t)
		_, err := svc.AddDocument(context.Background(), reportText, map[string]interface{}{"file_name": "report.pdf"})
		require.NoError(t, err)

		answer, err := svc.AnswerQuestion(context.Background(), "What was the total revenue?", 3, 0.05)
		require.NoError(t, err)

		assert.Contains(t, answer.Answer, "10,500,000")
		assert.Contains(t, answer.Answer, "Sources: report.pdf")
		require.NotEmpty(t, answer.Sources)
		assert.Equal(t, "report.pdf", answer.Sources[0].Metadata["file_name"])
		assert.Greater(t, answer.Confidence, 0.05)
		assert.Equal(t, answer.Sources[0].Similarity, answer.Confidence,
			"confidence is the best similarity, not an average")
	})

	t.Run("blank question gets fixed answer with zero confidence", func(t *testing.T) {
		svc := newTestService(t)

		answer, err := svc.AnswerQuestion(context.Background(), "   ", 3, 0.1)
		require.NoError(t, err)
		assert.Equal(t, "Please provide a valid question.", answer.Answer)
		assert.Empty(t, answer.Sources)
		assert.Zero(t, answer.Confidence)
	})

	t.Run("empty knowledge base gets no-information answer", func(t *testing.T) {
		svc := newTestService(t)

		answer, err := svc.AnswerQuestion(context.Background(), "What was the revenue?", 3, 0.1)
		require.NoError(t, err)
		assert.Equal(t, "I could not find relevant information to answer this question.", answer.Answer)
		assert.Empty(t, answer.Sources)
		assert.Zero(t, answer.Confidence)
	})

	t.Run("every query is recorded in history", func(t *testing.T) {
		svc := newTestService(t)

		_, err := svc.AnswerQuestion(context.Background(), "anything in there?", 3, 0.1)
		require.NoError(t, err)
		_, err = svc.AnswerQuestion(context.Background(), "", 3, 0.1)
		require.NoError(t, err)

		history := svc.History()
		require.Len(t, history, 2)
		assert.Equal(t, "anything in there?", history[0].Question)
	})
}

func TestAnswerWithMetrics(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.AddDocument(context.Background(), reportText, map[string]interface{}{"file_name": "report.pdf"})
	require.NoError(t, err)

	computed := map[string]float64{
		"net_profit_margin": 20.48,
		"current_ratio":     2.0,
	}

	t.Run("metric-flavored question blends computed values", func(t *testing.T) {
		answer, err := svc.AnswerWithMetrics(context.Background(), "What is the profit margin?", 3, 0.05, computed)
		require.NoError(t, err)

		assert.Contains(t, answer.Answer, "Computed financial metrics:")
		assert.Contains(t, answer.Answer, "net_profit_margin: 20.48")
		assert.Equal(t, []string{"net_profit_margin"}, answer.MetricsUsed)
	})

	t.Run("unrelated question uses no metrics", func(t *testing.T) {
		answer, err := svc.AnswerWithMetrics(context.Background(), "What was the total revenue?", 3, 0.05, computed)
		require.NoError(t, err)

		assert.NotContains(t, answer.Answer, "Computed financial metrics:")
		assert.Empty(t, answer.MetricsUsed)
	})
}

func TestClearAndStats(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.AddDocument(context.Background(), reportText, map[string]interface{}{"file_name": "report.pdf"})
	require.NoError(t, err)
	_, err = svc.AnswerQuestion(context.Background(), "What was the revenue?", 3, 0.05)
	require.NoError(t, err)

	stats := svc.Stats()
	assert.Greater(t, stats.TotalChunks, 0)
	assert.Equal(t, 128, stats.EmbeddingDimension)
	assert.Equal(t, 1, stats.ConversationLength)

	svc.Clear()

	stats = svc.Stats()
	assert.Zero(t, stats.TotalChunks)
	assert.Zero(t, stats.ConversationLength)
}

func TestSaveLoadKnowledgeBase(t *testing.T) {
	base := t.TempDir() + "/kb/financial"

	source := newTestService(t)
	added, err := source.AddDocument(context.Background(), reportText, map[string]interface{}{"file_name": "report.pdf"})
	require.NoError(t, err)
	require.NoError(t, source.SaveKnowledgeBase(base))

	restored := newTestService(t)
	require.NoError(t, restored.LoadKnowledgeBase(base))
	assert.Equal(t, added, restored.Stats().TotalChunks)

	answer, err := restored.AnswerQuestion(context.Background(), "What was the net income?", 3, 0.05)
	require.NoError(t, err)
	assert.Contains(t, answer.Answer, "2,150,000")
}
