package ai

import (
	"context"
	"fmt"
	"time"

	"hmo-chatbot-backend/internal/config"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	genai "github.com/google/generative-ai-go/genai"
)

// Gemini caps batch embedding requests at 100 contents.
const embedBatchLimit = 100

// GeminiEmbedder embeds text through the Google Generative AI embeddings
// API (text-embedding-004 by default).
type GeminiEmbedder struct {
	client      *genai.Client
	model       string
	dimension   int
	limiter     *rate.Limiter
	maxAttempts int
	timeout     time.Duration
}

func NewGeminiEmbedder(ctx context.Context, cfg *config.Config) (*GeminiEmbedder, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY for embeddings")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}

	// RPM limit with some buffer
	limiter := rate.NewLimiter(rate.Limit(float64(cfg.RateLimitRPM)*0.9/60.0), 1)

	return &GeminiEmbedder{
		client:      client,
		model:       cfg.EmbeddingsModel,
		dimension:   cfg.VectorDim,
		limiter:     limiter,
		maxAttempts: cfg.MaxAttempts,
		timeout:     time.Duration(cfg.ProviderTimeout) * time.Second,
	}, nil
}

func (e *GeminiEmbedder) Dimension() int { return e.dimension }

// EmbedBatch embeds texts in API-sized batches. The genai batch endpoint
// returns embeddings in request order, so output order matches input order.
func (e *GeminiEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	em := e.client.EmbeddingModel(e.model)

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatchLimit {
		end := start + embedBatchLimit
		if end > len(texts) {
			end = len(texts)
		}

		var resp *genai.BatchEmbedContentsResponse
		err := withBackoff(ctx, e.maxAttempts, func() error {
			if err := e.limiter.Wait(ctx); err != nil {
				return classify(err)
			}

			cctx, cancel := context.WithTimeout(ctx, e.timeout)
			defer cancel()

			batch := em.NewBatch()
			for _, text := range texts[start:end] {
				batch.AddContent(genai.Text(text))
			}

			r, err := em.BatchEmbedContents(cctx, batch)
			if err != nil {
				return classify(err)
			}
			resp = r
			return nil
		})
		if err != nil {
			return nil, err
		}

		if len(resp.Embeddings) != end-start {
			return nil, fmt.Errorf("%w: got %d embeddings for %d texts",
				ErrProviderUnavailable, len(resp.Embeddings), end-start)
		}
		for _, emb := range resp.Embeddings {
			if emb == nil || len(emb.Values) != e.dimension {
				return nil, fmt.Errorf("%w: unexpected embedding dimension",
					ErrProviderUnavailable)
			}
			out = append(out, emb.Values)
		}
	}

	return out, nil
}

// Close releases the underlying API client.
func (e *GeminiEmbedder) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}
