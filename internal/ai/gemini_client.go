package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hmo-chatbot-backend/internal/config"
	"hmo-chatbot-backend/internal/logger"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	genai "github.com/google/generative-ai-go/genai"
)

// GeminiCompleter generates grounded answers through the Gemini chat model.
// Calls go through a circuit breaker and a rate limiter; transient failures
// are retried with bounded backoff before surfacing.
type GeminiCompleter struct {
	client      *genai.Client
	model       string
	breaker     *gobreaker.CircuitBreaker
	limiter     *rate.Limiter
	maxAttempts int
	timeout     time.Duration
}

func NewGeminiCompleter(ctx context.Context, cfg *config.Config) (*GeminiCompleter, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY for completions")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiCompletion",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})

	// RPM limit with some buffer
	limiter := rate.NewLimiter(rate.Limit(float64(cfg.RateLimitRPM)*0.9/60.0), 1)

	return &GeminiCompleter{
		client:      client,
		model:       cfg.GeminiModel,
		breaker:     breaker,
		limiter:     limiter,
		maxAttempts: cfg.MaxAttempts,
		timeout:     time.Duration(cfg.ProviderTimeout) * time.Second,
	}, nil
}

func (gc *GeminiCompleter) Complete(ctx context.Context, prompt, language string) (string, error) {
	tracer := otel.Tracer("gemini-completer")
	ctx, span := tracer.Start(ctx, "gemini.complete")
	defer span.End()

	span.SetAttributes(
		attribute.String("gemini.model", gc.model),
		attribute.String("gemini.language", language),
		attribute.Int("gemini.prompt_chars", len(prompt)),
	)

	var answer string
	err := withBackoff(ctx, gc.maxAttempts, func() error {
		if err := gc.limiter.Wait(ctx); err != nil {
			return classify(err)
		}

		result, err := gc.breaker.Execute(func() (interface{}, error) {
			cctx, cancel := context.WithTimeout(ctx, gc.timeout)
			defer cancel()

			model := gc.client.GenerativeModel(gc.model)
			model.SetTemperature(0.7)
			model.SetMaxOutputTokens(800)
			model.SystemInstruction = &genai.Content{
				Parts: []genai.Part{
					genai.Text("You are a helpful healthcare assistant for Israeli HMOs. Answer strictly in " + languageName(language) + "."),
				},
			}

			return model.GenerateContent(cctx, genai.Text(prompt))
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				return fmt.Errorf("%w: circuit breaker open", ErrProviderUnavailable)
			}
			return classify(err)
		}

		resp := result.(*genai.GenerateContentResponse)
		answer = extractResponseText(resp)
		if answer == "" {
			return fmt.Errorf("%w: no candidates in response", ErrProviderUnavailable)
		}
		return nil
	})
	if err != nil {
		span.SetAttributes(attribute.Bool("gemini.error", true))
		return "", err
	}

	span.SetAttributes(attribute.Bool("gemini.success", true))
	return answer, nil
}

func extractResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	text := ""
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text += string(t)
			}
		}
		if text != "" {
			break
		}
	}
	return text
}

func languageName(code string) string {
	if code == "he" || code == "" {
		return "Hebrew"
	}
	return "English"
}

// Close releases the underlying API client.
func (gc *GeminiCompleter) Close() error {
	if gc.client != nil {
		return gc.client.Close()
	}
	return nil
}
