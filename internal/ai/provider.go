package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/googleapi"
)

// Transient provider failures. All three are retried with bounded backoff
// before surfacing to the caller.
var (
	ErrProviderUnavailable   = errors.New("provider unavailable")
	ErrProviderQuotaExceeded = errors.New("provider quota exceeded")
	ErrTimeout               = errors.New("provider request timed out")
)

// EmbeddingProvider maps texts to fixed-length vectors. EmbedBatch is
// order-preserving: output vector i corresponds to input text i.
// Implementations must be safe for concurrent use.
type EmbeddingProvider interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// CompletionProvider produces a text completion for a prompt. The language
// hint constrains the response language.
type CompletionProvider interface {
	Complete(ctx context.Context, prompt, language string) (string, error)
}

// withBackoff runs fn up to maxAttempts times, sleeping 1<<attempt seconds
// between transient failures. Non-transient errors return immediately.
func withBackoff(ctx context.Context, maxAttempts int, fn func() error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return err
		}
		lastErr = err

		if attempt < maxAttempts-1 {
			select {
			case <-time.After(time.Duration(1<<attempt) * time.Second):
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
			}
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}

func isTransient(err error) bool {
	return errors.Is(err, ErrProviderUnavailable) ||
		errors.Is(err, ErrProviderQuotaExceeded) ||
		errors.Is(err, ErrTimeout)
}

// classify maps raw API failures onto the provider error taxonomy so the
// retry loop and callers can branch on sentinel errors.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", ErrProviderQuotaExceeded, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: auth failure: %v", ErrProviderUnavailable, err)
		}
	}

	return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
}
