package service

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrPartitionNotInitialized means a query or turn addressed a case or
	// legal collection that was never ingested.
	ErrPartitionNotInitialized = errors.New("knowledge partition not initialized")

	// ErrIngestionFailed wraps failures while chunking, embedding, or storing
	// source text. Initialization endpoints surface it with detail.
	ErrIngestionFailed = errors.New("failed to ingest knowledge text")

	// ErrAnalysisFailed wraps transcript-analysis failures. Unlike turn
	// processing there is no safe default score to fabricate, so this is
	// always surfaced to the caller.
	ErrAnalysisFailed = errors.New("failed to analyze transcript")
)

// retryOnce runs fn and, on transient failure, retries exactly once after
// the backoff. Used on the initialization and analysis paths; the turn path
// never retries, it falls back instead.
func retryOnce[T any](ctx context.Context, backoff time.Duration, fn func(context.Context) (T, error)) (T, error) {
	result, err := fn(ctx)
	if err == nil || ctx.Err() != nil {
		return result, err
	}

	select {
	case <-ctx.Done():
		return result, err
	case <-time.After(backoff):
	}
	return fn(ctx)
}
