// ABOUTME: Retry utilities for embedding and chat API calls
// ABOUTME: Provides exponential backoff with jitter for the OpenAI client
package util

import (
	"math/rand/v2"
	"time"
)

// maxBackoff caps any single wait between retries
const maxBackoff = 30 * time.Second

// CalculateBackoff returns the wait before the given retry attempt:
// baseDelay doubled per attempt, capped, with up to ±25% random jitter.
// Attempt 0 (the initial call) waits nothing.
func CalculateBackoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	// Keep the shift well inside int64 range
	if attempt > 30 {
		attempt = 30
	}

	backoff := baseDelay * time.Duration(1<<uint(attempt))
	if backoff > maxBackoff || backoff <= 0 {
		backoff = maxBackoff
	}

	jitter := time.Duration(rand.Int64N(int64(backoff)/2)) - backoff/4
	return backoff + jitter
}
