// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package tagging

import (
	"context"
	"log/slog"
	"time"
)

// SleepFunc waits for the given duration, honoring context cancellation.
// Tests inject a recording implementation to simulate backoff without
// wall-clock delay.
type SleepFunc func(ctx context.Context, d time.Duration) error

// sleepWithContext is the default SleepFunc.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryWithBackoff retries an operation with exponential backoff.
// maxAttempts: maximum number of attempts (must be > 0)
// baseDelay: base delay between retries (doubles on each retry)
// maxDelay: cap on the computed delay (<= 0 means uncapped)
// sleep: wait primitive between attempts (nil uses a context-aware timer)
// Returns the error from the last attempt if all attempts fail.
func RetryWithBackoff(ctx context.Context, operation func() error, maxAttempts int, baseDelay, maxDelay time.Duration, sleep SleepFunc) error {
	if maxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}
	if sleep == nil {
		sleep = sleepWithContext
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		// Check context before attempting
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = operation()
		if lastErr == nil {
			if attempt > 1 {
				slog.Debug("operation succeeded after retry", "attempt", attempt)
			}
			return nil // Success
		}

		slog.Debug("operation failed, will retry", "attempt", attempt, "maxAttempts", maxAttempts, "error", lastErr)

		// Don't sleep after the last attempt
		if attempt == maxAttempts {
			break
		}

		// Calculate exponential backoff: baseDelay * 2^(attempt-1), capped
		delay := baseDelay
		for i := 1; i < attempt; i++ {
			delay *= 2
			if maxDelay > 0 && delay >= maxDelay {
				delay = maxDelay
				break
			}
		}
		if maxDelay > 0 && delay > maxDelay {
			delay = maxDelay
		}

		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}

	return lastErr
}
