package common

import "context"

// WithRetry runs operation until it succeeds, returns an error retryable
// rejects, maxAttempts is reached, or ctx is done. attempt starts at 1.
func WithRetry(ctx context.Context, maxAttempts int, retryable func(error) bool, operation func(attempt int) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = operation(attempt); err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}
