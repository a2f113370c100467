package translate

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"doctranslate-backend/internal/llm"
	"doctranslate-backend/internal/shared/telemetry"
	"doctranslate-backend/internal/shared/util"
)

var retryDelay = 300 * time.Millisecond

// retryOnce runs call and repeats it a single time on a transient error,
// provided ctx still has budget left.
func retryOnce(ctx context.Context, call func(context.Context) (string, error)) (string, error) {
	out, err := call(ctx)
	if err == nil || !isTransient(err) {
		return out, err
	}

	telemetry.Warn("translate.retry", map[string]any{
		"attempt": 1,
		"error":   util.SanitizeError(err),
	})
	select {
	case <-time.After(retryDelay):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return call(ctx)
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status 5") || strings.Contains(msg, "server_error") {
		return true
	}
	if strings.Contains(msg, "429") || strings.Contains(msg, "resource_exhausted") {
		return true
	}
	for _, marker := range []string{"timeout", "connection reset", "connection refused", "broken pipe", "eof"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
