package channels

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
)

// StatusError is an HTTP failure from a carrier API. Separating the status
// code out lets the retry policy treat 5xx and 429 as transient while giving
// up immediately on 4xx.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("carrier returned status %d: %s", e.Code, e.Body)
}

// isTransient reports whether a delivery error is worth retrying: network
// timeouts, connection resets and refusals, truncated responses, and
// server-side HTTP failures.
func isTransient(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= 500 || statusErr.Code == 429
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EPIPE) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	// Truncated body reads from the carrier.
	if err != nil && strings.Contains(err.Error(), "unexpected EOF") {
		return true
	}
	return false
}

// RetryPolicy bounds the outbound send retry loop.
type RetryPolicy struct {
	Attempts     uint
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultRetryPolicy is three tries with exponential backoff.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, InitialDelay: 500 * time.Millisecond, MaxDelay: 4 * time.Second}

// AttemptObserver is notified after every individual send attempt. attempt
// is 1-based; err is nil on success.
type AttemptObserver func(channel, recipient string, attempt int, err error)

// SendWithRetry delivers one reply through the client, retrying transient
// failures with exponential backoff. Permanent failures abort immediately.
// The observer, when non-nil, sees every attempt including the final one.
func SendWithRetry(ctx context.Context, client CarrierClient, reply OutgoingReply, policy RetryPolicy, observer AttemptObserver, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy.Attempts == 0 {
		policy = DefaultRetryPolicy
	}

	attempt := 0
	err := retry.Do(
		func() error {
			attempt++
			sendErr := client.Send(ctx, reply)
			if observer != nil {
				observer(client.Channel(), reply.Recipient, attempt, sendErr)
			}
			return sendErr
		},
		retry.Attempts(policy.Attempts),
		retry.Delay(policy.InitialDelay),
		retry.MaxDelay(policy.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("delivery attempt failed, retrying",
				zap.String("channel", client.Channel()),
				zap.Uint("attempt", n+1),
				zap.Error(err))
		}),
	)
	if err != nil {
		return fmt.Errorf("delivering to %s via %s: %w", reply.Recipient, client.Channel(), err)
	}
	return nil
}
