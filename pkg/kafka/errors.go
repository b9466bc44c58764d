package kafka

import (
	"errors"
	"strings"
)

var (
	ErrProducerClosed = errors.New("kafka producer is closed")
	ErrConsumerClosed = errors.New("kafka consumer is closed")

	// Booking events are keyed by slot id; a keyless or empty message
	// would break per-slot ordering, so both are rejected up front.
	ErrEmptyKey   = errors.New("message key cannot be empty")
	ErrEmptyValue = errors.New("message value cannot be empty")
)

// retryablePatterns are broker and network failures worth another
// delivery attempt. Anything else (bad payload, unknown topic) goes
// straight to the dead letter queue.
var retryablePatterns = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"no such host",
	"network is unreachable",
	"timeout",
	"deadline exceeded",
	"temporary failure",
	"leader not available",
	"rebalance in progress",
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range retryablePatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// ShouldRetry reports whether a failed delivery attempt should be
// repeated given how many attempts were already made.
func ShouldRetry(err error, attempts, maxAttempts int) bool {
	if attempts >= maxAttempts {
		return false
	}
	return isRetryable(err)
}
