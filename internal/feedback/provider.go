// Package feedback produces coaching text for a scored session, from an LLM or a rule-based fallback.
package feedback

import (
	"context"
	"errors"
	"fmt"
)

// ErrProvider is wrapped by every ProviderError.
var ErrProvider = errors.New("feedback provider failed")

// ProviderError describes a failed completion call.
type ProviderError struct {
	StatusCode int // 0 for transport failures
	Reason     string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("feedback provider: status %d: %s", e.StatusCode, e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("feedback provider: %s: %v", e.Reason, e.Err)
	}
	return "feedback provider: " + e.Reason
}

// Is lets errors.Is(err, ErrProvider) match.
func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

func (e *ProviderError) Unwrap() error { return e.Err }

// Provider completes a system+user prompt pair.
type Provider interface {
	Complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error)
}
