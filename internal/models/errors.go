// ABOUTME: Error taxonomy shared by every lifeline component
// ABOUTME: Sentinels are matched with errors.Is after fmt.Errorf wrapping
package models

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrValidation marks bad caller input (empty text, identical pair ids)
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks an unknown provider or a missing credential
	ErrConfiguration = errors.New("configuration error")
	// ErrProvider marks a network or provider failure after retries
	ErrProvider = errors.New("provider error")
	// ErrProviderTimeout is a provider failure caused by a timeout
	ErrProviderTimeout = fmt.Errorf("%w: timeout", ErrProvider)
	// ErrParse marks a malformed provider response
	ErrParse = errors.New("parse error")
	// ErrNotFound marks a missing embedding or event
	ErrNotFound = errors.New("not found")
	// ErrDimensionMismatch marks two vectors that cannot be compared
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// ProviderFailure wraps err as ErrProviderTimeout or ErrProvider.
// Errors already classified by the taxonomy pass through unchanged.
func ProviderFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrProvider) || errors.Is(err, ErrParse) || errors.Is(err, ErrConfiguration) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", ErrProviderTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrProvider, op, err)
}
