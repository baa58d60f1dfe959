package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedRecord       = errors.New("malformed record")
	ErrEmbeddingUnavailable  = errors.New("embedding unavailable")
	ErrGenerationUnavailable = errors.New("generation unavailable")
	ErrBudgetTooSmall        = errors.New("context budget too small")
	ErrInvalidInput          = errors.New("invalid input")
	ErrConversationNotFound  = errors.New("conversation not found")
	ErrTemporary             = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
