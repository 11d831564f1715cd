package domain

import (
	"errors"
	"fmt"
)

var (
	// Pipeline error taxonomy. Components raise one kind each and let it
	// propagate; only the quotation extractors substitute defaults.
	ErrExtraction  = errors.New("document extraction failed")
	ErrRecognition = errors.New("text recognition failed")
	ErrIndex       = errors.New("vector index failure")
	ErrRetrieval   = errors.New("retrieval failure")
	ErrGeneration  = errors.New("generation failure")
	ErrValidation  = errors.New("stage validation failed")

	ErrReportNotFound = errors.New("report not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrTemporary      = errors.New("temporary failure")
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
