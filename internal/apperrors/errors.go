package apperrors

import "fmt"

// The three failure classes a query request can surface. Each wraps the
// underlying cause so the HTTP layer can map them to distinct status codes
// without losing the original message.

type TranslationError struct {
	Cause error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("pipeline translation failed: %v", e.Cause)
}

func (e *TranslationError) Unwrap() error { return e.Cause }

func NewTranslationError(cause error) *TranslationError {
	return &TranslationError{Cause: cause}
}

type ExecutionError struct {
	Cause error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("pipeline execution failed: %v", e.Cause)
}

func (e *ExecutionError) Unwrap() error { return e.Cause }

func NewExecutionError(cause error) *ExecutionError {
	return &ExecutionError{Cause: cause}
}

type SummarizationError struct {
	Cause error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("result summarization failed: %v", e.Cause)
}

func (e *SummarizationError) Unwrap() error { return e.Cause }

func NewSummarizationError(cause error) *SummarizationError {
	return &SummarizationError{Cause: cause}
}
