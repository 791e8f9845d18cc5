package orchestration

import "fmt"

// TransportError wraps a failure of the media-stream connection itself.
// It is the only error kind that terminates a call.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProviderError wraps a failure of an external speech or reasoning
// provider. Provider errors are converted to safe defaults or the apology
// utterance, never propagated to the caller.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
