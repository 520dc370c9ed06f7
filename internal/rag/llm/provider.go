package llm

import "context"

// Provider generates a streamed completion for one prompt. Implementations
// return as soon as the stream is open; tokens arrive on the TokenStream.
type Provider interface {
	StreamComplete(ctx context.Context, system, user string, temperature float64) (*TokenStream, error)
}
