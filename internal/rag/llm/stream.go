package llm

import "sync"

// TokenStream carries completion tokens from a provider to a consumer.
// The producer calls Push for each token and Close exactly once when the
// stream ends; a non-nil close error marks the completion as truncated.
type TokenStream struct {
	tokens chan string

	mu  sync.Mutex
	err error
}

func NewTokenStream() *TokenStream {
	return &TokenStream{tokens: make(chan string, 16)}
}

// Tokens is the receive side. It is closed when the provider finishes,
// successfully or not; check Err afterwards.
func (s *TokenStream) Tokens() <-chan string {
	return s.tokens
}

func (s *TokenStream) Push(token string) {
	s.tokens <- token
}

func (s *TokenStream) Close(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	close(s.tokens)
}

// Err reports why the stream ended. Only meaningful after Tokens is drained.
func (s *TokenStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
