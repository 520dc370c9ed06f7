package objstore

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/paperchat/paperchat/internal/config"
	"github.com/paperchat/paperchat/internal/customHttpClient"
	"github.com/paperchat/paperchat/pkg/logx"
)

// Fetcher retrieves the raw bytes of an uploaded document. The storage
// provider is opaque: a document is addressed either by its public URL or by
// its storage key, depending on the implementation.
type Fetcher interface {
	Fetch(ctx context.Context, doc Ref) ([]byte, error)
}

// Ref addresses one stored object.
type Ref struct {
	Key string
	URL string
}

type HTTPFetcher struct {
	client *http.Client
	logger *logx.Logger
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client: customHttpClient.GetPooledClient(),
		logger: logx.NewLogger("HTTP Fetcher"),
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, doc Ref) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, doc.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", doc.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", doc.URL, resp.StatusCode)
	}

	limited := io.LimitReader(resp.Body, config.MaxDocBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", doc.URL, err)
	}
	if int64(len(data)) > config.MaxDocBytes {
		return nil, fmt.Errorf("object too large: more than %d bytes", int64(config.MaxDocBytes))
	}

	f.logger.Debug("fetched document", "url", doc.URL, "bytes", len(data))
	return data, nil
}
