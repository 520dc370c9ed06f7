package customHttpClient

import (
	"net/http"
	"sync"

	"github.com/paperchat/paperchat/internal/config"
)

var (
	once   sync.Once
	client *http.Client
)

// GetPooledClient returns the shared outbound client. Document fetches hit
// the same storage host over and over, keep-alive pooling saves the
// handshake each time.
func GetPooledClient() *http.Client {
	once.Do(func() {
		client = &http.Client{
			Timeout: config.FetchTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        config.MaxIdleConns,
				MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
				IdleConnTimeout:     config.IdleConnTimeout,
			},
		}
	})
	return client
}
