package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jonwraymond/assetops/asset"
)

// DefaultMaxBytes caps the size of a remote asset.
const DefaultMaxBytes int64 = 10 << 20

// DefaultScheme is prefixed to protocol-relative identifiers ("//cdn/x.js").
const DefaultScheme = "https:"

// DefaultUserAgent is sent with remote reads unless Headers overrides it.
const DefaultUserAgent = "assetops/1.0"

// RemoteConfig configures the remote reader.
type RemoteConfig struct {
	// Timeout bounds each read, retries included.
	// Default: 2 seconds
	Timeout time.Duration

	// Retry configures retries of transient failures.
	Retry RetryConfig

	// Headers are added to every request.
	Headers map[string]string

	// MaxBytes is the largest body accepted.
	// Default: 10 MiB
	MaxBytes int64

	// Client is the HTTP client to use.
	// Default: a client with no timeout of its own
	Client *http.Client
}

// RemoteReader fetches assets over HTTP.
type RemoteReader struct {
	config  RemoteConfig
	retrier *retrier
}

// NewRemoteReader creates a remote reader.
func NewRemoteReader(config RemoteConfig) *RemoteReader {
	if config.Timeout <= 0 {
		config.Timeout = asset.DefaultReadTimeout
	}
	if config.MaxBytes <= 0 {
		config.MaxBytes = DefaultMaxBytes
	}
	if config.Client == nil {
		config.Client = &http.Client{}
	}
	return &RemoteReader{
		config:  config,
		retrier: newRetrier(config.Retry),
	}
}

// Config returns the reader configuration.
func (r *RemoteReader) Config() RemoteConfig {
	return r.config
}

// Read fetches ref.ID under the configured timeout. Protocol-relative
// identifiers are fetched over https.
func (r *RemoteReader) Read(ctx context.Context, ref asset.Reference) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	url := ref.ID
	if strings.HasPrefix(url, "//") {
		url = DefaultScheme + url
	}

	var body []byte
	err := r.retrier.do(ctx, func(ctx context.Context) error {
		b, err := r.fetch(ctx, url)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (r *RemoteReader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, newReadError(FetchError, url, err)
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	for k, v := range r.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := r.config.Client.Do(req)
	if err != nil {
		return nil, classify(ctx, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4<<10)
		return nil, &ReadError{
			Kind:   FetchError,
			ID:     url,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, r.config.MaxBytes+1))
	if err != nil {
		return nil, classify(ctx, url, err)
	}
	if int64(len(data)) > r.config.MaxBytes {
		return nil, newReadError(FetchError, url, fmt.Errorf("body exceeds %d bytes", r.config.MaxBytes))
	}
	return data, nil
}

func classify(ctx context.Context, url string, err error) *ReadError {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return newReadError(Timeout, url, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newReadError(Timeout, url, err)
	}
	return newReadError(FetchError, url, err)
}
