package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/splice/pkg/buildinfo"
	"github.com/matzehuels/splice/pkg/errors"
	"github.com/matzehuels/splice/pkg/graphdoc"
)

// Fetch defaults.
const (
	DefaultAttempts = 3
	DefaultDelay    = 500 * time.Millisecond
	DefaultMaxBytes = 8 << 20
	DefaultTimeout  = 30 * time.Second
)

// IsURL reports whether s is an http or https URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Fetcher downloads documents.
type Fetcher struct {
	Client   *http.Client
	Attempts int
	Delay    time.Duration
	MaxBytes int64
}

// Fetch downloads the document at url with the default settings. A nil client
// means a client with [DefaultTimeout].
func Fetch(ctx context.Context, client *http.Client, url string) (*graphdoc.Document, error) {
	return (&Fetcher{Client: client}).Fetch(ctx, url)
}

// Fetch downloads and decodes the document at url.
//
// A 404 carries [errors.ErrCodeNotFound], other 4xx responses
// [errors.ErrCodeInvalidInput]. Bodies over MaxBytes and undecodable bodies
// carry [errors.ErrCodeDocumentParse].
func (f *Fetcher) Fetch(ctx context.Context, url string) (*graphdoc.Document, error) {
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	attempts, delay, limit := f.Attempts, f.Delay, f.MaxBytes
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	if limit <= 0 {
		limit = DefaultMaxBytes
	}

	var body []byte
	err := Retry(ctx, attempts, delay, func() error {
		var err error
		body, err = get(ctx, client, url, limit)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.GetCode(err) == "" {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "fetch %s", url)
		}
		return nil, err
	}
	return graphdoc.Unmarshal(body)
}

func get(ctx context.Context, client *http.Client, url string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid url %q", url)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "splice/"+buildinfo.Version)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &RetryableError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.New(errors.ErrCodeNotFound, "%s: %s", url, resp.Status)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &RetryableError{Err: fmt.Errorf("%s: %s", url, resp.Status)}
	case resp.StatusCode >= 400:
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s: %s", url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, &RetryableError{Err: err}
	}
	if int64(len(data)) > limit {
		return nil, errors.New(errors.ErrCodeDocumentParse, "%s: document larger than %d bytes", url, limit)
	}
	return data, nil
}
