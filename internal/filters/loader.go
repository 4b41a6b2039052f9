package filters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SweetSugar16/AdguardBrowserExtension/internal/types"
)

const defaultMaxListBytes = 20 * 1024 * 1024

// Loader downloads filter list bodies over HTTP.
type Loader struct {
	client   *http.Client
	maxBytes int64
}

func NewLoader(client *http.Client) *Loader {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Loader{client: client, maxBytes: defaultMaxListBytes}
}

// Download fetches a filter list body from the given URL. Only http/https
// URLs are accepted. The body is capped at maxBytes.
func (l *Loader) Download(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", types.NewError(types.CodeValidation, "invalid filter url", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", types.NewError(types.CodeValidation, fmt.Sprintf("unsupported filter url scheme: %q", u.Scheme), nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", types.NewError(types.CodeDownloadFailed, "build filter request", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return "", types.NewError(types.CodeDownloadFailed, "fetch filter list", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", types.NewError(types.CodeDownloadFailed, fmt.Sprintf("fetch filter list: HTTP %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return "", types.NewError(types.CodeDownloadFailed, "read filter list body", err)
	}
	if int64(len(body)) > l.maxBytes {
		return "", types.NewError(types.CodeDownloadFailed, "filter list exceeds size limit", nil)
	}
	return string(body), nil
}
