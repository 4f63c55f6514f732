package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/bloemp/stockreport/internal/config"
)

// Client resolves part images from the media server.
type Client interface {
	FetchImageDataURI(ctx context.Context, path string) (string, error)
}

// HTTPClient is a resty-backed implementation of Client.
type HTTPClient struct {
	httpClient *resty.Client
}

// NewClient builds a media client using the provided configuration values.
func NewClient(cfg config.MediaConfig) *HTTPClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetTimeout(10 * time.Second)

	return &HTTPClient{httpClient: restyClient}
}

// FetchImageDataURI downloads an image and returns it as a data URI so the
// rendered report is self-contained. An empty path yields an empty URI.
func (c *HTTPClient) FetchImageDataURI(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", nil
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get("/media/" + strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", fmt.Errorf("fetch image %s: %w", path, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("media server returned status %d for %s", resp.StatusCode(), path)
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}

	encoded := base64.StdEncoding.EncodeToString(resp.Body())
	return fmt.Sprintf("data:%s;base64,%s", contentType, encoded), nil
}
