// Package media holds the port for the external image host plus a plain
// HTTP implementation. Provider SDK integration is out of scope; the host
// is treated as an opaque endpoint that accepts an image payload and
// answers with a durable URL.
package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var ErrUploadFailed = errors.New("image upload failed")

// Uploader sends an image payload (typically a data URL or base64 blob)
// to the external image host and returns the hosted URL.
type Uploader interface {
	Upload(ctx context.Context, payload string) (string, error)
}

// HTTPUploader posts the payload to a configured endpoint. The endpoint is
// expected to answer 2xx with a JSON body carrying the hosted URL.
type HTTPUploader struct {
	endpoint string
	client   *http.Client
}

// NewHTTPUploader creates an uploader bound to the given endpoint.
func NewHTTPUploader(endpoint string) *HTTPUploader {
	return &HTTPUploader{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type uploadRequest struct {
	File string `json:"file"`
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
}

// Upload sends the payload and returns the hosted URL.
func (u *HTTPUploader) Upload(ctx context.Context, payload string) (string, error) {
	if u.endpoint == "" {
		return "", fmt.Errorf("%w: no upload endpoint configured", ErrUploadFailed)
	}
	if payload == "" {
		return "", fmt.Errorf("%w: empty payload", ErrUploadFailed)
	}

	body, err := json.Marshal(uploadRequest{File: payload})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, strings.NewReader(string(body)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: host answered %d", ErrUploadFailed, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	var decoded uploadResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if decoded.SecureURL != "" {
		return decoded.SecureURL, nil
	}
	if decoded.URL != "" {
		return decoded.URL, nil
	}
	return "", fmt.Errorf("%w: host returned no URL", ErrUploadFailed)
}

var _ Uploader = (*HTTPUploader)(nil)
