package media

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "data:image/png;base64,AAA", req["file"])

		json.NewEncoder(w).Encode(map[string]string{
			"secure_url": "https://img.example.com/pic.png",
		})
	}))
	defer server.Close()

	uploader := NewHTTPUploader(server.URL)
	url, err := uploader.Upload(context.Background(), "data:image/png;base64,AAA")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/pic.png", url)
}

func TestUpload_FallsBackToPlainURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"url": "http://img.example.com/pic.png"})
	}))
	defer server.Close()

	uploader := NewHTTPUploader(server.URL)
	url, err := uploader.Upload(context.Background(), "payload")
	require.NoError(t, err)
	assert.Equal(t, "http://img.example.com/pic.png", url)
}

func TestUpload_HostError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	uploader := NewHTTPUploader(server.URL)
	url, err := uploader.Upload(context.Background(), "payload")
	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.Empty(t, url)
}

func TestUpload_NoURLInResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	uploader := NewHTTPUploader(server.URL)
	_, err := uploader.Upload(context.Background(), "payload")
	assert.ErrorIs(t, err, ErrUploadFailed)
}

func TestUpload_Misconfigured(t *testing.T) {
	_, err := NewHTTPUploader("").Upload(context.Background(), "payload")
	assert.ErrorIs(t, err, ErrUploadFailed)

	_, err = NewHTTPUploader("http://localhost:1").Upload(context.Background(), "")
	assert.ErrorIs(t, err, ErrUploadFailed)
}
