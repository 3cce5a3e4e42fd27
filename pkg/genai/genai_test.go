package genai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	gohttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shashiranjanraj/propelyu/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h gohttp.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(http.NewClient(srv.Client()), Options{
		APIKey:     "test-key",
		BaseURL:    srv.URL + "/",
		TextModel:  "text-model",
		ImageModel: "image-model",
		Timeout:    time.Second,
		Attempts:   2,
		Backoff:    time.Millisecond,
	})
}

func TestGenerateText(t *testing.T) {
	c := newTestClient(t, func(w gohttp.ResponseWriter, r *gohttp.Request) {
		assert.Equal(t, "/models/text-model:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "write an ad", req.Contents[0].Parts[0].Text)

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Hello "},{"text":"world"}]}}]}`))
	})

	got, err := c.GenerateText(context.Background(), "write an ad")
	require.NoError(t, err)
	assert.Equal(t, "Hello world", got)
}

func TestGenerateTextEmpty(t *testing.T) {
	c := newTestClient(t, func(w gohttp.ResponseWriter, r *gohttp.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})
	_, err := c.GenerateText(context.Background(), "x")
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestGenerateImage(t *testing.T) {
	raw := []byte("\x89PNG fake")
	c := newTestClient(t, func(w gohttp.ResponseWriter, r *gohttp.Request) {
		assert.Equal(t, "/models/image-model:predict", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"predictions": []map[string]string{{
				"bytesBase64Encoded": base64.StdEncoding.EncodeToString(raw),
				"mimeType":           "image/png",
			}},
		})
	})

	got, err := c.GenerateImage(context.Background(), "Sunny flat")
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestAPIErrorSurfaces(t *testing.T) {
	c := newTestClient(t, func(w gohttp.ResponseWriter, r *gohttp.Request) {
		w.WriteHeader(gohttp.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	})
	_, err := c.GenerateText(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestMissingAPIKey(t *testing.T) {
	c := New(http.NewClient(nil), Options{})
	_, err := c.GenerateImage(context.Background(), "x")
	assert.Error(t, err)
}
