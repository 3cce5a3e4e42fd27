// Package genai talks to the Gemini REST API: text completion with
// generateContent and image synthesis with the Imagen predict endpoint.
package genai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shashiranjanraj/propelyu/config"
	"github.com/shashiranjanraj/propelyu/pkg/http"
	"github.com/shashiranjanraj/propelyu/pkg/metrics"
)

// ErrEmptyResult is returned when the API answers without usable content.
var ErrEmptyResult = errors.New("genai: empty result")

// Generator is what the services depend on.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

type Options struct {
	APIKey     string
	BaseURL    string
	TextModel  string
	ImageModel string
	Timeout    time.Duration
	Attempts   int
	Backoff    time.Duration
}

// OptionsFromConfig reads GENAI_* keys.
func OptionsFromConfig() Options {
	return Options{
		APIKey:     config.GenAIAPIKey(),
		BaseURL:    config.GenAIBaseURL(),
		TextModel:  config.GenAITextModel(),
		ImageModel: config.GenAIImageModel(),
		Timeout:    config.GenAITimeout(),
		Attempts:   3,
		Backoff:    time.Second,
	}
}

type Client struct {
	http *http.Client
	opts Options
}

func New(hc *http.Client, opts Options) *Client {
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &Client{http: hc, opts: opts}
}

type part struct {
	Text string `json:"text,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// GenerateText returns the concatenated text parts of the first candidate.
func (c *Client) GenerateText(ctx context.Context, prompt string) (text string, err error) {
	defer metrics.ObserveGenAI("text", time.Now(), &err)

	var out generateResponse
	body := generateRequest{Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}}}
	if err := c.call(ctx, c.opts.TextModel, "generateContent", body, &out); err != nil {
		return "", err
	}
	if len(out.Candidates) == 0 {
		return "", ErrEmptyResult
	}

	var b strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	if b.Len() == 0 {
		return "", ErrEmptyResult
	}
	return b.String(), nil
}

type predictRequest struct {
	Instances  []map[string]string `json:"instances"`
	Parameters map[string]int      `json:"parameters"`
}

type predictResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"predictions"`
}

// GenerateImage returns the decoded bytes of one generated image.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (img []byte, err error) {
	defer metrics.ObserveGenAI("image", time.Now(), &err)

	var out predictResponse
	body := predictRequest{
		Instances:  []map[string]string{{"prompt": prompt}},
		Parameters: map[string]int{"sampleCount": 1},
	}
	if err := c.call(ctx, c.opts.ImageModel, "predict", body, &out); err != nil {
		return nil, err
	}
	if len(out.Predictions) == 0 || out.Predictions[0].BytesBase64Encoded == "" {
		return nil, ErrEmptyResult
	}

	img, err = base64.StdEncoding.DecodeString(out.Predictions[0].BytesBase64Encoded)
	if err != nil {
		return nil, fmt.Errorf("genai: decode image: %w", err)
	}
	return img, nil
}

func (c *Client) call(ctx context.Context, model, method string, body, out interface{}) error {
	if c.opts.APIKey == "" {
		return errors.New("genai: GENAI_API_KEY is not configured")
	}
	url := fmt.Sprintf("%s/models/%s:%s", c.opts.BaseURL, model, method)

	resp, err := c.http.Post(url).
		WithContext(ctx).
		Header("x-goog-api-key", c.opts.APIKey).
		Body(body).
		Timeout(c.opts.Timeout).
		Retry(c.opts.Attempts, c.opts.Backoff).
		Send()
	if err != nil {
		return fmt.Errorf("genai: %s: %w", model, err)
	}
	if err := resp.Throw(); err != nil {
		return fmt.Errorf("genai: %s: %w", model, err)
	}
	if err := resp.JSON(out); err != nil {
		return fmt.Errorf("genai: %s: %w", model, err)
	}
	return nil
}
