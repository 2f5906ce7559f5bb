// Package inference talks to the remote credibility-inference collaborator.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/newsguardai/newsguard/internal/models"
	"github.com/newsguardai/newsguard/internal/normalize"
)

// ErrUnavailable marks timeouts, network failures, and non-2xx responses.
// Callers decide the recovery: heuristic fallback for text, job error for
// files.
var ErrUnavailable = errors.New("inference service unavailable")

// Client is the boundary with the remote inference collaborator. Responses
// are returned raw; the normalizer owns their interpretation.
type Client interface {
	PredictText(ctx context.Context, text string, model models.Model, lang models.Language) (normalize.Payload, error)
	PredictFile(ctx context.Context, fileName string, data []byte, model models.Model, lang models.Language) (normalize.Payload, error)
	Name() string
}

// HTTPClient calls the service's POST /predict and POST /predict_file
// endpoints.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates a client for the service at baseURL. Deadlines come
// from the caller's context.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// Name returns the provider name.
func (c *HTTPClient) Name() string {
	return "http"
}

// PredictText submits text for analysis.
func (c *HTTPClient) PredictText(ctx context.Context, text string, model models.Model, lang models.Language) (normalize.Payload, error) {
	body, err := json.Marshal(map[string]string{
		"text":     text,
		"model":    string(model),
		"language": string(lang),
	})
	if err != nil {
		return normalize.Payload{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return normalize.Payload{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// PredictFile submits a file as multipart form data.
func (c *HTTPClient) PredictFile(ctx context.Context, fileName string, data []byte, model models.Model, lang models.Language) (normalize.Payload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return normalize.Payload{}, err
	}
	if _, err := part.Write(data); err != nil {
		return normalize.Payload{}, err
	}
	if err := w.WriteField("model", string(model)); err != nil {
		return normalize.Payload{}, err
	}
	if err := w.WriteField("language", string(lang)); err != nil {
		return normalize.Payload{}, err
	}
	if err := w.Close(); err != nil {
		return normalize.Payload{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict_file", &buf)
	if err != nil {
		return normalize.Payload{}, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.do(req)
}

func (c *HTTPClient) do(req *http.Request) (normalize.Payload, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return normalize.Payload{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return normalize.Payload{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var payload normalize.Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		// A 2xx with an unreadable body still counts as unavailable; there
		// is nothing for the normalizer to salvage.
		return normalize.Payload{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return payload, nil
}
