// Package client talks to the flashcard service over HTTP. The viewer treats
// the service as opaque: it only knows the two JSON endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"flashdeck/internal/models"
)

const defaultTimeout = 60 * time.Second

// ServiceError is a failure reported by the service itself: a non-2xx status,
// an unreadable body or success=false.
type ServiceError struct {
	Status int
	// Message is the text the service sent in its "error" field, if any.
	Message string
	// Reason is our own diagnosis, for logs.
	Reason string
}

func (e *ServiceError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Reason
	}
	if msg == "" {
		return fmt.Sprintf("flashcard service returned status %d", e.Status)
	}
	return fmt.Sprintf("flashcard service: %s (status %d)", msg, e.Status)
}

type FlashcardClient struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// New builds a client for the service rooted at baseURL. A nil httpClient
// gets one with a 60s timeout.
func New(baseURL string, httpClient *http.Client, log *zap.Logger) *FlashcardClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FlashcardClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		log:     log,
	}
}

type headerTransport struct {
	name, value string
	base        http.RoundTripper
}

func (t headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set(t.name, t.value)
	return t.base.RoundTrip(req)
}

// HTTPClientWithHeader returns an http.Client with the default timeout that
// sets the named header on every request.
func HTTPClientWithHeader(name, value string) *http.Client {
	return &http.Client{
		Timeout:   defaultTimeout,
		Transport: headerTransport{name: name, value: value, base: http.DefaultTransport},
	}
}

// List fetches saved flashcards; an empty topic means all topics.
func (c *FlashcardClient) List(ctx context.Context, topic string) ([]models.Flashcard, error) {
	endpoint := c.baseURL + "/get_flashcards?topic=" + url.QueryEscape(topic)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}

	var body models.GetFlashcardsResponse
	status, err := c.do(req, &body)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &ServiceError{Status: status, Message: body.Error, Reason: "unexpected status"}
	}
	if body.Flashcards == nil {
		return nil, &ServiceError{Status: status, Reason: "response has no flashcards field"}
	}
	return withDefaults(body.Flashcards), nil
}

// Generate asks the service to turn study text into flashcards.
func (c *FlashcardClient) Generate(ctx context.Context, text, topic string) ([]models.Flashcard, error) {
	payload, err := json.Marshal(models.GenerateFlashcardsRequest{Text: text, Topic: topic})
	if err != nil {
		return nil, fmt.Errorf("encode generate request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate_flashcards", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var body models.GenerateFlashcardsResponse
	status, err := c.do(req, &body)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 || !body.Success || body.Flashcards == nil {
		return nil, &ServiceError{Status: status, Message: body.Error, Reason: "Failed to generate flashcards"}
	}
	return withDefaults(body.Flashcards), nil
}

// do sends req and decodes the JSON body into out whatever the status.
func (c *FlashcardClient) do(req *http.Request, out interface{}) (int, error) {
	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("flashcard service responded",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(started)),
	)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response body: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return resp.StatusCode, &ServiceError{Status: resp.StatusCode, Reason: "malformed response body"}
	}
	return resp.StatusCode, nil
}

func withDefaults(cards []models.Flashcard) []models.Flashcard {
	out := make([]models.Flashcard, len(cards))
	for i, c := range cards {
		out[i] = c.WithDefaults()
	}
	return out
}
