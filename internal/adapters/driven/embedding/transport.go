package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxErrorBody bounds how much of a failed response is kept for the error.
const maxErrorBody = 4 << 10

// Transport sends JSON requests to a remote embedding API.
type Transport struct {
	provider string
	baseURL  string
	header   http.Header
	client   *http.Client
}

// NewTransport creates a transport for baseURL. Trailing slashes are dropped.
func NewTransport(provider, baseURL string, timeout time.Duration) *Transport {
	return &Transport{
		provider: provider,
		baseURL:  strings.TrimRight(baseURL, "/"),
		header:   make(http.Header),
		client:   &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the API root requests are sent to.
func (t *Transport) BaseURL() string {
	return t.baseURL
}

// SetHeader adds a header sent with every request.
func (t *Transport) SetHeader(key, value string) {
	t.header.Set(key, value)
}

// Do sends in as the JSON body (none when nil) and decodes a 200 reply
// into out, which may be nil. Network failures and other statuses wrap
// domain.ErrEmbeddingUnavailable; op names the call in the error.
func (t *Transport) Do(ctx context.Context, op, method, path string, in, out any) error {
	var reader io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", t.provider, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: create %s request: %w", t.provider, op, err)
	}
	for k, v := range t.header {
		req.Header[k] = v
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return Unavailable(t.provider, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Unavailable(t.provider, op, fmt.Errorf("status %d: %s", resp.StatusCode, apiMessage(raw)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return Unavailable(t.provider, "decode "+op+" response", err)
	}
	return nil
}

// apiMessage pulls the message out of the error bodies Ollama and OpenAI
// send, falling back to the raw text.
func apiMessage(raw []byte) string {
	var flat struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &flat) == nil && flat.Error != "" {
		return flat.Error
	}
	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &nested) == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}
	return strings.TrimSpace(string(raw))
}
