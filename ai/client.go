package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

var (
	// ErrModelInvocation covers transport and service failures, including
	// timeouts and non-200 responses.
	ErrModelInvocation = errors.New("model invocation failed")
	// ErrEmptyReply means the model response carried no text content part.
	ErrEmptyReply = errors.New("model reply contained no text")
)

const (
	defaultAPIURL  = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.0-flash"
	requestTimeout = 2 * time.Minute
	maxOutputToks  = 8192
	temperature    = 0.7
)

// Message is one turn sent to the model.
type Message struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Part is a single text content part.
type Part struct {
	Text string `json:"text"`
}

// Invoker is the single-call contract the generation handlers depend on.
type Invoker interface {
	Invoke(ctx context.Context, system string, msg Message) (string, error)
}

// Client calls the generateContent endpoint of a Gemini-style API.
type Client struct {
	apiURL string
	apiKey string
	model  string
	http   *http.Client
}

func NewClient() *Client {
	apiURL := os.Getenv("AI_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	model := os.Getenv("AI_MODEL")
	if model == "" {
		model = defaultModel
	}
	return &Client{
		apiURL: strings.TrimRight(apiURL, "/"),
		apiKey: os.Getenv("AI_API_KEY"),
		model:  model,
		http:   &http.Client{Timeout: requestTimeout},
	}
}

type generateRequest struct {
	SystemInstruction struct {
		Parts []Part `json:"parts"`
	} `json:"system_instruction"`
	Contents         []Message        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []Part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Invoke sends one non-streaming request and returns the raw text reply,
// with all text parts of the first candidate joined together.
func (c *Client) Invoke(ctx context.Context, system string, msg Message) (string, error) {
	reqBody := generateRequest{
		Contents: []Message{msg},
		GenerationConfig: generationConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxOutputToks,
		},
	}
	reqBody.SystemInstruction.Parts = []Part{{Text: system}}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrModelInvocation, err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.apiURL, c.model)

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrModelInvocation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrModelInvocation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrModelInvocation, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %.200s", ErrModelInvocation, resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrModelInvocation, err)
	}

	if len(genResp.Candidates) == 0 {
		return "", ErrEmptyReply
	}

	var b strings.Builder
	for _, part := range genResp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	if b.Len() == 0 {
		return "", ErrEmptyReply
	}

	return b.String(), nil
}
