// Package llm talks to an OpenAI-compatible chat-completions endpoint (Groq
// by default) and builds the prompts the studio sends to it.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const chatCompletionsPath = "/chat/completions"

// supportedModels mirrors the models offered on the settings screen.
var supportedModels = []string{
	"llama-3.3-70b-versatile",
	"llama-3.1-70b-versatile",
	"mixtral-8x7b-32768",
	"gemma2-9b-it",
}

// Options configures a Client.
type Options struct {
	BaseURL      string
	APIKey       string
	Model        string
	Timeout      time.Duration // one generate or stream call
	CheckTimeout time.Duration // CheckConnection
}

// Message is one chat turn sent to the endpoint.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client calls the completion endpoint. It is safe for concurrent use.
type Client struct {
	baseURL      string
	apiKey       string
	model        string
	timeout      time.Duration
	checkTimeout time.Duration
	httpClient   *http.Client
}

// New returns a Client with a pooled transport.
func New(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("llm: base url required")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = supportedModels[0]
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	check := opts.CheckTimeout
	if check <= 0 {
		check = 10 * time.Second
	}

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		baseURL:      baseURL,
		apiKey:       strings.TrimSpace(opts.APIKey),
		model:        model,
		timeout:      timeout,
		checkTimeout: check,
		httpClient:   &http.Client{Transport: tr},
	}, nil
}

// NewWithHTTPClient is New with a caller-supplied http.Client, used by tests
// to swap in a fake RoundTripper.
func NewWithHTTPClient(opts Options, httpClient *http.Client) (*Client, error) {
	c, err := New(opts)
	if err != nil {
		return nil, err
	}
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c, nil
}

// Model returns the model id requests are sent with.
func (c *Client) Model() string { return c.model }

// Models lists the model ids the studio offers.
func (c *Client) Models() []string { return append([]string(nil), supportedModels...) }

type chatRequest struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	Stream    bool      `json:"stream,omitempty"`
	MaxTokens int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type streamFrame struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error any `json:"error,omitempty"`
}

// CheckConnection reports whether the endpoint accepts the configured
// credential. With no credential it returns false without a network call.
func (c *Client) CheckConnection(ctx context.Context) bool {
	if c.apiKey == "" {
		return false
	}
	ctx, span := otel.Tracer("llm").Start(ctx, "llm.CheckConnection")
	defer span.End()

	start := time.Now()
	body := chatRequest{
		Model:     c.model,
		Messages:  []Message{{Role: "user", Content: "test"}},
		MaxTokens: 5,
	}
	err := c.doJSON(ctx, c.checkTimeout, body, nil)
	observe("check", start, err)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return false
	}
	return true
}

// Generate asks for a single, non-streamed completion of prompt. An empty
// systemPrompt sends the prompt alone.
func (c *Client) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	return c.Chat(ctx, buildMessages(prompt, systemPrompt))
}

// Chat completes an explicit message history.
func (c *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	ctx, span := otel.Tracer("llm").Start(ctx, "llm.Chat")
	span.SetAttributes(attribute.String("llm.model", c.model), attribute.Int("llm.messages", len(messages)))
	defer span.End()

	start := time.Now()
	var resp chatResponse
	err := c.doJSON(ctx, c.timeout, chatRequest{Model: c.model, Messages: messages}, &resp)
	if err == nil {
		if len(resp.Choices) == 0 {
			err = fmt.Errorf("%w: no choices in response", ErrUpstream)
		}
	}
	observe("generate", start, err)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateStream is the streaming form of Generate.
func (c *Client) GenerateStream(ctx context.Context, prompt, systemPrompt string) iter.Seq[Chunk] {
	return c.ChatStream(ctx, buildMessages(prompt, systemPrompt))
}

// ChatStream streams a completion of messages. Nothing is sent until the
// sequence is ranged over, and it can be consumed once: ranging it again
// yields a single Failure(ErrStreamConsumed) without contacting the
// endpoint. Breaking out of the loop cancels the request and releases the
// connection. The configured timeout bounds the whole stream, not each chunk.
func (c *Client) ChatStream(ctx context.Context, messages []Message) iter.Seq[Chunk] {
	var used atomic.Bool
	return func(yield func(Chunk) bool) {
		if used.Swap(true) {
			yield(Failure(ErrStreamConsumed))
			return
		}
		ctx, span := otel.Tracer("llm").Start(ctx, "llm.ChatStream")
		span.SetAttributes(attribute.String("llm.model", c.model))
		defer span.End()

		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		start := time.Now()
		fail := func(err error) {
			observe("stream", start, err)
			span.SetStatus(codes.Error, err.Error())
			yield(Failure(err))
		}

		resp, err := c.post(ctx, chatRequest{Model: c.model, Messages: messages, Stream: true}, "text/event-stream")
		if err != nil {
			fail(err)
			return
		}
		defer resp.Body.Close()

		stopped := false
		chunks := 0
		err = readDataLines(resp.Body, func(data string) error {
			if data == doneSentinel {
				return errStopStream
			}
			var frame streamFrame
			if json.Unmarshal([]byte(data), &frame) != nil {
				return nil // malformed frame
			}
			if frame.Error != nil {
				b, _ := json.Marshal(frame.Error)
				return fmt.Errorf("%w: %s", ErrUpstream, b)
			}
			// only the first choice is relayed; n > 1 would interleave texts
			if len(frame.Choices) == 0 || frame.Choices[0].Delta.Content == "" {
				return nil
			}
			chunks++
			llmChunks.Inc()
			if !yield(Data(frame.Choices[0].Delta.Content)) {
				stopped = true
				return errStopStream
			}
			return nil
		})
		span.SetAttributes(attribute.Int("llm.chunks", chunks))
		if stopped {
			observe("stream", start, nil)
			return
		}
		if err != nil {
			fail(transportErr(err))
			return
		}
		observe("stream", start, nil)
		yield(End())
	}
}

func buildMessages(prompt, systemPrompt string) []Message {
	msgs := make([]Message, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		msgs = append(msgs, Message{Role: "system", Content: systemPrompt})
	}
	return append(msgs, Message{Role: "user", Content: prompt})
}

func (c *Client) setHeaders(req *http.Request, accept string) {
	req.Header.Set("Content-Type", "application/json")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// post sends body and returns the response when the status is 2xx. The
// caller owns resp.Body.
func (c *Client) post(ctx context.Context, body any, accept string) (*http.Response, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatCompletionsPath, &buf)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req, accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportErr(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, nil
}

func (c *Client) doJSON(ctx context.Context, timeout time.Duration, body any, out any) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	resp, err := c.post(ctx, body, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	return nil
}
