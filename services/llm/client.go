package llm

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// TokenStream is a lazy, single-pass sequence of generated text fragments.
// A non-nil error ends the sequence; it is only produced for connection-level
// failures, never for transport framing noise.
type TokenStream = iter.Seq2[string, error]

// Streamer produces an unbounded token stream for a prompt. Each call opens a
// new remote stream; a stream is not restartable.
type Streamer interface {
	Stream(ctx context.Context, prompt string) TokenStream
}

// Completer runs a single non-streaming completion.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// errStopped aborts the remote stream when the consumer stops ranging early,
// so the underlying connection is closed rather than drained.
var errStopped = errors.New("token stream consumer stopped")

type Client struct {
	model llms.Model
}

func NewClient(apiKey, model string) (*Client, error) {
	llm, err := openai.New(
		openai.WithModel(model),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	return &Client{model: llm}, nil
}

// Stream opens a streaming completion and yields each delta as it arrives.
// Cancelling ctx or stopping the iteration closes the remote stream.
func (c *Client) Stream(ctx context.Context, prompt string) TokenStream {
	return func(yield func(string, error) bool) {
		stopped := false

		_, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt,
			llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
				if len(chunk) == 0 {
					return nil
				}
				if !yield(string(chunk), nil) {
					stopped = true
					return errStopped
				}
				return nil
			}),
		)
		if err != nil && !stopped {
			log.Printf("[ERROR] Text generation stream failed: %v", err)
			yield("", fmt.Errorf("text generation stream: %w", err))
		}
	}
}

// Complete runs one blocking completion and returns the full text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	response, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt)
	if err != nil {
		return "", fmt.Errorf("text generation: %w", err)
	}
	return response, nil
}
