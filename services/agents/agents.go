package agents

import (
	"context"

	"codexp/models"
	"codexp/services/llm"
)

// Agent is the uniform capability shared by every tutoring strategy: given
// the resolved request context, produce a lazy stream of text fragments.
type Agent interface {
	Stream(ctx context.Context, req *models.AgentRequest) llm.TokenStream
}

// textStream yields the whole text as a single fragment.
func textStream(text string) llm.TokenStream {
	return func(yield func(string, error) bool) {
		yield(text, nil)
	}
}

// charStream yields the text character by character, so a precomputed result
// composes uniformly with true LLM streams at the merge point.
func charStream(text string) llm.TokenStream {
	return func(yield func(string, error) bool) {
		for _, r := range text {
			if !yield(string(r), nil) {
				return
			}
		}
	}
}

// errorStream yields a single classified error and ends.
func errorStream(err error) llm.TokenStream {
	return func(yield func(string, error) bool) {
		yield("", err)
	}
}
