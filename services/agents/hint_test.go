package agents

import (
	"context"
	"strings"
	"testing"

	"codexp/models"
	"codexp/services/llm"
)

type stubStreamer struct {
	fragments []string
	prompts   []string
}

func (s *stubStreamer) Stream(ctx context.Context, prompt string) llm.TokenStream {
	s.prompts = append(s.prompts, prompt)
	return func(yield func(string, error) bool) {
		for _, fragment := range s.fragments {
			if !yield(fragment, nil) {
				return
			}
		}
	}
}

func TestHintAgentPromptSelection(t *testing.T) {
	req := &models.AgentRequest{
		UserQuestion:  "why does my loop never stop",
		UserCode:      "while True: pass",
		RunningResult: "timed out",
	}

	tests := []struct {
		name        string
		isDone      bool
		wantPhrase  string
		avoidPhrase string
	}{
		{
			name:        "first call may request execution",
			isDone:      false,
			wantPhrase:  "Decide Your Action",
			avoidPhrase: "Do NOT run the code again",
		},
		{
			name:        "final call forbids execution",
			isDone:      true,
			wantPhrase:  "Do NOT run the code again",
			avoidPhrase: "Decide Your Action",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			streamer := &stubStreamer{fragments: []string{"hint"}}
			agent := NewHintAgent(streamer)

			for range agent.Generate(context.Background(), req, tt.isDone) {
			}

			if len(streamer.prompts) != 1 {
				t.Fatalf("Stream() called %d times, expected 1", len(streamer.prompts))
			}
			prompt := streamer.prompts[0]
			if !strings.Contains(prompt, tt.wantPhrase) {
				t.Errorf("prompt missing %q", tt.wantPhrase)
			}
			if strings.Contains(prompt, tt.avoidPhrase) {
				t.Errorf("prompt unexpectedly contains %q", tt.avoidPhrase)
			}
			if !strings.Contains(prompt, req.UserQuestion) {
				t.Error("prompt missing user question")
			}
			if !strings.Contains(prompt, req.UserCode) {
				t.Error("prompt missing user code")
			}
			if !strings.Contains(prompt, req.RunningResult) {
				t.Error("prompt missing last run result")
			}
		})
	}
}

func TestHintAgentForwardsStream(t *testing.T) {
	streamer := &stubStreamer{fragments: []string{"Try ", "a ", "counter."}}
	agent := NewHintAgent(streamer)

	var out strings.Builder
	for token, err := range agent.Generate(context.Background(), &models.AgentRequest{}, false) {
		if err != nil {
			t.Fatalf("Generate() unexpected error: %v", err)
		}
		out.WriteString(token)
	}

	if out.String() != "Try a counter." {
		t.Errorf("Generate() = %q", out.String())
	}
}
