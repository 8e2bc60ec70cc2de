package agents

import (
	"context"
	"fmt"
	"log"
	"strings"

	"codexp/models"
	"codexp/services/llm"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const feedbackPromptTemplate = `You are CodeXP, an expert Python tutor for beginner and intermediate programmers.

Review the code below and provide clear, direct feedback.

---

Problem Title: %s

Problem Description:
%s

User Code:
%s

%s

---

Instructions:
- If the code is correct, simply say: "**Correct.**" followed by **one short sentence** to reinforce what the user did right.
- If there are mistakes, point them out **clearly and directly**, and suggest the **most important fix first**.
- Prefer **concise, high-impact suggestions** over long explanations or lists.
- If you have an improvement or cleaner solution, briefly show it using a Markdown code block.
- Do **not** overpraise or say "good job" unless it's earned through a specific insight.
- Avoid filler words. Focus on what's correct, what's wrong, and what's better.
- Only use plain text and Markdown. No HTML. No placeholder text.
- Avoid repeating the problem description or user code.

---

Now give **clear, concise, and actionable feedback**:`

// FeedbackAgent reviews submitted code in one Anthropic call. The full
// completion is collected and yielded as a single fragment.
type FeedbackAgent struct {
	client *anthropic.Client
}

func NewFeedbackAgent(anthropicAPIKey string) *FeedbackAgent {
	client := anthropic.NewClient(option.WithAPIKey(anthropicAPIKey))
	return &FeedbackAgent{client: &client}
}

func (a *FeedbackAgent) Stream(ctx context.Context, req *models.FeedbackRequest) llm.TokenStream {
	runningResult := ""
	if req.RunningResult != "" {
		runningResult = "Code Running Result:\n" + req.RunningResult
	}

	prompt := fmt.Sprintf(feedbackPromptTemplate,
		req.ProblemTitle,
		req.ProblemDescription,
		req.UserCode,
		runningResult,
	)

	return func(yield func(string, error) bool) {
		log.Printf("[INFO] Requesting code feedback for problem %q", req.ProblemTitle)

		response, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.ModelClaude4Sonnet20250514,
			MaxTokens: 1024,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(strings.TrimSpace(prompt))),
			},
		})
		if err != nil {
			log.Printf("[ERROR] Failed to call Anthropic API: %v", err)
			yield("", fmt.Errorf("failed to call Anthropic API: %w", err))
			return
		}

		var feedback strings.Builder
		for _, block := range response.Content {
			switch block := block.AsAny().(type) {
			case anthropic.TextBlock:
				feedback.WriteString(block.Text)
			}
		}

		yield(feedback.String(), nil)
	}
}
