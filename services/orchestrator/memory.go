package orchestrator

import (
	"context"
	"fmt"
	"log"
	"strings"

	"codexp/models"
	"codexp/services/llm"

	"github.com/samber/lo"
)

const (
	// maxHistoryTurns caps how many prior turns feed the conversation memory.
	maxHistoryTurns = 5

	// maxContextChars is the rendered-history budget above which the raw
	// turns are collapsed into a summary.
	maxContextChars = 4000

	summaryPromptTemplate = "Summarize the following conversation history for context in 5 concise bullet points:\n%s"
)

// TurnSource fetches prior turns for a conversation key, newest first.
type TurnSource interface {
	FetchRecentTurns(ctx context.Context, key models.ConversationKey, limit int) ([]models.Turn, error)
}

// Memory assembles the conversation context handed to the router and agents.
type Memory struct {
	turns TurnSource
	llm   llm.Completer
}

func NewMemory(turns TurnSource, completer llm.Completer) *Memory {
	return &Memory{turns: turns, llm: completer}
}

// History renders the bounded conversation memory for key, oldest turn first.
// When the rendered text exceeds the character budget it is replaced by an
// LLM-written summary block; if summarization fails the raw text is used
// instead, since degraded context beats no response.
func (m *Memory) History(ctx context.Context, key models.ConversationKey) (string, error) {
	turns, err := m.turns.FetchRecentTurns(ctx, key, maxHistoryTurns)
	if err != nil {
		return "", fmt.Errorf("failed to fetch conversation memory: %w", err)
	}
	if len(turns) == 0 {
		return "", nil
	}

	rendered := renderTurns(lo.Reverse(turns))
	if len(rendered) <= maxContextChars {
		return strings.TrimSpace(rendered), nil
	}

	summary, err := m.llm.Complete(ctx, fmt.Sprintf(summaryPromptTemplate, rendered))
	if err != nil {
		log.Printf("[WARN] History summarization failed, using raw history: %v", err)
		return strings.TrimSpace(rendered), nil
	}

	return strings.TrimSpace("Summary of previous conversation history:\n" + strings.TrimSpace(summary) + "\n"), nil
}

// renderTurns concatenates chronological turns in the "User/AI" wire form
// every prompt template expects.
func renderTurns(turns []models.Turn) string {
	var rendered strings.Builder
	for _, turn := range turns {
		rendered.WriteString(fmt.Sprintf("User: %s\nAI: %s\n", turn.UserQuery, turn.AIResponse))
	}
	return rendered.String()
}
