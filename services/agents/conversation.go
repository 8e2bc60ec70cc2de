package agents

import (
	"context"
	"fmt"

	"codexp/models"
	"codexp/services/llm"
)

const conversationPromptTemplate = `You are a friendly and helpful AI Python tutor named CodeXP. The user has said something that doesn't require a specific tool or explanation. Respond conversationally and briefly.

Recent conversation:
%s

User input: %s

Your response:
`

// ConversationAgent handles greetings and chit-chat with one LLM stream.
type ConversationAgent struct {
	llm llm.Streamer
}

func NewConversationAgent(streamer llm.Streamer) *ConversationAgent {
	return &ConversationAgent{llm: streamer}
}

func (a *ConversationAgent) Stream(ctx context.Context, req *models.AgentRequest) llm.TokenStream {
	prompt := fmt.Sprintf(conversationPromptTemplate, req.History, req.UserQuestion)
	return a.llm.Stream(ctx, prompt)
}
