package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"codexp/models"
	"codexp/services/llm"
)

const routerPromptTemplate = `You are an AI orchestrator. Decide which agent to use based on the user's request, the recent conversation, and the last agent used.

Available Agents:
1. suggest_problem
    Use when the user:
    - Asks for a new or related lesson or problem to try
    - Requests a challenge, recommended task, or next thing to learn
    - Says phrases like:
        - "Give me a related lesson"
        - "What's next?"
        - "I want to practice more"
        - "Show me another problem"
        - "What should I do now?"
        - "Continue"

    Use when the user wants to move forward or get something new to work on.
    Do NOT use if the user is stuck on a current problem and needs help with it.
2. explain
    Use when the user:
    - Asks for a general explanation, concept, syntax, or how something works in Python
    - Wants to understand a topic or lesson but does NOT want a new activity or problem to try

    Use if the user is learning or asking about a concept without providing code or requesting new tasks.
    Do NOT use if the user:
        - Provides code or asks for help testing or fixing it
        - Asks for a new or related lesson/problem, challenge, or what to do next

3. hint
    Use when the user:
    - Shares code and asks for help (e.g. fix, improve, debug, test)
    - Asks for a hint, step-by-step help, or how to write/change code

    Use for interactive help with current code or solving a current problem.
    Do NOT use if the user only wants to learn a concept or move to a new activity.

4. conversation
    Use for any other case that does not fit the agents above.
    - Greetings (e.g. "hi", "hello")
    - Closings or affirmations (e.g. "ok", "thanks", "got it")
    - General chit-chat or questions about the AI itself.

    Use as a default for any input that is not a clear request for explanation, a hint, or a new problem.


Last agent: %s
Recent conversation:
%s

User input: %s

Reply with ONLY the agent name: explain, hint, suggest_problem, or conversation. Do NOT explain or answer the user's question.
Agent:`

// Router classifies user input into one of the known agents with a single
// best-effort completion. Its output is a hint, not a guarantee: anything
// outside the closed enumeration reports unmatched, and the call is never
// retried on ambiguous output.
type Router struct {
	llm llm.Completer
}

func NewRouter(completer llm.Completer) *Router {
	return &Router{llm: completer}
}

// Classify returns the selected agent and whether anything matched. The error
// is non-nil only for classification transport failures.
func (r *Router) Classify(ctx context.Context, userInput, lastAgent, history string) (models.AgentName, bool, error) {
	prompt := fmt.Sprintf(routerPromptTemplate, lastAgent, history, userInput)

	raw, err := r.llm.Complete(ctx, prompt)
	if err != nil {
		return "", false, fmt.Errorf("agent classification failed: %w", err)
	}

	name := models.AgentName(strings.ToLower(strings.TrimSpace(raw)))
	if !models.IsKnownAgent(name) {
		return "", false, nil
	}

	return name, true, nil
}
