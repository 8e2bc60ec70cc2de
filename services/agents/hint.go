package agents

import (
	"context"
	"fmt"
	"strings"

	"codexp/models"
	"codexp/services/llm"
)

// SentinelRunCode is the fixed control string the hint agent emits instead of
// prose when the user explicitly asks to run, test, debug, or execute their
// code. Detection is exact-match on the trimmed full output, never a prefix
// scan.
const SentinelRunCode = "__RUN_CODE__"

// Caller-visible markers bracketing the out-of-band execution phase.
const (
	MarkerExecutionStarted = "__RUN_CODE_STARTED__"
	MarkerExecutionDone    = "__RUN_CODE_DONE__"
)

const hintInstructionsCanRun = `## Your Primary Goal: Decide Your Action

You must choose ONLY ONE of the following two actions.

1.  **Run the User's Code:**
    -   **Condition:** If the user's question contains a command like ` + "`run`, `test`, `debug`, or `execute`" + ` their code.
    -   **Action:** Your ONLY response must be the exact text ` + "`" + SentinelRunCode + "`" + `. Do not add any other words or explanation.

2.  **Provide a Hint:**
    -   **Condition:** For ALL OTHER cases.
    -   **Action:** Provide a helpful hint based on the "Hinting Guidelines" below.
    -   **IMPORTANT:** NEVER respond with ` + "`" + SentinelRunCode + "`" + ` unless the user explicitly asks for it in their question.`

const hintInstructionsCannotRun = `## Your Primary Goal: Provide a Hint

Your ONLY goal is to provide a helpful hint to the user based on the "Hinting Guidelines" below. The user's code has already been run, and you are now providing the final feedback.

**IMPORTANT:** Do NOT run the code again. Do NOT respond with ` + "`" + SentinelRunCode + "`" + `.`

const hintPromptTemplate = `%s

---

## Context for Your Decision

-   **User Question:** %s
-   **Conversation History:**
    %s
-   **Problem Title:** %s
-   **Problem Description:**
    %s
-   **User's Current Code:**
    ` + "```python\n    %s\n    ```" + `
-   **Result from Last Code Run:**
    %s
-   **Testcase Used:**
    %s

---

## Hinting Guidelines (Only use if you decided to provide a hint)

You are an AI tutor helping a student with Python. Based on the context above, if your primary goal led you to provide a hint, follow these instructions strictly:

-   If the user's code is fully correct, clearly acknowledge it, congratulate them, and highlight what was done well.
-   If the user's code is wrong or incomplete, give a **step-by-step hint**, not a full solution. Mention the specific concept or line that needs attention.
-   Use the "Result from Last Code Run" to guide your hint. If there's an error, help the student understand its likely cause.
-   Be direct, actionable, and supportive. Use Markdown for any code snippets.

### Your Output:`

// HintAgent runs the two-state hint micro-protocol. With isDone=false the
// model may answer with prose or exactly the run-code sentinel; with
// isDone=true it must answer with prose, since the code has already run and
// RunningResult carries the outcome.
type HintAgent struct {
	llm llm.Streamer
}

func NewHintAgent(streamer llm.Streamer) *HintAgent {
	return &HintAgent{llm: streamer}
}

func (a *HintAgent) Generate(ctx context.Context, req *models.AgentRequest, isDone bool) llm.TokenStream {
	instructions := hintInstructionsCanRun
	if isDone {
		instructions = hintInstructionsCannotRun
	}

	prompt := fmt.Sprintf(hintPromptTemplate,
		instructions,
		req.UserQuestion,
		req.History,
		req.ProblemTitle,
		req.ProblemDescription,
		req.UserCode,
		req.RunningResult,
		req.Testcase,
	)

	return a.llm.Stream(ctx, strings.TrimSpace(prompt))
}
