package orchestrator

import (
	"context"
	"log"
	"strings"

	"codexp/models"
	"codexp/services/agents"
	"codexp/services/llm"
)

// HintGenerator is the two-state hint agent boundary.
type HintGenerator interface {
	Generate(ctx context.Context, req *models.AgentRequest, isDone bool) llm.TokenStream
}

// CodeRunner executes user code out of band and always resolves to a result
// string, including for failures and timeouts.
type CodeRunner interface {
	Execute(ctx context.Context, userCode string, problemID int) string
}

// Coordinator drives the hint agent's tool-call lifecycle. The first call is
// buffered in full: the run-code sentinel is an exact match on the trimmed
// concatenation, so forwarding must wait until the stream drains or a partial
// sentinel could leak to the caller as hint text. If the sentinel matched,
// the user's code is executed and the hint agent is re-invoked in its final
// state with the execution result; otherwise the buffered output is the
// answer and is forwarded untouched.
type Coordinator struct {
	hint   HintGenerator
	runner CodeRunner
}

func NewCoordinator(hint HintGenerator, runner CodeRunner) *Coordinator {
	return &Coordinator{hint: hint, runner: runner}
}

func (c *Coordinator) Stream(ctx context.Context, req *models.AgentRequest) llm.TokenStream {
	return func(yield func(string, error) bool) {
		var fragments []string
		var full strings.Builder

		for token, err := range c.hint.Generate(ctx, req, false) {
			if err != nil {
				yield("", err)
				return
			}
			fragments = append(fragments, token)
			full.WriteString(token)
		}

		if strings.TrimSpace(full.String()) != agents.SentinelRunCode {
			for _, fragment := range fragments {
				if !yield(fragment, nil) {
					return
				}
			}
			return
		}

		log.Printf("[INFO] Hint agent requested code execution for problem %d", req.ProblemID)

		if !yield(agents.MarkerExecutionStarted, nil) {
			return
		}

		result := c.runner.Execute(ctx, req.UserCode, req.ProblemID)

		if !yield(agents.MarkerExecutionDone, nil) {
			return
		}

		finalReq := *req
		finalReq.RunningResult = result

		for token, err := range c.hint.Generate(ctx, &finalReq, true) {
			if err != nil {
				yield("", err)
				return
			}
			if !yield(token, nil) {
				return
			}
		}
	}
}
