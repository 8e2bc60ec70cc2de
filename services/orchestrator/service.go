package orchestrator

import (
	"context"
	"fmt"
	"log"
	"strings"

	"codexp/models"
	"codexp/services/agents"
	"codexp/services/llm"
)

// FallbackMessage is the single fragment emitted when no agent matched or the
// chosen agent produced no output.
const FallbackMessage = "Sorry, no response was generated."

const (
	defaultUserLevel = "beginner"
	defaultLastAgent = string(models.AgentExplain)
)

// Classifier selects an agent for the user input, or reports unmatched.
type Classifier interface {
	Classify(ctx context.Context, userInput, lastAgent, history string) (models.AgentName, bool, error)
}

// HistorySource renders conversation memory for a key.
type HistorySource interface {
	History(ctx context.Context, key models.ConversationKey) (string, error)
}

// InteractionStore persists one completed interaction.
type InteractionStore interface {
	SaveInteraction(ctx context.Context, interaction *models.Interaction) error
}

// Service is the orchestration driver: memory, routing, dispatch, stream
// merging, and persistence of the accumulated response.
type Service struct {
	router  Classifier
	memory  HistorySource
	catalog map[models.AgentName]agents.Agent
	store   InteractionStore
}

// NewService wires the driver. The hint agent is expected to arrive already
// wrapped in its tool-call coordinator.
func NewService(router Classifier, memory HistorySource, explain, hint, suggest, conversation agents.Agent, store InteractionStore) *Service {
	return &Service{
		router: router,
		memory: memory,
		catalog: map[models.AgentName]agents.Agent{
			models.AgentExplain:        explain,
			models.AgentHint:           hint,
			models.AgentSuggestProblem: suggest,
			models.AgentConversation:   conversation,
		},
		store: store,
	}
}

// Orchestrate routes the request to an agent and forwards its stream while
// accumulating the full response for persistence. The returned stream never
// carries an error: every failure downstream of dispatch is converted into a
// single visible "Error: ..." fragment and the stream ends cleanly.
func (s *Service) Orchestrate(ctx context.Context, req *models.AgentRequest) llm.TokenStream {
	return func(yield func(string, error) bool) {
		applyDefaults(req)

		history, err := s.memory.History(ctx, req.ConversationKey())
		if err != nil {
			log.Printf("[ERROR] Failed to assemble conversation memory: %v", err)
			yield(fmt.Sprintf("Error: %v", err), nil)
			return
		}
		req.History = history

		agentName, matched, err := s.router.Classify(ctx, req.UserQuestion, req.LastAgent, history)
		if err != nil {
			log.Printf("[ERROR] Agent classification failed: %v", err)
			yield(fmt.Sprintf("Error: %v", err), nil)
			return
		}
		if !matched {
			log.Printf("[INFO] No agent matched, emitting fallback")
			yield(FallbackMessage, nil)
			return
		}

		agent, ok := s.catalog[agentName]
		if !ok {
			yield(FallbackMessage, nil)
			return
		}

		log.Printf("[INFO] Routing to agent: %s", agentName)

		var response strings.Builder
		for token, streamErr := range agent.Stream(ctx, req) {
			if streamErr != nil {
				log.Printf("[ERROR] Agent %s stream failed: %v", agentName, streamErr)
				yield(fmt.Sprintf("Error: %v", streamErr), nil)
				return
			}
			response.WriteString(token)
			if !yield(token, nil) {
				// Caller went away mid-stream: partial output is discarded,
				// never persisted.
				return
			}
		}

		if ctx.Err() != nil {
			return
		}

		if response.Len() == 0 {
			yield(FallbackMessage, nil)
			return
		}

		s.persist(ctx, req, agentName, response.String())
	}
}

// persist writes the completed interaction. Failure is logged and swallowed:
// the response already reached the caller, losing one history row must not
// fail the request.
func (s *Service) persist(ctx context.Context, req *models.AgentRequest, agentName models.AgentName, response string) {
	interaction := &models.Interaction{
		UserID:         req.UserID,
		LessonID:       req.LessonID,
		ProblemID:      req.ProblemID,
		SessionID:      req.SessionID,
		UserQuery:      req.UserQuestion,
		AIResponse:     response,
		SuggestionType: agentName,
	}

	if err := s.store.SaveInteraction(context.WithoutCancel(ctx), interaction); err != nil {
		log.Printf("[ERROR] Failed to persist interaction: %v", err)
		return
	}

	log.Printf("[INFO] Persisted %s interaction (%d chars)", agentName, len(response))
}

func applyDefaults(req *models.AgentRequest) {
	if req.UserLevel == "" {
		req.UserLevel = defaultUserLevel
	}
	if req.LastAgent == "" {
		req.LastAgent = defaultLastAgent
	}
}
