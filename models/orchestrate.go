package models

// AgentName identifies one of the selectable tutoring agents. Any classifier
// output outside this set is treated as "no agent matched".
type AgentName string

const (
	AgentExplain        AgentName = "explain"
	AgentHint           AgentName = "hint"
	AgentSuggestProblem AgentName = "suggest_problem"
	AgentConversation   AgentName = "conversation"
)

// KnownAgents is the closed enumeration the router output is matched against.
var KnownAgents = []AgentName{AgentExplain, AgentHint, AgentSuggestProblem, AgentConversation}

// IsKnownAgent reports whether name is part of the closed agent enumeration.
func IsKnownAgent(name AgentName) bool {
	for _, a := range KnownAgents {
		if a == name {
			return true
		}
	}
	return false
}

// OrchestrateRequest is the inbound payload of POST /api/ai/orchestrate.
type OrchestrateRequest struct {
	UserInput string           `json:"userInput"`
	Extra     OrchestrateExtra `json:"extra"`
}

// OrchestrateExtra enumerates every recognized optional field of the request.
// Numeric ids arrive as strings and are parsed once at the request boundary.
type OrchestrateExtra struct {
	SessionID          string `json:"session_id,omitempty"`
	Topic              string `json:"topic,omitempty"`
	LessonID           string `json:"lesson_id,omitempty"`
	UserID             string `json:"user_id,omitempty"`
	ProblemID          string `json:"problem_id,omitempty"`
	ProblemTitle       string `json:"problem_title,omitempty"`
	ProblemDescription string `json:"problem_description,omitempty"`
	UserCode           string `json:"user_code,omitempty"`
	UserLevel          string `json:"user_level,omitempty"`
	LastAgent          string `json:"last_agent,omitempty"`
	RunningResult      string `json:"running_result,omitempty"`
	Testcase           string `json:"testcase,omitempty"`
}

// AgentRequest is the per-call context bundle handed to agents. It is built
// once per inbound call and never persisted directly. Zero-valued ids mean
// "absent".
type AgentRequest struct {
	SessionID          string
	UserQuestion       string
	Topic              string
	LessonID           int
	UserID             int
	ProblemID          int
	ProblemTitle       string
	ProblemDescription string
	UserCode           string
	UserLevel          string
	LastAgent          string
	RunningResult      string
	Testcase           string

	// History is the rendered conversation memory, chronological, possibly
	// summarized. Filled in by the orchestrator before dispatch.
	History string
}

// ConversationKey scopes conversation memory: a session id, or a user paired
// with a lesson or problem. Neither resolving means memory is empty.
func (r *AgentRequest) ConversationKey() ConversationKey {
	return ConversationKey{
		SessionID: r.SessionID,
		UserID:    r.UserID,
		LessonID:  r.LessonID,
		ProblemID: r.ProblemID,
	}
}

type ConversationKey struct {
	SessionID string
	UserID    int
	LessonID  int
	ProblemID int
}
