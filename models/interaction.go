package models

import "time"

// Turn is one prior exchange in a conversation. Immutable once persisted.
type Turn struct {
	UserQuery  string `json:"user_query" db:"user_query"`
	AIResponse string `json:"ai_response" db:"ai_response"`
}

// Interaction is one completed orchestration call, written exactly once when
// the agent produced at least one token.
type Interaction struct {
	UserID         int       `json:"user_id,omitempty" db:"user_id"`
	LessonID       int       `json:"lesson_id,omitempty" db:"lesson_id"`
	ProblemID      int       `json:"problem_id,omitempty" db:"problem_id"`
	SessionID      string    `json:"session_id,omitempty" db:"session_id"`
	UserQuery      string    `json:"user_query" db:"user_query"`
	AIResponse     string    `json:"ai_response" db:"ai_response"`
	SuggestionType AgentName `json:"suggestion_type" db:"suggestion_type"`
	DateTime       time.Time `json:"date_time,omitempty" db:"date_time"`
}

// TestCase is one stored testcase for a problem, forwarded verbatim to the
// code-execution service.
type TestCase struct {
	ID    int    `json:"id"`
	Input string `json:"input"`
}
