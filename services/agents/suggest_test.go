package agents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"codexp/models"
	"codexp/services/llm"
	"codexp/services/search"
)

type searchCall struct {
	itemType   string
	difficulty string
	topK       int
}

type stubSearcher struct {
	matches      []search.Match
	difficulties []string
	queryErr     error
	diffErr      error
	queries      []searchCall
	fetchedIDs   [][]string
}

func (s *stubSearcher) QueryItems(ctx context.Context, prompt, itemType, difficulty string, topK int) ([]search.Match, error) {
	s.queries = append(s.queries, searchCall{itemType: itemType, difficulty: difficulty, topK: topK})
	return s.matches, s.queryErr
}

func (s *stubSearcher) FetchDifficulties(ctx context.Context, ids []string) ([]string, error) {
	s.fetchedIDs = append(s.fetchedIDs, ids)
	return s.difficulties, s.diffErr
}

type stubProgress struct {
	completed []string
	err       error
	calls     int
}

func (s *stubProgress) GetCompletedItems(ctx context.Context, userID int) ([]string, error) {
	s.calls++
	return s.completed, s.err
}

func drainStream(t *testing.T, stream llm.TokenStream) (string, error) {
	t.Helper()
	var out strings.Builder
	for token, err := range stream {
		if err != nil {
			return out.String(), err
		}
		out.WriteString(token)
	}
	return out.String(), nil
}

func TestInferDifficulty(t *testing.T) {
	tests := []struct {
		name         string
		difficulties []string
		want         string
	}{
		{name: "no history defaults easy", difficulties: nil, want: "easy"},
		{name: "easy majority", difficulties: []string{"easy", "easy", "medium"}, want: "easy"},
		{name: "medium majority", difficulties: []string{"medium", "easy", "medium"}, want: "medium"},
		{name: "hard only", difficulties: []string{"hard", "hard"}, want: "hard"},
		{name: "tie resolves easier", difficulties: []string{"easy", "medium"}, want: "easy"},
		{name: "tie medium hard resolves medium", difficulties: []string{"medium", "hard"}, want: "medium"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inferDifficulty(tt.difficulties); got != tt.want {
				t.Errorf("inferDifficulty(%v) = %q, expected %q", tt.difficulties, got, tt.want)
			}
		})
	}
}

func TestNextDifficulty(t *testing.T) {
	tests := []struct {
		current string
		want    string
	}{
		{current: "easy", want: "medium"},
		{current: "medium", want: "hard"},
		{current: "hard", want: "hard"},
		{current: "", want: "medium"},
		{current: "impossible", want: "medium"},
	}

	for _, tt := range tests {
		if got := nextDifficulty(tt.current); got != tt.want {
			t.Errorf("nextDifficulty(%q) = %q, expected %q", tt.current, got, tt.want)
		}
	}
}

func TestDetermineItemType(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "problem request", input: "give me a problem to solve", want: "problem"},
		{name: "lesson request", input: "I want a lesson about recursion", want: "lesson"},
		{name: "plural lessons", input: "show me more lessons", want: "lesson"},
		{name: "problem about a lesson wins", input: "suggest a problem for this lesson", want: "problem"},
		{name: "no keywords defaults problem", input: "something new", want: "problem"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := determineItemType(tt.input); got != tt.want {
				t.Errorf("determineItemType(%q) = %q, expected %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSuggestAgentStream(t *testing.T) {
	searcher := &stubSearcher{
		difficulties: []string{"easy", "easy"},
		matches: []search.Match{
			{ID: "problem_1", Title: "Completed One"},
			{ID: "problem_2", Title: "Two Sum"},
		},
	}
	progress := &stubProgress{completed: []string{"problem_1", "lesson_3"}}
	agent := NewSuggestAgent(searcher, progress)

	req := &models.AgentRequest{UserID: 7, UserLevel: "beginner", UserQuestion: "give me a new problem"}
	got, err := drainStream(t, agent.Stream(context.Background(), req))
	if err != nil {
		t.Fatalf("Stream() unexpected error: %v", err)
	}

	if got != `{"id":2,"type":"problem","title":"Two Sum"}` {
		t.Errorf("Stream() = %q", got)
	}

	if len(searcher.queries) != 1 {
		t.Fatalf("QueryItems() called %d times, expected 1", len(searcher.queries))
	}
	query := searcher.queries[0]
	if query.itemType != "problem" {
		t.Errorf("queried item type %q, expected problem", query.itemType)
	}
	if query.difficulty != "medium" {
		t.Errorf("queried difficulty %q, expected one tier above easy history", query.difficulty)
	}
	if query.topK != suggestTopK {
		t.Errorf("queried topK %d, expected %d", query.topK, suggestTopK)
	}
}

func TestSuggestAgentFallsBackToTopMatch(t *testing.T) {
	searcher := &stubSearcher{
		matches: []search.Match{{ID: "problem_4", Title: "Already Done"}},
	}
	progress := &stubProgress{completed: []string{"problem_4"}}
	agent := NewSuggestAgent(searcher, progress)

	req := &models.AgentRequest{UserID: 7, UserQuestion: "another problem please"}
	got, err := drainStream(t, agent.Stream(context.Background(), req))
	if err != nil {
		t.Fatalf("Stream() unexpected error: %v", err)
	}
	if !strings.Contains(got, `"id":4`) {
		t.Errorf("Stream() = %q, expected fallback to top match", got)
	}
}

func TestSuggestAgentNotFound(t *testing.T) {
	agent := NewSuggestAgent(&stubSearcher{}, &stubProgress{})

	got, err := drainStream(t, agent.Stream(context.Background(), &models.AgentRequest{UserQuestion: "a problem"}))
	if err != nil {
		t.Fatalf("Stream() unexpected error: %v", err)
	}
	if got != suggestNotFoundMessage {
		t.Errorf("Stream() = %q, expected not-found message", got)
	}
}

func TestSuggestAgentAnonymousSkipsProgress(t *testing.T) {
	searcher := &stubSearcher{matches: []search.Match{{ID: "problem_1", Title: "First"}}}
	progress := &stubProgress{}
	agent := NewSuggestAgent(searcher, progress)

	_, err := drainStream(t, agent.Stream(context.Background(), &models.AgentRequest{UserQuestion: "a problem"}))
	if err != nil {
		t.Fatalf("Stream() unexpected error: %v", err)
	}
	if progress.calls != 0 {
		t.Errorf("GetCompletedItems() called %d times for anonymous user, expected 0", progress.calls)
	}
	if searcher.queries[0].difficulty != "medium" {
		t.Errorf("queried difficulty %q, expected medium with no history", searcher.queries[0].difficulty)
	}
}

func TestSuggestAgentDifficultyLookupFailureIsSoft(t *testing.T) {
	searcher := &stubSearcher{
		diffErr: errors.New("index unavailable"),
		matches: []search.Match{{ID: "problem_9", Title: "Ninth"}},
	}
	agent := NewSuggestAgent(searcher, &stubProgress{completed: []string{"problem_1"}})

	got, err := drainStream(t, agent.Stream(context.Background(), &models.AgentRequest{UserID: 7, UserQuestion: "a problem"}))
	if err != nil {
		t.Fatalf("Stream() must tolerate difficulty lookup failure: %v", err)
	}
	if !strings.Contains(got, `"id":9`) {
		t.Errorf("Stream() = %q", got)
	}
}

func TestSuggestAgentProgressError(t *testing.T) {
	agent := NewSuggestAgent(&stubSearcher{}, &stubProgress{err: errors.New("db down")})

	_, err := drainStream(t, agent.Stream(context.Background(), &models.AgentRequest{UserID: 7, UserQuestion: "a problem"}))
	if err == nil {
		t.Fatal("Stream() expected error when user history is unavailable")
	}
}
