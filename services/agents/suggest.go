package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"codexp/models"
	"codexp/services/llm"
	"codexp/services/search"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
)

const suggestNotFoundMessage = "Sorry, no suitable problem or lesson found."

const suggestTopK = 5

// difficultyTiers is the ordered difficulty enumeration, easiest first.
var difficultyTiers = []string{"easy", "medium", "hard"}

var (
	lessonKeywords  = []string{"lesson", "learn", "theory", "tutorial", "concept", "explain"}
	problemKeywords = []string{"problem", "challenge", "practice", "exercise", "task", "question"}
)

// VectorSearcher is the vector-index collaborator boundary.
type VectorSearcher interface {
	QueryItems(ctx context.Context, prompt, itemType, difficulty string, topK int) ([]search.Match, error)
	FetchDifficulties(ctx context.Context, ids []string) ([]string, error)
}

// ProgressSource supplies the user's already-completed item ids.
type ProgressSource interface {
	GetCompletedItems(ctx context.Context, userID int) ([]string, error)
}

// SuggestedItem is the payload streamed back for a successful suggestion.
type SuggestedItem struct {
	ID    int    `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
}

// SuggestAgent picks the next problem or lesson via similarity search one
// difficulty tier above the user's inferred current tier, skipping items the
// user has already completed. The chosen result is emitted character by
// character so it composes with true LLM streams.
type SuggestAgent struct {
	search   VectorSearcher
	progress ProgressSource
}

func NewSuggestAgent(searcher VectorSearcher, progress ProgressSource) *SuggestAgent {
	return &SuggestAgent{search: searcher, progress: progress}
}

func (a *SuggestAgent) Stream(ctx context.Context, req *models.AgentRequest) llm.TokenStream {
	itemType := determineItemType(req.UserQuestion)

	var completed []string
	if req.UserID > 0 {
		var err error
		completed, err = a.progress.GetCompletedItems(ctx, req.UserID)
		if err != nil {
			return errorStream(fmt.Errorf("failed to fetch user history: %w", err))
		}
	}

	difficulties, err := a.search.FetchDifficulties(ctx, completed)
	if err != nil {
		log.Printf("[WARN] Failed to fetch completed-item difficulties, assuming none: %v", err)
	}
	nextTier := nextDifficulty(inferDifficulty(difficulties))

	prompt := buildSuggestPrompt(req, itemType, len(completed))

	matches, err := a.search.QueryItems(ctx, prompt, itemType, nextTier, suggestTopK)
	if err != nil {
		return errorStream(fmt.Errorf("failed to query catalog: %w", err))
	}

	selected := selectCandidate(matches, completed, itemType)
	if selected == nil {
		log.Printf("[INFO] No catalog candidate found for type=%s difficulty=%s", itemType, nextTier)
		return charStream(suggestNotFoundMessage)
	}

	payload, err := json.Marshal(selected)
	if err != nil {
		return errorStream(fmt.Errorf("failed to marshal suggestion: %w", err))
	}

	log.Printf("[INFO] Suggesting %s %d (%s)", selected.Type, selected.ID, selected.Title)
	return charStream(string(payload))
}

// selectCandidate picks the best-ranked match the user has not completed yet,
// falling back to the top match when everything is already done.
func selectCandidate(matches []search.Match, completed []string, itemType string) *SuggestedItem {
	for _, match := range matches {
		if lo.Contains(completed, match.ID) {
			continue
		}
		if item := toSuggestedItem(match, itemType); item != nil {
			return item
		}
	}

	if len(matches) > 0 {
		return toSuggestedItem(matches[0], itemType)
	}
	return nil
}

func toSuggestedItem(match search.Match, itemType string) *SuggestedItem {
	_, rawID, found := strings.Cut(match.ID, "_")
	if !found {
		return nil
	}
	numericID, err := strconv.Atoi(rawID)
	if err != nil {
		return nil
	}
	return &SuggestedItem{ID: numericID, Type: itemType, Title: match.Title}
}

func buildSuggestPrompt(req *models.AgentRequest, itemType string, completedCount int) string {
	var parts []string
	parts = append(parts, "User request: "+req.UserQuestion)
	if req.LessonID > 0 {
		parts = append(parts, fmt.Sprintf("Related lesson id: %d", req.LessonID))
	}
	if req.ProblemID > 0 {
		parts = append(parts, fmt.Sprintf("Related problem id: %d", req.ProblemID))
	}
	if req.Topic != "" {
		parts = append(parts, "Topic: "+req.Topic)
	}
	parts = append(parts, fmt.Sprintf("Suggest a %s for a %s user who has completed %d items.", itemType, req.UserLevel, completedCount))
	return strings.Join(parts, "\n")
}

// inferDifficulty takes a majority vote over the difficulty metadata of the
// user's completed items, defaulting to the lowest tier with no history.
// Ties resolve to the easier tier.
func inferDifficulty(difficulties []string) string {
	if len(difficulties) == 0 {
		return difficultyTiers[0]
	}

	counts := lo.CountValues(difficulties)
	inferred := difficultyTiers[0]
	best := 0
	for _, tier := range difficultyTiers {
		if counts[tier] > best {
			best = counts[tier]
			inferred = tier
		}
	}
	return inferred
}

// nextDifficulty is one tier above current, capped at the hardest tier.
func nextDifficulty(current string) string {
	idx := lo.IndexOf(difficultyTiers, current)
	if idx < 0 {
		return difficultyTiers[1]
	}
	if idx+1 < len(difficultyTiers) {
		return difficultyTiers[idx+1]
	}
	return difficultyTiers[len(difficultyTiers)-1]
}

// determineItemType decides between "problem" and "lesson" from the request
// wording, tolerating small typos in the keywords.
func determineItemType(userInput string) string {
	words := tokenize(userInput)

	if containsKeyword(words, []string{"problem"}) && containsKeyword(words, []string{"lesson", "concept", "topic"}) {
		return "problem"
	}
	if containsKeyword(words, lessonKeywords) {
		return "lesson"
	}
	if containsKeyword(words, problemKeywords) {
		return "problem"
	}
	return "problem"
}

func tokenize(input string) []string {
	words := strings.Fields(strings.ToLower(input))
	cleaned := make([]string, 0, len(words))
	for _, word := range words {
		word = strings.Trim(word, ".,!?;:()[]{}\"'")
		if len(word) > 2 {
			cleaned = append(cleaned, word)
		}
	}
	return cleaned
}

func containsKeyword(words, keywords []string) bool {
	for _, keyword := range keywords {
		for _, word := range words {
			if word == keyword {
				return true
			}
		}
		if len(fuzzy.Find(keyword, words)) > 0 {
			return true
		}
	}
	return false
}
