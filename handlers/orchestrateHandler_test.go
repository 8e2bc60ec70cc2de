package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"codexp/models"
	"codexp/services/llm"

	"github.com/gorilla/mux"
)

type stubOrchestrator struct {
	fragments []string
	requests  []*models.AgentRequest
}

func (s *stubOrchestrator) Orchestrate(ctx context.Context, req *models.AgentRequest) llm.TokenStream {
	s.requests = append(s.requests, req)
	return func(yield func(string, error) bool) {
		for _, fragment := range s.fragments {
			if !yield(fragment, nil) {
				return
			}
		}
	}
}

func newOrchestrateRouter(service *stubOrchestrator) *mux.Router {
	router := mux.NewRouter()
	NewOrchestrateHandler(service).RegisterRoutes(router)
	return router
}

func TestOrchestrateStreamsPlainText(t *testing.T) {
	service := &stubOrchestrator{fragments: []string{"Hello ", "there."}}
	router := newOrchestrateRouter(service)

	body := `{"userInput": "what is a stack?", "extra": {"user_id": "7", "problem_id": "3", "session_id": "abc"}}`
	req := httptest.NewRequest("POST", "/api/ai/orchestrate", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "text/plain; charset=utf-8" {
		t.Errorf("content type = %q", got)
	}
	if rr.Body.String() != "Hello there." {
		t.Errorf("body = %q", rr.Body.String())
	}

	if len(service.requests) != 1 {
		t.Fatalf("Orchestrate() called %d times, expected 1", len(service.requests))
	}
	agentReq := service.requests[0]
	if agentReq.UserQuestion != "what is a stack?" {
		t.Errorf("user question = %q", agentReq.UserQuestion)
	}
	if agentReq.UserID != 7 || agentReq.ProblemID != 3 {
		t.Errorf("ids = (%d, %d), expected (7, 3)", agentReq.UserID, agentReq.ProblemID)
	}
	if agentReq.SessionID != "abc" {
		t.Errorf("session id = %q", agentReq.SessionID)
	}
}

func TestOrchestrateBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed JSON", body: `{"userInput": `},
		{name: "missing user input", body: `{"extra": {}}`},
		{name: "non-numeric user id", body: `{"userInput": "hi", "extra": {"user_id": "seven"}}`},
		{name: "negative problem id", body: `{"userInput": "hi", "extra": {"problem_id": "-2"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &stubOrchestrator{fragments: []string{"never"}}
			router := newOrchestrateRouter(service)

			req := httptest.NewRequest("POST", "/api/ai/orchestrate", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, expected 400", rr.Code)
			}
			if len(service.requests) != 0 {
				t.Errorf("Orchestrate() called %d times for a rejected request", len(service.requests))
			}
		})
	}
}

func TestOrchestrateOmittedIDsDefaultToZero(t *testing.T) {
	service := &stubOrchestrator{fragments: []string{"ok"}}
	router := newOrchestrateRouter(service)

	req := httptest.NewRequest("POST", "/api/ai/orchestrate", strings.NewReader(`{"userInput": "hi"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rr.Code)
	}
	agentReq := service.requests[0]
	if agentReq.UserID != 0 || agentReq.LessonID != 0 || agentReq.ProblemID != 0 {
		t.Errorf("ids = (%d, %d, %d), expected all zero", agentReq.UserID, agentReq.LessonID, agentReq.ProblemID)
	}
}
