package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"codexp/models"
	"codexp/services/llm"

	"github.com/gorilla/mux"
)

// Orchestrator is the routing core boundary.
type Orchestrator interface {
	Orchestrate(ctx context.Context, req *models.AgentRequest) llm.TokenStream
}

type OrchestrateHandler struct {
	service Orchestrator
}

func NewOrchestrateHandler(service Orchestrator) *OrchestrateHandler {
	return &OrchestrateHandler{service: service}
}

func (h *OrchestrateHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/ai/orchestrate", h.Orchestrate).Methods("POST")
}

// Orchestrate streams the tutoring response as a raw text body, one fragment
// at a time. The response has no structured framing; it ends when the
// underlying generator completes. Client disconnects cancel the request
// context, which aborts the in-flight generation and skips persistence.
func (h *OrchestrateHandler) Orchestrate(w http.ResponseWriter, r *http.Request) {
	log.Printf("[INFO] Received orchestrate request")

	var req models.OrchestrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Failed to decode orchestrate request JSON: %v", err)
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if req.UserInput == "" {
		log.Printf("[ERROR] No user input provided in orchestrate request")
		writeErrorResponse(w, http.StatusBadRequest, "userInput is required")
		return
	}

	agentReq, err := resolveAgentRequest(&req)
	if err != nil {
		log.Printf("[ERROR] Invalid orchestrate request: %v", err)
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeErrorResponse(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")

	// The driver converts every downstream failure into a visible fragment,
	// so the stream itself never carries an error.
	for token := range h.service.Orchestrate(r.Context(), agentReq) {
		fmt.Fprint(w, token)
		flusher.Flush()
	}
}

// resolveAgentRequest coerces the free-form extra fields into the typed
// per-call context, parsing numeric ids exactly once at this boundary.
func resolveAgentRequest(req *models.OrchestrateRequest) (*models.AgentRequest, error) {
	lessonID, err := parseOptionalID("lesson_id", req.Extra.LessonID)
	if err != nil {
		return nil, err
	}
	userID, err := parseOptionalID("user_id", req.Extra.UserID)
	if err != nil {
		return nil, err
	}
	problemID, err := parseOptionalID("problem_id", req.Extra.ProblemID)
	if err != nil {
		return nil, err
	}

	return &models.AgentRequest{
		SessionID:          req.Extra.SessionID,
		UserQuestion:       req.UserInput,
		Topic:              req.Extra.Topic,
		LessonID:           lessonID,
		UserID:             userID,
		ProblemID:          problemID,
		ProblemTitle:       req.Extra.ProblemTitle,
		ProblemDescription: req.Extra.ProblemDescription,
		UserCode:           req.Extra.UserCode,
		UserLevel:          req.Extra.UserLevel,
		LastAgent:          req.Extra.LastAgent,
		RunningResult:      req.Extra.RunningResult,
		Testcase:           req.Extra.Testcase,
	}, nil
}

func parseOptionalID(field, value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	id, err := strconv.Atoi(value)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", field, value)
	}
	return id, nil
}
