package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"codexp/models"
	"codexp/services/llm"

	"github.com/gorilla/mux"
)

// FeedbackProvider reviews submitted code and streams the feedback text.
type FeedbackProvider interface {
	Stream(ctx context.Context, req *models.FeedbackRequest) llm.TokenStream
}

type FeedbackHandler struct {
	service FeedbackProvider
}

func NewFeedbackHandler(service FeedbackProvider) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

func (h *FeedbackHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/ai/feedback", h.Feedback).Methods("POST")
}

func (h *FeedbackHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	log.Printf("[INFO] Received feedback request")

	var req models.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Failed to decode feedback request JSON: %v", err)
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if req.ProblemTitle == "" || req.ProblemDescription == "" || req.UserCode == "" {
		writeErrorResponse(w, http.StatusBadRequest, "problem_title, problem_description and user_code are required")
		return
	}

	var feedback strings.Builder
	for token, err := range h.service.Stream(r.Context(), &req) {
		if err != nil {
			log.Printf("[ERROR] Feedback generation failed: %v", err)
			writeErrorResponse(w, http.StatusInternalServerError, err.Error())
			return
		}
		feedback.WriteString(token)
	}

	log.Printf("[INFO] Feedback generation completed successfully")
	writeJSONResponse(w, http.StatusOK, models.FeedbackResponse{Feedback: feedback.String()})
}
