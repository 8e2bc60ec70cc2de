package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"codexp/models"

	"github.com/gorilla/mux"
)

// TunerStepper advances the gamified tuner one step.
type TunerStepper interface {
	Step(logs, userActionMetrics map[string]float64) (string, map[string]float64)
}

type TunerHandler struct {
	agent TunerStepper
}

func NewTunerHandler(agent TunerStepper) *TunerHandler {
	return &TunerHandler{agent: agent}
}

func (h *TunerHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/ai/tuner-step", h.Step).Methods("POST")
}

func (h *TunerHandler) Step(w http.ResponseWriter, r *http.Request) {
	var req models.TunerStepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Failed to decode tuner request JSON: %v", err)
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if req.Logs == nil {
		req.Logs = map[string]float64{}
	}

	action, logs := h.agent.Step(req.Logs, req.UserActionMetrics)
	writeJSONResponse(w, http.StatusOK, models.TunerStepResponse{Action: action, Logs: logs})
}
