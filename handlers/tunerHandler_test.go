package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"codexp/models"

	"github.com/gorilla/mux"
)

type stubTuner struct {
	action string
	logs   map[string]float64
}

func (s *stubTuner) Step(logs, userActionMetrics map[string]float64) (string, map[string]float64) {
	s.logs = logs
	return s.action, logs
}

func newTunerRouter(agent *stubTuner) *mux.Router {
	router := mux.NewRouter()
	NewTunerHandler(agent).RegisterRoutes(router)
	return router
}

func TestTunerStep(t *testing.T) {
	agent := &stubTuner{action: "give_hint"}
	router := newTunerRouter(agent)

	body := `{"logs": {"performance": 0.8}, "user_action_metrics": {"gain": 1.5}}`
	req := httptest.NewRequest("POST", "/api/ai/tuner-step", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rr.Code)
	}

	var resp models.TunerStepResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Action != "give_hint" {
		t.Errorf("action = %q", resp.Action)
	}
	if agent.logs["performance"] != 0.8 {
		t.Errorf("Step() received logs %v", agent.logs)
	}
}

func TestTunerStepEmptyLogs(t *testing.T) {
	agent := &stubTuner{action: "show_motivation"}
	router := newTunerRouter(agent)

	req := httptest.NewRequest("POST", "/api/ai/tuner-step", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rr.Code)
	}
	if agent.logs == nil {
		t.Error("Step() received nil logs, expected an empty map")
	}
}

func TestTunerStepBadJSON(t *testing.T) {
	router := newTunerRouter(&stubTuner{})

	req := httptest.NewRequest("POST", "/api/ai/tuner-step", strings.NewReader(`{"logs": `))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", rr.Code)
	}
}
