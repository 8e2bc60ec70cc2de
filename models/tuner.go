package models

// TunerStepRequest is the inbound payload of POST /api/ai/tuner-step.
type TunerStepRequest struct {
	Logs              map[string]float64 `json:"logs"`
	UserActionMetrics map[string]float64 `json:"user_action_metrics"`
}

// TunerStepResponse carries the chosen action and the updated logs.
type TunerStepResponse struct {
	Action string             `json:"action"`
	Logs   map[string]float64 `json:"logs"`
}
