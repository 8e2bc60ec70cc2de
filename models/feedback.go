package models

// FeedbackRequest is the inbound payload of POST /api/ai/feedback.
type FeedbackRequest struct {
	ProblemTitle       string `json:"problem_title"`
	ProblemDescription string `json:"problem_description"`
	UserCode           string `json:"user_code"`
	RunningResult      string `json:"running_result,omitempty"`
}

// FeedbackResponse wraps the collected feedback text.
type FeedbackResponse struct {
	Feedback string `json:"feedback"`
}
