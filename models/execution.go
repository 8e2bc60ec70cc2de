package models

// Job statuses reported by the code-execution service while polling.
const (
	JobStatusPending  = "pending"
	JobStatusFinished = "finished"
	JobStatusFailed   = "failed"
)

// ExecuteJobResponse is the handle returned by a submission call.
type ExecuteJobResponse struct {
	JobID string `json:"job_id"`
}

// ExecuteResultResponse is one poll response. Output is set for plain runs,
// Results for problem-scoped runs, Error when the job failed.
type ExecuteResultResponse struct {
	Status  string `json:"status"`
	Output  string `json:"output,omitempty"`
	Results any    `json:"results,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ExecuteRequest is the plain submission shape.
type ExecuteRequest struct {
	Code string `json:"code"`
}

// ExecuteProblemRequest is the problem-scoped submission shape.
type ExecuteProblemRequest struct {
	UserCode     string     `json:"userCode"`
	SolutionCode string     `json:"solutionCode"`
	TestCases    []TestCase `json:"testCases"`
}
