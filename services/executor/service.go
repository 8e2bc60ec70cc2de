package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"codexp/db"
	"codexp/models"
)

const (
	defaultPollInterval = 500 * time.Millisecond
	defaultPollAttempts = 30

	timedOutMessage = "Error: Code execution timed out."
)

// Service submits user code to the execution sandbox and polls for the
// result. Every failure mode resolves to a result string: the outcome is fed
// back into the hint agent, never raised past the coordinator.
type Service struct {
	baseURL      string
	client       *http.Client
	problems     db.ProblemRepository
	pollInterval time.Duration
	pollAttempts int
}

func NewService(baseURL string, problems db.ProblemRepository) *Service {
	return &Service{
		baseURL:      baseURL,
		client:       &http.Client{},
		problems:     problems,
		pollInterval: defaultPollInterval,
		pollAttempts: defaultPollAttempts,
	}
}

// Execute runs user code out of band. With a problem id the run is scored
// against the problem's solution and testcases; without one it is a plain
// run. Blocks until the job resolves or the polling ceiling is hit.
func (s *Service) Execute(ctx context.Context, userCode string, problemID int) string {
	if problemID > 0 {
		return s.executeProblem(ctx, userCode, problemID)
	}
	return s.executePlain(ctx, userCode)
}

func (s *Service) executePlain(ctx context.Context, userCode string) string {
	jobID, err := s.submit(ctx, "/execute", models.ExecuteRequest{Code: userCode})
	if err != nil {
		log.Printf("[ERROR] Code execution submission failed: %v", err)
		return fmt.Sprintf("Error: %v", err)
	}

	return s.poll(ctx, "/result/"+jobID, func(result *models.ExecuteResultResponse) string {
		return result.Output
	})
}

func (s *Service) executeProblem(ctx context.Context, userCode string, problemID int) string {
	solutionCode, err := s.problems.GetSolutionCode(ctx, problemID)
	if err != nil {
		log.Printf("[ERROR] Failed to load solution code for problem %d: %v", problemID, err)
		return fmt.Sprintf("Error: %v", err)
	}

	testcases, err := s.problems.GetTestCases(ctx, problemID)
	if err != nil {
		log.Printf("[ERROR] Failed to load testcases for problem %d: %v", problemID, err)
		return fmt.Sprintf("Error: %v", err)
	}

	payload := models.ExecuteProblemRequest{
		UserCode:     userCode,
		SolutionCode: solutionCode,
		TestCases:    testcases,
	}

	jobID, err := s.submit(ctx, "/execute-problem", payload)
	if err != nil {
		log.Printf("[ERROR] Problem execution submission failed: %v", err)
		return fmt.Sprintf("Error: %v", err)
	}

	return s.poll(ctx, "/result-problem/"+jobID, func(result *models.ExecuteResultResponse) string {
		resultsJSON, err := json.Marshal(result.Results)
		if err != nil {
			return fmt.Sprintf("Error: %v", err)
		}
		return string(resultsJSON)
	})
}

func (s *Service) submit(ctx context.Context, path string, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build submission request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to submit job: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("execution service returned status %d", resp.StatusCode)
	}

	var job models.ExecuteJobResponse
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return "", fmt.Errorf("failed to decode job handle: %w", err)
	}
	if job.JobID == "" {
		return "", fmt.Errorf("execution service returned no job id")
	}

	return job.JobID, nil
}

// poll checks the result endpoint at a fixed interval up to the attempt cap.
// finished resolves via onFinished, failed carries the remote error, and an
// exhausted cap resolves to the timed-out message.
func (s *Service) poll(ctx context.Context, path string, onFinished func(*models.ExecuteResultResponse) string) string {
	for attempt := 0; attempt < s.pollAttempts; attempt++ {
		result, err := s.fetchResult(ctx, path)
		if err != nil {
			log.Printf("[ERROR] Polling execution result failed: %v", err)
			return fmt.Sprintf("Error: %v", err)
		}

		switch result.Status {
		case models.JobStatusFinished:
			return onFinished(result)
		case models.JobStatusFailed:
			if result.Error != "" {
				return fmt.Sprintf("Error: %s", result.Error)
			}
			return "Error: Job failed"
		}

		select {
		case <-ctx.Done():
			return fmt.Sprintf("Error: %v", ctx.Err())
		case <-time.After(s.pollInterval):
		}
	}

	return timedOutMessage
}

func (s *Service) fetchResult(ctx context.Context, path string) (*models.ExecuteResultResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build result request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch result: %w", err)
	}
	defer resp.Body.Close()

	var result models.ExecuteResultResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}

	return &result, nil
}
