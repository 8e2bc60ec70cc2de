package db

import (
	"context"
	"database/sql"
	"fmt"

	"codexp/models"

	_ "github.com/lib/pq"
)

type ProblemRepository interface {
	GetSolutionCode(ctx context.Context, problemID int) (string, error)
	GetTestCases(ctx context.Context, problemID int) ([]models.TestCase, error)
}

type PostgresProblemRepository struct {
	db *sql.DB
}

func NewPostgresProblemRepository(databaseURL string) (*PostgresProblemRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresProblemRepository{db: db}, nil
}

func (r *PostgresProblemRepository) GetSolutionCode(ctx context.Context, problemID int) (string, error) {
	query := `SELECT solution_code FROM problems WHERE id = $1`

	var solutionCode string
	err := r.db.QueryRowContext(ctx, query, problemID).Scan(&solutionCode)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to get solution code: %w", err)
	}

	return solutionCode, nil
}

func (r *PostgresProblemRepository) GetTestCases(ctx context.Context, problemID int) ([]models.TestCase, error) {
	query := `SELECT id, input FROM test_cases WHERE problem_id = $1`

	rows, err := r.db.QueryContext(ctx, query, problemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get testcases: %w", err)
	}
	defer rows.Close()

	var testcases []models.TestCase
	for rows.Next() {
		var tc models.TestCase
		if err := rows.Scan(&tc.ID, &tc.Input); err != nil {
			return nil, fmt.Errorf("failed to scan testcase: %w", err)
		}
		testcases = append(testcases, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate testcases: %w", err)
	}

	return testcases, nil
}

func (r *PostgresProblemRepository) Close() error {
	return r.db.Close()
}
