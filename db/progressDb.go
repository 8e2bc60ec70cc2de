package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

type ProgressRepository interface {
	GetCompletedItems(ctx context.Context, userID int) ([]string, error)
}

type PostgresProgressRepository struct {
	db *sql.DB
}

func NewPostgresProgressRepository(databaseURL string) (*PostgresProgressRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresProgressRepository{db: db}, nil
}

// GetCompletedItems returns the user's accepted problems and completed
// lessons as vector-index ids of the form "problem_<id>" / "lesson_<id>".
func (r *PostgresProgressRepository) GetCompletedItems(ctx context.Context, userID int) ([]string, error) {
	var items []string

	problemQuery := `
		SELECT DISTINCT problem_id
		FROM submissions
		WHERE user_id = $1 AND status = 'Accepted' AND problem_id IS NOT NULL`

	rows, err := r.db.QueryContext(ctx, problemQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch solved problems: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var problemID int
		if err := rows.Scan(&problemID); err != nil {
			return nil, fmt.Errorf("failed to scan solved problem: %w", err)
		}
		items = append(items, fmt.Sprintf("problem_%d", problemID))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate solved problems: %w", err)
	}

	lessonQuery := `
		SELECT DISTINCT lesson_id
		FROM lesson_progress
		WHERE user_id = $1 AND completed = true AND lesson_id IS NOT NULL`

	lessonRows, err := r.db.QueryContext(ctx, lessonQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch completed lessons: %w", err)
	}
	defer lessonRows.Close()

	for lessonRows.Next() {
		var lessonID int
		if err := lessonRows.Scan(&lessonID); err != nil {
			return nil, fmt.Errorf("failed to scan completed lesson: %w", err)
		}
		items = append(items, fmt.Sprintf("lesson_%d", lessonID))
	}
	if err := lessonRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate completed lessons: %w", err)
	}

	return items, nil
}

func (r *PostgresProgressRepository) Close() error {
	return r.db.Close()
}
