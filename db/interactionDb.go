package db

import (
	"context"
	"database/sql"
	"fmt"

	"codexp/models"

	_ "github.com/lib/pq"
)

type InteractionRepository interface {
	SaveInteraction(ctx context.Context, interaction *models.Interaction) error
	FetchRecentTurns(ctx context.Context, key models.ConversationKey, limit int) ([]models.Turn, error)
}

type PostgresInteractionRepository struct {
	db *sql.DB
}

func NewPostgresInteractionRepository(databaseURL string) (*PostgresInteractionRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresInteractionRepository{db: db}, nil
}

// SaveInteraction appends one interaction row. Rows without a lesson or
// problem id have no continuity scope and are skipped silently.
func (r *PostgresInteractionRepository) SaveInteraction(ctx context.Context, interaction *models.Interaction) error {
	if interaction.LessonID <= 0 && interaction.ProblemID <= 0 {
		return nil
	}

	query := `
		INSERT INTO ai_assistance (user_id, lesson_id, problem_id, session_id, user_query, ai_response, suggestion_type, date_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`

	_, err := r.db.ExecContext(ctx, query,
		nullableID(interaction.UserID),
		nullableID(interaction.LessonID),
		nullableID(interaction.ProblemID),
		nullableString(interaction.SessionID),
		interaction.UserQuery,
		interaction.AIResponse,
		string(interaction.SuggestionType),
	)
	if err != nil {
		return fmt.Errorf("failed to save interaction: %w", err)
	}

	return nil
}

// FetchRecentTurns returns the newest turns first, capped at limit. Callers
// that need chronological order reverse the slice themselves.
func (r *PostgresInteractionRepository) FetchRecentTurns(ctx context.Context, key models.ConversationKey, limit int) ([]models.Turn, error) {
	var rows *sql.Rows
	var err error

	switch {
	case key.SessionID != "":
		query := `
			SELECT user_query, ai_response
			FROM ai_assistance
			WHERE session_id = $1
			ORDER BY date_time DESC
			LIMIT $2`
		rows, err = r.db.QueryContext(ctx, query, key.SessionID, limit)
	case key.UserID > 0 && (key.LessonID > 0 || key.ProblemID > 0):
		query := `
			SELECT user_query, ai_response
			FROM ai_assistance
			WHERE user_id = $1
			AND (
				(lesson_id = $2 AND $2 > 0)
				OR
				(problem_id = $3 AND $3 > 0)
			)
			ORDER BY date_time DESC
			LIMIT $4`
		rows, err = r.db.QueryContext(ctx, query, key.UserID, key.LessonID, key.ProblemID, limit)
	default:
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent turns: %w", err)
	}
	defer rows.Close()

	var turns []models.Turn
	for rows.Next() {
		var turn models.Turn
		if err := rows.Scan(&turn.UserQuery, &turn.AIResponse); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate turns: %w", err)
	}

	return turns, nil
}

func (r *PostgresInteractionRepository) Close() error {
	return r.db.Close()
}

func nullableID(id int) any {
	if id <= 0 {
		return nil
	}
	return id
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
