package repository

import (
	"context"
	"errors"

	"eventbot/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RsvpRepository interface {
	CountByEventID(ctx context.Context, eventID int64) (model.RsvpCounts, error)
	ListByEventID(ctx context.Context, eventID int64) ([]*model.RsvpResponse, error)

	// Transaction methods
	FindAnswerForUpdate(ctx context.Context, tx pgx.Tx, eventID, userID int64) (*model.RsvpAnswer, error)
	Upsert(ctx context.Context, tx pgx.Tx, eventID int64, participant model.Participant, answer model.RsvpAnswer) (bool, error)
}

type RsvpRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewRsvpRepository(pool *pgxpool.Pool) RsvpRepository {
	return &RsvpRepositoryImpl{
		pool: pool,
	}
}

// FindAnswerForUpdate returns the current answer (nil when none) and locks the row.
func (r *RsvpRepositoryImpl) FindAnswerForUpdate(ctx context.Context, tx pgx.Tx, eventID, userID int64) (*model.RsvpAnswer, error) {
	query := `
		SELECT response
		FROM rsvp_responses
		WHERE event_id = $1 AND user_id = $2
		FOR UPDATE
	`

	var answer model.RsvpAnswer
	err := tx.QueryRow(ctx, query, eventID, userID).Scan(&answer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &answer, nil
}

// Upsert inserts the answer or overwrites the existing one in place.
// It reports whether an existing row was updated.
func (r *RsvpRepositoryImpl) Upsert(ctx context.Context, tx pgx.Tx, eventID int64, participant model.Participant, answer model.RsvpAnswer) (bool, error) {
	query := `
		INSERT INTO rsvp_responses (event_id, user_id, username, first_name, response)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id, user_id) DO UPDATE
		SET response = EXCLUDED.response, responded_at = NOW()
		RETURNING (xmax <> 0)
	`

	var updated bool
	err := tx.QueryRow(ctx, query,
		eventID, participant.UserID, participant.Username, participant.FirstName, string(answer),
	).Scan(&updated)
	if err != nil {
		return false, err
	}
	return updated, nil
}

func (r *RsvpRepositoryImpl) CountByEventID(ctx context.Context, eventID int64) (model.RsvpCounts, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE response = $2),
			COUNT(*) FILTER (WHERE response = $3)
		FROM rsvp_responses
		WHERE event_id = $1
	`

	var counts model.RsvpCounts
	err := r.pool.QueryRow(ctx, query,
		eventID, string(model.RsvpAttending), string(model.RsvpNotAttending),
	).Scan(&counts.Attending, &counts.NotAttending)
	if err != nil {
		return model.RsvpCounts{}, err
	}
	return counts, nil
}

func (r *RsvpRepositoryImpl) ListByEventID(ctx context.Context, eventID int64) ([]*model.RsvpResponse, error) {
	query := `
		SELECT id, event_id, user_id, username, first_name, response, responded_at
		FROM rsvp_responses
		WHERE event_id = $1
		ORDER BY responded_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	responses := make([]*model.RsvpResponse, 0)
	for rows.Next() {
		var resp model.RsvpResponse
		err := rows.Scan(
			&resp.ID,
			&resp.EventID,
			&resp.UserID,
			&resp.Username,
			&resp.FirstName,
			&resp.Response,
			&resp.RespondedAt,
		)
		if err != nil {
			return nil, err
		}
		responses = append(responses, &resp)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return responses, nil
}
