package repository

import (
	"context"
	"errors"

	"eventbot/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RegistrationRepository interface {
	ListByEventID(ctx context.Context, eventID int64) ([]*model.Registration, error)

	// Transaction methods
	Insert(ctx context.Context, tx pgx.Tx, eventID int64, participant model.Participant) (bool, error)
}

type RegistrationRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewRegistrationRepository(pool *pgxpool.Pool) RegistrationRepository {
	return &RegistrationRepositoryImpl{
		pool: pool,
	}
}

// Insert adds the registration unless the pair already exists.
// It reports whether a new row was created; the unique constraint makes it race safe.
func (r *RegistrationRepositoryImpl) Insert(ctx context.Context, tx pgx.Tx, eventID int64, participant model.Participant) (bool, error) {
	query := `
		INSERT INTO registrations (event_id, user_id, username, first_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id, user_id) DO NOTHING
		RETURNING id
	`

	var id int64
	err := tx.QueryRow(ctx, query,
		eventID, participant.UserID, participant.Username, participant.FirstName,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *RegistrationRepositoryImpl) ListByEventID(ctx context.Context, eventID int64) ([]*model.Registration, error) {
	query := `
		SELECT id, event_id, user_id, username, first_name, registered_at
		FROM registrations
		WHERE event_id = $1
		ORDER BY registered_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	registrations := make([]*model.Registration, 0)
	for rows.Next() {
		var reg model.Registration
		err := rows.Scan(
			&reg.ID,
			&reg.EventID,
			&reg.UserID,
			&reg.Username,
			&reg.FirstName,
			&reg.RegisteredAt,
		)
		if err != nil {
			return nil, err
		}
		registrations = append(registrations, &reg)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return registrations, nil
}
