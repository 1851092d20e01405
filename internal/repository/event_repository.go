package repository

import (
	"context"
	"errors"

	"eventbot/internal/model"
	apperrors "eventbot/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepository interface {
	Create(ctx context.Context, params model.NewEventParams) (*model.Event, error)
	ListActive(ctx context.Context) ([]*model.Event, error)
	ListWithCounts(ctx context.Context, activeOnly bool) ([]*model.EventSummary, error)
	FindByID(ctx context.Context, id int64) (*model.Event, error)
	Deactivate(ctx context.Context, id int64) error

	// Transaction methods
	FindActiveForShare(ctx context.Context, tx pgx.Tx, id int64) (*model.Event, error)
}

type EventRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &EventRepositoryImpl{
		pool: pool,
	}
}

const eventColumns = `id, title, description, event_date, created_at, is_active`

func scanEvent(row pgx.Row) (*model.Event, error) {
	var event model.Event
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.EventDate,
		&event.CreatedAt,
		&event.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *EventRepositoryImpl) Create(ctx context.Context, params model.NewEventParams) (*model.Event, error) {
	query := `
		INSERT INTO events (title, description, event_date)
		VALUES ($1, $2, $3)
		RETURNING ` + eventColumns

	return scanEvent(r.pool.QueryRow(ctx, query, params.Title, params.Description, params.EventDate))
}

func (r *EventRepositoryImpl) ListActive(ctx context.Context) ([]*model.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE is_active = TRUE
		ORDER BY event_date ASC, id ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*model.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *EventRepositoryImpl) ListWithCounts(ctx context.Context, activeOnly bool) ([]*model.EventSummary, error) {
	query := `
		SELECT e.id, e.title, e.description, e.event_date, e.created_at, e.is_active,
		       (SELECT COUNT(*) FROM registrations r WHERE r.event_id = e.id),
		       (SELECT COUNT(*) FROM rsvp_responses s WHERE s.event_id = e.id)
		FROM events e
		WHERE ($1 = FALSE OR e.is_active = TRUE)
		ORDER BY e.event_date ASC, e.id ASC
	`
	rows, err := r.pool.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]*model.EventSummary, 0)
	for rows.Next() {
		var s model.EventSummary
		err := rows.Scan(
			&s.ID,
			&s.Title,
			&s.Description,
			&s.EventDate,
			&s.CreatedAt,
			&s.IsActive,
			&s.RegistrationCount,
			&s.RsvpCount,
		)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *EventRepositoryImpl) FindByID(ctx context.Context, id int64) (*model.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1
	`

	event, err := scanEvent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

// FindActiveForShare locks the event row against concurrent deactivation for the rest of tx.
func (r *EventRepositoryImpl) FindActiveForShare(ctx context.Context, tx pgx.Tx, id int64) (*model.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1 AND is_active = TRUE
		FOR SHARE
	`

	event, err := scanEvent(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (r *EventRepositoryImpl) Deactivate(ctx context.Context, id int64) error {
	query := `
		UPDATE events
		SET is_active = FALSE
		WHERE id = $1 AND is_active = TRUE
	`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}
	return nil
}
