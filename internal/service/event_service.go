package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eventbot/internal/model"
	"eventbot/internal/repository"
	apperrors "eventbot/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EventService is the store of events, registrations and RSVP answers.
// Every method is atomic; driver failures come back wrapped in apperrors.ErrStorage.
type EventService interface {
	CreateEvent(ctx context.Context, title, description, date string) (*model.Event, error)
	GetActiveEvents(ctx context.Context) ([]*model.Event, error)
	GetEvent(ctx context.Context, id int64) (*model.Event, error)
	ListEventsWithCounts(ctx context.Context, activeOnly bool) ([]*model.EventSummary, error)
	DeactivateEvent(ctx context.Context, id int64) error

	// RegisterUser is idempotent; it reports whether a new registration was created.
	RegisterUser(ctx context.Context, eventID int64, user model.Participant) (bool, error)
	GetRegistrations(ctx context.Context, eventID int64) ([]*model.Registration, error)

	// RecordRsvp inserts the answer or overwrites the user's previous one.
	RecordRsvp(ctx context.Context, eventID int64, user model.Participant, response model.RsvpAnswer) (*model.RsvpResult, error)
	GetRsvpCounts(ctx context.Context, eventID int64) (model.RsvpCounts, error)
	GetRsvpResponses(ctx context.Context, eventID int64) ([]*model.RsvpResponse, error)
}

type EventServiceImpl struct {
	pool             *pgxpool.Pool
	eventRepo        repository.EventRepository
	registrationRepo repository.RegistrationRepository
	rsvpRepo         repository.RsvpRepository
}

func NewEventService(
	pool *pgxpool.Pool,
	eventRepo repository.EventRepository,
	registrationRepo repository.RegistrationRepository,
	rsvpRepo repository.RsvpRepository,
) EventService {
	return &EventServiceImpl{
		pool:             pool,
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		rsvpRepo:         rsvpRepo,
	}
}

// storageError passes domain sentinels through and tags everything else as a storage failure.
func storageError(err error) error {
	if err == nil || errors.Is(err, apperrors.ErrEventNotFound) || errors.Is(err, apperrors.ErrValidation) {
		return err
	}
	return fmt.Errorf("%w: %w", apperrors.ErrStorage, err)
}

func (s *EventServiceImpl) CreateEvent(ctx context.Context, title, description, date string) (*model.Event, error) {
	title = strings.TrimSpace(title)
	date = strings.TrimSpace(date)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}
	if date == "" {
		return nil, fmt.Errorf("%w: date is required", apperrors.ErrValidation)
	}
	if !model.IsValidEventDate(date) {
		return nil, fmt.Errorf("%w: date %q is not YYYY-MM-DD", apperrors.ErrValidation, date)
	}

	event, err := s.eventRepo.Create(ctx, model.NewEventParams{
		Title:       title,
		Description: strings.TrimSpace(description),
		EventDate:   date,
	})
	return event, storageError(err)
}

func (s *EventServiceImpl) GetActiveEvents(ctx context.Context) ([]*model.Event, error) {
	events, err := s.eventRepo.ListActive(ctx)
	return events, storageError(err)
}

func (s *EventServiceImpl) GetEvent(ctx context.Context, id int64) (*model.Event, error) {
	event, err := s.eventRepo.FindByID(ctx, id)
	return event, storageError(err)
}

func (s *EventServiceImpl) ListEventsWithCounts(ctx context.Context, activeOnly bool) ([]*model.EventSummary, error) {
	summaries, err := s.eventRepo.ListWithCounts(ctx, activeOnly)
	return summaries, storageError(err)
}

func (s *EventServiceImpl) DeactivateEvent(ctx context.Context, id int64) error {
	return storageError(s.eventRepo.Deactivate(ctx, id))
}

func (s *EventServiceImpl) RegisterUser(ctx context.Context, eventID int64, user model.Participant) (bool, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, storageError(err)
	}
	defer tx.Rollback(ctx)

	if _, err := s.eventRepo.FindActiveForShare(ctx, tx, eventID); err != nil {
		return false, storageError(err)
	}

	created, err := s.registrationRepo.Insert(ctx, tx, eventID, user)
	if err != nil {
		return false, storageError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, storageError(err)
	}
	return created, nil
}

func (s *EventServiceImpl) GetRegistrations(ctx context.Context, eventID int64) ([]*model.Registration, error) {
	registrations, err := s.registrationRepo.ListByEventID(ctx, eventID)
	return registrations, storageError(err)
}

func (s *EventServiceImpl) RecordRsvp(ctx context.Context, eventID int64, user model.Participant, response model.RsvpAnswer) (*model.RsvpResult, error) {
	if !response.IsValid() {
		return nil, fmt.Errorf("%w: unknown rsvp response %q", apperrors.ErrValidation, response)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, storageError(err)
	}
	defer tx.Rollback(ctx)

	if _, err := s.eventRepo.FindActiveForShare(ctx, tx, eventID); err != nil {
		return nil, storageError(err)
	}

	previous, err := s.rsvpRepo.FindAnswerForUpdate(ctx, tx, eventID, user.UserID)
	if err != nil {
		return nil, storageError(err)
	}

	updated, err := s.rsvpRepo.Upsert(ctx, tx, eventID, user, response)
	if err != nil {
		return nil, storageError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storageError(err)
	}

	return &model.RsvpResult{
		Response: response,
		Updated:  updated,
		Previous: previous,
	}, nil
}

func (s *EventServiceImpl) GetRsvpCounts(ctx context.Context, eventID int64) (model.RsvpCounts, error) {
	counts, err := s.rsvpRepo.CountByEventID(ctx, eventID)
	return counts, storageError(err)
}

func (s *EventServiceImpl) GetRsvpResponses(ctx context.Context, eventID int64) ([]*model.RsvpResponse, error) {
	responses, err := s.rsvpRepo.ListByEventID(ctx, eventID)
	return responses, storageError(err)
}
