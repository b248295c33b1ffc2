package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/registry-api/internal/domain"
	"github.com/phrazzld/registry-api/internal/events"
	"github.com/phrazzld/registry-api/internal/platform/logger"
	"github.com/phrazzld/registry-api/internal/platform/metrics"
	"github.com/phrazzld/registry-api/internal/platform/requesttime"
	"github.com/phrazzld/registry-api/internal/redact"
	"github.com/phrazzld/registry-api/internal/store"
)

// PersonRepository defines the repository interface for the service layer.
// It is aligned with store.PersonStore plus access to the database handle
// for transactions.
type PersonRepository interface {
	// Create saves a new person to the store
	Create(ctx context.Context, person *domain.Person) error

	// GetByID retrieves a person by its ID
	GetByID(ctx context.Context, id int64) (*domain.Person, error)

	// GetForUpdate retrieves a person and locks its row until the
	// surrounding transaction ends
	GetForUpdate(ctx context.Context, id int64) (*domain.Person, error)

	// List returns all persons ordered by ID
	List(ctx context.Context) ([]*domain.Person, error)

	// Update saves changes to an existing person
	Update(ctx context.Context, person *domain.Person) error

	// Delete removes a person by its ID
	Delete(ctx context.Context, id int64) error

	// WithTx returns a new repository instance that uses the provided transaction
	WithTx(tx *sql.Tx) PersonRepository

	// DB returns the underlying database connection
	DB() *sql.DB
}

// PersonService provides person registry operations.
//
// Every operation derives its reference date from the request time in ctx
// (see requesttime), falling back to the service clock. Returned persons
// carry the age as of that reference date, not the stored snapshot.
type PersonService interface {
	// CreatePerson validates fields, derives the age and stores the person
	CreatePerson(ctx context.Context, fields domain.PersonFields) (*domain.Person, error)

	// GetPerson retrieves a person by ID
	GetPerson(ctx context.Context, id int64) (*domain.Person, error)

	// ListPersons retrieves all persons
	ListPersons(ctx context.Context) ([]*domain.Person, error)

	// UpdatePerson applies a partial update inside a transaction.
	// The age snapshot is recomputed only when the birth date changes.
	UpdatePerson(ctx context.Context, id int64, upd domain.PersonUpdate) (*domain.Person, error)

	// UpdatePhoto replaces the photo reference of a person
	UpdatePhoto(ctx context.Context, id int64, photoURL string) (*domain.Person, error)

	// DeletePerson removes a person
	DeletePerson(ctx context.Context, id int64) error
}

// personServiceImpl implements the PersonService interface
type personServiceImpl struct {
	repo         PersonRepository
	eventEmitter events.EventEmitter
	metrics      *metrics.Metrics
	clock        requesttime.Clock
	logger       *slog.Logger
}

// NewPersonService creates a new PersonService.
// It returns an error if any of the required dependencies are nil.
// A nil metrics disables instrumentation and a nil clock uses the system clock.
func NewPersonService(
	repo PersonRepository,
	eventEmitter events.EventEmitter,
	m *metrics.Metrics,
	clock requesttime.Clock,
	logger *slog.Logger,
) (PersonService, error) {
	if repo == nil {
		return nil, &PersonServiceError{
			Operation: "create_service",
			Message:   "repo cannot be nil",
		}
	}
	if eventEmitter == nil {
		return nil, &PersonServiceError{
			Operation: "create_service",
			Message:   "eventEmitter cannot be nil",
		}
	}
	if clock == nil {
		clock = requesttime.SystemClock
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &personServiceImpl{
		repo:         repo,
		eventEmitter: eventEmitter,
		metrics:      m,
		clock:        clock,
		logger:       logger.With(slog.String("component", "person_service")),
	}, nil
}

// CreatePerson implements PersonService.CreatePerson
func (s *personServiceImpl) CreatePerson(
	ctx context.Context,
	fields domain.PersonFields,
) (*domain.Person, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := requesttime.Now(ctx, s.clock)
	ref := domain.DateOf(now)

	person, err := domain.NewPerson(fields, ref, now)
	if err != nil {
		s.metrics.RecordAgeRejection(err)
		log.Warn("rejected person",
			redact.ErrorAttr(err),
			slog.String("reference_date", ref.String()))
		return nil, NewPersonServiceError("create_person", "invalid person", err)
	}

	if err := s.repo.Create(ctx, person); err != nil {
		log.Error("failed to save person", redact.ErrorAttr(err))
		return nil, NewPersonServiceError("create_person", "failed to save person", err)
	}

	s.metrics.IncrementPersonsCreated()
	log.Info("person created",
		slog.Int64("person_id", person.ID),
		slog.Int("age", person.Age))

	s.emit(ctx, events.PersonCreated, person.ID, now)
	return person, nil
}

// GetPerson implements PersonService.GetPerson
func (s *personServiceImpl) GetPerson(ctx context.Context, id int64) (*domain.Person, error) {
	person, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrPersonNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to retrieve person",
			redact.ErrorAttr(err),
			slog.Int64("person_id", id))
		return nil, NewPersonServiceError("get_person", "failed to retrieve person", err)
	}

	s.refreshAge(ctx, person, requesttime.ReferenceDate(ctx, s.clock))
	return person, nil
}

// ListPersons implements PersonService.ListPersons
func (s *personServiceImpl) ListPersons(ctx context.Context) ([]*domain.Person, error) {
	persons, err := s.repo.List(ctx)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list persons",
			redact.ErrorAttr(err))
		return nil, NewPersonServiceError("list_persons", "failed to list persons", err)
	}

	ref := requesttime.ReferenceDate(ctx, s.clock)
	for _, p := range persons {
		s.refreshAge(ctx, p, ref)
	}
	return persons, nil
}

// UpdatePerson implements PersonService.UpdatePerson
func (s *personServiceImpl) UpdatePerson(
	ctx context.Context,
	id int64,
	upd domain.PersonUpdate,
) (*domain.Person, error) {
	eventType := events.PersonUpdated
	if upd.PhotoURL != nil && upd.FirstName == nil && upd.LastName == nil && upd.BirthDate == nil &&
		upd.Profession == nil && upd.Address == nil && upd.Phone == nil {
		eventType = events.PersonPhotoUpdated
	}
	return s.update(ctx, "update_person", id, upd, eventType)
}

// UpdatePhoto implements PersonService.UpdatePhoto
func (s *personServiceImpl) UpdatePhoto(ctx context.Context, id int64, photoURL string) (*domain.Person, error) {
	return s.update(ctx, "update_photo", id, domain.PersonUpdate{PhotoURL: &photoURL}, events.PersonPhotoUpdated)
}

// update runs get-for-update, apply and save in one transaction so two
// concurrent updates of the same person serialise on the row lock and the
// stored age always matches the stored birth date.
func (s *personServiceImpl) update(
	ctx context.Context,
	operation string,
	id int64,
	upd domain.PersonUpdate,
	eventType events.EventType,
) (*domain.Person, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.Int64("person_id", id))
	now := requesttime.Now(ctx, s.clock)
	ref := domain.DateOf(now)

	var updated *domain.Person
	err := store.RunInTransaction(ctx, s.repo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txRepo := s.repo.WithTx(tx)

		current, err := txRepo.GetForUpdate(ctx, id)
		if err != nil {
			if store.IsNotFoundError(err) {
				return ErrPersonNotFound
			}
			log.Error("failed to retrieve person for update", redact.ErrorAttr(err))
			return NewPersonServiceError(operation, "failed to retrieve person", err)
		}

		next, err := current.ApplyUpdate(upd, ref, now)
		if err != nil {
			s.metrics.RecordAgeRejection(err)
			log.Warn("rejected person update",
				redact.ErrorAttr(err),
				slog.String("reference_date", ref.String()))
			return NewPersonServiceError(operation, "invalid person", err)
		}

		if err := txRepo.Update(ctx, next); err != nil {
			log.Error("failed to save person", redact.ErrorAttr(err))
			return NewPersonServiceError(operation, "failed to save person", err)
		}

		updated = next
		return nil
	})
	if err != nil {
		var svcErr *PersonServiceError
		if errors.Is(err, ErrPersonNotFound) || errors.As(err, &svcErr) {
			return nil, err
		}
		log.Error("person update transaction failed", redact.ErrorAttr(err))
		return nil, NewPersonServiceError(operation, "transaction failed", err)
	}

	s.metrics.IncrementPersonsUpdated()
	log.Info("person updated",
		slog.String("operation", operation),
		slog.Int("age", updated.Age))

	s.emit(ctx, eventType, id, now)
	s.refreshAge(ctx, updated, ref)
	return updated, nil
}

// DeletePerson implements PersonService.DeletePerson
func (s *personServiceImpl) DeletePerson(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.repo.Delete(ctx, id); err != nil {
		if store.IsNotFoundError(err) {
			return ErrPersonNotFound
		}
		log.Error("failed to delete person",
			redact.ErrorAttr(err),
			slog.Int64("person_id", id))
		return NewPersonServiceError("delete_person", "failed to delete person", err)
	}

	s.metrics.IncrementPersonsDeleted()
	log.Info("person deleted", slog.Int64("person_id", id))

	s.emit(ctx, events.PersonDeleted, id, requesttime.Now(ctx, s.clock))
	return nil
}

// refreshAge replaces the stored age snapshot with the age as of ref.
// A birth date after ref (clock skew between writers) keeps the snapshot.
func (s *personServiceImpl) refreshAge(ctx context.Context, p *domain.Person, ref domain.BirthDate) {
	age, err := p.AgeAt(ref)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("keeping stored age snapshot",
			redact.ErrorAttr(err),
			slog.Int64("person_id", p.ID),
			slog.String("reference_date", ref.String()))
		return
	}
	p.Age = age
}

// emit publishes a person event. The write it describes is already
// committed, so a handler failure is logged and not returned.
func (s *personServiceImpl) emit(ctx context.Context, eventType events.EventType, id int64, at time.Time) {
	event := events.NewPersonEvent(eventType, id, at)
	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to emit person event",
			redact.ErrorAttr(err),
			slog.String("event_type", string(eventType)),
			slog.String("event_id", event.ID.String()),
			slog.Int64("person_id", id))
	}
}
