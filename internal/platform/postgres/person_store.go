package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/registry-api/internal/domain"
	"github.com/phrazzld/registry-api/internal/platform/logger"
	"github.com/phrazzld/registry-api/internal/store"
)

const personColumns = `id, first_name, last_name, birth_date, age, profession, address, phone, photo_url, created_at, updated_at`

// PostgresPersonStore implements store.PersonStore and store.StatsStore
// using a PostgreSQL database as the storage backend.
type PostgresPersonStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPersonStore creates a new PostgreSQL implementation of the PersonStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresPersonStore(db store.DBTX, logger *slog.Logger) *PostgresPersonStore {
	if db == nil {
		// ALLOW-PANIC: constructor misuse
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPersonStore{
		db:     db,
		logger: logger.With(slog.String("component", "person_store")),
	}
}

var (
	_ store.PersonStore = (*PostgresPersonStore)(nil)
	_ store.StatsStore  = (*PostgresPersonStore)(nil)
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(row rowScanner) (*domain.Person, error) {
	var (
		p        domain.Person
		photoURL sql.NullString
	)
	err := row.Scan(
		&p.ID,
		&p.FirstName,
		&p.LastName,
		&p.BirthDate,
		&p.Age,
		&p.Profession,
		&p.Address,
		&p.Phone,
		&photoURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if photoURL.Valid {
		p.PhotoURL = &photoURL.String
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// Create implements store.PersonStore.Create.
func (s *PostgresPersonStore) Create(ctx context.Context, person *domain.Person) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO persons (first_name, last_name, birth_date, age, profession, address, phone, photo_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		person.FirstName,
		person.LastName,
		person.BirthDate,
		person.Age,
		person.Profession,
		person.Address,
		person.Phone,
		nullString(person.PhotoURL),
		person.CreatedAt,
		person.UpdatedAt,
	).Scan(&person.ID)
	if err != nil {
		log.Error("failed to create person", slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Info("person created", slog.Int64("person_id", person.ID))
	return nil
}

// GetByID implements store.PersonStore.GetByID.
func (s *PostgresPersonStore) GetByID(ctx context.Context, id int64) (*domain.Person, error) {
	return s.get(ctx, id, false)
}

// GetForUpdate implements store.PersonStore.GetForUpdate.
func (s *PostgresPersonStore) GetForUpdate(ctx context.Context, id int64) (*domain.Person, error) {
	return s.get(ctx, id, true)
}

func (s *PostgresPersonStore) get(ctx context.Context, id int64, forUpdate bool) (*domain.Person, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + personColumns + ` FROM persons WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	p, err := scanPerson(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("person not found", slog.Int64("person_id", id))
			return nil, store.ErrPersonNotFound
		}
		log.Error("failed to get person by ID",
			slog.String("error", err.Error()),
			slog.Int64("person_id", id))
		return nil, MapError(err)
	}
	return p, nil
}

// List implements store.PersonStore.List.
func (s *PostgresPersonStore) List(ctx context.Context) ([]*domain.Person, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `SELECT `+personColumns+` FROM persons ORDER BY id`)
	if err != nil {
		log.Error("failed to list persons", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	persons := make([]*domain.Person, 0)
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			log.Error("failed to scan person", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		persons = append(persons, p)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	log.Debug("persons listed", slog.Int("count", len(persons)))
	return persons, nil
}

// Update implements store.PersonStore.Update.
func (s *PostgresPersonStore) Update(ctx context.Context, person *domain.Person) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE persons
		SET first_name = $1, last_name = $2, birth_date = $3, age = $4, profession = $5,
		    address = $6, phone = $7, photo_url = $8, updated_at = $9
		WHERE id = $10
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		person.FirstName,
		person.LastName,
		person.BirthDate,
		person.Age,
		person.Profession,
		person.Address,
		person.Phone,
		nullString(person.PhotoURL),
		person.UpdatedAt,
		person.ID,
	)
	if err != nil {
		log.Error("failed to update person",
			slog.String("error", err.Error()),
			slog.Int64("person_id", person.ID))
		return fmt.Errorf("%w: %w", store.ErrUpdateFailed, MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrPersonNotFound); err != nil {
		return err
	}

	log.Info("person updated", slog.Int64("person_id", person.ID))
	return nil
}

// Delete implements store.PersonStore.Delete.
func (s *PostgresPersonStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM persons WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete person",
			slog.String("error", err.Error()),
			slog.Int64("person_id", id))
		return fmt.Errorf("%w: %w", store.ErrDeleteFailed, MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrPersonNotFound); err != nil {
		return err
	}

	log.Info("person deleted", slog.Int64("person_id", id))
	return nil
}

// WithTx implements store.PersonStore.WithTx.
func (s *PostgresPersonStore) WithTx(tx *sql.Tx) store.PersonStore {
	return &PostgresPersonStore{
		db:     tx,
		logger: s.logger,
	}
}

// CountPersons implements store.StatsStore.CountPersons.
func (s *PostgresPersonStore) CountPersons(ctx context.Context) (int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM persons`).Scan(&total); err != nil {
		return 0, MapError(err)
	}
	return total, nil
}

// ListBirthDates implements store.StatsStore.ListBirthDates.
func (s *PostgresPersonStore) ListBirthDates(ctx context.Context) ([]domain.BirthDate, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT birth_date FROM persons`)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	dates := make([]domain.BirthDate, 0)
	for rows.Next() {
		var d domain.BirthDate
		if err := rows.Scan(&d); err != nil {
			return nil, MapError(err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return dates, nil
}

// CountByProfession implements store.StatsStore.CountByProfession.
func (s *PostgresPersonStore) CountByProfession(ctx context.Context) ([]domain.ProfessionStat, error) {
	query := `
		SELECT profession, COUNT(*) AS total
		FROM persons
		GROUP BY profession
		ORDER BY total DESC, profession ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	stats := make([]domain.ProfessionStat, 0)
	for rows.Next() {
		var st domain.ProfessionStat
		if err := rows.Scan(&st.Profession, &st.Total); err != nil {
			return nil, MapError(err)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return stats, nil
}

// CountByMonth implements store.StatsStore.CountByMonth.
func (s *PostgresPersonStore) CountByMonth(ctx context.Context, since time.Time) ([]domain.MonthlyStat, error) {
	query := `
		SELECT date_trunc('month', created_at AT TIME ZONE 'UTC') AS month, COUNT(*) AS total
		FROM persons
		WHERE $1::timestamptz IS NULL OR created_at >= $1::timestamptz
		GROUP BY month
		ORDER BY month ASC
	`
	var lower sql.NullTime
	if !since.IsZero() {
		lower = sql.NullTime{Time: since.UTC(), Valid: true}
	}

	rows, err := s.db.QueryContext(ctx, query, lower)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	stats := make([]domain.MonthlyStat, 0)
	for rows.Next() {
		var (
			month time.Time
			total int
		)
		if err := rows.Scan(&month, &total); err != nil {
			return nil, MapError(err)
		}
		m := month.UTC()
		stats = append(stats, domain.MonthlyStat{
			Month: time.Date(m.Year(), m.Month(), 1, 0, 0, 0, 0, time.UTC),
			Total: total,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read monthly stats: %w", MapError(err))
	}
	return stats, nil
}
