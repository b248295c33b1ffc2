package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/phrazzld/registry-api/internal/domain"
	"github.com/phrazzld/registry-api/internal/events"
)

// MockPersonRepository mocks the PersonRepository interface
type MockPersonRepository struct {
	mock.Mock
}

func (m *MockPersonRepository) Create(ctx context.Context, person *domain.Person) error {
	args := m.Called(ctx, person)
	return args.Error(0)
}

func (m *MockPersonRepository) GetByID(ctx context.Context, id int64) (*domain.Person, error) {
	args := m.Called(ctx, id)
	person, _ := args.Get(0).(*domain.Person)
	return person, args.Error(1)
}

func (m *MockPersonRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Person, error) {
	args := m.Called(ctx, id)
	person, _ := args.Get(0).(*domain.Person)
	return person, args.Error(1)
}

func (m *MockPersonRepository) List(ctx context.Context) ([]*domain.Person, error) {
	args := m.Called(ctx)
	persons, _ := args.Get(0).([]*domain.Person)
	return persons, args.Error(1)
}

func (m *MockPersonRepository) Update(ctx context.Context, person *domain.Person) error {
	args := m.Called(ctx, person)
	return args.Error(0)
}

func (m *MockPersonRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPersonRepository) WithTx(tx *sql.Tx) PersonRepository {
	args := m.Called(tx)
	return args.Get(0).(PersonRepository)
}

func (m *MockPersonRepository) DB() *sql.DB {
	args := m.Called()
	return args.Get(0).(*sql.DB)
}

// MockEventEmitter mocks events.EventEmitter
type MockEventEmitter struct {
	mock.Mock
}

func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.PersonEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockStatsStore mocks store.StatsStore
type MockStatsStore struct {
	mock.Mock
}

func (m *MockStatsStore) CountPersons(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockStatsStore) ListBirthDates(ctx context.Context) ([]domain.BirthDate, error) {
	args := m.Called(ctx)
	births, _ := args.Get(0).([]domain.BirthDate)
	return births, args.Error(1)
}

func (m *MockStatsStore) CountByProfession(ctx context.Context) ([]domain.ProfessionStat, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).([]domain.ProfessionStat)
	return stats, args.Error(1)
}

func (m *MockStatsStore) CountByMonth(ctx context.Context, since time.Time) ([]domain.MonthlyStat, error) {
	args := m.Called(ctx, since)
	stats, _ := args.Get(0).([]domain.MonthlyStat)
	return stats, args.Error(1)
}

// MockStatsCache mocks StatsCache. Get copies the configured value into dest
// through the optional Run hook set by the test.
type MockStatsCache struct {
	mock.Mock
}

func (m *MockStatsCache) Get(
	ctx context.Context,
	stat string,
	ref domain.BirthDate,
	dest any,
) (int64, bool, error) {
	args := m.Called(ctx, stat, ref, dest)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockStatsCache) Set(
	ctx context.Context,
	generation int64,
	stat string,
	ref domain.BirthDate,
	value any,
) error {
	args := m.Called(ctx, generation, stat, ref, value)
	return args.Error(0)
}
