package service

import (
	"context"
	"database/sql"

	"github.com/phrazzld/registry-api/internal/domain"
	"github.com/phrazzld/registry-api/internal/store"
)

// NewPersonRepositoryAdapter creates a new adapter that allows a store.PersonStore
// to be used where a PersonRepository is expected.
func NewPersonRepositoryAdapter(personStore store.PersonStore, db *sql.DB) PersonRepository {
	return &personRepositoryAdapter{
		personStore: personStore,
		db:          db,
	}
}

// personRepositoryAdapter adapts a store.PersonStore to the PersonRepository interface
type personRepositoryAdapter struct {
	personStore store.PersonStore
	db          *sql.DB
}

// Create implements PersonRepository.Create
func (a *personRepositoryAdapter) Create(ctx context.Context, person *domain.Person) error {
	return a.personStore.Create(ctx, person)
}

// GetByID implements PersonRepository.GetByID
func (a *personRepositoryAdapter) GetByID(ctx context.Context, id int64) (*domain.Person, error) {
	return a.personStore.GetByID(ctx, id)
}

// GetForUpdate implements PersonRepository.GetForUpdate
func (a *personRepositoryAdapter) GetForUpdate(ctx context.Context, id int64) (*domain.Person, error) {
	return a.personStore.GetForUpdate(ctx, id)
}

// List implements PersonRepository.List
func (a *personRepositoryAdapter) List(ctx context.Context) ([]*domain.Person, error) {
	return a.personStore.List(ctx)
}

// Update implements PersonRepository.Update
func (a *personRepositoryAdapter) Update(ctx context.Context, person *domain.Person) error {
	return a.personStore.Update(ctx, person)
}

// Delete implements PersonRepository.Delete
func (a *personRepositoryAdapter) Delete(ctx context.Context, id int64) error {
	return a.personStore.Delete(ctx, id)
}

// WithTx implements PersonRepository.WithTx
func (a *personRepositoryAdapter) WithTx(tx *sql.Tx) PersonRepository {
	return &personRepositoryAdapter{
		personStore: a.personStore.WithTx(tx),
		db:          a.db,
	}
}

// DB implements PersonRepository.DB
func (a *personRepositoryAdapter) DB() *sql.DB {
	return a.db
}
