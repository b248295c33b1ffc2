package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/registry-api/internal/domain"
)

// PersonStore defines the interface for person data persistence.
type PersonStore interface {
	// Create saves a new person and sets its ID from the store.
	// The person must already be validated and carry its age snapshot.
	Create(ctx context.Context, person *domain.Person) error

	// GetByID retrieves a person by ID.
	// Returns ErrPersonNotFound if the person does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Person, error)

	// GetForUpdate is GetByID with a row lock (SELECT ... FOR UPDATE).
	// It must be called inside a transaction obtained through WithTx.
	GetForUpdate(ctx context.Context, id int64) (*domain.Person, error)

	// List returns every person ordered by ID.
	// Returns an empty slice when the table is empty.
	List(ctx context.Context) ([]*domain.Person, error)

	// Update overwrites all mutable columns of an existing person.
	// Returns ErrPersonNotFound if the person does not exist.
	Update(ctx context.Context, person *domain.Person) error

	// Delete removes a person by ID.
	// Returns ErrPersonNotFound if the person does not exist.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a PersonStore bound to the given transaction.
	//
	// Usage example:
	//   err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
	//       txStore := personStore.WithTx(tx)
	//       p, err := txStore.GetForUpdate(ctx, id)
	//       ...
	//       return txStore.Update(ctx, p)
	//   })
	WithTx(tx *sql.Tx) PersonStore
}
