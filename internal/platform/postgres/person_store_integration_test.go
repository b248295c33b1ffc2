//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/registry-api/internal/domain"
	"github.com/phrazzld/registry-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// newIntegrationDB starts a Postgres container and applies the embedded migrations.
func newIntegrationDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("registry_test"),
		tcpostgres.WithUsername("registry"),
		tcpostgres.WithPassword("registry_test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open(DriverName, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(ctx, db, MigrateUp, nil))
	return db
}

func TestPersonStoreIntegration(t *testing.T) {
	db := newIntegrationDB(t)
	ctx := context.Background()
	s := NewPostgresPersonStore(db, nil)

	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	ana, err := domain.NewPerson(domain.PersonFields{
		FirstName:  "Ana",
		LastName:   "García",
		BirthDate:  domain.MustBirthDate("2000-02-29"),
		Profession: "Ingeniero",
		Address:    "Calle 1",
		Phone:      "3001234567",
	}, domain.DateOf(now), now)
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, ana))
	require.NotZero(t, ana.ID)

	t.Run("round trip keeps calendar date", func(t *testing.T) {
		got, err := s.GetByID(ctx, ana.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.MustBirthDate("2000-02-29"), got.BirthDate)
		assert.Equal(t, 25, got.Age)
	})

	t.Run("check constraint on phone", func(t *testing.T) {
		bad := *ana
		bad.Phone = "123"
		err := s.Create(ctx, &bad)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})

	t.Run("stats", func(t *testing.T) {
		dates, err := s.ListBirthDates(ctx)
		require.NoError(t, err)
		assert.Contains(t, dates, domain.MustBirthDate("2000-02-29"))

		byProfession, err := s.CountByProfession(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.ProfessionStat{{Profession: "Ingeniero", Total: 1}}, byProfession)

		byMonth, err := s.CountByMonth(ctx, time.Time{})
		require.NoError(t, err)
		require.Len(t, byMonth, 1)
		assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), byMonth[0].Month)
	})

	t.Run("concurrent transactional updates serialize", func(t *testing.T) {
		births := []domain.BirthDate{
			domain.MustBirthDate("1980-01-01"),
			domain.MustBirthDate("2010-01-01"),
		}
		ref := domain.MustBirthDate("2025-06-01")

		var wg sync.WaitGroup
		for _, b := range births {
			wg.Add(1)
			go func(birth domain.BirthDate) {
				defer wg.Done()
				err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
					txStore := s.WithTx(tx)
					current, err := txStore.GetForUpdate(ctx, ana.ID)
					if err != nil {
						return err
					}
					next, err := current.ApplyUpdate(domain.PersonUpdate{BirthDate: &birth}, ref, now)
					if err != nil {
						return err
					}
					return txStore.Update(ctx, next)
				})
				assert.NoError(t, err)
			}(b)
		}
		wg.Wait()

		got, err := s.GetByID(ctx, ana.ID)
		require.NoError(t, err)
		expected, err := domain.ComputeAge(got.BirthDate, ref)
		require.NoError(t, err)
		assert.Equal(t, expected, got.Age, "stored age must match the stored birth date")
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, ana.ID))
		_, err := s.GetByID(ctx, ana.ID)
		assert.ErrorIs(t, err, store.ErrPersonNotFound)
		assert.ErrorIs(t, s.Delete(ctx, ana.ID), store.ErrPersonNotFound)
	})

	t.Run("schema version", func(t *testing.T) {
		version, err := CurrentVersion(ctx, db)
		require.NoError(t, err)
		assert.Equal(t, int64(2), version)
	})
}
