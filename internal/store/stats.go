package store

import (
	"context"
	"time"

	"github.com/phrazzld/registry-api/internal/domain"
)

// StatsStore defines the aggregate queries behind the dashboard.
// Ages are never read from the stored snapshot; callers derive them from
// the birth dates returned by ListBirthDates.
type StatsStore interface {
	// CountPersons returns the number of registered persons.
	CountPersons(ctx context.Context) (int, error)

	// ListBirthDates returns the birth date of every registered person.
	ListBirthDates(ctx context.Context) ([]domain.BirthDate, error)

	// CountByProfession groups persons by profession, largest group first.
	CountByProfession(ctx context.Context) ([]domain.ProfessionStat, error)

	// CountByMonth groups persons by the calendar month of their creation
	// time, oldest month first. A zero since means no lower bound.
	CountByMonth(ctx context.Context, since time.Time) ([]domain.MonthlyStat, error)
}
