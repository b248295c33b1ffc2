package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/registry-api/internal/api/shared"
	"github.com/phrazzld/registry-api/internal/domain"
	"github.com/phrazzld/registry-api/internal/service"
	"github.com/phrazzld/registry-api/internal/service/photo"
)

var fixedTime = time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

// MockPersonService is a mock implementation of service.PersonService
type MockPersonService struct {
	CreatePersonFn func(ctx context.Context, fields domain.PersonFields) (*domain.Person, error)
	GetPersonFn    func(ctx context.Context, id int64) (*domain.Person, error)
	ListPersonsFn  func(ctx context.Context) ([]*domain.Person, error)
	UpdatePersonFn func(ctx context.Context, id int64, upd domain.PersonUpdate) (*domain.Person, error)
	UpdatePhotoFn  func(ctx context.Context, id int64, photoURL string) (*domain.Person, error)
	DeletePersonFn func(ctx context.Context, id int64) error
}

var _ service.PersonService = (*MockPersonService)(nil)

// CreatePerson implements service.PersonService
func (m *MockPersonService) CreatePerson(ctx context.Context, fields domain.PersonFields) (*domain.Person, error) {
	if m.CreatePersonFn != nil {
		return m.CreatePersonFn(ctx, fields)
	}
	return nil, nil
}

// GetPerson implements service.PersonService
func (m *MockPersonService) GetPerson(ctx context.Context, id int64) (*domain.Person, error) {
	if m.GetPersonFn != nil {
		return m.GetPersonFn(ctx, id)
	}
	return nil, nil
}

// ListPersons implements service.PersonService
func (m *MockPersonService) ListPersons(ctx context.Context) ([]*domain.Person, error) {
	if m.ListPersonsFn != nil {
		return m.ListPersonsFn(ctx)
	}
	return nil, nil
}

// UpdatePerson implements service.PersonService
func (m *MockPersonService) UpdatePerson(
	ctx context.Context,
	id int64,
	upd domain.PersonUpdate,
) (*domain.Person, error) {
	if m.UpdatePersonFn != nil {
		return m.UpdatePersonFn(ctx, id, upd)
	}
	return nil, nil
}

// UpdatePhoto implements service.PersonService
func (m *MockPersonService) UpdatePhoto(ctx context.Context, id int64, photoURL string) (*domain.Person, error) {
	if m.UpdatePhotoFn != nil {
		return m.UpdatePhotoFn(ctx, id, photoURL)
	}
	return nil, nil
}

// DeletePerson implements service.PersonService
func (m *MockPersonService) DeletePerson(ctx context.Context, id int64) error {
	if m.DeletePersonFn != nil {
		return m.DeletePersonFn(ctx, id)
	}
	return nil
}

// MockDashboardStats is a mock implementation of DashboardStats
type MockDashboardStats struct {
	ByProfessionFn func(ctx context.Context) ([]domain.ProfessionStat, error)
	ByAgeRangeFn   func(ctx context.Context) (domain.AgeRangeHistogram, error)
	ByMonthFn      func(ctx context.Context, since time.Time) ([]domain.MonthlyStat, error)
	SummaryFn      func(ctx context.Context) (*service.DashboardSummary, error)
}

// ByProfession implements DashboardStats
func (m *MockDashboardStats) ByProfession(ctx context.Context) ([]domain.ProfessionStat, error) {
	if m.ByProfessionFn != nil {
		return m.ByProfessionFn(ctx)
	}
	return []domain.ProfessionStat{}, nil
}

// ByAgeRange implements DashboardStats
func (m *MockDashboardStats) ByAgeRange(ctx context.Context) (domain.AgeRangeHistogram, error) {
	if m.ByAgeRangeFn != nil {
		return m.ByAgeRangeFn(ctx)
	}
	return domain.AgeRangeHistogram{}, nil
}

// ByMonth implements DashboardStats
func (m *MockDashboardStats) ByMonth(ctx context.Context, since time.Time) ([]domain.MonthlyStat, error) {
	if m.ByMonthFn != nil {
		return m.ByMonthFn(ctx, since)
	}
	return []domain.MonthlyStat{}, nil
}

// Summary implements DashboardStats
func (m *MockDashboardStats) Summary(ctx context.Context) (*service.DashboardSummary, error) {
	if m.SummaryFn != nil {
		return m.SummaryFn(ctx)
	}
	return &service.DashboardSummary{}, nil
}

func testPerson(id int64) *domain.Person {
	return &domain.Person{
		ID:         id,
		FirstName:  "Ana",
		LastName:   "García",
		BirthDate:  domain.MustBirthDate("1990-05-15"),
		Age:        35,
		Profession: "Ingeniero",
		Address:    "Calle 1 #2-3",
		Phone:      "3001234567",
		CreatedAt:  fixedTime,
		UpdatedAt:  fixedTime,
	}
}

// newTestRouter mounts the handlers on the production paths.
func newTestRouter(t *testing.T, persons service.PersonService, stats DashboardStats) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ph := NewPersonHandler(persons, photo.NewEncoder(1<<10), logger)
	dh := NewDashboardHandler(stats, logger)

	r := chi.NewRouter()
	r.Post("/api/form/create", ph.CreatePerson)
	r.Get("/api/form/all", ph.ListPersons)
	r.Get("/api/form/{id}", ph.GetPerson)
	r.Put("/api/form/{id}", ph.UpdatePerson)
	r.Delete("/api/form/{id}", ph.DeletePerson)
	r.Put("/api/form/{id}/photo", ph.UploadPhoto)
	r.Get("/api/dashboard/profession", dh.ByProfession)
	r.Get("/api/dashboard/age-range", dh.ByAgeRange)
	r.Get("/api/dashboard/month", dh.ByMonth)
	r.Get("/api/dashboard/summary", dh.Summary)
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var resp shared.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

// personEnvelope mirrors shared.MessageResponse with a typed payload.
type personEnvelope struct {
	Message string         `json:"message"`
	Data    PersonResponse `json:"data"`
}
