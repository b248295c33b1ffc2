package api

import (
	"time"

	"github.com/phrazzld/registry-api/internal/domain"
)

// CreatePersonRequest defines the payload for POST /api/form/create.
type CreatePersonRequest struct {
	FirstName  string  `json:"first_name" validate:"required,max=100"`
	LastName   string  `json:"last_name"  validate:"required,max=100"`
	BirthDate  string  `json:"birth_date" validate:"required"`
	Profession string  `json:"profession" validate:"required,max=100"`
	Address    string  `json:"address"    validate:"required"`
	Phone      string  `json:"phone"      validate:"required,min=7,max=20"`
	PhotoURL   *string `json:"photo_url"`
}

// toFields parses the birth date and converts the request to domain fields.
func (req *CreatePersonRequest) toFields() (domain.PersonFields, error) {
	birth, err := domain.ParseBirthDate(req.BirthDate)
	if err != nil {
		return domain.PersonFields{}, err
	}
	return domain.PersonFields{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		BirthDate:  birth,
		Profession: req.Profession,
		Address:    req.Address,
		Phone:      req.Phone,
		PhotoURL:   req.PhotoURL,
	}, nil
}

// UpdatePersonRequest defines the payload for PUT /api/form/{id}.
// Omitted fields keep their stored value.
type UpdatePersonRequest struct {
	FirstName  *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName   *string `json:"last_name"  validate:"omitempty,min=1,max=100"`
	BirthDate  *string `json:"birth_date"`
	Profession *string `json:"profession" validate:"omitempty,min=1,max=100"`
	Address    *string `json:"address"    validate:"omitempty,min=1"`
	Phone      *string `json:"phone"      validate:"omitempty,min=7,max=20"`
	PhotoURL   *string `json:"photo_url"`
}

// toUpdate parses the birth date, if present, and converts the request to
// a domain update. An empty birth date string counts as absent.
func (req *UpdatePersonRequest) toUpdate() (domain.PersonUpdate, error) {
	upd := domain.PersonUpdate{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Profession: req.Profession,
		Address:    req.Address,
		Phone:      req.Phone,
		PhotoURL:   req.PhotoURL,
	}
	if req.BirthDate != nil && *req.BirthDate != "" {
		birth, err := domain.ParseBirthDate(*req.BirthDate)
		if err != nil {
			return domain.PersonUpdate{}, err
		}
		upd.BirthDate = &birth
	}
	return upd, nil
}

// PersonResponse represents the response data for a person.
type PersonResponse struct {
	ID         int64     `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	BirthDate  string    `json:"birth_date"`
	Age        int       `json:"age"`
	AgeRange   string    `json:"age_range"`
	Profession string    `json:"profession"`
	Address    string    `json:"address"`
	Phone      string    `json:"phone"`
	PhotoURL   *string   `json:"photo_url"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func personToResponse(p *domain.Person) PersonResponse {
	// Ages reaching the handler are never negative, so the label is always set.
	label, _ := domain.AgeRangeFor(p.Age)
	return PersonResponse{
		ID:         p.ID,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		BirthDate:  p.BirthDate.String(),
		Age:        p.Age,
		AgeRange:   string(label),
		Profession: p.Profession,
		Address:    p.Address,
		Phone:      p.Phone,
		PhotoURL:   p.PhotoURL,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func personsToResponse(persons []*domain.Person) []PersonResponse {
	out := make([]PersonResponse, 0, len(persons))
	for _, p := range persons {
		out = append(out, personToResponse(p))
	}
	return out
}

// MonthlyStatResponse is one row of GET /api/dashboard/month.
type MonthlyStatResponse struct {
	Month string `json:"month"`
	Total int    `json:"total"`
}

func monthlyToResponse(stats []domain.MonthlyStat) []MonthlyStatResponse {
	out := make([]MonthlyStatResponse, 0, len(stats))
	for _, s := range stats {
		out = append(out, MonthlyStatResponse{
			Month: s.Month.UTC().Format(time.RFC3339),
			Total: s.Total,
		})
	}
	return out
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
