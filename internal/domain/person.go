package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Field limits mirror the persons table definition.
const (
	MaxNameLength       = 100
	MaxProfessionLength = 100
	MinPhoneLength      = 7
	MaxPhoneLength      = 20
)

// Person is a registry entry. Age is a denormalised snapshot derived from
// BirthDate at the time the record was last written; it goes stale as real
// time passes. Use AgeAt to get the age for a given reference date.
type Person struct {
	ID         int64     `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	BirthDate  BirthDate `json:"birth_date"`
	Age        int       `json:"age"`
	Profession string    `json:"profession"`
	Address    string    `json:"address"`
	Phone      string    `json:"phone"`
	PhotoURL   *string   `json:"photo_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PersonFields holds the user-supplied attributes of a person.
type PersonFields struct {
	FirstName  string
	LastName   string
	BirthDate  BirthDate
	Profession string
	Address    string
	Phone      string
	PhotoURL   *string
}

// PersonUpdate is a partial update. Nil fields keep their current value.
type PersonUpdate struct {
	FirstName  *string
	LastName   *string
	BirthDate  *BirthDate
	Profession *string
	Address    *string
	Phone      *string
	PhotoURL   *string
}

// NewPerson validates fields and builds a Person whose Age is computed as of ref.
// The ID is assigned by the store.
func NewPerson(fields PersonFields, ref BirthDate, now time.Time) (*Person, error) {
	p := &Person{
		FirstName:  strings.TrimSpace(fields.FirstName),
		LastName:   strings.TrimSpace(fields.LastName),
		BirthDate:  fields.BirthDate,
		Profession: strings.TrimSpace(fields.Profession),
		Address:    strings.TrimSpace(fields.Address),
		Phone:      strings.TrimSpace(fields.Phone),
		PhotoURL:   fields.PhotoURL,
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	age, err := ComputeAge(p.BirthDate, ref)
	if err != nil {
		return nil, err
	}
	p.Age = age

	return p, nil
}

// Validate checks the user-supplied fields of the Person.
func (p *Person) Validate() error {
	if err := validateText("first_name", p.FirstName, MaxNameLength); err != nil {
		return err
	}
	if err := validateText("last_name", p.LastName, MaxNameLength); err != nil {
		return err
	}
	if err := validateText("profession", p.Profession, MaxProfessionLength); err != nil {
		return err
	}
	if p.Address == "" {
		return NewValidationError("address", "is required", ErrValidation)
	}
	if n := utf8.RuneCountInString(p.Phone); n < MinPhoneLength || n > MaxPhoneLength {
		return NewValidationError("phone", "must be between 7 and 20 characters", ErrValidation)
	}
	if !p.BirthDate.Valid() {
		return NewValidationError("birth_date", "is required", ErrInvalidDate)
	}
	return nil
}

// AgeAt returns the person's age as of ref, recomputed from the birth date.
func (p *Person) AgeAt(ref BirthDate) (int, error) {
	return ComputeAge(p.BirthDate, ref)
}

// ApplyUpdate returns a copy of p with upd applied. The age snapshot is
// recomputed as of ref only when the birth date changes; otherwise the
// stored snapshot is carried over.
func (p *Person) ApplyUpdate(upd PersonUpdate, ref BirthDate, now time.Time) (*Person, error) {
	next := *p

	if upd.FirstName != nil {
		next.FirstName = strings.TrimSpace(*upd.FirstName)
	}
	if upd.LastName != nil {
		next.LastName = strings.TrimSpace(*upd.LastName)
	}
	if upd.Profession != nil {
		next.Profession = strings.TrimSpace(*upd.Profession)
	}
	if upd.Address != nil {
		next.Address = strings.TrimSpace(*upd.Address)
	}
	if upd.Phone != nil {
		next.Phone = strings.TrimSpace(*upd.Phone)
	}
	if upd.PhotoURL != nil {
		photo := *upd.PhotoURL
		next.PhotoURL = &photo
	}

	if upd.BirthDate != nil {
		next.BirthDate = *upd.BirthDate
	}

	if err := next.Validate(); err != nil {
		return nil, err
	}

	if upd.BirthDate != nil {
		age, err := ComputeAge(next.BirthDate, ref)
		if err != nil {
			return nil, err
		}
		next.Age = age
	}

	next.UpdatedAt = now.UTC()
	return &next, nil
}

func validateText(field, value string, maxLen int) error {
	if value == "" {
		return NewValidationError(field, "is required", ErrValidation)
	}
	if utf8.RuneCountInString(value) > maxLen {
		return NewValidationError(field, "is too long", ErrValidation)
	}
	return nil
}
