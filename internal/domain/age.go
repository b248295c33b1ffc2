package domain

import "fmt"

// ComputeAge returns the number of whole years elapsed from birth to ref.
//
// The year difference is reduced by one when the (month, day) of ref sorts
// before the (month, day) of birth, i.e. the birthday has not happened yet
// in ref's year. Comparing month/day pairs keeps Feb 29 birthdays exact:
// on Feb 28 of a non-leap year the birthday has not been reached.
//
// Returns ErrInvalidDate if either date is not a real calendar date and
// ErrInvalidDateRange if birth is after ref.
func ComputeAge(birth, ref BirthDate) (int, error) {
	if !birth.Valid() {
		return 0, fmt.Errorf("%w: birth date %s", ErrInvalidDate, birth)
	}
	if !ref.Valid() {
		return 0, fmt.Errorf("%w: reference date %s", ErrInvalidDate, ref)
	}
	if birth.After(ref) {
		return 0, fmt.Errorf("%w: %s > %s", ErrInvalidDateRange, birth, ref)
	}

	age := ref.Year - birth.Year
	if ref.Month < birth.Month || (ref.Month == birth.Month && ref.Day < birth.Day) {
		age--
	}
	return age, nil
}

// AgeOf is ComputeAge for callers whose contract allows an unknown birth date.
// A nil birth date yields age 0.
func AgeOf(birth *BirthDate, ref BirthDate) (int, error) {
	if birth == nil {
		return 0, nil
	}
	return ComputeAge(*birth, ref)
}
