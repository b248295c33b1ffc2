package domain

import "time"

// ProfessionStat is the number of persons registered with a profession.
type ProfessionStat struct {
	Profession string `json:"profession"`
	Total      int    `json:"total"`
}

// MonthlyStat is the number of persons registered in a calendar month.
// Month is the first instant of the month in UTC.
type MonthlyStat struct {
	Month time.Time `json:"month"`
	Total int       `json:"total"`
}
