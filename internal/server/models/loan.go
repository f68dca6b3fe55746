package models

import "time"

// LoanRecord is one borrow event and its return status.
type LoanRecord struct {
	ID         string
	UserID     string
	BookID     string
	BorrowedAt time.Time
	DueAt      time.Time
	Returned   bool
	ReturnedAt *time.Time
}

// Overdue reports whether the loan is still active past its due date.
func (l *LoanRecord) Overdue(now time.Time) bool {
	return !l.Returned && l.DueAt.Before(now)
}

// Book is the catalogue entry a loan refers to. Only identity and a display
// title are modelled here.
type Book struct {
	ID        string
	Title     string
	Author    string
	CreatedAt time.Time
}
