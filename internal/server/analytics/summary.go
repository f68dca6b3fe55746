// Package analytics folds a snapshot of the loan ledger into summary counts.
// It performs no I/O; callers load the records and join display data.
package analytics

import (
	"sort"
	"time"

	"github.com/dmitrijs2005/librarian/internal/server/models"
)

// Count is the number of loans attributed to one book or borrower.
type Count struct {
	ID    string
	Count int
}

type Summary struct {
	TotalLoans    int
	TotalReturned int
	TotalActive   int
	TotalOverdue  int
	TopBooks      []Count
	TopBorrowers  []Count
}

// Summarize computes totals over records as of now and the n most frequent
// books and borrowers. Ties are ordered by ascending id. A non-positive n
// yields empty top lists.
func Summarize(records []*models.LoanRecord, now time.Time, n int) Summary {
	s := Summary{TopBooks: []Count{}, TopBorrowers: []Count{}}
	books := make(map[string]int)
	borrowers := make(map[string]int)

	for _, r := range records {
		s.TotalLoans++
		if r.Returned {
			s.TotalReturned++
		} else {
			s.TotalActive++
		}
		if r.Overdue(now) {
			s.TotalOverdue++
		}
		books[r.BookID]++
		borrowers[r.UserID]++
	}

	s.TopBooks = top(books, n)
	s.TopBorrowers = top(borrowers, n)
	return s
}

func top(counts map[string]int, n int) []Count {
	if n <= 0 {
		return []Count{}
	}
	out := make([]Count, 0, len(counts))
	for id, c := range counts {
		out = append(out, Count{ID: id, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
