package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	pb "github.com/dmitrijs2005/librarian/internal/proto"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func printAccount(w io.Writer, acc *pb.Account) {
	fmt.Fprintf(w, "ID:      %s\n", acc.ID)
	fmt.Fprintf(w, "Name:    %s\n", acc.Name)
	fmt.Fprintf(w, "Email:   %s\n", acc.Email)
	fmt.Fprintf(w, "Roles:   %s\n", strings.Join(acc.Roles, ", "))
	fmt.Fprintf(w, "Active:  %t\n", acc.Active)
	if acc.LastLogin != nil {
		fmt.Fprintf(w, "Last login: %s\n", acc.LastLogin.Format(dateLayout+" 15:04"))
	}
}

func printBooks(w io.Writer, books []*pb.Book) {
	if len(books) == 0 {
		fmt.Fprintln(w, "No books")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR")
	for _, b := range books {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", b.ID, b.Title, b.Author)
	}
	_ = tw.Flush()
}

func loanState(l *pb.Loan) string {
	if l.Returned {
		if l.ReturnedAt != nil {
			return "returned " + l.ReturnedAt.Format(dateLayout)
		}
		return "returned"
	}
	return "active"
}

func printLoans(w io.Writer, loans []*pb.Loan) {
	if len(loans) == 0 {
		fmt.Fprintln(w, "No loans")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "LOAN\tBOOK\tUSER\tBORROWED\tDUE\tSTATE")
	for _, l := range loans {
		book := l.BookID
		if l.BookTitle != "" {
			book = l.BookTitle
		}
		user := l.UserID
		if l.UserEmail != "" {
			user = l.UserEmail
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			l.ID, book, user,
			l.BorrowedAt.Format(dateLayout), l.DueAt.Format(dateLayout), loanState(l))
	}
	_ = tw.Flush()
}

func printAnalytics(w io.Writer, st *pb.AnalyticsResponse) {
	fmt.Fprintf(w, "Loans: %d total, %d returned, %d active, %d overdue\n",
		st.TotalLoans, st.TotalReturned, st.TotalActive, st.TotalOverdue)

	if len(st.TopBooks) > 0 {
		fmt.Fprintln(w, "Most borrowed books:")
		tw := newTable(w)
		for _, b := range st.TopBooks {
			fmt.Fprintf(tw, "  %s\t%s\t%d\n", b.BookID, b.Title, b.Count)
		}
		_ = tw.Flush()
	}
	if len(st.TopBorrowers) > 0 {
		fmt.Fprintln(w, "Top borrowers:")
		tw := newTable(w)
		for _, u := range st.TopBorrowers {
			fmt.Fprintf(tw, "  %s\t%s\t%d\n", u.UserID, u.Email, u.Count)
		}
		_ = tw.Flush()
	}
}
