package cli

import (
	"context"
	"fmt"
	"time"
)

// defaultLoanPeriod applies when the due date prompt is left empty.
const defaultLoanPeriod = 14 * 24 * time.Hour

const dateLayout = "2006-01-02"

var nowFn = time.Now

// selfID resolves the logged in account, preferring the remembered session.
func (a *App) selfID(ctx context.Context) (string, error) {
	if s := a.sessions.Current(); s != nil && s.AccountID != "" {
		return s.AccountID, nil
	}
	acc, err := a.client.WhoAmI(ctx)
	if err != nil {
		return "", err
	}
	return acc.ID, nil
}

// userArg returns args[i] or, when absent, the caller's own account.
func (a *App) userArg(ctx context.Context, args []string, i int) (string, error) {
	if len(args) > i {
		return args[i], nil
	}
	return a.selfID(ctx)
}

func (a *App) Books(ctx context.Context) error {
	books, err := a.client.Books(ctx)
	if err != nil {
		return err
	}
	printBooks(a.out, books)
	return nil
}

func (a *App) AddBook(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	author, err := getSimpleText(a.reader, "Author", a.out)
	if err != nil {
		return err
	}

	book, err := a.client.AddBook(ctx, title, author)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Book added: %s\n", book.ID)
	return nil
}

func (a *App) Borrow(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errUsage
	}
	userID, err := a.userArg(ctx, args, 1)
	if err != nil {
		return err
	}

	dueLine, err := getSimpleText(a.reader, "Due date (YYYY-MM-DD, empty for 14 days)", a.out)
	if err != nil {
		return err
	}
	due := nowFn().UTC().Add(defaultLoanPeriod)
	if dueLine != "" {
		due, err = time.Parse(dateLayout, dueLine)
		if err != nil {
			return fmt.Errorf("bad due date %q: %w", dueLine, err)
		}
	}

	loan, err := a.client.Borrow(ctx, userID, args[0], due)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Borrowed, loan %s due %s\n", loan.ID, loan.DueAt.Format(dateLayout))
	return nil
}

func (a *App) Return(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errUsage
	}
	userID, err := a.userArg(ctx, args, 1)
	if err != nil {
		return err
	}

	loan, err := a.client.Return(ctx, userID, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Returned, loan %s\n", loan.ID)
	return nil
}

func (a *App) Loans(ctx context.Context, args []string) error {
	userID, err := a.userArg(ctx, args, 0)
	if err != nil {
		return err
	}
	loans, err := a.client.UserLoans(ctx, userID)
	if err != nil {
		return err
	}
	printLoans(a.out, loans)
	return nil
}

func (a *App) Holders(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errUsage
	}
	loans, err := a.client.BookHolders(ctx, args[0])
	if err != nil {
		return err
	}
	printLoans(a.out, loans)
	return nil
}

func (a *App) History(ctx context.Context) error {
	loans, err := a.client.History(ctx)
	if err != nil {
		return err
	}
	printLoans(a.out, loans)
	return nil
}

func (a *App) DeleteLoan(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errUsage
	}
	if err := a.client.DeleteLoan(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Loan deleted")
	return nil
}

func (a *App) Stats(ctx context.Context) error {
	st, err := a.client.Analytics(ctx)
	if err != nil {
		return err
	}
	printAnalytics(a.out, st)
	return nil
}
