package client

import (
	"context"
	"time"

	pb "github.com/dmitrijs2005/librarian/internal/proto"
)

// TokenListener observes every refresh token the client receives.
type TokenListener func(refreshToken string)

type Client interface {
	Close() error
	Ping(ctx context.Context) error
	SetTokenListener(l TokenListener)
	LoggedIn() bool

	SignUp(ctx context.Context, name, email string, password []byte, roles []string) (string, error)
	Login(ctx context.Context, email string, password []byte) error
	Resume(ctx context.Context, refreshToken string) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) (*pb.Account, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword []byte) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token string, newPassword []byte) error

	Roles(ctx context.Context, accountID string) ([]string, error)
	SetRoles(ctx context.Context, accountID string, roles []string) ([]string, error)
	Deactivate(ctx context.Context, accountID string) error
	Restore(ctx context.Context, accountID string) error
	DeleteAccount(ctx context.Context, accountID string) error

	Borrow(ctx context.Context, userID, bookID string, dueAt time.Time) (*pb.Loan, error)
	Return(ctx context.Context, userID, bookID string) (*pb.Loan, error)
	UserLoans(ctx context.Context, userID string) ([]*pb.Loan, error)
	BookHolders(ctx context.Context, bookID string) ([]*pb.Loan, error)
	History(ctx context.Context) ([]*pb.Loan, error)
	DeleteLoan(ctx context.Context, loanID string) error
	Analytics(ctx context.Context) (*pb.AnalyticsResponse, error)

	AddBook(ctx context.Context, title, author string) (*pb.Book, error)
	Books(ctx context.Context) ([]*pb.Book, error)
}
