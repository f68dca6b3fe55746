package proto

import "time"

type Empty struct{}

type SignUpRequest struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Roles    []string `json:"roles,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse carries a fresh token pair. AccountID is set on sign-up only.
type AuthResponse struct {
	AccountID    string `json:"account_id,omitempty"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (r *AuthResponse) GetAccessToken() string {
	if r == nil {
		return ""
	}
	return r.AccessToken
}

func (r *AuthResponse) GetRefreshToken() string {
	if r == nil {
		return ""
	}
	return r.RefreshToken
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type RequestPasswordResetRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type Account struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Roles     []string   `json:"roles"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

type AccountRequest struct {
	AccountID string `json:"account_id"`
}

type SetRolesRequest struct {
	AccountID string   `json:"account_id"`
	Roles     []string `json:"roles"`
}

type RolesResponse struct {
	AccountID string   `json:"account_id"`
	Roles     []string `json:"roles"`
}

type BorrowRequest struct {
	UserID string    `json:"user_id"`
	BookID string    `json:"book_id"`
	DueAt  time.Time `json:"due_at"`
}

type ReturnRequest struct {
	UserID string `json:"user_id"`
	BookID string `json:"book_id"`
}

type UserLoansRequest struct {
	UserID string `json:"user_id"`
}

type BookHoldersRequest struct {
	BookID string `json:"book_id"`
}

type DeleteLoanRequest struct {
	LoanID string `json:"loan_id"`
}

// Loan is a ledger record with optional display fields. BookTitle,
// UserName and UserEmail are empty when the referenced entity is gone.
type Loan struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	BookID     string     `json:"book_id"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	DueAt      time.Time  `json:"due_at"`
	Returned   bool       `json:"returned"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	BookTitle  string     `json:"book_title,omitempty"`
	UserName   string     `json:"user_name,omitempty"`
	UserEmail  string     `json:"user_email,omitempty"`
}

type LoanResponse struct {
	Loan *Loan `json:"loan"`
}

type LoansResponse struct {
	Loans []*Loan `json:"loans"`
}

type RankedBook struct {
	BookID string `json:"book_id"`
	Title  string `json:"title,omitempty"`
	Count  int    `json:"count"`
}

type RankedBorrower struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Count  int    `json:"count"`
}

type AnalyticsResponse struct {
	TotalLoans    int               `json:"total_loans"`
	TotalReturned int               `json:"total_returned"`
	TotalActive   int               `json:"total_active"`
	TotalOverdue  int               `json:"total_overdue"`
	TopBooks      []*RankedBook     `json:"top_books"`
	TopBorrowers  []*RankedBorrower `json:"top_borrowers"`
}

type AddBookRequest struct {
	Title  string `json:"title"`
	Author string `json:"author,omitempty"`
}

type Book struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type BookResponse struct {
	Book *Book `json:"book"`
}

type BooksResponse struct {
	Books []*Book `json:"books"`
}
