package grpc

import (
	"context"

	pb "github.com/dmitrijs2005/librarian/internal/proto"
	"github.com/dmitrijs2005/librarian/internal/server/models"
	"github.com/dmitrijs2005/librarian/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// --- accounts ---

func (s *GRPCServer) SignUp(ctx context.Context, req *pb.SignUpRequest) (*pb.AuthResponse, error) {

	s.logger.Info(ctx, "Sign-up request")

	account, tokens, err := s.accounts.SignUp(ctx, services.SignUpInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Roles:    req.Roles,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.AuthResponse{AccountID: account.ID, AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *pb.LoginRequest) (*pb.AuthResponse, error) {

	tokens, err := s.accounts.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.AuthResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *pb.RefreshTokenRequest) (*pb.AuthResponse, error) {

	tokens, err := s.accounts.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.AuthResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, req *pb.LogoutRequest) (*pb.Empty, error) {
	if err := s.accounts.Logout(ctx, req.RefreshToken); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.Empty{}, nil
}

func (s *GRPCServer) RequestPasswordReset(ctx context.Context, req *pb.RequestPasswordResetRequest) (*pb.Empty, error) {
	if err := s.accounts.RequestPasswordReset(ctx, req.Email); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.Empty{}, nil
}

func (s *GRPCServer) ResetPassword(ctx context.Context, req *pb.ResetPasswordRequest) (*pb.Empty, error) {
	if err := s.accounts.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.Empty{}, nil
}

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *pb.Empty) (*pb.Account, error) {
	identity, err := s.callerIdentity(ctx)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.FindByID(ctx, identity.AccountID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return accountToPB(account), nil
}

func (s *GRPCServer) ChangePassword(ctx context.Context, req *pb.ChangePasswordRequest) (*pb.AuthResponse, error) {
	identity, err := s.callerIdentity(ctx)
	if err != nil {
		return nil, err
	}

	tokens, err := s.accounts.ChangePassword(ctx, identity, req.OldPassword, req.NewPassword)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &pb.AuthResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

// GetRoles answers for the caller's own account; other accounts need the
// admin role. The check runs before the lookup, so a refusal does not
// tell whether the account exists.
func (s *GRPCServer) GetRoles(ctx context.Context, req *pb.AccountRequest) (*pb.RolesResponse, error) {
	identity, err := s.callerIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if identity.AccountID != req.AccountID && !identity.Roles.Has(models.RoleAdmin) {
		s.logger.Debug(ctx, "access denied", "reason", "foreign account")
		return nil, status.Error(codes.PermissionDenied, "forbidden")
	}

	roles, err := s.accounts.GetRoles(ctx, req.AccountID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.RolesResponse{AccountID: req.AccountID, Roles: roles.Strings()}, nil
}

func (s *GRPCServer) SetRoles(ctx context.Context, req *pb.SetRolesRequest) (*pb.RolesResponse, error) {
	roles, err := s.accounts.SetRoles(ctx, req.AccountID, req.Roles)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.RolesResponse{AccountID: req.AccountID, Roles: roles.Strings()}, nil
}

func (s *GRPCServer) SoftDeleteAccount(ctx context.Context, req *pb.AccountRequest) (*pb.Empty, error) {
	if err := s.accounts.SoftDelete(ctx, req.AccountID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	s.logger.Info(ctx, "account deactivated", "account_id", req.AccountID)
	return &pb.Empty{}, nil
}

func (s *GRPCServer) RestoreAccount(ctx context.Context, req *pb.AccountRequest) (*pb.Empty, error) {
	if err := s.accounts.Restore(ctx, req.AccountID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	s.logger.Info(ctx, "account restored", "account_id", req.AccountID)
	return &pb.Empty{}, nil
}

func (s *GRPCServer) DeleteAccount(ctx context.Context, req *pb.AccountRequest) (*pb.Empty, error) {
	if err := s.accounts.Delete(ctx, req.AccountID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	s.logger.Info(ctx, "account deleted", "account_id", req.AccountID)
	return &pb.Empty{}, nil
}

// --- lending ---

func (s *GRPCServer) Borrow(ctx context.Context, req *pb.BorrowRequest) (*pb.LoanResponse, error) {
	loan, err := s.lending.Borrow(ctx, services.BorrowInput{UserID: req.UserID, BookID: req.BookID, DueAt: req.DueAt})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.LoanResponse{Loan: loanToPB(services.LoanView{LoanRecord: *loan})}, nil
}

func (s *GRPCServer) Return(ctx context.Context, req *pb.ReturnRequest) (*pb.LoanResponse, error) {
	loan, err := s.lending.Return(ctx, req.UserID, req.BookID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.LoanResponse{Loan: loanToPB(services.LoanView{LoanRecord: *loan})}, nil
}

func (s *GRPCServer) ListUserLoans(ctx context.Context, req *pb.UserLoansRequest) (*pb.LoansResponse, error) {
	views, err := s.lending.ListActiveLoansForUser(ctx, req.UserID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.LoansResponse{Loans: loansToPB(views)}, nil
}

func (s *GRPCServer) ListBookHolders(ctx context.Context, req *pb.BookHoldersRequest) (*pb.LoansResponse, error) {
	views, err := s.lending.ListActiveHoldersOfBook(ctx, req.BookID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.LoansResponse{Loans: loansToPB(views)}, nil
}

func (s *GRPCServer) ListHistory(ctx context.Context, _ *pb.Empty) (*pb.LoansResponse, error) {
	views, err := s.lending.ListAllHistory(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.LoansResponse{Loans: loansToPB(views)}, nil
}

func (s *GRPCServer) DeleteLoan(ctx context.Context, req *pb.DeleteLoanRequest) (*pb.Empty, error) {
	if err := s.lending.DeleteRecord(ctx, req.LoanID); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.Empty{}, nil
}

// --- analytics and catalogue ---

func (s *GRPCServer) Analytics(ctx context.Context, _ *pb.Empty) (*pb.AnalyticsResponse, error) {
	d, err := s.analytics.Summary(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	resp := &pb.AnalyticsResponse{
		TotalLoans:    d.TotalLoans,
		TotalReturned: d.TotalReturned,
		TotalActive:   d.TotalActive,
		TotalOverdue:  d.TotalOverdue,
		TopBooks:      make([]*pb.RankedBook, len(d.TopBooks)),
		TopBorrowers:  make([]*pb.RankedBorrower, len(d.TopBorrowers)),
	}
	for i, b := range d.TopBooks {
		resp.TopBooks[i] = &pb.RankedBook{BookID: b.BookID, Title: b.Title, Count: b.Count}
	}
	for i, u := range d.TopBorrowers {
		resp.TopBorrowers[i] = &pb.RankedBorrower{UserID: u.UserID, Name: u.Name, Email: u.Email, Count: u.Count}
	}
	return resp, nil
}

func (s *GRPCServer) AddBook(ctx context.Context, req *pb.AddBookRequest) (*pb.BookResponse, error) {
	book, err := s.books.AddBook(ctx, services.BookInput{Title: req.Title, Author: req.Author})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.BookResponse{Book: bookToPB(book)}, nil
}

func (s *GRPCServer) ListBooks(ctx context.Context, _ *pb.Empty) (*pb.BooksResponse, error) {
	books, err := s.books.ListBooks(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	out := make([]*pb.Book, len(books))
	for i, b := range books {
		out[i] = bookToPB(b)
	}
	return &pb.BooksResponse{Books: out}, nil
}

// --- mapping helpers ---

func (s *GRPCServer) callerIdentity(ctx context.Context) (models.Identity, error) {
	identity, ok := identityFrom(ctx)
	if !ok {
		return models.Identity{}, status.Error(codes.Unauthenticated, "unauthorized")
	}
	return identity, nil
}

func accountToPB(a *models.Account) *pb.Account {
	return &pb.Account{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Roles:     a.Roles.Strings(),
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
		LastLogin: a.LastLogin,
	}
}

func loanToPB(v services.LoanView) *pb.Loan {
	return &pb.Loan{
		ID:         v.ID,
		UserID:     v.UserID,
		BookID:     v.BookID,
		BorrowedAt: v.BorrowedAt,
		DueAt:      v.DueAt,
		Returned:   v.Returned,
		ReturnedAt: v.ReturnedAt,
		BookTitle:  v.BookTitle,
		UserName:   v.UserName,
		UserEmail:  v.UserEmail,
	}
}

func loansToPB(views []services.LoanView) []*pb.Loan {
	out := make([]*pb.Loan, len(views))
	for i, v := range views {
		out[i] = loanToPB(v)
	}
	return out
}

func bookToPB(b *models.Book) *pb.Book {
	return &pb.Book{ID: b.ID, Title: b.Title, Author: b.Author, CreatedAt: b.CreatedAt}
}
