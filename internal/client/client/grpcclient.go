package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/librarian/internal/common"
	pb "github.com/dmitrijs2005/librarian/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// libraryAPI is the subset of *pb.LibraryClient used here.
type libraryAPI interface {
	SignUp(ctx context.Context, in *pb.SignUpRequest, opts ...grpc.CallOption) (*pb.AuthResponse, error)
	Login(ctx context.Context, in *pb.LoginRequest, opts ...grpc.CallOption) (*pb.AuthResponse, error)
	RefreshToken(ctx context.Context, in *pb.RefreshTokenRequest, opts ...grpc.CallOption) (*pb.AuthResponse, error)
	Logout(ctx context.Context, in *pb.LogoutRequest, opts ...grpc.CallOption) (*pb.Empty, error)
	RequestPasswordReset(ctx context.Context, in *pb.RequestPasswordResetRequest, opts ...grpc.CallOption) (*pb.Empty, error)
	ResetPassword(ctx context.Context, in *pb.ResetPasswordRequest, opts ...grpc.CallOption) (*pb.Empty, error)
	WhoAmI(ctx context.Context, in *pb.Empty, opts ...grpc.CallOption) (*pb.Account, error)
	ChangePassword(ctx context.Context, in *pb.ChangePasswordRequest, opts ...grpc.CallOption) (*pb.AuthResponse, error)
	GetRoles(ctx context.Context, in *pb.AccountRequest, opts ...grpc.CallOption) (*pb.RolesResponse, error)
	SetRoles(ctx context.Context, in *pb.SetRolesRequest, opts ...grpc.CallOption) (*pb.RolesResponse, error)
	SoftDeleteAccount(ctx context.Context, in *pb.AccountRequest, opts ...grpc.CallOption) (*pb.Empty, error)
	RestoreAccount(ctx context.Context, in *pb.AccountRequest, opts ...grpc.CallOption) (*pb.Empty, error)
	DeleteAccount(ctx context.Context, in *pb.AccountRequest, opts ...grpc.CallOption) (*pb.Empty, error)
	Borrow(ctx context.Context, in *pb.BorrowRequest, opts ...grpc.CallOption) (*pb.LoanResponse, error)
	Return(ctx context.Context, in *pb.ReturnRequest, opts ...grpc.CallOption) (*pb.LoanResponse, error)
	ListUserLoans(ctx context.Context, in *pb.UserLoansRequest, opts ...grpc.CallOption) (*pb.LoansResponse, error)
	ListBookHolders(ctx context.Context, in *pb.BookHoldersRequest, opts ...grpc.CallOption) (*pb.LoansResponse, error)
	ListHistory(ctx context.Context, in *pb.Empty, opts ...grpc.CallOption) (*pb.LoansResponse, error)
	DeleteLoan(ctx context.Context, in *pb.DeleteLoanRequest, opts ...grpc.CallOption) (*pb.Empty, error)
	Analytics(ctx context.Context, in *pb.Empty, opts ...grpc.CallOption) (*pb.AnalyticsResponse, error)
	AddBook(ctx context.Context, in *pb.AddBookRequest, opts ...grpc.CallOption) (*pb.BookResponse, error)
	ListBooks(ctx context.Context, in *pb.Empty, opts ...grpc.CallOption) (*pb.BooksResponse, error)
}

// noRefresh lists methods whose Unauthenticated answer is final.
var noRefresh = map[string]bool{
	pb.Library_SignUp_FullMethodName:               true,
	pb.Library_Login_FullMethodName:                true,
	pb.Library_RefreshToken_FullMethodName:         true,
	pb.Library_Logout_FullMethodName:               true,
	pb.Library_RequestPasswordReset_FullMethodName: true,
	pb.Library_ResetPassword_FullMethodName:        true,
}

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      libraryAPI
	health      healthpb.HealthClient

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	listener     TokenListener
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Delete(common.AuthorizationHeaderName)
	if token != "" {
		md.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	access, refresh := s.tokens()
	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	if status.Code(err) != codes.Unauthenticated || noRefresh[method] || refresh == "" {
		return err
	}

	// The server does not say why the token was refused; refresh once and retry.
	resp, rerr := s.client.RefreshToken(ctx, &pb.RefreshTokenRequest{RefreshToken: refresh})
	if rerr != nil {
		return err
	}
	s.setTokens(resp.AccessToken, resp.RefreshToken)

	return invoker(withAccessToken(ctx, resp.AccessToken), method, req, reply, cc, opts...)
}

// NewLibraryClient connects lazily to endpointURL. timeout bounds each call;
// zero leaves calls bounded only by the caller's context.
func NewLibraryClient(endpointURL string, timeout time.Duration) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, timeout: timeout}
	err := c.InitGRPCClient()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewLibraryClient(conn)
	s.health = healthpb.NewHealthClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) SetTokenListener(l TokenListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = l
}

func (s *GRPCClient) LoggedIn() bool {
	access, _ := s.tokens()
	return access != ""
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) setTokens(access, refresh string) {
	s.mu.Lock()
	s.accessToken = access
	s.refreshToken = refresh
	l := s.listener
	s.mu.Unlock()

	if l != nil {
		l(refresh)
	}
}

func (s *GRPCClient) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	resp, err := s.health.Check(ctx, &healthpb.HealthCheckRequest{Service: pb.ServiceName})
	if err != nil {
		return s.mapError(err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return ErrUnavailable
	}
	return nil
}

// --- session ---

func (s *GRPCClient) SignUp(ctx context.Context, name, email string, password []byte, roles []string) (string, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	resp, err := s.client.SignUp(ctx, &pb.SignUpRequest{Name: name, Email: email, Password: string(password), Roles: roles})
	if err != nil {
		return "", s.mapError(err)
	}
	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return resp.AccountID, nil
}

func (s *GRPCClient) Login(ctx context.Context, email string, password []byte) error {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	resp, err := s.client.Login(ctx, &pb.LoginRequest{Email: email, Password: string(password)})
	if err != nil {
		return s.mapError(err)
	}
	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return nil
}

// Resume exchanges a stored refresh token for a fresh pair.
func (s *GRPCClient) Resume(ctx context.Context, refreshToken string) error {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	resp, err := s.client.RefreshToken(ctx, &pb.RefreshTokenRequest{RefreshToken: refreshToken})
	if err != nil {
		return s.mapError(err)
	}
	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return nil
}

// Logout revokes the refresh token on the server and forgets both tokens.
// Local state is cleared even when the server call fails.
func (s *GRPCClient) Logout(ctx context.Context) error {
	_, refresh := s.tokens()

	s.mu.Lock()
	s.accessToken, s.refreshToken = "", ""
	s.mu.Unlock()

	if refresh == "" {
		return nil
	}

	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	if _, err := s.client.Logout(ctx, &pb.LogoutRequest{RefreshToken: refresh}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) WhoAmI(ctx context.Context) (*pb.Account, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	resp, err := s.client.WhoAmI(ctx, &pb.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) ChangePassword(ctx context.Context, oldPassword, newPassword []byte) error {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	resp, err := s.client.ChangePassword(ctx, &pb.ChangePasswordRequest{OldPassword: string(oldPassword), NewPassword: string(newPassword)})
	if err != nil {
		return s.mapError(err)
	}
	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return nil
}

func (s *GRPCClient) RequestPasswordReset(ctx context.Context, email string) error {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	if _, err := s.client.RequestPasswordReset(ctx, &pb.RequestPasswordResetRequest{Email: email}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) ResetPassword(ctx context.Context, token string, newPassword []byte) error {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	if _, err := s.client.ResetPassword(ctx, &pb.ResetPasswordRequest{Token: token, NewPassword: string(newPassword)}); err != nil {
		return s.mapError(err)
	}
	return nil
}

// --- account administration ---

func (s *GRPCClient) Roles(ctx context.Context, accountID string) ([]string, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	resp, err := s.client.GetRoles(ctx, &pb.AccountRequest{AccountID: accountID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Roles, nil
}

func (s *GRPCClient) SetRoles(ctx context.Context, accountID string, roles []string) ([]string, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	resp, err := s.client.SetRoles(ctx, &pb.SetRolesRequest{AccountID: accountID, Roles: roles})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Roles, nil
}

func (s *GRPCClient) Deactivate(ctx context.Context, accountID string) error {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	_, err := s.client.SoftDeleteAccount(ctx, &pb.AccountRequest{AccountID: accountID})
	return s.mapError(err)
}

func (s *GRPCClient) Restore(ctx context.Context, accountID string) error {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	_, err := s.client.RestoreAccount(ctx, &pb.AccountRequest{AccountID: accountID})
	return s.mapError(err)
}

func (s *GRPCClient) DeleteAccount(ctx context.Context, accountID string) error {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	_, err := s.client.DeleteAccount(ctx, &pb.AccountRequest{AccountID: accountID})
	return s.mapError(err)
}

// --- lending ---

func (s *GRPCClient) Borrow(ctx context.Context, userID, bookID string, dueAt time.Time) (*pb.Loan, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	resp, err := s.client.Borrow(ctx, &pb.BorrowRequest{UserID: userID, BookID: bookID, DueAt: dueAt})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Loan, nil
}

func (s *GRPCClient) Return(ctx context.Context, userID, bookID string) (*pb.Loan, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	resp, err := s.client.Return(ctx, &pb.ReturnRequest{UserID: userID, BookID: bookID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Loan, nil
}

func (s *GRPCClient) UserLoans(ctx context.Context, userID string) ([]*pb.Loan, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	resp, err := s.client.ListUserLoans(ctx, &pb.UserLoansRequest{UserID: userID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Loans, nil
}

func (s *GRPCClient) BookHolders(ctx context.Context, bookID string) ([]*pb.Loan, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	resp, err := s.client.ListBookHolders(ctx, &pb.BookHoldersRequest{BookID: bookID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Loans, nil
}

func (s *GRPCClient) History(ctx context.Context) ([]*pb.Loan, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	resp, err := s.client.ListHistory(ctx, &pb.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Loans, nil
}

func (s *GRPCClient) DeleteLoan(ctx context.Context, loanID string) error {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	_, err := s.client.DeleteLoan(ctx, &pb.DeleteLoanRequest{LoanID: loanID})
	return s.mapError(err)
}

func (s *GRPCClient) Analytics(ctx context.Context) (*pb.AnalyticsResponse, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	resp, err := s.client.Analytics(ctx, &pb.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

// --- catalogue ---

func (s *GRPCClient) AddBook(ctx context.Context, title, author string) (*pb.Book, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	resp, err := s.client.AddBook(ctx, &pb.AddBookRequest{Title: title, Author: author})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Book, nil
}

func (s *GRPCClient) Books(ctx context.Context) ([]*pb.Book, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	resp, err := s.client.ListBooks(ctx, &pb.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Books, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrUnavailable
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}
	switch st.Code() {
	case codes.Unauthenticated:
		return ErrUnauthorized
	case codes.PermissionDenied:
		return ErrForbidden
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.NotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, st.Message())
	case codes.AlreadyExists, codes.FailedPrecondition:
		return fmt.Errorf("%w: %s", ErrConflict, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidInput, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
