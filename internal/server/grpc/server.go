package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/librarian/internal/logging"
	pb "github.com/dmitrijs2005/librarian/internal/proto"
	"github.com/dmitrijs2005/librarian/internal/server/models"
	"github.com/dmitrijs2005/librarian/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type accountSvc interface {
	SignUp(ctx context.Context, in services.SignUpInput) (*models.Account, *services.TokenPair, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	ChangePassword(ctx context.Context, identity models.Identity, oldPassword, newPassword string) (*services.TokenPair, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	FindByID(ctx context.Context, id string) (*models.Account, error)
	SoftDelete(ctx context.Context, accountID string) error
	Restore(ctx context.Context, accountID string) error
	Delete(ctx context.Context, accountID string) error
	GetRoles(ctx context.Context, accountID string) (models.RoleSet, error)
	SetRoles(ctx context.Context, accountID string, names []string) (models.RoleSet, error)
}

type tokenVerifier interface {
	Verify(ctx context.Context, token string) (models.Identity, error)
}

type lendingSvc interface {
	Borrow(ctx context.Context, in services.BorrowInput) (*models.LoanRecord, error)
	Return(ctx context.Context, userID, bookID string) (*models.LoanRecord, error)
	ListActiveLoansForUser(ctx context.Context, userID string) ([]services.LoanView, error)
	ListActiveHoldersOfBook(ctx context.Context, bookID string) ([]services.LoanView, error)
	ListAllHistory(ctx context.Context) ([]services.LoanView, error)
	DeleteRecord(ctx context.Context, loanID string) error
}

type analyticsSvc interface {
	Summary(ctx context.Context) (*services.Dashboard, error)
}

type bookSvc interface {
	AddBook(ctx context.Context, in services.BookInput) (*models.Book, error)
	ListBooks(ctx context.Context) ([]*models.Book, error)
}

// Services bundles the application services the transport delegates to.
type Services struct {
	Accounts  accountSvc
	Tokens    tokenVerifier
	Lending   lendingSvc
	Analytics analyticsSvc
	Books     bookSvc
}

type GRPCServer struct {
	pb.UnimplementedLibraryServer
	address   string
	accounts  accountSvc
	tokens    tokenVerifier
	lending   lendingSvc
	analytics analyticsSvc
	books     bookSvc
	logger    logging.Logger
	policies  map[string]policy
	health    *health.Server
}

func NewGRPCServer(a string, l logging.Logger, svc Services) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		accounts:  svc.Accounts,
		tokens:    svc.Tokens,
		lending:   svc.Lending,
		analytics: svc.Analytics,
		books:     svc.Books,
		policies:  methodPolicies(),
		health:    health.NewServer(),
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then drains
// in-flight calls and returns.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {

	// creates gRPC-server
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.recoveryInterceptor, s.accessTokenInterceptor))

	// registers services
	pb.RegisterLibraryServer(srv, s)
	healthpb.RegisterHealthServer(srv, s.health)
	s.health.SetServingStatus(pb.ServiceName, healthpb.HealthCheckResponse_SERVING)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
