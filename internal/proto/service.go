package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "librarian.v1.Library"

const (
	Library_SignUp_FullMethodName               = "/" + ServiceName + "/SignUp"
	Library_Login_FullMethodName                = "/" + ServiceName + "/Login"
	Library_RefreshToken_FullMethodName         = "/" + ServiceName + "/RefreshToken"
	Library_Logout_FullMethodName               = "/" + ServiceName + "/Logout"
	Library_RequestPasswordReset_FullMethodName = "/" + ServiceName + "/RequestPasswordReset"
	Library_ResetPassword_FullMethodName        = "/" + ServiceName + "/ResetPassword"
	Library_WhoAmI_FullMethodName               = "/" + ServiceName + "/WhoAmI"
	Library_ChangePassword_FullMethodName       = "/" + ServiceName + "/ChangePassword"
	Library_GetRoles_FullMethodName             = "/" + ServiceName + "/GetRoles"
	Library_SetRoles_FullMethodName             = "/" + ServiceName + "/SetRoles"
	Library_SoftDeleteAccount_FullMethodName    = "/" + ServiceName + "/SoftDeleteAccount"
	Library_RestoreAccount_FullMethodName       = "/" + ServiceName + "/RestoreAccount"
	Library_DeleteAccount_FullMethodName        = "/" + ServiceName + "/DeleteAccount"
	Library_Borrow_FullMethodName               = "/" + ServiceName + "/Borrow"
	Library_Return_FullMethodName               = "/" + ServiceName + "/Return"
	Library_ListUserLoans_FullMethodName        = "/" + ServiceName + "/ListUserLoans"
	Library_ListBookHolders_FullMethodName      = "/" + ServiceName + "/ListBookHolders"
	Library_ListHistory_FullMethodName          = "/" + ServiceName + "/ListHistory"
	Library_DeleteLoan_FullMethodName           = "/" + ServiceName + "/DeleteLoan"
	Library_Analytics_FullMethodName            = "/" + ServiceName + "/Analytics"
	Library_AddBook_FullMethodName              = "/" + ServiceName + "/AddBook"
	Library_ListBooks_FullMethodName            = "/" + ServiceName + "/ListBooks"
)

// LibraryServer is the server API of the librarian.v1.Library service.
type LibraryServer interface {
	SignUp(context.Context, *SignUpRequest) (*AuthResponse, error)
	Login(context.Context, *LoginRequest) (*AuthResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*AuthResponse, error)
	Logout(context.Context, *LogoutRequest) (*Empty, error)
	RequestPasswordReset(context.Context, *RequestPasswordResetRequest) (*Empty, error)
	ResetPassword(context.Context, *ResetPasswordRequest) (*Empty, error)
	WhoAmI(context.Context, *Empty) (*Account, error)
	ChangePassword(context.Context, *ChangePasswordRequest) (*AuthResponse, error)
	GetRoles(context.Context, *AccountRequest) (*RolesResponse, error)
	SetRoles(context.Context, *SetRolesRequest) (*RolesResponse, error)
	SoftDeleteAccount(context.Context, *AccountRequest) (*Empty, error)
	RestoreAccount(context.Context, *AccountRequest) (*Empty, error)
	DeleteAccount(context.Context, *AccountRequest) (*Empty, error)
	Borrow(context.Context, *BorrowRequest) (*LoanResponse, error)
	Return(context.Context, *ReturnRequest) (*LoanResponse, error)
	ListUserLoans(context.Context, *UserLoansRequest) (*LoansResponse, error)
	ListBookHolders(context.Context, *BookHoldersRequest) (*LoansResponse, error)
	ListHistory(context.Context, *Empty) (*LoansResponse, error)
	DeleteLoan(context.Context, *DeleteLoanRequest) (*Empty, error)
	Analytics(context.Context, *Empty) (*AnalyticsResponse, error)
	AddBook(context.Context, *AddBookRequest) (*BookResponse, error)
	ListBooks(context.Context, *Empty) (*BooksResponse, error)
}

// UnimplementedLibraryServer answers every call with codes.Unimplemented.
// Embed it to stay forward compatible when methods are added.
type UnimplementedLibraryServer struct{}

func (UnimplementedLibraryServer) SignUp(context.Context, *SignUpRequest) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SignUp not implemented")
}

func (UnimplementedLibraryServer) Login(context.Context, *LoginRequest) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}

func (UnimplementedLibraryServer) RefreshToken(context.Context, *RefreshTokenRequest) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RefreshToken not implemented")
}

func (UnimplementedLibraryServer) Logout(context.Context, *LogoutRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method Logout not implemented")
}

func (UnimplementedLibraryServer) RequestPasswordReset(context.Context, *RequestPasswordResetRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method RequestPasswordReset not implemented")
}

func (UnimplementedLibraryServer) ResetPassword(context.Context, *ResetPasswordRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method ResetPassword not implemented")
}

func (UnimplementedLibraryServer) WhoAmI(context.Context, *Empty) (*Account, error) {
	return nil, status.Error(codes.Unimplemented, "method WhoAmI not implemented")
}

func (UnimplementedLibraryServer) ChangePassword(context.Context, *ChangePasswordRequest) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ChangePassword not implemented")
}

func (UnimplementedLibraryServer) GetRoles(context.Context, *AccountRequest) (*RolesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetRoles not implemented")
}

func (UnimplementedLibraryServer) SetRoles(context.Context, *SetRolesRequest) (*RolesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SetRoles not implemented")
}

func (UnimplementedLibraryServer) SoftDeleteAccount(context.Context, *AccountRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method SoftDeleteAccount not implemented")
}

func (UnimplementedLibraryServer) RestoreAccount(context.Context, *AccountRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method RestoreAccount not implemented")
}

func (UnimplementedLibraryServer) DeleteAccount(context.Context, *AccountRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteAccount not implemented")
}

func (UnimplementedLibraryServer) Borrow(context.Context, *BorrowRequest) (*LoanResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Borrow not implemented")
}

func (UnimplementedLibraryServer) Return(context.Context, *ReturnRequest) (*LoanResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Return not implemented")
}

func (UnimplementedLibraryServer) ListUserLoans(context.Context, *UserLoansRequest) (*LoansResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListUserLoans not implemented")
}

func (UnimplementedLibraryServer) ListBookHolders(context.Context, *BookHoldersRequest) (*LoansResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListBookHolders not implemented")
}

func (UnimplementedLibraryServer) ListHistory(context.Context, *Empty) (*LoansResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListHistory not implemented")
}

func (UnimplementedLibraryServer) DeleteLoan(context.Context, *DeleteLoanRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteLoan not implemented")
}

func (UnimplementedLibraryServer) Analytics(context.Context, *Empty) (*AnalyticsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Analytics not implemented")
}

func (UnimplementedLibraryServer) AddBook(context.Context, *AddBookRequest) (*BookResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method AddBook not implemented")
}

func (UnimplementedLibraryServer) ListBooks(context.Context, *Empty) (*BooksResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListBooks not implemented")
}

// unary builds the method descriptor of a single request/response call.
func unary[Req, Resp any](name string, call func(LibraryServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(LibraryServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(LibraryServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// Library_ServiceDesc is the grpc.ServiceDesc of the librarian.v1.Library
// service.
var Library_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LibraryServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("SignUp", LibraryServer.SignUp),
		unary("Login", LibraryServer.Login),
		unary("RefreshToken", LibraryServer.RefreshToken),
		unary("Logout", LibraryServer.Logout),
		unary("RequestPasswordReset", LibraryServer.RequestPasswordReset),
		unary("ResetPassword", LibraryServer.ResetPassword),
		unary("WhoAmI", LibraryServer.WhoAmI),
		unary("ChangePassword", LibraryServer.ChangePassword),
		unary("GetRoles", LibraryServer.GetRoles),
		unary("SetRoles", LibraryServer.SetRoles),
		unary("SoftDeleteAccount", LibraryServer.SoftDeleteAccount),
		unary("RestoreAccount", LibraryServer.RestoreAccount),
		unary("DeleteAccount", LibraryServer.DeleteAccount),
		unary("Borrow", LibraryServer.Borrow),
		unary("Return", LibraryServer.Return),
		unary("ListUserLoans", LibraryServer.ListUserLoans),
		unary("ListBookHolders", LibraryServer.ListBookHolders),
		unary("ListHistory", LibraryServer.ListHistory),
		unary("DeleteLoan", LibraryServer.DeleteLoan),
		unary("Analytics", LibraryServer.Analytics),
		unary("AddBook", LibraryServer.AddBook),
		unary("ListBooks", LibraryServer.ListBooks),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "librarian/v1/library.proto",
}

func RegisterLibraryServer(s grpc.ServiceRegistrar, srv LibraryServer) {
	s.RegisterService(&Library_ServiceDesc, srv)
}

// LibraryClient is the client stub of the librarian.v1.Library service.
// Every call is sent with the JSON content subtype.
type LibraryClient struct {
	cc grpc.ClientConnInterface
}

func NewLibraryClient(cc grpc.ClientConnInterface) *LibraryClient {
	return &LibraryClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *LibraryClient) SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, Library_SignUp_FullMethodName, in, opts)
}

func (c *LibraryClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, Library_Login_FullMethodName, in, opts)
}

func (c *LibraryClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, Library_RefreshToken_FullMethodName, in, opts)
}

func (c *LibraryClient) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, Library_Logout_FullMethodName, in, opts)
}

func (c *LibraryClient) RequestPasswordReset(ctx context.Context, in *RequestPasswordResetRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, Library_RequestPasswordReset_FullMethodName, in, opts)
}

func (c *LibraryClient) ResetPassword(ctx context.Context, in *ResetPasswordRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, Library_ResetPassword_FullMethodName, in, opts)
}

func (c *LibraryClient) WhoAmI(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Account, error) {
	return invoke[Account](ctx, c.cc, Library_WhoAmI_FullMethodName, in, opts)
}

func (c *LibraryClient) ChangePassword(ctx context.Context, in *ChangePasswordRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, Library_ChangePassword_FullMethodName, in, opts)
}

func (c *LibraryClient) GetRoles(ctx context.Context, in *AccountRequest, opts ...grpc.CallOption) (*RolesResponse, error) {
	return invoke[RolesResponse](ctx, c.cc, Library_GetRoles_FullMethodName, in, opts)
}

func (c *LibraryClient) SetRoles(ctx context.Context, in *SetRolesRequest, opts ...grpc.CallOption) (*RolesResponse, error) {
	return invoke[RolesResponse](ctx, c.cc, Library_SetRoles_FullMethodName, in, opts)
}

func (c *LibraryClient) SoftDeleteAccount(ctx context.Context, in *AccountRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, Library_SoftDeleteAccount_FullMethodName, in, opts)
}

func (c *LibraryClient) RestoreAccount(ctx context.Context, in *AccountRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, Library_RestoreAccount_FullMethodName, in, opts)
}

func (c *LibraryClient) DeleteAccount(ctx context.Context, in *AccountRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, Library_DeleteAccount_FullMethodName, in, opts)
}

func (c *LibraryClient) Borrow(ctx context.Context, in *BorrowRequest, opts ...grpc.CallOption) (*LoanResponse, error) {
	return invoke[LoanResponse](ctx, c.cc, Library_Borrow_FullMethodName, in, opts)
}

func (c *LibraryClient) Return(ctx context.Context, in *ReturnRequest, opts ...grpc.CallOption) (*LoanResponse, error) {
	return invoke[LoanResponse](ctx, c.cc, Library_Return_FullMethodName, in, opts)
}

func (c *LibraryClient) ListUserLoans(ctx context.Context, in *UserLoansRequest, opts ...grpc.CallOption) (*LoansResponse, error) {
	return invoke[LoansResponse](ctx, c.cc, Library_ListUserLoans_FullMethodName, in, opts)
}

func (c *LibraryClient) ListBookHolders(ctx context.Context, in *BookHoldersRequest, opts ...grpc.CallOption) (*LoansResponse, error) {
	return invoke[LoansResponse](ctx, c.cc, Library_ListBookHolders_FullMethodName, in, opts)
}

func (c *LibraryClient) ListHistory(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*LoansResponse, error) {
	return invoke[LoansResponse](ctx, c.cc, Library_ListHistory_FullMethodName, in, opts)
}

func (c *LibraryClient) DeleteLoan(ctx context.Context, in *DeleteLoanRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, Library_DeleteLoan_FullMethodName, in, opts)
}

func (c *LibraryClient) Analytics(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*AnalyticsResponse, error) {
	return invoke[AnalyticsResponse](ctx, c.cc, Library_Analytics_FullMethodName, in, opts)
}

func (c *LibraryClient) AddBook(ctx context.Context, in *AddBookRequest, opts ...grpc.CallOption) (*BookResponse, error) {
	return invoke[BookResponse](ctx, c.cc, Library_AddBook_FullMethodName, in, opts)
}

func (c *LibraryClient) ListBooks(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*BooksResponse, error) {
	return invoke[BooksResponse](ctx, c.cc, Library_ListBooks_FullMethodName, in, opts)
}
