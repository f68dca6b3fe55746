package grpc

import (
	"context"
	"runtime/debug"
	"strings"

	"github.com/dmitrijs2005/librarian/internal/common"
	"github.com/dmitrijs2005/librarian/internal/logging"
	pb "github.com/dmitrijs2005/librarian/internal/proto"
	"github.com/dmitrijs2005/librarian/internal/server/auth"
	"github.com/dmitrijs2005/librarian/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

// IdentityKey holds the models.Identity of an authenticated call.
const IdentityKey ctxKey = "identity"

// policy is the access requirement of one method. A zero policy is public.
// An authenticated policy with an empty role set admits any valid identity.
type policy struct {
	authenticated bool
	roles         models.RoleSet
}

var (
	public        = policy{}
	authenticated = policy{authenticated: true}
)

func requireAny(roles ...models.Role) policy {
	return policy{authenticated: true, roles: models.NewRoleSet(roles...)}
}

func methodPolicies() map[string]policy {
	anyRole := requireAny(models.RoleUser, models.RoleModerator, models.RoleAdmin)
	staff := requireAny(models.RoleModerator, models.RoleAdmin)
	admin := requireAny(models.RoleAdmin)

	return map[string]policy{
		pb.Library_SignUp_FullMethodName:               public,
		pb.Library_Login_FullMethodName:                public,
		pb.Library_RefreshToken_FullMethodName:         public,
		pb.Library_Logout_FullMethodName:               public,
		pb.Library_RequestPasswordReset_FullMethodName: public,
		pb.Library_ResetPassword_FullMethodName:        public,

		pb.Library_WhoAmI_FullMethodName:         authenticated,
		pb.Library_ChangePassword_FullMethodName: authenticated,
		pb.Library_GetRoles_FullMethodName:       authenticated,

		pb.Library_SetRoles_FullMethodName:          admin,
		pb.Library_SoftDeleteAccount_FullMethodName: admin,
		pb.Library_RestoreAccount_FullMethodName:    admin,
		pb.Library_DeleteAccount_FullMethodName:     admin,

		pb.Library_Borrow_FullMethodName:        anyRole,
		pb.Library_Return_FullMethodName:        anyRole,
		pb.Library_ListUserLoans_FullMethodName: anyRole,
		pb.Library_ListBooks_FullMethodName:     anyRole,

		pb.Library_ListBookHolders_FullMethodName: staff,
		pb.Library_ListHistory_FullMethodName:     staff,
		pb.Library_DeleteLoan_FullMethodName:      staff,
		pb.Library_Analytics_FullMethodName:       staff,
		pb.Library_AddBook_FullMethodName:         staff,
	}
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	p, known := s.policies[info.FullMethod]
	if known && !p.authenticated {
		return handler(ctx, req)
	}
	// Methods of foreign services (health) carry no policy and pass through;
	// an unlisted method of our own service is refused.
	if !known {
		if strings.HasPrefix(info.FullMethod, "/"+pb.ServiceName+"/") {
			return nil, status.Error(codes.PermissionDenied, "forbidden")
		}
		return handler(ctx, req)
	}

	token := bearerToken(ctx)
	if token == "" {
		s.logger.Debug(ctx, "access denied", "reason", "missing token")
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}

	identity, err := s.tokens.Verify(ctx, token)
	if err != nil {
		if !common.IsAuthError(err) {
			return nil, s.toStatus(ctx, err)
		}
		s.logger.Debug(ctx, "access denied", "reason", err.Error())
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}

	ctx = logging.ContextWith(ctx, "account_id", identity.AccountID)

	if !auth.Authorize(identity, p.roles) {
		s.logger.Debug(ctx, "access denied", "reason", "role", "roles", identity.Roles.String())
		return nil, status.Error(codes.PermissionDenied, "forbidden")
	}

	ctx = context.WithValue(ctx, IdentityKey, identity)
	return handler(ctx, req)
}

// recoveryInterceptor turns a handler panic into codes.Internal.
// It also scopes the method name onto every log line of the call.
func (s *GRPCServer) recoveryInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
	ctx = logging.ContextWith(ctx, "method", info.FullMethod)
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(ctx, "panic in handler", "panic", r, "stack", string(debug.Stack()))
			err = status.Error(codes.Internal, "internal error")
		}
	}()
	return handler(ctx, req)
}

// bearerToken reads the access token from the authorization header or, for
// older clients, from the access_token key.
func bearerToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(common.AuthorizationHeaderName); len(values) > 0 {
		v := strings.TrimSpace(values[0])
		if len(v) > len(common.BearerPrefix) && strings.EqualFold(v[:len(common.BearerPrefix)], common.BearerPrefix) {
			return strings.TrimSpace(v[len(common.BearerPrefix):])
		}
	}
	if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 {
		return strings.TrimSpace(values[0])
	}
	return ""
}

// identityFrom returns the identity stored by accessTokenInterceptor.
func identityFrom(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(models.Identity)
	return id, ok
}
