package grpcserver

import (
	"context"
	"errors"

	"panel-rbac/apperrors"
	"panel-rbac/auth"
	"panel-rbac/interceptors"
	"panel-rbac/permissions"
	"panel-rbac/repositories"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"gorm.io/gorm"
)

type authorizationServer struct {
	checker auth.PermissionChecker
	users   repositories.UserRepository
	logger  *zap.Logger
}

var _ AuthorizationServer = (*authorizationServer)(nil)

func NewAuthorizationServer(checker auth.PermissionChecker, users repositories.UserRepository, logger *zap.Logger) AuthorizationServer {
	return &authorizationServer{checker: checker, users: users, logger: logger.Named("grpc_authorization")}
}

// Login takes {username, password} and answers {success, token, message}.
func (s *authorizationServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	username := fields["username"].GetStringValue()
	password := fields["password"].GetStringValue()
	if username == "" || password == "" {
		return nil, status.Error(codes.InvalidArgument, "username and password are required")
	}

	fail := func() (*structpb.Struct, error) {
		return structpb.NewStruct(map[string]interface{}{"success": false, "message": "Invalid credentials"})
	}

	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail()
	}
	if err != nil {
		s.logger.Error("Login lookup failed", zap.Error(err))
		return nil, status.Error(codes.Internal, "database error")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return fail()
	}

	token, err := auth.GenerateToken(user)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "could not generate token: %v", err)
	}
	return structpb.NewStruct(map[string]interface{}{"success": true, "token": token})
}

// CheckPermission takes {permission, user_id?} and answers
// {permission, user_id, decision, granted}. Without user_id the caller is
// checked; asking about someone else requires view_user.
func (s *authorizationServer) CheckPermission(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	code := fields["permission"].GetStringValue()
	if code == "" {
		return nil, status.Error(codes.InvalidArgument, "permission is required")
	}

	callerID, ok := interceptors.GetUserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "caller is not authenticated")
	}

	subjectID := callerID
	if v, ok := fields["user_id"]; ok {
		n := v.GetNumberValue()
		if n <= 0 || n != float64(uint(n)) {
			return nil, status.Error(codes.InvalidArgument, "user_id must be a positive integer")
		}
		subjectID = uint(n)
	}
	if subjectID != callerID && !s.checker.CheckPermission(ctx, callerID, permissions.ViewUser.String()) {
		return nil, status.Errorf(codes.PermissionDenied, "checking another user requires %s", permissions.ViewUser)
	}

	d, err := s.checker.DecideForUser(ctx, subjectID, code)
	if err != nil {
		s.logger.Error("Permission check failed", zap.Uint("user_id", subjectID), zap.String("permission", code), zap.Error(err))
		return nil, toStatus(err)
	}

	return structpb.NewStruct(map[string]interface{}{
		"permission": code,
		"user_id":    float64(subjectID),
		"decision":   d.String(),
		"granted":    d == auth.Granted,
	})
}

// toStatus maps service errors to gRPC status codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return status.Error(codes.InvalidArgument, apperrors.Message(err))
	case apperrors.IsNotFound(err):
		return status.Error(codes.NotFound, apperrors.Message(err))
	case errors.Is(err, apperrors.ErrImmutable):
		return status.Error(codes.PermissionDenied, apperrors.Message(err))
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrReferentialConstraint):
		return status.Error(codes.FailedPrecondition, apperrors.Message(err))
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
