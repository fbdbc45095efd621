package services

import (
	"context"
	"errors"

	"panel-rbac/apperrors"
	"panel-rbac/models"
	"panel-rbac/repositories"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserRoleService manages which roles a user holds.
type UserRoleService interface {
	AssignRoleToUser(ctx context.Context, userID uint, roleName string) (*models.User, error)
	RemoveRoleFromUser(ctx context.Context, userID uint, roleName string) (*models.User, error)
	// AssignRolesToUser replaces the user's roles with exactly roleNames.
	AssignRolesToUser(ctx context.Context, userID uint, roleNames []string) (*models.User, error)
	GetUserRoles(ctx context.Context, userID uint) ([]models.Role, error)
	// GetUser returns the user with the full role/permission graph loaded.
	GetUser(ctx context.Context, userID uint) (*models.User, error)
}

type userRoleService struct {
	users  repositories.UserRepository
	roles  repositories.RoleRepository
	logger *zap.Logger
}

var _ UserRoleService = (*userRoleService)(nil)

// NewUserRoleService creates a new UserRoleService instance
func NewUserRoleService(users repositories.UserRepository, roles repositories.RoleRepository, logger *zap.Logger) UserRoleService {
	return &userRoleService{users: users, roles: roles, logger: logger.Named("user_roles")}
}

func (s *userRoleService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.FindByIDWithRoles(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "User %d not found", userID)
	}
	return user, nil
}

// role loads a role for linking; its permission set is dropped so that
// linking does not rewrite role_permission rows.
func (s *userRoleService) role(ctx context.Context, name string) (*models.Role, error) {
	role, err := s.roles.FindByName(ctx, name)
	if err != nil {
		return nil, notFoundOr(err, "Role '%s' not found", name)
	}
	role.Permissions = nil
	return role, nil
}

func (s *userRoleService) AssignRoleToUser(ctx context.Context, userID uint, roleName string) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	role, err := s.role(ctx, roleName)
	if err != nil {
		return nil, err
	}
	if user.HasRole(role.ID) {
		return user, nil
	}
	if err := s.users.AppendRole(ctx, user, role); err != nil {
		return nil, err
	}

	s.logger.Info("Role assigned to user", zap.Uint("user_id", user.ID), zap.String("role", role.Name))
	return s.GetUser(ctx, userID)
}

func (s *userRoleService) RemoveRoleFromUser(ctx context.Context, userID uint, roleName string) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	role, err := s.role(ctx, roleName)
	if err != nil {
		return nil, err
	}
	if !user.HasRole(role.ID) {
		return user, nil
	}
	if err := s.users.RemoveRole(ctx, user, role); err != nil {
		return nil, err
	}

	s.logger.Info("Role removed from user", zap.Uint("user_id", user.ID), zap.String("role", role.Name))
	return s.GetUser(ctx, userID)
}

func (s *userRoleService) AssignRolesToUser(ctx context.Context, userID uint, roleNames []string) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	roles := make([]models.Role, 0, len(roleNames))
	seen := make(map[string]bool, len(roleNames))
	for _, name := range roleNames {
		if seen[name] {
			continue
		}
		seen[name] = true
		role, err := s.role(ctx, name)
		if err != nil {
			return nil, err
		}
		roles = append(roles, *role)
	}

	if err := s.users.ReplaceRoles(ctx, user, roles); err != nil {
		return nil, err
	}

	s.logger.Info("User roles replaced", zap.Uint("user_id", user.ID), zap.Int("role_count", len(roles)))
	return s.GetUser(ctx, userID)
}

func (s *userRoleService) GetUserRoles(ctx context.Context, userID uint) ([]models.Role, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User %d not found", userID)
		}
		return nil, err
	}
	return s.roles.FindRolesForUser(ctx, userID)
}
