package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"panel-rbac/apperrors"
	"panel-rbac/models"
	"panel-rbac/repositories"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateRoleInput struct {
	Name        string   `json:"name" validate:"required,max=100,role_name"`
	DisplayName string   `json:"display_name" validate:"required,max=255"`
	Description *string  `json:"description,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

type UpdateRoleInput struct {
	DisplayName string  `json:"display_name" validate:"required,max=255"`
	Description *string `json:"description,omitempty"`
}

// RoleService manages roles and their permission sets. System roles are
// read-only through this service.
type RoleService interface {
	CreateRole(ctx context.Context, input CreateRoleInput) (*models.Role, error)
	UpdateRole(ctx context.Context, id uint, input UpdateRoleInput) (*models.Role, error)
	DeleteRole(ctx context.Context, id uint) error
	AssignPermissions(ctx context.Context, id uint, codes []string) (*models.Role, error)
	AddPermission(ctx context.Context, id uint, code string) (*models.Role, error)
	RemovePermission(ctx context.Context, id uint, code string) (*models.Role, error)
	GetRole(ctx context.Context, id uint) (*models.Role, error)
	GetRoleByName(ctx context.Context, name string) (*models.Role, error)
	ListRoles(ctx context.Context) ([]models.Role, error)
	ListSystemRoles(ctx context.Context) ([]models.Role, error)
	ListCustomRoles(ctx context.Context) ([]models.Role, error)
	UserCount(ctx context.Context, id uint) (int64, error)
}

type roleService struct {
	db     *gorm.DB
	roles  repositories.RoleRepository
	perms  repositories.PermissionRepository
	logger *zap.Logger
}

var _ RoleService = (*roleService)(nil)

// NewRoleService creates a new RoleService instance
func NewRoleService(db *gorm.DB, roles repositories.RoleRepository, perms repositories.PermissionRepository, logger *zap.Logger) RoleService {
	return &roleService{db: db, roles: roles, perms: perms, logger: logger.Named("roles")}
}

// resolveCodes loads every permission in codes, failing with ErrNotFound if
// any code is unknown.
func resolveCodes(ctx context.Context, repo repositories.PermissionRepository, codes []string) ([]models.Permission, error) {
	unique := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		unique[c] = struct{}{}
	}
	list := make([]string, 0, len(unique))
	for c := range unique {
		list = append(list, c)
	}
	perms, err := repo.FindByCodes(ctx, list)
	if err != nil {
		return nil, err
	}
	if len(perms) == len(list) {
		return perms, nil
	}
	for _, p := range perms {
		delete(unique, p.Code)
	}
	missing := make([]string, 0, len(unique))
	for c := range unique {
		missing = append(missing, c)
	}
	sort.Strings(missing)
	return nil, apperrors.NotFound("Unknown permission codes: %s", strings.Join(missing, ", "))
}

func (s *roleService) CreateRole(ctx context.Context, input CreateRoleInput) (*models.Role, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	role := &models.Role{
		Name:        input.Name,
		DisplayName: input.DisplayName,
		Description: optionalString(input.Description),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roles := s.roles.WithTx(tx)
		_, err := roles.FindByName(ctx, input.Name)
		if err == nil {
			return apperrors.Conflict("Role with name '%s' already exists", input.Name)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		perms, err := resolveCodes(ctx, s.perms.WithTx(tx), input.Permissions)
		if err != nil {
			return err
		}
		role.Permissions = perms
		return roles.Create(ctx, role)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Role created",
		zap.String("name", role.Name),
		zap.String("display_name", role.DisplayName),
		zap.Int("permission_count", len(role.Permissions)))
	return role, nil
}

func (s *roleService) UpdateRole(ctx context.Context, id uint, input UpdateRoleInput) (*models.Role, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var role *models.Role
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roles := s.roles.WithTx(tx)
		var err error
		role, err = roles.FindByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "Role %d not found", id)
		}
		if role.IsSystem {
			return apperrors.Immutable("Cannot update system role '%s'", role.Name)
		}
		role.DisplayName = input.DisplayName
		role.Description = optionalString(input.Description)
		return roles.Save(ctx, role)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Role updated", zap.String("name", role.Name), zap.String("display_name", role.DisplayName))
	return role, nil
}

// DeleteRole removes a custom role that no user holds.
func (s *roleService) DeleteRole(ctx context.Context, id uint) error {
	var name string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roles := s.roles.WithTx(tx)
		role, err := roles.FindByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "Role %d not found", id)
		}
		if role.IsSystem {
			return apperrors.Immutable("Cannot delete system role '%s'", role.Name)
		}
		users, err := roles.CountUsers(ctx, role.ID)
		if err != nil {
			return err
		}
		if users > 0 {
			return apperrors.Referential("Cannot delete role '%s' because it has %d assigned users", role.Name, users)
		}
		name = role.Name
		return roles.Delete(ctx, role)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Role deleted", zap.String("name", name))
	return nil
}

// AssignPermissions replaces the role's permission set. Either the whole new
// set is stored or nothing changes.
func (s *roleService) AssignPermissions(ctx context.Context, id uint, codes []string) (*models.Role, error) {
	var role *models.Role
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roles := s.roles.WithTx(tx)
		var err error
		role, err = s.mutableRole(ctx, roles, id)
		if err != nil {
			return err
		}
		perms, err := resolveCodes(ctx, s.perms.WithTx(tx), codes)
		if err != nil {
			return err
		}
		if err := roles.ReplacePermissions(ctx, role, perms); err != nil {
			return err
		}
		role, err = roles.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Role permissions updated", zap.String("role", role.Name), zap.Int("permission_count", len(role.Permissions)))
	return role, nil
}

func (s *roleService) AddPermission(ctx context.Context, id uint, code string) (*models.Role, error) {
	return s.togglePermission(ctx, id, code, true)
}

func (s *roleService) RemovePermission(ctx context.Context, id uint, code string) (*models.Role, error) {
	return s.togglePermission(ctx, id, code, false)
}

func (s *roleService) togglePermission(ctx context.Context, id uint, code string, add bool) (*models.Role, error) {
	var role *models.Role
	changed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roles := s.roles.WithTx(tx)
		var err error
		role, err = s.mutableRole(ctx, roles, id)
		if err != nil {
			return err
		}
		perm, err := s.perms.WithTx(tx).FindByCode(ctx, code)
		if err != nil {
			return notFoundOr(err, "Permission '%s' not found", code)
		}

		has := role.HasPermissionCode(code)
		switch {
		case add && !has:
			err = roles.AppendPermission(ctx, role, perm)
		case !add && has:
			err = roles.RemovePermission(ctx, role, perm)
		default:
			return nil
		}
		if err != nil {
			return err
		}
		changed = true
		role, err = roles.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		msg := "Permission removed from role"
		if add {
			msg = "Permission added to role"
		}
		s.logger.Info(msg, zap.String("role", role.Name), zap.String("permission", code))
	}
	return role, nil
}

func (s *roleService) mutableRole(ctx context.Context, roles repositories.RoleRepository, id uint) (*models.Role, error) {
	role, err := roles.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Role %d not found", id)
	}
	if role.IsSystem {
		return nil, apperrors.Immutable("Cannot modify permissions of system role '%s'", role.Name)
	}
	return role, nil
}

func (s *roleService) GetRole(ctx context.Context, id uint) (*models.Role, error) {
	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Role %d not found", id)
	}
	return role, nil
}

func (s *roleService) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	role, err := s.roles.FindByName(ctx, name)
	if err != nil {
		return nil, notFoundOr(err, "Role '%s' not found", name)
	}
	return role, nil
}

func (s *roleService) ListRoles(ctx context.Context) ([]models.Role, error) {
	return s.roles.FindAllOrdered(ctx)
}

func (s *roleService) ListSystemRoles(ctx context.Context) ([]models.Role, error) {
	return s.roles.FindSystem(ctx)
}

func (s *roleService) ListCustomRoles(ctx context.Context) ([]models.Role, error) {
	return s.roles.FindCustom(ctx)
}

func (s *roleService) UserCount(ctx context.Context, id uint) (int64, error) {
	if _, err := s.GetRole(ctx, id); err != nil {
		return 0, err
	}
	return s.roles.CountUsers(ctx, id)
}
