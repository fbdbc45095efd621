package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"panel-rbac/apperrors"
	"panel-rbac/models"
	"panel-rbac/permissions"
	"panel-rbac/repositories"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EnabledPluginSource yields the names of the currently enabled plugins.
type EnabledPluginSource interface {
	EnabledPlugins(ctx context.Context) ([]string, error)
}

// Declaration is what a plugin declares for one of its permission codes.
type Declaration struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// SyncResult summarises one plugin permission sync.
type SyncResult struct {
	Created   int      `json:"created"`
	Updated   int      `json:"updated"`
	Unchanged int      `json:"unchanged"`
	Rejected  []string `json:"rejected,omitempty"`
}

type CreatePermissionInput struct {
	Code        string  `json:"code" validate:"required,max=100,permission_code"`
	Name        string  `json:"name" validate:"required,max=255"`
	Section     string  `json:"section" validate:"required,max=100"`
	Description *string `json:"description,omitempty"`
	IsSystem    bool    `json:"is_system,omitempty"`
	// PluginName marks the permission as owned by that plugin. The code must
	// lie in the plugin's namespace.
	PluginName *string `json:"plugin_name,omitempty" validate:"omitempty,max=100"`
}

type UpdatePermissionInput struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description,omitempty"`
}

// PermissionService manages the permission catalog.
type PermissionService interface {
	CreatePermission(ctx context.Context, input CreatePermissionInput) (*models.Permission, error)
	UpdatePermission(ctx context.Context, id uint, input UpdatePermissionInput) (*models.Permission, error)
	DeletePermission(ctx context.Context, id uint) error
	GetByCode(ctx context.Context, code string) (*models.Permission, error)
	HasPermission(ctx context.Context, code string) (bool, error)
	ListAll(ctx context.Context) ([]models.Permission, error)
	ListByPlugin(ctx context.Context, pluginName string) ([]models.Permission, error)
	ListBySection(ctx context.Context, section string) ([]models.Permission, error)
	ListActive(ctx context.Context) ([]models.Permission, error)
	SectionsWithCount(ctx context.Context) ([]repositories.SectionCount, error)
	SyncPluginPermissions(ctx context.Context, pluginName string, declared map[string]Declaration) (SyncResult, error)
	DeletePluginPermissions(ctx context.Context, pluginName string) (int64, error)
}

type permissionService struct {
	db      *gorm.DB
	perms   repositories.PermissionRepository
	roles   repositories.RoleRepository
	plugins repositories.PluginRepository
	enabled EnabledPluginSource
	logger  *zap.Logger
}

var _ PermissionService = (*permissionService)(nil)

// NewPermissionService creates a new PermissionService instance
func NewPermissionService(
	db *gorm.DB,
	perms repositories.PermissionRepository,
	roles repositories.RoleRepository,
	plugins repositories.PluginRepository,
	enabled EnabledPluginSource,
	logger *zap.Logger,
) PermissionService {
	return &permissionService{
		db:      db,
		perms:   perms,
		roles:   roles,
		plugins: plugins,
		enabled: enabled,
		logger:  logger.Named("permissions"),
	}
}

func (s *permissionService) CreatePermission(ctx context.Context, input CreatePermissionInput) (*models.Permission, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	plugin := optionalString(input.PluginName)
	if plugin != nil && !permissions.HasPluginPrefix(input.Code, *plugin) {
		return nil, apperrors.Validation(nil, "Code '%s' is outside the namespace %s of plugin '%s'",
			input.Code, permissions.PluginPrefix(*plugin), *plugin)
	}

	perm := &models.Permission{
		Code:        input.Code,
		Name:        input.Name,
		Section:     input.Section,
		Description: optionalString(input.Description),
		IsSystem:    input.IsSystem,
		PluginName:  plugin,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.perms.WithTx(tx)
		exists, err := repo.ExistsByCode(ctx, input.Code)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.Conflict("Permission with code '%s' already exists", input.Code)
		}
		return repo.Create(ctx, perm)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Permission created",
		zap.String("code", perm.Code), zap.String("section", perm.Section), zap.Bool("system", perm.IsSystem))
	return perm, nil
}

func (s *permissionService) UpdatePermission(ctx context.Context, id uint, input UpdatePermissionInput) (*models.Permission, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var perm *models.Permission
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.perms.WithTx(tx)
		var err error
		perm, err = repo.FindByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "Permission %d not found", id)
		}
		if perm.IsSystem {
			return apperrors.Immutable("Cannot update system permission '%s'", perm.Code)
		}
		perm.Name = input.Name
		perm.Description = optionalString(input.Description)
		return repo.Save(ctx, perm)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Permission updated", zap.String("code", perm.Code))
	return perm, nil
}

// DeletePermission removes a non-system permission and its role links.
func (s *permissionService) DeletePermission(ctx context.Context, id uint) error {
	var (
		code     string
		detached int64
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.perms.WithTx(tx)
		perm, err := repo.FindByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "Permission %d not found", id)
		}
		if perm.IsSystem {
			return apperrors.Immutable("Cannot delete system permission '%s'", perm.Code)
		}
		code = perm.Code
		if detached, err = s.roles.WithTx(tx).CountRolesWithPermission(ctx, perm.ID); err != nil {
			return err
		}
		return repo.Delete(ctx, perm)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Permission deleted", zap.String("code", code), zap.Int64("detached_roles", detached))
	return nil
}

func (s *permissionService) GetByCode(ctx context.Context, code string) (*models.Permission, error) {
	perm, err := s.perms.FindByCode(ctx, code)
	if err != nil {
		return nil, notFoundOr(err, "Permission '%s' not found", code)
	}
	return perm, nil
}

func (s *permissionService) HasPermission(ctx context.Context, code string) (bool, error) {
	return s.perms.ExistsByCode(ctx, code)
}

func (s *permissionService) ListAll(ctx context.Context) ([]models.Permission, error) {
	return s.perms.FindAll(ctx)
}

func (s *permissionService) ListByPlugin(ctx context.Context, pluginName string) ([]models.Permission, error) {
	return s.perms.FindByPlugin(ctx, pluginName)
}

func (s *permissionService) ListBySection(ctx context.Context, section string) ([]models.Permission, error) {
	return s.perms.FindBySection(ctx, section)
}

// ListActive returns core permissions plus those of enabled plugins. The
// enabled set comes from the enabled-plugin cache.
func (s *permissionService) ListActive(ctx context.Context) ([]models.Permission, error) {
	enabled, err := s.enabled.EnabledPlugins(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving enabled plugins: %w", err)
	}
	return s.perms.FindActive(ctx, enabled)
}

func (s *permissionService) SectionsWithCount(ctx context.Context) ([]repositories.SectionCount, error) {
	return s.perms.SectionsWithCount(ctx)
}

// SyncPluginPermissions reconciles the catalog with a plugin's declared
// permissions in one transaction. Codes outside the plugin's namespace,
// codes whose longest matching namespace belongs to another installed
// plugin or is shared by two of them, and codes already owned by someone
// else are rejected. Existing
// rows are only written when their name or description changed, so a repeat
// sync with the same declaration writes nothing.
func (s *permissionService) SyncPluginPermissions(ctx context.Context, pluginName string, declared map[string]Declaration) (SyncResult, error) {
	var res SyncResult
	log := s.logger.With(zap.String("plugin", pluginName))

	installed, err := s.plugins.FindInstalledNames(ctx)
	if err != nil {
		return res, fmt.Errorf("loading installed plugins: %w", err)
	}
	candidates := append(installed, pluginName)

	codes := make([]string, 0, len(declared))
	for code := range declared {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	section := permissions.PluginSection(pluginName)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.perms.WithTx(tx)
		for _, code := range codes {
			decl := declared[code]

			if !permissions.HasPluginPrefix(code, pluginName) {
				log.Warn("Ignoring permission outside plugin namespace",
					zap.String("code", code), zap.String("prefix", permissions.PluginPrefix(pluginName)))
				res.Rejected = append(res.Rejected, code)
				continue
			}
			owner, ok := permissions.PrefixOwner(code, candidates)
			if !ok {
				log.Warn("Ignoring permission in a namespace shared by several plugins", zap.String("code", code))
				res.Rejected = append(res.Rejected, code)
				continue
			}
			if owner != pluginName {
				log.Warn("Ignoring permission claimed by another plugin namespace",
					zap.String("code", code), zap.String("owner", owner))
				res.Rejected = append(res.Rejected, code)
				continue
			}

			name := decl.Name
			if name == "" {
				name = code
			}
			desc := optionalString(&decl.Description)

			existing, err := repo.FindByCode(ctx, code)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				perm := &models.Permission{
					Code:        code,
					Name:        name,
					Description: desc,
					Section:     section,
					PluginName:  &pluginName,
				}
				if err := repo.Create(ctx, perm); err != nil {
					return fmt.Errorf("creating %s: %w", code, err)
				}
				res.Created++
				continue
			}
			if err != nil {
				return fmt.Errorf("loading %s: %w", code, err)
			}

			if !existing.OwnedBy(pluginName) {
				log.Warn("Ignoring permission owned elsewhere", zap.String("code", code))
				res.Rejected = append(res.Rejected, code)
				continue
			}
			if existing.Name == name && sameString(existing.Description, desc) {
				res.Unchanged++
				continue
			}
			existing.Name = name
			existing.Description = desc
			if err := repo.Save(ctx, existing); err != nil {
				return fmt.Errorf("updating %s: %w", code, err)
			}
			res.Updated++
		}
		return nil
	})
	if err != nil {
		return SyncResult{}, err
	}

	if res.Created > 0 || res.Updated > 0 {
		log.Info("Synced plugin permissions", zap.Int("created", res.Created), zap.Int("updated", res.Updated))
	}
	return res, nil
}

func (s *permissionService) DeletePluginPermissions(ctx context.Context, pluginName string) (int64, error) {
	n, err := s.perms.DeleteByPlugin(ctx, pluginName)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Deleted plugin permissions", zap.String("plugin", pluginName), zap.Int64("count", n))
	return n, nil
}
