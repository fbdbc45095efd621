// Package auth authenticates subjects and decides whether they hold a
// permission code.
package auth

import (
	"context"
	"errors"
	"sort"

	"panel-rbac/metrics"
	"panel-rbac/models"
	"panel-rbac/repositories"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Decision is the outcome of an authorization check.
type Decision int

const (
	// NotApplicable means the code is unknown to the catalog. Callers
	// default-deny.
	NotApplicable Decision = iota
	Denied
	Granted
)

func (d Decision) String() string {
	switch d {
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	default:
		return "not_applicable"
	}
}

// PermissionChecker is what transport adapters need from the Authorizer.
type PermissionChecker interface {
	DecideForUser(ctx context.Context, userID uint, code string) (Decision, error)
	CheckPermission(ctx context.Context, userID uint, code string) bool
}

// Authorizer answers "may this subject do X" against the live catalog.
// Nothing is cached: a change to a role is visible on the next check.
type Authorizer struct {
	perms   repositories.PermissionRepository
	users   repositories.UserRepository
	logger  *zap.Logger
	metrics *metrics.Metrics
}

var _ PermissionChecker = (*Authorizer)(nil)

func NewAuthorizer(perms repositories.PermissionRepository, users repositories.UserRepository, logger *zap.Logger, m *metrics.Metrics) *Authorizer {
	return &Authorizer{
		perms:   perms,
		users:   users,
		logger:  logger.Named("authorizer"),
		metrics: m,
	}
}

// Decide checks code against a subject whose roles and permissions are
// already loaded.
func (a *Authorizer) Decide(ctx context.Context, subject *models.User, code string) (Decision, error) {
	exists, err := a.perms.ExistsByCode(ctx, code)
	if err != nil {
		return Denied, err
	}
	d := decide(subject, code, exists)
	if subject == nil && exists {
		a.logger.Debug("Permission check without subject", zap.String("permission", code))
	}
	a.metrics.ObserveDecision(d.String())
	return d, nil
}

func decide(subject *models.User, code string, known bool) Decision {
	if !known {
		return NotApplicable
	}
	if subject == nil {
		return Denied
	}
	for i := range subject.Roles {
		if subject.Roles[i].HasPermissionCode(code) {
			return Granted
		}
	}
	return Denied
}

// DecideForUser loads the subject's role graph and decides. An unknown user
// is treated as an absent subject.
func (a *Authorizer) DecideForUser(ctx context.Context, userID uint, code string) (Decision, error) {
	user, err := a.users.FindByIDWithRoles(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return Denied, err
		}
		user = nil
	}
	return a.Decide(ctx, user, code)
}

// CheckPermission reports whether userID is granted code. Anything other
// than Granted, including errors, is a denial.
func (a *Authorizer) CheckPermission(ctx context.Context, userID uint, code string) bool {
	d, err := a.DecideForUser(ctx, userID, code)
	if err != nil {
		a.logger.Error("Permission check failed", zap.Uint("user_id", userID), zap.String("permission", code), zap.Error(err))
		return false
	}
	return d == Granted
}

// EffectivePermissions returns the sorted union of the codes granted by the
// subject's roles.
func (a *Authorizer) EffectivePermissions(subject *models.User) []string {
	if subject == nil {
		return []string{}
	}
	seen := make(map[string]struct{})
	for _, r := range subject.Roles {
		for _, p := range r.Permissions {
			seen[p.Code] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// EffectiveRoleNames returns the subject's assigned role names, the legacy
// role names and the implicit base role.
func (a *Authorizer) EffectiveRoleNames(subject *models.User) []string {
	seen := map[string]struct{}{models.RoleUser: {}}
	if subject != nil {
		for _, r := range subject.Roles {
			seen[r.Name] = struct{}{}
		}
		for _, name := range subject.LegacyRoles {
			seen[name] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
