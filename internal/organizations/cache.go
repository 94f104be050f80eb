// Package organizations holds the admin session of a browsing session (the
// organizations the user belongs to, the one currently administered and the
// role derived from it) and the organization administration endpoints.
package organizations

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/voluntariado/portal/internal/apperr"
	"github.com/voluntariado/portal/internal/i18n"
	"github.com/voluntariado/portal/internal/models"
	"github.com/voluntariado/portal/pkg/storage"
)

// Storage keys owned by the cache.
const (
	KeyOrganizations = "admin_organizations"
	KeyCurrentOrg    = "admin_current_org"
	KeyCurrentRole   = "admin_current_role"
)

// Lister fetches the organizations of a user with the user's roles in each.
type Lister interface {
	OrganizationsForUser(ctx context.Context, userID int) ([]models.Organization, error)
}

// AdminSession is a snapshot of the cache.
type AdminSession struct {
	Organizations       []models.Organization `json:"organizaciones"`
	CurrentOrganization *models.Organization  `json:"organizacionActual"`
	CurrentRole         *models.Role          `json:"rolActual"`
}

// Cache is the admin session of one browsing session. It is the only writer of
// its three storage keys.
type Cache struct {
	store  storage.Store
	lister Lister
	logger *zap.Logger

	mu      sync.RWMutex
	orgs    []models.Organization
	current *models.Organization
	role    *models.Role
}

// NewCache creates the cache over store and restores what was persisted.
// Each piece is restored on its own; one that fails to parse is skipped.
func NewCache(ctx context.Context, store storage.Store, lister Lister, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cache{store: store, lister: lister, logger: logger}
	c.hydrate(ctx)
	return c
}

func (c *Cache) hydrate(ctx context.Context) {
	var orgs []models.Organization
	if c.restore(ctx, KeyOrganizations, &orgs) {
		c.orgs = orgs
	}
	var current models.Organization
	if c.restore(ctx, KeyCurrentOrg, &current) {
		c.current = &current
	}
	var role models.Role
	roleOK := c.restore(ctx, KeyCurrentRole, &role)

	switch {
	case c.current == nil:
		// The role only exists relative to a current organization.
	case roleOK:
		c.role = &role
	default:
		c.role = PrimaryAdminRole(c.current.Roles)
	}
}

func (c *Cache) restore(ctx context.Context, key string, out interface{}) bool {
	err := storage.GetJSON(ctx, c.store, key, out)
	if err == nil {
		return true
	}
	if !errors.Is(err, storage.ErrNotFound) {
		c.logger.Warn("skip admin session piece", zap.String("key", key), zap.Error(err))
	}
	return false
}

// PrimaryAdminRole returns the admin role with the lowest id, or nil when no
// role is an admin role. Lower ids are assumed to be more senior roles.
func PrimaryAdminRole(roles []models.Role) *models.Role {
	var admins []models.Role
	for _, r := range roles {
		if r.IsAdmin {
			admins = append(admins, r)
		}
	}
	if len(admins) == 0 {
		return nil
	}
	sort.SliceStable(admins, func(i, j int) bool { return admins[i].ID < admins[j].ID })
	role := admins[0]
	return &role
}

// Snapshot returns a copy of the current state.
func (c *Cache) Snapshot() AdminSession {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := AdminSession{Organizations: append([]models.Organization{}, c.orgs...)}
	if c.current != nil {
		org := *c.current
		s.CurrentOrganization = &org
	}
	if c.role != nil {
		role := *c.role
		s.CurrentRole = &role
	}
	return s
}

// Organizations returns the cached organization list.
func (c *Cache) Organizations() []models.Organization {
	return c.Snapshot().Organizations
}

// CurrentOrganization returns the organization being administered, if any.
func (c *Cache) CurrentOrganization() (models.Organization, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return models.Organization{}, false
	}
	return *c.current, true
}

// CurrentRole returns the role derived from the current organization, if any.
func (c *Cache) CurrentRole() (models.Role, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.role == nil {
		return models.Role{}, false
	}
	return *c.role, true
}

// IsAdmin reports whether the current role is an admin role.
func (c *Cache) IsAdmin() bool {
	role, ok := c.CurrentRole()
	return ok && role.IsAdmin
}

// LoadOrganizations fetches the user's organizations, replaces the cached list
// and persists it.
func (c *Cache) LoadOrganizations(ctx context.Context, userID int) ([]models.Organization, error) {
	orgs, err := c.lister.OrganizationsForUser(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap("", err)
	}
	if orgs == nil {
		orgs = []models.Organization{}
	}
	c.mu.Lock()
	c.orgs = orgs
	c.mu.Unlock()
	c.persist(ctx, KeyOrganizations, orgs)
	return append([]models.Organization{}, orgs...), nil
}

// SetCurrentOrganization makes org the administered organization and derives
// the current role from its roles.
func (c *Cache) SetCurrentOrganization(ctx context.Context, org models.Organization) {
	role := PrimaryAdminRole(org.Roles)
	c.mu.Lock()
	c.current = &org
	c.role = role
	c.mu.Unlock()
	c.persist(ctx, KeyCurrentOrg, &org)
	c.persist(ctx, KeyCurrentRole, role)
}

// SelectOrganization sets the current organization to the cached one with id.
func (c *Cache) SelectOrganization(ctx context.Context, id int) (models.Organization, error) {
	for _, org := range c.Organizations() {
		if org.ID == id {
			c.SetCurrentOrganization(ctx, org)
			return org, nil
		}
	}
	return models.Organization{}, apperr.E(apperr.KindForbidden, i18n.MsgOrgNotMember)
}

// ClearCurrentOrganization leaves the current organization; the list stays.
func (c *Cache) ClearCurrentOrganization(ctx context.Context) {
	c.mu.Lock()
	c.current = nil
	c.role = nil
	c.mu.Unlock()
	c.remove(ctx, KeyCurrentOrg, KeyCurrentRole)
}

// ClearSession drops everything, persisted copies included.
func (c *Cache) ClearSession(ctx context.Context) {
	c.mu.Lock()
	c.orgs = nil
	c.current = nil
	c.role = nil
	c.mu.Unlock()
	c.remove(ctx, KeyOrganizations, KeyCurrentOrg, KeyCurrentRole)
}

// Touch rewrites the persisted pieces so their idle expiry starts over.
func (c *Cache) Touch(ctx context.Context) {
	s := c.Snapshot()
	if len(s.Organizations) > 0 {
		c.persist(ctx, KeyOrganizations, s.Organizations)
	}
	if s.CurrentOrganization != nil {
		c.persist(ctx, KeyCurrentOrg, s.CurrentOrganization)
		c.persist(ctx, KeyCurrentRole, s.CurrentRole)
	}
}

func (c *Cache) persist(ctx context.Context, key string, value interface{}) {
	if err := storage.SetJSON(ctx, c.store, key, value, 0); err != nil {
		c.logger.Warn("persist admin session", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) remove(ctx context.Context, keys ...string) {
	if err := c.store.Delete(ctx, keys...); err != nil {
		c.logger.Warn("clear admin session", zap.Strings("keys", keys), zap.Error(err))
	}
}
