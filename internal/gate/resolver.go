package gate

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"storefront-service/internal/model"
	"storefront-service/internal/role"
)

// TenantContext is the authorized context handed back to tenant-scoped
// handlers: who is acting, in which store, with which role.
type TenantContext struct {
	UserID    uint
	StoreID   uint
	StoreSlug string
	StoreName string
	Role      role.Role
}

// MembershipResolver locates a store by slug and the caller's membership in
// it. Implementations must fail closed: unknown slug and missing membership
// both yield ErrNotFound.
type MembershipResolver interface {
	ResolveMembership(storeSlug string, userID uint) (*TenantContext, error)
}

// DBResolver resolves memberships against the system of record. Every call
// reads current state; nothing is memoized across requests.
type DBResolver struct {
	db *gorm.DB
}

func NewDBResolver(db *gorm.DB) *DBResolver {
	return &DBResolver{db: db}
}

func (r *DBResolver) ResolveMembership(storeSlug string, userID uint) (*TenantContext, error) {
	var store model.Store
	result := r.db.Where("slug = ?", storeSlug).First(&store)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store lookup: %w", result.Error)
	}

	var membership model.StoreMembership
	result = r.db.Where("store_id = ? AND user_id = ?", store.ID, userID).First(&membership)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			// Same rejection as an unknown slug.
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("membership lookup: %w", result.Error)
	}

	return &TenantContext{
		UserID:    userID,
		StoreID:   store.ID,
		StoreSlug: store.Slug,
		StoreName: store.Name,
		Role:      membership.Role,
	}, nil
}
