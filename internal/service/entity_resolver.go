package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samuelbyalugaba/KenaAI-sub000/common/id"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/metrics"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/model"
	"github.com/samuelbyalugaba/KenaAI-sub000/internal/store"
)

const (
	DefaultIdentityDomain = "webchat.io"

	// One initial attempt plus one retry after a uniqueness conflict.
	maxResolveAttempts = 2
)

type EntityResolver interface {
	ResolveTenant(ctx context.Context, botID string) (*model.Tenant, error)
	// ResolveOrCreateContact returns created=true only for the call that
	// inserted the row.
	ResolveOrCreateContact(ctx context.Context, tenantID int64, externalUserID, displayNameHint string) (*model.Contact, bool, error)
}

type entityResolver struct {
	tenants        store.TenantStore
	contacts       store.ContactStore
	identityDomain string
}

func NewEntityResolver(tenants store.TenantStore, contacts store.ContactStore, identityDomain string) EntityResolver {
	if identityDomain == "" {
		identityDomain = DefaultIdentityDomain
	}
	return &entityResolver{
		tenants:        tenants,
		contacts:       contacts,
		identityDomain: identityDomain,
	}
}

// ContactIdentity derives the per-tenant identity of an external user.
func ContactIdentity(externalUserID, domain string) string {
	return strings.TrimSpace(externalUserID) + "@" + domain
}

func (r *entityResolver) ResolveTenant(ctx context.Context, botID string) (*model.Tenant, error) {
	tenant, err := r.tenants.GetByBotID(ctx, botID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("fetching tenant: %w", err)
	}
	return tenant, nil
}

func (r *entityResolver) ResolveOrCreateContact(ctx context.Context, tenantID int64, externalUserID, displayNameHint string) (*model.Contact, bool, error) {
	identity := ContactIdentity(externalUserID, r.identityDomain)

	for attempt := 1; ; attempt++ {
		contact, created, err := r.resolveContact(ctx, tenantID, identity, externalUserID, displayNameHint)
		if err == nil {
			return contact, created, nil
		}
		if !errors.Is(err, store.ErrConflict) || attempt >= maxResolveAttempts {
			return nil, false, fmt.Errorf("resolving contact: %w", err)
		}

		metrics.StoreConflictsTotal.WithLabelValues("contact").Inc()
		slog.DebugContext(ctx, "contact create conflicted, retrying",
			"tenant_id", tenantID,
			"identity", identity,
			"attempt", attempt)
	}
}

func (r *entityResolver) resolveContact(ctx context.Context, tenantID int64, identity, externalUserID, displayNameHint string) (*model.Contact, bool, error) {
	existing, err := r.contacts.GetByTenantAndIdentity(ctx, tenantID, identity)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	name := strings.TrimSpace(displayNameHint)
	if name == "" {
		name = "Visitor " + strings.TrimSpace(externalUserID)
	}

	return r.contacts.CreateOrGet(ctx, &model.Contact{
		ID:             id.New(),
		TenantID:       tenantID,
		Name:           name,
		Identity:       identity,
		ExternalUserID: strings.TrimSpace(externalUserID),
		IsOnline:       true,
		Notes:          []string{},
	})
}
