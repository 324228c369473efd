package frontdoor

import (
	"context"
	"strings"
	"unicode"

	"github.com/jrsteele09/go-auth-frontdoor/authority"
	apperrors "github.com/jrsteele09/go-auth-frontdoor/internal/errors"
	"github.com/jrsteele09/go-auth-frontdoor/internal/utils"
	"github.com/jrsteele09/go-auth-frontdoor/sessions"
	"github.com/pkg/errors"
)

const (
	opCreateOrganization          = "CreateOrganization"
	opSelectOrganization          = "SelectOrganization"
	opListSwitchableOrganizations = "ListSwitchableOrganizations"
	opResolveOrganizationBySlug   = "ResolveOrganizationBySlug"
	opUpdateOrganizationJITPolicy = "UpdateOrganizationJITPolicy"
)

// CreateOrganization creates an organization for the identity verified by
// discovery and scopes the browser's session to it. The intermediate
// credential is kept when creation fails so the browser can try again.
func (c *Controller) CreateOrganization(ctx context.Context, browserID, orgName, orgSlug string) (*Identity, error) {
	name := strings.TrimSpace(orgName)
	slug := stripSpaces(orgSlug)

	var identity *Identity
	err := c.withSession(ctx, browserID, opCreateOrganization, func(ctx context.Context, record sessions.Record) error {
		from := record.State()
		ist, ok := from.(sessions.Intermediate)
		if !ok {
			return preconditionFailed(opCreateOrganization, "an intermediate credential is required")
		}
		if name == "" {
			return validationFailed(opCreateOrganization, "organization name is required")
		}
		if slug == "" {
			return validationFailed(opCreateOrganization, "organization slug is required")
		}

		res, err := c.authority.CreateOrganizationFromIntermediateCredential(ctx, ist.IST, name, slug)
		if err != nil {
			return c.authorityFailure(opCreateOrganization, err)
		}
		identity, err = c.sessionTransition(ctx, browserID, opCreateOrganization, from, res)
		return err
	})
	if err != nil {
		return nil, err
	}
	return identity, nil
}

// SelectOrganization scopes the browser to organizationID. An intermediate
// credential is exchanged when present, otherwise the current session is
// switched to the organization.
func (c *Controller) SelectOrganization(ctx context.Context, browserID, organizationID string) (*Identity, error) {
	organizationID = strings.TrimSpace(organizationID)
	if organizationID == "" {
		return nil, validationFailed(opSelectOrganization, "organization id is required")
	}

	var identity *Identity
	err := c.withSession(ctx, browserID, opSelectOrganization, func(ctx context.Context, record sessions.Record) (err error) {
		identity, err = c.selectLocked(ctx, browserID, opSelectOrganization, record.State(), organizationID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return identity, nil
}

// selectLocked performs the exchange for the current state. The store is only
// written once the authority has accepted the exchange.
func (c *Controller) selectLocked(ctx context.Context, browserID, op string, from sessions.State, organizationID string) (*Identity, error) {
	var (
		res *authority.SessionResult
		err error
	)
	switch s := from.(type) {
	case sessions.Intermediate:
		res, err = c.authority.ExchangeIntermediateCredential(ctx, s.IST, organizationID)
	case sessions.OrgSessioned:
		res, err = c.authority.ExchangeSessionForOrganization(ctx, s.Token, organizationID)
	case sessions.Anonymous:
		return nil, preconditionFailed(op, "either an intermediate credential or a session token is required")
	default:
		return nil, errors.Errorf("[%s] unknown session state %T", op, from)
	}
	if err != nil {
		return nil, c.authorityFailure(op, err)
	}
	return c.sessionTransition(ctx, browserID, op, from, res)
}

// ListSwitchableOrganizations lists the organizations the member's verified
// email may switch to. The session is not modified.
func (c *Controller) ListSwitchableOrganizations(ctx context.Context, browserID string) (*Discovery, error) {
	var discovery *Discovery
	err := c.withSession(ctx, browserID, opListSwitchableOrganizations, func(ctx context.Context, record sessions.Record) (err error) {
		session, ok := record.State().(sessions.OrgSessioned)
		if !ok {
			return preconditionFailed(opListSwitchableOrganizations, "a session token is required")
		}
		discovery, err = c.listLocked(ctx, opListSwitchableOrganizations, session)
		return err
	})
	if err != nil {
		return nil, err
	}
	return discovery, nil
}

func (c *Controller) listLocked(ctx context.Context, op string, session sessions.OrgSessioned) (*Discovery, error) {
	res, err := c.authority.ListDiscoveredOrganizations(ctx, session.Token)
	if err != nil {
		return nil, c.authorityFailure(op, err)
	}
	return discoveryFrom(res.Email, res.DiscoveredOrganizations), nil
}

// ResolveOrganizationBySlug switches the browser to the organization with
// slug. current is the identity already resolved for this request; when it is
// scoped to slug nothing happens. A slug the member cannot reach is ErrNotFound.
func (c *Controller) ResolveOrganizationBySlug(ctx context.Context, browserID string, current *Identity, slug string) (*SlugResolution, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, validationFailed(opResolveOrganizationBySlug, "organization slug is required")
	}
	identity := utils.Value(current)
	if !identity.Authenticated {
		return nil, preconditionFailed(opResolveOrganizationBySlug, "a session token is required")
	}
	if identity.Organization.Slug == slug {
		return &SlugResolution{Organization: identity.Organization}, nil
	}

	var resolution *SlugResolution
	err := c.withSession(ctx, browserID, opResolveOrganizationBySlug, func(ctx context.Context, record sessions.Record) error {
		from := record.State()
		session, ok := from.(sessions.OrgSessioned)
		if !ok {
			return preconditionFailed(opResolveOrganizationBySlug, "a session token is required")
		}

		discovery, err := c.listLocked(ctx, opResolveOrganizationBySlug, session)
		if err != nil {
			return err
		}
		var organizationID string
		for _, org := range discovery.Organizations {
			if org.OrganizationSlug == slug {
				organizationID = org.OrganizationID
				break
			}
		}
		if organizationID == "" {
			return errors.Wrap(apperrors.Kindf(apperrors.ErrNotFound, "organization %q", slug), "["+opResolveOrganizationBySlug+"]")
		}

		selected, err := c.selectLocked(ctx, browserID, opResolveOrganizationBySlug, from, organizationID)
		if err != nil {
			return err
		}
		resolution = &SlugResolution{Switched: true, Organization: selected.Organization}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resolution, nil
}

// UpdateOrganizationJITPolicy lets members with an email on the current
// member's domain join the current organization. The stored session is sent
// along and the authority decides whether the member may change the settings.
// When the stored session changed after current was resolved, the organization
// and member are taken from the stored session instead.
func (c *Controller) UpdateOrganizationJITPolicy(ctx context.Context, browserID string, current *Identity) error {
	identity := utils.Value(current)
	return c.withSession(ctx, browserID, opUpdateOrganizationJITPolicy, func(ctx context.Context, record sessions.Record) error {
		session, ok := record.State().(sessions.OrgSessioned)
		if !ok || !identity.Authenticated {
			return preconditionFailed(opUpdateOrganizationJITPolicy, "a session token is required")
		}

		if identity.credential != session.Token {
			res, err := c.authority.AuthenticateSession(ctx, session.Token)
			if err != nil {
				return c.authorityFailure(opUpdateOrganizationJITPolicy, err)
			}
			session.Token = res.SessionCredential
			record.SessionCredential = res.SessionCredential
			if err := c.store(ctx, browserID, opUpdateOrganizationJITPolicy, record); err != nil {
				return err
			}
			identity = *identityFrom(res)
		}

		domain := emailDomain(identity.Member.Email)
		if domain == "" {
			return validationFailed(opUpdateOrganizationJITPolicy, "member email has no domain")
		}

		settings := authority.OrganizationSettings{
			EmailJITProvisioning: authority.JITProvisioningRestricted,
			EmailAllowedDomains:  []string{domain},
		}
		if err := c.authority.UpdateOrganizationSettings(ctx, identity.Organization.OrganizationID, settings, session.Token); err != nil {
			return c.authorityFailure(opUpdateOrganizationJITPolicy, err)
		}

		c.logger.Info().
			Str("op", opUpdateOrganizationJITPolicy).
			Str("organization_id", identity.Organization.OrganizationID).
			Str("domain", domain).
			Msg("organization JIT provisioning restricted to domain")
		return nil
	})
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// emailDomain returns the part after the last '@'.
func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return ""
	}
	return strings.TrimSpace(email[at+1:])
}
