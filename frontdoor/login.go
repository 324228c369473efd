package frontdoor

import (
	"context"
	"fmt"
	"strings"

	"github.com/jrsteele09/go-auth-frontdoor/authority"
	apperrors "github.com/jrsteele09/go-auth-frontdoor/internal/errors"
	"github.com/jrsteele09/go-auth-frontdoor/sessions"
	"go.opentelemetry.io/otel/codes"
)

const (
	opInitiateLogin          = "InitiateLogin"
	opCompleteAuthentication = "CompleteAuthentication"
)

// InitiateLogin asks the authority to email a magic link. With an
// organization id the link logs straight into that organization, otherwise it
// starts discovery. The browser's session is not touched.
func (c *Controller) InitiateLogin(ctx context.Context, email, organizationID string) error {
	email = strings.TrimSpace(email)
	organizationID = strings.TrimSpace(organizationID)
	if email == "" {
		return validationFailed(opInitiateLogin, "email is required")
	}

	ctx, span := c.tracer.Start(context.WithoutCancel(ctx), "frontdoor."+opInitiateLogin)
	defer span.End()

	var err error
	if organizationID != "" {
		err = c.authority.SendOrganizationLink(ctx, email, organizationID)
	} else {
		err = c.authority.SendDiscoveryLink(ctx, email)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%w: %w", apperrors.ErrDelivery, c.authorityFailure(opInitiateLogin, err))
	}

	c.logger.Debug().
		Str("op", opInitiateLogin).
		Str("email", email).
		Bool("discovery", organizationID == "").
		Msg("login link sent")
	return nil
}

// CompleteAuthentication redeems the token the authority redirected the
// browser back with. Tokens are single use: every call goes to the authority
// and nothing is stored unless it succeeds.
func (c *Controller) CompleteAuthentication(ctx context.Context, browserID string, tokenType TokenType, token string) (*AuthenticationResult, error) {
	if token == "" {
		return nil, validationFailed(opCompleteAuthentication, "token is required")
	}

	result := &AuthenticationResult{TokenType: tokenType}
	err := c.withSession(ctx, browserID, opCompleteAuthentication, func(ctx context.Context, record sessions.Record) error {
		var to sessions.State
		switch tokenType {
		case TokenTypeDiscovery:
			res, err := c.authority.AuthenticateDiscoveryToken(ctx, token)
			if err != nil {
				return c.authorityFailure(opCompleteAuthentication, err)
			}
			to = sessions.Intermediate{IST: res.IntermediateCredential}
			result.Discovery = discoveryFrom(res.Email, res.DiscoveredOrganizations)

		case TokenTypeDiscoveryOAuth:
			res, err := c.authority.AuthenticateOAuthDiscoveryToken(ctx, token)
			if err != nil {
				return c.authorityFailure(opCompleteAuthentication, err)
			}
			to = sessions.OrgSessioned{Token: res.SessionCredential}
			result.Discovery = discoveryFrom(res.Email, res.DiscoveredOrganizations)

		case TokenTypeOrganizationMagicLink:
			res, err := c.authority.AuthenticateOrganizationToken(ctx, token)
			if err != nil {
				return c.authorityFailure(opCompleteAuthentication, err)
			}
			to = sessions.OrgSessioned{Token: res.SessionCredential}
			result.Identity = identityFrom(res)

		default:
			return apperrors.Kindf(apperrors.ErrUnrecognizedTokenType, "%s", tokenType)
		}

		if err := c.transition(ctx, browserID, opCompleteAuthentication, record.State(), to); err != nil {
			return err
		}
		result.State = to.Name()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// sessionTransition stores the session credential of res, replacing any
// intermediate credential, and returns the identity it scopes.
func (c *Controller) sessionTransition(ctx context.Context, browserID, op string, from sessions.State, res *authority.SessionResult) (*Identity, error) {
	if err := c.transition(ctx, browserID, op, from, sessions.OrgSessioned{Token: res.SessionCredential}); err != nil {
		return nil, err
	}
	return identityFrom(res), nil
}
