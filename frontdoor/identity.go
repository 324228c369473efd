package frontdoor

import (
	"context"

	"github.com/jrsteele09/go-auth-frontdoor/sessions"
)

const (
	opResolveCurrentIdentity = "ResolveCurrentIdentity"
	opLogout                 = "Logout"
)

// ResolveCurrentIdentity validates the stored session credential with the
// authority and stores the rotated credential it returns. A browser without a
// session credential is anonymous and costs no authority call. A credential
// the authority rejects is cleared and the browser reads as anonymous; when
// the authority cannot be reached the credential is kept and ErrService returned.
func (c *Controller) ResolveCurrentIdentity(ctx context.Context, browserID string) (*Identity, error) {
	identity := AnonymousIdentity
	err := c.withSession(ctx, browserID, opResolveCurrentIdentity, func(ctx context.Context, record sessions.Record) error {
		if record.SessionCredential == "" {
			return nil
		}

		res, err := c.authority.AuthenticateSession(ctx, record.SessionCredential)
		if err != nil {
			failure := c.authorityFailure(opResolveCurrentIdentity, err)
			if isUnavailable(err) {
				return failure
			}
			// Stale credential, keep any intermediate credential
			record.SessionCredential = ""
			return c.store(ctx, browserID, opResolveCurrentIdentity, record)
		}

		record.SessionCredential = res.SessionCredential
		if err := c.store(ctx, browserID, opResolveCurrentIdentity, record); err != nil {
			return err
		}
		identity = *identityFrom(res)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

// Logout forgets every credential held for the browser.
func (c *Controller) Logout(ctx context.Context, browserID string) error {
	return c.withSession(ctx, browserID, opLogout, func(ctx context.Context, record sessions.Record) error {
		if record.Empty() {
			return nil
		}
		if err := c.sessions.Delete(ctx, browserID); err != nil {
			return c.storeFailure(opLogout, err)
		}
		c.logger.Debug().Str("op", opLogout).Str("from", record.State().Name()).Msg("session deleted")
		return nil
	})
}
