// Package frontdoor implements the authentication flow of the front door: it
// turns assertions verified by the identity authority into an organization
// scoped session stored per browser, and moves members between organizations.
package frontdoor

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-auth-frontdoor/authority"
	apperrors "github.com/jrsteele09/go-auth-frontdoor/internal/errors"
	"github.com/jrsteele09/go-auth-frontdoor/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/jrsteele09/go-auth-frontdoor/frontdoor"

// Controller owns every transition of a browser's session record. Each
// operation holds the browser's lock for its whole read, authority call and
// write back, and none of them is abandoned when the request is cancelled.
type Controller struct {
	authority authority.Client
	sessions  sessions.Repo
	locks     *sessions.Locker
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the logger used for authority failures and transitions.
func WithLogger(logger zerolog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithTracer replaces the tracer taken from the global provider.
func WithTracer(tracer trace.Tracer) ControllerOption {
	return func(c *Controller) {
		c.tracer = tracer
	}
}

// NewController creates the flow controller.
func NewController(client authority.Client, repo sessions.Repo, options ...ControllerOption) (*Controller, error) {
	if client == nil {
		return nil, errors.New("[frontdoor.NewController] authority client is required")
	}
	if repo == nil {
		return nil, errors.New("[frontdoor.NewController] session repo is required")
	}

	c := &Controller{
		authority: client,
		sessions:  repo,
		locks:     sessions.NewLocker(),
		logger:    zerolog.Nop(),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// sessionFunc runs with the browser locked and its current record loaded.
type sessionFunc func(ctx context.Context, record sessions.Record) error

// withSession detaches ctx from cancellation, locks browserID, loads its
// record and runs fn inside a span named after the operation.
func (c *Controller) withSession(ctx context.Context, browserID, op string, fn sessionFunc) (err error) {
	if browserID == "" {
		return apperrors.Kindf(apperrors.ErrValidation, "browser id is required")
	}

	ctx, span := c.tracer.Start(context.WithoutCancel(ctx), "frontdoor."+op)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	unlock := c.locks.Lock(browserID)
	defer unlock()

	record, err := c.sessions.Get(ctx, browserID)
	if err != nil {
		c.logger.Error().Err(err).Str("op", op).Msg("reading session record")
		return fmt.Errorf("[%s] %w: read session: %w", op, apperrors.ErrService, err)
	}
	span.SetAttributes(attribute.String("frontdoor.state", record.State().Name()))

	return fn(ctx, record)
}

// transition replaces the whole record of browserID with the one representing
// to, so clearing one credential and storing the other is a single write.
func (c *Controller) transition(ctx context.Context, browserID, op string, from, to sessions.State) error {
	if err := c.store(ctx, browserID, op, sessions.RecordFor(to)); err != nil {
		return err
	}
	c.logger.Debug().
		Str("op", op).
		Str("from", from.Name()).
		Str("to", to.Name()).
		Msg("session transition")
	return nil
}

func (c *Controller) store(ctx context.Context, browserID, op string, record sessions.Record) error {
	if err := c.sessions.Put(ctx, browserID, record); err != nil {
		return c.storeFailure(op, err)
	}
	return nil
}

func (c *Controller) storeFailure(op string, err error) error {
	c.logger.Error().Err(err).Str("op", op).Msg("writing session record")
	return fmt.Errorf("[%s] %w: write session: %w", op, apperrors.ErrService, err)
}

// authorityFailure logs an authority error with its raw response and maps it
// to ErrService when the authority could not be reached and to
// ErrAuthentication when it refused the request.
func (c *Controller) authorityFailure(op string, err error) error {
	event := c.logger.Error().Err(err).Str("op", op)
	var apiErr *authority.Error
	if apperrors.As(err, &apiErr) {
		event = event.
			Int("status_code", apiErr.StatusCode).
			Str("error_type", apiErr.ErrorType).
			Str("request_id", apiErr.RequestID).
			Str("response", apiErr.RawBody)
	}
	event.Msg("identity authority call failed")

	kind := apperrors.ErrAuthentication
	if isUnavailable(err) {
		kind = apperrors.ErrService
	}
	return fmt.Errorf("[%s] %w: %w", op, kind, err)
}

func preconditionFailed(op, format string, args ...any) error {
	return errors.Wrap(apperrors.Kindf(apperrors.ErrPreconditionFailed, format, args...), "["+op+"]")
}

func validationFailed(op, format string, args ...any) error {
	return errors.Wrap(apperrors.Kindf(apperrors.ErrValidation, format, args...), "["+op+"]")
}

// isUnavailable reports whether err means the authority could not answer,
// as opposed to refusing the request.
func isUnavailable(err error) bool {
	return authority.IsUnavailable(err) || !authority.IsRejected(err)
}
