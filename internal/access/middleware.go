package access

import (
	"context"
	stderrors "errors"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"contesthub/internal/errors"
	"contesthub/internal/model"
)

const callerKey = "caller"

// Caller is the identity resolved from a verified bearer token.
type Caller struct {
	Email     string
	Role      model.Role
	TokenID   string
	ExpiresAt time.Time
}

// Authenticator turns a raw bearer token into a Caller.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*Caller, error)
}

// Authenticate returns middleware that requires a valid `Authorization: Bearer` token.
// A missing or malformed header is Unauthenticated; a token that fails verification,
// expired or was revoked is InvalidCredential.
func Authenticate(authn Authenticator) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  callerKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			caller, err := authn.Authenticate(c.Request().Context(), token)
			if err != nil {
				return nil, err
			}
			return *caller, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var parseErr *echojwt.TokenParsingError
			if stderrors.As(err, &parseErr) {
				if errors.KindOf(parseErr.Err) == errors.KindUnavailable {
					return httpError(parseErr.Err)
				}
				return httpError(errors.ErrInvalidToken)
			}
			return httpError(errors.ErrMissingToken)
		},
	})
}

// Require returns middleware enforcing the role gate of op. It must run after Authenticate.
func Require(op Operation) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, ok := CallerFrom(c)
			if !ok {
				return httpError(errors.ErrMissingToken)
			}
			if err := Permit(op, caller); err != nil {
				return httpError(err)
			}
			return next(c)
		}
	}
}

// CallerFrom returns the caller stored by Authenticate.
func CallerFrom(c echo.Context) (Caller, bool) {
	caller, ok := c.Get(callerKey).(Caller)
	return caller, ok
}

// WithCaller stores caller on the request context, as Authenticate does.
func WithCaller(c echo.Context, caller Caller) {
	c.Set(callerKey, caller)
}

func httpError(err error) *echo.HTTPError {
	he := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
}
