package router

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	echoSwagger "github.com/swaggo/echo-swagger"

	"contesthub/internal/access"
	"contesthub/internal/config"
	"contesthub/internal/handler"
	"contesthub/internal/metrics"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth        *handler.AuthHandler
	User        *handler.UserHandler
	Contest     *handler.ContestHandler
	Leaderboard *handler.LeaderboardHandler
	Payment     *handler.PaymentHandler
	Health      *handler.HealthHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	log *logrus.Entry,
	m *metrics.Metrics,
	authn access.Authenticator,
	h Handlers,
) {
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(requestLogger(log))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	if m != nil {
		e.Use(m.Middleware())
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}

	e.Validator = handler.NewValidator()

	e.GET("/healthz", h.Health.Live)
	e.GET("/readyz", h.Health.Ready)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authenticated := access.Authenticate(authn)
	require := access.Require

	// Public routes
	e.POST("/auth/register", h.Auth.Register)
	e.POST("/auth/login", h.Auth.Login)
	e.POST("/auth/google-login", h.Auth.GoogleLogin)
	e.GET("/contests", h.Contest.List)
	e.GET("/packages", h.User.Packages)
	e.GET("/leaderboard", h.Leaderboard.Leaderboard)

	// Secured routes (require a valid, unrevoked bearer token)
	secured := e.Group("", authenticated)

	secured.GET("/auth/me", h.Auth.Me, require(access.OpGetProfile))
	secured.PUT("/auth/me", h.Auth.UpdateMe, require(access.OpUpdateProfile))
	secured.POST("/auth/logout", h.Auth.Logout, require(access.OpLogout))

	secured.GET("/users", h.User.ListUsers, require(access.OpListUsers))
	secured.PUT("/users/:id/role", h.User.SetRole, require(access.OpSetRole))
	secured.POST("/users/buy-package", h.User.BuyPackage, require(access.OpBuyPackage))

	secured.GET("/contests/participated", h.Contest.Participated, require(access.OpListParticipated))
	secured.GET("/contests/won", h.Contest.Won, require(access.OpListWon))
	secured.GET("/contests/:id", h.Contest.Get, require(access.OpGetContest))
	secured.POST("/contests", h.Contest.Create, require(access.OpCreateContest))
	secured.PUT("/contests/edit/:id", h.Contest.Edit, require(access.OpEditContest))
	secured.PUT("/contests/status/:id", h.Contest.SetStatus, require(access.OpSetStatus))
	secured.PUT("/contests/:id", h.Contest.UpdateFields, require(access.OpUpdateContestFields))
	secured.DELETE("/contests/:id", h.Contest.Delete, require(access.OpDeleteContest))
	secured.POST("/contests/:id/register", h.Contest.Register, require(access.OpRegister))
	secured.POST("/contests/:id/submit-task", h.Contest.SubmitTask, require(access.OpSubmitTask))
	secured.PUT("/contests/:id/declare-winner", h.Contest.DeclareWinner, require(access.OpDeclareWinner))
	secured.GET("/contests/:id/submissions", h.Contest.Submissions, require(access.OpListSubmissions))

	secured.POST("/create-payment-intent", h.Payment.CreatePaymentIntent, require(access.OpCreatePaymentIntent))
}

// requestLogger emits one structured access log line per request.
func requestLogger(log *logrus.Entry) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
				"request_id": v.RequestID,
				"remote_ip":  v.RemoteIP,
			})
			switch {
			case v.Status >= 500:
				entry.Error("request")
			case v.Status >= 400:
				entry.Warn("request")
			default:
				entry.Info("request")
			}
			return nil
		},
	})
}
