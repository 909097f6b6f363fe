package http

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	accessDomain "github.com/medmarket/phiguard/internal/access/domain"
	accessService "github.com/medmarket/phiguard/internal/access/service"
	accessUseCase "github.com/medmarket/phiguard/internal/access/usecase"
	"github.com/medmarket/phiguard/internal/httputil"
)

// EmergencyHeader marks a request that relies on an emergency access grant.
const EmergencyHeader = "X-Emergency-Access"

// OptionsFunc builds the guard options for a request.
type OptionsFunc func(c *gin.Context) accessDomain.Options

// Require returns an OptionsFunc with fixed requirements and a resource taken
// from the request.
func Require(opts accessDomain.Options, resource func(c *gin.Context) string) OptionsFunc {
	return func(c *gin.Context) accessDomain.Options {
		o := opts
		if resource != nil {
			o.Resource = resource(c)
		}
		return o
	}
}

// IsEmergencyRequest reports whether the emergency header is set to a true value.
func IsEmergencyRequest(c *gin.Context) bool {
	v, err := strconv.ParseBool(c.GetHeader(EmergencyHeader))
	return err == nil && v
}

// AuthenticationMiddleware verifies the Bearer token and stores the actor in
// the request context.
//
// A missing or invalid token does not abort the request: the authorization
// middleware runs the guard, which denies with AUTH_REQUIRED and writes the
// audit entry. Routes without authorization stay reachable anonymously.
func AuthenticationMiddleware(verifier accessService.TokenVerifier, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		actor, err := verifier.Verify(token)
		if err != nil {
			logger.Debug("authentication failed", slog.Any("error", err))
			c.Next()
			return
		}

		actor.IP = c.ClientIP()
		actor.UserAgent = c.Request.UserAgent()
		c.Request = c.Request.WithContext(WithActor(c.Request.Context(), actor))

		c.Next()
	}
}

// AuthorizationMiddleware runs the access guard for the request and aborts
// with a structured error when it denies. The emergency header turns on the
// grant check for the resource.
func AuthorizationMiddleware(
	guard accessUseCase.AccessGuard,
	options OptionsFunc,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts := options(c)
		if IsEmergencyRequest(c) {
			opts.Emergency = true
		}
		if opts.Action == "" {
			opts.Action = c.Request.Method + " " + c.FullPath()
		}

		actor, _ := GetActor(c.Request.Context())
		decision, err := guard.Authorize(c.Request.Context(), actor, opts)
		if err != nil {
			httputil.HandleErrorGin(c, err, logger)
			return
		}
		if !decision.Allowed {
			logger.Debug("authorization denied",
				slog.String("reason_code", decision.ReasonCode),
				slog.String("path", c.Request.URL.Path))
			httputil.HandleErrorGin(c, decision.Err(), nil)
			return
		}

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
