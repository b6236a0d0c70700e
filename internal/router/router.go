package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/property-listing/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/property-listing/internal/middleware" // import middleware for JWT authentication
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Group for operations that do not require an existing session
	// (register, login, refresh).  Each of these handlers is responsible
	// for generating or exchanging tokens.
	g := e.Group("/v1/auth")
	// Register a POST endpoint to handle user registration at /v1/auth/register.
	g.POST("/register", a.Register)
	// Register a POST endpoint to handle user login at /v1/auth/login.
	g.POST("/login", a.Login)
	// Register a POST endpoint to refresh access tokens at /v1/auth/refresh. This rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Logout does not require JWT authentication: the handler accepts a
	// JSON body containing a `refresh_token` (single-session sign-out) or a
	// bare Authorization header (sign out everywhere).
	g.POST("/logout", a.Logout)

	// Group for routes that require a valid access token.  All handlers
	// registered on this group will execute the JWTAuth middleware before
	// being invoked.  Protected endpoints live under /v1.
	auth := e.Group("/v1")
	// Apply the JWTAuth middleware to the protected group using the provided secret.
	auth.Use(middleware.JWTAuth(jwtSecret))
	// Register a GET endpoint at /v1/me that returns the authenticated user's information.
	auth.GET("/me", a.Me)

	// Additionally map POST /v1/logout to the same handler, outside of the
	// protected group, so clients can call either /v1/auth/logout or
	// /v1/logout to terminate a session.
	e.POST("/v1/logout", a.Logout)
}

// RegisterProperties registers the listing endpoints.  Every route requires
// a valid access token; ownership checks on mutations happen in the
// repository layer.  The optional photos handler is skipped when object
// storage is not configured.  Extra middleware (response cache, rate
// limiter) is applied after JWTAuth so it always sees the resolved
// identity; registering it ahead of the session gate would key every
// request as "guest" and answer cache hits before authentication runs.
func RegisterProperties(e *echo.Echo, p *handler.PropertyHandler, g *handler.GeocodeHandler, ph *handler.PhotoHandler, jwtSecret string, extra ...echo.MiddlewareFunc) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(extra...)

	// Listing browse and detail.  List supports ?scope=mine|all (mine is
	// the default) and ?q= for address/description search.
	auth.GET("/properties", p.List)
	auth.GET("/properties/:id", p.Get)
	// Create and edit go through an editing session in the handler.
	auth.POST("/properties", p.Create)
	auth.PUT("/properties/:id", p.Update)
	// Delete requires an explicit ?confirm=true.
	auth.DELETE("/properties/:id", p.Delete)

	// Manual address resolution for the editor form.
	auth.POST("/geocode", g.Resolve)

	if ph != nil {
		// Attach a photo to a listing; multipart field "photo".
		auth.POST("/properties/:id/photos", ph.Upload)
	}
}
