package routes

import (
	"time"

	"github.com/alexispinzongalindo/islapos/internal/handlers"
	"github.com/alexispinzongalindo/islapos/internal/identity"
	"github.com/alexispinzongalindo/islapos/internal/metrics"
	"github.com/alexispinzongalindo/islapos/internal/middleware"
	"github.com/alexispinzongalindo/islapos/internal/services"
	"github.com/alexispinzongalindo/islapos/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Deps is everything the route table needs.
type Deps struct {
	JWTSecret string
	Provider  identity.Provider
	Resolver  *tenant.Resolver
	Edge      *services.EdgeService

	Health   *handlers.HealthHandler
	Admin    *handlers.AdminHandler
	Agent    *handlers.AgentHandler
	Delivery *handlers.DeliveryHandler
	EdgeAPI  *handlers.EdgeHandler
	KDS      *handlers.KDSHandler
	POS      *handlers.POSHandler

	// Zero disables rate limiting.
	RateLimit       int
	StrictRateLimit int
}

func rateLimit(max int) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
}

func Setup(app *fiber.App, d Deps) {
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api", rateLimit(d.RateLimit))

	api.Get("/health", d.Health.Check)

	// Bearer token, caller fetched fresh from the identity provider.
	user := []fiber.Handler{middleware.JWTProtected(d.JWTSecret), middleware.Identity(d.Provider)}
	withTenant := chain(user, middleware.RequireTenant(d.Resolver))

	admin := api.Group("/admin")
	admin.Delete("/floor", chain(withTenant, d.Admin.DeleteFloor)...)
	admin.Post("/full-wipe", chain(user, d.Admin.FullWipe)...)
	admin.Post("/invite-user", chain(user, d.Admin.InviteUser)...)
	admin.Delete("/orders", chain(withTenant, d.Admin.DeleteOrders)...)
	admin.Get("/support-access", chain(withTenant, d.Admin.SupportAccess)...)
	admin.Get("/system-owner", chain(user, d.Admin.SystemOwner)...)
	admin.Post("/kds-tokens", chain(withTenant, d.Admin.IssueKDSToken)...)
	admin.Delete("/kds-tokens/:id", chain(withTenant, d.Admin.RevokeKDSToken)...)
	admin.Put("/delivery-integrations", chain(withTenant, d.Admin.SetDeliveryIntegration)...)

	api.Post("/agent/chat", chain(user, middleware.RejectRestricted(), d.Agent.Chat)...)

	// Unauthenticated callers get the stricter limit.
	strict := rateLimit(d.StrictRateLimit)

	delivery := api.Group("/delivery")
	delivery.Post("/dispatch", chain(withTenant, d.Delivery.Dispatch)...)
	delivery.Post("/webhook/:provider", strict, d.Delivery.Webhook)

	edge := api.Group("/edge")
	edge.Post("/pair/start", chain(withTenant, d.EdgeAPI.PairStart)...)
	edge.Post("/pair/complete", strict, d.EdgeAPI.PairComplete)
	edge.Post("/push-events", middleware.EdgeGatewayAuth(d.Edge), d.EdgeAPI.PushEvents)

	api.Get("/kds/:token", d.KDS.List)
	api.Post("/kds/:token", d.KDS.Update)

	pos := api.Group("/pos")
	pos.Get("/staff-pins", chain(withTenant, d.POS.StaffPins)...)
	pos.Post("/time-clock", chain(withTenant, d.POS.TimeClock)...)
}

// chain returns a fresh slice so routes never share a backing array.
func chain(mw []fiber.Handler, h ...fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(mw)+len(h))
	out = append(out, mw...)
	return append(out, h...)
}
