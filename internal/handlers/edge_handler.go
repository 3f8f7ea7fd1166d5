package handlers

import (
	"github.com/alexispinzongalindo/islapos/internal/dto"
	"github.com/alexispinzongalindo/islapos/internal/policy"
	"github.com/alexispinzongalindo/islapos/internal/services"
	"github.com/alexispinzongalindo/islapos/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type EdgeHandler struct {
	edge  *services.EdgeService
	authz *policy.Authorizer
}

func NewEdgeHandler(edge *services.EdgeService, authz *policy.Authorizer) *EdgeHandler {
	return &EdgeHandler{edge: edge, authz: authz}
}

func (h *EdgeHandler) PairStart(c *fiber.Ctx) error {
	var req dto.PairStartRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	caller := tenant.GetCaller(c)
	restaurantID, _ := tenant.GetRestaurantID(c)
	if err := tenant.CheckClaimed(restaurantID, req.RestaurantID); err != nil {
		return writeError(c, err, "Failed to authorize")
	}
	if err := h.authz.Authorize(c.UserContext(), caller, restaurantID, policy.ActionEdgePair); err != nil {
		return writeError(c, err, "Failed to authorize")
	}

	code, err := h.edge.StartPairing(c.UserContext(), restaurantID, caller.ID)
	if err != nil {
		return writeError(c, err, "Failed to create pairing code")
	}
	return c.JSON(dto.PairStartResponse{OK: true, Code: code.Code, ExpiresAt: code.ExpiresAt})
}

func (h *EdgeHandler) PairComplete(c *fiber.Ctx) error {
	var req dto.PairCompleteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	result, err := h.edge.CompletePairing(c.UserContext(), req.Code, req.Name)
	if err != nil {
		return writeError(c, err, "Failed to complete pairing")
	}
	return c.JSON(dto.PairCompleteResponse{
		OK:           true,
		GatewayID:    result.GatewayID,
		Secret:       result.Secret,
		RestaurantID: result.RestaurantID,
	})
}

func (h *EdgeHandler) PushEvents(c *fiber.Ctx) error {
	var req dto.PushEventsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	events := make([]services.EdgeEventInput, len(req.Events))
	for i, ev := range req.Events {
		events[i] = services.EdgeEventInput{ID: ev.ID, Type: ev.Type, OccurredAt: ev.OccurredAt, Payload: ev.Payload}
	}

	gateway := tenant.GetGateway(c)
	result, err := h.edge.IngestEvents(c.UserContext(), gateway, events)
	if err != nil {
		return writeError(c, err, "Failed to ingest events", "gateway_id", gateway.ID.String())
	}
	return c.JSON(dto.PushEventsResponse{OK: true, Accepted: result.Accepted, Duplicate: result.Duplicate})
}
