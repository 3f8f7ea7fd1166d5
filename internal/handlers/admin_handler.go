package handlers

import (
	"errors"
	"log/slog"

	"github.com/alexispinzongalindo/islapos/internal/dto"
	"github.com/alexispinzongalindo/islapos/internal/policy"
	"github.com/alexispinzongalindo/islapos/internal/services"
	"github.com/alexispinzongalindo/islapos/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AdminHandler struct {
	authz    *policy.Authorizer
	floor    *services.FloorService
	orders   *services.OrderService
	staff    *services.StaffService
	wipe     *services.WipeService
	kds      *services.KDSService
	delivery *services.DeliveryService
}

func NewAdminHandler(
	authz *policy.Authorizer,
	floor *services.FloorService,
	orders *services.OrderService,
	staff *services.StaffService,
	wipe *services.WipeService,
	kds *services.KDSService,
	delivery *services.DeliveryService,
) *AdminHandler {
	return &AdminHandler{
		authz:    authz,
		floor:    floor,
		orders:   orders,
		staff:    staff,
		wipe:     wipe,
		kds:      kds,
		delivery: delivery,
	}
}

// authorizeTenant runs the policy for action against the resolved restaurant,
// after cross-checking any restaurant id the client sent.
func (h *AdminHandler) authorizeTenant(c *fiber.Ctx, action policy.Action, claimed string) (uuid.UUID, error) {
	restaurantID, _ := tenant.GetRestaurantID(c)
	if err := tenant.CheckClaimed(restaurantID, claimed); err != nil {
		return uuid.Nil, err
	}
	if err := h.authz.Authorize(c.UserContext(), tenant.GetCaller(c), restaurantID, action); err != nil {
		return uuid.Nil, err
	}
	return restaurantID, nil
}

func (h *AdminHandler) DeleteFloor(c *fiber.Ctx) error {
	var req dto.DeleteFloorRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}
	if req.Kind == "" && req.ID == "" {
		if err := c.QueryParser(&req); err != nil {
			return badRequest(c, "Invalid query")
		}
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return badRequest(c, "id is required")
	}

	restaurantID, err := h.authorizeTenant(c, policy.ActionFloorEdit, "")
	if err != nil {
		return writeError(c, err, "Failed to authorize")
	}
	if err := h.floor.Delete(c.UserContext(), restaurantID, req.Kind, id); err != nil {
		return writeError(c, err, "Failed to delete floor element", "kind", req.Kind)
	}
	return c.JSON(dto.OKResponse{OK: true})
}

func (h *AdminHandler) FullWipe(c *fiber.Ctx) error {
	var req dto.FullWipeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	result, err := h.wipe.Wipe(c.UserContext(), tenant.GetCaller(c), req.Confirm, req.RestaurantID)
	if err != nil {
		return writeError(c, err, "Failed to wipe restaurant", "action", string(policy.ActionTenantWipe))
	}

	resp := dto.FullWipeResponse{
		OK:           true,
		RestaurantID: result.RestaurantID,
		DeletedUsers: result.DeletedUsers,
	}
	if len(result.Failures) > 0 {
		resp.Warning = "Restaurant data was deleted but some staff accounts could not be removed"
		for _, f := range result.Failures {
			resp.Failures = append(resp.Failures, dto.WipeFailure{UserID: f.UserID, Error: f.Error})
		}
	}
	return c.JSON(resp)
}

func (h *AdminHandler) InviteUser(c *fiber.Ctx) error {
	var req dto.InviteUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	result, err := h.staff.Invite(c.UserContext(), tenant.GetCaller(c), services.InviteInput{
		Email:        req.Email,
		Role:         req.Role,
		Name:         req.Name,
		Pin:          req.Pin,
		RestaurantID: req.RestaurantID,
	})
	if err != nil {
		var partial *services.PartialInviteError
		if errors.As(err, &partial) {
			slog.Error("invited user left unbound", "user_id", partial.UserID.String(), "error", partial.Err, "request_id", requestID(c))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   true,
				"message": "User was invited but could not be assigned; remove the pending account and retry",
				"userId":  partial.UserID,
			})
		}
		return writeError(c, err, "Failed to invite user", "action", string(policy.ActionStaffInvite))
	}

	return c.Status(fiber.StatusCreated).JSON(dto.InviteUserResponse{
		OK:           true,
		UserID:       result.UserID,
		Email:        result.Email,
		Role:         result.Role.String(),
		RestaurantID: result.RestaurantID,
	})
}

func (h *AdminHandler) DeleteOrders(c *fiber.Ctx) error {
	var req dto.DeleteOrdersRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if !req.All && len(req.OrderIDs) == 0 {
		return badRequest(c, "orderIds is required")
	}
	ids := make([]uuid.UUID, 0, len(req.OrderIDs))
	for _, raw := range req.OrderIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(c, "orderIds must be valid ids")
		}
		ids = append(ids, id)
	}

	restaurantID, err := h.authorizeTenant(c, policy.ActionTransactionsDelete, req.RestaurantID)
	if err != nil {
		return writeError(c, err, "Failed to authorize")
	}

	var deleted int64
	if req.All {
		deleted, err = h.orders.DeleteAll(c.UserContext(), restaurantID)
	} else {
		deleted, err = h.orders.BulkDelete(c.UserContext(), restaurantID, ids)
	}
	if err != nil {
		return writeError(c, err, "Failed to delete orders")
	}
	return c.JSON(dto.DeleteOrdersResponse{OK: true, Deleted: deleted})
}

// SupportAccess reports whether the caller may open the support page.
// A policy denial is an answer, not an error.
func (h *AdminHandler) SupportAccess(c *fiber.Ctx) error {
	restaurantID, _ := tenant.GetRestaurantID(c)
	err := h.authz.Authorize(c.UserContext(), tenant.GetCaller(c), restaurantID, policy.ActionSupportAccess)
	if errors.Is(err, policy.ErrForbidden) {
		return c.JSON(dto.SupportAccessResponse{OK: true, Allowed: false})
	}
	if err != nil {
		return writeError(c, err, "Failed to check support access")
	}
	return c.JSON(dto.SupportAccessResponse{OK: true, Allowed: true})
}

func (h *AdminHandler) SystemOwner(c *fiber.Ctx) error {
	return c.JSON(dto.SystemOwnerResponse{OK: true, IsSystemOwner: h.staff.IsSystemOwner(tenant.GetCaller(c))})
}

func (h *AdminHandler) IssueKDSToken(c *fiber.Ctx) error {
	var req dto.IssueKDSTokenRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	restaurantID, err := h.authorizeTenant(c, policy.ActionKDSManage, "")
	if err != nil {
		return writeError(c, err, "Failed to authorize")
	}
	token, err := h.kds.IssueToken(c.UserContext(), restaurantID, req.Label)
	if err != nil {
		return writeError(c, err, "Failed to issue kitchen display token")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.KDSTokenResponse{
		OK:        true,
		ID:        token.ID,
		Token:     token.Token,
		Label:     token.Label,
		CreatedAt: token.CreatedAt,
	})
}

func (h *AdminHandler) RevokeKDSToken(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid token id")
	}

	restaurantID, err := h.authorizeTenant(c, policy.ActionKDSManage, "")
	if err != nil {
		return writeError(c, err, "Failed to authorize")
	}
	if err := h.kds.RevokeToken(c.UserContext(), restaurantID, id); err != nil {
		return writeError(c, err, "Failed to revoke kitchen display token")
	}
	return c.JSON(dto.OKResponse{OK: true})
}

func (h *AdminHandler) SetDeliveryIntegration(c *fiber.Ctx) error {
	var req dto.DeliveryIntegrationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	restaurantID, err := h.authorizeTenant(c, policy.ActionDeliveryManage, "")
	if err != nil {
		return writeError(c, err, "Failed to authorize")
	}
	integration, err := h.delivery.EnableProvider(c.UserContext(), restaurantID, req.Provider, req.Enabled, req.StoreRef)
	if err != nil {
		return writeError(c, err, "Failed to update delivery integration")
	}
	return c.JSON(fiber.Map{"ok": true, "integration": integration})
}
