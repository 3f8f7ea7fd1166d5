package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexispinzongalindo/islapos/internal/database/dbtest"
	"github.com/alexispinzongalindo/islapos/internal/delivery"
	"github.com/alexispinzongalindo/islapos/internal/handlers"
	"github.com/alexispinzongalindo/islapos/internal/identity"
	"github.com/alexispinzongalindo/islapos/internal/identity/identitytest"
	"github.com/alexispinzongalindo/islapos/internal/middleware"
	"github.com/alexispinzongalindo/islapos/internal/models"
	"github.com/alexispinzongalindo/islapos/internal/policy"
	"github.com/alexispinzongalindo/islapos/internal/services"
	"github.com/alexispinzongalindo/islapos/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-jwt-secret"

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
	ids *identitytest.Fake
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := dbtest.New(t)
	fake := identitytest.NewFake()
	registry := delivery.NewRegistry()
	registry.Register(&delivery.ProviderConfig{ID: "doordash", Name: "DoorDash", WebhookSecret: "hook"})

	resolver := tenant.NewResolver(db)
	authz := policy.NewAuthorizer(db)
	staff := services.NewStaffService(db, fake, resolver, authz, "ops@islapos.test")
	kds := services.NewKDSService(db)
	edge := services.NewEdgeService(db)
	dlv := services.NewDeliveryService(db, registry)

	app := fiber.New()
	app.Use(requestid.New())
	Setup(app, Deps{
		JWTSecret: testSecret,
		Provider:  fake,
		Resolver:  resolver,
		Edge:      edge,

		Health: handlers.NewHealthHandler(db, registry),
		Admin: handlers.NewAdminHandler(authz,
			services.NewFloorService(db),
			services.NewOrderService(db),
			staff,
			services.NewWipeService(db, fake, resolver, authz),
			kds,
			dlv,
		),
		Agent:    handlers.NewAgentHandler(services.NewAgentService(services.AgentConfig{})),
		Delivery: handlers.NewDeliveryHandler(dlv),
		EdgeAPI:  handlers.NewEdgeHandler(edge, authz),
		KDS:      handlers.NewKDSHandler(kds),
		POS:      handlers.NewPOSHandler(staff, services.NewTimeClockService(db)),
	})

	return &testEnv{app: app, db: db, ids: fake}
}

// owner registers an owner-role user with a restaurant of their own.
func (e *testEnv) owner(t *testing.T, email string) (*identity.User, uuid.UUID) {
	t.Helper()
	u := e.ids.Add(email, identity.RoleOwner, nil)
	r := models.Restaurant{Name: "Cafe " + email, OwnerUserID: u.ID}
	require.NoError(t, e.db.Create(&r).Error)
	require.NoError(t, e.db.Create(&models.AppConfig{OwnerUserID: u.ID, RestaurantID: &r.ID, SetupComplete: true}).Error)
	return u, r.ID
}

func bearer(t *testing.T, u *identity.User) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": u.ID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

type response struct {
	Status int
	Body   map[string]interface{}
}

func (e *testEnv) do(t *testing.T, method, path, auth string, body interface{}, headers ...string) response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := response{Status: resp.StatusCode}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out.Body)
	}
	return out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	res := env.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "ok", res.Body["status"])
	assert.Equal(t, float64(1), res.Body["delivery_providers"])
}

func TestUserRoutesRequireValidToken(t *testing.T) {
	env := newTestEnv(t)

	res := env.do(t, http.MethodGet, "/api/admin/system-owner", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.Status)

	res = env.do(t, http.MethodGet, "/api/admin/system-owner", "Bearer not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, res.Status)

	// A valid signature for a user the provider no longer knows.
	ghost := &identity.User{ID: uuid.New()}
	res = env.do(t, http.MethodGet, "/api/admin/system-owner", bearer(t, ghost), nil)
	assert.Equal(t, http.StatusUnauthorized, res.Status)

	u := env.ids.Add("ops@islapos.test", identity.RoleOwner, nil)
	res = env.do(t, http.MethodGet, "/api/admin/system-owner", bearer(t, u), nil)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, true, res.Body["isSystemOwner"])
}

func TestOwnerWithoutRestaurantGets400(t *testing.T) {
	env := newTestEnv(t)
	u := env.ids.Add("new@cafe.pr", identity.RoleOwner, nil)

	res := env.do(t, http.MethodGet, "/api/pos/staff-pins", bearer(t, u), nil)
	assert.Equal(t, http.StatusBadRequest, res.Status)
}

func TestDeleteFloorStaysInTenant(t *testing.T) {
	env := newTestEnv(t)
	alice, _ := env.owner(t, "alice@cafe.pr")
	bob, bobRID := env.owner(t, "bob@cafe.pr")

	table := models.FloorTable{RestaurantID: bobRID, Label: "T1"}
	require.NoError(t, env.db.Create(&table).Error)

	res := env.do(t, http.MethodDelete, "/api/admin/floor", bearer(t, alice), map[string]string{"kind": "table", "id": table.ID.String()})
	assert.Equal(t, http.StatusNotFound, res.Status)

	var n int64
	require.NoError(t, env.db.Model(&models.FloorTable{}).Where("id = ?", table.ID).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	res = env.do(t, http.MethodDelete, "/api/admin/floor?kind=table&id="+table.ID.String(), bearer(t, bob), nil)
	assert.Equal(t, http.StatusOK, res.Status)
}

func TestDeleteOrdersAuthorization(t *testing.T) {
	env := newTestEnv(t)
	_, rid := env.owner(t, "alice@cafe.pr")
	_, otherRID := env.owner(t, "bob@cafe.pr")
	cashier := env.ids.Add("c@cafe.pr", identity.RoleCashier, &rid)
	manager := env.ids.Add("m@cafe.pr", identity.RoleManager, &rid)

	order := models.Order{RestaurantID: rid, Status: "paid"}
	require.NoError(t, env.db.Create(&order).Error)
	body := map[string]interface{}{"orderIds": []string{order.ID.String()}}

	res := env.do(t, http.MethodDelete, "/api/admin/orders", bearer(t, cashier), body)
	assert.Equal(t, http.StatusForbidden, res.Status)

	// A claimed restaurant that is not the resolved one.
	claimed := map[string]interface{}{"orderIds": []string{order.ID.String()}, "restaurantId": otherRID.String()}
	res = env.do(t, http.MethodDelete, "/api/admin/orders", bearer(t, manager), claimed)
	assert.Equal(t, http.StatusForbidden, res.Status)

	res = env.do(t, http.MethodDelete, "/api/admin/orders", bearer(t, manager), body)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, float64(1), res.Body["deleted"])
}

func TestFullWipeNeedsConfirmation(t *testing.T) {
	env := newTestEnv(t)
	alice, rid := env.owner(t, "alice@cafe.pr")

	res := env.do(t, http.MethodPost, "/api/admin/full-wipe", bearer(t, alice), map[string]string{"confirm": "yes"})
	assert.Equal(t, http.StatusBadRequest, res.Status)

	res = env.do(t, http.MethodPost, "/api/admin/full-wipe", bearer(t, alice), map[string]string{"confirm": "WIPE"})
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, rid.String(), res.Body["restaurantId"])
}

func TestInviteUserRejectsDuplicatePin(t *testing.T) {
	env := newTestEnv(t)
	alice, _ := env.owner(t, "alice@cafe.pr")

	res := env.do(t, http.MethodPost, "/api/admin/invite-user", bearer(t, alice), map[string]string{
		"email": "ana@cafe.pr", "role": "cashier", "pin": "2468",
	})
	assert.Equal(t, http.StatusCreated, res.Status)

	res = env.do(t, http.MethodPost, "/api/admin/invite-user", bearer(t, alice), map[string]string{
		"email": "luis@cafe.pr", "role": "cashier", "pin": "2468",
	})
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, "pin already in use", res.Body["message"])
	assert.Len(t, env.ids.Invited, 1)
}

func TestSupportAccessAnswersInsteadOfFailing(t *testing.T) {
	env := newTestEnv(t)
	alice, rid := env.owner(t, "alice@cafe.pr")
	kitchen := env.ids.Add("k@cafe.pr", identity.RoleKitchen, &rid)

	res := env.do(t, http.MethodGet, "/api/admin/support-access", bearer(t, alice), nil)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, true, res.Body["allowed"])

	res = env.do(t, http.MethodGet, "/api/admin/support-access", bearer(t, kitchen), nil)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, false, res.Body["allowed"])
}

func TestAgentChatRejectsRestrictedRoles(t *testing.T) {
	env := newTestEnv(t)
	_, rid := env.owner(t, "alice@cafe.pr")
	driver := env.ids.Add("d@cafe.pr", identity.RoleDriver, &rid)

	res := env.do(t, http.MethodPost, "/api/agent/chat", bearer(t, driver), map[string]interface{}{
		"messages": []map[string]string{{"role": "user", "content": "hola"}},
	})
	assert.Equal(t, http.StatusForbidden, res.Status)
}

func TestKitchenDisplayFlow(t *testing.T) {
	env := newTestEnv(t)
	alice, rid := env.owner(t, "alice@cafe.pr")
	order := models.Order{RestaurantID: rid, Status: "open"}
	require.NoError(t, env.db.Create(&order).Error)

	res := env.do(t, http.MethodPost, "/api/admin/kds-tokens", bearer(t, alice), map[string]string{"label": "Line"})
	require.Equal(t, http.StatusCreated, res.Status)
	token, _ := res.Body["token"].(string)
	require.NotEmpty(t, token)

	res = env.do(t, http.MethodGet, "/api/kds/"+token, "", nil)
	assert.Equal(t, http.StatusOK, res.Status)
	orders, _ := res.Body["orders"].([]interface{})
	assert.Len(t, orders, 1)

	res = env.do(t, http.MethodPost, "/api/kds/"+token, "", map[string]string{"orderId": order.ID.String(), "action": "bump"})
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "preparing", res.Body["status"])

	res = env.do(t, http.MethodPost, "/api/kds/"+token, "", map[string]string{"orderId": order.ID.String(), "action": "explode"})
	assert.Equal(t, http.StatusBadRequest, res.Status)

	res = env.do(t, http.MethodGet, "/api/kds/not-a-token", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.Status)
}

func TestEdgePairingAndPush(t *testing.T) {
	env := newTestEnv(t)
	alice, rid := env.owner(t, "alice@cafe.pr")

	res := env.do(t, http.MethodPost, "/api/edge/pair/start", bearer(t, alice), nil)
	require.Equal(t, http.StatusOK, res.Status)
	code, _ := res.Body["code"].(string)
	require.NotEmpty(t, code)

	res = env.do(t, http.MethodPost, "/api/edge/pair/complete", "", map[string]string{"code": code, "name": "Back office"})
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, rid.String(), res.Body["restaurantId"])
	gatewayID, _ := res.Body["gatewayId"].(string)
	secret, _ := res.Body["secret"].(string)

	res = env.do(t, http.MethodPost, "/api/edge/pair/complete", "", map[string]string{"code": code})
	assert.Equal(t, http.StatusUnauthorized, res.Status)

	events := map[string]interface{}{"events": []map[string]interface{}{
		{"id": "evt-1", "type": "printer.status", "payload": map[string]bool{"online": true}},
		{"id": "evt-1", "type": "printer.status"},
	}}
	res = env.do(t, http.MethodPost, "/api/edge/push-events", "", events,
		middleware.HeaderGatewayID, gatewayID, middleware.HeaderGatewaySecret, secret)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, float64(1), res.Body["accepted"])
	assert.Equal(t, float64(1), res.Body["duplicate"])

	res = env.do(t, http.MethodPost, "/api/edge/push-events", "", events,
		middleware.HeaderGatewayID, gatewayID, middleware.HeaderGatewaySecret, "wrong")
	assert.Equal(t, http.StatusUnauthorized, res.Status)

	// User tokens are not gateway credentials.
	res = env.do(t, http.MethodPost, "/api/edge/push-events", bearer(t, alice), events)
	assert.Equal(t, http.StatusUnauthorized, res.Status)
}

func TestDeliveryDispatchAndWebhook(t *testing.T) {
	env := newTestEnv(t)
	alice, rid := env.owner(t, "alice@cafe.pr")
	order := models.Order{RestaurantID: rid, Status: "open", OrderType: models.OrderTypeDelivery}
	require.NoError(t, env.db.Create(&order).Error)

	res := env.do(t, http.MethodPut, "/api/admin/delivery-integrations", bearer(t, alice), map[string]interface{}{"provider": "doordash", "enabled": true})
	require.Equal(t, http.StatusOK, res.Status)

	res = env.do(t, http.MethodPost, "/api/delivery/dispatch", bearer(t, alice), map[string]string{"orderId": order.ID.String()})
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "doordash", res.Body["provider"])

	hook := map[string]string{"orderId": order.ID.String(), "status": "delivered"}
	res = env.do(t, http.MethodPost, "/api/delivery/webhook/doordash", "", hook)
	assert.Equal(t, http.StatusUnauthorized, res.Status)

	res = env.do(t, http.MethodPost, "/api/delivery/webhook/doordash", "", hook, handlers.HeaderWebhookSecret, "hook")
	assert.Equal(t, http.StatusOK, res.Status)

	var stored models.Order
	require.NoError(t, env.db.First(&stored, "id = ?", order.ID).Error)
	require.NotNil(t, stored.DeliveryStatus)
	assert.Equal(t, "delivered", *stored.DeliveryStatus)
}

func TestTimeClock(t *testing.T) {
	env := newTestEnv(t)
	_, rid := env.owner(t, "alice@cafe.pr")
	cashier := env.ids.Add("c@cafe.pr", identity.RoleCashier, &rid)

	res := env.do(t, http.MethodPost, "/api/pos/time-clock", bearer(t, cashier), map[string]string{"action": "clock_in"})
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, cashier.ID.String(), res.Body["userId"])

	res = env.do(t, http.MethodPost, "/api/pos/time-clock", bearer(t, cashier), map[string]string{"action": "clock_in"})
	assert.Equal(t, http.StatusBadRequest, res.Status)
}
