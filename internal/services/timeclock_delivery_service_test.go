package services

import (
	"context"
	"testing"
	"time"

	"github.com/alexispinzongalindo/islapos/internal/database/dbtest"
	"github.com/alexispinzongalindo/islapos/internal/delivery"
	"github.com/alexispinzongalindo/islapos/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPunchSequence(t *testing.T) {
	db := dbtest.New(t)
	svc := NewTimeClockService(db)
	clock := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	ctx := context.Background()
	rid, user := uuid.New(), uuid.New()

	punch := func(action string) error {
		_, err := svc.Punch(ctx, rid, user, PunchInput{Action: action})
		return err
	}

	assert.ErrorIs(t, punch(PunchClockOut), ErrInvalidInput)
	assert.ErrorIs(t, punch(PunchBreakStart), ErrInvalidInput)
	require.NoError(t, punch(PunchClockIn))
	assert.ErrorIs(t, punch(PunchClockIn), ErrInvalidInput)
	require.NoError(t, punch(PunchBreakStart))
	assert.ErrorIs(t, punch(PunchBreakStart), ErrInvalidInput)
	require.NoError(t, punch(PunchBreakEnd))
	require.NoError(t, punch(PunchClockOut))
	assert.ErrorIs(t, punch("lunch"), ErrInvalidInput)

	assert.Equal(t, int64(4), count(t, db, &models.TimeClockEntry{}, "user_id = ?", user))
}

func TestPunchByPin(t *testing.T) {
	db := dbtest.New(t)
	svc := NewTimeClockService(db)
	ctx := context.Background()
	rid, other := uuid.New(), uuid.New()
	member := models.StaffMember{RestaurantID: rid, UserID: uuid.New(), Email: "ana@cafe.pr", Role: "cashier", Pin: "4321"}
	require.NoError(t, db.Create(&member).Error)

	entry, err := svc.Punch(ctx, rid, uuid.New(), PunchInput{Action: "clock_in", Pin: "4321"})
	require.NoError(t, err)
	assert.Equal(t, member.UserID, entry.UserID)

	// PINs do not resolve across restaurants.
	_, err = svc.Punch(ctx, other, uuid.New(), PunchInput{Action: "clock_in", Pin: "4321"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func enableProvider(t *testing.T, svc *DeliveryService, rid uuid.UUID, provider string) {
	t.Helper()
	_, err := svc.EnableProvider(context.Background(), rid, provider, true, "")
	require.NoError(t, err)
}

func TestDispatch(t *testing.T) {
	db := dbtest.New(t)
	svc := NewDeliveryService(db, delivery.DefaultRegistry())
	ctx := context.Background()
	rid := uuid.New()

	dineIn := seedOrder(t, db, rid, "open", models.OrderTypeDineIn, 1)
	order := seedOrder(t, db, rid, "open", models.OrderTypeDelivery, 1)

	_, err := svc.Dispatch(ctx, rid, order.ID, "")
	assert.ErrorIs(t, err, ErrInvalidInput, "no provider enabled")

	enableProvider(t, svc, rid, "uber_eats")
	enableProvider(t, svc, rid, "doordash")

	_, err = svc.Dispatch(ctx, rid, dineIn.ID, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Dispatch(ctx, rid, order.ID, "grubhub")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Dispatch(ctx, uuid.New(), order.ID, "")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := svc.Dispatch(ctx, rid, order.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "doordash", *got.DeliveryProvider)
	assert.Equal(t, delivery.StatusDispatched, *got.DeliveryStatus)

	_, err = svc.Dispatch(ctx, rid, order.ID, "uber_eats")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestApplyWebhookLastWriteWins(t *testing.T) {
	db := dbtest.New(t)
	registry := delivery.NewRegistry()
	registry.Register(&delivery.ProviderConfig{ID: "doordash", Name: "DoorDash", WebhookSecret: "s3cret"})
	registry.Register(&delivery.ProviderConfig{ID: "grubhub", Name: "Grubhub"})
	svc := NewDeliveryService(db, registry)
	ctx := context.Background()
	rid := uuid.New()

	enableProvider(t, svc, rid, "doordash")
	order := seedOrder(t, db, rid, "open", models.OrderTypeDelivery, 0)
	_, err := svc.Dispatch(ctx, rid, order.ID, "doordash")
	require.NoError(t, err)

	err = svc.ApplyWebhook(ctx, "doordash", WebhookInput{OrderID: order.ID.String(), Status: "picked_up", Secret: "wrong"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Only the provider the order was dispatched to may update it.
	err = svc.ApplyWebhook(ctx, "grubhub", WebhookInput{OrderID: order.ID.String(), Status: "delivered"})
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.ApplyWebhook(ctx, "ubereats-fake", WebhookInput{OrderID: order.ID.String(), Status: "delivered"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = svc.ApplyWebhook(ctx, "doordash", WebhookInput{OrderID: "nope", Status: "delivered", Secret: "s3cret"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, svc.ApplyWebhook(ctx, "doordash", WebhookInput{OrderID: order.ID.String(), Status: "Delivered", Secret: "s3cret"}))
	require.NoError(t, svc.ApplyWebhook(ctx, "doordash", WebhookInput{OrderID: order.ID.String(), Status: "picked up", Secret: "s3cret"}))

	var stored models.Order
	require.NoError(t, db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, "picked_up", *stored.DeliveryStatus)
}
