package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/alexispinzongalindo/islapos/internal/database/dbtest"
	"github.com/alexispinzongalindo/islapos/internal/kitchen"
	"github.com/alexispinzongalindo/islapos/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKDSTokenLifecycle(t *testing.T) {
	db := dbtest.New(t)
	svc := NewKDSService(db)
	ctx := context.Background()
	rid := uuid.New()

	tok, err := svc.IssueToken(ctx, rid, " Line 1 ")
	require.NoError(t, err)
	assert.Equal(t, "Line 1", tok.Label)
	assert.Len(t, tok.Token, 32)

	got, err := svc.Lookup(ctx, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, rid, got)

	_, err = svc.Lookup(ctx, "unknown")
	assert.ErrorIs(t, err, ErrInvalidKDSToken)

	assert.ErrorIs(t, svc.RevokeToken(ctx, uuid.New(), tok.ID), ErrNotFound)
	require.NoError(t, svc.RevokeToken(ctx, rid, tok.ID))
	_, err = svc.Lookup(ctx, tok.Token)
	assert.ErrorIs(t, err, ErrInvalidKDSToken)
}

func TestKDSListShowsActiveOrdersOnly(t *testing.T) {
	db := dbtest.New(t)
	svc := NewKDSService(db)
	rid := uuid.New()

	open := seedOrder(t, db, rid, "open", models.OrderTypeDineIn, 2)
	seedOrder(t, db, rid, "ready", models.OrderTypeTakeout, 1)
	seedOrder(t, db, rid, "paid", models.OrderTypeDineIn, 1)
	seedOrder(t, db, uuid.New(), "open", models.OrderTypeDineIn, 1)

	orders, err := svc.List(context.Background(), rid)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	for _, o := range orders {
		assert.Equal(t, rid, o.RestaurantID)
		if o.ID == open.ID {
			assert.Len(t, o.Items, 2)
		}
	}
}

func TestKDSTransition(t *testing.T) {
	db := dbtest.New(t)
	svc := NewKDSService(db)
	ctx := context.Background()
	rid := uuid.New()
	order := seedOrder(t, db, rid, "open", models.OrderTypeDineIn, 0)

	status := func() string {
		var o models.Order
		require.NoError(t, db.First(&o, "id = ?", order.ID).Error)
		return o.Status
	}

	_, err := svc.Transition(ctx, rid, order.ID, "recall")
	assert.ErrorIs(t, err, kitchen.ErrInvalidTransition)
	assert.Equal(t, "open", status())

	for _, want := range []kitchen.Status{kitchen.StatusPreparing, kitchen.StatusReady, kitchen.StatusPaid} {
		got, err := svc.Transition(ctx, rid, order.ID, "bump")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, "paid", status())

	_, err = svc.Transition(ctx, rid, order.ID, "bump")
	assert.ErrorIs(t, err, kitchen.ErrInvalidTransition)
	_, err = svc.Transition(ctx, rid, order.ID, "recall")
	assert.ErrorIs(t, err, kitchen.ErrInvalidTransition)
	assert.Equal(t, "paid", status())

	_, err = svc.Transition(ctx, rid, order.ID, "void")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Transition(ctx, uuid.New(), order.ID, "bump")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPairingCodeShape(t *testing.T) {
	db := dbtest.New(t)
	svc := NewEdgeService(db)

	pc, err := svc.StartPairing(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Len(t, pc.Code, pairingCodeLength)
	for _, r := range pc.Code {
		assert.True(t, strings.ContainsRune(pairingAlphabet, r), "unexpected %q", r)
	}
	assert.WithinDuration(t, time.Now().Add(time.Hour), pc.ExpiresAt, time.Minute)
}

func TestCompletePairingIsSingleUse(t *testing.T) {
	db := dbtest.New(t)
	svc := NewEdgeService(db)
	ctx := context.Background()
	rid := uuid.New()

	pc, err := svc.StartPairing(ctx, rid, uuid.New())
	require.NoError(t, err)

	res, err := svc.CompletePairing(ctx, strings.ToLower(pc.Code), "Back office")
	require.NoError(t, err)
	assert.Equal(t, rid, res.RestaurantID)
	assert.NotEmpty(t, res.Secret)

	var gw models.EdgeGateway
	require.NoError(t, db.First(&gw, "id = ?", res.GatewayID).Error)
	assert.NotContains(t, gw.SecretHash, res.Secret)

	_, err = svc.CompletePairing(ctx, pc.Code, "")
	assert.ErrorIs(t, err, ErrInvalidPairingCode)

	authed, err := svc.AuthenticateGateway(ctx, res.GatewayID.String(), res.Secret)
	require.NoError(t, err)
	assert.Equal(t, rid, authed.RestaurantID)

	_, err = svc.AuthenticateGateway(ctx, res.GatewayID.String(), "wrong")
	assert.ErrorIs(t, err, ErrInvalidGatewayCredentials)
	_, err = svc.AuthenticateGateway(ctx, "not-a-uuid", res.Secret)
	assert.ErrorIs(t, err, ErrInvalidGatewayCredentials)
	_, err = svc.AuthenticateGateway(ctx, uuid.NewString(), res.Secret)
	assert.ErrorIs(t, err, ErrInvalidGatewayCredentials)
}

func TestExpiredPairingCodeIsDeleted(t *testing.T) {
	db := dbtest.New(t)
	svc := NewEdgeService(db)
	ctx := context.Background()

	pc, err := svc.StartPairing(ctx, uuid.New(), uuid.New())
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
	_, err = svc.CompletePairing(ctx, pc.Code, "")
	assert.ErrorIs(t, err, ErrInvalidPairingCode)
	assert.Equal(t, int64(0), count(t, db, &models.EdgePairingCode{}, "code = ?", pc.Code))
	assert.Equal(t, int64(0), count(t, db, &models.EdgeGateway{}, "1 = 1"))
}

func TestIngestEventsDedups(t *testing.T) {
	db := dbtest.New(t)
	svc := NewEdgeService(db)
	ctx := context.Background()
	gw := &models.EdgeGateway{RestaurantID: uuid.New(), Name: "gw", SecretHash: "x"}
	require.NoError(t, db.Create(gw).Error)

	batch := []EdgeEventInput{
		{ID: "evt-1", Type: "printer.status", Payload: json.RawMessage(`{"online":true}`)},
		{ID: "evt-2", Type: "drawer.open"},
		{ID: "evt-1", Type: "printer.status"},
	}
	res, err := svc.IngestEvents(ctx, gw, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Accepted)
	assert.Equal(t, 1, res.Duplicate)

	res, err = svc.IngestEvents(ctx, gw, batch[:1])
	require.NoError(t, err)
	assert.Equal(t, 0, res.Accepted)
	assert.Equal(t, 1, res.Duplicate)
	assert.Equal(t, int64(1), count(t, db, &models.EdgeEvent{}, "external_id = ?", "evt-1"))

	// The same id from another restaurant is a different event.
	other := &models.EdgeGateway{RestaurantID: uuid.New(), Name: "gw2", SecretHash: "x"}
	require.NoError(t, db.Create(other).Error)
	res, err = svc.IngestEvents(ctx, other, batch[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, res.Accepted)

	var stored models.EdgeGateway
	require.NoError(t, db.First(&stored, "id = ?", gw.ID).Error)
	assert.NotNil(t, stored.LastSeenAt)
}

func TestIngestEventsValidates(t *testing.T) {
	db := dbtest.New(t)
	svc := NewEdgeService(db)
	gw := &models.EdgeGateway{RestaurantID: uuid.New(), Name: "gw", SecretHash: "x"}
	require.NoError(t, db.Create(gw).Error)

	for _, batch := range [][]EdgeEventInput{
		nil,
		{{ID: "", Type: "x"}},
		{{ID: "a", Type: ""}},
		{{ID: "a", Type: "x", Payload: json.RawMessage(`{broken`)}},
	} {
		_, err := svc.IngestEvents(context.Background(), gw, batch)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
	assert.Equal(t, int64(0), count(t, db, &models.EdgeEvent{}, "1 = 1"))
}
